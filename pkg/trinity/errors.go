package trinity

import (
	"errors"
	"fmt"
)

// Configuration errors are programming mistakes: they fail fast, are
// never retried, and are expected to surface during development.

// ErrScopeDisposed is returned when registering into or looking up a
// scope that has been torn down.
var ErrScopeDisposed = errors.New("trinity: scope disposed")

// ErrAlreadyAttached is returned when a node is registered into a
// scope after it has already been attached. A node attaches to at most
// one scope, exactly once.
var ErrAlreadyAttached = errors.New("trinity: node already attached to a scope")

// ErrNotAttached is returned when MarkReady is called on a node that
// was never registered into a scope.
var ErrNotAttached = errors.New("trinity: node not attached to a scope")

// ErrAlreadyReady is returned when MarkReady is called twice.
// The ready hook runs exactly once.
var ErrAlreadyReady = errors.New("trinity: node already marked ready")

// ErrNodeDisposed is returned for lifecycle operations on a disposed
// node.
var ErrNodeDisposed = errors.New("trinity: node disposed")

// DuplicateNodeError reports a second registration of the same node
// Kind at the same scope level.
type DuplicateNodeError struct {
	Kind Kind
}

// Error implements the error interface.
func (e *DuplicateNodeError) Error() string {
	return fmt.Sprintf("trinity: node kind %q already registered at this scope level", e.Kind)
}

// NotFoundError reports a failed lookup: no node of the requested Kind
// is registered at the current scope level or any ancestor.
type NotFoundError struct {
	Kind Kind
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("trinity: no node of kind %q found in scope chain", e.Kind)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// KindMismatchError reports that a node was found under the requested
// Kind but has a different concrete type than the caller asserted.
type KindMismatchError struct {
	Kind Kind
	Want string
	Got  string
}

// Error implements the error interface.
func (e *KindMismatchError) Error() string {
	return fmt.Sprintf("trinity: node kind %q is %s, not %s", e.Kind, e.Got, e.Want)
}

// ProducerPanicError wraps a panic recovered from an asynchronous
// producer so it can be surfaced as an AsyncValue error state.
type ProducerPanicError struct {
	Value any
}

// Error implements the error interface.
func (e *ProducerPanicError) Error() string {
	return fmt.Sprintf("trinity: producer panicked: %v", e.Value)
}
