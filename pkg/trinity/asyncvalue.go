package trinity

import "fmt"

// AsyncState identifies the variant of an AsyncValue.
type AsyncState uint8

const (
	// AsyncLoading means the producer is working.
	AsyncLoading AsyncState = iota + 1
	// AsyncData means the producer delivered a value (possibly the
	// initial absent payload, see InitialData).
	AsyncData
	// AsyncError means the producer failed.
	AsyncError
)

// String returns a human-readable name for the state.
func (s AsyncState) String() string {
	switch s {
	case AsyncLoading:
		return "Loading"
	case AsyncData:
		return "Data"
	case AsyncError:
		return "Error"
	default:
		return "Unknown"
	}
}

// AsyncValue is the tagged union emitted by asynchronous signal
// variants: Loading, Data(value-or-absent), or Error(err, stack).
// No transition order is enforced; the producer decides.
type AsyncValue[T any] struct {
	state    AsyncState
	value    T
	hasValue bool
	err      error
	stack    string
}

// Loading returns the Loading variant.
func Loading[T any]() AsyncValue[T] {
	return AsyncValue[T]{state: AsyncLoading}
}

// Data returns the Data variant carrying a value.
func Data[T any](v T) AsyncValue[T] {
	return AsyncValue[T]{state: AsyncData, value: v, hasValue: true}
}

// InitialData returns the Data variant with an absent payload,
// representing "not yet fetched".
func InitialData[T any]() AsyncValue[T] {
	return AsyncValue[T]{state: AsyncData}
}

// Failure returns the Error variant carrying the producer's error and
// a captured stack trace (may be empty).
func Failure[T any](err error, stack string) AsyncValue[T] {
	return AsyncValue[T]{state: AsyncError, err: err, stack: stack}
}

// State returns the variant tag.
func (v AsyncValue[T]) State() AsyncState {
	return v.state
}

// IsLoading reports whether this is the Loading variant.
func (v AsyncValue[T]) IsLoading() bool {
	return v.state == AsyncLoading
}

// IsData reports whether this is the Data variant.
func (v AsyncValue[T]) IsData() bool {
	return v.state == AsyncData
}

// IsError reports whether this is the Error variant.
func (v AsyncValue[T]) IsError() bool {
	return v.state == AsyncError
}

// Value returns the payload and whether one is present. The Loading
// and Error variants, and InitialData, report absent.
func (v AsyncValue[T]) Value() (T, bool) {
	return v.value, v.hasValue
}

// ValueOr returns the payload, or fallback when absent.
func (v AsyncValue[T]) ValueOr(fallback T) T {
	if v.hasValue {
		return v.value
	}
	return fallback
}

// Err returns the producer error for the Error variant, nil otherwise.
func (v AsyncValue[T]) Err() error {
	return v.err
}

// StackTrace returns the captured stack for the Error variant.
func (v AsyncValue[T]) StackTrace() string {
	return v.stack
}

// String renders the value for logs.
func (v AsyncValue[T]) String() string {
	switch v.state {
	case AsyncLoading:
		return "AsyncValue(Loading)"
	case AsyncData:
		if !v.hasValue {
			return "AsyncValue(Data, initial)"
		}
		return fmt.Sprintf("AsyncValue(Data, %v)", v.value)
	case AsyncError:
		return fmt.Sprintf("AsyncValue(Error, %v)", v.err)
	default:
		return "AsyncValue(Unknown)"
	}
}
