// Package trinity provides a reactive state-propagation core for
// host-driven user interfaces.
//
// The model is built from four pieces:
//
// Signal[T] is an owned, observable value container with an
// equality-deduplicating write:
//
//	count := trinity.NewSignal(0)
//	sub := count.Subscribe(func(n int) { fmt.Println("count:", n) })
//	count.Set(1) // notifies
//	count.Set(1) // no-op, value unchanged
//	sub.Unsubscribe()
//
// Node is an owner of signals and bridges with an
// init/ready/dispose lifecycle. Concrete nodes embed BaseNode and
// declare a Kind tag:
//
//	type CounterNode struct {
//	    trinity.BaseNode
//	    Count *trinity.Signal[int]
//	}
//
//	func (n *CounterNode) Kind() trinity.Kind { return "counter" }
//
// Scope is a hierarchical, Kind-keyed registry of live nodes. A scope
// holds at most one node per Kind; lookups fall back to ancestor
// scopes:
//
//	root := trinity.NewScope(nil)
//	child := trinity.NewScope(root)
//	if err := root.Register(counter); err != nil { ... }
//	found, err := trinity.Find[*CounterNode](child, "counter")
//
// Bridges mirror or derive state owned by another node, resolved
// lazily through the scope chain when their owning node attaches:
//
//	theme := trinity.NewBridgeSignal("settings",
//	    func(s *SettingsNode) *trinity.Signal[string] { return s.Theme })
//
// # Threading
//
// Signal mutation and fan-out are mutex-guarded, but the delivery
// guarantees of this package (synchronous, subscription-ordered
// notification within one logical tick) assume a single logical thread
// of control. Hosts should funnel all writes through a Loop and use
// Loop.Dispatch from background goroutines, mirroring how asynchronous
// results are folded back into session state.
package trinity
