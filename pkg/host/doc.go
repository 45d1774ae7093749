// Package host is a reference host for trinity scopes over WebSocket.
//
// The host owns a root scope shared by all connections. Each WebSocket
// connection gets a session with its own child scope and its own
// trinity.Loop; every signal mutation for that session runs on the
// loop, which is what gives the session the package's single-threaded
// ordering guarantees.
//
// Nodes opt into the wire surface through two interfaces. A ViewModel
// exposes named signals whose values are pushed to the client as patch
// frames. An EventHandler receives client events addressed to its
// kind. Neither interface is required; nodes that implement neither
// are pure server-side state.
//
// The wire protocol is line-delimited JSON frames:
//
//	{"type":"hello","name":"<session id>"}
//	{"type":"patch","name":"counter.value","payload":3}
//	{"type":"event","name":"counter.increment","payload":{}}
//	{"type":"error","name":"E062","payload":"unknown event"}
package host
