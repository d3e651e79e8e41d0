// Package proxysdk is an SDK for writing proxy extensions against the
// proxy-wasm event model.
//
// A plugin registers a root context factory once at startup, then the host
// drives everything through numbered contexts: root contexts own plugin
// lifecycle events (configuration, timers, queues), and each HTTP request
// or L4 connection gets its own child context created under a root. The
// Dispatcher owns the context tree and routes every host event to the
// right callback, including matching async completions (HTTP calls, gRPC
// calls and streams) back to the context that initiated them.
//
// The minimal plugin looks like:
//
//	type plugin struct {
//		proxysdk.DefaultRootContext
//	}
//
//	func (p *plugin) CreateContext() proxysdk.ChildContext {
//		return proxysdk.NewHTTPChild(&filter{})
//	}
//
//	func init() {
//		proxysdk.SetRootContextFactory(func() *plugin { return &plugin{} })
//	}
//
// Host access goes through the Host interface bound with SetHost; wasm
// builds bind the proxy-wasm imports, tests bind hosttest.Host.
package proxysdk
