package proxysdk

// BaseContext holds the lifecycle callbacks shared by every context kind.
type BaseContext interface {
	// OnLog is called for access log plugins. Not well supported; unclear
	// what context this gets called on.
	OnLog()

	// OnDone is called when all processing is complete in the proxy for
	// this context. Returning true deletes the context immediately;
	// returning false defers the drop. The dispatcher forwards the value
	// to the host verbatim and removes state only on the delete event.
	OnDone() bool
}

// RootContext is the top-level per-plugin-instance context. It owns
// long-lived plugin state and is the target of async-call completions.
type RootContext interface {
	BaseContext

	// OnVMStart is called once when the VM starts. configuration is nil
	// when the host provides none. Returning false aborts VM startup.
	OnVMStart(configuration []byte) bool

	// OnConfigure is called with the plugin configuration. configuration
	// is nil when the host provides none. Returning false aborts startup.
	OnConfigure(configuration []byte) bool

	// OnTick is called every tick period as set by SetTickPeriod.
	OnTick()

	// CreateContext is called to initiate a new HTTP or stream context.
	CreateContext() ChildContext
}

// ChildContext is the result of RootContext.CreateContext: exactly one of
// an HTTP (request-scoped) or stream (connection-scoped) handler. The
// returned value itself decides which category the new context belongs to.
type ChildContext struct {
	http   HTTPContext
	stream StreamContext
}

// NewHTTPChild wraps an HTTP handler as a request-scoped child context.
func NewHTTPChild(ctx HTTPContext) ChildContext {
	return ChildContext{http: ctx}
}

// NewStreamChild wraps a stream handler as a connection-scoped child context.
func NewStreamChild(ctx StreamContext) ChildContext {
	return ChildContext{stream: ctx}
}

// DefaultBaseContext provides no-op lifecycle callbacks for embedding.
type DefaultBaseContext struct{}

func (DefaultBaseContext) OnLog() {}

func (DefaultBaseContext) OnDone() bool { return true }

// DefaultRootContext provides default root callbacks for embedding.
// CreateContext must still be implemented by the embedding type if the
// plugin handles per-request or per-connection events.
type DefaultRootContext struct {
	DefaultBaseContext
}

func (DefaultRootContext) OnVMStart(configuration []byte) bool { return true }

func (DefaultRootContext) OnConfigure(configuration []byte) bool { return true }

func (DefaultRootContext) OnTick() {}

func (DefaultRootContext) CreateContext() ChildContext { return ChildContext{} }
