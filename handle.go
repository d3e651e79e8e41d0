package proxysdk

import "fmt"

// RootHandle stores a concrete root context behind two views over the same
// backing value: the RootContext interface for generic dispatch, and a
// reflectable any for recovering the concrete type inside a typed callback.
// Both views alias a single allocation; there is no way to end up with two
// independently owned copies.
type RootHandle struct {
	root RootContext
}

// NewRootHandle wraps a concrete root context.
func NewRootHandle(root RootContext) *RootHandle {
	return &RootHandle{root: root}
}

// Context returns the abstract view used for generic dispatch.
func (h *RootHandle) Context() RootContext {
	return h.root
}

// Any returns the reflectable view of the stored root.
func (h *RootHandle) Any() any {
	return h.root
}

// RootAs recovers the concrete root type from a handle. A mismatch means a
// callback was registered against the wrong root type, which is a
// programmer error worth crashing on.
func RootAs[R RootContext](h *RootHandle) R {
	root, ok := h.root.(R)
	if !ok {
		panic(fmt.Sprintf("invalid root type: %T", h.root))
	}
	return root
}
