package proxysdk

import "errors"

// Queue is a handle to a registered or resolved shared queue.
type Queue struct {
	id uint32
}

// ID returns the host-assigned queue id.
func (q Queue) ID() uint32 { return q.id }

// Enqueue appends an item to the queue.
func (q Queue) Enqueue(value []byte) error {
	return hostEnqueueSharedQueue(q.id, value)
}

// Dequeue pops the oldest item. ok is false when the queue is empty.
func (q Queue) Dequeue() (value []byte, ok bool, err error) {
	value, err = hostDequeueSharedQueue(q.id)
	if errors.Is(err, StatusEmpty) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// RegisterQueue registers a shared queue under name and binds callback to
// its ready events. Ready events are delivered to the root context that is
// current when they fire, so registration belongs in OnVMStart or
// OnConfigure. Use OnEnqueue or OnReceive to adapt a callback typed on the
// concrete root context.
func RegisterQueue(name string, callback func(*RootHandle, Queue)) (Queue, error) {
	id, err := hostRegisterSharedQueue(name)
	if err != nil {
		return Queue{}, err
	}
	if callback != nil {
		current.registerQueueCallback(id, callback)
	}
	return Queue{id: id}, nil
}

// ResolveQueue looks up a queue registered by another VM or plugin. ok is
// false when no queue exists under that name.
func ResolveQueue(vmID, name string) (queue Queue, ok bool, err error) {
	id, err := hostResolveSharedQueue(vmID, name)
	if errors.Is(err, StatusNotFound) {
		return Queue{}, false, nil
	}
	if err != nil {
		return Queue{}, false, err
	}
	return Queue{id: id}, true, nil
}

// OnEnqueue adapts a per-ready-event callback typed on a concrete root
// context. The callback fires once per ready signal and dequeues on its
// own terms.
func OnEnqueue[R RootContext](callback func(R, Queue)) func(*RootHandle, Queue) {
	return func(root *RootHandle, queue Queue) {
		callback(RootAs[R](root), queue)
	}
}

// OnReceive adapts a per-item callback typed on a concrete root context.
// Each ready signal drains the queue, invoking the callback once per item.
// A ready signal can cover several enqueues, so draining here is what keeps
// delivery exhaustive.
func OnReceive[R RootContext](callback func(R, []byte)) func(*RootHandle, Queue) {
	return func(root *RootHandle, queue Queue) {
		typed := RootAs[R](root)
		for {
			value, ok, err := queue.Dequeue()
			if err != nil {
				logConcern("queue-dequeue", err)
				return
			}
			if !ok {
				return
			}
			callback(typed, value)
		}
	}
}
