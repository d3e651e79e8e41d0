package proxysdk

import (
	"sync"
	"sync/atomic"
)

// The root factory slot is the only resource shared across instances. It is
// written once at startup and read on every lazy root creation.
var (
	rootFactoryMu sync.Mutex
	rootFactory   func() *RootHandle
)

// dispatcherGen is bumped by Reset to invalidate recycled dispatcher state.
// Normal production use never changes it during a plugin's life; it exists
// for environments that reuse the same execution slot across what should be
// independent plugin instantiations (e.g. repeated test runs).
var dispatcherGen atomic.Uint64

var defaultDispatcher = NewDispatcher()

// current is the dispatcher handling the event being processed right now.
// Callback registrations and active-id queries resolve against it. Events
// never nest, so plain assignment on entry is sufficient.
var current = defaultDispatcher

// SetRootContextFactory registers the factory used to lazily create root
// contexts. Should be called during initialization, before the first event.
// Re-registering replaces the factory for future creations only; roots that
// already exist are untouched.
func SetRootContextFactory[R RootContext](factory func() R) {
	rootFactoryMu.Lock()
	defer rootFactoryMu.Unlock()
	if rootFactory != nil {
		logger.Warn().Msg("root context factory replaced; existing roots keep their old state")
	}
	rootFactory = func() *RootHandle {
		return NewRootHandle(factory())
	}
}

// Reset wipes all dispatcher state and the root factory registration. To be
// used before any initialization in case of VM reuse in native mode.
func Reset() {
	dispatcherGen.Add(1)
	rootFactoryMu.Lock()
	rootFactory = nil
	rootFactoryMu.Unlock()
	metricIDs = map[string]uint32{}
}

// Default returns the dispatcher behind the package-level event entry
// points. Embeddings that can thread an explicit handle should construct
// their own via NewDispatcher instead.
func Default() *Dispatcher {
	return defaultDispatcher
}

// ActiveContextID returns the id of the logically current context.
func ActiveContextID() uint32 {
	return current.activeID
}

// ActiveRootID returns the root id of the logically current context.
func ActiveRootID() uint32 {
	return current.activeRootID
}

type httpCallback struct {
	contextID     uint32
	rootContextID uint32
	callback      func(*RootHandle, *HTTPCallResponse)
}

type grpcCallback struct {
	contextID     uint32
	rootContextID uint32
	callback      func(*RootHandle, *GrpcCallResponse)
}

// grpcStreamCallback is a multi-shot pending-call entry: up to four
// independently registered sub-callbacks for one open stream token.
type grpcStreamCallback struct {
	contextID     uint32
	rootContextID uint32
	initialMeta   func(*RootHandle, GrpcStreamHandle, *GrpcStreamInitialMetadata)
	message       func(*RootHandle, GrpcStreamHandle, *GrpcStreamMessage)
	trailerMeta   func(*RootHandle, GrpcStreamHandle, *GrpcStreamTrailingMetadata)
	close         func(*RootHandle, *GrpcStreamClose)
}

type streamInfo struct {
	parentContextID uint32
	data            StreamContext
}

type httpStreamInfo struct {
	parentContextID uint32
	data            HTTPContext
}

// Dispatcher routes host events to the live context tree and matches async
// completions back to the callback that initiated them. All state belongs
// to exactly one logical instance and is only touched from its event
// thread; no locking is needed here.
type Dispatcher struct {
	roots          map[uint32]*RootHandle
	streams        map[uint32]*streamInfo
	httpStreams    map[uint32]*httpStreamInfo
	httpCallbacks  map[uint32]*httpCallback
	grpcCallbacks  map[uint32]*grpcCallback
	grpcStreams    map[uint32]*grpcStreamCallback
	queueCallbacks map[uint32]func(*RootHandle, Queue)

	activeID     uint32
	activeRootID uint32
	generation   uint64
}

// NewDispatcher constructs an empty dispatcher bound to the current
// generation.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{generation: dispatcherGen.Load()}
	d.wipe()
	return d
}

func (d *Dispatcher) wipe() {
	d.roots = make(map[uint32]*RootHandle)
	d.streams = make(map[uint32]*streamInfo)
	d.httpStreams = make(map[uint32]*httpStreamInfo)
	d.httpCallbacks = make(map[uint32]*httpCallback)
	d.grpcCallbacks = make(map[uint32]*grpcCallback)
	d.grpcStreams = make(map[uint32]*grpcStreamCallback)
	d.queueCallbacks = make(map[uint32]func(*RootHandle, Queue))
	d.activeID = 0
	d.activeRootID = 0
}

// enter marks d as the dispatcher handling the current event and wipes all
// state when the instance slot has been recycled since the last event.
func (d *Dispatcher) enter() {
	current = d
	if gen := dispatcherGen.Load(); d.generation != gen {
		d.generation = gen
		d.wipe()
	}
}

// getOrCreateRoot returns the existing root for id, creating it through the
// registered factory if needed. Operating without a factory is a setup
// error that must not degrade silently.
func (d *Dispatcher) getOrCreateRoot(id uint32) *RootHandle {
	if root, ok := d.roots[id]; ok {
		return root
	}
	rootFactoryMu.Lock()
	factory := rootFactory
	rootFactoryMu.Unlock()
	if factory == nil {
		panic("missing root context factory")
	}
	root := factory()
	d.roots[id] = root
	return root
}

func (d *Dispatcher) createChild(rootContextID, contextID uint32) {
	root := d.getOrCreateRoot(rootContextID)
	child := root.Context().CreateContext()
	switch {
	case child.http != nil:
		if _, ok := d.httpStreams[contextID]; ok {
			logger.Warn().Uint32("context_id", contextID).Msg("reused context_id without proper cleanup")
		}
		d.httpStreams[contextID] = &httpStreamInfo{parentContextID: rootContextID, data: child.http}
	case child.stream != nil:
		if _, ok := d.streams[contextID]; ok {
			logger.Warn().Uint32("context_id", contextID).Msg("reused context_id without proper cleanup")
		}
		d.streams[contextID] = &streamInfo{parentContextID: rootContextID, data: child.stream}
	default:
		logger.Warn().Uint32("context_id", contextID).Msg("root produced an empty child context")
	}
}

// registration; origin ids are captured now, at call time, which is what
// makes effective-context re-pointing correct at completion time.

func (d *Dispatcher) registerHTTPCallback(token uint32, callback func(*RootHandle, *HTTPCallResponse)) {
	d.httpCallbacks[token] = &httpCallback{
		contextID:     d.activeID,
		rootContextID: d.activeRootID,
		callback:      callback,
	}
}

func (d *Dispatcher) registerGrpcCallback(token uint32, callback func(*RootHandle, *GrpcCallResponse)) {
	d.grpcCallbacks[token] = &grpcCallback{
		contextID:     d.activeID,
		rootContextID: d.activeRootID,
		callback:      callback,
	}
}

// grpcStreamEntry returns the multi-shot entry for token, creating it if
// absent. Registering a slot for a token already owned by a different
// origin context is a correctness violation: the existing entry is left
// untouched and nil is returned.
func (d *Dispatcher) grpcStreamEntry(token uint32, caller string) *grpcStreamCallback {
	if entry, ok := d.grpcStreams[token]; ok {
		if entry.contextID != d.activeID {
			logger.Error().
				Str("register", caller).
				Uint32("owner", entry.contextID).
				Uint32("active", d.activeID).
				Msg("mismatch in origin context for grpc stream registration")
			return nil
		}
		return entry
	}
	entry := &grpcStreamCallback{contextID: d.activeID, rootContextID: d.activeRootID}
	d.grpcStreams[token] = entry
	return entry
}

func (d *Dispatcher) registerGrpcStreamInitialMetadata(token uint32, callback func(*RootHandle, GrpcStreamHandle, *GrpcStreamInitialMetadata)) {
	if entry := d.grpcStreamEntry(token, "initial-metadata"); entry != nil {
		entry.initialMeta = callback
	}
}

func (d *Dispatcher) registerGrpcStreamMessage(token uint32, callback func(*RootHandle, GrpcStreamHandle, *GrpcStreamMessage)) {
	if entry := d.grpcStreamEntry(token, "message"); entry != nil {
		entry.message = callback
	}
}

func (d *Dispatcher) registerGrpcStreamTrailingMetadata(token uint32, callback func(*RootHandle, GrpcStreamHandle, *GrpcStreamTrailingMetadata)) {
	if entry := d.grpcStreamEntry(token, "trailing-metadata"); entry != nil {
		entry.trailerMeta = callback
	}
}

func (d *Dispatcher) registerGrpcStreamClose(token uint32, callback func(*RootHandle, *GrpcStreamClose)) {
	if entry := d.grpcStreamEntry(token, "close"); entry != nil {
		entry.close = callback
	}
}

func (d *Dispatcher) registerQueueCallback(queueID uint32, callback func(*RootHandle, Queue)) {
	d.queueCallbacks[queueID] = callback
}

// OnContextCreate handles the create-context event. A zero parent id means
// a root context; otherwise the parent root must already be known.
func (d *Dispatcher) OnContextCreate(contextID, parentContextID uint32) {
	d.enter()
	if parentContextID == 0 {
		d.getOrCreateRoot(contextID)
	} else if _, ok := d.roots[parentContextID]; ok {
		d.createChild(parentContextID, contextID)
	} else {
		logger.Warn().
			Uint32("context_id", contextID).
			Uint32("parent_id", parentContextID).
			Msg("attempted to create context under unknown parent")
	}
}

// OnDone forwards the done event. The return value is advisory to the
// host; the dispatcher removes nothing here.
func (d *Dispatcher) OnDone(contextID uint32) bool {
	d.enter()
	if httpStream, ok := d.httpStreams[contextID]; ok {
		d.activeID = contextID
		d.activeRootID = httpStream.parentContextID
		return httpStream.data.OnDone()
	}
	if stream, ok := d.streams[contextID]; ok {
		d.activeID = contextID
		d.activeRootID = stream.parentContextID
		return stream.data.OnDone()
	}
	if root, ok := d.roots[contextID]; ok {
		d.activeID = contextID
		d.activeRootID = contextID
		return root.Context().OnDone()
	}
	logger.Warn().Uint32("context_id", contextID).Msg("on_done called on unknown context")
	return true
}

func (d *Dispatcher) OnLog(contextID uint32) {
	d.enter()
	if httpStream, ok := d.httpStreams[contextID]; ok {
		d.activeID = contextID
		d.activeRootID = httpStream.parentContextID
		httpStream.data.OnLog()
		return
	}
	if stream, ok := d.streams[contextID]; ok {
		d.activeID = contextID
		d.activeRootID = stream.parentContextID
		stream.data.OnLog()
		return
	}
	if root, ok := d.roots[contextID]; ok {
		d.activeID = contextID
		d.activeRootID = contextID
		root.Context().OnLog()
		return
	}
	logger.Warn().Uint32("context_id", contextID).Msg("on_log called on unknown context")
}

// OnDelete removes the context from whichever category holds it. Roots are
// tried last since they are rarer.
func (d *Dispatcher) OnDelete(contextID uint32) {
	d.enter()
	if _, ok := d.httpStreams[contextID]; ok {
		delete(d.httpStreams, contextID)
		return
	}
	if _, ok := d.streams[contextID]; ok {
		delete(d.streams, contextID)
		return
	}
	if _, ok := d.roots[contextID]; ok {
		delete(d.roots, contextID)
		return
	}
	logger.Warn().Uint32("context_id", contextID).Msg("deleting unknown context_id")
}

func (d *Dispatcher) OnVMStart(contextID uint32, vmConfigurationSize int) bool {
	d.enter()
	if _, ok := d.roots[contextID]; !ok {
		logger.Warn().Uint32("context_id", contextID).Msg("received on_vm_start for non-root context")
		return true
	}
	configuration, err := hostGetBuffer(BufferTypeVMConfiguration, 0, vmConfigurationSize)
	if _, ok := checkConcern("vm-start-config", configuration, err); !ok {
		return false
	}
	d.activeID = contextID
	d.activeRootID = contextID
	return d.getOrCreateRoot(contextID).Context().OnVMStart(configuration)
}

func (d *Dispatcher) OnConfigure(contextID uint32, pluginConfigurationSize int) bool {
	d.enter()
	if _, ok := d.roots[contextID]; !ok {
		logger.Warn().Uint32("context_id", contextID).Msg("received on_configure for non-root context")
		return true
	}
	configuration, err := hostGetBuffer(BufferTypePluginConfiguration, 0, pluginConfigurationSize)
	if _, ok := checkConcern("configure-fetch", configuration, err); !ok {
		return false
	}
	d.activeID = contextID
	d.activeRootID = contextID
	return d.getOrCreateRoot(contextID).Context().OnConfigure(configuration)
}

func (d *Dispatcher) OnTick(contextID uint32) {
	d.enter()
	root, ok := d.roots[contextID]
	if !ok {
		logger.Warn().Uint32("context_id", contextID).Msg("received on_tick for non-root context")
		return
	}
	d.activeID = contextID
	d.activeRootID = contextID
	root.Context().OnTick()
}

func (d *Dispatcher) OnQueueReady(contextID, queueID uint32) {
	d.enter()
	root, ok := d.roots[contextID]
	if !ok {
		logger.Warn().Uint32("context_id", contextID).Msg("received on_queue_ready for non-root context")
		return
	}
	if callback, ok := d.queueCallbacks[queueID]; ok {
		callback(root, Queue{id: queueID})
	}
}

func (d *Dispatcher) OnNewConnection(contextID uint32) FilterStreamStatus {
	d.enter()
	stream, ok := d.streams[contextID]
	if !ok {
		logger.Warn().Uint32("context_id", contextID).Msg("no stream context found for on_new_connection")
		return FilterStreamStatusContinue
	}
	d.activeID = contextID
	d.activeRootID = stream.parentContextID
	return stream.data.OnNewConnection()
}

func (d *Dispatcher) OnDownstreamData(contextID uint32, dataSize int, endOfStream bool) FilterStreamStatus {
	d.enter()
	stream, ok := d.streams[contextID]
	if !ok {
		return FilterStreamStatusContinue
	}
	d.activeID = contextID
	d.activeRootID = stream.parentContextID
	return stream.data.OnDownstreamData(newDownstreamData(dataSize, endOfStream))
}

func (d *Dispatcher) OnDownstreamClose(contextID uint32, closeType CloseType) {
	d.enter()
	stream, ok := d.streams[contextID]
	if !ok {
		return
	}
	d.activeID = contextID
	d.activeRootID = stream.parentContextID
	stream.data.OnDownstreamClose(&StreamClose{closeType: closeType})
}

func (d *Dispatcher) OnUpstreamData(contextID uint32, dataSize int, endOfStream bool) FilterStreamStatus {
	d.enter()
	stream, ok := d.streams[contextID]
	if !ok {
		return FilterStreamStatusContinue
	}
	d.activeID = contextID
	d.activeRootID = stream.parentContextID
	return stream.data.OnUpstreamData(newUpstreamData(dataSize, endOfStream))
}

func (d *Dispatcher) OnUpstreamClose(contextID uint32, closeType CloseType) {
	d.enter()
	stream, ok := d.streams[contextID]
	if !ok {
		return
	}
	d.activeID = contextID
	d.activeRootID = stream.parentContextID
	stream.data.OnUpstreamClose(&StreamClose{closeType: closeType})
}

func (d *Dispatcher) OnHTTPRequestHeaders(contextID uint32, headerCount int, endOfStream bool) FilterHeadersStatus {
	d.enter()
	context, ok := d.httpStreams[contextID]
	if !ok {
		logger.Warn().Uint32("context_id", contextID).Msg("no http context found for on_http_request_headers")
		return FilterHeadersStatusContinue
	}
	d.activeID = contextID
	d.activeRootID = context.parentContextID
	return context.data.OnHTTPRequestHeaders(newRequestHeaders(headerCount, endOfStream))
}

func (d *Dispatcher) OnHTTPRequestBody(contextID uint32, bodySize int, endOfStream bool) FilterDataStatus {
	d.enter()
	context, ok := d.httpStreams[contextID]
	if !ok {
		logger.Warn().Uint32("context_id", contextID).Msg("no http context found for on_http_request_body")
		return FilterDataStatusContinue
	}
	d.activeID = contextID
	d.activeRootID = context.parentContextID
	return context.data.OnHTTPRequestBody(newRequestBody(bodySize, endOfStream))
}

func (d *Dispatcher) OnHTTPRequestTrailers(contextID uint32, trailerCount int) FilterTrailersStatus {
	d.enter()
	context, ok := d.httpStreams[contextID]
	if !ok {
		logger.Warn().Uint32("context_id", contextID).Msg("no http context found for on_http_request_trailers")
		return FilterTrailersStatusContinue
	}
	d.activeID = contextID
	d.activeRootID = context.parentContextID
	return context.data.OnHTTPRequestTrailers(newRequestTrailers(trailerCount))
}

func (d *Dispatcher) OnHTTPResponseHeaders(contextID uint32, headerCount int, endOfStream bool) FilterHeadersStatus {
	d.enter()
	context, ok := d.httpStreams[contextID]
	if !ok {
		logger.Warn().Uint32("context_id", contextID).Msg("no http context found for on_http_response_headers")
		return FilterHeadersStatusContinue
	}
	d.activeID = contextID
	d.activeRootID = context.parentContextID
	return context.data.OnHTTPResponseHeaders(newResponseHeaders(headerCount, endOfStream))
}

func (d *Dispatcher) OnHTTPResponseBody(contextID uint32, bodySize int, endOfStream bool) FilterDataStatus {
	d.enter()
	context, ok := d.httpStreams[contextID]
	if !ok {
		logger.Warn().Uint32("context_id", contextID).Msg("no http context found for on_http_response_body")
		return FilterDataStatusContinue
	}
	d.activeID = contextID
	d.activeRootID = context.parentContextID
	return context.data.OnHTTPResponseBody(newResponseBody(bodySize, endOfStream))
}

func (d *Dispatcher) OnHTTPResponseTrailers(contextID uint32, trailerCount int) FilterTrailersStatus {
	d.enter()
	context, ok := d.httpStreams[contextID]
	if !ok {
		logger.Warn().Uint32("context_id", contextID).Msg("no http context found for on_http_response_trailers")
		return FilterTrailersStatusContinue
	}
	d.activeID = contextID
	d.activeRootID = context.parentContextID
	return context.data.OnHTTPResponseTrailers(newResponseTrailers(trailerCount))
}

// OnHTTPCallResponse delivers a one-shot unary HTTP completion. The entry
// is consumed before delivery, so a duplicate event for the same token is
// treated as unknown.
func (d *Dispatcher) OnHTTPCallResponse(token uint32, numHeaders, bodySize, numTrailers int) {
	d.enter()
	callback, ok := d.httpCallbacks[token]
	if !ok {
		logger.Debug().Uint32("token", token).Msg("received http_call_response for token with no registered callback")
		return
	}
	delete(d.httpCallbacks, token)
	root, ok := d.roots[callback.rootContextID]
	if !ok {
		logger.Debug().Uint32("root_id", callback.rootContextID).Msg("http callback referenced non-existing root context")
		return
	}
	scope, ok := d.enterEffective(callback.contextID, callback.rootContextID, "http callback")
	if !ok {
		return
	}
	defer scope.exit()
	callback.callback(root, newHTTPCallResponse(numHeaders, bodySize, numTrailers))
}

func (d *Dispatcher) OnGrpcReceiveInitialMetadata(token uint32, numHeaders int) {
	d.enter()
	callback, ok := d.grpcStreams[token]
	if !ok {
		logger.Debug().Uint32("token", token).Msg("received grpc initial metadata for unknown token")
		return
	}
	if callback.initialMeta == nil {
		return
	}
	root, ok := d.roots[callback.rootContextID]
	if !ok {
		logger.Debug().Uint32("root_id", callback.rootContextID).Msg("grpc stream referenced non-existing root context")
		return
	}
	scope, ok := d.enterEffective(callback.contextID, callback.rootContextID, "grpc stream")
	if !ok {
		return
	}
	defer scope.exit()
	callback.initialMeta(root, GrpcStreamHandle{token: token}, newGrpcStreamInitialMetadata(numHeaders))
}

// OnGrpcReceive delivers either a unary gRPC completion (one-shot, entry
// consumed) or a stream message (entry persists until close).
func (d *Dispatcher) OnGrpcReceive(token uint32, responseSize int) {
	d.enter()
	if callback, ok := d.grpcCallbacks[token]; ok {
		delete(d.grpcCallbacks, token)
		root, ok := d.roots[callback.rootContextID]
		if !ok {
			logger.Debug().Uint32("root_id", callback.rootContextID).Msg("grpc callback referenced non-existing root context")
			return
		}
		scope, ok := d.enterEffective(callback.contextID, callback.rootContextID, "grpc callback")
		if !ok {
			return
		}
		defer scope.exit()
		callback.callback(root, newGrpcCallResponse(token, GrpcCodeOK, "", responseSize))
		return
	}
	if callback, ok := d.grpcStreams[token]; ok {
		if callback.message == nil {
			return
		}
		root, ok := d.roots[callback.rootContextID]
		if !ok {
			logger.Debug().Uint32("root_id", callback.rootContextID).Msg("grpc stream referenced non-existing root context")
			return
		}
		scope, ok := d.enterEffective(callback.contextID, callback.rootContextID, "grpc stream")
		if !ok {
			return
		}
		defer scope.exit()
		callback.message(root, GrpcStreamHandle{token: token}, newGrpcStreamMessage(GrpcCodeOK, "", responseSize))
		return
	}
	logger.Debug().Uint32("token", token).Msg("received grpc message for unknown token")
}

func (d *Dispatcher) OnGrpcReceiveTrailingMetadata(token uint32, numTrailers int) {
	d.enter()
	callback, ok := d.grpcStreams[token]
	if !ok {
		logger.Debug().Uint32("token", token).Msg("received grpc trailing metadata for unknown token")
		return
	}
	if callback.trailerMeta == nil {
		return
	}
	root, ok := d.roots[callback.rootContextID]
	if !ok {
		logger.Debug().Uint32("root_id", callback.rootContextID).Msg("grpc stream referenced non-existing root context")
		return
	}
	scope, ok := d.enterEffective(callback.contextID, callback.rootContextID, "grpc stream")
	if !ok {
		return
	}
	defer scope.exit()
	callback.trailerMeta(root, GrpcStreamHandle{token: token}, newGrpcStreamTrailingMetadata(numTrailers))
}

// OnGrpcClose completes a unary call or removes a stream entry. The status
// code delivered in-band is reconciled against one fetched independently
// from the host; the fetched value is authoritative.
func (d *Dispatcher) OnGrpcClose(token uint32, statusCode uint32) {
	d.enter()
	if callback, ok := d.grpcCallbacks[token]; ok {
		delete(d.grpcCallbacks, token)
		root, ok := d.roots[callback.rootContextID]
		if !ok {
			logger.Debug().Uint32("root_id", callback.rootContextID).Msg("grpc callback referenced non-existing root context")
			return
		}
		scope, ok := d.enterEffective(callback.contextID, callback.rootContextID, "grpc callback")
		if !ok {
			return
		}
		defer scope.exit()
		status, message, err := hostGetGrpcStatus()
		if _, ok := checkConcern("grpc-call-close-status", status, err); !ok {
			return
		}
		if status != statusCode {
			logger.Warn().Uint32("token", token).
				Uint32("event_status", statusCode).
				Uint32("fetched_status", status).
				Msg("status code mismatch for on_grpc_close")
		}
		callback.callback(root, newGrpcCallResponse(token, GrpcCode(status), message, 0))
		return
	}
	if callback, ok := d.grpcStreams[token]; ok {
		delete(d.grpcStreams, token)
		if callback.close == nil {
			return
		}
		root, ok := d.roots[callback.rootContextID]
		if !ok {
			logger.Debug().Uint32("root_id", callback.rootContextID).Msg("grpc stream referenced non-existing root context")
			return
		}
		scope, ok := d.enterEffective(callback.contextID, callback.rootContextID, "grpc stream")
		if !ok {
			return
		}
		defer scope.exit()
		status, message, err := hostGetGrpcStatus()
		if _, ok := checkConcern("grpc-stream-close-status", status, err); !ok {
			return
		}
		if status != statusCode {
			logger.Warn().Uint32("token", token).
				Uint32("event_status", statusCode).
				Uint32("fetched_status", status).
				Msg("status code mismatch for on_grpc_close")
		}
		callback.close(root, newGrpcStreamClose(token, GrpcCode(status), message))
		return
	}
	logger.Debug().Uint32("token", token).Msg("received grpc close for unknown token")
}
