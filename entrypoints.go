package proxysdk

// Package-level event entry points, delegating to the default dispatcher.
// Their names and order match the proxy-wasm ABI exports; a wasm build
// exports these directly, a native embedding calls them from its event
// loop.

func ProxyOnContextCreate(contextID, parentContextID uint32) {
	defaultDispatcher.OnContextCreate(contextID, parentContextID)
}

func ProxyOnDone(contextID uint32) bool {
	return defaultDispatcher.OnDone(contextID)
}

func ProxyOnLog(contextID uint32) {
	defaultDispatcher.OnLog(contextID)
}

func ProxyOnDelete(contextID uint32) {
	defaultDispatcher.OnDelete(contextID)
}

func ProxyOnVMStart(contextID uint32, vmConfigurationSize int) bool {
	return defaultDispatcher.OnVMStart(contextID, vmConfigurationSize)
}

func ProxyOnConfigure(contextID uint32, pluginConfigurationSize int) bool {
	return defaultDispatcher.OnConfigure(contextID, pluginConfigurationSize)
}

func ProxyOnTick(contextID uint32) {
	defaultDispatcher.OnTick(contextID)
}

func ProxyOnQueueReady(contextID, queueID uint32) {
	defaultDispatcher.OnQueueReady(contextID, queueID)
}

func ProxyOnNewConnection(contextID uint32) FilterStreamStatus {
	return defaultDispatcher.OnNewConnection(contextID)
}

func ProxyOnDownstreamData(contextID uint32, dataSize int, endOfStream bool) FilterStreamStatus {
	return defaultDispatcher.OnDownstreamData(contextID, dataSize, endOfStream)
}

func ProxyOnDownstreamConnectionClose(contextID uint32, closeType CloseType) {
	defaultDispatcher.OnDownstreamClose(contextID, closeType)
}

func ProxyOnUpstreamData(contextID uint32, dataSize int, endOfStream bool) FilterStreamStatus {
	return defaultDispatcher.OnUpstreamData(contextID, dataSize, endOfStream)
}

func ProxyOnUpstreamConnectionClose(contextID uint32, closeType CloseType) {
	defaultDispatcher.OnUpstreamClose(contextID, closeType)
}

func ProxyOnRequestHeaders(contextID uint32, headerCount int, endOfStream bool) FilterHeadersStatus {
	return defaultDispatcher.OnHTTPRequestHeaders(contextID, headerCount, endOfStream)
}

func ProxyOnRequestBody(contextID uint32, bodySize int, endOfStream bool) FilterDataStatus {
	return defaultDispatcher.OnHTTPRequestBody(contextID, bodySize, endOfStream)
}

func ProxyOnRequestTrailers(contextID uint32, trailerCount int) FilterTrailersStatus {
	return defaultDispatcher.OnHTTPRequestTrailers(contextID, trailerCount)
}

func ProxyOnResponseHeaders(contextID uint32, headerCount int, endOfStream bool) FilterHeadersStatus {
	return defaultDispatcher.OnHTTPResponseHeaders(contextID, headerCount, endOfStream)
}

func ProxyOnResponseBody(contextID uint32, bodySize int, endOfStream bool) FilterDataStatus {
	return defaultDispatcher.OnHTTPResponseBody(contextID, bodySize, endOfStream)
}

func ProxyOnResponseTrailers(contextID uint32, trailerCount int) FilterTrailersStatus {
	return defaultDispatcher.OnHTTPResponseTrailers(contextID, trailerCount)
}

func ProxyOnHTTPCallResponse(token uint32, numHeaders, bodySize, numTrailers int) {
	defaultDispatcher.OnHTTPCallResponse(token, numHeaders, bodySize, numTrailers)
}

func ProxyOnGrpcReceiveInitialMetadata(token uint32, numHeaders int) {
	defaultDispatcher.OnGrpcReceiveInitialMetadata(token, numHeaders)
}

func ProxyOnGrpcReceive(token uint32, responseSize int) {
	defaultDispatcher.OnGrpcReceive(token, responseSize)
}

func ProxyOnGrpcReceiveTrailingMetadata(token uint32, numTrailers int) {
	defaultDispatcher.OnGrpcReceiveTrailingMetadata(token, numTrailers)
}

func ProxyOnGrpcClose(token uint32, statusCode uint32) {
	defaultDispatcher.OnGrpcClose(token, statusCode)
}
