package proxysdk

// FilterHeadersStatus is the return status for header callbacks.
type FilterHeadersStatus uint32

const (
	FilterHeadersStatusContinue FilterHeadersStatus = iota
	FilterHeadersStatusStopIteration
	FilterHeadersStatusContinueAndEndStream
	FilterHeadersStatusStopAllIterationAndBuffer
	FilterHeadersStatusStopAllIterationAndWatermark
)

// FilterTrailersStatus is the return status for trailer callbacks.
type FilterTrailersStatus uint32

const (
	FilterTrailersStatusContinue FilterTrailersStatus = iota
	FilterTrailersStatusStopIteration
)

// FilterDataStatus is the return status for body callbacks.
type FilterDataStatus uint32

const (
	FilterDataStatusContinue FilterDataStatus = iota
	FilterDataStatusStopAllIterationAndBuffer
	FilterDataStatusStopAllIterationAndWatermark
	FilterDataStatusStopIterationNoBuffer
)

// HTTPContext handles the events of one request-scoped context.
type HTTPContext interface {
	BaseContext

	OnHTTPRequestHeaders(headers *RequestHeaders) FilterHeadersStatus
	OnHTTPRequestBody(body *RequestBody) FilterDataStatus
	OnHTTPRequestTrailers(trailers *RequestTrailers) FilterTrailersStatus
	OnHTTPResponseHeaders(headers *ResponseHeaders) FilterHeadersStatus
	OnHTTPResponseBody(body *ResponseBody) FilterDataStatus
	OnHTTPResponseTrailers(trailers *ResponseTrailers) FilterTrailersStatus
}

// DefaultHTTPContext provides continue-everything HTTP callbacks for
// embedding.
type DefaultHTTPContext struct {
	DefaultBaseContext
}

func (DefaultHTTPContext) OnHTTPRequestHeaders(*RequestHeaders) FilterHeadersStatus {
	return FilterHeadersStatusContinue
}

func (DefaultHTTPContext) OnHTTPRequestBody(*RequestBody) FilterDataStatus {
	return FilterDataStatusContinue
}

func (DefaultHTTPContext) OnHTTPRequestTrailers(*RequestTrailers) FilterTrailersStatus {
	return FilterTrailersStatusContinue
}

func (DefaultHTTPContext) OnHTTPResponseHeaders(*ResponseHeaders) FilterHeadersStatus {
	return FilterHeadersStatusContinue
}

func (DefaultHTTPContext) OnHTTPResponseBody(*ResponseBody) FilterDataStatus {
	return FilterDataStatusContinue
}

func (DefaultHTTPContext) OnHTTPResponseTrailers(*ResponseTrailers) FilterTrailersStatus {
	return FilterTrailersStatusContinue
}

// httpControl carries the request/response-direction host operations shared
// by all views of one HTTP direction.
type httpControl struct {
	kind  StreamKind
	label string
}

// Resume resumes a paused HTTP request/response.
func (c httpControl) Resume() {
	logConcern("resume-"+c.label, hostContinueStream(c.kind))
}

// Reset resets the HTTP request/response.
func (c httpControl) Reset() {
	logConcern("reset-"+c.label, hostCloseStream(c.kind))
}

// SendHTTPResponse sends an early HTTP response, terminating the current
// request/response.
func (c httpControl) SendHTTPResponse(statusCode uint32, headers []MapEntry, body []byte) error {
	return hostSendHTTPResponse(statusCode, headers, body)
}

// Done marks this transaction as complete.
func (c httpControl) Done() {
	logConcern("trigger-done", hostDone())
}

// headerMap exposes one host header/trailer map.
type headerMap struct {
	mapType MapType
	label   string
}

// All returns every entry in this block.
func (m headerMap) All() []MapEntry {
	entries, err := hostGetMap(m.mapType)
	logConcern("get-all-"+m.label, err)
	return entries
}

// Get returns a specific entry, or nil when absent.
func (m headerMap) Get(name string) []byte {
	value, err := hostGetMapValue(m.mapType, name)
	logConcern("get-"+m.label, err)
	return value
}

// Set replaces a specific entry.
func (m headerMap) Set(name string, value []byte) {
	logConcern("set-"+m.label, hostSetMapValue(m.mapType, name, value))
}

// SetAll replaces every entry in this block.
func (m headerMap) SetAll(entries []MapEntry) {
	logConcern("set-all-"+m.label, hostSetMap(m.mapType, entries))
}

// Add appends an entry to this block, keeping existing values.
func (m headerMap) Add(name string, value []byte) {
	logConcern("add-"+m.label, hostAddMapValue(m.mapType, name, value))
}

// Remove removes an entry from this block.
func (m headerMap) Remove(name string) {
	logConcern("remove-"+m.label, hostSetMapValue(m.mapType, name, nil))
}

// bodyBuffer exposes one host byte buffer of a known size.
type bodyBuffer struct {
	bufType BufferType
	label   string
	size    int
}

// BodySize returns the length of this body fragment.
func (b bodyBuffer) BodySize() int {
	return b.size
}

// Get returns a range of the body content, clamped to the fragment size.
func (b bodyBuffer) Get(start, length int) []byte {
	start, length = clampRange(start, length, b.size)
	value, err := hostGetBuffer(b.bufType, start, length)
	logConcern("get-"+b.label, err)
	return value
}

// Set overwrites a range of the body content.
func (b bodyBuffer) Set(start, length int, value []byte) {
	start, length = clampRange(start, length, b.size)
	logConcern("set-"+b.label, hostSetBuffer(b.bufType, start, length, value))
}

// All returns the entire body fragment.
func (b bodyBuffer) All() []byte {
	return b.Get(0, b.size)
}

// Replace replaces the entire body fragment with value.
func (b bodyBuffer) Replace(value []byte) {
	b.Set(0, b.size, value)
}

// Clear removes the entire body fragment.
func (b bodyBuffer) Clear() {
	b.Replace(nil)
}

func clampRange(start, length, limit int) (int, int) {
	if start < 0 {
		start = 0
	}
	if start > limit {
		start = limit
	}
	if length < 0 || start+length > limit {
		length = limit - start
	}
	return start, length
}

// RequestHeaders is the view passed to OnHTTPRequestHeaders.
type RequestHeaders struct {
	httpControl
	headerMap
	headerCount int
	endOfStream bool
}

func newRequestHeaders(headerCount int, endOfStream bool) *RequestHeaders {
	return &RequestHeaders{
		httpControl: httpControl{kind: StreamKindHTTPRequest, label: "http-request"},
		headerMap:   headerMap{mapType: MapTypeHTTPRequestHeaders, label: "request-header"},
		headerCount: headerCount,
		endOfStream: endOfStream,
	}
}

// HeaderCount returns the number of headers contained in this block.
func (h *RequestHeaders) HeaderCount() int { return h.headerCount }

// EndOfStream reports whether this is the last block.
func (h *RequestHeaders) EndOfStream() bool { return h.endOfStream }

// RequestBody is the view passed to OnHTTPRequestBody.
type RequestBody struct {
	httpControl
	bodyBuffer
	endOfStream bool
}

func newRequestBody(bodySize int, endOfStream bool) *RequestBody {
	return &RequestBody{
		httpControl: httpControl{kind: StreamKindHTTPRequest, label: "http-request"},
		bodyBuffer:  bodyBuffer{bufType: BufferTypeHTTPRequestBody, label: "request-body", size: bodySize},
		endOfStream: endOfStream,
	}
}

// EndOfStream reports whether this is the last block.
func (b *RequestBody) EndOfStream() bool { return b.endOfStream }

// RequestTrailers is the view passed to OnHTTPRequestTrailers.
type RequestTrailers struct {
	httpControl
	headerMap
	trailerCount int
}

func newRequestTrailers(trailerCount int) *RequestTrailers {
	return &RequestTrailers{
		httpControl:  httpControl{kind: StreamKindHTTPRequest, label: "http-request"},
		headerMap:    headerMap{mapType: MapTypeHTTPRequestTrailers, label: "request-trailer"},
		trailerCount: trailerCount,
	}
}

// TrailerCount returns the number of trailers contained in this block.
func (t *RequestTrailers) TrailerCount() int { return t.trailerCount }

// ResponseHeaders is the view passed to OnHTTPResponseHeaders.
type ResponseHeaders struct {
	httpControl
	headerMap
	headerCount int
	endOfStream bool
}

func newResponseHeaders(headerCount int, endOfStream bool) *ResponseHeaders {
	return &ResponseHeaders{
		httpControl: httpControl{kind: StreamKindHTTPResponse, label: "http-response"},
		headerMap:   headerMap{mapType: MapTypeHTTPResponseHeaders, label: "response-header"},
		headerCount: headerCount,
		endOfStream: endOfStream,
	}
}

// HeaderCount returns the number of headers contained in this block.
func (h *ResponseHeaders) HeaderCount() int { return h.headerCount }

// EndOfStream reports whether this is the last block.
func (h *ResponseHeaders) EndOfStream() bool { return h.endOfStream }

// ResponseBody is the view passed to OnHTTPResponseBody.
type ResponseBody struct {
	httpControl
	bodyBuffer
	endOfStream bool
}

func newResponseBody(bodySize int, endOfStream bool) *ResponseBody {
	return &ResponseBody{
		httpControl: httpControl{kind: StreamKindHTTPResponse, label: "http-response"},
		bodyBuffer:  bodyBuffer{bufType: BufferTypeHTTPResponseBody, label: "response-body", size: bodySize},
		endOfStream: endOfStream,
	}
}

// EndOfStream reports whether this is the last block.
func (b *ResponseBody) EndOfStream() bool { return b.endOfStream }

// ResponseTrailers is the view passed to OnHTTPResponseTrailers.
type ResponseTrailers struct {
	httpControl
	headerMap
	trailerCount int
}

func newResponseTrailers(trailerCount int) *ResponseTrailers {
	return &ResponseTrailers{
		httpControl:  httpControl{kind: StreamKindHTTPResponse, label: "http-response"},
		headerMap:    headerMap{mapType: MapTypeHTTPResponseTrailers, label: "response-trailer"},
		trailerCount: trailerCount,
	}
}

// TrailerCount returns the number of trailers contained in this block.
func (t *ResponseTrailers) TrailerCount() int { return t.trailerCount }
