package proxysdk

import "time"

const defaultCallTimeout = 10 * time.Second

// HTTPCallBuilder assembles an outbound unary HTTP call.
type HTTPCallBuilder struct {
	upstream Upstream
	headers  []MapEntry
	trailers []MapEntry
	body     []byte
	timeout  time.Duration
	callback func(*RootHandle, *HTTPCallResponse)
}

// NewHTTPCall starts building an outbound HTTP call to the given upstream
// cluster. Headers should include pseudo headers like ":method" and
// ":path"; the proxy may add more.
func NewHTTPCall(upstream Upstream) *HTTPCallBuilder {
	return &HTTPCallBuilder{upstream: upstream}
}

// Header adds a request header.
func (b *HTTPCallBuilder) Header(name string, value []byte) *HTTPCallBuilder {
	b.headers = append(b.headers, MapEntry{Key: name, Value: value})
	return b
}

// Trailer adds a request trailer.
func (b *HTTPCallBuilder) Trailer(name string, value []byte) *HTTPCallBuilder {
	b.trailers = append(b.trailers, MapEntry{Key: name, Value: value})
	return b
}

// Body sets the request body.
func (b *HTTPCallBuilder) Body(body []byte) *HTTPCallBuilder {
	b.body = body
	return b
}

// Timeout bounds the wait for a response. Default is 10 seconds.
func (b *HTTPCallBuilder) Timeout(timeout time.Duration) *HTTPCallBuilder {
	b.timeout = timeout
	return b
}

// Callback registers the completion callback. Use OnHTTPCallResponse to
// adapt a callback typed on the concrete root context.
func (b *HTTPCallBuilder) Callback(callback func(*RootHandle, *HTTPCallResponse)) *HTTPCallBuilder {
	b.callback = callback
	return b
}

// Dispatch sends the call. The response, if a callback was registered, is
// delivered later as an independent host event against the context that
// was active at this point.
func (b *HTTPCallBuilder) Dispatch() error {
	timeout := b.timeout
	if timeout == 0 {
		timeout = defaultCallTimeout
	}
	token, err := hostDispatchHTTPCall(b.upstream, b.headers, b.body, b.trailers, timeout)
	if err != nil {
		return err
	}
	if b.callback != nil {
		current.registerHTTPCallback(token, b.callback)
	}
	return nil
}

// OnHTTPCallResponse adapts a callback typed on a concrete root context
// into the stored form. Invoking it against a different root type panics.
func OnHTTPCallResponse[R RootContext](callback func(R, *HTTPCallResponse)) func(*RootHandle, *HTTPCallResponse) {
	return func(root *RootHandle, response *HTTPCallResponse) {
		callback(RootAs[R](root), response)
	}
}

// HTTPCallResponse is the completion view passed to HTTP call callbacks.
type HTTPCallResponse struct {
	numHeaders  int
	bodySize    int
	numTrailers int
}

func newHTTPCallResponse(numHeaders, bodySize, numTrailers int) *HTTPCallResponse {
	return &HTTPCallResponse{numHeaders: numHeaders, bodySize: bodySize, numTrailers: numTrailers}
}

// NumHeaders returns the number of response headers.
func (r *HTTPCallResponse) NumHeaders() int { return r.numHeaders }

// NumTrailers returns the number of response trailers.
func (r *HTTPCallResponse) NumTrailers() int { return r.numTrailers }

// BodySize returns the total size of the response body.
func (r *HTTPCallResponse) BodySize() int { return r.bodySize }

// Headers returns all response headers.
func (r *HTTPCallResponse) Headers() []MapEntry {
	entries, err := hostGetMap(MapTypeHTTPCallResponseHeaders)
	logConcern("http-call-headers", err)
	return entries
}

// Header returns a specific response header, or nil when absent.
func (r *HTTPCallResponse) Header(name string) []byte {
	value, err := hostGetMapValue(MapTypeHTTPCallResponseHeaders, name)
	logConcern("http-call-header", err)
	return value
}

// Body returns a range of the response body, clamped to the body size.
func (r *HTTPCallResponse) Body(start, length int) []byte {
	start, length = clampRange(start, length, r.bodySize)
	value, err := hostGetBuffer(BufferTypeHTTPCallResponseBody, start, length)
	logConcern("http-call-body", err)
	return value
}

// FullBody returns the entire response body.
func (r *HTTPCallResponse) FullBody() []byte {
	return r.Body(0, r.bodySize)
}

// Trailers returns all response trailers.
func (r *HTTPCallResponse) Trailers() []MapEntry {
	entries, err := hostGetMap(MapTypeHTTPCallResponseTrailers)
	logConcern("http-call-trailers", err)
	return entries
}

// Trailer returns a specific response trailer, or nil when absent.
func (r *HTTPCallResponse) Trailer(name string) []byte {
	value, err := hostGetMapValue(MapTypeHTTPCallResponseTrailers, name)
	logConcern("http-call-trailer", err)
	return value
}
