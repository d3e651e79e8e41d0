package proxysdk

import (
	"fmt"
	"time"
)

// GrpcCode is a gRPC status code.
type GrpcCode uint32

const (
	GrpcCodeOK GrpcCode = iota
	GrpcCodeCancelled
	GrpcCodeUnknown
	GrpcCodeInvalidArgument
	GrpcCodeDeadlineExceeded
	GrpcCodeNotFound
	GrpcCodeAlreadyExists
	GrpcCodePermissionDenied
	GrpcCodeResourceExhausted
	GrpcCodeFailedPrecondition
	GrpcCodeAborted
	GrpcCodeOutOfRange
	GrpcCodeUnimplemented
	GrpcCodeInternal
	GrpcCodeUnavailable
	GrpcCodeDataLoss
	GrpcCodeUnauthenticated
)

func (c GrpcCode) String() string {
	switch c {
	case GrpcCodeOK:
		return "Ok"
	case GrpcCodeCancelled:
		return "Cancelled"
	case GrpcCodeUnknown:
		return "Unknown"
	case GrpcCodeInvalidArgument:
		return "InvalidArgument"
	case GrpcCodeDeadlineExceeded:
		return "DeadlineExceeded"
	case GrpcCodeNotFound:
		return "NotFound"
	case GrpcCodeAlreadyExists:
		return "AlreadyExists"
	case GrpcCodePermissionDenied:
		return "PermissionDenied"
	case GrpcCodeResourceExhausted:
		return "ResourceExhausted"
	case GrpcCodeFailedPrecondition:
		return "FailedPrecondition"
	case GrpcCodeAborted:
		return "Aborted"
	case GrpcCodeOutOfRange:
		return "OutOfRange"
	case GrpcCodeUnimplemented:
		return "Unimplemented"
	case GrpcCodeInternal:
		return "Internal"
	case GrpcCodeUnavailable:
		return "Unavailable"
	case GrpcCodeDataLoss:
		return "DataLoss"
	case GrpcCodeUnauthenticated:
		return "Unauthenticated"
	default:
		return fmt.Sprintf("GrpcCode(%d)", uint32(c))
	}
}

// GrpcCallBuilder assembles an outbound unary gRPC call.
type GrpcCallBuilder struct {
	upstream        Upstream
	service         string
	method          string
	initialMetadata []MapEntry
	message         []byte
	timeout         time.Duration
	callback        func(*RootHandle, *GrpcCallResponse)
}

// NewGrpcCall starts building an outbound gRPC call.
func NewGrpcCall(upstream Upstream, service, method string) *GrpcCallBuilder {
	return &GrpcCallBuilder{upstream: upstream, service: service, method: method}
}

// Metadata adds initial gRPC metadata.
func (b *GrpcCallBuilder) Metadata(name string, value []byte) *GrpcCallBuilder {
	b.initialMetadata = append(b.initialMetadata, MapEntry{Key: name, Value: value})
	return b
}

// Message sets the request message.
func (b *GrpcCallBuilder) Message(message []byte) *GrpcCallBuilder {
	b.message = message
	return b
}

// Timeout bounds the wait for a response. Default is 10 seconds.
func (b *GrpcCallBuilder) Timeout(timeout time.Duration) *GrpcCallBuilder {
	b.timeout = timeout
	return b
}

// Callback registers the completion callback. Use OnGrpcCallResponse to
// adapt a callback typed on the concrete root context.
func (b *GrpcCallBuilder) Callback(callback func(*RootHandle, *GrpcCallResponse)) *GrpcCallBuilder {
	b.callback = callback
	return b
}

// Dispatch sends the call and returns a handle that can cancel it.
func (b *GrpcCallBuilder) Dispatch() (GrpcCancelHandle, error) {
	timeout := b.timeout
	if timeout == 0 {
		timeout = defaultCallTimeout
	}
	token, err := hostDispatchGrpcCall(b.upstream, b.service, b.method, b.initialMetadata, b.message, timeout)
	if err != nil {
		return GrpcCancelHandle{}, err
	}
	if b.callback != nil {
		current.registerGrpcCallback(token, b.callback)
	}
	return GrpcCancelHandle{token: token}, nil
}

// OnGrpcCallResponse adapts a callback typed on a concrete root context
// into the stored form. Invoking it against a different root type panics.
func OnGrpcCallResponse[R RootContext](callback func(R, *GrpcCallResponse)) func(*RootHandle, *GrpcCallResponse) {
	return func(root *RootHandle, response *GrpcCallResponse) {
		callback(RootAs[R](root), response)
	}
}

// GrpcCancelHandle cancels an outstanding gRPC call. Cancellation is
// fire-and-forget: the pending entry is not removed locally, and a
// completion may still arrive afterwards.
type GrpcCancelHandle struct {
	token uint32
}

// Token returns the host-assigned call token.
func (h GrpcCancelHandle) Token() uint32 { return h.token }

// Cancel attempts to cancel the gRPC call.
func (h GrpcCancelHandle) Cancel() {
	_ = hostCancelGrpcCall(h.token)
}

func (h GrpcCancelHandle) String() string {
	return fmt.Sprintf("%d", h.token)
}

// GrpcCallResponse is the completion view passed to gRPC call callbacks.
type GrpcCallResponse struct {
	handleID      uint32
	statusCode    GrpcCode
	statusMessage string
	bodySize      int
}

func newGrpcCallResponse(token uint32, statusCode GrpcCode, statusMessage string, bodySize int) *GrpcCallResponse {
	return &GrpcCallResponse{
		handleID:      token,
		statusCode:    statusCode,
		statusMessage: statusMessage,
		bodySize:      bodySize,
	}
}

// HandleID returns the gRPC handle id of the response.
func (r *GrpcCallResponse) HandleID() uint32 { return r.handleID }

// StatusCode returns the gRPC status code of the response.
func (r *GrpcCallResponse) StatusCode() GrpcCode { return r.statusCode }

// StatusMessage returns the optional gRPC status message of the response.
func (r *GrpcCallResponse) StatusMessage() string { return r.statusMessage }

// BodySize returns the total size of the response body.
func (r *GrpcCallResponse) BodySize() int { return r.bodySize }

// Headers returns all response headers.
func (r *GrpcCallResponse) Headers() []MapEntry {
	entries, err := hostGetMap(MapTypeHTTPCallResponseHeaders)
	logConcern("grpc-call-headers", err)
	return entries
}

// Header returns a specific response header, or nil when absent.
func (r *GrpcCallResponse) Header(name string) []byte {
	value, err := hostGetMapValue(MapTypeHTTPCallResponseHeaders, name)
	logConcern("grpc-call-header", err)
	return value
}

// Body returns a range of the response body, clamped to the body size.
func (r *GrpcCallResponse) Body(start, length int) []byte {
	start, length = clampRange(start, length, r.bodySize)
	value, err := hostGetBuffer(BufferTypeGrpcReceiveBuffer, start, length)
	logConcern("grpc-call-body", err)
	return value
}

// FullBody returns the entire response body.
func (r *GrpcCallResponse) FullBody() []byte {
	return r.Body(0, r.bodySize)
}

// Trailers returns all response trailers.
func (r *GrpcCallResponse) Trailers() []MapEntry {
	entries, err := hostGetMap(MapTypeHTTPCallResponseTrailers)
	logConcern("grpc-call-trailers", err)
	return entries
}

// Trailer returns a specific response trailer, or nil when absent.
func (r *GrpcCallResponse) Trailer(name string) []byte {
	value, err := hostGetMapValue(MapTypeHTTPCallResponseTrailers, name)
	logConcern("grpc-call-trailer", err)
	return value
}
