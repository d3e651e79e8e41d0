package proxysdk

// GrpcStreamBuilder assembles an outbound bidirectional gRPC stream. Each
// of the four event slots can be registered independently; unregistered
// slots drop their events silently.
type GrpcStreamBuilder struct {
	upstream        Upstream
	service         string
	method          string
	initialMetadata []MapEntry

	onInitialMetadata  func(*RootHandle, GrpcStreamHandle, *GrpcStreamInitialMetadata)
	onMessage          func(*RootHandle, GrpcStreamHandle, *GrpcStreamMessage)
	onTrailingMetadata func(*RootHandle, GrpcStreamHandle, *GrpcStreamTrailingMetadata)
	onClose            func(*RootHandle, *GrpcStreamClose)
}

// NewGrpcStream starts building an outbound gRPC stream.
func NewGrpcStream(upstream Upstream, service, method string) *GrpcStreamBuilder {
	return &GrpcStreamBuilder{upstream: upstream, service: service, method: method}
}

// Metadata adds initial gRPC metadata.
func (b *GrpcStreamBuilder) Metadata(name string, value []byte) *GrpcStreamBuilder {
	b.initialMetadata = append(b.initialMetadata, MapEntry{Key: name, Value: value})
	return b
}

// OnInitialMetadata registers the initial-metadata callback.
func (b *GrpcStreamBuilder) OnInitialMetadata(callback func(*RootHandle, GrpcStreamHandle, *GrpcStreamInitialMetadata)) *GrpcStreamBuilder {
	b.onInitialMetadata = callback
	return b
}

// OnMessage registers the per-message callback.
func (b *GrpcStreamBuilder) OnMessage(callback func(*RootHandle, GrpcStreamHandle, *GrpcStreamMessage)) *GrpcStreamBuilder {
	b.onMessage = callback
	return b
}

// OnTrailingMetadata registers the trailing-metadata callback.
func (b *GrpcStreamBuilder) OnTrailingMetadata(callback func(*RootHandle, GrpcStreamHandle, *GrpcStreamTrailingMetadata)) *GrpcStreamBuilder {
	b.onTrailingMetadata = callback
	return b
}

// OnClose registers the close callback. Close is terminal: delivering it
// removes the stream entry, so no further events arrive for the token.
func (b *GrpcStreamBuilder) OnClose(callback func(*RootHandle, *GrpcStreamClose)) *GrpcStreamBuilder {
	b.onClose = callback
	return b
}

// Open opens the stream and registers the configured slots against the
// context that is active right now.
func (b *GrpcStreamBuilder) Open() (GrpcStreamHandle, error) {
	token, err := hostOpenGrpcStream(b.upstream, b.service, b.method, b.initialMetadata)
	if err != nil {
		return GrpcStreamHandle{}, err
	}
	if b.onInitialMetadata != nil {
		current.registerGrpcStreamInitialMetadata(token, b.onInitialMetadata)
	}
	if b.onMessage != nil {
		current.registerGrpcStreamMessage(token, b.onMessage)
	}
	if b.onTrailingMetadata != nil {
		current.registerGrpcStreamTrailingMetadata(token, b.onTrailingMetadata)
	}
	if b.onClose != nil {
		current.registerGrpcStreamClose(token, b.onClose)
	}
	return GrpcStreamHandle{token: token}, nil
}

// Typed adapters for the four stream slots. Invoking one against a
// different root type panics.

func OnGrpcStreamInitialMetadata[R RootContext](callback func(R, GrpcStreamHandle, *GrpcStreamInitialMetadata)) func(*RootHandle, GrpcStreamHandle, *GrpcStreamInitialMetadata) {
	return func(root *RootHandle, stream GrpcStreamHandle, metadata *GrpcStreamInitialMetadata) {
		callback(RootAs[R](root), stream, metadata)
	}
}

func OnGrpcStreamMessage[R RootContext](callback func(R, GrpcStreamHandle, *GrpcStreamMessage)) func(*RootHandle, GrpcStreamHandle, *GrpcStreamMessage) {
	return func(root *RootHandle, stream GrpcStreamHandle, message *GrpcStreamMessage) {
		callback(RootAs[R](root), stream, message)
	}
}

func OnGrpcStreamTrailingMetadata[R RootContext](callback func(R, GrpcStreamHandle, *GrpcStreamTrailingMetadata)) func(*RootHandle, GrpcStreamHandle, *GrpcStreamTrailingMetadata) {
	return func(root *RootHandle, stream GrpcStreamHandle, metadata *GrpcStreamTrailingMetadata) {
		callback(RootAs[R](root), stream, metadata)
	}
}

func OnGrpcStreamClose[R RootContext](callback func(R, *GrpcStreamClose)) func(*RootHandle, *GrpcStreamClose) {
	return func(root *RootHandle, close *GrpcStreamClose) {
		callback(RootAs[R](root), close)
	}
}

// GrpcStreamHandle sends on and tears down one open gRPC stream.
type GrpcStreamHandle struct {
	token uint32
}

// Token returns the host-assigned stream token.
func (h GrpcStreamHandle) Token() uint32 { return h.token }

// Send writes a message to the stream. endOfStream half-closes the write
// side.
func (h GrpcStreamHandle) Send(message []byte, endOfStream bool) error {
	return hostSendGrpcStreamMessage(h.token, message, endOfStream)
}

// Cancel aborts the stream. The local entry stays registered until the
// host delivers the resulting close event.
func (h GrpcStreamHandle) Cancel() {
	logConcern("grpc-stream-cancel", hostCancelGrpcCall(h.token))
}

// Close gracefully closes the stream.
func (h GrpcStreamHandle) Close() {
	logConcern("grpc-stream-close", hostCloseGrpcStream(h.token))
}

// GrpcStreamInitialMetadata is the view passed to initial-metadata
// callbacks.
type GrpcStreamInitialMetadata struct {
	numElements int
}

func newGrpcStreamInitialMetadata(numElements int) *GrpcStreamInitialMetadata {
	return &GrpcStreamInitialMetadata{numElements: numElements}
}

// NumElements returns the number of metadata entries.
func (m *GrpcStreamInitialMetadata) NumElements() int { return m.numElements }

// All returns every metadata entry.
func (m *GrpcStreamInitialMetadata) All() []MapEntry {
	entries, err := hostGetMap(MapTypeGrpcReceiveInitialMetadata)
	logConcern("grpc-initial-metadata", err)
	return entries
}

// Get returns a specific metadata entry, or nil when absent.
func (m *GrpcStreamInitialMetadata) Get(name string) []byte {
	value, err := hostGetMapValue(MapTypeGrpcReceiveInitialMetadata, name)
	logConcern("grpc-initial-metadata-value", err)
	return value
}

// GrpcStreamMessage is the view passed to per-message callbacks.
type GrpcStreamMessage struct {
	statusCode    GrpcCode
	statusMessage string
	messageSize   int
}

func newGrpcStreamMessage(statusCode GrpcCode, statusMessage string, messageSize int) *GrpcStreamMessage {
	return &GrpcStreamMessage{statusCode: statusCode, statusMessage: statusMessage, messageSize: messageSize}
}

// StatusCode returns the gRPC status code attached to this message event.
func (m *GrpcStreamMessage) StatusCode() GrpcCode { return m.statusCode }

// StatusMessage returns the optional status message of this event.
func (m *GrpcStreamMessage) StatusMessage() string { return m.statusMessage }

// MessageSize returns the size of the received message.
func (m *GrpcStreamMessage) MessageSize() int { return m.messageSize }

// Message returns a range of the received message, clamped to its size.
func (m *GrpcStreamMessage) Message(start, length int) []byte {
	start, length = clampRange(start, length, m.messageSize)
	value, err := hostGetBuffer(BufferTypeGrpcReceiveBuffer, start, length)
	logConcern("grpc-stream-message", err)
	return value
}

// FullMessage returns the entire received message.
func (m *GrpcStreamMessage) FullMessage() []byte {
	return m.Message(0, m.messageSize)
}

// GrpcStreamTrailingMetadata is the view passed to trailing-metadata
// callbacks.
type GrpcStreamTrailingMetadata struct {
	numElements int
}

func newGrpcStreamTrailingMetadata(numElements int) *GrpcStreamTrailingMetadata {
	return &GrpcStreamTrailingMetadata{numElements: numElements}
}

// NumElements returns the number of metadata entries.
func (m *GrpcStreamTrailingMetadata) NumElements() int { return m.numElements }

// All returns every metadata entry.
func (m *GrpcStreamTrailingMetadata) All() []MapEntry {
	entries, err := hostGetMap(MapTypeGrpcReceiveTrailingMetadata)
	logConcern("grpc-trailing-metadata", err)
	return entries
}

// Get returns a specific metadata entry, or nil when absent.
func (m *GrpcStreamTrailingMetadata) Get(name string) []byte {
	value, err := hostGetMapValue(MapTypeGrpcReceiveTrailingMetadata, name)
	logConcern("grpc-trailing-metadata-value", err)
	return value
}

// GrpcStreamClose is the view passed to close callbacks.
type GrpcStreamClose struct {
	token         uint32
	statusCode    GrpcCode
	statusMessage string
}

func newGrpcStreamClose(token uint32, statusCode GrpcCode, statusMessage string) *GrpcStreamClose {
	return &GrpcStreamClose{token: token, statusCode: statusCode, statusMessage: statusMessage}
}

// Token returns the token of the closed stream.
func (c *GrpcStreamClose) Token() uint32 { return c.token }

// StatusCode returns the final gRPC status of the stream.
func (c *GrpcStreamClose) StatusCode() GrpcCode { return c.statusCode }

// StatusMessage returns the optional final status message.
func (c *GrpcStreamClose) StatusMessage() string { return c.statusMessage }
