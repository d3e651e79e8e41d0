package proxysdk

// FilterStreamStatus is the return status for L4 stream callbacks.
type FilterStreamStatus uint32

const (
	FilterStreamStatusContinue FilterStreamStatus = iota
	FilterStreamStatusStopIteration
)

// CloseType describes which side closed a connection.
type CloseType uint32

const (
	CloseTypeUnknown CloseType = iota
	// CloseTypeLocal is a close initiated by the proxy.
	CloseTypeLocal
	// CloseTypeRemote is a close initiated by the peer.
	CloseTypeRemote
)

// StreamContext handles the events of one connection-scoped (L4) context.
type StreamContext interface {
	BaseContext

	// OnNewConnection is called on a new connection.
	OnNewConnection() FilterStreamStatus
	// OnDownstreamData is called when a chunk of downstream data is
	// available.
	OnDownstreamData(data *DownstreamData) FilterStreamStatus
	// OnDownstreamClose is called when a downstream connection closes.
	OnDownstreamClose(close *StreamClose)
	// OnUpstreamData is called when a chunk of upstream data is available.
	OnUpstreamData(data *UpstreamData) FilterStreamStatus
	// OnUpstreamClose is called when an upstream connection closes.
	OnUpstreamClose(close *StreamClose)
}

// DefaultStreamContext provides continue-everything stream callbacks for
// embedding.
type DefaultStreamContext struct {
	DefaultBaseContext
}

func (DefaultStreamContext) OnNewConnection() FilterStreamStatus {
	return FilterStreamStatusContinue
}

func (DefaultStreamContext) OnDownstreamData(*DownstreamData) FilterStreamStatus {
	return FilterStreamStatusContinue
}

func (DefaultStreamContext) OnDownstreamClose(*StreamClose) {}

func (DefaultStreamContext) OnUpstreamData(*UpstreamData) FilterStreamStatus {
	return FilterStreamStatusContinue
}

func (DefaultStreamContext) OnUpstreamClose(*StreamClose) {}

// streamControl carries the direction-specific host operations of one L4
// data view.
type streamControl struct {
	kind  StreamKind
	label string
}

// Resume resumes a paused direction.
func (c streamControl) Resume() {
	logConcern("resume-"+c.label, hostContinueStream(c.kind))
}

// Close closes this direction of the connection.
func (c streamControl) Close() {
	logConcern("close-"+c.label, hostCloseStream(c.kind))
}

// DownstreamData is the view passed to OnDownstreamData.
type DownstreamData struct {
	streamControl
	bodyBuffer
	endOfStream bool
}

func newDownstreamData(dataSize int, endOfStream bool) *DownstreamData {
	return &DownstreamData{
		streamControl: streamControl{kind: StreamKindDownstream, label: "downstream"},
		bodyBuffer:    bodyBuffer{bufType: BufferTypeDownstreamData, label: "downstream-data", size: dataSize},
		endOfStream:   endOfStream,
	}
}

// DataSize returns the length of this data chunk.
func (d *DownstreamData) DataSize() int { return d.size }

// EndOfStream reports whether this is the last chunk.
func (d *DownstreamData) EndOfStream() bool { return d.endOfStream }

// UpstreamData is the view passed to OnUpstreamData.
type UpstreamData struct {
	streamControl
	bodyBuffer
	endOfStream bool
}

func newUpstreamData(dataSize int, endOfStream bool) *UpstreamData {
	return &UpstreamData{
		streamControl: streamControl{kind: StreamKindUpstream, label: "upstream"},
		bodyBuffer:    bodyBuffer{bufType: BufferTypeUpstreamData, label: "upstream-data", size: dataSize},
		endOfStream:   endOfStream,
	}
}

// DataSize returns the length of this data chunk.
func (d *UpstreamData) DataSize() int { return d.size }

// EndOfStream reports whether this is the last chunk.
func (d *UpstreamData) EndOfStream() bool { return d.endOfStream }

// StreamClose is the view passed to connection close callbacks.
type StreamClose struct {
	closeType CloseType
}

// CloseType returns which side initiated the close.
func (s *StreamClose) CloseType() CloseType { return s.closeType }
