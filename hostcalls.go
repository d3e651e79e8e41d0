package proxysdk

import "time"

// LogLevel is the host-side log severity.
type LogLevel uint32

const (
	LogTrace LogLevel = iota
	LogDebug
	LogInfo
	LogWarn
	LogError
	LogCritical
)

// StreamKind identifies one of the four host data directions.
type StreamKind uint32

const (
	StreamKindHTTPRequest StreamKind = iota
	StreamKindHTTPResponse
	StreamKindDownstream
	StreamKindUpstream
)

// BufferType identifies a host-owned byte buffer.
type BufferType uint32

const (
	BufferTypeHTTPRequestBody BufferType = iota
	BufferTypeHTTPResponseBody
	BufferTypeDownstreamData
	BufferTypeUpstreamData
	BufferTypeHTTPCallResponseBody
	BufferTypeGrpcReceiveBuffer
	BufferTypeVMConfiguration
	BufferTypePluginConfiguration
	BufferTypeCallData
)

// MapType identifies a host-owned header/metadata map.
type MapType uint32

const (
	MapTypeHTTPRequestHeaders MapType = iota
	MapTypeHTTPRequestTrailers
	MapTypeHTTPResponseHeaders
	MapTypeHTTPResponseTrailers
	MapTypeGrpcReceiveInitialMetadata
	MapTypeGrpcReceiveTrailingMetadata
	MapTypeHTTPCallResponseHeaders
	MapTypeHTTPCallResponseTrailers
)

// MetricType identifies a host metric kind.
type MetricType uint32

const (
	MetricTypeCounter MetricType = iota
	MetricTypeGauge
	MetricTypeHistogram
)

// MapEntry is a single key/value pair in a host header or metadata map.
// Values are bytes because the proxy does not guarantee UTF-8 header values.
type MapEntry struct {
	Key   string
	Value []byte
}

// Host is the low-level call surface the proxy exposes to the plugin.
// In a wasm deployment this is backed by the proxy-wasm imports; tests and
// native embeddings provide their own implementation (see hosttest).
//
// Errors returned by Host methods are Status values; nil means success.
type Host interface {
	Log(level LogLevel, message string) error
	GetLogLevel() (LogLevel, error)

	CurrentTimeNanos() (uint64, error)
	SetTickPeriod(period time.Duration) error

	GetBuffer(bufType BufferType, start, length int) ([]byte, error)
	SetBuffer(bufType BufferType, start, length int, value []byte) error

	GetMap(mapType MapType) ([]MapEntry, error)
	SetMap(mapType MapType, entries []MapEntry) error
	GetMapValue(mapType MapType, key string) ([]byte, error)
	// SetMapValue sets a key; a nil value removes the key.
	SetMapValue(mapType MapType, key string, value []byte) error
	AddMapValue(mapType MapType, key string, value []byte) error

	GetProperty(path []string) ([]byte, error)
	SetProperty(path []string, value []byte) error

	// GetSharedData returns the stored value and its CAS number. A zero CAS
	// means the key has never been written.
	GetSharedData(key string) ([]byte, uint32, error)
	// SetSharedData writes the value; a zero CAS writes unconditionally,
	// otherwise the write fails with StatusCasMismatch unless the stored
	// CAS matches.
	SetSharedData(key string, value []byte, cas uint32) error

	RegisterSharedQueue(name string) (uint32, error)
	// ResolveSharedQueue reports StatusNotFound when no queue is registered
	// under the given name.
	ResolveSharedQueue(vmID, name string) (uint32, error)
	// DequeueSharedQueue reports StatusEmpty when no item is queued.
	DequeueSharedQueue(queueID uint32) ([]byte, error)
	EnqueueSharedQueue(queueID uint32, value []byte) error

	ContinueStream(kind StreamKind) error
	CloseStream(kind StreamKind) error
	SendHTTPResponse(statusCode uint32, headers []MapEntry, body []byte) error

	DispatchHTTPCall(upstream []byte, headers []MapEntry, body []byte, trailers []MapEntry, timeout time.Duration) (uint32, error)
	DispatchGrpcCall(upstream []byte, service, method string, initialMetadata []MapEntry, message []byte, timeout time.Duration) (uint32, error)
	OpenGrpcStream(upstream []byte, service, method string, initialMetadata []MapEntry) (uint32, error)
	SendGrpcStreamMessage(token uint32, message []byte, endStream bool) error
	CancelGrpcCall(token uint32) error
	CloseGrpcStream(token uint32) error
	// GetGrpcStatus returns the status code and message of the most recently
	// closed gRPC call or stream, independent of the close event payload.
	GetGrpcStatus() (uint32, string, error)

	SetEffectiveContext(contextID uint32) error
	Done() error

	DefineMetric(metricType MetricType, name string) (uint32, error)
	GetMetric(metricID uint32) (uint64, error)
	RecordMetric(metricID uint32, value uint64) error
	IncrementMetric(metricID uint32, offset int64) error
}

// The active host. The execution model is strictly single-threaded per
// instance, so plain assignment is safe; SetHost must be called before the
// first event is delivered.
var activeHost Host

// SetHost binds the host call surface used by the whole package. Native
// embeddings and tests call this once during setup.
func SetHost(h Host) {
	activeHost = h
}

// CurrentHost returns the bound host, or nil if SetHost was never called.
func CurrentHost() Host {
	return activeHost
}

func hostCall() (Host, error) {
	if activeHost == nil {
		return nil, StatusInternalFailure
	}
	return activeHost, nil
}

// Thin wrappers over the bound host. They exist so callers get a uniform
// "no host bound" failure instead of a nil dereference.

func hostLog(level LogLevel, message string) error {
	host, err := hostCall()
	if err != nil {
		return err
	}
	return host.Log(level, message)
}

func hostGetBuffer(bufType BufferType, start, length int) ([]byte, error) {
	host, err := hostCall()
	if err != nil {
		return nil, err
	}
	return host.GetBuffer(bufType, start, length)
}

func hostSetBuffer(bufType BufferType, start, length int, value []byte) error {
	host, err := hostCall()
	if err != nil {
		return err
	}
	return host.SetBuffer(bufType, start, length, value)
}

func hostGetMap(mapType MapType) ([]MapEntry, error) {
	host, err := hostCall()
	if err != nil {
		return nil, err
	}
	return host.GetMap(mapType)
}

func hostSetMap(mapType MapType, entries []MapEntry) error {
	host, err := hostCall()
	if err != nil {
		return err
	}
	return host.SetMap(mapType, entries)
}

func hostGetMapValue(mapType MapType, key string) ([]byte, error) {
	host, err := hostCall()
	if err != nil {
		return nil, err
	}
	return host.GetMapValue(mapType, key)
}

func hostSetMapValue(mapType MapType, key string, value []byte) error {
	host, err := hostCall()
	if err != nil {
		return err
	}
	return host.SetMapValue(mapType, key, value)
}

func hostAddMapValue(mapType MapType, key string, value []byte) error {
	host, err := hostCall()
	if err != nil {
		return err
	}
	return host.AddMapValue(mapType, key, value)
}

func hostGetProperty(path []string) ([]byte, error) {
	host, err := hostCall()
	if err != nil {
		return nil, err
	}
	return host.GetProperty(path)
}

func hostSetProperty(path []string, value []byte) error {
	host, err := hostCall()
	if err != nil {
		return err
	}
	return host.SetProperty(path, value)
}

func hostGetSharedData(key string) ([]byte, uint32, error) {
	host, err := hostCall()
	if err != nil {
		return nil, 0, err
	}
	return host.GetSharedData(key)
}

func hostSetSharedData(key string, value []byte, cas uint32) error {
	host, err := hostCall()
	if err != nil {
		return err
	}
	return host.SetSharedData(key, value, cas)
}

func hostRegisterSharedQueue(name string) (uint32, error) {
	host, err := hostCall()
	if err != nil {
		return 0, err
	}
	return host.RegisterSharedQueue(name)
}

func hostResolveSharedQueue(vmID, name string) (uint32, error) {
	host, err := hostCall()
	if err != nil {
		return 0, err
	}
	return host.ResolveSharedQueue(vmID, name)
}

func hostDequeueSharedQueue(queueID uint32) ([]byte, error) {
	host, err := hostCall()
	if err != nil {
		return nil, err
	}
	return host.DequeueSharedQueue(queueID)
}

func hostEnqueueSharedQueue(queueID uint32, value []byte) error {
	host, err := hostCall()
	if err != nil {
		return err
	}
	return host.EnqueueSharedQueue(queueID, value)
}

func hostContinueStream(kind StreamKind) error {
	host, err := hostCall()
	if err != nil {
		return err
	}
	return host.ContinueStream(kind)
}

func hostCloseStream(kind StreamKind) error {
	host, err := hostCall()
	if err != nil {
		return err
	}
	return host.CloseStream(kind)
}

func hostSendHTTPResponse(statusCode uint32, headers []MapEntry, body []byte) error {
	host, err := hostCall()
	if err != nil {
		return err
	}
	return host.SendHTTPResponse(statusCode, headers, body)
}

func hostDispatchHTTPCall(upstream []byte, headers []MapEntry, body []byte, trailers []MapEntry, timeout time.Duration) (uint32, error) {
	host, err := hostCall()
	if err != nil {
		return 0, err
	}
	return host.DispatchHTTPCall(upstream, headers, body, trailers, timeout)
}

func hostDispatchGrpcCall(upstream []byte, service, method string, initialMetadata []MapEntry, message []byte, timeout time.Duration) (uint32, error) {
	host, err := hostCall()
	if err != nil {
		return 0, err
	}
	return host.DispatchGrpcCall(upstream, service, method, initialMetadata, message, timeout)
}

func hostOpenGrpcStream(upstream []byte, service, method string, initialMetadata []MapEntry) (uint32, error) {
	host, err := hostCall()
	if err != nil {
		return 0, err
	}
	return host.OpenGrpcStream(upstream, service, method, initialMetadata)
}

func hostSendGrpcStreamMessage(token uint32, message []byte, endStream bool) error {
	host, err := hostCall()
	if err != nil {
		return err
	}
	return host.SendGrpcStreamMessage(token, message, endStream)
}

func hostCancelGrpcCall(token uint32) error {
	host, err := hostCall()
	if err != nil {
		return err
	}
	return host.CancelGrpcCall(token)
}

func hostCloseGrpcStream(token uint32) error {
	host, err := hostCall()
	if err != nil {
		return err
	}
	return host.CloseGrpcStream(token)
}

func hostGetGrpcStatus() (uint32, string, error) {
	host, err := hostCall()
	if err != nil {
		return 0, "", err
	}
	return host.GetGrpcStatus()
}

func hostSetEffectiveContext(contextID uint32) error {
	host, err := hostCall()
	if err != nil {
		return err
	}
	return host.SetEffectiveContext(contextID)
}

func hostDone() error {
	host, err := hostCall()
	if err != nil {
		return err
	}
	return host.Done()
}

func hostSetTickPeriod(period time.Duration) error {
	host, err := hostCall()
	if err != nil {
		return err
	}
	return host.SetTickPeriod(period)
}

func hostCurrentTimeNanos() (uint64, error) {
	host, err := hostCall()
	if err != nil {
		return 0, err
	}
	return host.CurrentTimeNanos()
}

func hostDefineMetric(metricType MetricType, name string) (uint32, error) {
	host, err := hostCall()
	if err != nil {
		return 0, err
	}
	return host.DefineMetric(metricType, name)
}

func hostGetMetric(metricID uint32) (uint64, error) {
	host, err := hostCall()
	if err != nil {
		return 0, err
	}
	return host.GetMetric(metricID)
}

func hostRecordMetric(metricID uint32, value uint64) error {
	host, err := hostCall()
	if err != nil {
		return err
	}
	return host.RecordMetric(metricID, value)
}

func hostIncrementMetric(metricID uint32, offset int64) error {
	host, err := hostCall()
	if err != nil {
		return err
	}
	return host.IncrementMetric(metricID, offset)
}
