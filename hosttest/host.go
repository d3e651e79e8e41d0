// Package hosttest provides an in-memory Host implementation for plugin
// and dispatcher tests. Every host call is recorded so tests can assert on
// what the plugin asked the proxy to do, and the knobs (buffers, maps,
// grpc status, context rejection) let tests script host behavior.
package hosttest

import (
	"strings"
	"time"

	"github.com/eapache/queue"
	"github.com/google/uuid"

	sdk "github.com/leaksignal/proxy-sdk"
)

// LogRecord is one message forwarded through the host log capability.
type LogRecord struct {
	Level   sdk.LogLevel
	Message string
}

// HTTPCallRecord captures one dispatched HTTP call.
type HTTPCallRecord struct {
	Token    uint32
	Upstream []byte
	Headers  []sdk.MapEntry
	Body     []byte
	Trailers []sdk.MapEntry
	Timeout  time.Duration
}

// GrpcCallRecord captures one dispatched unary gRPC call.
type GrpcCallRecord struct {
	Token           uint32
	Upstream        []byte
	Service         string
	Method          string
	InitialMetadata []sdk.MapEntry
	Message         []byte
	Timeout         time.Duration
}

// GrpcStreamRecord captures one opened gRPC stream.
type GrpcStreamRecord struct {
	Token           uint32
	Upstream        []byte
	Service         string
	Method          string
	InitialMetadata []sdk.MapEntry
}

// GrpcSendRecord captures one message sent on an open gRPC stream.
type GrpcSendRecord struct {
	Token     uint32
	Message   []byte
	EndStream bool
}

// SentResponse captures one early HTTP response.
type SentResponse struct {
	StatusCode uint32
	Headers    []sdk.MapEntry
	Body       []byte
}

type sharedEntry struct {
	value []byte
	cas   uint32
}

type namedQueue struct {
	id    uint32
	items *queue.Queue
}

// Host is an in-memory sdk.Host. The zero value is not usable; construct
// with New. Fields are exported for direct test access; Host is not safe
// for concurrent use, matching the single-threaded host call contract.
type Host struct {
	// VMID identifies this fake VM for queue resolution.
	VMID string

	// LogLevel is returned by GetLogLevel.
	LogLevel sdk.LogLevel
	// TimeNanos, when nonzero, pins CurrentTimeNanos.
	TimeNanos uint64
	// TickPeriod holds the most recent SetTickPeriod value.
	TickPeriod time.Duration

	// Buffers and Maps hold the host-owned data the plugin reads and
	// writes. Tests pre-populate them to script events.
	Buffers map[sdk.BufferType][]byte
	Maps    map[sdk.MapType][]sdk.MapEntry

	// FailBuffers makes GetBuffer fail with the given error for a buffer
	// type, regardless of its contents.
	FailBuffers map[sdk.BufferType]error

	// GrpcStatusCode and GrpcStatusMessage are returned by GetGrpcStatus.
	GrpcStatusCode    uint32
	GrpcStatusMessage string

	// RejectContexts makes SetEffectiveContext fail for the listed ids.
	RejectContexts map[uint32]bool
	// EffectiveContexts is the history of accepted SetEffectiveContext ids.
	EffectiveContexts []uint32

	Logs              []LogRecord
	HTTPCalls         []HTTPCallRecord
	GrpcCalls         []GrpcCallRecord
	GrpcStreams       []GrpcStreamRecord
	GrpcSends         []GrpcSendRecord
	CancelledCalls    []uint32
	ClosedGrpcStreams []uint32
	ContinuedStreams  []sdk.StreamKind
	ClosedStreams     []sdk.StreamKind
	SentResponses     []SentResponse
	DoneCalls         int

	properties map[string][]byte
	shared     map[string]*sharedEntry
	nextCAS    uint32

	queuesByName map[string]*namedQueue
	queuesByID   map[uint32]*namedQueue
	nextQueueID  uint32

	metricIDs    map[string]uint32
	metricValues map[uint32]uint64
	nextMetricID uint32

	nextToken uint32
}

var _ sdk.Host = (*Host)(nil)

// New constructs an empty fake host with a random VM id.
func New() *Host {
	return &Host{
		VMID:           uuid.NewString(),
		LogLevel:       sdk.LogInfo,
		Buffers:        map[sdk.BufferType][]byte{},
		Maps:           map[sdk.MapType][]sdk.MapEntry{},
		FailBuffers:    map[sdk.BufferType]error{},
		RejectContexts: map[uint32]bool{},
		properties:     map[string][]byte{},
		shared:         map[string]*sharedEntry{},
		queuesByName:   map[string]*namedQueue{},
		queuesByID:     map[uint32]*namedQueue{},
		metricIDs:      map[string]uint32{},
		metricValues:   map[uint32]uint64{},
	}
}

func (h *Host) nextCallToken() uint32 {
	h.nextToken++
	return h.nextToken
}

func propertyKey(path []string) string {
	return strings.Join(path, "\x00")
}

func (h *Host) Log(level sdk.LogLevel, message string) error {
	h.Logs = append(h.Logs, LogRecord{Level: level, Message: message})
	return nil
}

func (h *Host) GetLogLevel() (sdk.LogLevel, error) {
	return h.LogLevel, nil
}

func (h *Host) CurrentTimeNanos() (uint64, error) {
	if h.TimeNanos != 0 {
		return h.TimeNanos, nil
	}
	return uint64(time.Now().UnixNano()), nil
}

func (h *Host) SetTickPeriod(period time.Duration) error {
	h.TickPeriod = period
	return nil
}

func (h *Host) GetBuffer(bufType sdk.BufferType, start, length int) ([]byte, error) {
	if err := h.FailBuffers[bufType]; err != nil {
		return nil, err
	}
	buffer := h.Buffers[bufType]
	if start < 0 || length < 0 {
		return nil, sdk.StatusBadArgument
	}
	if start > len(buffer) {
		start = len(buffer)
	}
	end := start + length
	if end > len(buffer) {
		end = len(buffer)
	}
	value := make([]byte, end-start)
	copy(value, buffer[start:end])
	return value, nil
}

func (h *Host) SetBuffer(bufType sdk.BufferType, start, length int, value []byte) error {
	buffer := h.Buffers[bufType]
	if start < 0 || length < 0 || start > len(buffer) {
		return sdk.StatusBadArgument
	}
	end := start + length
	if end > len(buffer) {
		end = len(buffer)
	}
	replaced := append([]byte{}, buffer[:start]...)
	replaced = append(replaced, value...)
	replaced = append(replaced, buffer[end:]...)
	h.Buffers[bufType] = replaced
	return nil
}

func (h *Host) GetMap(mapType sdk.MapType) ([]sdk.MapEntry, error) {
	return append([]sdk.MapEntry{}, h.Maps[mapType]...), nil
}

func (h *Host) SetMap(mapType sdk.MapType, entries []sdk.MapEntry) error {
	h.Maps[mapType] = append([]sdk.MapEntry{}, entries...)
	return nil
}

func (h *Host) GetMapValue(mapType sdk.MapType, key string) ([]byte, error) {
	for _, entry := range h.Maps[mapType] {
		if entry.Key == key {
			return entry.Value, nil
		}
	}
	return nil, nil
}

func (h *Host) SetMapValue(mapType sdk.MapType, key string, value []byte) error {
	entries := h.Maps[mapType]
	kept := entries[:0]
	for _, entry := range entries {
		if entry.Key != key {
			kept = append(kept, entry)
		}
	}
	if value != nil {
		kept = append(kept, sdk.MapEntry{Key: key, Value: value})
	}
	h.Maps[mapType] = kept
	return nil
}

func (h *Host) AddMapValue(mapType sdk.MapType, key string, value []byte) error {
	h.Maps[mapType] = append(h.Maps[mapType], sdk.MapEntry{Key: key, Value: value})
	return nil
}

func (h *Host) GetProperty(path []string) ([]byte, error) {
	value, ok := h.properties[propertyKey(path)]
	if !ok {
		return nil, sdk.StatusNotFound
	}
	return value, nil
}

func (h *Host) SetProperty(path []string, value []byte) error {
	h.properties[propertyKey(path)] = value
	return nil
}

func (h *Host) GetSharedData(key string) ([]byte, uint32, error) {
	entry, ok := h.shared[key]
	if !ok {
		return nil, 0, nil
	}
	return entry.value, entry.cas, nil
}

func (h *Host) SetSharedData(key string, value []byte, cas uint32) error {
	entry, ok := h.shared[key]
	if cas != 0 {
		if !ok || entry.cas != cas {
			return sdk.StatusCasMismatch
		}
	}
	h.nextCAS++
	h.shared[key] = &sharedEntry{value: value, cas: h.nextCAS}
	return nil
}

func (h *Host) RegisterSharedQueue(name string) (uint32, error) {
	if existing, ok := h.queuesByName[name]; ok {
		return existing.id, nil
	}
	h.nextQueueID++
	q := &namedQueue{id: h.nextQueueID, items: queue.New()}
	h.queuesByName[name] = q
	h.queuesByID[q.id] = q
	return q.id, nil
}

func (h *Host) ResolveSharedQueue(vmID, name string) (uint32, error) {
	if vmID != "" && vmID != h.VMID {
		return 0, sdk.StatusNotFound
	}
	q, ok := h.queuesByName[name]
	if !ok {
		return 0, sdk.StatusNotFound
	}
	return q.id, nil
}

func (h *Host) DequeueSharedQueue(queueID uint32) ([]byte, error) {
	q, ok := h.queuesByID[queueID]
	if !ok {
		return nil, sdk.StatusNotFound
	}
	if q.items.Length() == 0 {
		return nil, sdk.StatusEmpty
	}
	return q.items.Remove().([]byte), nil
}

func (h *Host) EnqueueSharedQueue(queueID uint32, value []byte) error {
	q, ok := h.queuesByID[queueID]
	if !ok {
		return sdk.StatusNotFound
	}
	q.items.Add(append([]byte{}, value...))
	return nil
}

func (h *Host) ContinueStream(kind sdk.StreamKind) error {
	h.ContinuedStreams = append(h.ContinuedStreams, kind)
	return nil
}

func (h *Host) CloseStream(kind sdk.StreamKind) error {
	h.ClosedStreams = append(h.ClosedStreams, kind)
	return nil
}

func (h *Host) SendHTTPResponse(statusCode uint32, headers []sdk.MapEntry, body []byte) error {
	h.SentResponses = append(h.SentResponses, SentResponse{StatusCode: statusCode, Headers: headers, Body: body})
	return nil
}

func (h *Host) DispatchHTTPCall(upstream []byte, headers []sdk.MapEntry, body []byte, trailers []sdk.MapEntry, timeout time.Duration) (uint32, error) {
	token := h.nextCallToken()
	h.HTTPCalls = append(h.HTTPCalls, HTTPCallRecord{
		Token:    token,
		Upstream: upstream,
		Headers:  headers,
		Body:     body,
		Trailers: trailers,
		Timeout:  timeout,
	})
	return token, nil
}

func (h *Host) DispatchGrpcCall(upstream []byte, service, method string, initialMetadata []sdk.MapEntry, message []byte, timeout time.Duration) (uint32, error) {
	token := h.nextCallToken()
	h.GrpcCalls = append(h.GrpcCalls, GrpcCallRecord{
		Token:           token,
		Upstream:        upstream,
		Service:         service,
		Method:          method,
		InitialMetadata: initialMetadata,
		Message:         message,
		Timeout:         timeout,
	})
	return token, nil
}

func (h *Host) OpenGrpcStream(upstream []byte, service, method string, initialMetadata []sdk.MapEntry) (uint32, error) {
	token := h.nextCallToken()
	h.GrpcStreams = append(h.GrpcStreams, GrpcStreamRecord{
		Token:           token,
		Upstream:        upstream,
		Service:         service,
		Method:          method,
		InitialMetadata: initialMetadata,
	})
	return token, nil
}

func (h *Host) SendGrpcStreamMessage(token uint32, message []byte, endStream bool) error {
	h.GrpcSends = append(h.GrpcSends, GrpcSendRecord{Token: token, Message: message, EndStream: endStream})
	return nil
}

func (h *Host) CancelGrpcCall(token uint32) error {
	h.CancelledCalls = append(h.CancelledCalls, token)
	return nil
}

func (h *Host) CloseGrpcStream(token uint32) error {
	h.ClosedGrpcStreams = append(h.ClosedGrpcStreams, token)
	return nil
}

func (h *Host) GetGrpcStatus() (uint32, string, error) {
	return h.GrpcStatusCode, h.GrpcStatusMessage, nil
}

func (h *Host) SetEffectiveContext(contextID uint32) error {
	if h.RejectContexts[contextID] {
		return sdk.StatusBadArgument
	}
	h.EffectiveContexts = append(h.EffectiveContexts, contextID)
	return nil
}

func (h *Host) Done() error {
	h.DoneCalls++
	return nil
}

func (h *Host) DefineMetric(metricType sdk.MetricType, name string) (uint32, error) {
	if id, ok := h.metricIDs[name]; ok {
		return id, nil
	}
	h.nextMetricID++
	h.metricIDs[name] = h.nextMetricID
	return h.nextMetricID, nil
}

func (h *Host) GetMetric(metricID uint32) (uint64, error) {
	return h.metricValues[metricID], nil
}

func (h *Host) RecordMetric(metricID uint32, value uint64) error {
	h.metricValues[metricID] = value
	return nil
}

func (h *Host) IncrementMetric(metricID uint32, offset int64) error {
	h.metricValues[metricID] = uint64(int64(h.metricValues[metricID]) + offset)
	return nil
}
