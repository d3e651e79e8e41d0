package proxysdk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRoot struct {
	DefaultRootContext
	created int
}

func (r *countingRoot) CreateContext() ChildContext {
	r.created++
	return NewHTTPChild(&DefaultHTTPContext{})
}

func TestGrpcStreamRegistrationOriginMismatch(t *testing.T) {
	d := NewDispatcher()
	d.activeID, d.activeRootID = 5, 1

	d.registerGrpcStreamMessage(7, func(*RootHandle, GrpcStreamHandle, *GrpcStreamMessage) {})
	entry := d.grpcStreams[7]
	require.NotNil(t, entry)
	require.NotNil(t, entry.message)
	assert.Equal(t, uint32(5), entry.contextID)

	// A different context must not take over slots on an owned token.
	d.activeID = 6
	d.registerGrpcStreamClose(7, func(*RootHandle, *GrpcStreamClose) {})
	assert.Nil(t, entry.close)
	assert.Equal(t, uint32(5), entry.contextID)

	// The owning context may keep extending its own entry.
	d.activeID = 5
	d.registerGrpcStreamClose(7, func(*RootHandle, *GrpcStreamClose) {})
	assert.NotNil(t, entry.close)
}

func TestCreateChildOnReusedContextID(t *testing.T) {
	root := &countingRoot{}
	d := NewDispatcher()
	d.roots[1] = NewRootHandle(root)

	d.createChild(1, 2)
	d.createChild(1, 2)

	// The second create replaces the stale entry rather than leaking it.
	assert.Equal(t, 2, root.created)
	assert.Len(t, d.httpStreams, 1)
}

type stubHost struct {
	Host
	effective []uint32
	reject    map[uint32]bool
}

func (s *stubHost) SetEffectiveContext(contextID uint32) error {
	if s.reject[contextID] {
		return StatusBadArgument
	}
	s.effective = append(s.effective, contextID)
	return nil
}

func (s *stubHost) Log(LogLevel, string) error { return nil }

func TestEffectiveScopeRestoresActivePair(t *testing.T) {
	stub := &stubHost{reject: map[uint32]bool{}}
	SetHost(stub)

	d := NewDispatcher()
	d.activeID, d.activeRootID = 3, 1

	scope, ok := d.enterEffective(9, 2, "test")
	require.True(t, ok)
	assert.Equal(t, uint32(9), d.activeID)
	assert.Equal(t, uint32(2), d.activeRootID)

	// A callback may itself shift the active pair; exit restores the
	// pre-scope snapshot regardless.
	d.activeID, d.activeRootID = 77, 88
	scope.exit()
	assert.Equal(t, uint32(3), d.activeID)
	assert.Equal(t, uint32(1), d.activeRootID)
	assert.Equal(t, []uint32{9, 3}, stub.effective)
}

func TestEffectiveScopeRejection(t *testing.T) {
	stub := &stubHost{reject: map[uint32]bool{9: true}}
	SetHost(stub)

	d := NewDispatcher()
	d.activeID, d.activeRootID = 3, 1

	_, ok := d.enterEffective(9, 2, "test")
	assert.False(t, ok)
	assert.Equal(t, uint32(3), d.activeID)
	assert.Equal(t, uint32(1), d.activeRootID)
	assert.Empty(t, stub.effective)
}

func TestClampRange(t *testing.T) {
	cases := []struct {
		name                  string
		start, length, limit  int
		wantStart, wantLength int
	}{
		{"whole", 0, 10, 10, 0, 10},
		{"overlong", 0, 50, 10, 0, 10},
		{"offset past end", 20, 5, 10, 10, 0},
		{"negative start", -3, 5, 10, 0, 5},
		{"negative length", 2, -1, 10, 2, 8},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, length := clampRange(tc.start, tc.length, tc.limit)
			assert.Equal(t, tc.wantStart, start)
			assert.Equal(t, tc.wantLength, length)
		})
	}
}

func TestCheckConcernReportsUsability(t *testing.T) {
	value, ok := checkConcern("test-concern", 7, nil)
	assert.True(t, ok)
	assert.Equal(t, 7, value)

	value, ok = checkConcern("test-concern", 7, StatusInternalFailure)
	assert.False(t, ok)
	assert.Equal(t, 7, value)
}

func TestStatusError(t *testing.T) {
	assert.NoError(t, statusError(StatusOK))
	assert.EqualError(t, statusError(StatusNotFound), "host call failed: NotFound")
	assert.Equal(t, "CasMismatch", StatusCasMismatch.String())
}
