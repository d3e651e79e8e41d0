package hosttest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdk "github.com/leaksignal/proxy-sdk"
)

func TestBufferSplice(t *testing.T) {
	host := New()
	host.Buffers[sdk.BufferTypeHTTPRequestBody] = []byte("hello world")

	value, err := host.GetBuffer(sdk.BufferTypeHTTPRequestBody, 6, 5)
	require.NoError(t, err)
	assert.Equal(t, []byte("world"), value)

	// Reads past the end are clamped, not failed.
	value, err = host.GetBuffer(sdk.BufferTypeHTTPRequestBody, 6, 100)
	require.NoError(t, err)
	assert.Equal(t, []byte("world"), value)

	require.NoError(t, host.SetBuffer(sdk.BufferTypeHTTPRequestBody, 6, 5, []byte("proxy")))
	assert.Equal(t, []byte("hello proxy"), host.Buffers[sdk.BufferTypeHTTPRequestBody])

	// Zero-length splice inserts.
	require.NoError(t, host.SetBuffer(sdk.BufferTypeHTTPRequestBody, 5, 0, []byte(",")))
	assert.Equal(t, []byte("hello, proxy"), host.Buffers[sdk.BufferTypeHTTPRequestBody])
}

func TestMapValueSetAndRemove(t *testing.T) {
	host := New()
	require.NoError(t, host.AddMapValue(sdk.MapTypeHTTPRequestHeaders, "x-a", []byte("1")))
	require.NoError(t, host.AddMapValue(sdk.MapTypeHTTPRequestHeaders, "x-b", []byte("2")))

	require.NoError(t, host.SetMapValue(sdk.MapTypeHTTPRequestHeaders, "x-a", []byte("3")))
	value, err := host.GetMapValue(sdk.MapTypeHTTPRequestHeaders, "x-a")
	require.NoError(t, err)
	assert.Equal(t, []byte("3"), value)

	// A nil value removes the key.
	require.NoError(t, host.SetMapValue(sdk.MapTypeHTTPRequestHeaders, "x-a", nil))
	value, err = host.GetMapValue(sdk.MapTypeHTTPRequestHeaders, "x-a")
	require.NoError(t, err)
	assert.Nil(t, value)

	entries, err := host.GetMap(sdk.MapTypeHTTPRequestHeaders)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSharedQueueFIFO(t *testing.T) {
	host := New()

	id, err := host.RegisterSharedQueue("jobs")
	require.NoError(t, err)

	// Registration is idempotent per name.
	again, err := host.RegisterSharedQueue("jobs")
	require.NoError(t, err)
	assert.Equal(t, id, again)

	resolved, err := host.ResolveSharedQueue(host.VMID, "jobs")
	require.NoError(t, err)
	assert.Equal(t, id, resolved)

	_, err = host.ResolveSharedQueue(host.VMID, "nope")
	assert.ErrorIs(t, err, sdk.StatusNotFound)

	require.NoError(t, host.EnqueueSharedQueue(id, []byte("first")))
	require.NoError(t, host.EnqueueSharedQueue(id, []byte("second")))

	value, err := host.DequeueSharedQueue(id)
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), value)
	value, err = host.DequeueSharedQueue(id)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), value)

	_, err = host.DequeueSharedQueue(id)
	assert.ErrorIs(t, err, sdk.StatusEmpty)
}

func TestSharedDataCas(t *testing.T) {
	host := New()

	value, cas, err := host.GetSharedData("k")
	require.NoError(t, err)
	assert.Nil(t, value)
	assert.Zero(t, cas)

	require.NoError(t, host.SetSharedData("k", []byte("v1"), 0))
	_, cas, err = host.GetSharedData("k")
	require.NoError(t, err)
	require.NotZero(t, cas)

	assert.ErrorIs(t, host.SetSharedData("k", []byte("v2"), cas+1), sdk.StatusCasMismatch)
	require.NoError(t, host.SetSharedData("k", []byte("v2"), cas))
}

func TestEffectiveContextRejection(t *testing.T) {
	host := New()
	host.RejectContexts[7] = true

	require.NoError(t, host.SetEffectiveContext(3))
	assert.ErrorIs(t, host.SetEffectiveContext(7), sdk.StatusBadArgument)
	assert.Equal(t, []uint32{3}, host.EffectiveContexts)
}
