package proxysdk_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdk "github.com/leaksignal/proxy-sdk"
	"github.com/leaksignal/proxy-sdk/hosttest"
)

func TestSharedDataRoundtrip(t *testing.T) {
	sdk.SetHost(hosttest.New())

	_, _, ok, err := sdk.GetSharedData("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, sdk.SetSharedData("ratelimit", []byte("10"), 0))
	value, cas, ok, err := sdk.GetSharedData("ratelimit")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("10"), value)
	assert.NotZero(t, cas)

	// A stale CAS must not clobber a newer write.
	require.NoError(t, sdk.SetSharedData("ratelimit", []byte("20"), cas))
	err = sdk.SetSharedData("ratelimit", []byte("30"), cas)
	assert.ErrorIs(t, err, sdk.StatusCasMismatch)
}

func TestUpdateSharedDataRetriesOnCasMismatch(t *testing.T) {
	host := hosttest.New()
	sdk.SetHost(host)

	require.NoError(t, sdk.SetSharedData("counter", []byte{1}, 0))

	raced := false
	err := sdk.UpdateSharedData("counter", func(value []byte) []byte {
		if !raced {
			// Simulate a concurrent writer between read and write.
			raced = true
			require.NoError(t, host.SetSharedData("counter", []byte{9}, 0))
		}
		return append([]byte{}, value[0]+1)
	})
	require.NoError(t, err)

	value, _, _, err := sdk.GetSharedData("counter")
	require.NoError(t, err)
	assert.Equal(t, []byte{10}, value)
}

type rateState struct {
	Allowed uint64 `cbor:"1,keyasint"`
	Denied  uint64 `cbor:"2,keyasint"`
}

func TestSharedObjectRoundtrip(t *testing.T) {
	sdk.SetHost(hosttest.New())

	_, _, ok, err := sdk.GetSharedObject[rateState]("state")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, sdk.SetSharedObject("state", rateState{Allowed: 7, Denied: 2}, 0))

	state, cas, ok, err := sdk.GetSharedObject[rateState]("state")
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotZero(t, cas)
	assert.Equal(t, rateState{Allowed: 7, Denied: 2}, state)
}

func TestSharedObjectRejectsCorruptPayload(t *testing.T) {
	sdk.SetHost(hosttest.New())

	require.NoError(t, sdk.SetSharedData("state", []byte{0xff, 0xff}, 0))
	_, _, _, err := sdk.GetSharedObject[rateState]("state")
	assert.Error(t, err)
}
