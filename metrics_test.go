package proxysdk_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdk "github.com/leaksignal/proxy-sdk"
	"github.com/leaksignal/proxy-sdk/hosttest"
)

func TestCounterIncrement(t *testing.T) {
	sdk.SetHost(hosttest.New())

	requests, err := sdk.DefineCounter("plugin.requests_total.metrics_test")
	require.NoError(t, err)

	requests.Increment(1)
	requests.Increment(2)
	assert.Equal(t, uint64(3), requests.Value())

	// Defining the same name again binds the same metric.
	again, err := sdk.DefineCounter("plugin.requests_total.metrics_test")
	require.NoError(t, err)
	again.Increment(1)
	assert.Equal(t, uint64(4), requests.Value())
}

func TestGaugeRecordAndAdd(t *testing.T) {
	sdk.SetHost(hosttest.New())

	inflight, err := sdk.DefineGauge("plugin.inflight.metrics_test")
	require.NoError(t, err)

	inflight.Record(5)
	assert.Equal(t, uint64(5), inflight.Value())
	inflight.Add(-2)
	assert.Equal(t, uint64(3), inflight.Value())
}

func TestHistogramRecord(t *testing.T) {
	host := hosttest.New()
	sdk.SetHost(host)

	latency, err := sdk.DefineHistogram("plugin.latency_ms.metrics_test")
	require.NoError(t, err)
	latency.Record(12)

	value, err := host.GetMetric(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), value)
}
