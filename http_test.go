package proxysdk_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdk "github.com/leaksignal/proxy-sdk"
	"github.com/leaksignal/proxy-sdk/hosttest"
)

type bodyFilter struct {
	sdk.DefaultHTTPContext

	onRequestBody func(*sdk.RequestBody) sdk.FilterDataStatus
}

func (f *bodyFilter) OnHTTPRequestBody(body *sdk.RequestBody) sdk.FilterDataStatus {
	if f.onRequestBody != nil {
		return f.onRequestBody(body)
	}
	return sdk.FilterDataStatusContinue
}

func setupHTTP(t *testing.T, filter sdk.HTTPContext) *hosttest.Host {
	t.Helper()
	host := hosttest.New()
	sdk.SetHost(host)
	sdk.Reset()
	sdk.SetRootContextFactory(func() *testRoot {
		return &testRoot{newChild: func() sdk.ChildContext { return sdk.NewHTTPChild(filter) }}
	})
	sdk.ProxyOnContextCreate(1, 0)
	sdk.ProxyOnContextCreate(2, 1)
	return host
}

func TestRequestBodyReadAndReplace(t *testing.T) {
	filter := &bodyFilter{}
	host := setupHTTP(t, filter)
	host.Buffers[sdk.BufferTypeHTTPRequestBody] = []byte("hello world")

	filter.onRequestBody = func(body *sdk.RequestBody) sdk.FilterDataStatus {
		assert.Equal(t, 11, body.BodySize())
		assert.Equal(t, []byte("world"), body.Get(6, 100))
		assert.Equal(t, []byte("hello world"), body.All())
		body.Replace([]byte("redacted"))
		return sdk.FilterDataStatusContinue
	}

	sdk.ProxyOnRequestBody(2, 11, true)
	assert.Equal(t, []byte("redacted"), host.Buffers[sdk.BufferTypeHTTPRequestBody])
}

func TestSendEarlyResponse(t *testing.T) {
	root := &testRoot{}
	filter := &testFilter{}
	root.newChild = func() sdk.ChildContext { return sdk.NewHTTPChild(filter) }
	host := setup(t, root)

	sdk.ProxyOnContextCreate(1, 0)
	sdk.ProxyOnContextCreate(2, 1)

	filter.onRequestHeaders = func(headers *sdk.RequestHeaders) sdk.FilterHeadersStatus {
		err := headers.SendHTTPResponse(403, []sdk.MapEntry{
			{Key: "content-type", Value: []byte("text/plain")},
		}, []byte("forbidden"))
		require.NoError(t, err)
		return sdk.FilterHeadersStatusStopIteration
	}

	status := sdk.ProxyOnRequestHeaders(2, 0, false)
	assert.Equal(t, sdk.FilterHeadersStatusStopIteration, status)
	require.Len(t, host.SentResponses, 1)
	assert.Equal(t, uint32(403), host.SentResponses[0].StatusCode)
	assert.Equal(t, []byte("forbidden"), host.SentResponses[0].Body)
}

func TestResumeAndReset(t *testing.T) {
	filter := &bodyFilter{}
	host := setupHTTP(t, filter)

	filter.onRequestBody = func(body *sdk.RequestBody) sdk.FilterDataStatus {
		body.Resume()
		body.Reset()
		return sdk.FilterDataStatusContinue
	}
	sdk.ProxyOnRequestBody(2, 0, false)

	assert.Equal(t, []sdk.StreamKind{sdk.StreamKindHTTPRequest}, host.ContinuedStreams)
	assert.Equal(t, []sdk.StreamKind{sdk.StreamKindHTTPRequest}, host.ClosedStreams)
}
