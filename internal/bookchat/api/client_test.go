package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/longkey1/bookchat/internal/bookchat/api"
	"github.com/longkey1/bookchat/internal/bookchat/stub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (t staticToken) Token() (string, error) { return string(t), nil }

type failingToken struct{}

func (failingToken) Token() (string, error) { return "", errors.New("storage unreadable") }

func newStubClient(t *testing.T, srv *stub.Server, opts ...api.Option) *api.Client {
	t.Helper()
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return api.NewClient(ts.URL+stub.PathPrefix, opts...)
}

// capture records the last request it received and answers with status/body
type capture struct {
	method  string
	path    string
	headers http.Header
	body    []byte
}

func newCaptureServer(t *testing.T, status int, body string) (*httptest.Server, *capture) {
	t.Helper()
	c := &capture{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.method = r.Method
		c.path = r.URL.Path
		c.headers = r.Header.Clone()
		c.body, _ = io.ReadAll(r.Body)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(ts.Close)
	return ts, c
}

// newTruncatingServer answers with status and a body cut off before its declared length
func newTruncatingServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !ok {
			http.Error(w, "hijacking not supported", http.StatusInternalServerError)
			return
		}
		conn, buf, err := hj.Hijack()
		if err != nil {
			return
		}
		defer conn.Close()
		fmt.Fprintf(buf, "HTTP/1.1 %d %s\r\nContent-Type: application/json\r\nContent-Length: 100\r\n\r\n{\"detail\":",
			status, http.StatusText(status))
		_ = buf.Flush()
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestNewClientTrimsTrailingSlash(t *testing.T) {
	c := api.NewClient("http://localhost:8080/api/v1/")
	assert.Equal(t, "http://localhost:8080/api/v1", c.BaseURL())
}

func TestSendMessageRequestShape(t *testing.T) {
	sessionID := "s1"
	tests := []struct {
		name        string
		sessionID   *string
		wantSession any
	}{
		{name: "no session yet", sessionID: nil, wantSession: nil},
		{name: "existing session", sessionID: &sessionID, wantSession: "s1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, got := newCaptureServer(t, http.StatusOK, `{"response":"ok"}`)
			c := api.NewClient(ts.URL)

			_, err := c.SendMessage(context.Background(), "What is physical AI?", tt.sessionID)
			require.NoError(t, err)

			assert.Equal(t, http.MethodPost, got.method)
			assert.Equal(t, "/chat", got.path)
			assert.Equal(t, "application/json", got.headers.Get("Content-Type"))

			var body map[string]any
			require.NoError(t, json.Unmarshal(got.body, &body))
			assert.Equal(t, "What is physical AI?", body["message"])
			require.Contains(t, body, "session_id")
			assert.Equal(t, tt.wantSession, body["session_id"])
		})
	}
}

func TestAuthorizationHeader(t *testing.T) {
	tests := []struct {
		name   string
		tokens api.TokenSource
		want   string
	}{
		{name: "no token source", tokens: nil, want: ""},
		{name: "empty token", tokens: staticToken(""), want: ""},
		{name: "stored token", tokens: staticToken("secret"), want: "Bearer secret"},
		{name: "unreadable storage", tokens: failingToken{}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, got := newCaptureServer(t, http.StatusOK, `{"status":"healthy"}`)
			var opts []api.Option
			if tt.tokens != nil {
				opts = append(opts, api.WithTokenSource(tt.tokens))
			}
			c := api.NewClient(ts.URL, opts...)

			_, err := c.HealthCheck(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.headers.Get("Authorization"))
			assert.Equal(t, "application/json", got.headers.Get("Content-Type"))
		})
	}
}

func TestStatusError(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusMethodNotAllowed, http.StatusInternalServerError, http.StatusTeapot} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			ts, _ := newCaptureServer(t, status, `{"detail":"nope"}`)
			c := api.NewClient(ts.URL)

			_, err := c.SendMessage(context.Background(), "hi", nil)
			require.Error(t, err)

			var statusErr *api.StatusError
			require.True(t, errors.As(err, &statusErr))
			assert.Equal(t, status, statusErr.StatusCode)
			assert.Contains(t, err.Error(), strconv.Itoa(status))

			var netErr *api.NetworkError
			assert.False(t, errors.As(err, &netErr))
		})
	}
}

func TestDecodeError(t *testing.T) {
	ts, _ := newCaptureServer(t, http.StatusOK, `<html>not json</html>`)
	c := api.NewClient(ts.URL)

	_, err := c.RetrieveContext(context.Background(), "actuators", 3)
	require.Error(t, err)

	var decodeErr *api.DecodeError
	assert.True(t, errors.As(err, &decodeErr))
}

func TestTruncatedBody(t *testing.T) {
	t.Run("error status keeps its status", func(t *testing.T) {
		c := api.NewClient(newTruncatingServer(t, http.StatusInternalServerError).URL)
		_, err := c.SendMessage(context.Background(), "hi", nil)
		require.Error(t, err)

		var statusErr *api.StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
		assert.Equal(t, `{"detail":`, statusErr.Body)

		var netErr *api.NetworkError
		assert.False(t, errors.As(err, &netErr))
	})

	t.Run("success status is a decode error", func(t *testing.T) {
		c := api.NewClient(newTruncatingServer(t, http.StatusOK).URL)
		_, err := c.SendMessage(context.Background(), "hi", nil)
		require.Error(t, err)

		var decodeErr *api.DecodeError
		require.True(t, errors.As(err, &decodeErr))
		assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))

		var netErr *api.NetworkError
		assert.False(t, errors.As(err, &netErr))
	})
}

func TestNullBodyIsDecodeError(t *testing.T) {
	for _, body := range []string{"null", " null\n"} {
		ts, _ := newCaptureServer(t, http.StatusOK, body)
		c := api.NewClient(ts.URL)

		resp, err := c.SendMessage(context.Background(), "hi", nil)
		assert.Nil(t, resp)
		var decodeErr *api.DecodeError
		assert.True(t, errors.As(err, &decodeErr), "body %q", body)
	}
}

func TestWithHTTPClient(t *testing.T) {
	ts := httptest.NewTLSServer(stub.NewServer().Handler())
	t.Cleanup(ts.Close)
	baseURL := ts.URL + stub.PathPrefix

	// the default client does not trust the test certificate
	_, err := api.NewClient(baseURL).HealthCheck(context.Background())
	var netErr *api.NetworkError
	require.True(t, errors.As(err, &netErr))

	health, err := api.NewClient(baseURL, api.WithHTTPClient(ts.Client())).HealthCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)
}

func TestNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c := api.NewClient(url)
	_, err := c.SendMessage(context.Background(), "hi", nil)
	require.Error(t, err)

	var netErr *api.NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, http.MethodPost, netErr.Method)

	var statusErr *api.StatusError
	assert.False(t, errors.As(err, &statusErr))
}

func TestCanceledContextIsNetworkError(t *testing.T) {
	ts, _ := newCaptureServer(t, http.StatusOK, `{}`)
	c := api.NewClient(ts.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.HealthCheck(ctx)
	var netErr *api.NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRetrieveContextDefaultsTopK(t *testing.T) {
	ts, got := newCaptureServer(t, http.StatusOK, `{"retrieved_chunks":[]}`)
	c := api.NewClient(ts.URL)

	_, err := c.RetrieveContext(context.Background(), "sensors", 0)
	require.NoError(t, err)

	var body api.RetrieveRequest
	require.NoError(t, json.Unmarshal(got.body, &body))
	assert.Equal(t, "/retrieve", got.path)
	assert.Equal(t, "sensors", body.Query)
	assert.Equal(t, api.DefaultTopK, body.TopK)
}

func TestAgainstStubBackend(t *testing.T) {
	srv := stub.NewServer(stub.WithToken("secret"))
	c := newStubClient(t, srv, api.WithTokenSource(staticToken("secret")))
	ctx := context.Background()

	health, err := c.HealthCheck(ctx)
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, stub.ServiceName, health.Service)
	assert.NotEmpty(t, health.Raw)

	resp, err := c.SendMessage(ctx, "What is a humanoid?", nil)
	require.NoError(t, err)
	assert.Contains(t, resp.Response, "What is a humanoid?")
	assert.NotEmpty(t, resp.SessionID)
	require.Len(t, resp.Sources, 1)
	require.NotNil(t, resp.ConfidenceScore)
	assert.InDelta(t, stub.DefaultConfidence, *resp.ConfidenceScore, 1e-9)

	ack, err := c.ProcessURL(ctx, "https://book.example.com/docs/sensors")
	require.NoError(t, err)
	assert.Equal(t, "success", ack.Status)
	require.NotNil(t, ack.ChunksProcessed)
	assert.Equal(t, []string{"https://book.example.com/docs/sensors"}, srv.Ingested())

	retrieved, err := c.RetrieveContext(ctx, "balance control", 2)
	require.NoError(t, err)
	assert.Len(t, retrieved.RetrievedChunks, 2)
}

func TestStubBackendRejectsMissingToken(t *testing.T) {
	srv := stub.NewServer(stub.WithToken("secret"))
	c := newStubClient(t, srv)

	_, err := c.SendMessage(context.Background(), "hi", nil)
	var statusErr *api.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
}

func TestTestConnection(t *testing.T) {
	c := newStubClient(t, stub.NewServer())
	assert.True(t, c.TestConnection(context.Background()))

	ts, _ := newCaptureServer(t, http.StatusServiceUnavailable, `{}`)
	assert.False(t, api.NewClient(ts.URL).TestConnection(context.Background()))

	closed := httptest.NewServer(http.NotFoundHandler())
	url := closed.URL
	closed.Close()
	assert.False(t, api.NewClient(url).TestConnection(context.Background()))
}
