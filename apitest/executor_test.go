package apitest

import (
	"context"
	"crypto/x509"
	"encoding/json"
	"io"
	"math"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/require"
)

// recordedRequest is what the fake target saw for one call.
type recordedRequest struct {
	Method      string
	Path        string
	ContentType string
	Body        string
	Header      http.Header
}

type targetServer struct {
	*httptest.Server
	mu       sync.Mutex
	requests []recordedRequest
}

func newTargetServer(t *testing.T) *targetServer {
	t.Helper()
	ts := &targetServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})
	mux.HandleFunc("/json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"id":7,"items":[{"id":"a"}]},"message":"Created"}`))
	})
	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	mux.HandleFunc("/delay/", func(w http.ResponseWriter, r *http.Request) {
		d, _ := time.ParseDuration(strings.TrimPrefix(r.URL.Path, "/delay/"))
		time.Sleep(d)
		_, _ = w.Write([]byte(r.URL.Path))
	})

	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		ts.mu.Lock()
		ts.requests = append(ts.requests, recordedRequest{
			Method:      r.Method,
			Path:        r.URL.Path,
			ContentType: r.Header.Get("Content-Type"),
			Body:        string(body),
			Header:      r.Header.Clone(),
		})
		ts.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *targetServer) recorded() []recordedRequest {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return append([]recordedRequest(nil), ts.requests...)
}

// refusedURL returns an address nothing listens on.
func refusedURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()
	return addr
}

func TestResolveURL(t *testing.T) {
	t.Parallel()

	cases := []struct{ base, path, want string }{
		{"https://api.example.com", "/users", "https://api.example.com/users"},
		{"https://api.example.com/", "/users", "https://api.example.com/users"},
		{"https://api.example.com//", "users", "https://api.example.com/users"},
		{"https://api.example.com/v1", "//users", "https://api.example.com/v1/users"},
		{"https://api.example.com", "https://other.example.com/x", "https://other.example.com/x"},
		{"", "https://other.example.com/x", "https://other.example.com/x"},
		{"", "/users", "/users"},
		{"https://api.example.com", "/redirect?to=https://x.io", "https://api.example.com/redirect?to=https://x.io"},
		{"https://api.example.com", "search?q=http://a.b/c", "https://api.example.com/search?q=http://a.b/c"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, ResolveURL(tc.base, tc.path), "%q + %q", tc.base, tc.path)
	}
}

func TestExecutorRunPreservesOrderAndDecodesBodies(t *testing.T) {
	t.Parallel()
	target := newTargetServer(t)

	plan := &TestPlan{
		BaseURL: target.URL + "/",
		Endpoints: []EndpointSpec{
			{Name: "ping", Method: http.MethodGet, Path: "/ping", ExpectedStatus: 200},
			{Name: "json", Method: http.MethodGet, Path: "json", ExpectedStatus: 200},
			{Name: "missing", Method: http.MethodGet, Path: "/nope", ExpectedStatus: 200},
			{Name: "create", Method: http.MethodPost, Path: "/echo", ExpectedStatus: 201,
				Headers: map[string]string{"X-Trace": "abc"},
				Data:    map[string]any{"name": "widget"}},
		},
	}

	executor := NewExecutor()
	defer executor.Close()
	results := executor.Run(context.Background(), plan)

	require.Len(t, results, len(plan.Endpoints))
	for i, r := range results {
		require.Equal(t, plan.Endpoints[i].Name, r.Name)
		require.Equal(t, StatusFailed, r.Status, "executor never finalizes")
		require.NotNil(t, r.StatusCode)
		require.Empty(t, r.Errors)
		require.GreaterOrEqual(t, r.ResponseTimeMs, 0.0)
		require.Equal(t, math.Round(r.ResponseTimeMs*100)/100, r.ResponseTimeMs)
	}

	require.Equal(t, target.URL+"/ping", results[0].URL)
	require.Equal(t, 200, *results[0].StatusCode)
	require.Equal(t, Raw{Text: "pong"}, results[0].Response)

	structured, ok := results[1].Response.(Structured)
	require.True(t, ok)
	require.Equal(t, "Created", structured.Value.(map[string]any)["message"])

	require.Equal(t, 404, *results[2].StatusCode)
	require.Equal(t, 201, *results[3].StatusCode)

	reqs := target.recorded()
	require.Len(t, reqs, 4)
	require.Empty(t, reqs[0].Body, "empty data sends no body")
	require.Empty(t, reqs[0].ContentType)
	require.Equal(t, http.MethodPost, reqs[3].Method)
	require.JSONEq(t, `{"name":"widget"}`, reqs[3].Body)
	require.Equal(t, "application/json", reqs[3].ContentType)
	require.Equal(t, "abc", reqs[3].Header.Get("X-Trace"))
}

func TestExecutorJoinsBaseForPathWithURLInQuery(t *testing.T) {
	t.Parallel()
	target := newTargetServer(t)

	executor := NewExecutor()
	defer executor.Close()
	results := executor.Run(context.Background(), &TestPlan{
		BaseURL:   target.URL,
		Endpoints: []EndpointSpec{{Name: "redirect", Method: http.MethodGet, Path: "/ping?to=https://example.com", ExpectedStatus: 200}},
	})

	require.Empty(t, results[0].Errors)
	require.NotNil(t, results[0].StatusCode)
	require.Equal(t, 200, *results[0].StatusCode)
	require.Equal(t, target.URL+"/ping?to=https://example.com", results[0].URL)
}

func TestExecutorConnectionRefusedDoesNotAbortBatch(t *testing.T) {
	t.Parallel()
	target := newTargetServer(t)

	plan := &TestPlan{Endpoints: []EndpointSpec{
		{Name: "down", Method: http.MethodGet, Path: refusedURL(t) + "/health", ExpectedStatus: 200},
		{Name: "up", Method: http.MethodGet, Path: target.URL + "/ping", ExpectedStatus: 200},
	}}

	executor := NewExecutor()
	defer executor.Close()
	results := executor.Run(context.Background(), plan)

	require.Len(t, results, 2)
	require.Nil(t, results[0].StatusCode)
	require.Nil(t, results[0].Response)
	require.Len(t, results[0].Errors, 1)
	require.Equal(t, FailureConnectionRefused, results[0].Errors[0].Kind)
	require.Contains(t, results[0].Errors[0].Message, "connection refused")

	require.NotNil(t, results[1].StatusCode)
	require.Equal(t, 200, *results[1].StatusCode)
}

func TestExecutorTimeout(t *testing.T) {
	t.Parallel()
	target := newTargetServer(t)

	executor := NewExecutor(WithRequestTimeout(50 * time.Millisecond))
	defer executor.Close()
	results := executor.Run(context.Background(), &TestPlan{Endpoints: []EndpointSpec{
		{Name: "slow", Method: http.MethodGet, Path: target.URL + "/slow", ExpectedStatus: 200},
	}})

	require.Nil(t, results[0].StatusCode)
	require.Len(t, results[0].Errors, 1)
	require.Equal(t, FailureTimeout, results[0].Errors[0].Kind)
	require.GreaterOrEqual(t, results[0].ResponseTimeMs, 50.0)
}

func TestExecutorTLSFailure(t *testing.T) {
	t.Parallel()
	srv := httptest.NewTLSServer(http.NotFoundHandler())
	defer srv.Close()

	executor := NewExecutor()
	defer executor.Close()
	results := executor.Run(context.Background(), &TestPlan{Endpoints: []EndpointSpec{
		{Name: "self-signed", Method: http.MethodGet, Path: srv.URL, ExpectedStatus: 200},
	}})

	require.Nil(t, results[0].StatusCode)
	require.Equal(t, FailureTLS, results[0].Errors[0].Kind)
}

func TestExecutorInvalidRequest(t *testing.T) {
	t.Parallel()

	executor := NewExecutor()
	defer executor.Close()
	results := executor.Run(context.Background(), &TestPlan{Endpoints: []EndpointSpec{
		{Name: "relative", Method: http.MethodGet, Path: "/users", ExpectedStatus: 200},
		{Name: "bad method", Method: "GE T", Path: "http://127.0.0.1:1/x", ExpectedStatus: 200},
		{Name: "bad body", Method: http.MethodPost, Path: "http://127.0.0.1:1/x", ExpectedStatus: 200,
			Data: map[string]any{"ch": make(chan int)}},
	}})

	require.Len(t, results, 3)
	for _, r := range results {
		require.Nil(t, r.StatusCode, r.Name)
		require.Len(t, r.Errors, 1, r.Name)
		require.Equal(t, FailureInvalidRequest, r.Errors[0].Kind, r.Name)
	}
}

func TestExecutorConcurrentRunKeepsPlanOrder(t *testing.T) {
	t.Parallel()
	target := newTargetServer(t)

	delays := []string{"120ms", "10ms", "80ms", "0s", "40ms", "5ms"}
	plan := &TestPlan{BaseURL: target.URL}
	for _, d := range delays {
		plan.Endpoints = append(plan.Endpoints, EndpointSpec{
			Name: d, Method: http.MethodGet, Path: "/delay/" + d, ExpectedStatus: 200,
		})
	}

	executor := NewExecutor(WithConcurrency(3))
	defer executor.Close()
	results := executor.Run(context.Background(), plan)

	require.Len(t, results, len(delays))
	for i, r := range results {
		require.Equal(t, delays[i], r.Name)
		require.Equal(t, Raw{Text: "/delay/" + delays[i]}, r.Response)
	}
}

func TestClassifyTransportError(t *testing.T) {
	t.Parallel()

	refused := &url.Error{Op: "Get", URL: "http://x", Err: &net.OpError{
		Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED),
	}}

	cases := []struct {
		err  error
		want FailureKind
	}{
		{context.DeadlineExceeded, FailureTimeout},
		{errors.Wrap(context.DeadlineExceeded, "do"), FailureTimeout},
		{refused, FailureConnectionRefused},
		{&url.Error{Op: "Get", URL: "http://x", Err: &net.DNSError{Err: "no such host", Name: "x", IsNotFound: true}}, FailureDNS},
		{&url.Error{Op: "Get", URL: "https://x", Err: x509.UnknownAuthorityError{}}, FailureTLS},
		{errors.New("something else"), FailureTransport},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, classifyTransportError(tc.err), tc.err.Error())
	}
}

func TestDecodeBody(t *testing.T) {
	t.Parallel()

	require.Equal(t, Raw{Text: ""}, decodeBody(nil))
	require.Equal(t, Raw{Text: "plain"}, decodeBody([]byte("plain")))

	s, ok := decodeBody([]byte(`[1,2]`)).(Structured)
	require.True(t, ok)
	require.Equal(t, []any{1.0, 2.0}, s.Value)

	raw, err := json.Marshal(decodeBody([]byte(`{"a":1}`)))
	require.NoError(t, err)
	require.JSONEq(t, `{"a":1}`, string(raw))
}
