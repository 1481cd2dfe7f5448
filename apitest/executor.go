package apitest

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/Laisky/zap"
	"golang.org/x/sync/errgroup"

	"github.com/songquanpeng/apitest/common/helper"
	"github.com/songquanpeng/apitest/common/logger"
)

const (
	// RequestTimeout bounds every request issued against the target API.
	RequestTimeout = 30 * time.Second

	maxResponseBodySize = 10 << 20 // 10 MiB
	userAgent           = "apitest-agent/1.0"
)

// Executor runs the endpoints of a plan. It owns one HTTP client for the whole run and
// must be closed when the run is over. An Executor is not shared between runs.
type Executor struct {
	client      *http.Client
	concurrency int
	logger      glog.Logger
}

// ExecutorOption customizes an Executor.
type ExecutorOption func(*Executor)

// WithConcurrency lets up to n endpoints be in flight at once. Values below 2 keep the
// sequential behaviour.
func WithConcurrency(n int) ExecutorOption {
	return func(e *Executor) {
		if n < 1 {
			n = 1
		}
		e.concurrency = n
	}
}

// WithRequestTimeout overrides RequestTimeout.
func WithRequestTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		if d > 0 {
			e.client.Timeout = d
		}
	}
}

// NewExecutor returns an Executor with its own connection pool.
func NewExecutor(opts ...ExecutorOption) *Executor {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	e := &Executor{
		client: &http.Client{
			Transport: transport,
			Timeout:   RequestTimeout,
		},
		concurrency: 1,
		logger:      logger.Logger.Named("executor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Close releases the idle connections held by the executor's client.
func (e *Executor) Close() {
	e.client.CloseIdleConnections()
}

// Run executes every endpoint of plan and returns one result per endpoint in plan
// order. A failing endpoint never stops the others.
func (e *Executor) Run(ctx context.Context, plan *TestPlan) []*TestResult {
	results := make([]*TestResult, len(plan.Endpoints))

	if e.concurrency <= 1 {
		for i, ep := range plan.Endpoints {
			results[i] = e.runOne(ctx, plan.BaseURL, ep)
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i, ep := range plan.Endpoints {
		g.Go(func() error {
			// each goroutine owns exactly one slot, so plan order is kept
			results[i] = e.runOne(ctx, plan.BaseURL, ep)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (e *Executor) runOne(ctx context.Context, baseURL string, ep EndpointSpec) *TestResult {
	target := ResolveURL(baseURL, ep.Path)
	result := newTestResult(ep, target)
	start := time.Now()
	defer func() {
		result.ResponseTimeMs = helper.ElapsedMillis(start)
	}()

	req, err := buildRequest(ctx, target, ep)
	if err != nil {
		result.addFailure(FailureInvalidRequest, err.Error())
		return result
	}

	resp, err := e.client.Do(req)
	if err != nil {
		kind := classifyTransportError(err)
		result.addFailure(kind, fmt.Sprintf("request failed (%s): %v", kind, err))
		e.logger.Debug("endpoint request failed",
			zap.String("endpoint", ep.Name),
			zap.String("url", target),
			zap.String("kind", string(kind)),
			zap.Error(err))
		return result
	}
	defer resp.Body.Close()

	code := resp.StatusCode
	result.StatusCode = &code

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		result.addFailure(FailureResponseRead, fmt.Sprintf("read response: %v", err))
	}
	result.Response = decodeBody(body)

	e.logger.Debug("endpoint request done",
		zap.String("endpoint", ep.Name),
		zap.String("url", target),
		zap.Int("status_code", code),
		zap.Int("body_bytes", len(body)))
	return result
}

// ResolveURL joins base and path. A path that already carries a scheme and host is
// used as is, and so is any path when base is empty.
func ResolveURL(base, path string) string {
	if base == "" {
		return path
	}
	if u, err := url.Parse(path); err == nil && u.Scheme != "" && u.Host != "" {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

func buildRequest(ctx context.Context, target string, ep EndpointSpec) (*http.Request, error) {
	parsed, err := url.Parse(target)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid url %q", target)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, errors.Errorf("invalid url %q: scheme and host are required", target)
	}

	var body io.Reader
	if len(ep.Data) > 0 {
		payload, err := json.Marshal(ep.Data)
		if err != nil {
			return nil, errors.Wrap(err, "marshal request body")
		}
		body = bytes.NewReader(payload)
	}

	method := ep.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}

	req.Header.Set("User-Agent", userAgent)
	for k, v := range ep.Headers {
		req.Header.Set(k, v)
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// decodeBody keeps JSON bodies structured and everything else as text.
func decodeBody(body []byte) ResponseData {
	var value any
	if len(bytes.TrimSpace(body)) > 0 && json.Unmarshal(body, &value) == nil {
		return Structured{Value: value, Raw: body}
	}
	return Raw{Text: string(body)}
}

func classifyTransportError(err error) FailureKind {
	var (
		dnsErr      *net.DNSError
		netErr      net.Error
		recordErr   tls.RecordHeaderError
		verifyErr   *tls.CertificateVerificationError
		authorityEr x509.UnknownAuthorityError
		hostnameErr x509.HostnameError
		invalidErr  x509.CertificateInvalidError
	)

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return FailureTimeout
	case errors.Is(err, syscall.ECONNREFUSED):
		return FailureConnectionRefused
	case errors.As(err, &dnsErr):
		return FailureDNS
	case errors.As(err, &verifyErr),
		errors.As(err, &authorityEr),
		errors.As(err, &hostnameErr),
		errors.As(err, &invalidErr),
		errors.As(err, &recordErr):
		return FailureTLS
	default:
		return FailureTransport
	}
}
