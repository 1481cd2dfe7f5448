package apitest

import (
	"encoding/json"
	"time"
)

// TestPlan is the structured description of one run. It is built once per task and
// never modified after generation.
type TestPlan struct {
	BaseURL   string         `json:"base_url" yaml:"base_url"`
	Endpoints []EndpointSpec `json:"endpoints" yaml:"endpoints" validate:"required,min=1,dive"`
}

// EndpointSpec is one HTTP check inside a plan.
type EndpointSpec struct {
	Name           string            `json:"name" yaml:"name"`
	Method         string            `json:"method" yaml:"method" validate:"required,oneof=GET POST PUT PATCH DELETE HEAD OPTIONS"`
	Path           string            `json:"path" yaml:"path" validate:"required"`
	Headers        map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Data           map[string]any    `json:"data,omitempty" yaml:"data,omitempty"`
	ExpectedStatus int               `json:"expected_status" yaml:"expected_status" validate:"gte=100,lte=599"`
	Validations    []string          `json:"validations,omitempty" yaml:"validations,omitempty"`
}

// Status is the final verdict of one endpoint.
type Status string

const (
	StatusPassed Status = "PASSED"
	StatusFailed Status = "FAILED"
)

// ResponseData is the decoded body of a response. It is either Structured or Raw;
// a nil ResponseData means no response was received.
type ResponseData interface {
	// BodyText renders the body for substring checks.
	BodyText() string
	isResponseData()
}

// Structured is a body that decoded as JSON. Raw keeps the bytes as received.
type Structured struct {
	Value any
	Raw   []byte
}

func (s Structured) BodyText() string { return string(s.Raw) }
func (Structured) isResponseData()    {}

func (s Structured) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Value)
}

// Raw is a body that is not JSON.
type Raw struct {
	Text string
}

func (r Raw) BodyText() string { return r.Text }
func (Raw) isResponseData()    {}

func (r Raw) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Text)
}

// OutcomeKind names the check that produced a ValidationOutcome.
type OutcomeKind string

const (
	OutcomeStructural     OutcomeKind = "structural"
	OutcomeContains       OutcomeKind = "contains"
	OutcomeStatus         OutcomeKind = "status"
	OutcomeResponseTime   OutcomeKind = "response_time"
	OutcomeJSONField      OutcomeKind = "json_field"
	OutcomeUnverifiable   OutcomeKind = "unverifiable"
	OutcomeUnclassifiable OutcomeKind = "unclassifiable"
)

// ValidationOutcome is the pass/fail record of one structural or rule based check.
type ValidationOutcome struct {
	Rule   string      `json:"rule,omitempty"`
	Kind   OutcomeKind `json:"kind"`
	Passed bool        `json:"passed"`
	Detail string      `json:"detail"`
}

// FailureKind classifies an endpoint error.
type FailureKind string

const (
	FailureTimeout           FailureKind = "timeout"
	FailureConnectionRefused FailureKind = "connection_refused"
	FailureDNS               FailureKind = "dns"
	FailureTLS               FailureKind = "tls"
	FailureTransport         FailureKind = "transport"
	FailureInvalidRequest    FailureKind = "invalid_request"
	FailureResponseRead      FailureKind = "response_read"
	FailureUnexpectedStatus  FailureKind = "unexpected_status"
)

// Failure is one entry of TestResult.Errors. It stays structured until the report
// renders it.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

func (f Failure) String() string { return f.Message }

// TestResult is the execution and validation outcome of one EndpointSpec.
type TestResult struct {
	Name           string              `json:"name"`
	Method         string              `json:"method"`
	URL            string              `json:"url"`
	Timestamp      time.Time           `json:"timestamp"`
	Status         Status              `json:"status"`
	ResponseTimeMs float64             `json:"response_time_ms"`
	StatusCode     *int                `json:"status_code"`
	Response       ResponseData        `json:"response_data,omitempty"`
	Validations    []ValidationOutcome `json:"validations"`
	Errors         []Failure           `json:"errors"`

	finalized bool
}

func newTestResult(ep EndpointSpec, url string) *TestResult {
	return &TestResult{
		Name:        ep.Name,
		Method:      ep.Method,
		URL:         url,
		Timestamp:   time.Now(),
		Status:      StatusFailed,
		Validations: []ValidationOutcome{},
		Errors:      []Failure{},
	}
}

func (r *TestResult) addFailure(kind FailureKind, msg string) {
	r.Errors = append(r.Errors, Failure{Kind: kind, Message: msg})
}

// Passed reports whether the endpoint has been finalized as PASSED.
func (r *TestResult) Passed() bool { return r.Status == StatusPassed }
