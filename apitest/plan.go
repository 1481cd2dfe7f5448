package apitest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/Laisky/zap"
	"github.com/go-playground/validator/v10"

	"github.com/songquanpeng/apitest/common/logger"
	"github.com/songquanpeng/apitest/relay/adaptor"
)

// PlanSource tells which path produced a plan.
type PlanSource string

const (
	PlanSourceLLM      PlanSource = "llm"
	PlanSourceFallback PlanSource = "fallback"
	PlanSourceFile     PlanSource = "file"
)

const (
	fallbackEndpointName = "API Test"
	defaultExpected      = http.StatusOK
)

const planInstructionTemplate = `Create an API test plan from this request: %s

Respond with JSON containing:
{
    "base_url": "API base URL",
    "endpoints": [
        {
            "name": "test name",
            "method": "GET/POST/PUT/DELETE",
            "path": "/endpoint/path",
            "headers": {"key": "value"},
            "data": {"key": "value"},
            "expected_status": 200,
            "validations": ["response should contain X", "status should be Y"]
        }
    ]
}`

var (
	urlPattern        = regexp.MustCompile(`https?://[^\s]+`)
	methodKeywordExpr = map[string]*regexp.Regexp{
		http.MethodPost:   regexp.MustCompile(`(?i)\bPOST\b`),
		http.MethodPut:    regexp.MustCompile(`(?i)\bPUT\b`),
		http.MethodDelete: regexp.MustCompile(`(?i)\bDELETE\b`),
	}
	// checked in this order; the first keyword present wins
	methodKeywordOrder = []string{http.MethodPost, http.MethodPut, http.MethodDelete}

	planValidate = validator.New()
)

// PlanGenerator turns a free-text prompt into a TestPlan. It asks the completer for a
// JSON plan first and falls back to parsing the prompt itself.
type PlanGenerator struct {
	completer adaptor.Completer
	timeout   time.Duration
	logger    glog.Logger
}

// NewPlanGenerator returns a generator. A nil completer disables the model path.
// timeout bounds one completion call; zero means no extra bound beyond ctx.
func NewPlanGenerator(completer adaptor.Completer, timeout time.Duration) *PlanGenerator {
	return &PlanGenerator{
		completer: completer,
		timeout:   timeout,
		logger:    logger.Logger.Named("plan"),
	}
}

// Generate builds a plan for prompt. The only error it returns is a *PlanGenerationError.
func (g *PlanGenerator) Generate(ctx context.Context, prompt string) (*TestPlan, PlanSource, error) {
	if g.completer != nil {
		plan, err := g.draft(ctx, prompt)
		if err == nil {
			return plan, PlanSourceLLM, nil
		}
		g.logger.Warn("plan draft rejected, falling back to prompt parsing", zap.Error(err))
	}

	plan, err := FallbackPlan(prompt)
	if err != nil {
		return nil, PlanSourceFallback, &PlanGenerationError{Prompt: prompt, Err: err}
	}
	return plan, PlanSourceFallback, nil
}

func (g *PlanGenerator) draft(ctx context.Context, prompt string) (*TestPlan, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	completion, err := g.completer.Complete(ctx, fmt.Sprintf(planInstructionTemplate, prompt))
	if err != nil {
		return nil, errors.Wrap(err, "completion request failed")
	}
	g.logger.Debug("plan draft received",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("length", len(completion)))

	return ParsePlanJSON(completion)
}

// ParsePlanJSON decodes the first balanced JSON object found in text, applies defaults
// and validates the result.
func ParsePlanJSON(text string) (*TestPlan, error) {
	raw, ok := extractJSONObject(text)
	if !ok {
		return nil, errors.New("no JSON object in completion")
	}

	plan := new(TestPlan)
	if err := json.Unmarshal([]byte(raw), plan); err != nil {
		return nil, errors.Wrap(err, "decode plan")
	}

	if err := normalizePlan(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// normalizePlan fills defaults in place and validates the plan.
func normalizePlan(plan *TestPlan) error {
	for i := range plan.Endpoints {
		ep := &plan.Endpoints[i]
		ep.Method = strings.ToUpper(strings.TrimSpace(ep.Method))
		ep.Path = strings.TrimSpace(ep.Path)
		if ep.ExpectedStatus == 0 {
			ep.ExpectedStatus = defaultExpected
		}
		if strings.TrimSpace(ep.Name) == "" {
			ep.Name = ep.Method + " " + ep.Path
		}
	}

	if err := planValidate.Struct(plan); err != nil {
		return errors.Wrap(err, "invalid plan")
	}
	return nil
}

// extractJSONObject returns the first balanced {...} substring of text. Braces inside
// JSON string literals are ignored.
func extractJSONObject(text string) (string, bool) {
	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end := matchBrace(text, start); end > 0 {
			return text[start : end+1], true
		}

		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// matchBrace returns the index of the brace closing the one at start, or -1.
func matchBrace(text string, start int) int {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// trimURLToken drops sentence punctuation glued to a URL. A closing bracket is only
// dropped when the URL has no matching opener.
func trimURLToken(token string) string {
	for token != "" {
		last := token[len(token)-1]
		switch {
		case strings.IndexByte(".,;:!?'\"", last) >= 0:
		case last == ')' && strings.Count(token, ")") > strings.Count(token, "("):
		case last == ']' && strings.Count(token, "]") > strings.Count(token, "["):
		case last == '}' && strings.Count(token, "}") > strings.Count(token, "{"):
		default:
			return token
		}
		token = token[:len(token)-1]
	}
	return token
}

// FallbackPlan builds a single-endpoint plan from the first URL in prompt.
// It is deterministic and never calls out.
func FallbackPlan(prompt string) (*TestPlan, error) {
	loc := urlPattern.FindStringIndex(prompt)
	if loc == nil {
		return nil, ErrNoTarget
	}
	target := trimURLToken(prompt[loc[0]:loc[1]])

	// the URL itself is excluded so /posts or ?delete=1 do not pick the method
	rest := prompt[:loc[0]] + " " + prompt[loc[1]:]

	return &TestPlan{
		BaseURL: "",
		Endpoints: []EndpointSpec{{
			Name:           fallbackEndpointName,
			Method:         inferMethod(rest),
			Path:           target,
			Headers:        map[string]string{"Content-Type": "application/json"},
			ExpectedStatus: defaultExpected,
		}},
	}, nil
}

func inferMethod(text string) string {
	for _, m := range methodKeywordOrder {
		if methodKeywordExpr[m].MatchString(text) {
			return m
		}
	}
	return http.MethodGet
}
