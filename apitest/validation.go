package apitest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ruleClass recognizes one phrasing of a free-text validation rule. Classes are tried
// in order and the first match evaluates the rule.
type ruleClass struct {
	kind     OutcomeKind
	match    func(rule, lower string) bool
	evaluate func(rule string, result *TestResult) ValidationOutcome
}

var (
	containsQuotedExpr   = regexp.MustCompile(`(?i)contain(?:s|ing)?\b[^"'` + "`" + `]*?(?:"([^"]*)"|'([^']*)'|` + "`([^`]*)`" + `)`)
	containsTrailingExpr = regexp.MustCompile(`(?i)contain(?:s|ing)?\s+(.+)$`)
	responseTimeExpr     = regexp.MustCompile(`(?i)(?:under|below|less than|within|<=?)\s*(\d+(?:\.\d+)?)\s*(ms|milliseconds?|s|secs?|seconds?)\b`)
	jsonFieldExpr        = regexp.MustCompile(`(?i)\b(?:has|have|includes?)\s+(?:an?\s+|the\s+)?(?:field|key|property)\s+["'` + "`" + `]([^"'` + "`" + `]+)["'` + "`" + `]`)
)

// ruleClasses ends with a catch-all so every rule gets exactly one outcome.
var ruleClasses = []ruleClass{
	{
		kind:     OutcomeContains,
		match:    func(_, lower string) bool { return strings.Contains(lower, "contain") },
		evaluate: evaluateContains,
	},
	{
		kind: OutcomeStatus,
		match: func(_, lower string) bool {
			return strings.Contains(lower, "status") && strings.Contains(lower, "should be")
		},
		evaluate: func(rule string, _ *TestResult) ValidationOutcome {
			return ValidationOutcome{Rule: rule, Kind: OutcomeStatus, Passed: true, Detail: "Status validation completed"}
		},
	},
	{
		kind: OutcomeResponseTime,
		match: func(rule, lower string) bool {
			return strings.Contains(lower, "response time") && responseTimeExpr.MatchString(rule)
		},
		evaluate: evaluateResponseTime,
	},
	{
		kind:     OutcomeJSONField,
		match:    func(rule, _ string) bool { return jsonFieldExpr.MatchString(rule) },
		evaluate: evaluateJSONField,
	},
	{
		kind:  OutcomeUnverifiable,
		match: func(string, string) bool { return true },
		evaluate: func(rule string, _ *TestResult) ValidationOutcome {
			return ValidationOutcome{Rule: rule, Kind: OutcomeUnverifiable, Passed: true, Detail: "Validation: " + rule}
		},
	},
}

// Validate runs the status code check and every rule of ep against result, then
// decides the final status. Calling it again on the same result is a no-op.
func Validate(result *TestResult, ep EndpointSpec) {
	if result.finalized {
		return
	}
	result.finalized = true

	result.Validations = append(result.Validations, checkStatusCode(result, ep.ExpectedStatus))
	for _, rule := range ep.Validations {
		result.Validations = append(result.Validations, EvaluateRule(rule, result))
	}

	if len(result.Errors) > 0 {
		return
	}
	for _, o := range result.Validations {
		if !o.Passed {
			return
		}
	}
	result.Status = StatusPassed
}

func checkStatusCode(result *TestResult, expected int) ValidationOutcome {
	if expected == 0 {
		expected = defaultExpected
	}
	outcome := ValidationOutcome{Kind: OutcomeStructural}

	switch {
	case result.StatusCode == nil:
		// the transport failure is already recorded in Errors
		outcome.Detail = fmt.Sprintf("No status code received, expected %d", expected)
	case *result.StatusCode == expected:
		outcome.Passed = true
		outcome.Detail = fmt.Sprintf("Status code %d matches expected", *result.StatusCode)
	default:
		outcome.Detail = fmt.Sprintf("Status code %d, expected %d", *result.StatusCode, expected)
		result.addFailure(FailureUnexpectedStatus, fmt.Sprintf("unexpected status code: %d", *result.StatusCode))
	}
	return outcome
}

// EvaluateRule classifies one free-text rule and checks it against result.
func EvaluateRule(rule string, result *TestResult) ValidationOutcome {
	lower := strings.ToLower(rule)
	for _, class := range ruleClasses {
		if class.match(rule, lower) {
			return class.evaluate(rule, result)
		}
	}

	// unreachable while the catch-all class is last
	return ValidationOutcome{Rule: rule, Kind: OutcomeUnverifiable, Passed: true, Detail: "Validation: " + rule}
}

func bodyText(result *TestResult) string {
	if result.Response == nil {
		return ""
	}
	return result.Response.BodyText()
}

func evaluateContains(rule string, result *TestResult) ValidationOutcome {
	expected, ok := extractContainsTarget(rule)
	if !ok {
		return ValidationOutcome{
			Rule:   rule,
			Kind:   OutcomeUnclassifiable,
			Detail: fmt.Sprintf("Could not extract expected text from rule %q", rule),
		}
	}

	outcome := ValidationOutcome{Rule: rule, Kind: OutcomeContains}
	if strings.Contains(strings.ToLower(bodyText(result)), strings.ToLower(expected)) {
		outcome.Passed = true
		outcome.Detail = fmt.Sprintf("Response contains '%s'", expected)
	} else {
		outcome.Detail = fmt.Sprintf("Response does not contain '%s'", expected)
	}
	return outcome
}

// extractContainsTarget prefers a quoted value after "contain" and otherwise takes the
// rest of the rule.
func extractContainsTarget(rule string) (string, bool) {
	if m := containsQuotedExpr.FindStringSubmatch(rule); m != nil {
		for _, group := range m[1:] {
			if strings.TrimSpace(group) != "" {
				return group, true
			}
		}
		return "", false
	}

	if m := containsTrailingExpr.FindStringSubmatch(rule); m != nil {
		expected := strings.TrimSpace(strings.TrimRight(m[1], ".!;, "))
		expected = strings.Trim(expected, `"'`+"`")
		if expected != "" {
			return expected, true
		}
	}
	return "", false
}

func evaluateResponseTime(rule string, result *TestResult) ValidationOutcome {
	m := responseTimeExpr.FindStringSubmatch(rule)
	bound, _ := strconv.ParseFloat(m[1], 64)
	if !strings.HasPrefix(strings.ToLower(m[2]), "m") {
		bound *= 1000
	}

	outcome := ValidationOutcome{Rule: rule, Kind: OutcomeResponseTime}
	switch {
	case result.StatusCode == nil:
		outcome.Detail = fmt.Sprintf("No response received, response time bound %gms not verified", bound)
	case result.ResponseTimeMs <= bound:
		outcome.Passed = true
		outcome.Detail = fmt.Sprintf("Response time %.2fms within %gms", result.ResponseTimeMs, bound)
	default:
		outcome.Detail = fmt.Sprintf("Response time %.2fms exceeds %gms", result.ResponseTimeMs, bound)
	}
	return outcome
}

func evaluateJSONField(rule string, result *TestResult) ValidationOutcome {
	field := jsonFieldExpr.FindStringSubmatch(rule)[1]
	outcome := ValidationOutcome{Rule: rule, Kind: OutcomeJSONField}

	structured, ok := result.Response.(Structured)
	if !ok {
		outcome.Detail = fmt.Sprintf("Response is not JSON, field '%s' not found", field)
		return outcome
	}
	if lookupPath(structured.Value, field) {
		outcome.Passed = true
		outcome.Detail = fmt.Sprintf("Response has field '%s'", field)
	} else {
		outcome.Detail = fmt.Sprintf("Response is missing field '%s'", field)
	}
	return outcome
}

// lookupPath walks a dotted path such as "data.items.0.id" through decoded JSON.
func lookupPath(value any, path string) bool {
	cur := value
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return false
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return false
			}
			cur = node[idx]
		default:
			return false
		}
	}
	return true
}
