package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Laisky/errors/v2"
)

const (
	reportTitle     = "🧪 API AUTOMATION TEST REPORT"
	iconPass        = "✅"
	iconFail        = "❌"
	reportRuleWidth = 40
)

// Summary holds the counts shown at the top of every report.
type Summary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// Summarize counts passed and failed results.
func Summarize(results []*TestResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Passed() {
			s.Passed++
		}
	}
	s.Failed = s.Total - s.Passed
	return s
}

// BuildReport renders results as the plain text report. It has no side effects and
// returns identical text for identical input.
func BuildReport(results []*TestResult) string {
	s := Summarize(results)

	var b strings.Builder
	b.WriteString(reportTitle + "\n")
	b.WriteString(strings.Repeat("=", reportRuleWidth) + "\n")
	fmt.Fprintf(&b, "📊 Summary: %d/%d tests passed\n", s.Passed, s.Total)
	fmt.Fprintf(&b, "%s Passed: %d\n", iconPass, s.Passed)
	fmt.Fprintf(&b, "%s Failed: %d\n", iconFail, s.Failed)
	b.WriteString("\n")

	for i, r := range results {
		fmt.Fprintf(&b, "%s Test %d: %s\n", statusIcon(r.Passed()), i+1, r.Name)
		fmt.Fprintf(&b, "   Method: %s %s\n", r.Method, r.URL)
		fmt.Fprintf(&b, "   Status: %s (%.2fms)\n", formatStatusCode(r.StatusCode), r.ResponseTimeMs)

		if len(r.Validations) > 0 {
			b.WriteString("   Validations:\n")
			for _, v := range r.Validations {
				fmt.Fprintf(&b, "     %s %s\n", statusIcon(v.Passed), v.Detail)
			}
		}

		if len(r.Errors) > 0 {
			b.WriteString("   Errors:\n")
			for _, f := range r.Errors {
				fmt.Fprintf(&b, "     %s %s\n", iconFail, f)
			}
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// jsonReport is the machine readable form of a run.
type jsonReport struct {
	Summary Summary       `json:"summary"`
	Results []*TestResult `json:"results"`
}

// RenderJSON writes the summary and every result as indented JSON.
func RenderJSON(w io.Writer, results []*TestResult) error {
	if results == nil {
		results = []*TestResult{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(jsonReport{Summary: Summarize(results), Results: results}); err != nil {
		return errors.Wrap(err, "encode json report")
	}
	return nil
}

func statusIcon(passed bool) string {
	if passed {
		return iconPass
	}
	return iconFail
}

func formatStatusCode(code *int) string {
	if code == nil {
		return "none"
	}
	return strconv.Itoa(*code)
}
