package apitest

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
)

const maxTableCellRunes = 60

// RenderTable writes a one-row-per-endpoint summary table followed by the totals line.
func RenderTable(w io.Writer, results []*TestResult) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Name", "Method", "URL", "Code", "Time (ms)", "Status", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for i, r := range results {
		table.Append([]string{
			strconv.Itoa(i + 1),
			shorten(r.Name, maxTableCellRunes),
			r.Method,
			shorten(r.URL, maxTableCellRunes),
			formatStatusCode(r.StatusCode),
			fmt.Sprintf("%.2f", r.ResponseTimeMs),
			string(r.Status),
			shorten(firstProblem(r), maxTableCellRunes),
		})
	}
	table.Render()

	s := Summarize(results)
	fmt.Fprintf(w, "Totals  | Tests: %d | Passed: %d | Failed: %d\n", s.Total, s.Passed, s.Failed)
}

// firstProblem picks the most useful line for a failed row.
func firstProblem(r *TestResult) string {
	if len(r.Errors) > 0 {
		return r.Errors[0].String()
	}
	for _, v := range r.Validations {
		if !v.Passed {
			return v.Detail
		}
	}
	return ""
}

func shorten(text string, limit int) string {
	text = strings.TrimSpace(text)
	if limit <= 0 || len(text) <= limit {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "…"
}
