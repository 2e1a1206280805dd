package fielddiff

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/liorgins/rimon-api/internal/catalog"
)

// diffContext is the number of context lines in unified hunks.
const diffContext = 3

// UnifiedReport renders a human-readable unified diff for every change whose
// old or new value spans multiple lines. Single-line changes are covered by
// the CSV report and skipped here. The result is empty when no multiline
// field changed.
func UnifiedReport(changes []Change) string {
	var sb strings.Builder
	for _, c := range changes {
		oldText := catalog.Stringify(c.OldValue)
		newText := catalog.Stringify(c.NewValue)
		if !strings.Contains(oldText, "\n") && !strings.Contains(newText, "\n") {
			continue
		}
		u := difflib.UnifiedDiff{
			A:        splitLinesKeepNL(oldText),
			B:        splitLinesKeepNL(newText),
			FromFile: fmt.Sprintf("%s/%s@previous", c.ID, c.Field),
			ToFile:   fmt.Sprintf("%s/%s@current", c.ID, c.Field),
			Context:  diffContext,
		}
		body, err := difflib.GetUnifiedDiffString(u)
		if err != nil || body == "" {
			continue
		}
		sb.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// splitLinesKeepNL keeps newline characters on each element, which produces
// cleaner unified hunks.
func splitLinesKeepNL(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.SplitAfter(s, "\n")
}
