package observability

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintExtractionSummary(t *testing.T) {
	var buf strings.Builder
	p := NewPrinter(&buf)

	p.PrintExtractionSummary("2026-08-01_10-00-00", 12, 340)

	out := buf.String()
	assert.Contains(t, out, "Extraction Summary")
	assert.Contains(t, out, "2026-08-01_10-00-00")
	assert.Contains(t, out, "Categories: 12")
	assert.Contains(t, out, "Products:   340")
}

func TestPrintDeltaSummary_CountColumns(t *testing.T) {
	var buf strings.Builder
	p := NewPrinter(&buf)

	p.PrintDeltaSummary("a", "b",
		DeltaCounts{Added: 1, Removed: 2, Changed: 3},
		DeltaCounts{Added: 4},
		DeltaCounts{})

	out := buf.String()
	assert.Contains(t, out, "added  removed  changed")
	assert.Contains(t, out, "Categories")
	assert.Contains(t, out, "Products")
	assert.Contains(t, out, "Hierarchy")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf strings.Builder
	p := NewPrinter(&buf)

	p.printBox("Title", strings.Repeat("x", 200))

	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth)
	}
}
