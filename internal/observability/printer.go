package observability

import (
	"fmt"
	"io"
	"strings"
)

// boxWidth is the default width for formatted output boxes
const boxWidth = 60

// Printer handles formatted output for end-of-run summaries
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// DeltaCounts summarizes one delta partition for display.
type DeltaCounts struct {
	Added   int
	Removed int
	Changed int
}

// PrintExtractionSummary outputs the counts of a completed extraction.
func (p *Printer) PrintExtractionSummary(runID string, categories, products int) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:        %s\n", runID))
	sb.WriteString(fmt.Sprintf("Categories: %d\n", categories))
	sb.WriteString(fmt.Sprintf("Products:   %d", products))
	p.printBox("Extraction Summary", sb.String())
}

// PrintDeltaSummary outputs the partition counts of a completed delta run.
func (p *Printer) PrintDeltaSummary(prevRun, currRun string, categories, products, hierarchy DeltaCounts) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Previous:   %s\n", prevRun))
	sb.WriteString(fmt.Sprintf("Current:    %s\n", currRun))
	sb.WriteString("\n")
	sb.WriteString("            added  removed  changed\n")
	sb.WriteString(formatCountRow("Categories", categories))
	sb.WriteString("\n")
	sb.WriteString(formatCountRow("Products", products))
	sb.WriteString("\n")
	sb.WriteString(formatCountRow("Hierarchy", hierarchy))
	p.printBox("Delta Summary", sb.String())
}

// PrintDictionarySummary outputs the counts of a dictionary build.
func (p *Printer) PrintDictionarySummary(products, categories, hierarchy, translated int) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Product entries:   %d\n", products))
	sb.WriteString(fmt.Sprintf("Category entries:  %d\n", categories))
	sb.WriteString(fmt.Sprintf("Hierarchy entries: %d\n", hierarchy))
	sb.WriteString(fmt.Sprintf("Translated:        %d", translated))
	p.printBox("Dictionary Summary", sb.String())
}

func formatCountRow(label string, c DeltaCounts) string {
	return fmt.Sprintf("%-11s %5d  %7d  %7d", label, c.Added, c.Removed, c.Changed)
}
