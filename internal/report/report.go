// Package report renders detector output for terminals and scripts.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/gonkalabs/termsplain/internal/flags"
)

// Formatter writes findings and rule listings as colored text.
type Formatter struct {
	colors map[string]*color.Color
}

// NewFormatter creates a text formatter. noColor disables ANSI escapes for
// this formatter only.
func NewFormatter(noColor bool) *Formatter {
	f := &Formatter{
		colors: map[string]*color.Color{
			string(flags.SeverityLow):     color.New(color.FgGreen, color.Bold),
			string(flags.SeverityCaution): color.New(color.FgYellow, color.Bold),
			string(flags.SeverityHigh):    color.New(color.FgRed, color.Bold),
			"title":                       color.New(color.FgWhite, color.Bold),
			"dim":                         color.New(color.FgCyan),
		},
	}
	if noColor {
		for _, c := range f.colors {
			c.DisableColor()
		}
	}
	return f
}

func (f *Formatter) severity(s flags.Severity) string {
	label := strings.ToUpper(string(s))
	if c, ok := f.colors[string(s)]; ok {
		return c.Sprintf("[%s]", label)
	}
	return "[" + label + "]"
}

// Findings writes one block per finding, or a single line when there are none.
func (f *Formatter) Findings(w io.Writer, findings []flags.Finding) error {
	if len(findings) == 0 {
		_, err := fmt.Fprintln(w, "No risk flags found.")
		return err
	}

	counts := map[flags.Severity]int{}
	for _, fd := range findings {
		counts[fd.Severity]++
		if _, err := fmt.Fprintf(w, "%s %s (%s)\n  %q\n  %s\n\n",
			f.severity(fd.Severity),
			f.colors["title"].Sprint(fd.Label),
			fd.ID,
			fd.EvidenceSnippet,
			f.colors["dim"].Sprint(fd.WhyItMatters),
		); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d flags: %d red, %d yellow, %d green\n",
		len(findings), counts[flags.SeverityHigh], counts[flags.SeverityCaution], counts[flags.SeverityLow])
	return err
}

// Rules lists every rule in declaration order, marking broken patterns.
func (f *Formatter) Rules(w io.Writer, rs *flags.RuleSet) error {
	for _, r := range rs.Rules() {
		line := fmt.Sprintf("%s %-32s %s", f.severity(r.Severity), r.ID, r.Label)
		if err := r.PatternErr(); err != nil {
			line += "  " + f.colors[string(flags.SeverityHigh)].Sprintf("(invalid pattern: %v)", err)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// JSON writes v indented.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
