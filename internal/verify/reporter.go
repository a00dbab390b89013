package verify

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/thoreinstein/veribak/internal/errors"
)

// Format specifies the output format for verification reports.
type Format string

const (
	// FormatText produces human-readable text output.
	FormatText Format = "text"
	// FormatJSON produces machine-readable JSON output.
	FormatJSON Format = "json"
)

// Reporter formats and writes verification reports.
type Reporter struct {
	out    io.Writer
	format Format
}

// NewReporter creates a new Reporter.
func NewReporter(out io.Writer, format Format) *Reporter {
	return &Reporter{
		out:    out,
		format: format,
	}
}

// Report writes the verification report to the output.
func (r *Reporter) Report(report *Report) error {
	if report == nil {
		return nil
	}

	switch r.format {
	case FormatJSON:
		return r.reportJSON(report)
	default:
		return r.reportText(report)
	}
}

func (r *Reporter) reportJSON(report *Report) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return errors.Wrap(encoder.Encode(report), "encoding JSON report")
}

func (r *Reporter) reportText(report *Report) error {
	total := len(report.Results)
	if report.Passed() {
		fmt.Fprintln(r.out, color.GreenString("✓ Verification passed: %d file(s) match %s", total, report.ArchiveName))
		return nil
	}

	failures := report.Failures()

	var summary []string
	for _, k := range []Kind{KindChecksumMismatch, KindMissing, KindIOError} {
		if n := report.Count(k); n > 0 {
			summary = append(summary, color.RedString("%d %s", n, kindLabel(k)))
		}
	}
	fmt.Fprintf(r.out, "✗ Verification failed: %d of %d file(s): %s\n\n", len(failures), total, strings.Join(summary, ", "))

	for _, res := range failures {
		r.printFailure(res)
	}
	fmt.Fprintln(r.out)

	return nil
}

func (r *Reporter) printFailure(res Result) {
	printer := color.New(color.FgRed).SprintFunc()
	dim := color.New(color.FgHiBlack)

	// Format:  • path: kind (detail)

	var sb strings.Builder
	sb.WriteString("  • ")
	sb.WriteString(printer(res.Path))
	sb.WriteString(": ")
	sb.WriteString(kindLabel(res.Kind))

	switch res.Kind {
	case KindChecksumMismatch:
		sb.WriteString(" ")
		sb.WriteString(dim.Sprintf("(expected %s, got %s)", short(res.Expected), short(res.Actual)))
	case KindIOError:
		if res.Message != "" {
			sb.WriteString(" ")
			sb.WriteString(dim.Sprintf("(%s)", res.Message))
		}
	}

	fmt.Fprintln(r.out, sb.String())
}

func kindLabel(k Kind) string {
	switch k {
	case KindChecksumMismatch:
		return "checksum mismatch"
	case KindMissing:
		return "missing"
	case KindIOError:
		return "i/o error"
	default:
		return string(k)
	}
}

// short truncates long digests for display.
func short(sum string) string {
	if len(sum) > 16 {
		return sum[:16] + "…"
	}
	return sum
}
