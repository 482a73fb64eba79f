package render

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/testdrive/adocreport/pkg/report"
)

const (
	// notKnown is rendered in place of absent run metadata so the summary
	// table keeps a constant shape regardless of data completeness.
	notKnown = "not known"

	// emptyCell marks a deliberately empty table cell.
	emptyCell = "[.deemphasize]#-#"
)

// Options carry the document-level inputs that do not come from the
// ingested data.
type Options struct {
	// Title identifies the report. Supplied by the invoker, never derived
	// from the result data.
	Title string

	// AssetsDir receives copies of image files referenced by case details.
	// When empty, images are referenced at their original path.
	AssetsDir string
}

// Document renders an aggregated run as AsciiDoc: a title, a run-level
// summary table, then one section per suite in first-seen order. Nothing
// is emitted on error, so a failed render never produces partial output.
func Document(run *report.Run, opts Options) (string, error) {
	var sb strings.Builder

	sb.Grow(4096)

	writeTitle(&sb, opts.Title)
	writeSummary(&sb, run)

	for _, suite := range run.Suites {
		if err := writeSuite(&sb, suite, opts.AssetsDir); err != nil {
			return "", err
		}
	}

	return sb.String(), nil
}

func writeTitle(sb *strings.Builder, title string) {
	fmt.Fprintf(sb, "= %s\n\n", escapeCell(title))
}

func writeSummary(sb *strings.Builder, run *report.Run) {
	sb.WriteString("== Summary\n\n")
	sb.WriteString("[cols=\"1,3\"]\n")
	sb.WriteString("|===\n")

	writeRow(sb, "*hostname*", orNotKnown(escapeCell(run.Hostname)))
	writeRow(sb, "*started*", formatTime(run.Started))
	writeRow(sb, "*finished*", formatTime(run.Finished))
	writeRow(sb, "*githash*", orNotKnown(escapeCell(run.GitHash)))

	// Config labels are opaque passthrough metadata, sorted for
	// deterministic output.
	keys := make([]string, 0, len(run.Labels))
	for k := range run.Labels {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		writeRow(sb, "*"+escapeCell(k)+"*", escapeCell(run.Labels[k]))
	}

	writeRow(sb, "*duration (s)*", formatSeconds(run.TotalDuration))
	writeRow(sb, "*test cases*", strconv.Itoa(run.Total()))
	writeRow(sb, "*passed*", strconv.Itoa(run.Passed))
	writeRow(sb, "*failed*", strconv.Itoa(run.Failed))
	writeRow(sb, "*errored*", strconv.Itoa(run.Errored))
	writeRow(sb, "*skipped*", strconv.Itoa(run.Skipped))

	sb.WriteString("\n|===\n\n")
}

func writeSuite(sb *strings.Builder, suite *report.Suite, assetsDir string) error {
	fmt.Fprintf(sb, "== Test Suite: %s\n\n", escapeCell(suite.Name))

	writeSuiteCounters(sb, suite)

	sb.WriteString("[%header,cols=\"4,1,1,4\"]\n")
	sb.WriteString("|===\n")
	sb.WriteString("|case |result |duration (s) |message\n")

	for _, c := range suite.Cases {
		marker, err := Marker(c.Outcome)
		if err != nil {
			return err
		}

		message := emptyCell
		if c.Message != "" {
			message = escapeCell(c.Message)
		}

		writeRow(sb, escapeCell(c.Name), marker, formatSeconds(c.Duration), message)
	}

	sb.WriteString("\n|===\n")

	for _, c := range suite.Cases {
		if err := writeDetail(sb, c, assetsDir); err != nil {
			return err
		}
	}

	sb.WriteString("\n<<<\n\n")

	return nil
}

func writeSuiteCounters(sb *strings.Builder, suite *report.Suite) {
	sb.WriteString("[cols=\"1,3\"]\n")
	sb.WriteString("|===\n")

	writeRow(sb, "*duration (s)*", formatSeconds(suite.TotalDuration))
	writeRow(sb, "*test cases*", strconv.Itoa(len(suite.Cases)))
	writeRow(sb, "*passed*", strconv.Itoa(suite.Passed))
	writeRow(sb, "*failed*", strconv.Itoa(suite.Failed))
	writeRow(sb, "*errored*", strconv.Itoa(suite.Errored))
	writeRow(sb, "*skipped*", strconv.Itoa(suite.Skipped))

	sb.WriteString("\n|===\n\n")
}

// Marker returns the role-colored inline marker for an outcome. The match
// is exhaustive over the closed outcome set: anything else is an error,
// never a default style.
func Marker(outcome report.Outcome) (string, error) {
	switch outcome {
	case report.OutcomePassed:
		return "[.test-success]#passed#", nil
	case report.OutcomeFailed:
		return "[.test-failure]#failed#", nil
	case report.OutcomeErrored:
		return "[.test-error]#errored#", nil
	case report.OutcomeSkipped:
		return "[.deemphasize]#skipped#", nil
	}

	return "", &report.UnknownOutcomeError{Value: string(outcome)}
}

// writeRow emits one table row, one cell per line.
func writeRow(sb *strings.Builder, cells ...string) {
	sb.WriteByte('\n')

	for _, cell := range cells {
		fmt.Fprintf(sb, "| %s\n", cell)
	}
}

// asciidocSpecials are the characters that can break table structure or
// open inline formatting when they appear in free text.
const asciidocSpecials = "\\|*_#`^~+"

// escapeCell backslash-escapes AsciiDoc special characters so free text
// from test records cannot corrupt the surrounding table.
func escapeCell(s string) string {
	if !strings.ContainsAny(s, asciidocSpecials) {
		return s
	}

	var b strings.Builder

	b.Grow(len(s) + 8)

	for _, r := range s {
		if strings.ContainsRune(asciidocSpecials, r) {
			b.WriteByte('\\')
		}

		b.WriteRune(r)
	}

	return b.String()
}

func orNotKnown(value string) string {
	if value == "" {
		return notKnown
	}

	return value
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return notKnown
	}

	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}

// formatSeconds formats a duration in seconds with millisecond precision,
// dropping trailing zeros. Summing float durations accumulates noise well
// below a millisecond, so rounding keeps totals readable.
func formatSeconds(seconds float64) string {
	rounded := math.Round(seconds*1000) / 1000

	return strconv.FormatFloat(rounded, 'f', -1, 64)
}
