package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testdrive/adocreport/pkg/report"
)

func TestMarker(t *testing.T) {
	tests := []struct {
		name    string
		outcome report.Outcome
		want    string
		wantErr bool
	}{
		{
			name:    "passed uses success role",
			outcome: report.OutcomePassed,
			want:    "[.test-success]#passed#",
		},
		{
			name:    "failed uses failure role",
			outcome: report.OutcomeFailed,
			want:    "[.test-failure]#failed#",
		},
		{
			name:    "errored uses error role",
			outcome: report.OutcomeErrored,
			want:    "[.test-error]#errored#",
		},
		{
			name:    "skipped uses deemphasize role",
			outcome: report.OutcomeSkipped,
			want:    "[.deemphasize]#skipped#",
		},
		{
			name:    "unknown outcome is an error",
			outcome: report.Outcome("maybe"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			marker, err := Marker(tt.outcome)

			if tt.wantErr {
				var unknown *report.UnknownOutcomeError
				require.ErrorAs(t, err, &unknown)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, marker)
		})
	}
}

func TestEscapeCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain text untouched", input: "ping works", want: "ping works"},
		{name: "pipe", input: "a|b", want: `a\|b`},
		{name: "asterisk", input: "a*b*", want: `a\*b\*`},
		{name: "underscore and hash", input: "_x#y", want: `\_x\#y`},
		{name: "backslash", input: `a\b`, want: `a\\b`},
		{name: "backtick", input: "`code`", want: "\\`code\\`"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, escapeCell(tt.input))
		})
	}
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    string
	}{
		{name: "zero", seconds: 0, want: "0"},
		{name: "sub-second", seconds: 0.5, want: "0.5"},
		{name: "float noise rounded away", seconds: 0.5 + 1.2, want: "1.7"},
		{name: "millisecond precision kept", seconds: 0.125, want: "0.125"},
		{name: "whole seconds", seconds: 42, want: "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatSeconds(tt.seconds))
		})
	}
}

func TestDocument(t *testing.T) {
	run := report.NewRun()
	run.Hostname = "h1"
	run.Started = time.Date(2023, 7, 31, 13, 0, 0, 0, time.UTC)
	run.Finished = time.Date(2023, 7, 31, 13, 0, 2, 0, time.UTC)
	run.GitHash = "abc123"
	run.Labels = map[string]string{"env": "lab"}

	run.Add("sequence", &report.Case{
		Name: "ping", Outcome: report.OutcomePassed, Duration: 0.5,
	})
	run.Add("sequence", &report.Case{
		Name: "ping6", Outcome: report.OutcomeFailed, Duration: 1.2,
		Message: "timeout",
	})
	run.Aggregate()

	doc, err := Document(run, Options{Title: "Acceptance"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(doc, "= Acceptance\n"))
	assert.Contains(t, doc, "== Summary")
	assert.Contains(t, doc, "| *hostname*\n| h1\n")
	assert.Contains(t, doc, "| *started*\n| 2023-07-31 13:00:00 UTC\n")
	assert.Contains(t, doc, "| *finished*\n| 2023-07-31 13:00:02 UTC\n")
	assert.Contains(t, doc, "| *githash*\n| abc123\n")
	assert.Contains(t, doc, "| *env*\n| lab\n")
	assert.Contains(t, doc, "| *test cases*\n| 2\n")
	assert.Contains(t, doc, "| *passed*\n| 1\n")
	assert.Contains(t, doc, "| *failed*\n| 1\n")
	assert.Contains(t, doc, "| *errored*\n| 0\n")
	assert.Contains(t, doc, "| *skipped*\n| 0\n")

	assert.Contains(t, doc, "== Test Suite: sequence")
	assert.Contains(t, doc, "|case |result |duration (s) |message")
	assert.Contains(t, doc,
		"| ping\n| [.test-success]#passed#\n| 0.5\n| [.deemphasize]#-#\n")
	assert.Contains(t, doc,
		"| ping6\n| [.test-failure]#failed#\n| 1.2\n| timeout\n")
	assert.Contains(t, doc, "<<<")

	// The suite section appears after the summary.
	assert.Less(t, strings.Index(doc, "== Summary"),
		strings.Index(doc, "== Test Suite: sequence"))
}

func TestDocumentPlaceholders(t *testing.T) {
	run := report.NewRun()
	run.Aggregate()

	doc, err := Document(run, Options{Title: "Empty"})
	require.NoError(t, err)

	// Absent values render as placeholders, never as missing rows, so the
	// summary shape is constant regardless of data completeness.
	assert.Contains(t, doc, "| *hostname*\n| not known\n")
	assert.Contains(t, doc, "| *started*\n| not known\n")
	assert.Contains(t, doc, "| *finished*\n| not known\n")
	assert.Contains(t, doc, "| *githash*\n| not known\n")
	assert.Contains(t, doc, "| *test cases*\n| 0\n")
}

func TestDocumentEscapesFreeText(t *testing.T) {
	run := report.NewRun()
	run.Add("pipes|and*stars", &report.Case{
		Name:    "case|one",
		Outcome: report.OutcomeFailed,
		Message: "got a | in *bold* output",
	})
	run.Aggregate()

	doc, err := Document(run, Options{Title: "Escaping"})
	require.NoError(t, err)

	assert.Contains(t, doc, `== Test Suite: pipes\|and\*stars`)
	assert.Contains(t, doc, `| case\|one`)
	assert.Contains(t, doc, `| got a \| in \*bold\* output`)

	// No unescaped pipe from free text may survive in a cell.
	assert.NotContains(t, doc, "case|one")
	assert.NotContains(t, doc, "got a | in")
}

func TestDocumentUnknownOutcome(t *testing.T) {
	run := report.NewRun()
	run.Add("s", &report.Case{Name: "a", Outcome: report.Outcome("maybe")})
	run.Aggregate()

	doc, err := Document(run, Options{Title: "Bad"})

	var unknown *report.UnknownOutcomeError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "maybe", unknown.Value)

	// Nothing is produced on error.
	assert.Empty(t, doc)
}

func TestDocumentStableOrder(t *testing.T) {
	build := func() string {
		run := report.NewRun()
		run.Add("zeta", &report.Case{Name: "z", Outcome: report.OutcomePassed})
		run.Add("alpha", &report.Case{Name: "a", Outcome: report.OutcomePassed})
		run.Add("zeta", &report.Case{Name: "a", Outcome: report.OutcomeSkipped})
		run.Aggregate()

		doc, err := Document(run, Options{Title: "Order"})
		require.NoError(t, err)

		return doc
	}

	first := build()

	// Identical input yields byte-identical output, and suites keep
	// first-seen order rather than alphabetical.
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, build())
	}

	assert.Less(t, strings.Index(first, "== Test Suite: zeta"),
		strings.Index(first, "== Test Suite: alpha"))
}
