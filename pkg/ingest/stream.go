package ingest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/testdrive/adocreport/pkg/report"
)

// event mirrors one JSON object of the primary record stream. Fields are a
// union across the recognized event kinds.
type event struct {
	Type     string   `json:"type"`
	Hostname string   `json:"hostname"`
	Started  string   `json:"started"`
	Finished string   `json:"finished"`
	Suite    string   `json:"suite"`
	Name     string   `json:"name"`
	Outcome  string   `json:"outcome"`
	Duration *float64 `json:"duration"`
	Message  string   `json:"message"`
}

// MalformedRecordError reports a primary-stream line that is not valid JSON
// or is missing required fields. The line number is 1-based.
type MalformedRecordError struct {
	Line int
	Err  error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record on line %d: %v", e.Line, e.Err)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

// ReadStream parses one JSON event per line from r into run. Blank lines
// are skipped; unparseable lines abort the whole run with a
// MalformedRecordError rather than being silently dropped, since a
// corrupted report is worse than no report. Event kinds other than start,
// result and end are ignored for forward compatibility.
func ReadStream(log logrus.FieldLogger, r io.Reader, run *report.Run) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var line, results int

	for scanner.Scan() {
		line++

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var ev event
		if err := json.Unmarshal([]byte(text), &ev); err != nil {
			return &MalformedRecordError{Line: line, Err: err}
		}

		if err := apply(run, &ev, line); err != nil {
			return err
		}

		if ev.Type == "result" {
			results++
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading record stream: %w", err)
	}

	log.WithFields(logrus.Fields{
		"lines":   line,
		"results": results,
	}).Debug("Ingested record stream")

	return nil
}

// apply folds a single event into the run.
func apply(run *report.Run, ev *event, line int) error {
	switch ev.Type {
	case "start":
		run.Hostname = ev.Hostname

		started, err := parseTimestamp(ev.Started)
		if err != nil {
			return &MalformedRecordError{Line: line, Err: err}
		}

		run.Started = started
	case "result":
		if ev.Suite == "" || ev.Name == "" {
			return &MalformedRecordError{
				Line: line,
				Err:  fmt.Errorf("result event missing suite or name"),
			}
		}

		outcome, err := report.ParseOutcome(ev.Outcome)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}

		var duration float64
		if ev.Duration != nil {
			duration = *ev.Duration
		}

		run.Add(ev.Suite, &report.Case{
			Name:     ev.Name,
			Outcome:  outcome,
			Message:  ev.Message,
			Duration: duration,
			Source:   report.SourceStream,
		})
	case "end":
		finished, err := parseTimestamp(ev.Finished)
		if err != nil {
			return &MalformedRecordError{Line: line, Err: err}
		}

		run.Finished = finished
	}

	return nil
}

// parseTimestamp parses an ISO8601 timestamp. An empty value is not an
// error: it leaves the corresponding run field at its zero value, which
// the renderer turns into a placeholder.
func parseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", value, err)
	}

	return t, nil
}
