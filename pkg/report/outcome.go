package report

import "fmt"

// Outcome is the closed set of result states a test case may have.
type Outcome string

const (
	OutcomePassed  Outcome = "passed"
	OutcomeFailed  Outcome = "failed"
	OutcomeErrored Outcome = "errored"
	OutcomeSkipped Outcome = "skipped"
)

// UnknownOutcomeError reports an outcome value outside the closed set.
// Outcomes are matched exhaustively everywhere so a new or mistyped value
// surfaces as an error instead of being rendered with a fallback style.
type UnknownOutcomeError struct {
	Value string
}

func (e *UnknownOutcomeError) Error() string {
	return fmt.Sprintf("unknown outcome %q", e.Value)
}

// ParseOutcome validates a raw outcome value from an input source.
func ParseOutcome(value string) (Outcome, error) {
	switch Outcome(value) {
	case OutcomePassed, OutcomeFailed, OutcomeErrored, OutcomeSkipped:
		return Outcome(value), nil
	}

	return "", &UnknownOutcomeError{Value: value}
}
