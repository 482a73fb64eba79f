package report

// Aggregate recomputes every derived counter from the merged case lists.
// Counters are never patched incrementally during ingestion: recomputing
// from the final case set keeps suite and run counters consistent with the
// cases regardless of ingestion order, and makes Aggregate idempotent.
func (r *Run) Aggregate() {
	r.Passed = 0
	r.Failed = 0
	r.Errored = 0
	r.Skipped = 0
	r.TotalDuration = 0

	for _, suite := range r.Suites {
		suite.aggregate()

		r.Passed += suite.Passed
		r.Failed += suite.Failed
		r.Errored += suite.Errored
		r.Skipped += suite.Skipped
		r.TotalDuration += suite.TotalDuration
	}
}

// aggregate folds the suite's case outcomes into its counters.
func (s *Suite) aggregate() {
	s.Passed = 0
	s.Failed = 0
	s.Errored = 0
	s.Skipped = 0
	s.TotalDuration = 0

	for _, c := range s.Cases {
		switch c.Outcome {
		case OutcomePassed:
			s.Passed++
		case OutcomeFailed:
			s.Failed++
		case OutcomeErrored:
			s.Errored++
		case OutcomeSkipped:
			s.Skipped++
		}

		s.TotalDuration += c.Duration
	}
}
