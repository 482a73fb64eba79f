package report

import "time"

// Source identifies which input produced a case record. It is only used
// for merge diagnostics and never rendered.
type Source string

const (
	// SourceStream marks cases ingested from the primary JSON-line stream.
	SourceStream Source = "stream"

	// SourceJUnit marks cases ingested from a secondary JUnit XML file.
	SourceJUnit Source = "junit"
)

// Case is a single test outcome record.
type Case struct {
	Name     string
	Outcome  Outcome
	Message  string
	Duration float64 // seconds
	Stdout   string  // raw case output from a secondary file, may carry a detail object
	Source   Source
}

// Suite groups cases under one name. Name is the merge key within a run.
type Suite struct {
	Name  string
	Cases []*Case

	// Derived counters, recomputed by (*Run).Aggregate.
	Passed        int
	Failed        int
	Errored       int
	Skipped       int
	TotalDuration float64

	index map[string]int // case name -> position in Cases
}

// Run is the top-level record for one test-execution session.
type Run struct {
	Hostname string
	Started  time.Time
	Finished time.Time
	GitHash  string
	Labels   map[string]string

	Suites []*Suite

	// Derived counters, recomputed by Aggregate.
	Passed        int
	Failed        int
	Errored       int
	Skipped       int
	TotalDuration float64

	index map[string]int // suite name -> position in Suites
}

// NewRun creates an empty run. Each invocation constructs its own run;
// there is no shared state between runs.
func NewRun() *Run {
	return &Run{
		Suites: make([]*Suite, 0),
		index:  make(map[string]int),
	}
}

// Suite returns the named suite, creating it at the end of the suite list
// when it has not been seen before. Suites keep their first-seen order.
func (r *Run) Suite(name string) *Suite {
	if r.index == nil {
		r.index = make(map[string]int)
	}

	if pos, ok := r.index[name]; ok {
		return r.Suites[pos]
	}

	suite := &Suite{
		Name:  name,
		Cases: make([]*Case, 0),
		index: make(map[string]int),
	}

	r.index[name] = len(r.Suites)
	r.Suites = append(r.Suites, suite)

	return suite
}

// Add merges a case into the named suite. A case that shares its name with
// an earlier record replaces that record in place, keeping the first-seen
// position: ingestion order is the stream first, then secondary files, so
// the later source wins. Negative durations are clamped to zero.
func (r *Run) Add(suiteName string, c *Case) {
	if c.Duration < 0 {
		c.Duration = 0
	}

	suite := r.Suite(suiteName)

	if pos, ok := suite.index[c.Name]; ok {
		suite.Cases[pos] = c

		return
	}

	suite.index[c.Name] = len(suite.Cases)
	suite.Cases = append(suite.Cases, c)
}

// Total returns the number of cases across all suites. Valid after
// Aggregate has run.
func (r *Run) Total() int {
	return r.Passed + r.Failed + r.Errored + r.Skipped
}
