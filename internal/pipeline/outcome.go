package pipeline

import "fmt"

// OutcomeKind classifies what happened to one input file.
type OutcomeKind int

const (
	// OutcomeOK means the file was fully parsed and consolidated.
	OutcomeOK OutcomeKind = iota
	// OutcomeSkipped means the file contributed nothing, with a logged reason
	// (no data section, zero canonical rows).
	OutcomeSkipped
	// OutcomeFailed means the file was fatal for itself: a read error or
	// no extractable year. The batch continues.
	OutcomeFailed
)

// Outcome is the per-file result of a consolidation pass. Files report what
// happened to them; the caller folds outcomes into totals.
type Outcome struct {
	File         string
	Kind         OutcomeKind
	Observations int
	Reason       string
	Err          error
}

// Summary is the fold of a run's outcomes.
type Summary struct {
	Processed    int
	Skipped      int
	Failed       int
	Observations int
	Merged       int
	Exported     int
}

// Add folds one outcome into the summary.
func (s *Summary) Add(o Outcome) {
	switch o.Kind {
	case OutcomeOK:
		s.Processed++
		s.Observations += o.Observations
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeFailed:
		s.Failed++
	}
}

func (s Summary) String() string {
	return fmt.Sprintf("processed=%d skipped=%d failed=%d observations=%d merged=%d exported=%d",
		s.Processed, s.Skipped, s.Failed, s.Observations, s.Merged, s.Exported)
}
