package matcher

// Log accumulates match outcomes for one batch run. It is owned by the
// orchestrator and handed to the matcher by reference; it is not safe for
// concurrent use.
type Log struct {
	outcomes []Outcome
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{}
}

// Append records o.
func (l *Log) Append(o Outcome) {
	l.outcomes = append(l.outcomes, o)
}

// Outcomes returns the recorded outcomes in insertion order.
func (l *Log) Outcomes() []Outcome {
	out := make([]Outcome, len(l.outcomes))
	copy(out, l.outcomes)
	return out
}

// Len returns the number of recorded outcomes.
func (l *Log) Len() int {
	return len(l.outcomes)
}

// Reset drops all outcomes.
func (l *Log) Reset() {
	l.outcomes = nil
}
