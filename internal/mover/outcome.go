package mover

// Status classifies the result of one object's archival attempt.
type Status int

const (
	StatusMoved Status = iota
	StatusSkipped
	StatusFailed
)

// Skip reasons.
const (
	ReasonExtension   = "extension mismatch"
	ReasonUndated     = "no parseable date"
	ReasonNotEligible = "not old enough"
)

// Outcome is the result of attempting one object's archival. Reason is
// set for skipped outcomes, Err for failed ones.
type Outcome struct {
	Status Status
	Reason string
	Err    error
}

// Moved returns a successful outcome.
func Moved() Outcome {
	return Outcome{Status: StatusMoved}
}

// Skipped returns a skip outcome with its reason.
func Skipped(reason string) Outcome {
	return Outcome{Status: StatusSkipped, Reason: reason}
}

// Failed returns a failure outcome carrying the error detail.
func Failed(err error) Outcome {
	return Outcome{Status: StatusFailed, Err: err}
}
