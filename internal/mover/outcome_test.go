package mover

import (
	"errors"
	"testing"
)

func TestOutcomeConstructors(t *testing.T) {
	if out := Moved(); out.Status != StatusMoved || out.Reason != "" || out.Err != nil {
		t.Errorf("Moved() = %+v", out)
	}

	if out := Skipped(ReasonNotEligible); out.Status != StatusSkipped || out.Reason != ReasonNotEligible {
		t.Errorf("Skipped() = %+v", out)
	}

	err := errors.New("copy failed")
	if out := Failed(err); out.Status != StatusFailed || !errors.Is(out.Err, err) {
		t.Errorf("Failed() = %+v", out)
	}
}
