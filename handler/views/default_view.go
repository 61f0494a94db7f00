package views

import (
	"safeprice/core"
)

// Event degradation event view
type Event struct {
	Index int `json:"index"`
	*core.DegradationEvent
	Reason string `json:"reason,omitempty"`
}

// Outcome record outcome view
type Outcome struct {
	core.RecordOutcome
	Error string `json:"error,omitempty"`
}

// OutcomeView record outcome with the swallowed failure as text
func OutcomeView(out core.RecordOutcome) *Outcome {
	v := &Outcome{RecordOutcome: out}
	if out.Err != nil {
		v.Error = out.Err.Error()
	}

	return v
}
