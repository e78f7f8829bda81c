package domain

import "time"

// Validator messages.
const (
	MsgBeforeStart        = "cannot change status before the planned start date"
	MsgNotPermitted       = "transition not permitted"
	MsgCompletedLate      = "completed after deadline"
	MsgDelayedTooEarly    = "can only mark delayed after the end date has passed"
	MsgNoRevert           = "cannot revert to not-started once started"
	MsgAutomaticallyDelay = "marked as delayed automatically"
)

// Validation is the outcome of checking a proposed status change. A valid
// result may still carry an informational message.
type Validation struct {
	Valid     bool   `json:"valid"`
	Message   string `json:"message,omitempty"`
	Automatic bool   `json:"automatic,omitempty"`
}

// Validate decides whether current -> proposed is legal at instant now for
// an entity planned to run from start to end. Rules are checked in order and
// the first match wins.
func (r *Rules) Validate(current, proposed Status, start, end, now time.Time) Validation {
	if now.Before(start) && proposed != r.hold {
		return Validation{Message: MsgBeforeStart}
	}

	if !r.Allows(current, proposed) {
		return Validation{Message: MsgNotPermitted}
	}

	switch proposed {
	case StatusCompleted:
		if now.After(end) {
			return Validation{Valid: true, Message: MsgCompletedLate}
		}
	case StatusDelayed:
		if !now.After(end) {
			return Validation{Message: MsgDelayedTooEarly}
		}
	case StatusNotStarted:
		if current != r.recoverable {
			return Validation{Message: MsgNoRevert}
		}
	}

	return Validation{Valid: true}
}

// InferAutomaticDelay reports whether an entity in progress has run past
// its end date and should be moved to delayed by the system, whatever the
// user is about to do with it.
func InferAutomaticDelay(current Status, end, now time.Time) (Validation, bool) {
	if current == StatusInProgress && now.After(end) {
		return Validation{Valid: true, Message: MsgAutomaticallyDelay, Automatic: true}, true
	}
	return Validation{}, false
}
