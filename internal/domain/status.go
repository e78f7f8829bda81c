package domain

import (
	"fmt"
	"slices"
)

// Kind identifies an entity type whose status is managed by the lifecycle engine.
type Kind string

const (
	KindTask       Kind = "task"
	KindActionPlan Kind = "action_plan"
)

// Kinds lists every status-managed entity kind.
func Kinds() []Kind {
	return []Kind{KindTask, KindActionPlan}
}

// Label is the display name of the kind.
func (k Kind) Label() string {
	switch k {
	case KindTask:
		return "Task"
	case KindActionPlan:
		return "Action Plan"
	default:
		return string(k)
	}
}

// ParseKind validates a kind coming from outside the process.
func ParseKind(raw string) (Kind, error) {
	switch k := Kind(raw); k {
	case KindTask, KindActionPlan:
		return k, nil
	default:
		return "", fmt.Errorf("parse kind %q: %w", raw, ErrUnknownKind)
	}
}

type Status string

const (
	StatusNotStarted  Status = "not_started"
	StatusInProgress  Status = "in_progress"
	StatusInReview    Status = "in_review"
	StatusBlocked     Status = "blocked"
	StatusCompleted   Status = "completed"
	StatusDelayed     Status = "delayed"
	StatusCancelled   Status = "cancelled"
	StatusRescheduled Status = "rescheduled" // labelled for action plans, never reachable
)

// Color is the pair of CSS classes a status badge is drawn with.
type Color struct {
	Background string `json:"bg"`
	Text       string `json:"text"`
}

// Rules is the status table of one entity kind: its transition graph,
// display labels and colors, plus the two statuses that get special
// treatment by the validator.
type Rules struct {
	kind        Kind
	order       []Status
	transitions map[Status][]Status
	labels      map[Status]string
	colors      map[Status]Color

	// hold may be entered before the planned start date.
	hold Status
	// recoverable is the only status allowed to go back to not_started.
	recoverable Status
}

const (
	labelNotStarted  = "Not Started"
	labelInProgress  = "In Progress"
	labelInReview    = "In Review"
	labelBlocked     = "Blocked"
	labelCompleted   = "Completed"
	labelDelayed     = "Delayed"
	labelCancelled   = "Cancelled"
	labelRescheduled = "Rescheduled"
)

//nolint:gochecknoglobals // badge palette
var (
	colorGray   = Color{Background: "bg-gray-100", Text: "text-gray-800"}
	colorBlue   = Color{Background: "bg-blue-100", Text: "text-blue-800"}
	colorYellow = Color{Background: "bg-yellow-100", Text: "text-yellow-800"}
	colorRed    = Color{Background: "bg-red-100", Text: "text-red-800"}
	colorGreen  = Color{Background: "bg-green-100", Text: "text-green-800"}
	colorOrange = Color{Background: "bg-orange-100", Text: "text-orange-800"}
)

// TaskRules is the task status table.
//
//nolint:gochecknoglobals // static rule table
var TaskRules = &Rules{
	kind: KindTask,
	order: []Status{
		StatusNotStarted, StatusInProgress, StatusInReview,
		StatusBlocked, StatusCompleted, StatusDelayed,
	},
	transitions: map[Status][]Status{
		StatusNotStarted: {StatusInProgress, StatusBlocked},
		StatusInProgress: {StatusInReview, StatusBlocked, StatusCompleted, StatusDelayed},
		StatusInReview:   {StatusCompleted, StatusInProgress, StatusBlocked},
		StatusBlocked:    {StatusInProgress, StatusNotStarted},
		StatusCompleted:  {},
		StatusDelayed:    {StatusCompleted, StatusInProgress, StatusBlocked},
	},
	labels: map[Status]string{
		StatusNotStarted: labelNotStarted,
		StatusInProgress: labelInProgress,
		StatusInReview:   labelInReview,
		StatusBlocked:    labelBlocked,
		StatusCompleted:  labelCompleted,
		StatusDelayed:    labelDelayed,
	},
	colors: map[Status]Color{
		StatusNotStarted: colorGray,
		StatusInProgress: colorBlue,
		StatusInReview:   colorYellow,
		StatusBlocked:    colorRed,
		StatusCompleted:  colorGreen,
		StatusDelayed:    colorOrange,
	},
	hold:        StatusBlocked,
	recoverable: StatusBlocked,
}

// ActionPlanRules is the action plan status table. Rescheduled carries a
// label and a color but is not part of the graph.
//
//nolint:gochecknoglobals // static rule table
var ActionPlanRules = &Rules{
	kind: KindActionPlan,
	order: []Status{
		StatusNotStarted, StatusInProgress, StatusCompleted,
		StatusDelayed, StatusCancelled,
	},
	transitions: map[Status][]Status{
		StatusNotStarted: {StatusInProgress, StatusCancelled},
		StatusInProgress: {StatusCompleted, StatusDelayed, StatusCancelled},
		StatusCompleted:  {StatusInProgress},
		StatusDelayed:    {StatusCompleted, StatusCancelled},
		StatusCancelled:  {StatusNotStarted},
	},
	labels: map[Status]string{
		StatusNotStarted:  labelNotStarted,
		StatusInProgress:  labelInProgress,
		StatusCompleted:   labelCompleted,
		StatusDelayed:     labelDelayed,
		StatusCancelled:   labelCancelled,
		StatusRescheduled: labelRescheduled,
	},
	colors: map[Status]Color{
		StatusNotStarted:  colorGray,
		StatusInProgress:  colorBlue,
		StatusCompleted:   colorGreen,
		StatusDelayed:     colorOrange,
		StatusCancelled:   colorRed,
		StatusRescheduled: colorYellow,
	},
	hold:        StatusCancelled,
	recoverable: StatusCancelled,
}

// RulesFor returns the status table of a kind.
func RulesFor(kind Kind) (*Rules, bool) {
	switch kind {
	case KindTask:
		return TaskRules, true
	case KindActionPlan:
		return ActionPlanRules, true
	default:
		return nil, false
	}
}

func (r *Rules) Kind() Kind { return r.kind }

// Statuses returns the kind's status enumeration in display order.
func (r *Rules) Statuses() []Status {
	return slices.Clone(r.order)
}

// Known reports whether s belongs to the kind's enumeration.
func (r *Rules) Known(s Status) bool {
	_, ok := r.transitions[s]
	return ok
}

// ParseStatus rejects values outside the kind's enumeration.
func (r *Rules) ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !r.Known(s) {
		return "", fmt.Errorf("parse %s status %q: %w", r.kind, raw, ErrUnknownStatus)
	}
	return s, nil
}

// AvailableStatuses returns the statuses reachable from current in one step.
// Terminal and unknown statuses yield an empty slice.
func (r *Rules) AvailableStatuses(current Status) []Status {
	next, ok := r.transitions[current]
	if !ok {
		return []Status{}
	}
	return slices.Clone(next)
}

// Allows reports whether from -> to is an edge of the graph.
func (r *Rules) Allows(from, to Status) bool {
	return slices.Contains(r.transitions[from], to)
}

// IsTerminal reports whether s has no outgoing transitions.
func (r *Rules) IsTerminal(s Status) bool {
	next, ok := r.transitions[s]
	return ok && len(next) == 0
}

// Label returns the display label, or the raw code for unknown statuses.
func (r *Rules) Label(s Status) string {
	if l, ok := r.labels[s]; ok {
		return l
	}
	return string(s)
}

// Color returns the badge colors, gray for unknown statuses.
func (r *Rules) Color(s Status) Color {
	if c, ok := r.colors[s]; ok {
		return c
	}
	return colorGray
}

// Labels returns a copy of the label table.
func (r *Rules) Labels() map[Status]string {
	out := make(map[Status]string, len(r.labels))
	for k, v := range r.labels {
		out[k] = v
	}
	return out
}

// Colors returns a copy of the color table.
func (r *Rules) Colors() map[Status]Color {
	out := make(map[Status]Color, len(r.colors))
	for k, v := range r.colors {
		out[k] = v
	}
	return out
}

// Graph returns a copy of the transition graph.
func (r *Rules) Graph() map[Status][]Status {
	out := make(map[Status][]Status, len(r.transitions))
	for k, v := range r.transitions {
		out[k] = slices.Clone(v)
	}
	return out
}
