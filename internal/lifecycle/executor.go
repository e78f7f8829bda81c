package lifecycle

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/plano/internal/domain"
)

// TransitionRequest asks for one entity to move to To.
type TransitionRequest struct {
	To            domain.Status
	Justification string
	Actor         *domain.Actor
	Automatic     bool
}

// RejectionError is returned when the validator refuses a transition.
// Nothing has been written when it is returned.
type RejectionError struct {
	Kind    domain.Kind
	From    domain.Status
	To      domain.Status
	Message string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s %s -> %s rejected: %s", e.Kind, e.From, e.To, e.Message)
}

func (e *RejectionError) Unwrap() error { return domain.ErrInvalidTransition }

// Result describes a committed transition. Note carries the validator's
// informational message, such as a completion after the deadline. Overdue
// is set when an interactive request found the entity in progress past its
// end date.
type Result struct {
	Entity  *domain.Tracked
	Entry   domain.StatusLogEntry
	Note    string
	Overdue bool
}

// Executor is the only writer of entity status and status logs.
type Executor struct {
	repos     map[domain.Kind]domain.TrackedRepository
	store     StateStore
	publisher Publisher
	clock     domain.Clock
}

// ExecutorOption configures optional Executor collaborators.
type ExecutorOption func(*Executor)

// WithStateStore sets the store refreshed after each committed transition.
func WithStateStore(s StateStore) ExecutorOption {
	return func(e *Executor) {
		e.store = s
	}
}

// WithPublisher sets the publisher notified after each committed transition.
func WithPublisher(p Publisher) ExecutorOption {
	return func(e *Executor) {
		e.publisher = p
	}
}

// WithClock overrides the wall clock.
func WithClock(c domain.Clock) ExecutorOption {
	return func(e *Executor) {
		e.clock = c
	}
}

// NewExecutor creates an Executor over one repository per kind.
func NewExecutor(repos map[domain.Kind]domain.TrackedRepository, opts ...ExecutorOption) *Executor {
	e := &Executor{
		repos:     repos,
		store:     nopStateStore{},
		publisher: nopPublisher{},
		clock:     domain.SystemClock{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Executor) resolve(kind domain.Kind) (*domain.Rules, domain.TrackedRepository, error) {
	rules, ok := domain.RulesFor(kind)
	if !ok {
		return nil, nil, fmt.Errorf("kind %q: %w", kind, domain.ErrUnknownKind)
	}
	repo, ok := e.repos[kind]
	if !ok {
		return nil, nil, fmt.Errorf("no repository for kind %q: %w", kind, domain.ErrUnknownKind)
	}
	return rules, repo, nil
}

// Check runs the validator against the stored entity without writing
// anything. An in-progress entity past its end date is flagged automatic.
func (e *Executor) Check(ctx context.Context, kind domain.Kind, id uuid.UUID, to domain.Status) (domain.Validation, error) {
	rules, repo, err := e.resolve(kind)
	if err != nil {
		return domain.Validation{}, fmt.Errorf("executor.Check: %w", err)
	}

	current, err := repo.GetTracked(ctx, id)
	if err != nil {
		return domain.Validation{}, fmt.Errorf("executor.Check: %w", err)
	}

	now := e.clock.Now()
	v := rules.Validate(current.Status, to, current.StartDate, current.EndDate, now)
	if inferred, overdue := domain.InferAutomaticDelay(current.Status, current.EndDate, now); overdue {
		v.Automatic = true
		if v.Message == "" {
			v.Message = inferred.Message
		}
	}

	return v, nil
}

// Apply moves entity id of the given kind to req.To. The status is always
// re-read from the repository and validated before anything is written.
//
// An interactive request on an in-progress entity already past its end date
// is applied as asked and the result is flagged Overdue. Writing the delay
// itself is the monitor's job.
func (e *Executor) Apply(ctx context.Context, kind domain.Kind, id uuid.UUID, req TransitionRequest) (*Result, error) {
	rules, repo, err := e.resolve(kind)
	if err != nil {
		return nil, fmt.Errorf("executor.Apply: %w", err)
	}

	if !rules.Known(req.To) {
		return nil, fmt.Errorf("executor.Apply: %s status %q: %w", kind, req.To, domain.ErrUnknownStatus)
	}
	if !req.Automatic && strings.TrimSpace(req.Justification) == "" {
		return nil, fmt.Errorf("executor.Apply: %w", domain.ErrJustificationRequired)
	}

	current, err := repo.GetTracked(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("executor.Apply: %w", err)
	}

	res, err := e.transition(ctx, rules, repo, current, req)
	if err != nil {
		return nil, fmt.Errorf("executor.Apply: %w", err)
	}

	if !req.Automatic {
		if inferred, overdue := domain.InferAutomaticDelay(current.Status, current.EndDate, e.clock.Now()); overdue {
			res.Overdue = true
			if res.Note == "" && req.To != domain.StatusDelayed {
				res.Note = inferred.Message
			}
		}
	}

	return res, nil
}

func (e *Executor) transition(ctx context.Context, rules *domain.Rules, repo domain.TrackedRepository, current *domain.Tracked, req TransitionRequest) (*Result, error) {
	now := e.clock.Now()

	v := rules.Validate(current.Status, req.To, current.StartDate, current.EndDate, now)
	if !v.Valid {
		return nil, &RejectionError{Kind: rules.Kind(), From: current.Status, To: req.To, Message: v.Message}
	}

	entry := domain.NewStatusLogEntry(e.clock, domain.LogParams{
		EntityID:      current.ID,
		From:          current.Status,
		To:            req.To,
		Justification: req.Justification,
		Automatic:     req.Automatic,
		Actor:         req.Actor,
	})
	update := domain.StatusUpdate{
		From:      current.Status,
		To:        req.To,
		Entry:     entry,
		UpdatedAt: now,
	}

	if err := repo.ApplyStatus(ctx, current.ID, update); err != nil {
		return nil, err
	}

	next := current.WithStatus(update)
	e.store.Put(next)

	ev := StatusChanged{
		Type:       EventStatusChanged,
		Timestamp:  now,
		Kind:       rules.Kind(),
		EntityID:   next.ID,
		EntityName: next.Name,
		From:       update.From,
		To:         update.To,
		Automatic:  req.Automatic,
	}
	if err := e.publisher.PublishStatusChanged(ctx, ev); err != nil {
		// The write is committed; a lost notification only delays dashboards.
		log.Warn().Err(err).
			Str("kind", string(ev.Kind)).
			Str("entity_id", ev.EntityID.String()).
			Msg("publish status change")
	}

	log.Info().
		Str("kind", string(ev.Kind)).
		Str("entity_id", ev.EntityID.String()).
		Str("from", string(ev.From)).
		Str("to", string(ev.To)).
		Bool("automatic", ev.Automatic).
		Msg("status changed")

	return &Result{Entity: next, Entry: entry, Note: v.Message}, nil
}
