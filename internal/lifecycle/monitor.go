package lifecycle

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/plano/internal/domain"
)

// DefaultScanInterval is how often a started monitor rescans its entities.
const DefaultScanInterval = 5 * time.Minute

// Accessor returns the current state of every entity of one kind.
type Accessor func(ctx context.Context) ([]*domain.Tracked, error)

// Transitioner applies status transitions. *Executor implements it.
type Transitioner interface {
	Apply(ctx context.Context, kind domain.Kind, id uuid.UUID, req TransitionRequest) (*Result, error)
}

// ScanReport summarizes one monitor pass.
type ScanReport struct {
	Kind     domain.Kind `json:"kind"`
	Checked  int         `json:"checked"`
	Eligible int         `json:"eligible"`
	Delayed  int         `json:"delayed"`
	Rejected int         `json:"rejected"`
	Failed   int         `json:"failed"`
}

// Monitor periodically asks for overdue entities of one kind to be marked
// delayed. Each kind gets its own Monitor so a failure in one never stops
// the other.
type Monitor struct {
	kind     domain.Kind
	accessor Accessor
	exec     Transitioner
	clock    domain.Clock
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

// WithInterval sets the rescan period. Non-positive values are ignored.
func WithInterval(d time.Duration) MonitorOption {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithMonitorClock overrides the wall clock used to decide eligibility.
func WithMonitorClock(c domain.Clock) MonitorOption {
	return func(m *Monitor) {
		m.clock = c
	}
}

// NewMonitor creates a stopped monitor for kind.
func NewMonitor(kind domain.Kind, accessor Accessor, exec Transitioner, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		kind:     kind,
		accessor: accessor,
		exec:     exec,
		clock:    domain.SystemClock{},
		interval: DefaultScanInterval,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Kind returns the entity kind this monitor watches.
func (m *Monitor) Kind() domain.Kind { return m.kind }

// Start runs one scan immediately and then one every interval until Stop is
// called or ctx is cancelled. Starting a running monitor restarts it.
func (m *Monitor) Start(ctx context.Context) {
	m.Stop()

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	m.mu.Lock()
	m.cancel = cancel
	m.done = done
	m.mu.Unlock()

	go m.run(loopCtx, done)
}

// Stop halts the loop and waits for an in-flight scan to return. Stopping an
// idle monitor is a no-op.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the loop is active.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancel != nil
}

func (m *Monitor) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	log.Info().Str("kind", string(m.kind)).Dur("interval", m.interval).Msg("deadline monitor started")

	m.Scan(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("kind", string(m.kind)).Msg("deadline monitor stopped")
			return
		case <-ticker.C:
			m.Scan(ctx)
		}
	}
}

// Scan makes one pass over every entity of the monitored kind. Errors are
// logged per entity and never abort the pass.
func (m *Monitor) Scan(ctx context.Context) ScanReport {
	report := ScanReport{Kind: m.kind}

	entities, err := m.accessor(ctx)
	if err != nil {
		log.Error().Err(err).Str("kind", string(m.kind)).Msg("deadline monitor: list entities")
		report.Failed++
		return report
	}

	now := m.clock.Now()
	for _, ent := range entities {
		if ctx.Err() != nil {
			break
		}
		report.Checked++

		// Every overdue entity not already completed or delayed is offered to
		// the executor; the transition graph decides which ones move.
		if !ent.Overdue(now) || ent.Status == domain.StatusCompleted || ent.Status == domain.StatusDelayed {
			continue
		}
		report.Eligible++

		_, applyErr := m.exec.Apply(ctx, m.kind, ent.ID, TransitionRequest{
			To:        domain.StatusDelayed,
			Automatic: true,
		})

		var rejection *RejectionError
		switch {
		case applyErr == nil:
			report.Delayed++
		case errors.As(applyErr, &rejection), errors.Is(applyErr, domain.ErrConflict):
			// Someone else moved the entity first; the next pass re-reads it.
			report.Rejected++
			log.Debug().Err(applyErr).Str("kind", string(m.kind)).Str("entity_id", ent.ID.String()).
				Msg("deadline monitor: transition skipped")
		default:
			report.Failed++
			log.Error().Err(applyErr).Str("kind", string(m.kind)).Str("entity_id", ent.ID.String()).
				Msg("deadline monitor: apply delay")
		}
	}

	if report.Delayed > 0 || report.Failed > 0 {
		log.Info().
			Str("kind", string(m.kind)).
			Int("checked", report.Checked).
			Int("delayed", report.Delayed).
			Int("rejected", report.Rejected).
			Int("failed", report.Failed).
			Msg("deadline monitor scan")
	}

	return report
}

// Monitors groups the per-kind monitors so they can be driven together.
type Monitors []*Monitor

// Start starts every monitor.
func (ms Monitors) Start(ctx context.Context) {
	for _, m := range ms {
		m.Start(ctx)
	}
}

// Stop stops every monitor.
func (ms Monitors) Stop() {
	for _, m := range ms {
		m.Stop()
	}
}

// Scan runs one pass of every monitor, optionally restricted to kind.
func (ms Monitors) Scan(ctx context.Context, kind domain.Kind) []ScanReport {
	reports := make([]ScanReport, 0, len(ms))
	for _, m := range ms {
		if kind != "" && m.kind != kind {
			continue
		}
		reports = append(reports, m.Scan(ctx))
	}
	return reports
}
