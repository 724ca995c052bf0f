package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/foodbridge/foodbridge/internal/foodbridge"
	"github.com/foodbridge/foodbridge/internal/state"
	"github.com/foodbridge/foodbridge/internal/thunks"
)

const (
	defaultPollInterval = 15 * time.Second
	maxBackoff          = 30 * time.Second
)

// calculateBackoff returns the wait before the next poll after the given
// number of consecutive failures: base doubled per failure, capped at
// maxBackoff. A base above the cap is used unchanged.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 || base >= maxBackoff {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}

// Poller refreshes the kinds the signed-in role looks at.
type Poller struct {
	thunks   *thunks.Thunks
	store    *state.Store
	interval time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

// NewPoller builds a poller. A non-positive interval uses the default.
func NewPoller(t *thunks.Thunks, store *state.Store, interval time.Duration, log zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Poller{thunks: t, store: store, interval: interval, log: log, now: time.Now}
}

// Start launches the poll loop in a goroutine and returns immediately. The
// first refresh runs at once.
func (p *Poller) Start(ctx context.Context) {
	go p.run(ctx)
}

func (p *Poller) run(ctx context.Context) {
	for {
		_ = p.Refresh(ctx)
		wait := calculateBackoff(p.store.Snapshot().Sync.ConsecutiveFailures, p.interval)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// Refresh runs one round and records it with state.RecordSync. Only server
// unavailability counts as a failed round; a rejection means the server is up.
func (p *Poller) Refresh(ctx context.Context) error {
	var failed error
	for _, job := range p.jobs(p.store.Snapshot().Session) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := job.run(ctx)
		if err == nil {
			continue
		}
		if errors.Is(err, thunks.ErrServerUnavailable) {
			failed = err
			p.log.Warn().Str("event", "poll").Str("job", job.name).Err(err).Msg("refresh failed")
			break
		}
		p.log.Debug().Str("event", "poll").Str("job", job.name).Err(err).Msg("refresh skipped")
	}
	p.store.Dispatch(state.RecordSync(p.now(), failed))
	return failed
}

type pollJob struct {
	name string
	run  func(context.Context) error
}

func (p *Poller) jobs(sess state.Session) []pollJob {
	t := p.thunks
	jobs := []pollJob{
		{"centers", func(ctx context.Context) error { _, err := t.Centers.List(ctx); return err }},
		{"listings", func(ctx context.Context) error { _, err := t.Listings.List(ctx); return err }},
	}
	if !sess.IsAuthenticated() {
		return jobs
	}
	switch sess.Role() {
	case foodbridge.RoleAdmin:
		jobs = append(jobs,
			pollJob{"providers", func(ctx context.Context) error { _, err := t.Providers.List(ctx); return err }},
			pollJob{"users", func(ctx context.Context) error { _, err := t.Users.List(ctx); return err }},
		)
	case foodbridge.RoleProvider:
		jobs = append(jobs,
			pollJob{"provider", func(ctx context.Context) error { return p.refreshOwnProvider(ctx, sess.UserID()) }},
			pollJob{"tax_records", func(ctx context.Context) error { _, err := t.TaxRecords.List(ctx); return err }},
		)
	case foodbridge.RoleRecipient:
		jobs = append(jobs,
			pollJob{"reservations", func(ctx context.Context) error { _, err := t.Reservations.List(ctx); return err }},
			pollJob{"alerts", func(ctx context.Context) error { _, err := t.Alerts.List(ctx); return err }},
		)
	}
	return jobs
}

func (p *Poller) refreshOwnProvider(ctx context.Context, userID int64) error {
	provider, ok := state.SessionProvider(p.store.Snapshot())
	if !ok {
		var err error
		provider, ok, err = p.thunks.Providers.GetByUserID(ctx, userID)
		if err != nil || !ok {
			return err
		}
	}
	_, err := p.thunks.Providers.Listings(ctx, provider.ID)
	return err
}
