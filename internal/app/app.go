package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/foodbridge/foodbridge/internal/config"
	"github.com/foodbridge/foodbridge/internal/foodbridge"
	"github.com/foodbridge/foodbridge/internal/logging"
	"github.com/foodbridge/foodbridge/internal/metrics"
	"github.com/foodbridge/foodbridge/internal/prefs"
	"github.com/foodbridge/foodbridge/internal/state"
	"github.com/foodbridge/foodbridge/internal/thunks"
	"github.com/foodbridge/foodbridge/internal/ui"
)

// Options configure the client application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/foodbridge/prefs.toml
	PollEvery  int    // seconds; zero uses the configured poll_interval
}

const bootstrapTimeout = 5 * time.Second

// Runtime is everything Run wires together before the UI starts.
type Runtime struct {
	Config  config.Config
	Log     zerolog.Logger
	Metrics *metrics.Collector
	Client  *foodbridge.Client
	Store   *state.Store
	Thunks  *thunks.Thunks
	Poller  *Poller
}

// Build wires the gateway, store, thunks and poller from cfg.
func Build(cfg config.Config, log zerolog.Logger) (*Runtime, error) {
	collector := metrics.New()
	breaker := cfg.Breaker.NewCircuitBreaker("api", logging.Package(log, "breaker"), collector.SetBreakerState)

	client, err := foodbridge.NewClient(cfg.APIBase,
		foodbridge.WithTimeout(cfg.RequestTimeout),
		foodbridge.WithObserver(collector),
		foodbridge.WithLogger(logging.Package(log, "foodbridge")),
		foodbridge.WithBreaker(breaker),
	)
	if err != nil {
		return nil, fmt.Errorf("init api client: %w", err)
	}

	storeLog := logging.Package(log, "state")
	store := state.NewStore(state.State{}, &storeLog)
	t := thunks.New(client, store,
		thunks.WithObserver(collector),
		thunks.WithLogger(logging.Package(log, "thunks")),
	)
	return &Runtime{
		Config:  cfg,
		Log:     log,
		Metrics: collector,
		Client:  client,
		Store:   store,
		Thunks:  t,
		Poller:  NewPoller(t, store, cfg.PollInterval, logging.Package(log, "poller")),
	}, nil
}

// Bootstrap restores the CSRF token and the server session. Neither failure
// is fatal: the token is fetched again before the first mutation and an
// unknown session simply shows the login form.
func (r *Runtime) Bootstrap(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, bootstrapTimeout)
	defer cancel()

	log := r.Log.With().Str(logging.FUNC, "Bootstrap").Logger()
	if _, err := r.Client.RestoreCSRF(ctx); err != nil {
		log.Warn().Str(logging.EVENT, "csrf_restore").Err(err).Msg("csrf restore failed")
	}
	user, ok, err := r.Thunks.Session.Restore(ctx)
	switch {
	case err != nil:
		log.Warn().Str(logging.EVENT, "session_restore").Err(err).Msg("session restore failed")
	case ok:
		log.Info().Str(logging.EVENT, "session_restore").Int64("user_id", user.ID).
			Str("role", string(user.UserType)).Msg("session restored")
	default:
		log.Info().Str(logging.EVENT, "session_restore").Msg("no session")
	}
}

// Run boots the client TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.PollEvery > 0 {
		cfg.PollInterval = time.Duration(opts.PollEvery) * time.Second
	}

	root, closer, err := logging.New(cfg)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = closer.Close() }()
	log := logging.Package(root, "app")

	rt, err := Build(cfg, root)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.MetricsAddr != "" {
		go func() {
			if err := rt.Metrics.Serve(ctx, cfg.MetricsAddr, logging.Package(root, "metrics")); err != nil {
				log.Error().Str(logging.EVENT, "metrics_listen").Err(err).Msg("metrics listener stopped")
			}
		}()
	}

	rt.Bootstrap(ctx)
	rt.Poller.Start(ctx)

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		log.Warn().Str(logging.EVENT, "prefs_load").Err(err).Msg("prefs load failed, using defaults")
	}
	log.Info().Str(logging.EVENT, "start").Str("api_base", cfg.APIBase).
		Dur("poll_interval", cfg.PollInterval).Msg("client started")

	err = ui.Run(ui.Options{
		Context:   ctx,
		Store:     rt.Store,
		Thunks:    rt.Thunks,
		Refresher: rt.Poller,
		Config:    cfg,
		Prefs:     userPrefs,
		PrefsPath: opts.PrefsPath,
		Log:       logging.Package(root, "ui"),
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
