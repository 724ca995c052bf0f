package thunks

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/foodbridge/foodbridge/internal/foodbridge"
	"github.com/foodbridge/foodbridge/internal/state"
)

// Gateway performs one API round-trip. *foodbridge.Client satisfies it.
type Gateway interface {
	Do(ctx context.Context, method, path string, body any) (*foodbridge.Response, error)
}

// Dispatcher applies actions. *state.Store satisfies it.
type Dispatcher interface {
	Dispatch(state.Action)
}

// Observer counts thunk outcomes.
type Observer interface {
	ObserveThunk(kind, op, outcome string)
}

// Validator is implemented by every creatable payload.
type Validator interface {
	Validate() foodbridge.FieldErrors
}

// Outcome labels reported to the Observer.
const (
	OutcomeOK          = "ok"
	OutcomeAbsent      = "absent"
	OutcomeInvalid     = "invalid"
	OutcomeRejected    = "rejected"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
)

// Option customises the shared thunk environment.
type Option func(*env)

// WithObserver reports every thunk outcome to o.
func WithObserver(o Observer) Option {
	return func(e *env) { e.obs = o }
}

// WithLogger sets the logger used for failures.
func WithLogger(l zerolog.Logger) Option {
	return func(e *env) { e.log = l }
}

type env struct {
	gw  Gateway
	bus Dispatcher
	obs Observer
	log zerolog.Logger
}

func newEnv(gw Gateway, bus Dispatcher, opts []Option) *env {
	e := &env{gw: gw, bus: bus, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *env) observe(kind, op, outcome string) {
	if e.obs != nil {
		e.obs.ObserveThunk(kind, op, outcome)
	}
}

// track raises the kind's loading counter and returns the matching release.
// Callers defer the release so every exit path lowers it.
func track[T state.Entity](e *env, k state.Kind[T]) func() {
	e.bus.Dispatch(state.SetLoading(k, true))
	return func() { e.bus.Dispatch(state.SetLoading(k, false)) }
}

func validate(e *env, kind, op string, in any) error {
	v, ok := in.(Validator)
	if !ok {
		return nil
	}
	if errs := v.Validate(); len(errs) > 0 {
		e.observe(kind, op, OutcomeInvalid)
		return &ValidationError{Fields: errs}
	}
	return nil
}

// fail translates a gateway error for kind k. Rejections leave the store
// alone; server failures record the error on k together with onUnavailable.
func fail[T state.Entity](e *env, k state.Kind[T], op string, err error, onUnavailable ...state.Action) error {
	var se *foodbridge.StatusError
	if errors.As(err, &se) && !se.ServerSide() {
		e.observe(k.Name(), op, OutcomeRejected)
		e.log.Debug().Str("kind", k.Name()).Str("op", op).Int("status", se.StatusCode).Msg("request rejected")
		return &RejectedError{
			StatusCode: se.StatusCode,
			Fields:     se.Problem.Fields,
			Messages:   se.Problem.Messages,
		}
	}
	if errors.Is(err, foodbridge.ErrUnavailable) {
		e.observe(k.Name(), op, OutcomeUnavailable)
		e.log.Warn().Str("kind", k.Name()).Str("op", op).Err(err).Msg("server unavailable")
		e.bus.Dispatch(state.Batch(append([]state.Action{state.SetError(k, err)}, onUnavailable...)...))
		return fmt.Errorf("%w: %w", ErrServerUnavailable, err)
	}
	e.observe(k.Name(), op, OutcomeError)
	return fmt.Errorf("%s %s: %w", k.Name(), op, err)
}

// malformed reports a 2xx body that could not be decoded.
func malformed(e *env, kind, op string, err error) error {
	e.observe(kind, op, OutcomeError)
	e.log.Error().Str("kind", kind).Str("op", op).Err(err).Msg("malformed response")
	return fmt.Errorf("%s %s: %w", kind, op, err)
}

func values[T state.Entity](recs []state.Record[T]) []T {
	out := make([]T, len(recs))
	for i, r := range recs {
		out[i] = r.Value()
	}
	return out
}

// Thunks groups the sync operations for every entity kind.
type Thunks struct {
	Centers      *Resource[foodbridge.DistributionCenter]
	Listings     *Resource[foodbridge.FoodListing]
	Providers    *Providers
	TaxRecords   *TaxRecords
	Alerts       *Alerts
	Users        *Users
	Reservations *Resource[foodbridge.Reservation]
	Session      *Session
}

// New wires every thunk group to gw and bus.
func New(gw Gateway, bus Dispatcher, opts ...Option) *Thunks {
	e := newEnv(gw, bus, opts)
	listings := newResource(e, state.ListingKind, "/food-listings", "listings", "listing")
	return &Thunks{
		Centers:      newResource(e, state.CenterKind, "/distribution-centers", "centers", "center"),
		Listings:     listings,
		Providers:    &Providers{newResource(e, state.ProviderKind, "/providers", "providers", "provider"), listings},
		TaxRecords:   &TaxRecords{newResource(e, state.TaxRecordKind, "/tax-records", "records", "record")},
		Alerts:       &Alerts{newResource(e, state.AllergenAlertKind, "/allergen-alerts", "alerts", "alert")},
		Users:        &Users{newResource(e, state.UserKind, "/users", "users", "user")},
		Reservations: newResource(e, state.ReservationKind, "/reservations", "reservations", "reservation"),
		Session:      &Session{env: e},
	}
}
