package thunks

import (
	"context"
	"errors"
	"net/http"

	"github.com/foodbridge/foodbridge/internal/foodbridge"
	"github.com/foodbridge/foodbridge/internal/state"
)

// Session holds the authentication thunks. Failures are recorded against the
// users kind, which also carries the loading counter.
type Session struct {
	env *env
}

// Restore asks the server who the cookie belongs to. Any 4xx means nobody is
// signed in: the session becomes anonymous and ok is false with no error.
func (s *Session) Restore(ctx context.Context) (u foodbridge.User, ok bool, err error) {
	const op = "restore"
	defer track(s.env, state.UserKind)()

	resp, err := s.env.gw.Do(ctx, http.MethodGet, "/auth/", nil)
	if err != nil {
		var se *foodbridge.StatusError
		if errors.As(err, &se) && !se.ServerSide() {
			s.env.bus.Dispatch(state.ClearSession())
			s.env.observe("session", op, OutcomeAbsent)
			return u, false, nil
		}
		return u, false, fail(s.env, state.UserKind, op, err)
	}
	if err := resp.Decode(&u); err != nil {
		return u, false, malformed(s.env, "session", op, err)
	}
	if u.ID == 0 {
		s.env.bus.Dispatch(state.ClearSession())
		s.env.observe("session", op, OutcomeAbsent)
		return u, false, nil
	}
	s.env.bus.Dispatch(state.SetSessionUser(u))
	s.env.observe("session", op, OutcomeOK)
	return u, true, nil
}

// Login posts creds. A 4xx answer returns *RejectedError whose Fields hold
// the server's form errors; the session is not touched.
func (s *Session) Login(ctx context.Context, creds foodbridge.Credentials) (foodbridge.User, error) {
	return s.authenticate(ctx, "login", "/auth/login", creds)
}

// Signup validates in and registers a new account, signing it in.
func (s *Session) Signup(ctx context.Context, in foodbridge.SignupInput) (foodbridge.User, error) {
	return s.authenticate(ctx, "signup", "/auth/signup", in)
}

func (s *Session) authenticate(ctx context.Context, op, path string, in Validator) (foodbridge.User, error) {
	if err := validate(s.env, "session", op, in); err != nil {
		return foodbridge.User{}, err
	}
	defer track(s.env, state.UserKind)()

	resp, err := s.env.gw.Do(ctx, http.MethodPost, path, in)
	if err != nil {
		return foodbridge.User{}, fail(s.env, state.UserKind, op, err)
	}
	var u foodbridge.User
	if err := resp.Decode(&u); err != nil {
		return foodbridge.User{}, malformed(s.env, "session", op, err)
	}
	if u.ID == 0 {
		return foodbridge.User{}, malformed(s.env, "session", op, errors.New("response has no user id"))
	}
	s.env.bus.Dispatch(state.SetSessionUser(u))
	s.env.observe("session", op, OutcomeOK)
	return u, nil
}

// Logout ends the server session and clears the local one once confirmed.
func (s *Session) Logout(ctx context.Context) error {
	const op = "logout"
	defer track(s.env, state.UserKind)()

	if _, err := s.env.gw.Do(ctx, http.MethodPost, "/auth/logout", nil); err != nil {
		return fail(s.env, state.UserKind, op, err)
	}
	s.env.bus.Dispatch(state.ClearSession())
	s.env.observe("session", op, OutcomeOK)
	return nil
}
