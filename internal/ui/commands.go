package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/foodbridge/foodbridge/internal/foodbridge"
	"github.com/foodbridge/foodbridge/internal/state"
	"github.com/foodbridge/foodbridge/internal/thunks"
)

// Messages

type stateMsg state.State

type opDoneMsg struct {
	label string
	err   error
}

type loginDoneMsg struct{ err error }

type tickMsg time.Time

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(store.Snapshot())
	}
}

// runOp runs fn with a bounded context and reports it as an opDoneMsg. The
// store changes fn makes arrive separately through the bus subscription.
func (m Model) runOp(label string, fn func(ctx context.Context) error) tea.Cmd {
	parent := m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, ThunkTimeout)
		defer cancel()
		return opDoneMsg{label: label, err: fn(ctx)}
	}
}

func (m Model) loginCmd(creds foodbridge.Credentials) tea.Cmd {
	parent, sess := m.ctx, m.thunks.Session
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, ThunkTimeout)
		defer cancel()
		_, err := sess.Login(ctx, creds)
		return loginDoneMsg{err: err}
	}
}

func (m Model) logoutCmd() tea.Cmd {
	sess := m.thunks.Session
	return m.runOp("log out", func(ctx context.Context) error {
		return sess.Logout(ctx)
	})
}

// syncCmd runs one role-aware refresh round, used right after signing in.
func (m Model) syncCmd() tea.Cmd {
	if m.refresher == nil {
		return nil
	}
	r := m.refresher
	return m.runOp("sync", func(ctx context.Context) error {
		return r.Refresh(ctx)
	})
}

// refreshCmd reloads the table behind tab.
func (m Model) refreshCmd(tab Tab) tea.Cmd {
	t := m.thunks
	label := "refresh " + tab.String()
	switch tab {
	case TabCenters:
		return m.runOp(label, func(ctx context.Context) error { _, err := t.Centers.List(ctx); return err })
	case TabListings:
		if m.snap.Session.Is(foodbridge.RoleProvider) {
			if p, ok := state.SessionProvider(m.snap); ok {
				return m.runOp(label, func(ctx context.Context) error { _, err := t.Providers.Listings(ctx, p.ID); return err })
			}
		}
		return m.runOp(label, func(ctx context.Context) error { _, err := t.Listings.List(ctx); return err })
	case TabProviders:
		return m.runOp(label, func(ctx context.Context) error { _, err := t.Providers.List(ctx); return err })
	case TabReservations:
		return m.runOp(label, func(ctx context.Context) error { _, err := t.Reservations.List(ctx); return err })
	case TabAlerts:
		return m.runOp(label, func(ctx context.Context) error { _, err := t.Alerts.List(ctx); return err })
	case TabTax:
		return m.runOp(label, func(ctx context.Context) error { _, err := t.TaxRecords.List(ctx); return err })
	case TabLogs:
		return readLogsCmd(m.logPath)
	}
	return nil
}

func (m Model) deleteCmd(tab Tab, id int64) tea.Cmd {
	t := m.thunks
	label := fmt.Sprintf("delete %s #%d", tab.String(), id)
	switch tab {
	case TabCenters:
		return m.runOp(label, func(ctx context.Context) error { return t.Centers.Delete(ctx, id) })
	case TabListings:
		return m.runOp(label, func(ctx context.Context) error { return t.Listings.Delete(ctx, id) })
	}
	return nil
}

func (m Model) toggleAlertCmd(a foodbridge.AllergenAlert) tea.Cmd {
	alerts := m.thunks.Alerts
	label := fmt.Sprintf("%s alert %s", ternary(a.IsActive, "pause", "resume"), a.AllergenName)
	return m.runOp(label, func(ctx context.Context) error {
		_, err := alerts.Toggle(ctx, a.ID, !a.IsActive)
		return err
	})
}

// describeError turns a thunk error into status line text.
func describeError(err error) string {
	var invalid *thunks.ValidationError
	var rejected *thunks.RejectedError
	switch {
	case errors.As(err, &invalid):
		return "invalid input: " + invalid.Fields.String()
	case errors.As(err, &rejected):
		return fmt.Sprintf("rejected (%d): %s", rejected.StatusCode, rejected.Message())
	case errors.Is(err, thunks.ErrServerUnavailable):
		return "server unavailable"
	}
	return err.Error()
}
