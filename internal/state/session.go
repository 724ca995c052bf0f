package state

import "github.com/foodbridge/foodbridge/internal/foodbridge"

// SessionStatus separates "not yet restored" from "confirmed anonymous".
type SessionStatus int

const (
	SessionUnknown SessionStatus = iota
	SessionAnonymous
	SessionAuthenticated
)

func (s SessionStatus) String() string {
	switch s {
	case SessionAnonymous:
		return "anonymous"
	case SessionAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// Session is the authenticated identity for the process, if any. Read it
// through the accessors instead of probing fields.
type Session struct {
	status SessionStatus
	user   foodbridge.User
}

// Status reports whether the session is unknown, anonymous or authenticated.
func (s Session) Status() SessionStatus { return s.status }

// IsAuthenticated reports whether a user is signed in.
func (s Session) IsAuthenticated() bool { return s.status == SessionAuthenticated }

// User returns the signed-in user.
func (s Session) User() (foodbridge.User, bool) {
	if s.status != SessionAuthenticated {
		return foodbridge.User{}, false
	}
	return s.user, true
}

// UserID returns the signed-in user's id, or zero.
func (s Session) UserID() int64 {
	if s.status != SessionAuthenticated {
		return 0
	}
	return s.user.ID
}

// Role returns the signed-in user's role, or the empty role.
func (s Session) Role() foodbridge.Role {
	if s.status != SessionAuthenticated {
		return ""
	}
	return s.user.UserType
}

// Is reports whether the signed-in user has role r.
func (s Session) Is(r foodbridge.Role) bool {
	return s.IsAuthenticated() && s.user.UserType == r
}
