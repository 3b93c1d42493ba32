package goBlog

import "github.com/MrEthical07/goBlog/api"

// Identity is the signed-in user as the API reports it.
type Identity = api.User

// Status distinguishes how the session settled.
type Status uint8

const (
	// StatusGuest: no stored token, never resolved, or logged out.
	StatusGuest Status = iota
	// StatusAuthenticated: an identity is held.
	StatusAuthenticated
	// StatusExpired: a stored session was rejected or could not be resolved
	// and was cleared. State.ResolveErr holds the cause.
	StatusExpired
)

func (s Status) String() string {
	switch s {
	case StatusGuest:
		return "guest"
	case StatusAuthenticated:
		return "authenticated"
	case StatusExpired:
		return "expired"
	}
	return "unknown"
}

// State is a snapshot of the session. Snapshots are copies; mutating one does
// not affect the Client.
type State struct {
	User           *Identity
	AccessToken    string
	RefreshToken   string
	IsLoading      bool
	HasFetchedOnce bool
	Status         Status
	// ResolveErr is the normalized cause of StatusExpired (wrapping
	// ErrSessionExpired, ErrUnauthorized, ErrServerUnavailable, ...).
	ResolveErr error
}

// LoggedIn reports whether a user is held.
func (s State) LoggedIn() bool {
	return s.User != nil
}

func (s State) clone() State {
	out := s
	out.User = s.User.Clone()
	return out
}

// sessionState is the mutable record behind State. loading counts in-flight
// operations so overlapping ones do not clear each other's flag.
type sessionState struct {
	user           *Identity
	accessToken    string
	refreshToken   string
	loading        int
	hasFetchedOnce bool
	status         Status
	resolveErr     error
}

func (s *sessionState) snapshot() State {
	return State{
		User:           s.user.Clone(),
		AccessToken:    s.accessToken,
		RefreshToken:   s.refreshToken,
		IsLoading:      s.loading > 0,
		HasFetchedOnce: s.hasFetchedOnce,
		Status:         s.status,
		ResolveErr:     s.resolveErr,
	}
}

// authenticate replaces identity and tokens together.
func (s *sessionState) authenticate(user *Identity, access, refresh string) {
	s.user = user.Clone()
	s.accessToken = access
	s.refreshToken = refresh
	s.hasFetchedOnce = true
	s.status = StatusAuthenticated
	s.resolveErr = nil
}

// expire drops identity and tokens and records why.
func (s *sessionState) expire(cause error) {
	s.user = nil
	s.accessToken = ""
	s.refreshToken = ""
	s.hasFetchedOnce = true
	s.status = StatusExpired
	s.resolveErr = cause
}

// reset returns to a fresh guest session, keeping the loading counter.
func (s *sessionState) reset() {
	loading := s.loading
	*s = sessionState{loading: loading}
}
