package tokens

import "github.com/dmitrijs2005/evently-client/internal/client/storage"

// Mode is the persistence mode chosen at login. It is fixed for the life of
// a session; changing it takes a fresh login.
type Mode int

const (
	// ModeSession keeps the session in the volatile scope only.
	ModeSession Mode = iota
	// ModeRemembered keeps the session in the durable scope ("remember me").
	ModeRemembered
)

// ModeFor maps a "remember me" choice to a Mode.
func ModeFor(rememberMe bool) Mode {
	if rememberMe {
		return ModeRemembered
	}
	return ModeSession
}

func (m Mode) String() string {
	if m == ModeRemembered {
		return "remembered"
	}
	return "session"
}

func (m Mode) scope() storage.Scope {
	if m == ModeRemembered {
		return storage.Durable
	}
	return storage.Volatile
}

func (m Mode) otherScope() storage.Scope {
	if m == ModeRemembered {
		return storage.Volatile
	}
	return storage.Durable
}
