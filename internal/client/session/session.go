// Package session holds the observable authentication state consumed by the
// front end: who is logged in and whether an auth operation is running.
package session

import (
	"sync"

	"github.com/dmitrijs2005/evently-client/internal/client/models"
)

// Snapshot is an immutable view of the session.
type Snapshot struct {
	User     *models.UserSummary
	LoggedIn bool
	Loading  bool
}

// Listener receives the new snapshot after every change.
type Listener func(Snapshot)

type subscriber struct {
	id int
	fn Listener
}

// Session is safe for concurrent use. Listeners run synchronously on the
// goroutine that made the change, outside the internal lock, in
// subscription order.
type Session struct {
	mu     sync.Mutex
	state  Snapshot
	subs   []subscriber
	nextID int
}

// New returns a session that is unauthenticated and loading until the first
// bootstrap finishes.
func New() *Session {
	return &Session{state: Snapshot{Loading: true}}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn and returns a func that removes it. Calling the
// returned func more than once is harmless.
func (s *Session) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// SetUser marks the session authenticated as user, or unauthenticated when
// user is nil.
func (s *Session) SetUser(user *models.UserSummary) {
	var u *models.UserSummary
	if user != nil {
		cp := *user
		u = &cp
	}
	s.update(func(st *Snapshot) {
		st.User = u
		st.LoggedIn = u != nil
	})
}

func (s *Session) SetLoading(loading bool) {
	s.update(func(st *Snapshot) {
		st.Loading = loading
	})
}

func (s *Session) update(change func(*Snapshot)) {
	s.mu.Lock()
	change(&s.state)
	snap := s.state
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(snap)
	}
}
