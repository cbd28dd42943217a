package session

import (
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// Listener is notified with the new identity (nil after logout).
type Listener = func(user *domain.User)

// Store holds the authenticated identity and its bearer token.
type Store struct {
	mu        sync.RWMutex
	user      *domain.User
	token     string
	epoch     uint64
	nextID    int
	listeners map[int]Listener
	order     []int
}

func NewStore() *Store {
	return &Store{listeners: make(map[int]Listener)}
}

func (s *Store) Current() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Epoch increases on every identity change.
func (s *Store) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// Establish records a login. Re-establishing the same user only swaps the token.
func (s *Store) Establish(user domain.User, token string) {
	s.mu.Lock()
	changed := s.user == nil || s.user.ID != user.ID
	s.user = &user
	s.token = token
	if changed {
		s.epoch++
	}
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	if changed {
		notify(listeners, &user)
	}
}

func (s *Store) Clear() {
	s.mu.Lock()
	changed := s.user != nil
	s.user = nil
	s.token = ""
	if changed {
		s.epoch++
	}
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	if changed {
		notify(listeners, nil)
	}
}

// Subscribe registers l for identity changes and returns a func removing it.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.order = append(s.order, id)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}

func (s *Store) snapshotListeners() []Listener {
	out := make([]Listener, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.listeners[id])
	}
	return out
}

func notify(listeners []Listener, user *domain.User) {
	for _, l := range listeners {
		if user == nil {
			l(nil)
			continue
		}
		u := *user
		l(&u)
	}
}
