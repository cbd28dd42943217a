package lineguard

import (
	"sync"

	"github.com/google/uuid"
)

// Token identifies one in-flight operation on a key.
type Token string

// Guard tracks at most one in-flight operation per key (a cart line id, a food id).
// Triggers arriving while a key is busy are dropped, not queued.
type Guard[K comparable] struct {
	mu       sync.Mutex
	inFlight map[K]Token
}

func New[K comparable]() *Guard[K] {
	return &Guard[K]{inFlight: make(map[K]Token)}
}

// TryAcquire marks key busy and returns the token needed to release it.
// ok is false when another operation already holds key.
func (g *Guard[K]) TryAcquire(key K) (token Token, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inFlight[key]; busy {
		return "", false
	}
	token = Token(uuid.NewString())
	g.inFlight[key] = token
	return token, true
}

// Release frees key if token is still its holder.
func (g *Guard[K]) Release(key K, token Token) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inFlight[key] == token {
		delete(g.inFlight, key)
	}
}

func (g *Guard[K]) Busy(key K) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.inFlight[key]
	return busy
}
