package memory

import (
	"sync"
	"time"

	"ai-advisor-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// SessionRepository is the in-memory conversation store. Sessions expire
// after the configured TTL of inactivity. Each session also carries a
// lock so turns for the same session are processed one at a time.
type SessionRepository struct {
	cache *cache.Cache

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	// Purge expired sessions every 10 minutes.
	c := cache.New(ttl, 10*time.Minute)
	r := &SessionRepository{
		cache: c,
		locks: make(map[string]*sync.Mutex),
	}
	c.OnEvicted(func(key string, _ interface{}) {
		r.mu.Lock()
		delete(r.locks, key)
		r.mu.Unlock()
	})
	return r
}

func (r *SessionRepository) Save(session *store.Session) {
	session.LastActive = time.Now()
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*store.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.Session), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
	r.mu.Lock()
	delete(r.locks, sessionID)
	r.mu.Unlock()
}

// List returns all live sessions for a user.
func (r *SessionRepository) List(userID string) []*store.Session {
	var out []*store.Session
	for _, item := range r.cache.Items() {
		s, ok := item.Object.(*store.Session)
		if !ok {
			continue
		}
		if userID == "" || s.UserID == userID {
			out = append(out, s)
		}
	}
	return out
}

// Lock returns the per-session mutex, creating it on first use.
// Callers hold it for the duration of one turn.
func (r *SessionRepository) Lock(sessionID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[sessionID] = l
	}
	return l
}
