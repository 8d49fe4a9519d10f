package runtime

import (
	"bank-lab/domain"
	"bank-lab/sink"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

const DefaultShards = 32

type Set map[uuid.UUID]*sink.Session

type shard struct {
	mu       sync.RWMutex
	sessions Set                   // global membership of the sessions hashed here
	users    map[domain.UserID]Set // per-user membership of the users hashed here
}

// Registry tracks every live session and groups authenticated ones by user.
// State is striped across shards so that connects, disconnects and lookups
// for unrelated users do not contend on one lock. No lock is held while a
// caller delivers to the returned sessions.
type Registry struct {
	shards []*shard
}

func NewRegistry(shards int) *Registry {
	if shards <= 0 {
		shards = DefaultShards
	}
	r := &Registry{shards: make([]*shard, shards)}
	for i := range r.shards {
		r.shards[i] = &shard{
			sessions: make(Set),
			users:    make(map[domain.UserID]Set),
		}
	}
	return r
}

func (r *Registry) sessionShard(id uuid.UUID) *shard {
	return r.shards[xxhash.Sum64(id[:])%uint64(len(r.shards))]
}

func (r *Registry) userShard(userID domain.UserID) *shard {
	return r.shards[xxhash.Sum64String(string(userID))%uint64(len(r.shards))]
}

// Register adds the session to the global set, then to its user's set.
// A session closed while it was being inserted is removed again, so an
// eviction racing with Register never leaves it behind in either set.
func (r *Registry) Register(session *sink.Session) {
	r.insert(session)
	if session.Closed() {
		r.Unregister(session)
	}
}

func (r *Registry) insert(session *sink.Session) {
	global := r.sessionShard(session.ID)
	global.mu.Lock()
	global.sessions[session.ID] = session
	global.mu.Unlock()

	if session.UserID == nil {
		return
	}
	owner := r.userShard(*session.UserID)
	owner.mu.Lock()
	defer owner.mu.Unlock()
	members, ok := owner.users[*session.UserID]
	if !ok {
		members = make(Set)
		owner.users[*session.UserID] = members
	}
	members[session.ID] = session
}

// Unregister removes the session from its user's set, then from the global set.
// Users left without sessions are dropped. Unknown sessions are ignored.
func (r *Registry) Unregister(session *sink.Session) {
	if session.UserID != nil {
		owner := r.userShard(*session.UserID)
		owner.mu.Lock()
		if members, ok := owner.users[*session.UserID]; ok {
			delete(members, session.ID)
			if len(members) == 0 {
				delete(owner.users, *session.UserID)
			}
		}
		owner.mu.Unlock()
	}

	global := r.sessionShard(session.ID)
	global.mu.Lock()
	delete(global.sessions, session.ID)
	global.mu.Unlock()
}

// SessionsFor returns a snapshot of the user's sessions, empty if none.
func (r *Registry) SessionsFor(userID domain.UserID) []*sink.Session {
	owner := r.userShard(userID)
	owner.mu.RLock()
	defer owner.mu.RUnlock()
	return lo.Values(owner.users[userID])
}

// Sessions returns a snapshot of every live session, anonymous ones included.
func (r *Registry) Sessions() []*sink.Session {
	var all []*sink.Session
	for _, s := range r.shards {
		s.mu.RLock()
		all = append(all, lo.Values(s.sessions)...)
		s.mu.RUnlock()
	}
	return all
}

// Count returns the number of live sessions, for one user when userID is set.
func (r *Registry) Count(userID *domain.UserID) int {
	if userID != nil {
		owner := r.userShard(*userID)
		owner.mu.RLock()
		defer owner.mu.RUnlock()
		return len(owner.users[*userID])
	}
	total := 0
	for _, s := range r.shards {
		s.mu.RLock()
		total += len(s.sessions)
		s.mu.RUnlock()
	}
	return total
}

func (r *Registry) Stats() domain.ConnectionStats {
	var stats domain.ConnectionStats
	for _, s := range r.shards {
		s.mu.RLock()
		stats.TotalConnections += len(s.sessions)
		stats.UsersConnected += len(s.users)
		s.mu.RUnlock()
	}
	return stats
}
