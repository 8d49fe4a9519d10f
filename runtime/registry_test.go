package runtime

import (
	"bank-lab/domain"
	"bank-lab/sink"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func newSession(userID *domain.UserID) *sink.Session {
	return sink.NewSession(userID, 8, 50*time.Millisecond)
}

func (r *Registry) contains(session *sink.Session) bool {
	global := r.sessionShard(session.ID)
	global.mu.RLock()
	defer global.mu.RUnlock()
	_, ok := global.sessions[session.ID]
	return ok
}

func TestRegistry_Register_One_User_Many_Sessions(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(4)
	userID := domain.UserID(uuid.NewString())
	phone := newSession(&userID)
	laptop := newSession(&userID)

	// Given no session is connected
	req.Zero(registry.Count(nil))
	req.Empty(registry.SessionsFor(userID))

	// When the same user connects twice
	registry.Register(phone)
	registry.Register(laptop)

	// Then both sessions are tracked for that user
	req.Equal(2, registry.Count(nil))
	req.Equal(2, registry.Count(&userID))
	req.ElementsMatch([]*sink.Session{phone, laptop}, registry.SessionsFor(userID))
	req.Equal(domain.ConnectionStats{TotalConnections: 2, UsersConnected: 1}, registry.Stats())
}

func TestRegistry_Register_Anonymous_Session_Is_Public_Only(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(4)
	public := newSession(nil)

	registry.Register(public)

	req.Equal(1, registry.Count(nil))
	req.Contains(registry.Sessions(), public)
	req.Equal(domain.ConnectionStats{TotalConnections: 1, UsersConnected: 0}, registry.Stats())
}

func TestRegistry_Unregister_Drops_Empty_User(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(4)
	userID := domain.UserID(uuid.NewString())
	first := newSession(&userID)
	second := newSession(&userID)
	registry.Register(first)
	registry.Register(second)

	// When one session leaves, the other one remains
	registry.Unregister(first)
	req.Equal([]*sink.Session{second}, registry.SessionsFor(userID))
	req.False(registry.contains(first))

	// When the last session leaves, the user disappears
	registry.Unregister(second)
	req.Empty(registry.SessionsFor(userID))
	req.Zero(registry.Count(&userID))
	req.Equal(domain.ConnectionStats{}, registry.Stats())
}

func TestRegistry_Unregister_Unknown_Session_Is_NoOp(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(4)
	userID := domain.UserID(uuid.NewString())
	stranger := newSession(&userID)
	kept := newSession(nil)
	registry.Register(kept)

	req.NotPanics(func() {
		registry.Unregister(stranger)
		registry.Unregister(stranger)
	})
	req.Equal(1, registry.Count(nil))
	req.True(registry.contains(kept))
}

func TestRegistry_Concurrent_Register_Unregister(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(8)
	users := lo.Times(10, func(_ int) domain.UserID { return domain.UserID(uuid.NewString()) })

	const perUser = 50
	var wg sync.WaitGroup
	kept := make(chan *sink.Session, len(users)*perUser)
	for _, userID := range users {
		for i := 0; i < perUser; i++ {
			wg.Add(1)
			go func(userID domain.UserID, i int) {
				defer wg.Done()
				session := newSession(&userID)
				registry.Register(session)
				if i%2 == 0 {
					registry.Unregister(session)
					return
				}
				kept <- session
			}(userID, i)
		}
	}
	wg.Wait()
	close(kept)

	req.Equal(len(users)*perUser/2, registry.Count(nil))
	for _, userID := range users {
		req.Equal(perUser/2, registry.Count(&userID))
	}
	for session := range kept {
		req.True(registry.contains(session))
	}
}

func TestRegistry_Register_Closed_Session_Is_Rolled_Back(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(4)
	userID := domain.UserID(uuid.NewString())
	evicted := newSession(&userID)

	// Given a session dropped before its registration completed
	evicted.Close()

	// When it is registered
	registry.Register(evicted)

	// Then neither the global nor the user set keeps it
	req.False(registry.contains(evicted))
	req.Empty(registry.SessionsFor(userID))
	req.Equal(domain.ConnectionStats{}, registry.Stats())
}

func TestRegistry_Eviction_Racing_Register_Leaves_Nothing(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(8)
	userID := domain.UserID(uuid.NewString())

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		session := newSession(&userID)
		wg.Add(2)
		go func() {
			defer wg.Done()
			registry.Register(session)
		}()
		go func() {
			defer wg.Done()
			session.Close()
			registry.Unregister(session)
		}()
	}
	wg.Wait()

	req.Empty(registry.SessionsFor(userID))
	req.Zero(registry.Count(nil))
}
