package runtime

import (
	"bank-lab/domain"
	"bank-lab/domain/event"
	"bank-lab/errors"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, payload []byte) map[string]any {
	t.Helper()
	var fields map[string]any
	require.NoError(t, json.Unmarshal(payload, &fields))
	return fields
}

func TestNotifier_NotifyUser_Reaches_Every_Session_In_Order(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	registry := NewRegistry(4)
	notifier := NewNotifier(log, registry)
	userID := domain.UserID(uuid.NewString())
	other := domain.UserID(uuid.NewString())
	phone, laptop, stranger := newSession(&userID), newSession(&userID), newSession(&other)
	registry.Register(phone)
	registry.Register(laptop)
	registry.Register(stranger)

	notifier.NotifyUser(context.Background(), userID, event.NewAnnouncement("first"))
	results := notifier.NotifyUser(context.Background(), userID, event.NewAnnouncement("second"))

	req.Len(results, 2)
	for _, out := range []<-chan []byte{phone.Outbox(), laptop.Outbox()} {
		first := decode(t, <-out)
		req.Equal("first", first["message"])
		req.NotEmpty(first["timestamp"])
		req.Equal("second", decode(t, <-out)["message"])
	}
	req.Empty(stranger.Outbox())
}

func TestNotifier_NotifyUser_Drops_Dead_Session_And_Keeps_Delivering(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	registry := NewRegistry(4)
	notifier := NewNotifier(log, registry)
	userID := domain.UserID(uuid.NewString())
	dead, alive := newSession(&userID), newSession(&userID)
	registry.Register(dead)
	registry.Register(alive)

	// Given a session whose client disconnected
	dead.Close()

	// When the owner is notified
	var results []error
	req.NotPanics(func() {
		for _, r := range notifier.NotifyUser(context.Background(), userID, event.NewAnnouncement("hello")) {
			if r.Session == dead {
				results = append(results, r.Err)
			}
		}
	})

	// Then the dead session is reported and evicted, the live one still served
	req.Len(results, 1)
	req.ErrorIs(results[0], errors.ErrSessionClosed)
	req.False(registry.contains(dead))
	req.Equal(1, registry.Count(&userID))
	req.Equal("hello", decode(t, <-alive.Outbox())["message"])
}

func TestNotifier_NotifyUser_Without_Sessions(t *testing.T) {
	notifier := NewNotifier(slog.Default(), NewRegistry(1))
	require.Nil(t, notifier.NotifyUser(context.Background(), "nobody", event.NewAnnouncement("x")))
}

func TestNotifier_Broadcast_Reaches_Anonymous_And_Authenticated(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(4)
	notifier := NewNotifier(slog.Default(), registry)
	notifier.now = func() time.Time { return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC) }
	userID := domain.UserID(uuid.NewString())
	public, private, full := newSession(nil), newSession(&userID), newSession(nil)
	registry.Register(public)
	registry.Register(private)
	registry.Register(full)

	// Given a slow client whose outbox is saturated
	for len(full.Outbox()) < cap(full.Outbox()) {
		full.Deliver(context.Background(), []byte("backlog"))
	}

	results := notifier.Broadcast(context.Background(), event.NewAnnouncement("maintenance at noon"))

	req.Len(results, 3)
	msg := decode(t, <-public.Outbox())
	req.Equal(event.SystemAnnouncement, msg["event"])
	req.Equal("2026-05-01T00:00:00Z", msg["timestamp"])
	req.Equal("maintenance at noon", decode(t, <-private.Outbox())["message"])
	req.False(registry.contains(full))
	req.Equal(domain.ConnectionStats{TotalConnections: 2, UsersConnected: 1}, registry.Stats())
}

func TestNotifier_Cancelled_Caller_Keeps_Session(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(4)
	notifier := NewNotifier(logs.GetLoggerFromLevel(slog.LevelDebug), registry)
	userID := domain.UserID(uuid.NewString())
	busy := newSession(&userID)
	registry.Register(busy)

	// Given a healthy session whose outbox is momentarily full
	for len(busy.Outbox()) < cap(busy.Outbox()) {
		busy.Deliver(context.Background(), []byte("backlog"))
	}

	// When the caller gives up before the delivery lands
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := notifier.NotifyUser(ctx, userID, event.NewAnnouncement("late"))

	// Then the delivery is reported but the session is left alone
	req.Len(results, 1)
	req.ErrorIs(results[0].Err, context.Canceled)
	req.False(busy.Closed())
	req.True(registry.contains(busy))
	req.Equal(1, registry.Count(&userID))
}
