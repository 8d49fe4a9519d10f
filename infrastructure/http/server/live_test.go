package server

import (
	"bank-lab/domain"
	"bank-lab/domain/event"
	"bank-lab/runtime"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	incoming   chan []byte
	written    chan []byte
	control    chan []byte
	closed     chan struct{}
	closeOnce  sync.Once
	failWrites bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		incoming: make(chan []byte),
		written:  make(chan []byte, 64),
		control:  make(chan []byte, 1),
		closed:   make(chan struct{}),
	}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case data, ok := <-f.incoming:
		if !ok {
			return 0, nil, io.EOF
		}
		return websocket.TextMessage, data, nil
	case <-f.closed:
		return 0, nil, net.ErrClosed
	}
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	if f.failWrites {
		return fmt.Errorf("broken pipe")
	}
	if messageType == websocket.CloseMessage {
		select {
		case f.control <- data:
		default:
		}
		return nil
	}
	f.written <- data
	return nil
}

func (f *fakeConn) Close() error {
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeConn) next(t *testing.T) map[string]any {
	t.Helper()
	select {
	case data := <-f.written:
		var fields map[string]any
		require.NoError(t, json.Unmarshal(data, &fields))
		return fields
	case <-time.After(time.Second):
		require.FailNow(t, "no frame written")
		return nil
	}
}

func (f *fakeConn) send(t *testing.T, text string) {
	t.Helper()
	select {
	case f.incoming <- []byte(text):
	case <-time.After(time.Second):
		require.FailNow(t, "session stopped reading")
	}
}

func serve(live *LiveServer, conn *fakeConn, identity *domain.Identity) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		live.Serve(context.Background(), conn, identity)
		close(done)
	}()
	return done
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(time.Second):
		require.FailNow(t, "session loop did not return")
	}
}

func TestLiveServer_Authenticated_Session(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	registry := runtime.NewRegistry(4)
	notifier := runtime.NewNotifier(log, registry)
	live := NewLiveServer(log, registry, 8, 50*time.Millisecond)
	identity := domain.Identity{UserID: "u1", Username: "alice"}
	conn := newFakeConn()

	done := serve(live, conn, &identity)

	welcome := conn.next(t)
	req.Equal("connection", welcome["type"])
	req.Equal("connected", welcome["status"])
	req.Equal("Welcome alice! You are now connected to real-time updates.", welcome["message"])
	req.Equal("u1", welcome["user_id"])
	req.Equal(1, registry.Count(&identity.UserID))

	conn.send(t, "ping")
	req.Equal(map[string]any{"type": "pong", "message": "Connection is alive"}, conn.next(t))

	conn.send(t, "hello")
	req.Equal(map[string]any{"type": "echo", "message": "Received: hello"}, conn.next(t))

	results := notifier.NotifyUser(context.Background(), "u1", event.NewAnnouncement("maintenance tonight"))
	req.Len(results, 1)
	req.True(results[0].OK())
	pushed := conn.next(t)
	req.Equal("system_announcement", pushed["event"])
	req.NotEmpty(pushed["timestamp"])

	close(conn.incoming)
	waitDone(t, done)
	req.Zero(registry.Count(&identity.UserID))

	// Notifying an owner whose only session is gone is not an error.
	req.Empty(notifier.NotifyUser(context.Background(), "u1", event.NewAnnouncement("anyone?")))
}

func TestLiveServer_Public_Session_Only_Answers_Ping(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	registry := runtime.NewRegistry(4)
	live := NewLiveServer(log, registry, 8, 50*time.Millisecond)
	conn := newFakeConn()

	done := serve(live, conn, nil)

	req.Equal("Connected to public updates", conn.next(t)["message"])
	req.Equal(domain.ConnectionStats{TotalConnections: 1, UsersConnected: 0}, registry.Stats())

	conn.send(t, "hello")
	conn.send(t, "ping")
	req.Equal("pong", conn.next(t)["type"])

	close(conn.incoming)
	waitDone(t, done)
	req.Zero(registry.Count(nil))
}

func TestLiveServer_Write_Failure_Drops_Session(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	registry := runtime.NewRegistry(4)
	live := NewLiveServer(log, registry, 8, 50*time.Millisecond)
	identity := domain.Identity{UserID: "u1", Username: "alice"}
	conn := newFakeConn()
	conn.failWrites = true

	done := serve(live, conn, &identity)

	waitDone(t, done)
	req.Zero(registry.Count(nil))
}

func TestLiveServer_Evicted_Session_Closes_Socket(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	registry := runtime.NewRegistry(4)
	live := NewLiveServer(log, registry, 8, 50*time.Millisecond)
	identity := domain.Identity{UserID: "u1", Username: "alice"}
	conn := newFakeConn()

	done := serve(live, conn, &identity)
	req.Equal("connection", conn.next(t)["type"])

	sessions := registry.SessionsFor("u1")
	req.Len(sessions, 1)
	sessions[0].Close()
	registry.Unregister(sessions[0])

	select {
	case <-conn.closed:
	case <-time.After(time.Second):
		req.FailNow("socket left open after eviction")
	}
	select {
	case frame := <-conn.control:
		req.Equal(websocket.FormatCloseMessage(websocket.CloseGoingAway, "Session dropped"), frame)
	default:
		req.FailNow("no close frame sent")
	}
	waitDone(t, done)
	req.Zero(registry.Count(nil))
}
