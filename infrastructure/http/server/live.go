package server

import (
	"bank-lab/auth"
	"bank-lab/contract"
	"bank-lab/domain"
	"bank-lab/sink"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/contrib/websocket"
)

// Conn is the part of a WebSocket connection the live loop uses.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

const pingMessage = "ping"

type connectionReply struct {
	Type    string `json:"type"`
	Status  string `json:"status"`
	Message string `json:"message"`
	UserID  string `json:"user_id,omitempty"`
}

type textReply struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// LiveServer runs one loop per WebSocket connection. The loop owns the socket:
// it reads client frames itself and a single writer goroutine drains the
// session outbox, so replies and notifications share one ordered path.
type LiveServer struct {
	log             *slog.Logger
	registry        contract.IRegistry
	bufferSize      int
	deliveryTimeout time.Duration
}

func NewLiveServer(log *slog.Logger, registry contract.IRegistry, bufferSize int, deliveryTimeout time.Duration) *LiveServer {
	return &LiveServer{log: log, registry: registry, bufferSize: bufferSize, deliveryTimeout: deliveryTimeout}
}

func (l *LiveServer) authenticated(c *websocket.Conn) {
	identity, ok := c.Locals(auth.IdentityKey).(domain.Identity)
	if !ok {
		_ = c.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "Invalid token"))
		return
	}
	l.Serve(context.Background(), c, &identity)
}

func (l *LiveServer) public(c *websocket.Conn) {
	l.Serve(context.Background(), c, nil)
}

// Serve blocks until the client goes away or its session is dropped.
// A nil identity opens a public session: ping/pong only, no echo.
func (l *LiveServer) Serve(ctx context.Context, conn Conn, identity *domain.Identity) {
	var userID *domain.UserID
	owner := "anonymous"
	if identity != nil {
		userID = &identity.UserID
		owner = identity.UserID.String()
	}
	session := sink.NewSession(userID, l.bufferSize, l.deliveryTimeout)

	// 1. Queue the welcome before registration so it is always the first frame
	if result := session.Deliver(ctx, welcome(identity)); !result.OK() {
		l.log.Warn("Unable to welcome session", "session_id", session.ID, "error", result.Err)
		return
	}
	// 2. Make the session reachable by the notifier
	l.registry.Register(session)
	l.log.Info("Session connected", "session_id", session.ID, "user_id", owner)

	// 3. Start the single writer draining the outbox
	writerDone := make(chan struct{})
	go l.write(conn, session, writerDone)

	defer func() {
		l.registry.Unregister(session)
		session.Close()
		<-writerDone
		l.log.Info("Session disconnected", "session_id", session.ID, "user_id", owner)
	}()

	// 4. Read client frames until the socket goes away
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			l.log.Debug("Session read ended", "session_id", session.ID, "error", err)
			return
		}
		reply := l.reply(session, string(data))
		if reply == nil {
			continue
		}
		if result := session.Deliver(ctx, reply); !result.OK() {
			l.log.Warn("Session reply failed", "session_id", session.ID, "error", result.Err)
			return
		}
	}
}

// write is the only goroutine writing to conn. A failed write or a session
// closed elsewhere (eviction by the notifier) closes the socket, which also
// ends the read loop.
func (l *LiveServer) write(conn Conn, session *sink.Session, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-session.Done():
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "Session dropped"))
			_ = conn.Close()
			return
		case payload := <-session.Outbox():
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				l.log.Warn("Session write failed", "session_id", session.ID, "error", err)
				session.Close()
				_ = conn.Close()
				return
			}
		}
	}
}

func (l *LiveServer) reply(session *sink.Session, text string) []byte {
	switch {
	case text == pingMessage:
		l.log.Debug("Keep-alive ping", "session_id", session.ID)
		return mustMarshal(textReply{Type: "pong", Message: "Connection is alive"})
	case !session.Anonymous():
		return mustMarshal(textReply{Type: "echo", Message: "Received: " + text})
	default:
		return nil
	}
}

func welcome(identity *domain.Identity) []byte {
	if identity == nil {
		return mustMarshal(connectionReply{Type: "connection", Status: "connected", Message: "Connected to public updates"})
	}
	return mustMarshal(connectionReply{
		Type:    "connection",
		Status:  "connected",
		Message: fmt.Sprintf("Welcome %s! You are now connected to real-time updates.", identity.Username),
		UserID:  identity.UserID.String(),
	})
}

// mustMarshal only sees the fixed reply structs above, which always encode.
func mustMarshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
