package sink

import (
	"bank-lab/domain"
	"bank-lab/errors"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is the routing handle of one live connection.
// The connection handler owns the socket and drains Outbox; everyone else only
// calls Deliver, so writes to a socket never happen concurrently and messages
// to one session keep their order.
type Session struct {
	ID     uuid.UUID
	UserID *domain.UserID

	outbox          chan []byte
	done            chan struct{}
	closeOnce       sync.Once
	deliveryTimeout time.Duration
}

// DeliveryResult is the outcome of handing one payload to one session.
type DeliveryResult struct {
	Session *Session
	Err     error
}

func (r DeliveryResult) OK() bool {
	return r.Err == nil
}

func NewSession(userID *domain.UserID, bufferSize int, deliveryTimeout time.Duration) *Session {
	return &Session{
		ID:              uuid.New(),
		UserID:          userID,
		outbox:          make(chan []byte, bufferSize),
		done:            make(chan struct{}),
		deliveryTimeout: deliveryTimeout,
	}
}

func (s *Session) Anonymous() bool {
	return s.UserID == nil
}

// Deliver queues payload for the connection writer.
// It blocks at most deliveryTimeout when the outbox is full; a session that
// cannot keep up is reported failed exactly like a closed one.
func (s *Session) Deliver(ctx context.Context, payload []byte) DeliveryResult {
	select {
	case <-s.done:
		return DeliveryResult{Session: s, Err: errors.ErrSessionClosed}
	default:
	}

	timer := time.NewTimer(s.deliveryTimeout)
	defer timer.Stop()

	select {
	case s.outbox <- payload:
		return DeliveryResult{Session: s}
	case <-s.done:
		return DeliveryResult{Session: s, Err: errors.ErrSessionClosed}
	case <-ctx.Done():
		return DeliveryResult{Session: s, Err: ctx.Err()}
	case <-timer.C:
		return DeliveryResult{Session: s, Err: errors.ErrDeliveryTimeout}
	}
}

// Outbox is read by the single goroutine writing to the socket.
func (s *Session) Outbox() <-chan []byte {
	return s.outbox
}

func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) Closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Close marks the session dead. Safe to call several times.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}
