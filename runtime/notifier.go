package runtime

import (
	"bank-lab/contract"
	"bank-lab/domain"
	"bank-lab/domain/event"
	"bank-lab/sink"
	"context"
	"encoding/json"
	stdErrors "errors"
	"log/slog"
	"sync"
	"time"
)

// Notifier pushes envelopes to live sessions.
//
// Delivery is best-effort and at-most-once per session: no retry, no
// persistence. A session that fails a delivery is removed from the registry;
// this is the only way dead sessions get evicted. A delivery cut short by the
// caller's own context does not count as a failure of the session. One failing session never
// stops delivery to the others.
type Notifier struct {
	log      *slog.Logger
	registry contract.IRegistry
	now      func() time.Time
}

func NewNotifier(log *slog.Logger, registry contract.IRegistry) *Notifier {
	return &Notifier{log: log, registry: registry, now: time.Now}
}

func (n *Notifier) NotifyUser(ctx context.Context, userID domain.UserID, envelope event.Envelope) []sink.DeliveryResult {
	return n.deliver(ctx, n.registry.SessionsFor(userID), envelope)
}

func (n *Notifier) Broadcast(ctx context.Context, envelope event.Envelope) []sink.DeliveryResult {
	return n.deliver(ctx, n.registry.Sessions(), envelope)
}

// deliver hands the payload to every session in parallel and waits for all of
// them, so two successive calls reach a given session in call order.
func (n *Notifier) deliver(ctx context.Context, sessions []*sink.Session, envelope event.Envelope) []sink.DeliveryResult {
	if len(sessions) == 0 {
		return nil
	}
	payload, err := json.Marshal(envelope.Stamp(n.now()))
	if err != nil {
		n.log.Error("Unable to encode notification", "event", envelope.Event, "error", err)
		return nil
	}

	results := make([]sink.DeliveryResult, len(sessions))
	var wg sync.WaitGroup
	for i, session := range sessions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = session.Deliver(ctx, payload)
		}()
	}
	wg.Wait()

	for _, result := range results {
		if result.OK() {
			continue
		}
		if stdErrors.Is(result.Err, context.Canceled) || stdErrors.Is(result.Err, context.DeadlineExceeded) {
			// The caller gave up, the session did nothing wrong.
			n.log.Debug("Delivery abandoned by caller",
				"session_id", result.Session.ID,
				"event", envelope.Event,
				"error", result.Err)
			continue
		}
		n.log.Warn("Dropping session after failed delivery",
			"session_id", result.Session.ID,
			"event", envelope.Event,
			"error", result.Err)
		result.Session.Close()
		n.registry.Unregister(result.Session)
	}
	return results
}
