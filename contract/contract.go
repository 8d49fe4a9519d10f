//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"bank-lab/domain"
	"bank-lab/domain/event"
	"bank-lab/sink"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// IRegistry tracks live sessions globally and per user.
type IRegistry interface {
	Register(session *sink.Session)
	Unregister(session *sink.Session)
	SessionsFor(userID domain.UserID) []*sink.Session
	Sessions() []*sink.Session
	Count(userID *domain.UserID) int
	Stats() domain.ConnectionStats
}

// INotifier delivers envelopes best-effort and drops sessions that fail.
type INotifier interface {
	NotifyUser(ctx context.Context, userID domain.UserID, envelope event.Envelope) []sink.DeliveryResult
	Broadcast(ctx context.Context, envelope event.Envelope) []sink.DeliveryResult
}

// IComplianceDispatcher accepts out-of-band work without ever blocking the caller.
type IComplianceDispatcher interface {
	Enqueue(ctx context.Context, job domain.ComplianceJob) error
}

// IdentityVerifier turns an opaque token into an identity.
type IdentityVerifier interface {
	Verify(token string) (domain.Identity, error)
}
