package db

import (
	"context"
	"log"
	"sync"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Badge subscription names.
const (
	SubAdminNewReports = "admin-new-reports"
	subTechPrefix      = "tech-badge:"
)

// TechnicianBadgeSub names the badge subscription of one technician.
func TechnicianBadgeSub(email string) string {
	return subTechPrefix + email
}

// Watcher owns the set of named, cancellable badge subscriptions for one
// session. Each subscription is a long-lived Firestore snapshot listener
// whose latest result-set size backs the badge endpoints; screens that go
// invisible stop their subscription instead of leaking a listener.
type Watcher struct {
	db   *FirestoreDB
	base context.Context // session lifetime, outlives individual requests

	mu     sync.Mutex
	cancel map[string]context.CancelFunc
	counts map[string]int
}

// NewWatcher creates an empty subscription set over the store. ctx bounds
// the lifetime of every subscription started from it.
func (db *FirestoreDB) NewWatcher(ctx context.Context) *Watcher {
	return &Watcher{
		db:     db,
		base:   ctx,
		cancel: make(map[string]context.CancelFunc),
		counts: make(map[string]int),
	}
}

// WatchAdminBadge starts the admin "new report" badge subscription
// (reports with notification == true). Idempotent per name.
func (w *Watcher) WatchAdminBadge() {
	w.start(SubAdminNewReports, w.db.client.Collection(colReports).
		Where("notification", "==", true))
}

// WatchTechnicianBadge starts one technician's badge subscription
// (assigned reports with notificationTech == true). Idempotent per name.
func (w *Watcher) WatchTechnicianBadge(email string) {
	w.start(TechnicianBadgeSub(email), w.db.client.Collection(colReports).
		Where("technicianEmail", "==", email).
		Where("notificationTech", "==", true))
}

func (w *Watcher) start(name string, q firestore.Query) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, running := w.cancel[name]; running {
		return
	}

	ctx, cancel := context.WithCancel(w.base)
	w.cancel[name] = cancel

	go func() {
		defer w.clear(name)
		it := q.Snapshots(ctx)
		defer it.Stop()
		for {
			snap, err := it.Next()
			if err != nil {
				if ctx.Err() == nil && status.Code(err) != codes.Canceled {
					log.Printf("⚠️  badge subscription %s ended: %v", name, err)
				}
				return
			}
			w.setCount(name, snap.Size)
		}
	}()
}

// Count returns the current size of a subscription's result set; zero
// when the subscription is not running or has not delivered a snapshot.
func (w *Watcher) Count(name string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.counts[name]
}

// Stop cancels one subscription. Cancellation is synchronous from the
// caller's view: the name is released immediately and may be restarted.
func (w *Watcher) Stop(name string) {
	w.mu.Lock()
	cancel, ok := w.cancel[name]
	delete(w.cancel, name)
	delete(w.counts, name)
	w.mu.Unlock()
	if ok {
		cancel()
	}
}

// StopAll cancels every subscription, for session teardown.
func (w *Watcher) StopAll() {
	w.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(w.cancel))
	for name, cancel := range w.cancel {
		cancels = append(cancels, cancel)
		delete(w.cancel, name)
		delete(w.counts, name)
	}
	w.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
}

func (w *Watcher) setCount(name string, n int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, running := w.cancel[name]; running {
		w.counts[name] = n
	}
}

// clear releases a subscription's name once its goroutine exits, so a
// failed subscription can be restarted by the next badge request.
func (w *Watcher) clear(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if cancel, ok := w.cancel[name]; ok {
		cancel()
		delete(w.cancel, name)
	}
	delete(w.counts, name)
}

// Running lists the active subscription names, for diagnostics.
func (w *Watcher) Running() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	names := make([]string, 0, len(w.cancel))
	for name := range w.cancel {
		names = append(names, name)
	}
	return names
}
