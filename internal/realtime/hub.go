package realtime

import (
	"log/slog"
	"sync"

	"github.com/orbitdrive/orbitdrive/internal/model"
)

// subscriberBuffer is how many events a subscriber may lag before the
// hub starts dropping events for it. Delivery is best effort: clients
// reconcile with a full refresh, so dropped events are not fatal.
const subscriberBuffer = 64

// Subscriber receives the change events of a single owner. Scope limits
// delivery to one folder; events outside it are dropped hub-side so the
// client only sees what it is currently displaying.
type Subscriber struct {
	C chan model.ChangeEvent

	ownerID string

	mu    sync.Mutex
	scope *string // nil = all folders, "" = root scope
}

// SetScope narrows delivery to events for the given folder. Pass nil to
// receive everything again.
func (s *Subscriber) SetScope(folderID *string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scope = folderID
}

// inScope reports whether the event's folder matches the current scope.
func (s *Subscriber) inScope(evt model.ChangeEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scope == nil {
		return true
	}

	folderID := eventFolderID(evt)
	if folderID == nil {
		return *s.scope == ""
	}
	return *s.scope == *folderID
}

// eventFolderID extracts the folder an event belongs to: the parent for
// folder rows, the containing folder for file rows.
func eventFolderID(evt model.ChangeEvent) *string {
	switch row := evt.Row.(type) {
	case *model.Folder:
		return row.ParentID
	case *model.File:
		return row.FolderID
	}
	return nil
}

// Hub fans namespace mutations out to each owner's connected clients.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*Subscriber]struct{} // ownerID -> subscribers
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[*Subscriber]struct{}),
	}
}

// Subscribe registers a new subscriber for the owner's events.
func (h *Hub) Subscribe(ownerID string) *Subscriber {
	sub := &Subscriber{
		C:       make(chan model.ChangeEvent, subscriberBuffer),
		ownerID: ownerID,
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.subscribers[ownerID]
	if !ok {
		subs = make(map[*Subscriber]struct{})
		h.subscribers[ownerID] = subs
	}
	subs[sub] = struct{}{}

	return sub
}

// Unsubscribe removes the subscriber and closes its channel.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.subscribers[sub.ownerID]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}

	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.subscribers, sub.ownerID)
	}

	close(sub.C)
}

// Publish delivers an event to all of the owner's subscribers whose
// scope matches. The send never blocks; a subscriber with a full buffer
// misses the event.
func (h *Hub) Publish(evt model.ChangeEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subscribers[evt.OwnerID] {
		if !sub.inScope(evt) {
			continue
		}
		select {
		case sub.C <- evt:
		default:
			slog.Debug("realtime subscriber lagging, event dropped",
				"owner_id", evt.OwnerID, "table", evt.Table, "operation", evt.Op)
		}
	}
}

// SubscriberCount returns the number of live subscribers for an owner.
func (h *Hub) SubscriberCount(ownerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[ownerID])
}
