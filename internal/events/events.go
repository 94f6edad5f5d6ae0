// Package events defines the typed events the cart core emits instead of
// talking to any UI. The storefront's notification/toast layer subscribes
// downstream; the core only publishes.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeItemAdded       Type = "item_added"
	TypeItemRemoved     Type = "item_removed"
	TypeQuantityUpdated Type = "quantity_updated"
	TypeCartCleared     Type = "cart_cleared"
	TypeCouponApplied   Type = "coupon_applied"
	TypeCouponRejected  Type = "coupon_rejected"
	TypeCouponRemoved   Type = "coupon_removed"
	TypeCartSaved       Type = "cart_saved"
	TypeCartRestored    Type = "cart_restored"
	TypeShareImported   Type = "share_imported"
)

type Event struct {
	ID         string         `json:"id"`
	Type       Type           `json:"type"`
	UserID     string         `json:"user_id"`
	Message    string         `json:"message"`
	Payload    map[string]any `json:"payload,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// New fills in id and timestamp for an event.
func New(t Type, userID, message string, payload map[string]any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		UserID:     userID,
		Message:    message,
		Payload:    payload,
		OccurredAt: time.Now(),
	}
}

// Emitter publishes cart events. Implementations must not block mutations on
// delivery; failures are logged, never surfaced to the user.
type Emitter interface {
	Emit(ctx context.Context, e Event)
}

// MemoryEmitter records events in memory. Used in tests and as a harmless
// default when no broker is configured.
type MemoryEmitter struct {
	m      sync.Mutex
	events []Event
}

func (m *MemoryEmitter) Emit(_ context.Context, e Event) {
	m.m.Lock()
	defer m.m.Unlock()
	m.events = append(m.events, e)
}

// Events returns a copy of everything emitted so far.
func (m *MemoryEmitter) Events() []Event {
	m.m.Lock()
	defer m.m.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}
