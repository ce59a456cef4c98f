package ports

import (
	"context"
	"time"

	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/domain"
)

// StatusChangedEvent is emitted for every persisted status change.
type StatusChangedEvent struct {
	Entity         domain.Entity `json:"entity"`
	EntityID       string        `json:"entity_id"`
	From           string        `json:"from"`
	To             string        `json:"to"`
	MatchedDonorID string        `json:"matched_donor_id,omitempty"`
	OccurredAt     time.Time     `json:"occurred_at"`
}

// Outbox and message type names.
const (
	DonorStatusChanged   = "donor.status_changed"
	RequestStatusChanged = "request.status_changed"
)

// Type returns the event type name for the event's entity.
func (e StatusChangedEvent) Type() string {
	return string(e.Entity) + ".status_changed"
}

type LifecycleEventPublisher interface {
	PublishStatusChanged(ctx context.Context, evt StatusChangedEvent) error
}
