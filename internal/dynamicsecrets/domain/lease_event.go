package domain

import (
	"time"

	"github.com/google/uuid"
)

// LeaseEventType names a lease state transition.
type LeaseEventType string

const (
	LeaseEventCreated      LeaseEventType = "created"
	LeaseEventCreateFailed LeaseEventType = "create_failed"
	LeaseEventRenewed      LeaseEventType = "renewed"
	LeaseEventRevoked      LeaseEventType = "revoked"
	LeaseEventExpired      LeaseEventType = "expired"
)

// ActorSystem marks events raised by the scheduler.
const ActorSystem = "system"

// LeaseEvent is an append-only audit record.
type LeaseEvent struct {
	ID        uuid.UUID
	LeaseID   uuid.UUID
	EventType LeaseEventType
	ActorType string
	ActorID   *uuid.UUID
	IP        string
	UserAgent string
	Metadata  map[string]any
	CreatedAt time.Time
}

// NewLeaseEvent builds an event attributed to the request origin. Without an
// explicit source, events with a principal carry source=request and the rest
// source=scheduled.
func NewLeaseEvent(
	leaseID uuid.UUID,
	eventType LeaseEventType,
	request RequestInfo,
	metadata map[string]any,
) *LeaseEvent {
	if metadata == nil {
		metadata = make(map[string]any)
	}

	event := &LeaseEvent{
		ID:        uuid.Must(uuid.NewV7()),
		LeaseID:   leaseID,
		EventType: eventType,
		ActorType: ActorSystem,
		IP:        request.IP,
		UserAgent: request.UserAgent,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}

	source := request.Source
	if request.Principal != nil {
		id := request.Principal.ID
		event.ActorType = string(request.Principal.Type)
		event.ActorID = &id
		if source == "" {
			source = EventSourceRequest
		}
	}
	if source == "" {
		source = EventSourceScheduled
	}
	metadata["source"] = string(source)
	return event
}
