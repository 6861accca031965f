package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	EventTypePermitCreated  = "permit.created"
	EventTypePermitClosed   = "permit.closed"
	EventTypeUserRegistered = "user.registered"
)

func newBaseEvent(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

type PermitCreatedEvent struct {
	BaseEvent
	PermitID     int64  `json:"permit_id"`
	PermitNumber string `json:"permit_number"`
}

func NewPermitCreatedEvent(permitID int64, permitNumber string) *PermitCreatedEvent {
	return &PermitCreatedEvent{
		BaseEvent: newBaseEvent(EventTypePermitCreated, map[string]interface{}{
			"permit_id":     permitID,
			"permit_number": permitNumber,
		}),
		PermitID:     permitID,
		PermitNumber: permitNumber,
	}
}

// PermitClosedEvent is raised when closeout or cancellation data is recorded.
type PermitClosedEvent struct {
	BaseEvent
	PermitNumber  string   `json:"permit_number"`
	UpdatedFields []string `json:"updated_fields"`
}

func NewPermitClosedEvent(permitNumber string, updatedFields []string) *PermitClosedEvent {
	return &PermitClosedEvent{
		BaseEvent: newBaseEvent(EventTypePermitClosed, map[string]interface{}{
			"permit_number":  permitNumber,
			"updated_fields": updatedFields,
		}),
		PermitNumber:  permitNumber,
		UpdatedFields: updatedFields,
	}
}

type UserRegisteredEvent struct {
	BaseEvent
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

func NewUserRegisteredEvent(userID int64, email string) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseEvent: newBaseEvent(EventTypeUserRegistered, map[string]interface{}{
			"user_id": userID,
			"email":   email,
		}),
		UserID: userID,
		Email:  email,
	}
}

// RegisterAuditLog writes one audit line per domain event.
func RegisterAuditLog(bus *EventBus, logger *slog.Logger) {
	audit := func(ctx context.Context, event Event) error {
		logger.InfoContext(ctx, "audit",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"occurred_at", event.OccurredAt(),
			"payload", event.Payload())
		return nil
	}

	for _, eventType := range []string{EventTypePermitCreated, EventTypePermitClosed, EventTypeUserRegistered} {
		bus.Subscribe(eventType, audit)
	}
}
