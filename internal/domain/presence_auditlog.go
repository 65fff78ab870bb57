package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -destination=../mocks/mock_presence_audit_repository.go -package=mocks . PresenceAuditRepository

var ErrAuditLogUnavailable = errors.New("presence audit log is not configured")

type PresenceAuditLog struct {
	ID        string            `bson:"_id" json:"id"`
	EventID   string            `bson:"event_id" json:"eventId"`
	SpaceID   SpaceID           `bson:"space_id,omitempty" json:"spaceId,omitempty"`
	UserID    UserID            `bson:"user_id" json:"userId"`
	EventType PresenceEventType `bson:"event_type" json:"eventType"`
	Timestamp time.Time         `bson:"timestamp" json:"timestamp"`
	Metadata  map[string]any    `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

type PresenceAuditRepository interface {
	Log(ctx context.Context, log *PresenceAuditLog) error
	GetBySpaceID(ctx context.Context, spaceID SpaceID, limit int) ([]PresenceAuditLog, error)
	DeleteOlderThan(ctx context.Context, before time.Time) error
	EnsureIndexes(ctx context.Context) error
}

func NewPresenceAuditLog(event PresenceEvent) *PresenceAuditLog {
	return &PresenceAuditLog{
		ID:        uuid.NewString(),
		EventID:   event.ID,
		SpaceID:   event.SpaceID,
		UserID:    event.UserID,
		EventType: event.Type,
		Timestamp: event.OccurredAt,
		Metadata: map[string]any{
			"member_count": event.MemberCount,
		},
	}
}
