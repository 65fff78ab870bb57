package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -destination=../mocks/mock_presence_publisher.go -package=mocks . PresenceEventPublisher

type PresenceEventType string

const (
	EventConnectionOpened PresenceEventType = "connection.opened"
	EventConnectionClosed PresenceEventType = "connection.closed"
	EventMemberJoined     PresenceEventType = "member.joined"
	EventMemberLeft       PresenceEventType = "member.left"
	EventMemberPruned     PresenceEventType = "member.pruned"
)

// PresenceEvent is a best-effort notification about a presence change.
// Losing one never affects in-process delivery.
type PresenceEvent struct {
	ID          string            `json:"id"`
	Type        PresenceEventType `json:"type"`
	UserID      UserID            `json:"userId"`
	SpaceID     SpaceID           `json:"spaceId,omitempty"`
	MemberCount int               `json:"memberCount"`
	OccurredAt  time.Time         `json:"occurredAt"`
}

type PresenceEventPublisher interface {
	Publish(ctx context.Context, event PresenceEvent)
}

func NewPresenceEvent(eventType PresenceEventType, userID UserID, spaceID SpaceID, memberCount int) PresenceEvent {
	return PresenceEvent{
		ID:          uuid.NewString(),
		Type:        eventType,
		UserID:      userID,
		SpaceID:     spaceID,
		MemberCount: memberCount,
		OccurredAt:  time.Now().UTC(),
	}
}
