package presence

import (
	"time"

	"github.com/hilthontt/metaverse/internal/domain"
)

// statsResponse reports live connection and occupancy figures
type statsResponse struct {
	Connections    int             `json:"connections" example:"12"`
	OccupiedSpaces int             `json:"occupied_spaces" example:"3"`
	Spaces         []spaceOccupancy `json:"spaces"`
}

type spaceOccupancy struct {
	SpaceID domain.SpaceID `json:"space_id" swaggertype:"string" example:"lobby"`
	Members int            `json:"members" example:"4"`
}

// spaceMembersResponse lists the identities currently in a space
type spaceMembersResponse struct {
	SpaceID      domain.SpaceID  `json:"space_id" swaggertype:"string" example:"lobby"`
	UsersInSpace []domain.UserID `json:"users_in_space" swaggertype:"array,string"`
}

// userSpaceResponse tells which space a user is in; space_id is null when none
type userSpaceResponse struct {
	UserID  domain.UserID   `json:"user_id" swaggertype:"string" example:"7"`
	SpaceID *domain.SpaceID `json:"space_id" swaggertype:"string" example:"lobby"`
}

// auditLogResponse is one recorded presence change
type auditLogResponse struct {
	ID        string                   `json:"id"`
	EventID   string                   `json:"event_id"`
	EventType domain.PresenceEventType `json:"event_type" swaggertype:"string" example:"member.joined"`
	UserID    domain.UserID            `json:"user_id" swaggertype:"string" example:"7"`
	SpaceID   domain.SpaceID           `json:"space_id,omitempty" swaggertype:"string" example:"lobby"`
	Timestamp time.Time                `json:"timestamp"`
}

type auditLogListResponse struct {
	SpaceID domain.SpaceID     `json:"space_id" swaggertype:"string" example:"lobby"`
	Entries []auditLogResponse `json:"entries"`
}

func toAuditLogResponse(log domain.PresenceAuditLog) auditLogResponse {
	return auditLogResponse{
		ID:        log.ID,
		EventID:   log.EventID,
		EventType: log.EventType,
		UserID:    log.UserID,
		SpaceID:   log.SpaceID,
		Timestamp: log.Timestamp,
	}
}
