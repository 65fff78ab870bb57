package ws

import (
	"encoding/json"

	"github.com/hilthontt/metaverse/internal/domain"
)

// Envelope is one outbound message. Only Data goes on the wire; Sender and
// SpaceID are kept for logging and tracing.
type Envelope struct {
	Type    string
	Sender  domain.UserID
	SpaceID domain.SpaceID
	Data    any
}

func (e *Envelope) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Data)
}

// Payload structs
type ConnectionEstablishedPayload struct {
	Type   string        `json:"type"`
	UserID domain.UserID `json:"user_id"`
}

type SpaceInfoPayload struct {
	Type         string          `json:"type"`
	SpaceID      domain.SpaceID  `json:"space_id"`
	UsersInSpace []domain.UserID `json:"users_in_space"`
}

type MemberPayload struct {
	Type         string          `json:"type"`
	UserID       domain.UserID   `json:"user_id"`
	SpaceID      domain.SpaceID  `json:"space_id"`
	UsersInSpace []domain.UserID `json:"users_in_space"`
}

type ChatPayload struct {
	Type    string          `json:"type"`
	UserID  domain.UserID   `json:"user_id"`
	Message json.RawMessage `json:"message"`
}

type MovePayload struct {
	Type     string          `json:"type"`
	UserID   domain.UserID   `json:"user_id"`
	Position json.RawMessage `json:"position"`
}

func NewConnectionEstablished(userID domain.UserID) *Envelope {
	return &Envelope{
		Type:   ConnectionEstablishedEvent,
		Sender: userID,
		Data: ConnectionEstablishedPayload{
			Type:   ConnectionEstablishedEvent,
			UserID: userID,
		},
	}
}

func NewSpaceInfo(spaceID domain.SpaceID, users []domain.UserID) *Envelope {
	return &Envelope{
		Type:    SpaceInfoEvent,
		SpaceID: spaceID,
		Data: SpaceInfoPayload{
			Type:         SpaceInfoEvent,
			SpaceID:      spaceID,
			UsersInSpace: users,
		},
	}
}

func NewUserJoined(userID domain.UserID, spaceID domain.SpaceID, users []domain.UserID) *Envelope {
	return newMemberEnvelope(UserJoinedEvent, userID, spaceID, users)
}

func NewUserLeft(userID domain.UserID, spaceID domain.SpaceID, users []domain.UserID) *Envelope {
	return newMemberEnvelope(UserLeftEvent, userID, spaceID, users)
}

func newMemberEnvelope(eventType string, userID domain.UserID, spaceID domain.SpaceID, users []domain.UserID) *Envelope {
	return &Envelope{
		Type:    eventType,
		Sender:  userID,
		SpaceID: spaceID,
		Data: MemberPayload{
			Type:         eventType,
			UserID:       userID,
			SpaceID:      spaceID,
			UsersInSpace: users,
		},
	}
}

func NewChat(userID domain.UserID, spaceID domain.SpaceID, message json.RawMessage) *Envelope {
	return &Envelope{
		Type:    ChatEvent,
		Sender:  userID,
		SpaceID: spaceID,
		Data: ChatPayload{
			Type:    ChatEvent,
			UserID:  userID,
			Message: message,
		},
	}
}

func NewMove(userID domain.UserID, spaceID domain.SpaceID, position json.RawMessage) *Envelope {
	return &Envelope{
		Type:    MoveEvent,
		Sender:  userID,
		SpaceID: spaceID,
		Data: MovePayload{
			Type:     MoveEvent,
			UserID:   userID,
			Position: position,
		},
	}
}
