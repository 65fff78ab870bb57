package messaging

import "github.com/hilthontt/metaverse/internal/domain"

const (
	PresenceQueue   = "presence"
	DeadLetterQueue = "dead_letter_queue"
)

type PresenceEventData struct {
	Event domain.PresenceEvent `json:"event"`
}
