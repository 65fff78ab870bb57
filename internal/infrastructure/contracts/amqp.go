package contracts

// AmqpMessage is the envelope every message on the presence exchange uses.
type AmqpMessage struct {
	OwnerID string `json:"ownerId"`
	Data    []byte `json:"data"`
}

// Routing keys
const (
	EventConnectionOpened = "connection.opened"
	EventConnectionClosed = "connection.closed"
	EventMemberJoined     = "member.joined"
	EventMemberLeft       = "member.left"
	EventMemberPruned     = "member.pruned"
)

// PresenceRoutingKeys lists every key bound to the presence queue.
var PresenceRoutingKeys = []string{
	EventConnectionOpened,
	EventConnectionClosed,
	EventMemberJoined,
	EventMemberLeft,
	EventMemberPruned,
}
