package ws

// Inbound message types
const (
	JoinSpaceEvent  = "join_space"
	LeaveSpaceEvent = "leave_space"
)

// Outbound message types. ChatEvent and MoveEvent are used in both
// directions.
const (
	ConnectionEstablishedEvent = "connection_established"
	SpaceInfoEvent             = "space_info"
	UserJoinedEvent            = "user_joined"
	UserLeftEvent              = "user_left"
	ChatEvent                  = "chat"
	MoveEvent                  = "move"
)
