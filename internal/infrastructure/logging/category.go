package logging

type Category string
type SubCategory string
type ExtraKey string

const (
	General         Category = "General"
	IO              Category = "IO"
	Internal        Category = "Internal"
	WebSocket       Category = "WebSocket"
	Presence        Category = "Presence"
	RabbitMQ        Category = "RabbitMQ"
	MongoDB         Category = "MongoDB"
	Validation      Category = "Validation"
	RequestResponse Category = "RequestResponse"
	Prometheus      Category = "Prometheus"
)

const (
	// General
	Startup         SubCategory = "Startup"
	Shutdown        SubCategory = "Shutdown"
	RateLimiting    SubCategory = "RateLimiting"
	ExternalService SubCategory = "ExternalService"

	// WebSocket
	Upgrade    SubCategory = "Upgrade"
	Connect    SubCategory = "Connect"
	Disconnect SubCategory = "Disconnect"
	Read       SubCategory = "Read"
	Write      SubCategory = "Write"
	Decode     SubCategory = "Decode"

	// Presence
	Join      SubCategory = "Join"
	Leave     SubCategory = "Leave"
	Broadcast SubCategory = "Broadcast"
	Prune     SubCategory = "Prune"
	Dispatch  SubCategory = "Dispatch"

	// Messaging
	Publish SubCategory = "Publish"
	Consume SubCategory = "Consume"
)

const (
	AppName      ExtraKey = "AppName"
	LoggerName   ExtraKey = "Logger"
	ClientIp     ExtraKey = "ClientIp"
	Method       ExtraKey = "Method"
	StatusCode   ExtraKey = "StatusCode"
	Path         ExtraKey = "Path"
	Latency      ExtraKey = "Latency"
	ErrorMessage ExtraKey = "ErrorMessage"
	UserID       ExtraKey = "UserId"
	SpaceID      ExtraKey = "SpaceId"
	SessionID    ExtraKey = "SessionId"
	MessageType  ExtraKey = "MessageType"
	Recipients   ExtraKey = "Recipients"
)
