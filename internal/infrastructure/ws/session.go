package ws

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/hilthontt/metaverse/internal/domain"
	"github.com/hilthontt/metaverse/internal/infrastructure/logging"
	"github.com/hilthontt/metaverse/internal/infrastructure/metrics"
	"github.com/hilthontt/metaverse/internal/infrastructure/ratelimiter"
	"github.com/hilthontt/metaverse/internal/infrastructure/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "metaverse/ws"

// Transport is a connection the session can also read from.
type Transport interface {
	Conn
	ReadMessage() ([]byte, error)
}

type SessionConfig struct {
	// RequireMembership drops chat and move messages for a space the sender
	// is not in.
	RequireMembership bool
}

// Session runs the protocol for one connection, from registration until the
// transport fails.
type Session struct {
	id        string
	userID    domain.UserID
	transport Transport
	hub       *Hub
	limiter   ratelimiter.Limiter
	metrics   *metrics.Presence
	logger    logging.Logger
	cfg       SessionConfig
}

// NewSession builds a session. limiter may be nil to disable inbound
// throttling.
func NewSession(
	userID domain.UserID,
	transport Transport,
	hub *Hub,
	limiter ratelimiter.Limiter,
	metrics *metrics.Presence,
	logger logging.Logger,
	cfg SessionConfig,
) *Session {
	return &Session{
		id:        uuid.NewString(),
		userID:    userID,
		transport: transport,
		hub:       hub,
		limiter:   limiter,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
	}
}

// Run blocks until the transport stops delivering frames or ctx ends. The
// identity is unregistered and removed from its space on every exit path.
func (s *Session) Run(ctx context.Context) {
	s.hub.Connect(ctx, s.userID, s.transport)

	stop := context.AfterFunc(ctx, func() {
		_ = s.transport.Close()
	})

	defer func() {
		stop()
		s.hub.Disconnect(context.WithoutCancel(ctx), s.userID, s.transport)
		_ = s.transport.Close()

		s.logger.Info(logging.WebSocket, logging.Disconnect, "session ended", map[logging.ExtraKey]any{
			logging.UserID:    s.userID.String(),
			logging.SessionID: s.id,
		})
	}()

	s.logger.Info(logging.WebSocket, logging.Connect, "session started", map[logging.ExtraKey]any{
		logging.UserID:    s.userID.String(),
		logging.SessionID: s.id,
	})

	for {
		raw, err := s.transport.ReadMessage()
		if err != nil {
			s.logReadError(err)
			return
		}

		// The bucket belongs to the identity, so reconnecting does not refill it.
		if s.limiter != nil && !s.limiter.Allow(s.userID.String()) {
			s.metrics.ThrottledMessages.Inc()
			s.logger.Debug(logging.WebSocket, logging.Read, "inbound message throttled", map[logging.ExtraKey]any{
				logging.UserID:    s.userID.String(),
				logging.SessionID: s.id,
			})
			continue
		}

		msg, err := DecodeInbound(raw)
		if err != nil {
			s.metrics.MalformedMessages.Inc()
			s.logger.Warn(logging.WebSocket, logging.Decode, "dropping malformed message", map[logging.ExtraKey]any{
				logging.UserID:       s.userID.String(),
				logging.SessionID:    s.id,
				logging.ErrorMessage: err.Error(),
			})
			continue
		}

		s.dispatch(ctx, msg)
	}
}

func (s *Session) dispatch(ctx context.Context, msg InboundMessage) {
	ctx, span := tracing.GetTracer(tracerName).Start(ctx, "ws.dispatch",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("ws.user_id", s.userID.String()),
			attribute.String("ws.session_id", s.id),
		),
	)
	defer span.End()

	switch m := msg.(type) {
	case JoinSpaceMessage:
		s.countInbound(span, JoinSpaceEvent)
		s.hub.Join(ctx, s.userID, m.SpaceID)

	case ChatMessage:
		s.countInbound(span, ChatEvent)
		if s.allowedIn(m.SpaceID) {
			s.hub.Broadcast(ctx, m.SpaceID, NewChat(s.userID, m.SpaceID, m.Message))
		}

	case MoveMessage:
		s.countInbound(span, MoveEvent)
		if s.allowedIn(m.SpaceID) {
			s.hub.Broadcast(ctx, m.SpaceID, NewMove(s.userID, m.SpaceID, m.Position))
		}

	case LeaveSpaceMessage:
		s.countInbound(span, LeaveSpaceEvent)
		s.hub.Leave(ctx, s.userID)

	case UnknownMessage:
		s.countInbound(span, "unknown")
		s.logger.Debug(logging.WebSocket, logging.Dispatch, "ignoring unknown message type", map[logging.ExtraKey]any{
			logging.UserID:      s.userID.String(),
			logging.MessageType: m.Type,
		})
	}
}

func (s *Session) countInbound(span trace.Span, messageType string) {
	span.SetAttributes(attribute.String("ws.message_type", messageType))
	s.metrics.InboundMessages.WithLabelValues(messageType).Inc()
}

func (s *Session) allowedIn(space domain.SpaceID) bool {
	if !s.cfg.RequireMembership {
		return true
	}

	current, ok := s.hub.SpaceOf(s.userID)
	if ok && current == space {
		return true
	}

	s.logger.Debug(logging.Presence, logging.Dispatch, "dropping message for a space the sender is not in", map[logging.ExtraKey]any{
		logging.UserID:  s.userID.String(),
		logging.SpaceID: space.String(),
	})
	return false
}

func (s *Session) logReadError(err error) {
	extra := map[logging.ExtraKey]any{
		logging.UserID:       s.userID.String(),
		logging.SessionID:    s.id,
		logging.ErrorMessage: err.Error(),
	}

	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) && !websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
		s.logger.Debug(logging.WebSocket, logging.Read, "connection closed by peer", extra)
		return
	}

	s.logger.Debug(logging.WebSocket, logging.Read, "read loop ended", extra)
}
