package ws

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hilthontt/metaverse/internal/domain"
)

var ErrMalformedMessage = errors.New("malformed message")

// InboundMessage is one decoded client frame. The set of implementations is
// closed: JoinSpaceMessage, ChatMessage, MoveMessage, LeaveSpaceMessage and
// UnknownMessage.
type InboundMessage interface {
	MessageType() string
	inbound()
}

type JoinSpaceMessage struct {
	SpaceID domain.SpaceID
}

type ChatMessage struct {
	SpaceID domain.SpaceID
	Message json.RawMessage
}

type MoveMessage struct {
	SpaceID  domain.SpaceID
	Position json.RawMessage
}

type LeaveSpaceMessage struct{}

// UnknownMessage carries a type this server does not handle. It is ignored.
type UnknownMessage struct {
	Type string
}

func (JoinSpaceMessage) MessageType() string  { return JoinSpaceEvent }
func (ChatMessage) MessageType() string       { return ChatEvent }
func (MoveMessage) MessageType() string       { return MoveEvent }
func (LeaveSpaceMessage) MessageType() string { return LeaveSpaceEvent }
func (m UnknownMessage) MessageType() string  { return m.Type }

func (JoinSpaceMessage) inbound()  {}
func (ChatMessage) inbound()       {}
func (MoveMessage) inbound()       {}
func (LeaveSpaceMessage) inbound() {}
func (UnknownMessage) inbound()    {}

type inboundFrame struct {
	Type     string          `json:"type"`
	SpaceID  json.RawMessage `json:"space_id"`
	Message  json.RawMessage `json:"message"`
	Position json.RawMessage `json:"position"`
}

// DecodeInbound parses a raw frame. Every error it returns wraps
// ErrMalformedMessage.
func DecodeInbound(raw []byte) (InboundMessage, error) {
	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	if frame.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformedMessage)
	}

	switch frame.Type {
	case JoinSpaceEvent:
		spaceID, err := decodeSpaceID(frame.SpaceID)
		if err != nil {
			return nil, err
		}
		return JoinSpaceMessage{SpaceID: spaceID}, nil

	case ChatEvent:
		spaceID, err := decodeSpaceID(frame.SpaceID)
		if err != nil {
			return nil, err
		}
		if isAbsent(frame.Message) {
			return nil, fmt.Errorf("%w: chat without message", ErrMalformedMessage)
		}
		return ChatMessage{SpaceID: spaceID, Message: frame.Message}, nil

	case MoveEvent:
		spaceID, err := decodeSpaceID(frame.SpaceID)
		if err != nil {
			return nil, err
		}
		if isAbsent(frame.Position) {
			return nil, fmt.Errorf("%w: move without position", ErrMalformedMessage)
		}
		return MoveMessage{SpaceID: spaceID, Position: frame.Position}, nil

	case LeaveSpaceEvent:
		return LeaveSpaceMessage{}, nil

	default:
		return UnknownMessage{Type: frame.Type}, nil
	}
}

func decodeSpaceID(raw json.RawMessage) (domain.SpaceID, error) {
	if isAbsent(raw) {
		return "", fmt.Errorf("%w: missing space_id", ErrMalformedMessage)
	}

	var spaceID domain.SpaceID
	if err := json.Unmarshal(raw, &spaceID); err != nil {
		return "", fmt.Errorf("%w: space_id: %v", ErrMalformedMessage, err)
	}

	return spaceID, nil
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
