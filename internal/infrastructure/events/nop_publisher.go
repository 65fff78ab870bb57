package events

import (
	"context"

	"github.com/hilthontt/metaverse/internal/domain"
)

// NopPublisher discards presence events. It is used when messaging is off.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, domain.PresenceEvent) {}
