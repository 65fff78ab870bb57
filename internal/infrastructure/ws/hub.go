package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/hilthontt/metaverse/internal/domain"
	"github.com/hilthontt/metaverse/internal/infrastructure/logging"
	"github.com/hilthontt/metaverse/internal/infrastructure/metrics"
)

// Hub is the broadcast engine. It owns the registry and the membership index
// and runs every multi-step change under one lock, so the two indices agree
// and each connection receives messages in the order they were issued.
type Hub struct {
	mu         sync.Mutex
	registry   *Registry
	membership *Membership
	publisher  domain.PresenceEventPublisher
	metrics    *metrics.Presence
	logger     logging.Logger
}

func NewHub(
	registry *Registry,
	membership *Membership,
	publisher domain.PresenceEventPublisher,
	metrics *metrics.Presence,
	logger logging.Logger,
) *Hub {
	return &Hub{
		registry:   registry,
		membership: membership,
		publisher:  publisher,
		metrics:    metrics,
		logger:     logger,
	}
}

// pending is a broadcast still to be delivered. A pending with no envelope
// announces that leaver was pruned; its member list is taken when it is
// delivered so it reflects every prune before it.
type pending struct {
	space    domain.SpaceID
	envelope *Envelope
	leaver   domain.UserID
}

// Connect registers conn for id, closes the connection it supersedes and
// acknowledges the new one.
//
// Every handle that enters the registry publishes connection.opened, and
// exactly one connection.closed on whichever path removes it.
func (h *Hub) Connect(ctx context.Context, id domain.UserID, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	prev := h.registry.Register(id, conn)
	if prev == conn {
		h.sendLocked(ctx, id, NewConnectionEstablished(id))
		return
	}
	if prev != nil {
		_ = prev.Close()
		h.publishClosedLocked(ctx, id)
		h.logger.Info(logging.WebSocket, logging.Connect, "superseded previous connection", map[logging.ExtraKey]any{
			logging.UserID: id.String(),
		})
	}

	h.publisher.Publish(ctx, domain.NewPresenceEvent(domain.EventConnectionOpened, id, "", 0))
	h.sendLocked(ctx, id, NewConnectionEstablished(id))
	h.updateGaugesLocked()
}

// Disconnect tears down conn for id. It does nothing when conn has already
// been replaced by a newer connection.
func (h *Hub) Disconnect(ctx context.Context, id domain.UserID, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.registry.UnregisterConn(id, conn) {
		return
	}

	if space, ok := h.membership.Leave(id); ok {
		h.announceLeftLocked(ctx, id, space)
	}

	h.publishClosedLocked(ctx, id)
	h.updateGaugesLocked()
}

// Join moves id into space, announces it to the space and sends the joiner
// the current member list.
func (h *Hub) Join(ctx context.Context, id domain.UserID, space domain.SpaceID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if prev, moved := h.membership.Join(id, space); moved {
		h.announceLeftLocked(ctx, id, prev)
	}

	members := h.membership.MembersOf(space)
	h.broadcastLocked(ctx, space, NewUserJoined(id, space, members))
	h.sendLocked(ctx, id, NewSpaceInfo(space, h.membership.MembersOf(space)))

	h.publisher.Publish(ctx, domain.NewPresenceEvent(domain.EventMemberJoined, id, space, len(members)))
	h.updateGaugesLocked()

	h.logger.Debug(logging.Presence, logging.Join, "joined space", map[logging.ExtraKey]any{
		logging.UserID:  id.String(),
		logging.SpaceID: space.String(),
	})
}

// Leave removes id from its space and tells the remaining members. It
// reports whether id was in a space.
func (h *Hub) Leave(ctx context.Context, id domain.UserID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	space, ok := h.membership.Leave(id)
	if !ok {
		return false
	}

	h.announceLeftLocked(ctx, id, space)
	h.updateGaugesLocked()
	return true
}

// Broadcast delivers env to every member of space at call time. Members whose
// connection fails are pruned and the rest of their space is told.
func (h *Hub) Broadcast(ctx context.Context, space domain.SpaceID, env *Envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.broadcastLocked(ctx, space, env)
	h.updateGaugesLocked()
}

// SendTo delivers env to id alone. Unregistered identities are skipped.
func (h *Hub) SendTo(ctx context.Context, id domain.UserID, env *Envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sendLocked(ctx, id, env)
	h.updateGaugesLocked()
}

func (h *Hub) MembersOf(space domain.SpaceID) []domain.UserID {
	return h.membership.MembersOf(space)
}

func (h *Hub) SpaceOf(id domain.UserID) (domain.SpaceID, bool) {
	return h.membership.SpaceOf(id)
}

func (h *Hub) Spaces() map[domain.SpaceID]int {
	return h.membership.Spaces()
}

func (h *Hub) ConnectionCount() int {
	return h.registry.Count()
}

// Shutdown closes every live connection. Each session then runs its own
// teardown.
func (h *Hub) Shutdown() int {
	return h.registry.CloseAll()
}

func (h *Hub) announceLeftLocked(ctx context.Context, id domain.UserID, space domain.SpaceID) {
	remaining := h.membership.MembersOf(space)
	h.publisher.Publish(ctx, domain.NewPresenceEvent(domain.EventMemberLeft, id, space, len(remaining)))
	h.broadcastLocked(ctx, space, NewUserLeft(id, space, remaining))
}

func (h *Hub) sendLocked(ctx context.Context, id domain.UserID, env *Envelope) {
	payload, err := encode(env)
	if err != nil {
		h.logEncodeError(env, err)
		return
	}

	if left := h.deliverLocked(ctx, id, env.Type, payload); left != nil {
		h.drainLocked(ctx, []pending{*left})
	}
}

func (h *Hub) broadcastLocked(ctx context.Context, space domain.SpaceID, env *Envelope) {
	h.drainLocked(ctx, []pending{{space: space, envelope: env}})
}

// drainLocked delivers queued broadcasts. Pruning a member queues a
// user_left for its space, so the loop runs until nothing is left.
func (h *Hub) drainLocked(ctx context.Context, queue []pending) {
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		if next.envelope == nil {
			next.envelope = NewUserLeft(next.leaver, next.space, h.membership.MembersOf(next.space))
		}

		payload, err := encode(next.envelope)
		if err != nil {
			h.logEncodeError(next.envelope, err)
			continue
		}

		h.metrics.Broadcasts.Inc()
		for _, member := range h.membership.MembersOf(next.space) {
			if left := h.deliverLocked(ctx, member, next.envelope.Type, payload); left != nil {
				queue = append(queue, *left)
			}
		}
	}
}

// deliverLocked sends payload to id. When id cannot be reached it is removed
// from its space, and the pending user_left for that space is returned.
func (h *Hub) deliverLocked(ctx context.Context, id domain.UserID, eventType string, payload []byte) *pending {
	err := h.registry.Send(id, payload)
	if err == nil {
		h.metrics.Deliveries.WithLabelValues(eventType).Inc()
		return nil
	}

	if errors.Is(err, ErrUnreachable) {
		// The registry already dropped and closed the handle.
		h.publishClosedLocked(ctx, id)
	} else if !errors.Is(err, ErrNotRegistered) {
		return nil
	}

	space, ok := h.membership.Leave(id)
	if !ok {
		return nil
	}

	remaining := h.membership.MembersOf(space)
	h.metrics.Pruned.Inc()
	h.publisher.Publish(ctx, domain.NewPresenceEvent(domain.EventMemberPruned, id, space, len(remaining)))
	h.logger.Warn(logging.Presence, logging.Prune, "pruned unreachable member", map[logging.ExtraKey]any{
		logging.UserID:       id.String(),
		logging.SpaceID:      space.String(),
		logging.ErrorMessage: err.Error(),
	})

	return &pending{space: space, leaver: id}
}

func (h *Hub) publishClosedLocked(ctx context.Context, id domain.UserID) {
	h.publisher.Publish(ctx, domain.NewPresenceEvent(domain.EventConnectionClosed, id, "", 0))
}

func (h *Hub) updateGaugesLocked() {
	h.metrics.Connections.Set(float64(h.registry.Count()))
	h.metrics.Members.Set(float64(h.membership.Len()))
	h.metrics.OccupiedSpaces.Set(float64(h.membership.SpaceCount()))
}

func (h *Hub) logEncodeError(env *Envelope, err error) {
	h.logger.Error(logging.Presence, logging.Broadcast, "failed to encode message", map[logging.ExtraKey]any{
		logging.MessageType:  env.Type,
		logging.ErrorMessage: err.Error(),
	})
}

func encode(env *Envelope) ([]byte, error) {
	return json.Marshal(env)
}
