package events

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hilthontt/metaverse/internal/domain"
	"github.com/hilthontt/metaverse/internal/infrastructure/contracts"
	"github.com/hilthontt/metaverse/internal/infrastructure/logging"
	"github.com/hilthontt/metaverse/internal/infrastructure/messaging"
)

//go:generate mockgen -destination=../../mocks/mock_message_publisher.go -package=mocks . MessagePublisher

const publishTimeout = 5 * time.Second

// MessagePublisher is the part of *messaging.RabbitMQ the publisher needs.
type MessagePublisher interface {
	PublishMessage(ctx context.Context, routingKey string, message contracts.AmqpMessage) error
}

// PresencePublisher forwards presence events to the broker from a single
// background goroutine. Publish never blocks: when the buffer is full the
// event is dropped.
type PresencePublisher struct {
	publisher MessagePublisher
	logger    logging.Logger
	queue     chan domain.PresenceEvent
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	dropped   atomic.Int64
}

func NewPresencePublisher(publisher MessagePublisher, logger logging.Logger, bufferSize int) *PresencePublisher {
	if bufferSize <= 0 {
		bufferSize = 1
	}

	p := &PresencePublisher{
		publisher: publisher,
		logger:    logger,
		queue:     make(chan domain.PresenceEvent, bufferSize),
		done:      make(chan struct{}),
	}

	p.wg.Add(1)
	go p.run()

	return p
}

func (p *PresencePublisher) Publish(_ context.Context, event domain.PresenceEvent) {
	select {
	case <-p.done:
		return
	default:
	}

	select {
	case p.queue <- event:
	default:
		p.dropped.Add(1)
		p.logger.Warn(logging.RabbitMQ, logging.Publish, "presence event buffer full, dropping event", map[logging.ExtraKey]any{
			logging.UserID:      event.UserID.String(),
			logging.MessageType: string(event.Type),
		})
	}
}

// Dropped reports how many events were discarded because the buffer was full.
func (p *PresencePublisher) Dropped() int64 {
	return p.dropped.Load()
}

// Close stops accepting events, flushes what is buffered and waits for the
// worker to exit.
func (p *PresencePublisher) Close() {
	p.closeOnce.Do(func() {
		close(p.done)
	})
	p.wg.Wait()
}

func (p *PresencePublisher) run() {
	defer p.wg.Done()

	for {
		select {
		case event := <-p.queue:
			p.publish(event)
		case <-p.done:
			for {
				select {
				case event := <-p.queue:
					p.publish(event)
				default:
					return
				}
			}
		}
	}
}

func (p *PresencePublisher) publish(event domain.PresenceEvent) {
	payload, err := json.Marshal(messaging.PresenceEventData{Event: event})
	if err != nil {
		p.logger.Error(logging.RabbitMQ, logging.Publish, "failed to marshal presence event", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := p.publisher.PublishMessage(ctx, string(event.Type), contracts.AmqpMessage{
		OwnerID: event.UserID.String(),
		Data:    payload,
	}); err != nil {
		p.logger.Error(logging.RabbitMQ, logging.Publish, "failed to publish presence event", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
			logging.MessageType:  string(event.Type),
		})
	}
}
