package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hilthontt/metaverse/internal/domain"
	"github.com/hilthontt/metaverse/internal/infrastructure/contracts"
	"github.com/hilthontt/metaverse/internal/infrastructure/events"
	"github.com/hilthontt/metaverse/internal/infrastructure/logging"
	"github.com/hilthontt/metaverse/internal/infrastructure/messaging"
	"github.com/hilthontt/metaverse/internal/mocks"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestPresencePublisher_ForwardsEvents(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockBroker := mocks.NewMockMessagePublisher(ctrl)
	publisher := events.NewPresencePublisher(mockBroker, logging.NewNop(), 8)

	event := domain.NewPresenceEvent(domain.EventMemberJoined, "7", "lobby", 2)

	// Given
	mockBroker.EXPECT().
		PublishMessage(gomock.Any(), contracts.EventMemberJoined, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, msg contracts.AmqpMessage) error {
			req.Equal("7", msg.OwnerID)

			var payload messaging.PresenceEventData
			req.NoError(json.Unmarshal(msg.Data, &payload))
			req.Equal(event.ID, payload.Event.ID)
			req.Equal(domain.SpaceID("lobby"), payload.Event.SpaceID)
			req.Equal(2, payload.Event.MemberCount)
			return nil
		}).Times(1)

	// When
	publisher.Publish(context.Background(), event)

	// Then Close flushes the buffered event before returning
	publisher.Close()
	req.Equal(int64(0), publisher.Dropped())
}

func TestPresencePublisher_BrokerErrorIsSwallowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockBroker := mocks.NewMockMessagePublisher(ctrl)
	publisher := events.NewPresencePublisher(mockBroker, logging.NewNop(), 8)

	mockBroker.EXPECT().
		PublishMessage(gomock.Any(), contracts.EventMemberLeft, gomock.Any()).
		Return(errors.New("channel closed")).
		Times(1)

	publisher.Publish(context.Background(), domain.NewPresenceEvent(domain.EventMemberLeft, "7", "lobby", 0))
	publisher.Close()
}

func TestPresencePublisher_DropsWhenFull(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockBroker := mocks.NewMockMessagePublisher(ctrl)

	started := make(chan struct{})
	release := make(chan struct{})

	// Given a broker that blocks on the first event
	first := mockBroker.EXPECT().
		PublishMessage(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string, contracts.AmqpMessage) error {
			close(started)
			<-release
			return nil
		}).Times(1)
	mockBroker.EXPECT().
		PublishMessage(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil).
		After(first).
		Times(1)

	publisher := events.NewPresencePublisher(mockBroker, logging.NewNop(), 1)
	publisher.Publish(context.Background(), domain.NewPresenceEvent(domain.EventMemberJoined, "1", "a", 1))
	<-started

	// When the single buffer slot is taken and a third event arrives
	publisher.Publish(context.Background(), domain.NewPresenceEvent(domain.EventMemberJoined, "2", "a", 2))
	publisher.Publish(context.Background(), domain.NewPresenceEvent(domain.EventMemberJoined, "3", "a", 3))

	// Then the third one is dropped
	req.Equal(int64(1), publisher.Dropped())

	close(release)
	publisher.Close()
}

func TestPresencePublisher_PublishAfterCloseIsNoop(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockBroker := mocks.NewMockMessagePublisher(ctrl)
	publisher := events.NewPresencePublisher(mockBroker, logging.NewNop(), 4)
	publisher.Close()

	publisher.Publish(context.Background(), domain.NewPresenceEvent(domain.EventMemberJoined, "1", "a", 1))
	publisher.Close()
}
