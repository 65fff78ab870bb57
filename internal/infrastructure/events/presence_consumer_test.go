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

func encodeEvent(t *testing.T, event domain.PresenceEvent) []byte {
	t.Helper()

	data, err := json.Marshal(messaging.PresenceEventData{Event: event})
	require.NoError(t, err)

	body, err := json.Marshal(contracts.AmqpMessage{OwnerID: event.UserID.String(), Data: data})
	require.NoError(t, err)

	return body
}

func TestPresenceConsumer_Handle(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockPresenceAuditRepository(ctrl)
	consumer := events.NewPresenceConsumer(nil, mockRepo, logging.NewNop())
	event := domain.NewPresenceEvent(domain.EventMemberPruned, "42", "garden", 3)

	t.Run("writes an audit record", func(t *testing.T) {
		mockRepo.EXPECT().
			Log(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, log *domain.PresenceAuditLog) error {
				req.Equal(event.ID, log.EventID)
				req.Equal(domain.UserID("42"), log.UserID)
				req.Equal(domain.SpaceID("garden"), log.SpaceID)
				req.Equal(domain.EventMemberPruned, log.EventType)
				req.NotEmpty(log.ID)
				return nil
			}).Times(1)

		req.NoError(consumer.Handle(context.Background(), encodeEvent(t, event)))
	})

	t.Run("repository error is returned", func(t *testing.T) {
		mockRepo.EXPECT().Log(gomock.Any(), gomock.Any()).Return(errors.New("mongo down")).Times(1)

		err := consumer.Handle(context.Background(), encodeEvent(t, event))
		req.Error(err)
		req.Contains(err.Error(), "mongo down")
	})

	t.Run("garbage body is rejected", func(t *testing.T) {
		req.Error(consumer.Handle(context.Background(), []byte("{not json")))
	})
}
