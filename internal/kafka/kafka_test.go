package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockWriter struct {
	mock.Mock
}

func (m *MockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockWriter) Close() error {
	return m.Called().Error(0)
}

type MockReader struct {
	mock.Mock
}

func (m *MockReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	args := m.Called(ctx)
	return args.Get(0).(kafka.Message), args.Error(1)
}

func (m *MockReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockReader) Close() error {
	return m.Called().Error(0)
}

func sampleEvent() domain.RideEvent {
	return domain.RideEvent{
		Kind:       domain.EventRideUpdated,
		Type:       domain.UpdateAccept,
		RideID:     "ride-1",
		RequestID:  "req-1",
		RiderID:    "rider-1",
		DriverID:   "driver-1",
		ActorID:    "driver-1",
		Seats:      2,
		OccurredAt: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestProducer_PublishKeysByRide(t *testing.T) {
	ctx := context.Background()
	writer := &MockWriter{}
	writer.On("WriteMessages", ctx, mock.MatchedBy(func(msgs []kafka.Message) bool {
		if len(msgs) != 1 || string(msgs[0].Key) != "ride-1" {
			return false
		}
		var got domain.RideEvent
		return json.Unmarshal(msgs[0].Value, &got) == nil && got.RequestID == "req-1" && got.Type == domain.UpdateAccept
	})).Return(nil).Once()

	err := newProducer([]string{"localhost:9092"}, "ride-events", writer, nil).Publish(ctx, sampleEvent())

	require.NoError(t, err)
	writer.AssertExpectations(t)
}

func TestProducer_PublishError(t *testing.T) {
	ctx := context.Background()
	writer := &MockWriter{}
	writer.On("WriteMessages", ctx, mock.Anything).Return(errors.New("leader not available")).Once()

	err := newProducer(nil, "ride-events", writer, nil).Publish(ctx, sampleEvent())
	assert.ErrorContains(t, err, "leader not available")
}

func TestConsumer_HandlesAndCommits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	payload, err := json.Marshal(sampleEvent())
	require.NoError(t, err)
	good := kafka.Message{Offset: 1, Value: payload}
	bad := kafka.Message{Offset: 2, Value: []byte("{not json")}

	reader := &MockReader{}
	reader.On("FetchMessage", ctx).Return(good, nil).Once()
	reader.On("FetchMessage", ctx).Return(bad, nil).Once()
	reader.On("FetchMessage", ctx).Return(kafka.Message{}, context.Canceled).Once()
	reader.On("CommitMessages", ctx, []kafka.Message{good}).Return(nil).Once()
	reader.On("CommitMessages", ctx, []kafka.Message{bad}).Return(nil).Once()

	var handled []domain.RideEvent
	err = newConsumer(reader, nil).Consume(ctx, func(_ context.Context, e domain.RideEvent) error {
		handled = append(handled, e)
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, handled, 1)
	assert.Equal(t, "req-1", handled[0].RequestID)
	reader.AssertExpectations(t)
}

func TestConsumer_HandlerErrorSkipsCommit(t *testing.T) {
	ctx := context.Background()
	payload, err := json.Marshal(sampleEvent())
	require.NoError(t, err)

	reader := &MockReader{}
	reader.On("FetchMessage", ctx).Return(kafka.Message{Value: payload}, nil).Once()

	boom := errors.New("store down")
	err = newConsumer(reader, nil).Consume(ctx, func(context.Context, domain.RideEvent) error { return boom })

	assert.ErrorIs(t, err, boom)
	reader.AssertNotCalled(t, "CommitMessages", mock.Anything, mock.Anything)
}
