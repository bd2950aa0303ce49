package event

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"testing"

	"missing-kids/internal/kid"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

// -------------------------
// Mock AMQP channel
// -------------------------

type MockAMQPChannel struct {
	mock.Mock
}

func (m *MockAMQPChannel) PublishWithContext(
	ctx context.Context,
	exchange, key string,
	mandatory, immediate bool,
	msg amqp.Publishing,
) error {
	args := m.Called(ctx, exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

func (m *MockAMQPChannel) Close() error { return nil }

func newTestPublisher(mockCh *MockAMQPChannel) *RabbitPublisher {
	return &RabbitPublisher{
		conn:       nil,
		ch:         mockCh,
		exchange:   "kids.sync",
		routingKey: "kid.updated",
		logger:     log.New(io.Discard, "", 0),
	}
}

// -------------------------
// Tests
// -------------------------

func TestPublishKidUpdated_PublishesCorrectly(t *testing.T) {
	mockCh := &MockAMQPChannel{}
	pub := newTestPublisher(mockCh)

	mockCh.
		On("PublishWithContext",
			mock.Anything,
			"kids.sync",
			"kid.updated",
			false,
			false,
			mock.MatchedBy(func(msg amqp.Publishing) bool {
				return msg.DeliveryMode == amqp.Persistent &&
					msg.ContentType == "application/json" &&
					msg.MessageId == "kid-1001"
			}),
		).
		Return(nil).
		Once()

	err := pub.PublishKidUpdated(context.Background(), &kid.Kid{CaseID: 1001, Name: "Ann Lee"})
	require.NoError(t, err)

	mockCh.AssertExpectations(t)
}

func TestPublishKidUpdated_JSONContainsKid(t *testing.T) {
	mockCh := &MockAMQPChannel{}
	pub := newTestPublisher(mockCh)

	var capturedMsg amqp.Publishing

	mockCh.
		On("PublishWithContext",
			mock.Anything,
			"kids.sync",
			"kid.updated",
			false,
			false,
			mock.IsType(amqp.Publishing{}),
		).
		Return(nil).
		Run(func(args mock.Arguments) {
			capturedMsg = args.Get(5).(amqp.Publishing)
		})

	err := pub.PublishKidUpdated(context.Background(), &kid.Kid{CaseID: 1234, Name: "John Q. Public", State: "Texas"})
	require.NoError(t, err)

	var msg KidUpdatedMessage
	require.NoError(t, json.Unmarshal(capturedMsg.Body, &msg))

	assert.Equal(t, "kid.updated", msg.Event)
	assert.Equal(t, int64(1234), msg.Kid.CaseID)
	assert.Equal(t, "John Q. Public", msg.Kid.Name)
	assert.Equal(t, "Texas", msg.Kid.State)
	assert.False(t, msg.Timestamp.IsZero())
	assert.Contains(t, string(capturedMsg.Body), `"caseId":1234`)
}

func TestPublishKidUpdated_ErrorBubbles(t *testing.T) {
	mockCh := &MockAMQPChannel{}
	pub := newTestPublisher(mockCh)

	publishErr := errors.New("boom")

	mockCh.
		On("PublishWithContext",
			mock.Anything,
			mock.Anything,
			mock.Anything,
			mock.Anything,
			mock.Anything,
			mock.Anything,
		).
		Return(publishErr)

	err := pub.PublishKidUpdated(context.Background(), &kid.Kid{})
	require.Error(t, err)
	require.Equal(t, publishErr, err)
}

func TestPublishKidUpdated_ContextCancel(t *testing.T) {
	mockCh := &MockAMQPChannel{}
	pub := newTestPublisher(mockCh)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := pub.PublishKidUpdated(ctx, &kid.Kid{})
	require.Error(t, err)
	require.Equal(t, context.Canceled, err)
	mockCh.AssertNotCalled(t, "PublishWithContext",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestChangeEvent_DecodesFullDocument(t *testing.T) {
	tests := []struct {
		name   string
		event  bson.M
		wantOK bool
		wantID int64
	}{
		{"int64 case id", bson.M{"operationType": "insert", "fullDocument": bson.M{"caseId": int64(1001), "name": "Ann Lee"}}, true, 1001},
		{"int32 case id", bson.M{"operationType": "update", "fullDocument": bson.M{"caseId": int32(7)}}, true, 7},
		{"document gone", bson.M{"operationType": "update", "fullDocument": nil}, false, 0},
		{"no full document", bson.M{"operationType": "replace", "documentKey": bson.M{"_id": "x"}}, false, 0},
		{"missing case id", bson.M{"operationType": "insert", "fullDocument": bson.M{"name": "x"}}, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := bson.Marshal(tt.event)
			require.NoError(t, err)

			var ev changeEvent
			require.NoError(t, bson.Unmarshal(raw, &ev))

			k, ok := ev.changedKid()
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantID, k.CaseID)
			}
		})
	}
}
