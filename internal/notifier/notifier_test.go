package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/dues-ledger/internal/lib/metrics"
	"github.com/magabrotheeeer/dues-ledger/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/dues-ledger/internal/models"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return m.Called(exchange, key, mandatory, immediate, msg).Error(0)
}

func TestNewEvent(t *testing.T) {
	at := time.Date(2025, 3, 15, 10, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	ev := NewEvent(models.EntityObligation, 7, "paid", "admin", at)

	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, models.EntityObligation, ev.EntityType)
	assert.Equal(t, int64(7), ev.EntityID)
	assert.Equal(t, time.UTC, ev.OccurredAt.Location())
	assert.NotEqual(t, ev.ID, NewEvent(models.EntityObligation, 7, "paid", "admin", at).ID)
}

func TestRabbitMQ_Notify(t *testing.T) {
	pub := new(MockPublisher)
	ev := NewEvent(models.EntityObligation, 7, "paid", "admin", time.Now())

	pub.On("Publish", rabbitmq.ChangesExchange, "obligation", false, false, mock.MatchedBy(func(msg amqp.Publishing) bool {
		var got models.ChangeEvent
		if err := json.Unmarshal(msg.Body, &got); err != nil {
			return false
		}
		return msg.MessageId == ev.ID && got.ID == ev.ID && got.NewState == "paid"
	})).Return(nil).Once()

	n := NewRabbitMQ(slog.New(slog.NewTextHandler(io.Discard, nil)), pub)
	n.Notify(context.Background(), ev)

	pub.AssertExpectations(t)
}

func TestRabbitMQ_NotifyFailureIsSwallowed(t *testing.T) {
	pub := new(MockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything, false, false, mock.Anything).
		Return(errors.New("channel closed"))

	var buf bytes.Buffer
	n := NewRabbitMQ(slog.New(slog.NewTextHandler(&buf, nil)), pub)
	before := testutil.ToFloat64(metrics.NotifierFailures.WithLabelValues("ledger_entry"))

	require.NotPanics(t, func() {
		n.Notify(context.Background(), models.ChangeEvent{EntityType: models.EntityLedger, EntityID: 1})
	})

	assert.Contains(t, buf.String(), "failed to publish change event")
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.NotifierFailures.WithLabelValues("ledger_entry")))
}

func TestLog_Notify(t *testing.T) {
	var buf bytes.Buffer
	n := NewLog(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	n.Notify(context.Background(), NewEvent(models.EntityLedger, 3, "income", "treasurer", time.Now()))
	assert.Contains(t, buf.String(), "entity_type=ledger_entry")
}
