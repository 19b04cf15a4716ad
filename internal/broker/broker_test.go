package broker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"pos-service/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestQueuePrinter_PublishesPrintJob(t *testing.T) {
	w := &fakeWriter{}
	printer := NewQueuePrinter(NewEventPublisher(NewProducerWithWriter(w)))

	require.NoError(t, printer.Print(context.Background(), "abc", "RECEIPT"))

	require.Len(t, w.messages, 1)
	assert.Equal(t, "sale-abc", string(w.messages[0].Key))

	var event models.ReceiptPrintRequestedEvent
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &event))
	assert.Equal(t, models.EventTypeReceiptPrintRequested, event.EventType)
	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "abc", event.SaleID)
	assert.Equal(t, "RECEIPT", event.Receipt)
}

func TestProducer_WrapsWriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	publisher := NewEventPublisher(NewProducerWithWriter(w))

	err := publisher.PublishProductRestocked(context.Background(), &models.ProductRestockedEvent{ProductID: 1})
	assert.ErrorContains(t, err, "failed to write message to kafka")
}

func TestEventHandler_Routes(t *testing.T) {
	handler := NewEventHandler()

	var printed *models.ReceiptPrintRequestedEvent
	var sold *models.SaleCompletedEvent
	handler.OnReceiptPrintRequested(func(_ context.Context, e *models.ReceiptPrintRequestedEvent) error {
		printed = e
		return nil
	})
	handler.OnSaleCompleted(func(_ context.Context, e *models.SaleCompletedEvent) error {
		sold = e
		return nil
	})

	printMsg, _ := json.Marshal(models.ReceiptPrintRequestedEvent{
		BaseEvent: models.BaseEvent{EventID: "e1", EventType: models.EventTypeReceiptPrintRequested},
		SaleID:    "s1",
		Receipt:   "text",
	})
	saleMsg, _ := json.Marshal(models.SaleCompletedEvent{
		BaseEvent: models.BaseEvent{EventID: "e2", EventType: models.EventTypeSaleCompleted},
		SaleID:    "s1",
		Total:     100,
	})
	otherMsg, _ := json.Marshal(models.HistoryClearedEvent{
		BaseEvent: models.BaseEvent{EventID: "e3", EventType: models.EventTypeHistoryCleared},
	})

	ctx := context.Background()
	require.NoError(t, handler.HandleMessage(ctx, kafka.Message{Value: printMsg}))
	require.NoError(t, handler.HandleMessage(ctx, kafka.Message{Value: saleMsg}))
	require.NoError(t, handler.HandleMessage(ctx, kafka.Message{Value: otherMsg}))

	require.NotNil(t, printed)
	assert.Equal(t, "text", printed.Receipt)
	require.NotNil(t, sold)
	assert.Equal(t, int64(100), sold.Total)

	assert.Error(t, handler.HandleMessage(ctx, kafka.Message{Value: []byte("{")}))
}
