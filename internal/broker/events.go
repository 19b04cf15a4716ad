package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pos-service/internal/models"
	"pos-service/internal/util"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishSaleCompleted publishes SaleCompleted event
func (ep *EventPublisher) PublishSaleCompleted(ctx context.Context, event *models.SaleCompletedEvent) error {
	return ep.producer.PublishEvent(ctx, saleKey(event.SaleID), event)
}

// PublishProductRestocked publishes ProductRestocked event
func (ep *EventPublisher) PublishProductRestocked(ctx context.Context, event *models.ProductRestockedEvent) error {
	return ep.producer.PublishEvent(ctx, productKey(event.ProductID), event)
}

// PublishProductAdded publishes ProductAdded event
func (ep *EventPublisher) PublishProductAdded(ctx context.Context, event *models.ProductAddedEvent) error {
	return ep.producer.PublishEvent(ctx, productKey(event.Product.ID), event)
}

// PublishHistoryCleared publishes HistoryCleared event
func (ep *EventPublisher) PublishHistoryCleared(ctx context.Context, event *models.HistoryClearedEvent) error {
	return ep.producer.PublishEvent(ctx, "sales-history", event)
}

// PublishReceiptPrintRequested publishes ReceiptPrintRequested event
func (ep *EventPublisher) PublishReceiptPrintRequested(ctx context.Context, event *models.ReceiptPrintRequestedEvent) error {
	return ep.producer.PublishEvent(ctx, saleKey(event.SaleID), event)
}

func saleKey(saleID string) string {
	return fmt.Sprintf("sale-%s", saleID)
}

func productKey(productID int64) string {
	return fmt.Sprintf("product-%d", productID)
}

// QueuePrinter hands receipts to the print worker through the broker
type QueuePrinter struct {
	publisher *EventPublisher
}

// NewQueuePrinter creates a printer that enqueues print jobs
func NewQueuePrinter(publisher *EventPublisher) *QueuePrinter {
	return &QueuePrinter{publisher: publisher}
}

// Print enqueues a print job for the receipt
func (qp *QueuePrinter) Print(ctx context.Context, saleID, receipt string) error {
	event := &models.ReceiptPrintRequestedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeReceiptPrintRequested,
			Timestamp: time.Now(),
		},
		SaleID:  saleID,
		Receipt: receipt,
	}
	return qp.publisher.PublishReceiptPrintRequested(ctx, event)
}

// EventHandler handles incoming events
type EventHandler struct {
	onReceiptPrintRequested func(context.Context, *models.ReceiptPrintRequestedEvent) error
	onSaleCompleted         func(context.Context, *models.SaleCompletedEvent) error
	logger                  *zap.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{logger: util.GetLogger()}
}

// OnReceiptPrintRequested registers a handler for ReceiptPrintRequested events
func (eh *EventHandler) OnReceiptPrintRequested(handler func(context.Context, *models.ReceiptPrintRequestedEvent) error) {
	eh.onReceiptPrintRequested = handler
}

// OnSaleCompleted registers a handler for SaleCompleted events
func (eh *EventHandler) OnSaleCompleted(handler func(context.Context, *models.SaleCompletedEvent) error) {
	eh.onSaleCompleted = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	eh.logger.Debug("Handling event",
		zap.String("type", baseEvent.EventType),
		zap.String("id", baseEvent.EventID))

	switch baseEvent.EventType {
	case models.EventTypeReceiptPrintRequested:
		if eh.onReceiptPrintRequested != nil {
			var event models.ReceiptPrintRequestedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal ReceiptPrintRequested event: %w", err)
			}
			return eh.onReceiptPrintRequested(ctx, &event)
		}

	case models.EventTypeSaleCompleted:
		if eh.onSaleCompleted != nil {
			var event models.SaleCompletedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal SaleCompleted event: %w", err)
			}
			return eh.onSaleCompleted(ctx, &event)
		}
	}

	return nil
}
