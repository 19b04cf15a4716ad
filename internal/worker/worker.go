package worker

import (
	"context"
	"fmt"

	"pos-service/internal/broker"
	"pos-service/internal/models"
	"pos-service/internal/receipt"
	"pos-service/internal/util"

	"go.uber.org/zap"
)

// ProcessedEventStore remembers which events were already handled
type ProcessedEventStore interface {
	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID, eventType string) error
}

// PrintWorker drains print jobs from the broker onto a printer
type PrintWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	processed    ProcessedEventStore
	printer      receipt.Printer
	logger       *zap.Logger
}

// NewPrintWorker creates a new print worker
func NewPrintWorker(
	consumer *broker.Consumer,
	processed ProcessedEventStore,
	printer receipt.Printer,
) *PrintWorker {
	w := &PrintWorker{
		consumer:     consumer,
		eventHandler: broker.NewEventHandler(),
		processed:    processed,
		printer:      printer,
		logger:       util.GetLogger(),
	}

	w.eventHandler.OnReceiptPrintRequested(w.HandleReceiptPrintRequested)
	w.eventHandler.OnSaleCompleted(w.HandleSaleCompleted)

	return w
}

// Start starts the worker
func (w *PrintWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting print worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *PrintWorker) Stop() error {
	w.logger.Info("Stopping print worker")
	return w.consumer.Close()
}

// HandleReceiptPrintRequested prints a receipt once per event id
func (w *PrintWorker) HandleReceiptPrintRequested(ctx context.Context, event *models.ReceiptPrintRequestedEvent) error {
	ctx, span := util.StartSpan(ctx, "PrintWorker.HandleReceiptPrintRequested")
	defer span.End()

	processed, err := w.processed.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		w.logger.Info("Event already processed", zap.String("event_id", event.EventID))
		return nil
	}

	if err := w.printer.Print(ctx, event.SaleID, event.Receipt); err != nil {
		util.ReceiptPrintFailedTotal.Inc()
		return fmt.Errorf("failed to print receipt: %w", err)
	}

	if err := w.processed.MarkEventProcessed(ctx, event.EventID, event.EventType); err != nil {
		w.logger.Error("Failed to mark event processed", zap.Error(err))
	}

	w.logger.Info("Receipt printed", zap.String("sale_id", event.SaleID))
	return nil
}

// HandleSaleCompleted writes the sale to the electronic journal
func (w *PrintWorker) HandleSaleCompleted(_ context.Context, event *models.SaleCompletedEvent) error {
	quantity := 0
	for _, line := range event.Items {
		quantity += line.Quantity
	}

	w.logger.Info("Journal",
		zap.String("sale_id", event.SaleID),
		zap.Int64("total", event.Total),
		zap.Int("lines", len(event.Items)),
		zap.Int("quantity", quantity),
		zap.Time("at", event.Timestamp))
	return nil
}
