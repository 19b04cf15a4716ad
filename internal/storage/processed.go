package storage

import (
	"context"
	"fmt"
)

const processedPrefix = "processed:"

// ProcessedEvents records handled event ids in a KeyValue store. It backs
// print-job de-duplication when neither Redis nor SQL is configured.
type ProcessedEvents struct {
	kv KeyValue
}

// NewProcessedEvents creates a tracker over kv
func NewProcessedEvents(kv KeyValue) *ProcessedEvents {
	return &ProcessedEvents{kv: kv}
}

// IsEventProcessed checks if an event has been processed
func (p *ProcessedEvents) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	_, ok, err := p.kv.Get(ctx, processedPrefix+eventID)
	if err != nil {
		return false, fmt.Errorf("failed to check event %s: %w", eventID, err)
	}
	return ok, nil
}

// MarkEventProcessed marks an event as processed
func (p *ProcessedEvents) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	if err := p.kv.Set(ctx, processedPrefix+eventID, eventType); err != nil {
		return fmt.Errorf("failed to mark event %s: %w", eventID, err)
	}
	return nil
}
