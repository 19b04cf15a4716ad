package store

import (
	"context"
	"time"
)

// ProcessedEvent for idempotency
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}

// IsEventProcessed checks if an event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(1) FROM processed_events WHERE event_id = $1", eventID)
	return count > 0, err
}

// MarkEventProcessed marks an event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}

// ListProcessedEvents returns handled events, newest first
func (s *Store) ListProcessedEvents(ctx context.Context, limit int) ([]ProcessedEvent, error) {
	var events []ProcessedEvent
	err := s.db.SelectContext(ctx, &events,
		"SELECT event_id, event_type, processed_at FROM processed_events ORDER BY processed_at DESC LIMIT $1", limit)
	return events, err
}
