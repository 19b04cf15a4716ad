package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessedEvents(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	events := NewProcessedEvents(kv)

	done, err := events.IsEventProcessed(ctx, "evt-1")
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, events.MarkEventProcessed(ctx, "evt-1", "RECEIPT_PRINT_REQUESTED"))

	done, err = events.IsEventProcessed(ctx, "evt-1")
	require.NoError(t, err)
	assert.True(t, done)

	v, ok, err := kv.Get(ctx, "processed:evt-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "RECEIPT_PRINT_REQUESTED", v)
}
