package publisher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "unique/pkg/platform/audit"
	"unique/pkg/platform/audit/store/memory"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{UserID: "u-1", Action: string(audit.EventTokenIssued)})
	require.NoError(t, err)

	events, err := pub.List(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventTokenIssued), events[0].Action)
	assert.Equal(t, audit.CategoryOperations, events[0].Category)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	for range 10 {
		require.NoError(t, pub.Emit(context.Background(), audit.Event{UserID: "u-1", Action: string(audit.EventCodeIssued)}))
	}

	pub.Close()

	events, err := store.ListByUser(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
}

func TestPublisher_BufferFullDropsWithoutBlocking(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := pub.Emit(context.Background(), audit.Event{UserID: "u-1", Action: string(audit.EventCodeIssued)})
			if err != nil {
				assert.ErrorIs(t, err, ErrBufferFull)
			}
		}()
	}
	wg.Wait()
	pub.Close()

	events, err := store.ListByUser(context.Background(), "u-1")
	require.NoError(t, err)
	assert.NotEmpty(t, events)
	assert.LessOrEqual(t, len(events), 50)
}

func TestPublisher_Timestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	t.Run("sets missing timestamp", func(t *testing.T) {
		before := time.Now()
		require.NoError(t, pub.Emit(context.Background(), audit.Event{UserID: "u-ts", Action: string(audit.EventCodeIssued)}))
		after := time.Now()

		events, err := pub.List(context.Background(), "u-ts")
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.False(t, events[0].Timestamp.Before(before))
		assert.False(t, events[0].Timestamp.After(after))
	})

	t.Run("preserves existing timestamp", func(t *testing.T) {
		custom := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		require.NoError(t, pub.Emit(context.Background(), audit.Event{UserID: "u-custom", Action: string(audit.EventCodeIssued), Timestamp: custom}))

		events, err := pub.List(context.Background(), "u-custom")
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, custom, events[0].Timestamp)
	})
}

func TestPublisher_EmitAfterCloseFails(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore(), WithAsyncBuffer(4))
	pub.Close()
	pub.Close()

	err := pub.Emit(context.Background(), audit.Event{Action: string(audit.EventCodeIssued)})
	assert.Error(t, err)
}

func TestPublisher_CancelledContextInAsyncMode(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore(), WithAsyncBuffer(4))
	defer pub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := pub.Emit(ctx, audit.Event{Action: string(audit.EventCodeIssued)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPublisher_KeepsUsersApart(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	require.NoError(t, pub.Emit(context.Background(), audit.Event{UserID: "u-1", Action: string(audit.EventAuthorizationGranted)}))
	require.NoError(t, pub.Emit(context.Background(), audit.Event{UserID: "u-2", Action: string(audit.EventConsentDenied)}))

	events1, err := pub.List(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, events1, 1)
	assert.Equal(t, audit.CategoryCompliance, events1[0].Category)

	events2, err := pub.List(context.Background(), "u-2")
	require.NoError(t, err)
	require.Len(t, events2, 1)
	assert.Equal(t, string(audit.EventConsentDenied), events2[0].Action)
}
