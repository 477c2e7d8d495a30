package publisher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "impactledger/pkg/domain"
	audit "impactledger/pkg/platform/audit"
	"impactledger/pkg/platform/audit/store/memory"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{
		Action:     audit.ActionDelegateRegistered,
		DelegateID: 1,
	})
	require.NoError(t, err)

	events, err := store.ListByDelegate(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionDelegateRegistered, events[0].Action)
	assert.NotEmpty(t, events[0].ID)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	for range 10 {
		err := pub.Emit(context.Background(), audit.Event{
			Action:     audit.ActionCredentialIssued,
			DelegateID: 1,
		})
		require.NoError(t, err)
	}

	// Close should drain all events
	pub.Close()

	events, err := store.ListByDelegate(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
}

func TestPublisher_BufferFull(t *testing.T) {
	blocking := &blockingStore{release: make(chan struct{})}
	pub := NewPublisher(blocking, WithAsyncBuffer(1))

	// First event is taken by the worker and blocks; the second fills the buffer.
	require.NoError(t, pub.Emit(context.Background(), audit.Event{DelegateID: 1}))
	require.Eventually(t, func() bool { return blocking.started.Load() }, time.Second, 5*time.Millisecond)
	require.NoError(t, pub.Emit(context.Background(), audit.Event{DelegateID: 2}))

	err := pub.Emit(context.Background(), audit.Event{DelegateID: 3})
	assert.ErrorIs(t, err, ErrBufferFull)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = pub.Emit(ctx, audit.Event{DelegateID: 4})
	assert.ErrorIs(t, err, context.Canceled)

	close(blocking.release)
	pub.Close()
}

func TestPublisher_SetsTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	before := time.Now()
	require.NoError(t, pub.Emit(context.Background(), audit.Event{DelegateID: 1}))
	after := time.Now()

	events, err := store.ListByDelegate(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.False(t, events[0].Timestamp.Before(before), "timestamp should be >= before")
	assert.False(t, events[0].Timestamp.After(after), "timestamp should be <= after")
}

func TestPublisher_PreservesExistingTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	customTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, pub.Emit(context.Background(), audit.Event{DelegateID: 1, Timestamp: customTime}))

	events, err := store.ListByDelegate(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, customTime, events[0].Timestamp)
}

func TestPublisher_AsyncErrorHook(t *testing.T) {
	var mu sync.Mutex
	var failed []id.DelegateID
	pub := NewPublisher(errStore{}, WithAsyncBuffer(4), WithErrorHook(func(e audit.Event, _ error) {
		mu.Lock()
		defer mu.Unlock()
		failed = append(failed, e.DelegateID)
	}))

	require.NoError(t, pub.Emit(context.Background(), audit.Event{DelegateID: 5}))
	pub.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []id.DelegateID{5}, failed)
}

func TestPublisher_EmitAfterClose(t *testing.T) {
	for name, opts := range map[string][]Option{
		"sync":  nil,
		"async": {WithAsyncBuffer(4)},
	} {
		t.Run(name, func(t *testing.T) {
			store := memory.NewInMemoryStore()
			pub := NewPublisher(store, opts...)
			pub.Close()
			pub.Close()

			var err error
			assert.NotPanics(t, func() {
				err = pub.Emit(context.Background(), audit.Event{DelegateID: 1})
			})
			assert.ErrorIs(t, err, ErrClosed)

			events, listErr := store.ListByDelegate(context.Background(), 1)
			require.NoError(t, listErr)
			assert.Empty(t, events)
		})
	}
}

func TestPublisher_ConcurrentEmitAndClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(16))

	var accepted atomic.Int64
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				err := pub.Emit(context.Background(), audit.Event{DelegateID: 1})
				if err == nil {
					accepted.Add(1)
					continue
				}
				if !errors.Is(err, ErrClosed) && !errors.Is(err, ErrBufferFull) {
					t.Errorf("unexpected emit error: %v", err)
				}
			}
		}()
	}
	pub.Close()
	wg.Wait()

	events, err := store.ListByDelegate(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, events, int(accepted.Load()), "every accepted event is persisted before Close returns")
}

type errStore struct{}

func (errStore) Append(context.Context, audit.Event) error { return errors.New("unavailable") }

type blockingStore struct {
	started atomic.Bool
	release chan struct{}
}

func (s *blockingStore) Append(context.Context, audit.Event) error {
	s.started.Store(true)
	<-s.release
	return nil
}
