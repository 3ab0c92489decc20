package ingest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/GareBear99/admension/pkg/db"
	"github.com/GareBear99/admension/pkg/db/models/events"
)

type captureStore struct {
	mu       sync.Mutex
	inserted []*events.Impression
}

func (s *captureStore) DatabaseName() string { return "events_test" }

func (s *captureStore) InsertImpressions(_ context.Context, impressions []*events.Impression) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inserted = append(s.inserted, impressions...)
	return nil
}

func (s *captureStore) ImpressionsForPeriod(context.Context, time.Time, time.Time) ([]events.Impression, error) {
	return nil, nil
}

func (s *captureStore) BillableUnitCounts(context.Context, time.Time, time.Time) ([]db.UnitCount, error) {
	return nil, nil
}

func (s *captureStore) PruneOldImpressions(context.Context, time.Duration) error { return nil }
func (s *captureStore) Ping(context.Context) error                               { return nil }
func (s *captureStore) Close() error                                             { return nil }

func (s *captureStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inserted)
}

func TestWriterFlushesOnShutdown(t *testing.T) {
	store := &captureStore{}
	w := NewWriter(zaptest.NewLogger(t), store)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	for i := 0; i < 25; i++ {
		require.True(t, w.Enqueue(&events.Impression{EventType: "ad_viewable"}))
	}
	cancel()
	<-done

	require.Equal(t, 25, store.count())
}

func TestWriterFlushesWhenBatchFills(t *testing.T) {
	store := &captureStore{}
	w := NewWriter(zaptest.NewLogger(t), store)
	w.batchSize = 10
	w.flushInterval = time.Hour // only the size trigger should fire

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	for i := 0; i < 10; i++ {
		w.Enqueue(&events.Impression{EventType: "ad_request"})
	}

	require.Eventually(t, func() bool { return store.count() == 10 }, 2*time.Second, 10*time.Millisecond)
}
