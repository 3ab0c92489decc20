package ingest

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/GareBear99/admension/pkg/db"
	"github.com/GareBear99/admension/pkg/db/models/events"
	"github.com/GareBear99/admension/pkg/utils"
)

// Writer buffers accepted impressions and lands them in ClickHouse in
// batches. Individual POSTs acknowledge immediately; durability follows
// within one flush interval.
type Writer struct {
	Logger *zap.Logger
	Store  db.EventsStore

	in            chan *events.Impression
	batchSize     int
	flushInterval time.Duration
}

func NewWriter(logger *zap.Logger, store db.EventsStore) *Writer {
	return &Writer{
		Logger:        logger,
		Store:         store,
		in:            make(chan *events.Impression, utils.EnvInt("INGEST_BUFFER", 8192)),
		batchSize:     utils.EnvInt("INGEST_BATCH_SIZE", 500),
		flushInterval: time.Duration(utils.EnvInt("INGEST_FLUSH_MS", 2000)) * time.Millisecond,
	}
}

// Enqueue hands one impression to the writer. It never blocks the request
// path: when the buffer is full the event is dropped and counted in the logs.
func (w *Writer) Enqueue(imp *events.Impression) bool {
	select {
	case w.in <- imp:
		return true
	default:
		w.Logger.Warn("Ingest buffer full, dropping event", zap.String("event_type", imp.EventType))
		return false
	}
}

// Run drains the buffer until ctx is canceled, then flushes what remains.
func (w *Writer) Run(ctx context.Context) {
	ticker := time.NewTicker(w.flushInterval)
	defer ticker.Stop()

	batch := make([]*events.Impression, 0, w.batchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := w.Store.InsertImpressions(flushCtx, batch); err != nil {
			w.Logger.Error("Failed to flush impressions", zap.Int("count", len(batch)), zap.Error(err))
		} else {
			w.Logger.Debug("Flushed impressions", zap.Int("count", len(batch)))
		}
		batch = batch[:0]
	}

	for {
		select {
		case imp := <-w.in:
			batch = append(batch, imp)
			if len(batch) >= w.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-ctx.Done():
			// Drain whatever arrived before shutdown.
			for {
				select {
				case imp := <-w.in:
					batch = append(batch, imp)
				default:
					flush()
					return
				}
			}
		}
	}
}
