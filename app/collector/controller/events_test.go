package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/GareBear99/admension/app/collector/types"
	"github.com/GareBear99/admension/pkg/db"
	"github.com/GareBear99/admension/pkg/db/models/events"
	"github.com/GareBear99/admension/pkg/ingest"
)

type allowAllLimiter struct{}

func (allowAllLimiter) Allow(context.Context, string) ingest.Decision {
	return ingest.Decision{Allowed: true}
}

func (allowAllLimiter) Status(context.Context, string) (ingest.Decision, error) {
	return ingest.Decision{Allowed: true}, nil
}

type blockedLimiter struct{}

func (blockedLimiter) Allow(context.Context, string) ingest.Decision {
	return ingest.Decision{RetryAfter: 5 * time.Minute, Violations: 2}
}

func (blockedLimiter) Status(context.Context, string) (ingest.Decision, error) {
	return ingest.Decision{RetryAfter: 5 * time.Minute, Violations: 2}, nil
}

type nullEventsStore struct{}

func (nullEventsStore) DatabaseName() string { return "events_test" }
func (nullEventsStore) InsertImpressions(context.Context, []*events.Impression) error {
	return nil
}
func (nullEventsStore) ImpressionsForPeriod(context.Context, time.Time, time.Time) ([]events.Impression, error) {
	return nil, nil
}
func (nullEventsStore) BillableUnitCounts(context.Context, time.Time, time.Time) ([]db.UnitCount, error) {
	return nil, nil
}
func (nullEventsStore) PruneOldImpressions(context.Context, time.Duration) error { return nil }
func (nullEventsStore) Ping(context.Context) error                               { return nil }
func (nullEventsStore) Close() error                                             { return nil }

func newTestController(t *testing.T, limiter types.RateLimiter) *Controller {
	t.Helper()
	logger := zaptest.NewLogger(t)
	return NewController(&types.App{
		EventsDB: nullEventsStore{},
		Writer:   ingest.NewWriter(logger, nullEventsStore{}),
		Limiter:  limiter,
		Logger:   logger,
	})
}

func TestHandleEventAccepts(t *testing.T) {
	c := newTestController(t, allowAllLimiter{})

	body := `{"type":"ad_viewable","payload":{"utm":{"adm":"abc12"},"viewable":true}}`
	req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body))
	rec := httptest.NewRecorder()
	c.HandleEvent(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Contains(t, rec.Body.String(), "accepted")
}

func TestHandleEventRejectsMalformed(t *testing.T) {
	c := newTestController(t, allowAllLimiter{})

	req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(`{"payload":{}}`))
	rec := httptest.NewRecorder()
	c.HandleEvent(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleEventRateLimited(t *testing.T) {
	c := newTestController(t, blockedLimiter{})

	body := `{"type":"ad_viewable","payload":{}}`
	req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body))
	rec := httptest.NewRecorder()
	c.HandleEvent(rec, req)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "300", rec.Header().Get("Retry-After"))
	require.Contains(t, rec.Body.String(), "violation_count")
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/events", nil)
	req.RemoteAddr = "10.0.0.9:1234"
	require.Equal(t, "10.0.0.9", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	require.Equal(t, "203.0.113.7", clientIP(req))
}
