package controller

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/GareBear99/admension/pkg/ingest"
)

// maxEventBody bounds a single tracker POST. Real envelopes are tiny.
const maxEventBody = 16 << 10

// HandleEvent accepts one tracker envelope. Accepted events are buffered and
// acknowledged with 202; the batch writer lands them shortly after.
func (c *Controller) HandleEvent(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)

	decision := c.App.Limiter.Allow(r.Context(), ip)
	if !decision.Allowed {
		w.Header().Set("Retry-After", strconv.Itoa(int(decision.RetryAfter.Seconds())))
		writeJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"error":           "rate limit exceeded",
			"retry_after":     int(decision.RetryAfter.Seconds()),
			"violation_count": decision.Violations,
		})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxEventBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	imp, err := ingest.ParseEnvelope(body, time.Now())
	if err != nil {
		c.App.Logger.Debug("Dropping malformed envelope", zap.String("ip", ip), zap.Error(err))
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !c.App.Writer.Enqueue(imp) {
		writeError(w, http.StatusServiceUnavailable, "ingest buffer full")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// HandleLimitStatus reports the rate-limit state for an IP without counting
// against its budget.
func (c *Controller) HandleLimitStatus(w http.ResponseWriter, r *http.Request) {
	ip := mux.Vars(r)["ip"]
	if ip == "" {
		writeError(w, http.StatusBadRequest, "missing ip")
		return
	}

	decision, err := c.App.Limiter.Status(r.Context(), ip)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "status lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ip":              ip,
		"blocked":         !decision.Allowed,
		"retry_after":     int(decision.RetryAfter.Seconds()),
		"violation_count": decision.Violations,
	})
}
