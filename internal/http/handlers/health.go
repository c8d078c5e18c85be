package handlers

import (
	"context"
	"net/http"
	"time"
)

// Health reports reachability of the metadata store (with round-trip
// latency) and the blob store.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	dbStatus := "ok"
	var latencyMs float64
	if latency, err := a.Videos.Ping(ctx); err != nil {
		dbStatus = "unavailable"
		status = http.StatusServiceUnavailable
	} else {
		latencyMs = float64(latency.Microseconds()) / 1000
	}

	storageStatus := "ok"
	if err := a.Blobs.Ping(ctx); err != nil {
		storageStatus = "unavailable"
		status = http.StatusServiceUnavailable
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	a.json(w, status, map[string]any{
		"status": overall,
		"database": map[string]any{
			"status":     dbStatus,
			"latency_ms": latencyMs,
		},
		"storage": map[string]any{
			"status": storageStatus,
		},
	})
}
