package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"clipvault/internal/domain"
	"clipvault/internal/service"
)

// EnqueueVideo registers a URL with the sequential submission queue.
// Duplicate URLs that are still pending or running return the existing
// item rather than queueing a second acquisition.
func (a *App) EnqueueVideo(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.URL == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "url required")
		return
	}

	item, err := a.Queue.Enqueue(req.toAcquisition())
	if err != nil {
		if errors.Is(err, domain.ErrQueueFull) {
			a.error(w, http.StatusServiceUnavailable, "queue_full", "too many pending downloads, try again later")
			return
		}
		a.Logger.Error().Err(err).Msg("enqueue failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to enqueue")
		return
	}
	a.json(w, http.StatusAccepted, queueItemDTO(item))
}

// QueueStatus lists all known queue items with their per-item status.
func (a *App) QueueStatus(w http.ResponseWriter, r *http.Request) {
	items := a.Queue.Snapshot()
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, queueItemDTO(item))
	}
	a.json(w, http.StatusOK, map[string]any{"items": out})
}

func queueItemDTO(item service.QueueItem) map[string]any {
	dto := map[string]any{
		"id":          item.ID,
		"url":         item.URL,
		"status":      item.Status,
		"enqueued_at": item.EnqueuedAt,
		"updated_at":  item.UpdatedAt,
	}
	if item.Error != "" {
		dto["error"] = item.Error
	}
	if item.RecordID != "" {
		dto["record_id"] = item.RecordID
	}
	return dto
}
