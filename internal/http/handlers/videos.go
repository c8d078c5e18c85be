package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"clipvault/internal/domain"
	"clipvault/internal/middleware"
)

type submitRequest struct {
	URL          string `json:"url"`
	VideoQuality string `json:"videoQuality"`
	DownloadMode string `json:"downloadMode"`
	Compress     *bool  `json:"compress"`
}

func (req submitRequest) toAcquisition() domain.AcquisitionRequest {
	compress := true
	if req.Compress != nil {
		compress = *req.Compress
	}
	return domain.AcquisitionRequest{
		URL:      req.URL,
		Quality:  domain.VideoQuality(req.VideoQuality),
		Mode:     domain.DownloadMode(req.DownloadMode),
		Compress: compress,
	}
}

// SubmitVideo runs one acquisition end to end and returns the stored
// record's public projection.
func (a *App) SubmitVideo(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.URL == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "url required")
		return
	}

	log := a.Logger.With().Str("url", req.URL).Logger()
	if a.Geo != nil {
		if country, err := a.Geo.CountryCode(middleware.ClientIP(r)); err == nil && country != "" {
			log = log.With().Str("client_country", country).Logger()
		}
	}
	log.Info().Msg("acquisition submitted")

	result, err := a.Pipeline.Acquire(r.Context(), req.toAcquisition())
	if err != nil {
		a.writeAcquireError(w, log, err)
		return
	}

	payload := map[string]any{
		"id":        result.Record.ID,
		"title":     result.Record.Title,
		"file_name": result.Record.FileName,
		"file_key":  result.Record.FileKey,
		"file_size": result.Record.FileSize,
		"mime_type": result.Record.MimeType,
		"platform":  result.Record.Platform,
		"status":    result.Record.Status,
	}
	if result.Compression != nil {
		payload["compression"] = map[string]any{
			"original_size": result.Compression.OriginalSize,
			"final_size":    result.Compression.FinalSize,
			"ratio_percent": result.Compression.RatioPercent,
		}
	}
	a.json(w, http.StatusCreated, payload)
}

// ListVideos returns stored records, most recent first, each annotated with
// a freshly minted signed URL. Signing failures degrade individual entries
// to a null URL instead of failing the whole list.
func (a *App) ListVideos(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 20
	}
	records, err := a.Videos.List(r.Context(), limit)
	if err != nil {
		a.Logger.Error().Err(err).Msg("list videos failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load videos")
		return
	}

	items := make([]map[string]any, 0, len(records))
	for _, record := range records {
		var url any
		if signed, err := a.Blobs.SignedURL(r.Context(), record.FileKey, a.SignedURLTTL); err != nil {
			a.Logger.Warn().Err(err).Str("file_key", record.FileKey).Msg("sign url failed")
		} else {
			url = signed
		}
		items = append(items, map[string]any{
			"id":         record.ID,
			"title":      record.Title,
			"file_name":  record.FileName,
			"file_size":  record.FileSize,
			"mime_type":  record.MimeType,
			"platform":   record.Platform,
			"status":     record.Status,
			"created_at": record.CreatedAt,
			"url":        url,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// DeleteVideo removes the backing blob (best effort) and then the record.
func (a *App) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	record, err := a.Videos.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "video not found")
			return
		}
		a.Logger.Error().Err(err).Str("video_id", id).Msg("load video failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load video")
		return
	}

	if err := a.Blobs.Delete(r.Context(), record.FileKey); err != nil {
		a.Logger.Warn().Err(err).Str("file_key", record.FileKey).Msg("blob delete failed")
	}

	if err := a.Videos.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "video not found")
			return
		}
		a.Logger.Error().Err(err).Str("video_id", id).Msg("delete video failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to delete video")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"status": "deleted", "id": id})
}

func (a *App) writeAcquireError(w http.ResponseWriter, log zerolog.Logger, err error) {
	var stageErr *domain.StageError
	switch {
	case errors.Is(err, domain.ErrUnsupportedURL):
		a.error(w, http.StatusBadRequest, "unsupported_url", "the submitted URL is not from a supported platform")
	case errors.Is(err, domain.ErrNoPlayableContent):
		a.error(w, http.StatusUnprocessableEntity, "no_playable_content", "the post contains no downloadable video")
	case errors.As(err, &stageErr):
		log.Error().Err(err).Str("stage", string(stageErr.Stage)).Str("code", stageErr.Code).Msg("acquisition failed")
		switch stageErr.Stage {
		case domain.StageResolve, domain.StageFetch:
			a.error(w, http.StatusBadGateway, stageErr.Code, "failed to retrieve media from the source")
		default:
			a.error(w, http.StatusInternalServerError, stageErr.Code, "failed to store the acquired media")
		}
	default:
		log.Error().Err(err).Msg("acquisition failed")
		a.error(w, http.StatusInternalServerError, "internal", "acquisition failed")
	}
}
