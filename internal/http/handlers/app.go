package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"clipvault/internal/domain"
	"clipvault/internal/infra/geoip"
	"clipvault/internal/service"
	"clipvault/internal/storage"
)

// Pipeline is the handlers' view of the acquisition orchestrator.
type Pipeline interface {
	Acquire(ctx context.Context, req domain.AcquisitionRequest) (*service.AcquireResult, error)
}

// SubmitQueue is the handlers' view of the sequential submission queue.
type SubmitQueue interface {
	Enqueue(req domain.AcquisitionRequest) (service.QueueItem, error)
	Snapshot() []service.QueueItem
}

// App bundles the collaborators the HTTP handlers need. It is constructed
// once at process start; nothing is looked up through globals.
type App struct {
	Logger       zerolog.Logger
	Videos       domain.VideoRepository
	Blobs        storage.BlobStore
	Pipeline     Pipeline
	Queue        SubmitQueue
	Geo          geoip.CountryResolver
	SignedURLTTL time.Duration
}

func NewApp(
	logger zerolog.Logger,
	videos domain.VideoRepository,
	blobs storage.BlobStore,
	pipeline Pipeline,
	queue SubmitQueue,
	geo geoip.CountryResolver,
	signedURLTTL time.Duration,
) *App {
	if signedURLTTL <= 0 {
		signedURLTTL = time.Hour
	}
	return &App{
		Logger:       logger,
		Videos:       videos,
		Blobs:        blobs,
		Pipeline:     pipeline,
		Queue:        queue,
		Geo:          geo,
		SignedURLTTL: signedURLTTL,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{
		"error":   code,
		"message": message,
	})
}
