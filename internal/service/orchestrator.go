package service

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"

	"clipvault/internal/domain"
	"clipvault/internal/fetch"
	"clipvault/internal/platform"
	"clipvault/internal/resolve"
	"clipvault/internal/storage"
	"clipvault/internal/transcode"
)

// Resolver turns a page URL into a media location.
type Resolver interface {
	Resolve(ctx context.Context, req resolve.Request) resolve.Result
}

// Fetcher retrieves media bytes from a resolved URL.
type Fetcher interface {
	Fetch(ctx context.Context, mediaURL string) (*fetch.Media, error)
}

// Compressor re-encodes media for storage efficiency.
type Compressor interface {
	Available() bool
	Compress(ctx context.Context, data []byte, mimeType string, opts transcode.Options) transcode.Outcome
}

// CompressionSavings summarizes a successful compression for the caller.
type CompressionSavings struct {
	OriginalSize int64
	FinalSize    int64
	RatioPercent float64
}

// AcquireResult is the public outcome of one acquisition.
type AcquireResult struct {
	Record      *domain.VideoRecord
	Compression *CompressionSavings
}

// Config tunes orchestrator behavior at construction time.
type Config struct {
	// CompressionEnabled gates the compression stage process-wide,
	// independent of the per-request flag.
	CompressionEnabled bool
	// AcquireTimeout bounds one end-to-end pipeline run.
	AcquireTimeout time.Duration
}

// Orchestrator composes resolution, fetching, compression, upload and
// persistence into one end-to-end acquisition per request.
type Orchestrator struct {
	resolver   Resolver
	fetcher    Fetcher
	compressor Compressor
	blobs      storage.BlobStore
	videos     domain.VideoRepository
	logger     zerolog.Logger
	cfg        Config
}

func NewOrchestrator(
	resolver Resolver,
	fetcher Fetcher,
	compressor Compressor,
	blobs storage.BlobStore,
	videos domain.VideoRepository,
	logger zerolog.Logger,
	cfg Config,
) *Orchestrator {
	if cfg.AcquireTimeout <= 0 {
		cfg.AcquireTimeout = 5 * time.Minute
	}
	return &Orchestrator{
		resolver:   resolver,
		fetcher:    fetcher,
		compressor: compressor,
		blobs:      blobs,
		videos:     videos,
		logger:     logger,
		cfg:        cfg,
	}
}

// Acquire runs the full pipeline for one request. Failures before upload
// leave no state behind; a persistence failure after upload orphans the
// just-written blob, which is logged but not reconciled.
//
// TODO: reconciliation sweep for blobs orphaned by persistence failures.
func (o *Orchestrator) Acquire(ctx context.Context, req domain.AcquisitionRequest) (*AcquireResult, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.AcquireTimeout)
	defer cancel()

	// Validating
	if strings.TrimSpace(req.URL) == "" {
		return nil, &domain.StageError{Stage: domain.StageValidate, Code: "url_required", Err: domain.ErrUnsupportedURL}
	}
	plat, ok := platform.Detect(req.URL)
	if !ok {
		return nil, &domain.StageError{Stage: domain.StageValidate, Code: "unsupported_url", Err: domain.ErrUnsupportedURL}
	}

	log := o.logger.With().Str("platform", plat.Name).Str("url", req.URL).Logger()
	log.Info().Msg("acquisition started")

	// Resolving
	result := o.resolver.Resolve(ctx, resolve.Request{
		URL:          req.URL,
		VideoQuality: string(req.Quality),
		DownloadMode: string(req.Mode),
	})

	var mediaURL, suggestedName, title string
	switch v := result.(type) {
	case resolve.Direct:
		mediaURL = v.MediaURL
		suggestedName = v.Filename
		title = deriveTitle(v.Filename)
	case resolve.Picker:
		item, found := v.FirstVideo()
		if !found {
			return nil, &domain.StageError{Stage: domain.StageResolve, Code: "no_playable_content", Err: domain.ErrNoPlayableContent}
		}
		mediaURL = item.MediaURL
		title = "Video from " + plat.Name
	case resolve.Failure:
		return nil, &domain.StageError{
			Stage: domain.StageResolve,
			Code:  v.Code,
			Err:   fmt.Errorf("resolution service: %s (%s)", v.Code, v.ServiceContext),
		}
	default:
		return nil, &domain.StageError{Stage: domain.StageResolve, Code: "unknown_variant", Err: fmt.Errorf("unhandled result %T", result)}
	}

	// Fetching
	media, err := o.fetcher.Fetch(ctx, mediaURL)
	if err != nil {
		return nil, &domain.StageError{Stage: domain.StageFetch, Code: "fetch_failed", Err: err}
	}

	fileName := suggestedName
	if fileName == "" {
		fileName = fileNameFromURL(mediaURL)
	}
	if title == "" {
		title = "Video from " + plat.Name
	}

	data := media.Bytes
	mimeType := media.ContentType
	size := media.ContentLength

	// Compressing (degraded outcomes continue with the original bytes)
	var savings *CompressionSavings
	if req.Compress && o.cfg.CompressionEnabled && o.compressor.Available() {
		outcome := o.compressor.Compress(ctx, data, mimeType, transcode.Options{})
		if outcome.Succeeded {
			data = outcome.Data
			mimeType = outcome.MimeType
			size = outcome.FinalSize
			fileName = replaceExtension(fileName, ".mp4")
			savings = &CompressionSavings{
				OriginalSize: outcome.OriginalSize,
				FinalSize:    outcome.FinalSize,
				RatioPercent: outcome.RatioPercent,
			}
			log.Info().
				Int64("original_size", outcome.OriginalSize).
				Int64("final_size", outcome.FinalSize).
				Float64("ratio_percent", outcome.RatioPercent).
				Msg("compression applied")
		} else {
			log.Warn().Msg("compression degraded, keeping original bytes")
		}
	}

	// Uploading
	key := storageKey(fileName)
	if _, err := o.blobs.Put(ctx, key, data, mimeType); err != nil {
		return nil, &domain.StageError{Stage: domain.StageUpload, Code: "storage_error", Err: err}
	}

	// Persisting
	record := &domain.VideoRecord{
		ID:          uuid.NewString(),
		Title:       title,
		FileName:    fileName,
		FileKey:     key,
		FileSize:    size,
		MimeType:    mimeType,
		Status:      domain.StatusCompleted,
		Platform:    plat.Name,
		OriginalURL: req.URL,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	if err := o.videos.Create(ctx, record); err != nil {
		log.Error().Err(err).Str("file_key", key).Msg("metadata write failed, blob orphaned")
		return nil, &domain.StageError{Stage: domain.StagePersist, Code: "persistence_error", Err: err}
	}

	log.Info().Str("video_id", record.ID).Str("file_key", key).Int64("size", size).Msg("acquisition completed")
	return &AcquireResult{Record: record, Compression: savings}, nil
}

// storageKey builds a globally unique blob key from a fresh token, a
// timestamp and the final filename's extension.
func storageKey(fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	if ext == "" {
		ext = ".mp4"
	}
	return fmt.Sprintf("%s-%d%s", uuid.NewString(), time.Now().UnixNano(), ext)
}

// deriveTitle turns a suggested filename into a display title: extension
// stripped, separators replaced by spaces, first character capitalized.
func deriveTitle(fileName string) string {
	if fileName == "" {
		return ""
	}
	stem := norm.NFC.String(fileName)
	if ext := path.Ext(stem); ext != "" {
		stem = strings.TrimSuffix(stem, ext)
	}
	stem = strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', '.':
			return ' '
		}
		return r
	}, stem)
	words := strings.Fields(strings.ToLower(stem))
	if len(words) == 0 {
		return ""
	}
	title := strings.Join(words, " ")
	runes := []rune(title)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func fileNameFromURL(mediaURL string) string {
	if u, err := url.Parse(mediaURL); err == nil {
		if base := path.Base(u.Path); base != "." && base != "/" && path.Ext(base) != "" {
			return base
		}
	}
	return "video.mp4"
}

func replaceExtension(fileName, ext string) string {
	if old := path.Ext(fileName); old != "" {
		fileName = strings.TrimSuffix(fileName, old)
	}
	return fileName + ext
}
