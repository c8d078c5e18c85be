package domain

import "time"

// VideoStatus enumerates the lifecycle states of a stored video.
type VideoStatus string

const (
	StatusPending    VideoStatus = "PENDING"
	StatusProcessing VideoStatus = "PROCESSING"
	StatusCompleted  VideoStatus = "COMPLETED"
	StatusFailed     VideoStatus = "FAILED"
)

// CanTransition reports whether moving to next is a legal forward step.
// Failed and Completed are terminal.
func (s VideoStatus) CanTransition(next VideoStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusCompleted || next == StatusFailed
	default:
		return false
	}
}

// VideoQuality is the requested resolution ceiling for an acquisition.
type VideoQuality string

const (
	Quality144  VideoQuality = "144"
	Quality240  VideoQuality = "240"
	Quality360  VideoQuality = "360"
	Quality480  VideoQuality = "480"
	Quality720  VideoQuality = "720"
	Quality1080 VideoQuality = "1080"
	Quality1440 VideoQuality = "1440"
	Quality2160 VideoQuality = "2160"
	QualityMax  VideoQuality = "max"
)

// DownloadMode selects which streams the resolution service should return.
type DownloadMode string

const (
	ModeAuto  DownloadMode = "auto"
	ModeAudio DownloadMode = "audio"
	ModeMute  DownloadMode = "mute"
)

// AcquisitionRequest describes one user-submitted acquisition. It is built
// once per call and never mutated afterwards.
type AcquisitionRequest struct {
	URL      string
	Quality  VideoQuality
	Mode     DownloadMode
	Compress bool
}

// VideoRecord is the durable metadata row for an acquired video. A record
// exists only after its blob has been uploaded, so FileKey always points at
// a live object.
type VideoRecord struct {
	ID              string
	Title           string
	FileName        string
	FileKey         string
	FileSize        int64
	MimeType        string
	DurationSeconds *float64
	Status          VideoStatus
	Platform        string
	OriginalURL     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
