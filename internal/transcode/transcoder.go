package transcode

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Options control one compression run. Zero fields fall back to the
// transcoder's process-wide defaults.
type Options struct {
	MaxHeight        int
	VideoBitrateKbps int
	CRF              int
	AudioBitrateKbps int
}

// Outcome reports the result of a compression attempt. Succeeded=false
// means the caller should keep the original bytes; it is never an error.
type Outcome struct {
	Succeeded    bool
	OriginalSize int64
	FinalSize    int64
	RatioPercent float64
	MimeType     string
	Data         []byte
}

// compressedMimeType is what every successful run normalizes to,
// regardless of the input container.
const compressedMimeType = "video/mp4"

const diagnosticTailBytes = 2048

var mimeExtensions = map[string]string{
	"video/mp4":        "mp4",
	"video/webm":       "webm",
	"video/quicktime":  "mov",
	"video/x-matroska": "mkv",
	"video/x-msvideo":  "avi",
	"video/mpeg":       "mpg",
	"video/3gpp":       "3gp",
	"video/x-flv":      "flv",
}

// Transcoder re-encodes media through an external ffmpeg binary.
type Transcoder struct {
	binPath  string
	tempDir  string
	defaults Options
	logger   zerolog.Logger

	probeOnce sync.Once
	available bool
}

func New(binPath string, defaults Options, logger zerolog.Logger) *Transcoder {
	if binPath == "" {
		binPath = "ffmpeg"
	}
	if defaults.MaxHeight <= 0 {
		defaults.MaxHeight = 1080
	}
	if defaults.VideoBitrateKbps <= 0 {
		defaults.VideoBitrateKbps = 2000
	}
	if defaults.CRF <= 0 {
		defaults.CRF = 26
	}
	if defaults.AudioBitrateKbps <= 0 {
		defaults.AudioBitrateKbps = 128
	}
	return &Transcoder{
		binPath:  binPath,
		tempDir:  os.TempDir(),
		defaults: defaults,
		logger:   logger,
	}
}

// Available reports whether the encoder binary responds to a version
// probe. The probe runs once and is cached for the process lifetime.
func (t *Transcoder) Available() bool {
	t.probeOnce.Do(func() {
		t.available = exec.Command(t.binPath, "-version").Run() == nil
	})
	return t.available
}

// Compress re-encodes data under the fixed encoding policy. Every failure
// path reports Succeeded=false with the original bytes untouched; both
// temporary files are removed on all exit paths, including cancellation.
func (t *Transcoder) Compress(ctx context.Context, data []byte, mimeType string, opts Options) Outcome {
	original := int64(len(data))
	fallback := Outcome{
		Succeeded:    false,
		OriginalSize: original,
		FinalSize:    original,
		MimeType:     mimeType,
		Data:         data,
	}

	if !t.Available() {
		t.logger.Debug().Msg("transcode: encoder unavailable, skipping compression")
		return fallback
	}

	opts = t.merge(opts)

	token := uuid.NewString()
	inPath := filepath.Join(t.tempDir, "acq-"+token+"-in."+extensionFor(mimeType))
	outPath := filepath.Join(t.tempDir, "acq-"+token+"-out.mp4")
	defer func() {
		// Cleanup failures must never mask the outcome.
		_ = os.Remove(inPath)
		_ = os.Remove(outPath)
	}()

	if err := os.WriteFile(inPath, data, 0o600); err != nil {
		t.logger.Warn().Err(err).Msg("transcode: write temp input")
		return fallback
	}

	cmd := exec.CommandContext(ctx, t.binPath, encoderArgs(inPath, outPath, opts)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.logger.Warn().
			Err(err).
			Str("encoder_output", tail(output, diagnosticTailBytes)).
			Msg("transcode: encoder failed, keeping original")
		return fallback
	}

	encoded, err := os.ReadFile(outPath)
	if err != nil {
		t.logger.Warn().Err(err).Msg("transcode: read encoder output")
		return fallback
	}

	final := int64(len(encoded))
	ratio := 0.0
	if original > 0 {
		ratio = (1 - float64(final)/float64(original)) * 100
	}
	return Outcome{
		Succeeded:    true,
		OriginalSize: original,
		FinalSize:    final,
		RatioPercent: ratio,
		MimeType:     compressedMimeType,
		Data:         encoded,
	}
}

func (t *Transcoder) merge(opts Options) Options {
	if opts.MaxHeight <= 0 {
		opts.MaxHeight = t.defaults.MaxHeight
	}
	if opts.VideoBitrateKbps <= 0 {
		opts.VideoBitrateKbps = t.defaults.VideoBitrateKbps
	}
	if opts.CRF <= 0 {
		opts.CRF = t.defaults.CRF
	}
	if opts.AudioBitrateKbps <= 0 {
		opts.AudioBitrateKbps = t.defaults.AudioBitrateKbps
	}
	return opts
}

// encoderArgs is fixed policy: H.264/AAC, CRF quality control with a
// bitrate ceiling, height capped without upscaling, faststart layout.
func encoderArgs(inPath, outPath string, opts Options) []string {
	return []string{
		"-y",
		"-i", inPath,
		"-c:v", "libx264",
		"-crf", strconv.Itoa(opts.CRF),
		"-maxrate", fmt.Sprintf("%dk", opts.VideoBitrateKbps),
		"-bufsize", fmt.Sprintf("%dk", opts.VideoBitrateKbps*2),
		"-vf", fmt.Sprintf("scale=-2:'min(%d,ih)'", opts.MaxHeight),
		"-c:a", "aac",
		"-b:a", fmt.Sprintf("%dk", opts.AudioBitrateKbps),
		"-ac", "2",
		"-movflags", "+faststart",
		"-pix_fmt", "yuv420p",
		outPath,
	}
}

func extensionFor(mimeType string) string {
	if ext, ok := mimeExtensions[mimeType]; ok {
		return ext
	}
	return "mp4"
}

func tail(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[len(b)-n:])
}
