package transcode

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func writeScript(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "fake-ffmpeg")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write fake encoder: %v", err)
	}
	return path
}

func newTestTranscoder(t *testing.T, binPath string) *Transcoder {
	t.Helper()
	tr := New(binPath, Options{}, zerolog.Nop())
	tr.tempDir = t.TempDir()
	return tr
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read temp dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "acq-") {
			t.Fatalf("leftover temp file: %s", e.Name())
		}
	}
}

func TestCompressSuccess(t *testing.T) {
	scriptDir := t.TempDir()
	bin := writeScript(t, scriptDir, `if [ "$1" = "-version" ]; then exit 0; fi
for a in "$@"; do last=$a; done
printf 'tiny' > "$last"
`)
	tr := newTestTranscoder(t, bin)

	input := []byte(strings.Repeat("raw video data ", 64))
	outcome := tr.Compress(context.Background(), input, "video/webm", Options{})

	if !outcome.Succeeded {
		t.Fatal("Succeeded = false, want true")
	}
	if outcome.MimeType != "video/mp4" {
		t.Fatalf("MimeType = %q, want video/mp4", outcome.MimeType)
	}
	if outcome.OriginalSize != int64(len(input)) {
		t.Fatalf("OriginalSize = %d, want %d", outcome.OriginalSize, len(input))
	}
	if outcome.FinalSize != 4 {
		t.Fatalf("FinalSize = %d, want 4", outcome.FinalSize)
	}
	if outcome.RatioPercent <= 0 {
		t.Fatalf("RatioPercent = %f, want > 0", outcome.RatioPercent)
	}
	if string(outcome.Data) != "tiny" {
		t.Fatalf("Data = %q, want encoder output", outcome.Data)
	}
	assertNoTempFiles(t, tr.tempDir)
}

func TestCompressEncoderFailureFallsBack(t *testing.T) {
	scriptDir := t.TempDir()
	bin := writeScript(t, scriptDir, `if [ "$1" = "-version" ]; then exit 0; fi
echo "conversion failed" >&2
exit 1
`)
	tr := newTestTranscoder(t, bin)

	input := []byte("original bytes")
	outcome := tr.Compress(context.Background(), input, "video/mp4", Options{})

	if outcome.Succeeded {
		t.Fatal("Succeeded = true, want false")
	}
	if string(outcome.Data) != string(input) {
		t.Fatal("fallback must keep original bytes unchanged")
	}
	if outcome.FinalSize != outcome.OriginalSize {
		t.Fatalf("FinalSize = %d, want original %d", outcome.FinalSize, outcome.OriginalSize)
	}
	if outcome.MimeType != "video/mp4" {
		t.Fatalf("MimeType = %q, want input type preserved", outcome.MimeType)
	}
	assertNoTempFiles(t, tr.tempDir)
}

func TestCompressMissingBinaryShortCircuits(t *testing.T) {
	tr := newTestTranscoder(t, filepath.Join(t.TempDir(), "no-such-ffmpeg"))

	if tr.Available() {
		t.Fatal("Available = true for missing binary")
	}
	outcome := tr.Compress(context.Background(), []byte("data"), "video/mp4", Options{})
	if outcome.Succeeded {
		t.Fatal("Succeeded = true, want false")
	}
	assertNoTempFiles(t, tr.tempDir)
}

func TestCompressCancellationKillsEncoder(t *testing.T) {
	scriptDir := t.TempDir()
	bin := writeScript(t, scriptDir, `if [ "$1" = "-version" ]; then exit 0; fi
sleep 10
`)
	tr := newTestTranscoder(t, bin)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	outcome := tr.Compress(ctx, []byte("data"), "video/mp4", Options{})
	if outcome.Succeeded {
		t.Fatal("Succeeded = true after cancellation")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("encoder was not killed on cancellation, took %s", elapsed)
	}
	assertNoTempFiles(t, tr.tempDir)
}

func TestEncoderArgsFixedPolicy(t *testing.T) {
	args := encoderArgs("/tmp/in.webm", "/tmp/out.mp4", Options{
		MaxHeight:        720,
		VideoBitrateKbps: 1500,
		CRF:              24,
		AudioBitrateKbps: 96,
	})

	joined := strings.Join(args, " ")
	for _, want := range []string{
		"-c:v libx264",
		"-crf 24",
		"-maxrate 1500k",
		"-bufsize 3000k",
		"scale=-2:'min(720,ih)'",
		"-c:a aac",
		"-b:a 96k",
		"-ac 2",
		"-movflags +faststart",
		"-pix_fmt yuv420p",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("args missing %q: %s", want, joined)
		}
	}
	if args[len(args)-1] != "/tmp/out.mp4" {
		t.Fatalf("last arg = %q, want output path", args[len(args)-1])
	}
}

func TestExtensionFor(t *testing.T) {
	tests := []struct {
		mime string
		want string
	}{
		{"video/mp4", "mp4"},
		{"video/webm", "webm"},
		{"video/quicktime", "mov"},
		{"video/x-matroska", "mkv"},
		{"application/octet-stream", "mp4"},
		{"", "mp4"},
	}
	for _, tc := range tests {
		if got := extensionFor(tc.mime); got != tc.want {
			t.Fatalf("extensionFor(%q) = %q, want %q", tc.mime, got, tc.want)
		}
	}
}

func TestTailTruncates(t *testing.T) {
	long := strings.Repeat("x", 100) + "end"
	if got := tail([]byte(long), 3); got != "end" {
		t.Fatalf("tail = %q, want %q", got, "end")
	}
	if got := tail([]byte("short"), 100); got != "short" {
		t.Fatalf("tail = %q, want %q", got, "short")
	}
}
