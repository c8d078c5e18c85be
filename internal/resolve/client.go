package resolve

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	defaultVideoQuality  = "1080"
	defaultAudioFormat   = "mp3"
	defaultAudioBitrate  = "128"
	defaultFilenameStyle = "classic"
	defaultDownloadMode  = "auto"
	defaultVideoCodec    = "h264"

	// CodeTransportError marks failures reaching or decoding the service.
	CodeTransportError = "transport_error"
)

// Request is a resolution request. Unset optional fields are filled with
// service defaults before the call so the service always receives a fully
// specified request.
type Request struct {
	URL           string
	VideoQuality  string
	AudioFormat   string
	AudioBitrate  string
	FilenameStyle string
	DownloadMode  string
	VideoCodec    string
}

type Options struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client calls an external resolution service that turns a page URL into a
// downloadable media URL.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		httpClient: client,
		baseURL:    base,
		apiKey:     strings.TrimSpace(opts.APIKey),
	}
}

type wireRequest struct {
	URL           string `json:"url"`
	VideoQuality  string `json:"videoQuality"`
	AudioFormat   string `json:"audioFormat"`
	AudioBitrate  string `json:"audioBitrate"`
	FilenameStyle string `json:"filenameStyle"`
	DownloadMode  string `json:"downloadMode"`
	VideoCodec    string `json:"youtubeVideoCodec"`
}

type wireEnvelope struct {
	Status   string `json:"status"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Picker   []struct {
		Type  string `json:"type"`
		URL   string `json:"url"`
		Thumb string `json:"thumb"`
	} `json:"picker"`
	Error struct {
		Code    string `json:"code"`
		Context struct {
			Service string `json:"service"`
		} `json:"context"`
	} `json:"error"`
}

// Resolve performs one call against the resolution service. It always
// returns a Result; anything that prevents a well-formed answer becomes a
// Failure rather than a Go error. No retries happen at this layer.
func (c *Client) Resolve(ctx context.Context, req Request) Result {
	wire := wireRequest{
		URL:           req.URL,
		VideoQuality:  orDefault(req.VideoQuality, defaultVideoQuality),
		AudioFormat:   orDefault(req.AudioFormat, defaultAudioFormat),
		AudioBitrate:  orDefault(req.AudioBitrate, defaultAudioBitrate),
		FilenameStyle: orDefault(req.FilenameStyle, defaultFilenameStyle),
		DownloadMode:  orDefault(req.DownloadMode, defaultDownloadMode),
		VideoCodec:    orDefault(req.VideoCodec, defaultVideoCodec),
	}

	body, err := json.Marshal(wire)
	if err != nil {
		return Failure{Code: CodeTransportError, ServiceContext: err.Error()}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/", bytes.NewReader(body))
	if err != nil {
		return Failure{Code: CodeTransportError, ServiceContext: err.Error()}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Api-Key "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Failure{Code: CodeTransportError, ServiceContext: err.Error()}
	}
	defer resp.Body.Close()

	var envelope wireEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return Failure{Code: CodeTransportError, ServiceContext: fmt.Sprintf("decode response: %v", err)}
	}

	switch envelope.Status {
	case "tunnel", "redirect":
		return Direct{MediaURL: envelope.URL, Filename: envelope.Filename}
	case "picker":
		picker := Picker{Items: make([]PickerItem, 0, len(envelope.Picker))}
		for _, item := range envelope.Picker {
			picker.Items = append(picker.Items, PickerItem{
				Kind:     ItemKind(item.Type),
				MediaURL: item.URL,
				ThumbURL: item.Thumb,
			})
		}
		return picker
	case "error":
		code := envelope.Error.Code
		if code == "" {
			code = fmt.Sprintf("http_%d", resp.StatusCode)
		}
		return Failure{Code: code, ServiceContext: envelope.Error.Context.Service}
	default:
		return Failure{Code: CodeTransportError, ServiceContext: fmt.Sprintf("unexpected status %q", envelope.Status)}
	}
}

func orDefault(v, fallback string) string {
	if v == "" || v == "default" {
		return fallback
	}
	return v
}
