package resolve

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func newTestServer(t *testing.T, status int, body string, capture *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if capture != nil {
			var payload map[string]any
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Errorf("decode request body: %v", err)
			}
			*capture = payload
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestResolveInjectsDefaults(t *testing.T) {
	var captured map[string]any
	srv := newTestServer(t, http.StatusOK, `{"status":"tunnel","url":"https://cdn/x.mp4","filename":"x.mp4"}`, &captured)
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL})
	client.Resolve(context.Background(), Request{URL: "https://www.youtube.com/watch?v=abc"})

	want := map[string]string{
		"url":               "https://www.youtube.com/watch?v=abc",
		"videoQuality":      "1080",
		"audioFormat":       "mp3",
		"audioBitrate":      "128",
		"filenameStyle":     "classic",
		"downloadMode":      "auto",
		"youtubeVideoCodec": "h264",
	}
	for field, expected := range want {
		if got, _ := captured[field].(string); got != expected {
			t.Fatalf("request field %q = %q, want %q", field, got, expected)
		}
	}
}

func TestResolveKeepsExplicitFields(t *testing.T) {
	var captured map[string]any
	srv := newTestServer(t, http.StatusOK, `{"status":"tunnel","url":"https://cdn/x.mp4"}`, &captured)
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL})
	client.Resolve(context.Background(), Request{
		URL:          "https://vimeo.com/123",
		VideoQuality: "720",
		DownloadMode: "mute",
	})

	if got, _ := captured["videoQuality"].(string); got != "720" {
		t.Fatalf("videoQuality = %q, want %q", got, "720")
	}
	if got, _ := captured["downloadMode"].(string); got != "mute" {
		t.Fatalf("downloadMode = %q, want %q", got, "mute")
	}
}

func TestResolveDirectVariants(t *testing.T) {
	for _, status := range []string{"tunnel", "redirect"} {
		t.Run(status, func(t *testing.T) {
			srv := newTestServer(t, http.StatusOK, `{"status":"`+status+`","url":"https://cdn/v.mp4","filename":"My_Clip.mp4"}`, nil)
			defer srv.Close()

			client := NewClient(Options{BaseURL: srv.URL})
			res := client.Resolve(context.Background(), Request{URL: "https://youtu.be/abc"})
			direct, ok := res.(Direct)
			if !ok {
				t.Fatalf("result = %T, want Direct", res)
			}
			if direct.MediaURL != "https://cdn/v.mp4" {
				t.Fatalf("MediaURL = %q", direct.MediaURL)
			}
			if direct.Filename != "My_Clip.mp4" {
				t.Fatalf("Filename = %q", direct.Filename)
			}
		})
	}
}

func TestResolvePickerVariant(t *testing.T) {
	body := `{"status":"picker","picker":[
		{"type":"photo","url":"https://cdn/p1.jpg"},
		{"type":"video","url":"https://cdn/v1.mp4","thumb":"https://cdn/t1.jpg"},
		{"type":"video","url":"https://cdn/v2.mp4"}
	]}`
	srv := newTestServer(t, http.StatusOK, body, nil)
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL})
	res := client.Resolve(context.Background(), Request{URL: "https://www.instagram.com/p/abc"})
	picker, ok := res.(Picker)
	if !ok {
		t.Fatalf("result = %T, want Picker", res)
	}
	if len(picker.Items) != 3 {
		t.Fatalf("len(Items) = %d, want 3", len(picker.Items))
	}
	first, ok := picker.FirstVideo()
	if !ok {
		t.Fatal("FirstVideo returned no item")
	}
	if first.MediaURL != "https://cdn/v1.mp4" {
		t.Fatalf("FirstVideo url = %q, want first video item", first.MediaURL)
	}
}

func TestResolveErrorVariant(t *testing.T) {
	srv := newTestServer(t, http.StatusBadRequest, `{"status":"error","error":{"code":"error.api.link.invalid","context":{"service":"youtube"}}}`, nil)
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL})
	res := client.Resolve(context.Background(), Request{URL: "https://youtu.be/abc"})
	failure, ok := res.(Failure)
	if !ok {
		t.Fatalf("result = %T, want Failure", res)
	}
	if failure.Code != "error.api.link.invalid" {
		t.Fatalf("Code = %q", failure.Code)
	}
	if failure.ServiceContext != "youtube" {
		t.Fatalf("ServiceContext = %q", failure.ServiceContext)
	}
}

func TestResolveTransportError(t *testing.T) {
	client := NewClient(Options{
		BaseURL: "http://resolver.invalid",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		})},
	})
	res := client.Resolve(context.Background(), Request{URL: "https://youtu.be/abc"})
	failure, ok := res.(Failure)
	if !ok {
		t.Fatalf("result = %T, want Failure", res)
	}
	if failure.Code != CodeTransportError {
		t.Fatalf("Code = %q, want %q", failure.Code, CodeTransportError)
	}
}

func TestResolveMalformedResponse(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `not json`, nil)
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL})
	res := client.Resolve(context.Background(), Request{URL: "https://youtu.be/abc"})
	failure, ok := res.(Failure)
	if !ok {
		t.Fatalf("result = %T, want Failure", res)
	}
	if failure.Code != CodeTransportError {
		t.Fatalf("Code = %q, want %q", failure.Code, CodeTransportError)
	}
}

func TestResolveUnexpectedStatus(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"status":"carousel"}`, nil)
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL})
	res := client.Resolve(context.Background(), Request{URL: "https://youtu.be/abc"})
	if failure, ok := res.(Failure); !ok || failure.Code != CodeTransportError {
		t.Fatalf("result = %#v, want transport_error Failure", res)
	}
}

func TestResolveSendsAPIKey(t *testing.T) {
	var authHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"status":"tunnel","url":"https://cdn/v.mp4"}`))
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL, APIKey: "secret"})
	client.Resolve(context.Background(), Request{URL: "https://youtu.be/abc"})
	if authHeader != "Api-Key secret" {
		t.Fatalf("Authorization = %q, want %q", authHeader, "Api-Key secret")
	}
}
