package qwen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"campaignkit/internal/domain"
)

type capturedRequest struct {
	auth string
	body generationRequest
}

func newDashScopeServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request, base string)) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var (
		mu       sync.Mutex
		captured []capturedRequest
	)
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == generationPath {
			var body generationRequest
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode request: %v", err)
			}
			mu.Lock()
			captured = append(captured, capturedRequest{auth: r.Header.Get("Authorization"), body: body})
			mu.Unlock()
		}
		handler(w, r, srv.URL)
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func okHandler(w http.ResponseWriter, r *http.Request, base string) {
	switch r.URL.Path {
	case generationPath:
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"request_id":"rid-1","output":{"choices":[{"message":{"content":[{"image":"` + base + `/files/out.png"}]}}]}}`))
	case "/files/out.png":
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	default:
		http.NotFound(w, r)
	}
}

func TestGenerateImageTextToImage(t *testing.T) {
	srv, captured := newDashScopeServer(t, okHandler)
	client, err := NewClient(Options{APIKey: "secret", BaseURL: srv.URL, Watermark: true})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	img, err := client.GenerateImage(context.Background(), ImageRequest{Prompt: "flat logo", Size: SizeFor(domain.AspectLandscape), Seed: 7})
	if err != nil {
		t.Fatalf("GenerateImage returned error: %v", err)
	}
	if img.MIMEType != "image/png" || len(img.Data) != 4 {
		t.Fatalf("image = %+v", img)
	}

	if len(*captured) != 1 {
		t.Fatalf("captured %d requests, want 1", len(*captured))
	}
	req := (*captured)[0]
	if req.auth != "Bearer secret" {
		t.Fatalf("Authorization = %q", req.auth)
	}
	if req.body.Model != "qwen-image-plus" || req.body.Parameters.Size != "1664*928" {
		t.Fatalf("payload = %+v", req.body)
	}
	if req.body.Parameters.Seed == nil || *req.body.Parameters.Seed != 7 {
		t.Fatalf("seed not forwarded: %+v", req.body.Parameters)
	}
	if req.body.Parameters.Watermark == nil || !*req.body.Parameters.Watermark {
		t.Fatalf("watermark not forwarded")
	}
}

func TestGenerateImageEditUsesReference(t *testing.T) {
	srv, captured := newDashScopeServer(t, okHandler)
	client, _ := NewClient(Options{APIKey: "secret", BaseURL: srv.URL})

	ref := &domain.InlineImage{Data: []byte{1, 2, 3}, MIMEType: "image/jpeg"}
	if _, err := client.GenerateImage(context.Background(), ImageRequest{Prompt: "white background", Reference: ref}); err != nil {
		t.Fatalf("GenerateImage returned error: %v", err)
	}
	body := (*captured)[0].body
	if body.Model != "qwen-image-edit" {
		t.Fatalf("model = %q, want edit model", body.Model)
	}
	content := body.Input.Messages[0].Content
	if len(content) != 2 || !strings.HasPrefix(content[0].Image, "data:image/jpeg;base64,") || content[1].Text != "white background" {
		t.Fatalf("content = %+v", content)
	}
	if body.Parameters.Size != "" {
		t.Fatalf("edit requests should not force a size, got %q", body.Parameters.Size)
	}
}

func TestGenerateImageErrors(t *testing.T) {
	srv, _ := newDashScopeServer(t, func(w http.ResponseWriter, r *http.Request, base string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"DataInspectionFailed","message":"input rejected"}`))
	})
	client, _ := NewClient(Options{APIKey: "secret", BaseURL: srv.URL})
	_, err := client.GenerateImage(context.Background(), ImageRequest{Prompt: "x"})
	if err == nil || !strings.Contains(err.Error(), "input rejected") {
		t.Fatalf("error = %v, want remote message", err)
	}

	noKey, _ := NewClient(Options{BaseURL: srv.URL})
	if _, err := noKey.GenerateImage(context.Background(), ImageRequest{Prompt: "x"}); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("error = %v, want ErrMissingAPIKey", err)
	}
}

func TestGenerateImageEmptyOutput(t *testing.T) {
	srv, _ := newDashScopeServer(t, func(w http.ResponseWriter, r *http.Request, base string) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"output":{"choices":[]}}`))
	})
	client, _ := NewClient(Options{APIKey: "secret", BaseURL: srv.URL})
	if _, err := client.GenerateImage(context.Background(), ImageRequest{Prompt: "x"}); !errors.Is(err, domain.ErrEmptyPayload) {
		t.Fatalf("error = %v, want ErrEmptyPayload", err)
	}
}

func TestNormalizeFormat(t *testing.T) {
	tests := map[string]string{
		"image/jpg":                "image/jpeg",
		"IMAGE/PNG; charset=utf-8": "image/png",
		"":                         "image/png",
		"application/octet-stream": "image/png",
		"image/webp":               "image/webp",
	}
	for in, want := range tests {
		if got := normalizeFormat(in); got != want {
			t.Fatalf("normalizeFormat(%q) = %q, want %q", in, got, want)
		}
	}
}
