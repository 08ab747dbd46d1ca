package image

import (
	"context"
	"errors"
	"strings"
	"testing"

	"campaignkit/internal/assets"
	"campaignkit/internal/domain"
	"campaignkit/internal/providers/genai"
	"campaignkit/internal/providers/qwen"
)

type stubQwenClient struct {
	img            *domain.InlineImage
	err            error
	hasCredentials bool
	calls          int
	requests       []qwen.ImageRequest
	queue          []stubQwenResponse
}

type stubQwenResponse struct {
	img *domain.InlineImage
	err error
}

func (s *stubQwenClient) GenerateImage(ctx context.Context, req qwen.ImageRequest) (*domain.InlineImage, error) {
	s.calls++
	s.requests = append(s.requests, req)
	if len(s.queue) > 0 {
		next := s.queue[0]
		s.queue = s.queue[1:]
		return next.img, next.err
	}
	return s.img, s.err
}

func (s *stubQwenClient) HasCredentials() bool { return s.hasCredentials }

func (s *stubQwenClient) Model() string { return "qwen-image-plus" }

type stubSingle struct {
	calls int
	last  assets.SingleRequest
}

func (s *stubSingle) GenerateOne(ctx context.Context, req assets.SingleRequest) (*domain.InlineImage, error) {
	s.calls++
	s.last = req
	return &domain.InlineImage{Data: []byte("fallback"), MIMEType: "image/png"}, nil
}

func TestQwenSingleFallsBackWithoutCredentials(t *testing.T) {
	fallback := &stubSingle{}
	client := &stubQwenClient{hasCredentials: false}
	backend := NewQwenSingle(client, fallback, nil)

	img, err := backend.GenerateOne(context.Background(), assets.SingleRequest{Prompt: "hello", Index: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.calls != 0 {
		t.Fatalf("qwen client should not be invoked without credentials")
	}
	if fallback.calls != 1 || fallback.last.Index != 2 {
		t.Fatalf("fallback calls = %d index = %d", fallback.calls, fallback.last.Index)
	}
	if string(img.Data) != "fallback" {
		t.Fatalf("unexpected image: %q", img.Data)
	}
}

func TestQwenSingleRetriesTransientError(t *testing.T) {
	client := &stubQwenClient{
		hasCredentials: true,
		queue: []stubQwenResponse{
			{err: errors.New("qwen: unknown error (InternalError)")},
			{img: &domain.InlineImage{Data: []byte("ok"), MIMEType: "image/png"}},
		},
	}
	backend := NewQwenSingle(client, &stubSingle{}, nil)
	img, err := backend.GenerateOne(context.Background(), assets.SingleRequest{Prompt: "mug", AspectRatio: domain.AspectPortrait, RequestID: "r"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(img.Data) != "ok" || client.calls != 2 {
		t.Fatalf("calls = %d image = %q", client.calls, img.Data)
	}
	if client.requests[0].Size != "928*1664" {
		t.Fatalf("size = %q, want portrait size", client.requests[0].Size)
	}
	if client.requests[0].Seed == 0 || client.requests[1].Seed != 0 {
		t.Fatalf("retry should drop the seed: %+v", client.requests)
	}
}

func TestQwenSingleFallsBackAfterRepeatedTransientError(t *testing.T) {
	fallback := &stubSingle{}
	client := &stubQwenClient{hasCredentials: true, err: errors.New("qwen: status 503: service unavailable")}
	backend := NewQwenSingle(client, fallback, nil)
	if _, err := backend.GenerateOne(context.Background(), assets.SingleRequest{Prompt: "mug"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.calls != 2 || fallback.calls != 1 {
		t.Fatalf("client calls = %d fallback calls = %d", client.calls, fallback.calls)
	}
}

func TestQwenSinglePropagatesPermanentError(t *testing.T) {
	fallback := &stubSingle{}
	client := &stubQwenClient{hasCredentials: true, err: errors.New("qwen: input rejected (DataInspectionFailed)")}
	backend := NewQwenSingle(client, fallback, nil)
	_, err := backend.GenerateOne(context.Background(), assets.SingleRequest{Prompt: "mug"})
	if !errors.Is(err, domain.ErrProviderFailure) {
		t.Fatalf("error = %v, want ErrProviderFailure", err)
	}
	if client.calls != 1 || fallback.calls != 0 {
		t.Fatalf("client calls = %d fallback calls = %d", client.calls, fallback.calls)
	}
}

func TestQwenSingleSeedsDifferPerSlot(t *testing.T) {
	client := &stubQwenClient{hasCredentials: true, img: &domain.InlineImage{Data: []byte{1}}}
	backend := NewQwenSingle(client, nil, nil)
	for i := 0; i < 2; i++ {
		if _, err := backend.GenerateOne(context.Background(), assets.SingleRequest{Prompt: "mug", Index: i, RequestID: "r"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if client.requests[0].Seed == client.requests[1].Seed {
		t.Fatalf("slots should receive different seeds")
	}
}

func TestWithAttachmentLabels(t *testing.T) {
	got := withAttachmentLabels(" frame ", []domain.Attachment{{Label: "Use this image as the app icon:"}, {Label: " "}})
	if got != "frame\nUse this image as the app icon:" {
		t.Fatalf("prompt = %q", got)
	}
}

func TestGeminiAdaptersForwardRequests(t *testing.T) {
	client, err := genai.NewClient(context.Background(), genai.Options{})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	batch := NewGeminiBatch(client)
	images, err := batch.GenerateBatch(context.Background(), assets.BatchRequest{Prompt: "logo", Count: 5, AspectRatio: domain.AspectSquare})
	if err != nil || len(images) != 5 {
		t.Fatalf("GenerateBatch = %d images, err %v", len(images), err)
	}

	editor := NewGeminiEditor(client)
	ref := &domain.InlineImage{Data: []byte{1, 2}, MIMEType: "image/png"}
	img, err := editor.GenerateOne(context.Background(), assets.SingleRequest{Prompt: "mockup", Reference: ref, Index: 3})
	if err != nil || img.Empty() {
		t.Fatalf("GenerateOne = %+v, err %v", img, err)
	}
}

func TestIsTransient(t *testing.T) {
	cases := map[string]bool{
		"InternalError":                true,
		"request Timeout":              true,
		"Throttling.RateQuota":         true,
		"DataInspectionFailed":         false,
		strings.Repeat(" ", 3):         false,
		"server unavailable right now": true,
	}
	for msg, want := range cases {
		if got := isTransient(errors.New(msg)); got != want {
			t.Fatalf("isTransient(%q) = %v, want %v", msg, got, want)
		}
	}
}
