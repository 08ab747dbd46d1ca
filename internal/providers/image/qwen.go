package image

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"campaignkit/internal/assets"
	"campaignkit/internal/domain"
	"campaignkit/internal/infra"
	"campaignkit/internal/providers/qwen"
)

type qwenImageClient interface {
	GenerateImage(context.Context, qwen.ImageRequest) (*domain.InlineImage, error)
	HasCredentials() bool
	Model() string
}

// QwenSingle generates one image per slot with DashScope's Qwen models and
// falls back to another single backend (e.g. synthetic Gemini) when
// credentials are missing or the remote call keeps failing.
type QwenSingle struct {
	client   qwenImageClient
	fallback assets.SingleBackend
	logger   *infra.Logger
}

// NewQwenSingle wires a Qwen client with an optional fallback backend.
func NewQwenSingle(client qwenImageClient, fallback assets.SingleBackend, logger *infra.Logger) *QwenSingle {
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	return &QwenSingle{client: client, fallback: fallback, logger: logger}
}

// GenerateOne fulfils assets.SingleBackend.
func (g *QwenSingle) GenerateOne(ctx context.Context, req assets.SingleRequest) (*domain.InlineImage, error) {
	if g == nil {
		return nil, fmt.Errorf("qwen backend not configured")
	}
	if g.client == nil || !g.client.HasCredentials() {
		if g.fallback != nil {
			return g.fallback.GenerateOne(ctx, req)
		}
		return nil, fmt.Errorf("qwen backend missing credentials")
	}

	imageReq := qwen.ImageRequest{
		Prompt:    withAttachmentLabels(req.Prompt, req.Attachments),
		Size:      qwen.SizeFor(req.AspectRatio),
		Seed:      deterministicSeed(req.RequestID, req.Prompt, req.Index),
		Reference: req.Reference,
		RequestID: req.RequestID,
	}
	img, err := g.invoke(ctx, imageReq)
	if err != nil {
		if shouldFallback(err) && g.fallback != nil {
			g.logger.Warn().Err(err).Str("request_id", req.RequestID).Int("slot", req.Index).Msg("qwen: falling back")
			return g.fallback.GenerateOne(ctx, req)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	return img, nil
}

func (g *QwenSingle) String() string {
	if g == nil || g.client == nil {
		return "qwen"
	}
	return g.client.Model()
}

var _ assets.SingleBackend = (*QwenSingle)(nil)

// invoke retries once with a simplified request when the first failure looks
// transient.
func (g *QwenSingle) invoke(ctx context.Context, req qwen.ImageRequest) (*domain.InlineImage, error) {
	img, err := g.client.GenerateImage(ctx, req)
	if err == nil {
		return img, nil
	}
	if !isTransient(err) || ctx.Err() != nil {
		return nil, err
	}
	simplified := req
	simplified.NegativePrompt = ""
	simplified.Seed = 0
	return g.client.GenerateImage(ctx, simplified)
}

// withAttachmentLabels folds attachment labels into the prompt. The Qwen edit
// model accepts one image, so attached images are described instead.
func withAttachmentLabels(prompt string, attachments []domain.Attachment) string {
	prompt = strings.TrimSpace(prompt)
	for _, a := range attachments {
		if label := strings.TrimSpace(a.Label); label != "" {
			prompt += "\n" + label
		}
	}
	return prompt
}

func shouldFallback(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, qwen.ErrMissingAPIKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unauthorized") || strings.Contains(msg, "forbidden") {
		return true
	}
	return isTransient(err)
}

func isTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case msg == "":
		return false
	case strings.Contains(msg, "internalerror"), strings.Contains(msg, "internal error"):
		return true
	case strings.Contains(msg, "service unavailable"), strings.Contains(msg, "server unavailable"):
		return true
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "throttling"):
		return true
	}
	return false
}

// deterministicSeed derives a positive 31-bit seed from the request so each
// slot of a batch gets a different but reproducible image.
func deterministicSeed(values ...any) int {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, fmt.Sprint(v))
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	value := int(binary.BigEndian.Uint32(sum[:4]) % 2147483647)
	if value <= 0 {
		value = int(binary.BigEndian.Uint32(sum[4:8])%2147483646) + 1
	}
	return value
}
