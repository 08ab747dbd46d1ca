package image

import (
	"context"
	"fmt"

	"campaignkit/internal/assets"
	"campaignkit/internal/domain"
	"campaignkit/internal/providers/genai"
)

type geminiImageClient interface {
	GenerateImages(context.Context, genai.ImageRequest) ([]*domain.InlineImage, error)
	EditImage(context.Context, genai.EditRequest) (*domain.InlineImage, error)
}

// GeminiBatch serves batch-capable jobs through the Imagen model.
type GeminiBatch struct {
	client geminiImageClient
}

// NewGeminiBatch wraps a Gemini client as a batch backend.
func NewGeminiBatch(client geminiImageClient) *GeminiBatch {
	return &GeminiBatch{client: client}
}

// GenerateBatch fulfils assets.BatchBackend.
func (g *GeminiBatch) GenerateBatch(ctx context.Context, req assets.BatchRequest) ([]*domain.InlineImage, error) {
	if g == nil || g.client == nil {
		return nil, fmt.Errorf("gemini batch backend not configured")
	}
	return g.client.GenerateImages(ctx, genai.ImageRequest{
		Prompt:      req.Prompt,
		Count:       req.Count,
		AspectRatio: req.AspectRatio,
		RequestID:   req.RequestID,
	})
}

// GeminiEditor serves single-only jobs through the image edit model, one
// call per slot.
type GeminiEditor struct {
	client geminiImageClient
}

// NewGeminiEditor wraps a Gemini client as a single-image backend.
func NewGeminiEditor(client geminiImageClient) *GeminiEditor {
	return &GeminiEditor{client: client}
}

// GenerateOne fulfils assets.SingleBackend.
func (g *GeminiEditor) GenerateOne(ctx context.Context, req assets.SingleRequest) (*domain.InlineImage, error) {
	if g == nil || g.client == nil {
		return nil, fmt.Errorf("gemini editor not configured")
	}
	return g.client.EditImage(ctx, genai.EditRequest{
		Prompt:      req.Prompt,
		Reference:   req.Reference,
		Attachments: req.Attachments,
		AspectRatio: req.AspectRatio,
		Index:       req.Index,
		RequestID:   req.RequestID,
	})
}

var (
	_ assets.BatchBackend  = (*GeminiBatch)(nil)
	_ assets.SingleBackend = (*GeminiEditor)(nil)
)
