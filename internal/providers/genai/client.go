package genai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	sdk "google.golang.org/genai"

	"campaignkit/internal/content"
	"campaignkit/internal/domain"
	"campaignkit/internal/infra"
)

// ErrNoCredentials is returned by calls that have no synthetic rendition when
// the client was built without an API key.
var ErrNoCredentials = errors.New("genai: api key is not configured")

// maxImagesPerCall is the most images the image model returns from one call.
const maxImagesPerCall = 4

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	TextModel  string
	ImageModel string
	EditModel  string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client is a facade over the Gemini SDK. Without an API key image calls are
// answered with deterministic synthetic PNGs so local runs and tests work
// end to end; text calls return ErrNoCredentials.
type Client struct {
	sdk        *sdk.Client
	textModel  string
	imageModel string
	editModel  string
	logger     *infra.Logger
}

// TextRequest is one text-generation call.
type TextRequest struct {
	Instruction string
	Image       *domain.InlineImage
	// Schema switches the call to JSON object mode.
	Schema *sdk.Schema
	// Grounded enables web search; it cannot be combined with Schema.
	Grounded  bool
	RequestID string
}

// TextResult is the text returned by the model plus any grounding sources.
type TextResult struct {
	Text      string
	Citations []content.Citation
	Model     string
}

// ImageRequest asks the image model for Count images at once.
type ImageRequest struct {
	Prompt      string
	Count       int
	AspectRatio domain.AspectRatio
	RequestID   string
}

// EditRequest asks the edit model for one image derived from Reference.
type EditRequest struct {
	Prompt      string
	Reference   *domain.InlineImage
	Attachments []domain.Attachment
	AspectRatio domain.AspectRatio
	Index       int
	RequestID   string
}

// NewClient constructs a Gemini client. An empty API key yields a client in
// synthetic mode.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}

	c := &Client{
		textModel:  firstNonEmpty(opts.TextModel, "gemini-2.5-flash"),
		imageModel: firstNonEmpty(opts.ImageModel, "imagen-4.0-generate-001"),
		editModel:  firstNonEmpty(opts.EditModel, "gemini-2.5-flash-image"),
		logger:     logger,
	}

	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		logger.Warn().Msg("genai: no api key configured; image calls are synthetic")
		return c, nil
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	cfg := &sdk.ClientConfig{
		APIKey:     apiKey,
		Backend:    sdk.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		cfg.HTTPOptions = sdk.HTTPOptions{BaseURL: base}
	}
	client, err := sdk.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("genai: create client: %w", err)
	}
	c.sdk = client
	return c, nil
}

// Synthetic reports whether the client answers without calling the API.
func (c *Client) Synthetic() bool {
	return c.sdk == nil
}

// TextModel returns the configured text model identifier.
func (c *Client) TextModel() string {
	return c.textModel
}

// GenerateText performs one text-generation call.
func (c *Client) GenerateText(ctx context.Context, req TextRequest) (*TextResult, error) {
	if c.sdk == nil {
		return nil, ErrNoCredentials
	}
	if req.Grounded && req.Schema != nil {
		return nil, fmt.Errorf("%w: grounded calls cannot use a response schema", domain.ErrInvalidInput)
	}

	parts := make([]*sdk.Part, 0, 2)
	if !req.Image.Empty() {
		parts = append(parts, sdk.NewPartFromBytes(req.Image.Data, req.Image.MIMEType))
	}
	parts = append(parts, sdk.NewPartFromText(req.Instruction))

	cfg := &sdk.GenerateContentConfig{}
	if req.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = req.Schema
	}
	if req.Grounded {
		cfg.Tools = []*sdk.Tool{{GoogleSearch: &sdk.GoogleSearch{}}}
	}

	start := time.Now()
	resp, err := c.sdk.Models.GenerateContent(ctx, c.textModel, []*sdk.Content{sdk.NewContentFromParts(parts, sdk.RoleUser)}, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini text: %v", domain.ErrProviderFailure, err)
	}
	text := responseText(resp)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: gemini returned no text", domain.ErrMalformedResponse)
	}

	c.logger.Debug().
		Str("request_id", req.RequestID).
		Str("model", c.textModel).
		Bool("grounded", req.Grounded).
		Bool("object_mode", req.Schema != nil).
		Dur("elapsed", time.Since(start)).
		Msg("genai: generated text")

	return &TextResult{Text: text, Citations: groundingCitations(resp), Model: c.textModel}, nil
}

// GenerateImages returns up to req.Count images in request order. Calls are
// chunked to the model's per-call limit; a failed chunk leaves nil entries so
// the remaining chunks still count.
func (c *Client) GenerateImages(ctx context.Context, req ImageRequest) ([]*domain.InlineImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	count := req.Count
	if count <= 0 {
		count = 1
	}
	if c.sdk == nil {
		return c.syntheticImages(req.Prompt, req.RequestID, req.AspectRatio, 0, count), nil
	}

	out := make([]*domain.InlineImage, 0, count)
	var lastErr error
	failed := 0
	for len(out) < count {
		n := min(maxImagesPerCall, count-len(out))
		chunk, err := c.generateImageChunk(ctx, req, n)
		if err != nil {
			lastErr = err
			failed++
			c.logger.Warn().Err(err).Str("request_id", req.RequestID).Int("chunk_size", n).Msg("genai: image chunk failed")
		}
		for i := 0; i < n; i++ {
			var img *domain.InlineImage
			if i < len(chunk) {
				img = chunk[i]
			}
			out = append(out, img)
		}
	}
	if failed > 0 && failed == (count+maxImagesPerCall-1)/maxImagesPerCall {
		return nil, fmt.Errorf("%w: imagen: %v", domain.ErrProviderFailure, lastErr)
	}
	return out, nil
}

func (c *Client) generateImageChunk(ctx context.Context, req ImageRequest, n int) ([]*domain.InlineImage, error) {
	resp, err := c.sdk.Models.GenerateImages(ctx, c.imageModel, req.Prompt, &sdk.GenerateImagesConfig{
		NumberOfImages: int32(n),
		AspectRatio:    string(req.AspectRatio),
		OutputMIMEType: "image/png",
	})
	if err != nil {
		return nil, err
	}
	images := make([]*domain.InlineImage, 0, len(resp.GeneratedImages))
	for _, generated := range resp.GeneratedImages {
		if generated == nil || generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
			images = append(images, nil)
			continue
		}
		images = append(images, &domain.InlineImage{
			Data:     generated.Image.ImageBytes,
			MIMEType: firstNonEmpty(generated.Image.MIMEType, "image/png"),
		})
	}
	return images, nil
}

// EditImage returns one image derived from the reference image. Attachments
// follow the reference, each introduced by its label.
func (c *Client) EditImage(ctx context.Context, req EditRequest) (*domain.InlineImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.sdk == nil {
		seedPrompt := req.Prompt
		if !req.Reference.Empty() {
			seedPrompt += "|" + deterministicSeed(req.Reference.Data)
		}
		return c.syntheticImages(seedPrompt, req.RequestID, req.AspectRatio, req.Index, 1)[0], nil
	}

	parts := make([]*sdk.Part, 0, 2+2*len(req.Attachments))
	if !req.Reference.Empty() {
		parts = append(parts, sdk.NewPartFromBytes(req.Reference.Data, req.Reference.MIMEType))
	}
	parts = append(parts, sdk.NewPartFromText(editPrompt(req)))
	for _, a := range req.Attachments {
		if a.Image.Empty() {
			continue
		}
		if label := strings.TrimSpace(a.Label); label != "" {
			parts = append(parts, sdk.NewPartFromText(label))
		}
		parts = append(parts, sdk.NewPartFromBytes(a.Image.Data, a.Image.MIMEType))
	}

	resp, err := c.sdk.Models.GenerateContent(ctx, c.editModel, []*sdk.Content{sdk.NewContentFromParts(parts, sdk.RoleUser)}, &sdk.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: gemini edit: %v", domain.ErrProviderFailure, err)
	}
	img := firstInlineImage(resp)
	if img.Empty() {
		return nil, domain.ErrEmptyPayload
	}

	c.logger.Debug().
		Str("request_id", req.RequestID).
		Str("model", c.editModel).
		Int("slot", req.Index).
		Msg("genai: generated edited image")
	return img, nil
}

func editPrompt(req EditRequest) string {
	prompt := strings.TrimSpace(req.Prompt)
	if req.AspectRatio != "" && req.AspectRatio != domain.AspectSquare {
		prompt += "\nAspect ratio: " + string(req.AspectRatio)
	}
	return prompt
}

func responseText(resp *sdk.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	return b.String()
}

func groundingCitations(resp *sdk.GenerateContentResponse) []content.Citation {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil
	}
	meta := resp.Candidates[0].GroundingMetadata
	if meta == nil {
		return nil
	}
	out := make([]content.Citation, 0, len(meta.GroundingChunks))
	for _, chunk := range meta.GroundingChunks {
		if chunk == nil || chunk.Web == nil || strings.TrimSpace(chunk.Web.URI) == "" {
			continue
		}
		out = append(out, content.Citation{Title: chunk.Web.Title, URI: chunk.Web.URI})
	}
	return out
}

func firstInlineImage(resp *sdk.GenerateContentResponse) *domain.InlineImage {
	if resp == nil {
		return nil
	}
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			return &domain.InlineImage{
				Data:     part.InlineData.Data,
				MIMEType: firstNonEmpty(part.InlineData.MIMEType, "image/png"),
			}
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
