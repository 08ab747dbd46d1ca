package qwen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"campaignkit/internal/domain"
	"campaignkit/internal/infra"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("qwen: api key is required")

const generationPath = "/services/aigc/multimodal-generation/generation"

// Options configures the DashScope Qwen client.
type Options struct {
	APIKey         string
	BaseURL        string
	Model          string
	EditModel      string
	DefaultSize    string
	PromptExtend   bool
	Watermark      bool
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client calls the DashScope Qwen image generation and editing API. Each call
// yields at most one image.
type Client struct {
	apiKey       string
	model        string
	editModel    string
	defaultSize  string
	promptExtend bool
	watermark    bool
	http         *resty.Client
	logger       *infra.Logger
}

// ImageRequest captures the inputs for one generation. A non-empty Reference
// switches the call to the edit model.
type ImageRequest struct {
	Prompt         string
	NegativePrompt string
	Size           string
	Seed           int
	Reference      *domain.InlineImage
	RequestID      string
}

type generationRequest struct {
	Model      string           `json:"model"`
	Input      generationInput  `json:"input"`
	Parameters generationParams `json:"parameters"`
}

type generationInput struct {
	Messages []generationMessage `json:"messages"`
}

type generationMessage struct {
	Role    string              `json:"role"`
	Content []generationContent `json:"content"`
}

type generationContent struct {
	Image string `json:"image,omitempty"`
	Text  string `json:"text,omitempty"`
}

type generationParams struct {
	NegativePrompt string `json:"negative_prompt,omitempty"`
	Size           string `json:"size,omitempty"`
	PromptExtend   *bool  `json:"prompt_extend,omitempty"`
	Watermark      *bool  `json:"watermark,omitempty"`
	Seed           *int   `json:"seed,omitempty"`
}

type generationResponse struct {
	Output struct {
		Choices []struct {
			Message struct {
				Content []struct {
					Image string `json:"image"`
				} `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	} `json:"output"`
	RequestID string `json:"request_id"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewClient constructs a client with defaults for the international endpoint.
func NewClient(opts Options) (*Client, error) {
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://dashscope-intl.aliyuncs.com/api/v1"
	}

	var rc *resty.Client
	if opts.HTTPClient != nil {
		rc = resty.NewWithClient(opts.HTTPClient)
	} else {
		rc = resty.New().SetTimeout(timeout)
	}
	rc.SetBaseURL(baseURL).SetHeader("Content-Type", "application/json")

	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	return &Client{
		apiKey:       strings.TrimSpace(opts.APIKey),
		model:        firstNonEmpty(opts.Model, "qwen-image-plus"),
		editModel:    firstNonEmpty(opts.EditModel, "qwen-image-edit"),
		defaultSize:  firstNonEmpty(opts.DefaultSize, "1328*1328"),
		promptExtend: opts.PromptExtend,
		watermark:    opts.Watermark,
		http:         rc,
		logger:       logger,
	}, nil
}

// Model returns the configured text-to-image model identifier.
func (c *Client) Model() string {
	return c.model
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// GenerateImage invokes the API once and returns a single image.
func (c *Client) GenerateImage(ctx context.Context, req ImageRequest) (*domain.InlineImage, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIKey
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, errors.New("qwen: prompt is required")
	}

	model := c.model
	content := make([]generationContent, 0, 2)
	if !req.Reference.Empty() {
		model = c.editModel
		content = append(content, generationContent{
			Image: "data:" + req.Reference.MIMEType + ";base64," + req.Reference.Base64(),
		})
	}
	content = append(content, generationContent{Text: prompt})

	payload := generationRequest{
		Model: model,
		Input: generationInput{Messages: []generationMessage{{Role: "user", Content: content}}},
	}
	if neg := strings.TrimSpace(req.NegativePrompt); neg != "" {
		payload.Parameters.NegativePrompt = neg
	}
	if req.Reference.Empty() {
		payload.Parameters.Size = firstNonEmpty(req.Size, c.defaultSize)
	}
	if extend := c.promptExtend; extend {
		payload.Parameters.PromptExtend = &extend
	}
	if req.Seed > 0 {
		seed := req.Seed
		payload.Parameters.Seed = &seed
	}
	watermark := c.watermark
	payload.Parameters.Watermark = &watermark

	var (
		decoded generationResponse
		detail  errorResponse
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetBody(payload).
		SetResult(&decoded).
		SetError(&detail).
		Post(generationPath)
	if err != nil {
		return nil, fmt.Errorf("qwen: http request: %w", err)
	}
	if resp.IsError() {
		if detail.Message != "" {
			return nil, fmt.Errorf("qwen: %s (%s)", detail.Message, detail.Code)
		}
		return nil, fmt.Errorf("qwen: status %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	if decoded.Code != "" {
		return nil, fmt.Errorf("qwen: %s (%s)", decoded.Message, decoded.Code)
	}
	imageURL := firstImageURL(decoded)
	if imageURL == "" {
		return nil, domain.ErrEmptyPayload
	}
	img, err := c.download(ctx, imageURL)
	if err != nil {
		return nil, err
	}
	c.logger.Debug().
		Str("model", model).
		Str("request_id", req.RequestID).
		Str("remote_request_id", decoded.RequestID).
		Msg("qwen: generated image")
	return img, nil
}

func (c *Client) download(ctx context.Context, imageURL string) (*domain.InlineImage, error) {
	parsed, err := url.Parse(strings.TrimSpace(imageURL))
	if err != nil || parsed.Scheme == "" {
		return nil, fmt.Errorf("qwen: invalid image url: %s", imageURL)
	}
	resp, err := c.http.R().SetContext(ctx).Get(parsed.String())
	if err != nil {
		return nil, fmt.Errorf("qwen: download image: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("qwen: download status %d", resp.StatusCode())
	}
	data := resp.Body()
	if len(data) == 0 {
		return nil, domain.ErrEmptyPayload
	}
	return &domain.InlineImage{Data: data, MIMEType: normalizeFormat(resp.Header().Get("Content-Type"))}, nil
}

// SizeFor maps an aspect ratio to the closest size the model accepts.
func SizeFor(aspect domain.AspectRatio) string {
	switch aspect {
	case domain.AspectLandscape:
		return "1664*928"
	case domain.AspectPortrait:
		return "928*1664"
	case domain.AspectClassic:
		return "1472*1140"
	case domain.AspectTall:
		return "1140*1472"
	default:
		return "1328*1328"
	}
}

func firstImageURL(resp generationResponse) string {
	for _, choice := range resp.Output.Choices {
		for _, content := range choice.Message.Content {
			if url := strings.TrimSpace(content.Image); url != "" {
				return url
			}
		}
	}
	return ""
}

func normalizeFormat(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	switch mime {
	case "image/jpeg", "image/jpg":
		return "image/jpeg"
	case "":
		return "image/png"
	default:
		if strings.HasPrefix(mime, "image/") {
			return mime
		}
		return "image/png"
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
