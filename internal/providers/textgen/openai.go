package textgen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"campaignkit/internal/content"
	"campaignkit/internal/domain"
)

// OpenAIOptions configures the OpenAI-compatible chat completions writer.
type OpenAIOptions struct {
	APIKey       string
	Model        string
	BaseURL      string
	Organization string
	HTTPClient   *http.Client
	Fallback     Writer
	OnFallback   func(reason string, err error)
	OnWarning    func(reason, detail string)
}

// OpenAIWriter requests the content kit as delimited text from a chat
// completions endpoint. It has no web search, so URL signals are described to
// the model by address only and carry no citations.
type OpenAIWriter struct {
	apiKey string
	model  string
	http   *resty.Client
	chain  fallbackChain
}

const openAIDefaultTimeout = 90 * time.Second

const defaultOpenAIModel = "gpt-4o-mini"

var openAIModelCanonical = map[string]string{
	"gpt-4o-mini": "gpt-4o-mini",
	"gpt-4o":      "gpt-4o",
	"gpt-4.1":     "gpt-4.1",
}

var openAIModelAliases = map[string]string{
	"gpt4o-mini":             "gpt-4o-mini",
	"gpt4omini":              "gpt-4o-mini",
	"gpt-4o-mini-2024-07-18": "gpt-4o-mini",
	"gpt4o":                  "gpt-4o",
	"gpt-4o-2024-08-06":      "gpt-4o",
	"gpt4.1":                 "gpt-4.1",
}

type openAIChatRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type openAIContentPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *openAIImageURL `json:"image_url,omitempty"`
}

type openAIImageURL struct {
	URL string `json:"url"`
}

type openAIChatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type openAIErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// NewOpenAIWriter builds a writer. The model name is normalized against the
// supported list; unknown names resolve to the default model.
func NewOpenAIWriter(opts OpenAIOptions) (*OpenAIWriter, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	modelInput := strings.TrimSpace(opts.Model)
	model, reason := normalizeOpenAIModel(modelInput)
	if reason != "" && opts.OnWarning != nil {
		opts.OnWarning("model_"+reason, fmt.Sprintf("requested=%s resolved=%s", coalesce(modelInput, defaultOpenAIModel), model))
	}

	var rc *resty.Client
	if opts.HTTPClient != nil {
		rc = resty.NewWithClient(opts.HTTPClient)
	} else {
		rc = resty.New().SetTimeout(openAIDefaultTimeout)
	}
	rc.SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")
	if org := strings.TrimSpace(opts.Organization); org != "" {
		rc.SetHeader("OpenAI-Organization", org)
	}

	return &OpenAIWriter{
		apiKey: apiKey,
		model:  model,
		http:   rc,
		chain:  fallbackChain{fallback: opts.Fallback, onFallback: opts.OnFallback},
	}, nil
}

// Write fulfils Writer.
func (o *OpenAIWriter) Write(ctx context.Context, req Request) (*Response, error) {
	if err := req.Signal.Validate(); err != nil {
		return nil, err
	}
	locale := req.locale()
	instruction := BuildInstruction(req.Signal, locale, content.FormatDelimited)

	var userContent any = instruction
	if req.Signal.Kind == domain.SourceImage {
		img := req.Signal.Image
		userContent = []openAIContentPart{
			{Type: "text", Text: instruction},
			{Type: "image_url", ImageURL: &openAIImageURL{URL: "data:" + img.MIMEType + ";base64," + img.Base64()}},
		}
	}
	payload := openAIChatRequest{
		Model:       o.model,
		Temperature: 0.7,
		Messages: []openAIMessage{
			{Role: "system", Content: "You are a marketing copywriter. Follow the requested section layout exactly."},
			{Role: "user", Content: userContent},
		},
	}

	var (
		out    openAIChatResponse
		detail openAIErrorResponse
	)
	resp, err := o.http.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&out).
		SetError(&detail).
		Post("/chat/completions")
	if err != nil {
		return o.fail(ctx, req, "http_request", err)
	}
	if resp.IsError() {
		msg := coalesce(detail.Error.Message, resp.Status())
		return o.fail(ctx, req, fmt.Sprintf("http_%d", resp.StatusCode()), fmt.Errorf("openai status %d: %s", resp.StatusCode(), msg))
	}
	if len(out.Choices) == 0 {
		return o.fail(ctx, req, "empty_choices", errors.New("no choices"))
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return o.fail(ctx, req, "empty_response", errors.New("empty response"))
	}

	return &Response{
		Raw:      content.RawResponse{Format: content.FormatDelimited, Body: text},
		Provider: openAIProviderName,
		Metadata: map[string]string{
			"model":  coalesce(out.Model, o.model),
			"format": string(content.FormatDelimited),
			"locale": locale,
		},
	}, nil
}

func (o *OpenAIWriter) fail(ctx context.Context, req Request, reason string, cause error) (*Response, error) {
	if res, used, err := o.chain.use(ctx, req, reason, cause); used {
		return res, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	return nil, fmt.Errorf("%w: openai %s: %v", domain.ErrProviderFailure, reason, cause)
}

var _ Writer = (*OpenAIWriter)(nil)

func normalizeOpenAIModel(name string) (string, string) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return defaultOpenAIModel, ""
	}
	normalized := strings.ToLower(trimmed)
	normalized = strings.ReplaceAll(normalized, "_", "-")
	normalized = strings.ReplaceAll(normalized, " ", "-")
	if canonical, ok := openAIModelCanonical[normalized]; ok {
		return canonical, ""
	}
	if alias, ok := openAIModelAliases[normalized]; ok {
		return alias, "alias"
	}
	return defaultOpenAIModel, "defaulted"
}
