package textgen

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"campaignkit/internal/content"
	"campaignkit/internal/domain"
	"campaignkit/internal/infra"
	"campaignkit/internal/providers/genai"
)

type geminiTextClient interface {
	GenerateText(context.Context, genai.TextRequest) (*genai.TextResult, error)
}

// GeminiOptions configures the Gemini writer.
type GeminiOptions struct {
	Client     geminiTextClient
	Fallback   Writer
	OnFallback func(reason string, err error)
	Logger     *infra.Logger
}

// GeminiWriter asks Gemini for the content kit. URL signals use web search,
// which rules out a response schema, so they are requested as delimited text;
// image and manual signals are requested as a schema-constrained object.
type GeminiWriter struct {
	client geminiTextClient
	chain  fallbackChain
	logger *infra.Logger
}

// NewGeminiWriter builds a Gemini-backed writer.
func NewGeminiWriter(opts GeminiOptions) (*GeminiWriter, error) {
	if opts.Client == nil {
		return nil, errors.New("textgen: gemini client is required")
	}
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	return &GeminiWriter{
		client: opts.Client,
		chain:  fallbackChain{fallback: opts.Fallback, onFallback: opts.OnFallback},
		logger: logger,
	}, nil
}

// Write fulfils Writer.
func (g *GeminiWriter) Write(ctx context.Context, req Request) (*Response, error) {
	if err := req.Signal.Validate(); err != nil {
		return nil, err
	}
	locale := req.locale()
	textReq := genai.TextRequest{RequestID: req.RequestID}
	format := content.FormatObject
	switch req.Signal.Kind {
	case domain.SourceURL:
		format = content.FormatDelimited
		textReq.Grounded = true
	case domain.SourceImage:
		textReq.Image = req.Signal.Image
		textReq.Schema = genai.CatalogueSchema()
	default:
		textReq.Schema = genai.CatalogueSchema()
	}
	textReq.Instruction = BuildInstruction(req.Signal, locale, format)

	result, err := g.client.GenerateText(ctx, textReq)
	if err != nil {
		reason := "provider_error"
		if errors.Is(err, genai.ErrNoCredentials) {
			reason = "missing_api_key"
		}
		if res, used, ferr := g.chain.use(ctx, req, reason, err); used {
			g.logger.Warn().Err(err).Str("request_id", req.RequestID).Str("reason", reason).Msg("textgen: gemini fell back")
			return res, ferr
		}
		if errors.Is(err, domain.ErrProviderFailure) || errors.Is(err, domain.ErrMalformedResponse) || ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}

	return &Response{
		Raw:       content.RawResponse{Format: format, Body: result.Text},
		Citations: result.Citations,
		Provider:  geminiProviderName,
		Metadata: map[string]string{
			"model":  result.Model,
			"format": string(format),
			"locale": locale,
		},
	}, nil
}

var _ Writer = (*GeminiWriter)(nil)
