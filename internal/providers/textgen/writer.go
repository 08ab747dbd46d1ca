// Package textgen produces the raw marketing-copy response for a product
// signal. Writers only talk to a model; parsing belongs to package content.
package textgen

import (
	"context"
	"strings"

	"campaignkit/internal/content"
	"campaignkit/internal/domain"
)

const (
	staticProviderName = "static"
	geminiProviderName = "gemini"
	openAIProviderName = "openai"
)

// DefaultLocale is used when neither the request nor the signal names one.
const DefaultLocale = "pt-BR"

// Request is one content-generation call.
type Request struct {
	Signal    domain.SourceSignal
	Locale    string
	RequestID string
}

func (r Request) locale() string {
	return coalesce(r.Locale, r.Signal.Locale, DefaultLocale)
}

// Response is the untouched model output plus provider bookkeeping.
type Response struct {
	Raw       content.RawResponse
	Citations []content.Citation
	Provider  string
	Metadata  map[string]string
}

// Writer generates the raw content response for a product signal.
type Writer interface {
	Write(ctx context.Context, req Request) (*Response, error)
}

// fallbackChain records why the primary writer gave up and hands the request
// to the fallback writer when one is configured.
type fallbackChain struct {
	fallback   Writer
	onFallback func(reason string, err error)
}

func (f fallbackChain) use(ctx context.Context, req Request, reason string, cause error) (*Response, bool, error) {
	if f.fallback == nil || ctx.Err() != nil {
		return nil, false, nil
	}
	if f.onFallback != nil {
		f.onFallback(reason, cause)
	}
	res, err := f.fallback.Write(ctx, req)
	if res != nil {
		if res.Provider == "" {
			res.Provider = staticProviderName
		}
		if res.Metadata == nil {
			res.Metadata = map[string]string{}
		}
		if reason != "" {
			res.Metadata["fallback_reason"] = reason
		}
	}
	return res, true, err
}

func coalesce(values ...string) string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			return v
		}
	}
	return ""
}
