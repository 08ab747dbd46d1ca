// Package bootstrap assembles the campaign service from configuration. The
// API server and the CLI share it so both pick providers the same way.
package bootstrap

import (
	"context"
	"fmt"

	"campaignkit/internal/assets"
	"campaignkit/internal/campaign"
	"campaignkit/internal/infra"
	"campaignkit/internal/providers/genai"
	"campaignkit/internal/providers/image"
	"campaignkit/internal/providers/qwen"
	"campaignkit/internal/providers/textgen"
)

// NewService wires providers, the orchestrator and the batch registry.
func NewService(ctx context.Context, cfg *infra.Config, logger *infra.Logger) (*campaign.Service, error) {
	gem, err := genai.NewClient(ctx, genai.Options{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		TextModel:  cfg.GeminiTextModel,
		ImageModel: cfg.GeminiImageModel,
		EditModel:  cfg.GeminiEditModel,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	writer, err := newWriter(cfg, gem, logger)
	if err != nil {
		return nil, err
	}
	batch, single, err := newImageBackends(cfg, gem, logger)
	if err != nil {
		return nil, err
	}
	orch, err := assets.NewOrchestrator(assets.Options{
		Batch:             batch,
		Single:            single,
		Workers:           cfg.AssetWorkers,
		DispatchPerSecond: cfg.AssetDispatchPerSecond,
		Timeout:           cfg.AssetTimeout,
		Logger:            logger,
	})
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("text_provider", cfg.TextProvider).
		Str("image_provider", cfg.ImageProvider).
		Bool("gemini_synthetic", gem.Synthetic()).
		Msg("bootstrap: providers ready")

	return campaign.NewService(campaign.Options{
		Writer:        writer,
		Orchestrator:  orch,
		Registry:      assets.NewRegistry(cfg.BatchRetention),
		DefaultLocale: cfg.DefaultLocale,
		Logger:        logger,
	})
}

func newWriter(cfg *infra.Config, gem *genai.Client, logger *infra.Logger) (textgen.Writer, error) {
	static := textgen.NewStaticWriter()
	onFallback := func(provider string) func(string, error) {
		return func(reason string, err error) {
			logger.Warn().Err(err).Str("provider", provider).Str("reason", reason).Msg("textgen: using static fallback")
		}
	}

	switch cfg.TextProvider {
	case infra.ProviderStatic:
		return static, nil
	case infra.ProviderOpenAI:
		return textgen.NewOpenAIWriter(textgen.OpenAIOptions{
			APIKey:       cfg.OpenAIAPIKey,
			Model:        cfg.OpenAIModel,
			BaseURL:      cfg.OpenAIBaseURL,
			Organization: cfg.OpenAIOrg,
			Fallback:     static,
			OnFallback:   onFallback(infra.ProviderOpenAI),
			OnWarning: func(reason, detail string) {
				logger.Warn().Str("reason", reason).Str("detail", detail).Msg("textgen: openai configuration adjusted")
			},
		})
	case infra.ProviderGemini:
		return textgen.NewGeminiWriter(textgen.GeminiOptions{
			Client:     gem,
			Fallback:   static,
			OnFallback: onFallback(infra.ProviderGemini),
			Logger:     logger,
		})
	default:
		return nil, fmt.Errorf("bootstrap: unsupported text provider %q", cfg.TextProvider)
	}
}

// newImageBackends returns the batch and single backends. Gemini always
// serves batch-capable jobs; Qwen only takes over the single-image path and
// falls back to the Gemini editor when it cannot answer.
func newImageBackends(cfg *infra.Config, gem *genai.Client, logger *infra.Logger) (assets.BatchBackend, assets.SingleBackend, error) {
	batch := image.NewGeminiBatch(gem)
	editor := image.NewGeminiEditor(gem)

	switch cfg.ImageProvider {
	case infra.ProviderGemini:
		return batch, editor, nil
	case infra.ProviderQwen:
		client, err := qwen.NewClient(qwen.Options{
			APIKey:  cfg.QwenAPIKey,
			BaseURL: cfg.QwenBaseURL,
			Model:   cfg.QwenModel,
			Logger:  logger,
		})
		if err != nil {
			return nil, nil, err
		}
		return batch, image.NewQwenSingle(client, editor, logger), nil
	default:
		return nil, nil, fmt.Errorf("bootstrap: unsupported image provider %q", cfg.ImageProvider)
	}
}
