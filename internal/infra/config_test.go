package infra

import (
	"testing"
	"time"
)

func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TEXT_PROVIDER", "IMAGE_PROVIDER", "OPENAI_API_KEY", "QWEN_API_KEY",
		"ASSET_WORKERS", "BATCH_RETENTION", "CORS_ALLOWED_ORIGINS", "ASSET_TIMEOUT_SECONDS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("PORT", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.TextProvider != ProviderGemini || cfg.ImageProvider != ProviderGemini {
		t.Fatalf("providers = %q/%q", cfg.TextProvider, cfg.ImageProvider)
	}
	if cfg.AssetWorkers != 4 || cfg.BatchRetention != 256 {
		t.Fatalf("asset defaults = %d/%d", cfg.AssetWorkers, cfg.BatchRetention)
	}
	if cfg.AssetTimeout != 120*time.Second {
		t.Fatalf("AssetTimeout = %v", cfg.AssetTimeout)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("CORSAllowedOrigins = %#v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadConfigRejectsUnknownProvider(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("TEXT_PROVIDER", "claude")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for unknown text provider")
	}
}

func TestLoadConfigRequiresProviderKeys(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("IMAGE_PROVIDER", "qwen")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when QWEN_API_KEY is missing")
	}

	t.Setenv("QWEN_API_KEY", "k")
	t.Setenv("TEXT_PROVIDER", "OpenAI")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when OPENAI_API_KEY is missing")
	}

	t.Setenv("OPENAI_API_KEY", "k")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.TextProvider != ProviderOpenAI {
		t.Fatalf("TextProvider = %q, want lower-cased openai", cfg.TextProvider)
	}
}

func TestLoadConfigParsesLists(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("ASSET_DISPATCH_PER_SECOND", "2.5")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.CORSAllowedOrigins) != len(want) {
		t.Fatalf("CORSAllowedOrigins = %#v", cfg.CORSAllowedOrigins)
	}
	for i := range want {
		if cfg.CORSAllowedOrigins[i] != want[i] {
			t.Fatalf("CORSAllowedOrigins[%d] = %q, want %q", i, cfg.CORSAllowedOrigins[i], want[i])
		}
	}
	if cfg.AssetDispatchPerSecond != 2.5 {
		t.Fatalf("AssetDispatchPerSecond = %v", cfg.AssetDispatchPerSecond)
	}
}

func TestLoadConfigRejectsNonPositiveWorkers(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("ASSET_WORKERS", "0")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for ASSET_WORKERS=0")
	}
}
