package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDetectLocale(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(r *http.Request)
		fallback string
		want     string
	}{
		{
			name: "x-locale overrides accept-language",
			setup: func(r *http.Request) {
				r.Header.Set("X-Locale", "en-US")
				r.Header.Set("Accept-Language", "es-ES")
			},
			want: "en",
		},
		{
			name: "accept-language used",
			setup: func(r *http.Request) {
				r.Header.Set("Accept-Language", "es-MX,en;q=0.5")
			},
			want: "es",
		},
		{
			name: "bare portuguese maps to brazilian",
			setup: func(r *http.Request) {
				r.Header.Set("Accept-Language", "pt")
			},
			fallback: "en",
			want:     "pt-BR",
		},
		{
			name: "unsupported x-locale falls through to accept-language",
			setup: func(r *http.Request) {
				r.Header.Set("X-Locale", "not a locale!!")
				r.Header.Set("Accept-Language", "en-GB")
			},
			want: "en",
		},
		{
			name:     "configured fallback",
			fallback: "es",
			want:     "es",
		},
		{
			name: "default to brazilian portuguese",
			want: "pt-BR",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.setup != nil {
				tc.setup(req)
			}
			got := newMatcher(tc.fallback).detect(req)
			if got != tc.want {
				t.Fatalf("detect() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestI18NStoresLocale(t *testing.T) {
	var seen string
	h := I18N("pt-BR")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = LocaleFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen != "en" {
		t.Fatalf("locale in context = %q, want en", seen)
	}
	if got := rec.Header().Get("Content-Language"); got != "en" {
		t.Fatalf("Content-Language = %q, want en", got)
	}
}

func TestLocaleFromContext(t *testing.T) {
	ctx := context.Background()
	if got := LocaleFromContext(ctx); got != DefaultLocale {
		t.Fatalf("LocaleFromContext() default = %q, want %q", got, DefaultLocale)
	}
	ctx = context.WithValue(ctx, LocaleKey, "es")
	if got := LocaleFromContext(ctx); got != "es" {
		t.Fatalf("LocaleFromContext() with value = %q, want %q", got, "es")
	}
}

func TestNormalizeLocale(t *testing.T) {
	if got := NormalizeLocale("en_US"); got != "en" && got != DefaultLocale {
		t.Fatalf("NormalizeLocale(en_US) = %q", got)
	}
	if got := NormalizeLocale("es-AR"); got != "es" {
		t.Fatalf("NormalizeLocale(es-AR) = %q, want es", got)
	}
	if got := NormalizeLocale(""); got != DefaultLocale {
		t.Fatalf("NormalizeLocale(\"\") = %q, want %q", got, DefaultLocale)
	}
}
