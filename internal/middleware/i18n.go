package middleware

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

type localeContextKey struct{}

var LocaleKey = localeContextKey{}

// DefaultLocale is used when neither the request nor the configuration
// names a supported locale.
const DefaultLocale = "pt-BR"

// SupportedLocales lists the locales content can be written in.
var SupportedLocales = []language.Tag{
	language.BrazilianPortuguese,
	language.English,
	language.Spanish,
}

// I18N resolves the request locale from X-Locale, then Accept-Language, and
// stores the canonical tag in the request context.
func I18N(defaultLocale string) func(http.Handler) http.Handler {
	matcher := newMatcher(defaultLocale)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := matcher.detect(r)
			w.Header().Set("Content-Language", locale)
			ctx := context.WithValue(r.Context(), LocaleKey, locale)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type localeMatcher struct {
	supported []language.Tag
	matcher   language.Matcher
}

func newMatcher(defaultLocale string) localeMatcher {
	fallback, err := language.Parse(defaultLocale)
	if err != nil {
		fallback = language.BrazilianPortuguese
	}
	supported := []language.Tag{fallback}
	for _, tag := range SupportedLocales {
		if tag != fallback {
			supported = append(supported, tag)
		}
	}
	return localeMatcher{supported: supported, matcher: language.NewMatcher(supported)}
}

func (m localeMatcher) detect(r *http.Request) string {
	return m.match(r.Header.Get("X-Locale"), r.Header.Get("Accept-Language"))
}

func (m localeMatcher) match(explicit, accept string) string {
	if v := strings.TrimSpace(explicit); v != "" {
		if tag, err := language.Parse(v); err == nil {
			if _, idx, conf := m.matcher.Match(tag); conf != language.No {
				return m.supported[idx].String()
			}
		}
	}
	if accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			if _, idx, conf := m.matcher.Match(tags...); conf != language.No {
				return m.supported[idx].String()
			}
		}
	}
	return m.supported[0].String()
}

var defaultMatcher = newMatcher(DefaultLocale)

// NormalizeLocale maps an arbitrary locale string to a supported tag.
func NormalizeLocale(raw string) string {
	return defaultMatcher.match(raw, "")
}

func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(LocaleKey).(string); ok && v != "" {
		return v
	}
	return DefaultLocale
}
