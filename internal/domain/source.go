package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// SourceKind identifies which product signal the user supplied.
type SourceKind string

const (
	SourceImage  SourceKind = "image"
	SourceURL    SourceKind = "url"
	SourceManual SourceKind = "manual"
)

// ManualProduct holds the form fields used when neither an image nor a URL is
// available.
type ManualProduct struct {
	Name          string   `json:"name"`
	Category      string   `json:"category"`
	Description   string   `json:"description"`
	Audience      string   `json:"audience"`
	Price         string   `json:"price"`
	Differentials []string `json:"differentials"`
}

func (p ManualProduct) empty() bool {
	return strings.TrimSpace(p.Name) == "" && strings.TrimSpace(p.Description) == ""
}

// SourceSignal is the single product signal a campaign is generated from.
type SourceSignal struct {
	Kind    SourceKind
	Image   *InlineImage
	URL     string
	Product ManualProduct
	Locale  string
	Tone    string
}

// Validate rejects signals that cannot produce a request.
func (s SourceSignal) Validate() error {
	switch s.Kind {
	case SourceImage:
		if s.Image.Empty() {
			return fmt.Errorf("%w: image source requires image data", ErrInvalidInput)
		}
	case SourceURL:
		raw := strings.TrimSpace(s.URL)
		if raw == "" {
			return fmt.Errorf("%w: url source requires a url", ErrInvalidInput)
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: url must be an absolute http(s) url", ErrInvalidInput)
		}
	case SourceManual:
		if s.Product.empty() {
			return fmt.Errorf("%w: manual source requires a product name or description", ErrInvalidInput)
		}
	case "":
		return fmt.Errorf("%w: source kind is required", ErrInvalidInput)
	default:
		return fmt.Errorf("%w: unknown source kind %q", ErrInvalidInput, s.Kind)
	}
	return nil
}

// Subject returns a short human label for the product, used in logs and in
// synthetic output.
func (s SourceSignal) Subject() string {
	switch s.Kind {
	case SourceManual:
		if name := strings.TrimSpace(s.Product.Name); name != "" {
			return name
		}
		return firstWords(s.Product.Description, 6)
	case SourceURL:
		if u, err := url.Parse(strings.TrimSpace(s.URL)); err == nil && u.Host != "" {
			if slug := lastPathSegment(u.Path); slug != "" {
				return strings.ReplaceAll(strings.ReplaceAll(slug, "-", " "), "_", " ")
			}
			return strings.TrimPrefix(u.Host, "www.")
		}
		return s.URL
	default:
		return "product"
	}
}

func firstWords(s string, n int) string {
	fields := strings.Fields(s)
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}

func lastPathSegment(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	if idx := strings.LastIndex(p, "/"); idx >= 0 {
		p = p[idx+1:]
	}
	if idx := strings.LastIndex(p, "."); idx > 0 {
		p = p[:idx]
	}
	return p
}
