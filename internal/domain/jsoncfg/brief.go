// Package jsoncfg holds the JSON documents accepted by the HTTP API and the
// CLI and compiles them into domain values.
package jsoncfg

import (
	"fmt"
	"strings"

	"campaignkit/internal/domain"
)

const (
	// DefaultBriefCount is used when a brief omits the number of images.
	DefaultBriefCount = 4
	// DefaultBriefAspectRatio is used when a brief omits the aspect ratio.
	DefaultBriefAspectRatio = string(domain.DefaultAspectRatio)
)

// ImagePayload is a base64 image, optionally a data URL.
type ImagePayload struct {
	Data     string `json:"data"`
	MIMEType string `json:"mime_type"`
}

// Decode returns nil for an absent payload.
func (p *ImagePayload) Decode() (*domain.InlineImage, error) {
	if p == nil || strings.TrimSpace(p.Data) == "" {
		return nil, nil
	}
	return domain.DecodeInlineImage(p.Data, p.MIMEType)
}

// AssetBrief describes a free-form image batch. Either Prompt or Title must
// be set; the structured fields are folded into the final prompt.
type AssetBrief struct {
	Field        string        `json:"field"`
	Prompt       string        `json:"prompt"`
	Title        string        `json:"title"`
	ProductType  string        `json:"product_type"`
	Style        string        `json:"style"`
	Background   string        `json:"background"`
	Instructions string        `json:"instructions"`
	AspectRatio  string        `json:"aspect_ratio"`
	Count        int           `json:"count"`
	BackendMode  string        `json:"backend_mode"`
	Reference    *ImagePayload `json:"reference"`
}

// Normalize trims every text field and fills defaults. Counts outside the
// allowed range are left for Validate to reject.
func (b *AssetBrief) Normalize() {
	if b == nil {
		return
	}
	for _, s := range []*string{&b.Field, &b.Prompt, &b.Title, &b.ProductType, &b.Style, &b.Background, &b.Instructions, &b.AspectRatio, &b.BackendMode} {
		*s = strings.TrimSpace(*s)
	}
	b.BackendMode = strings.ToLower(b.BackendMode)
	if b.Count == 0 {
		b.Count = DefaultBriefCount
	}
	if b.AspectRatio == "" {
		b.AspectRatio = DefaultBriefAspectRatio
	}
}

// Validate checks the brief before it is compiled.
func (b AssetBrief) Validate() error {
	if b.Prompt == "" && b.Title == "" {
		return fmt.Errorf("%w: prompt or title is required", domain.ErrInvalidInput)
	}
	if b.Count < 1 || b.Count > domain.MaxJobCount {
		return fmt.Errorf("%w: count must be between 1 and %d", domain.ErrInvalidInput, domain.MaxJobCount)
	}
	if _, ok := domain.ParseAspectRatio(b.AspectRatio); !ok {
		return fmt.Errorf("%w: aspect_ratio must be one of 1:1, 4:3, 3:4, 16:9, 9:16", domain.ErrInvalidInput)
	}
	switch domain.BackendMode(b.BackendMode) {
	case "", domain.BackendBatchCapable, domain.BackendSingleOnly:
	default:
		return fmt.Errorf("%w: backend_mode must be batch or single", domain.ErrInvalidInput)
	}
	return nil
}

// ComposePrompt folds the structured fields into one prompt. A bare prompt
// is returned unchanged.
func (b AssetBrief) ComposePrompt() string {
	var parts []string
	if b.Title != "" {
		subject := b.Title
		if b.ProductType != "" {
			subject += " (" + b.ProductType + ")"
		}
		parts = append(parts, "Product: "+subject+".")
	}
	if b.Style != "" {
		parts = append(parts, "Style: "+b.Style+".")
	}
	if b.Background != "" {
		parts = append(parts, "Background: "+b.Background+".")
	}
	if b.Instructions != "" {
		parts = append(parts, b.Instructions)
	}
	if b.Prompt != "" {
		parts = append(parts, b.Prompt)
	}
	return strings.Join(parts, " ")
}

// Job normalizes, validates and compiles the brief.
func (b AssetBrief) Job() (domain.GenerationJob, error) {
	b.Normalize()
	if err := b.Validate(); err != nil {
		return domain.GenerationJob{}, err
	}
	ref, err := b.Reference.Decode()
	if err != nil {
		return domain.GenerationJob{}, err
	}
	ratio, _ := domain.ParseAspectRatio(b.AspectRatio)
	job := domain.GenerationJob{
		Prompt:         b.ComposePrompt(),
		ReferenceImage: ref,
		AspectRatio:    ratio,
		BackendMode:    domain.BackendMode(b.BackendMode),
		Count:          b.Count,
	}
	job.Normalize()
	return job, job.Validate()
}

// ProductPayload is the manual product form.
type ProductPayload struct {
	Name          string   `json:"name"`
	Category      string   `json:"category"`
	Description   string   `json:"description"`
	Audience      string   `json:"audience"`
	Price         string   `json:"price"`
	Differentials []string `json:"differentials"`
}

// SourcePayload is the content request document. Source selects which of
// Image, URL or Product is read.
type SourcePayload struct {
	Source  string         `json:"source"`
	Image   *ImagePayload  `json:"image"`
	URL     string         `json:"url"`
	Product ProductPayload `json:"product"`
	Locale  string         `json:"locale"`
	Tone    string         `json:"tone"`
}

// Signal converts the payload. preferredLocale fills an empty Locale.
func (p SourcePayload) Signal(preferredLocale string) (domain.SourceSignal, error) {
	signal := domain.SourceSignal{
		Kind:   domain.SourceKind(strings.ToLower(strings.TrimSpace(p.Source))),
		URL:    strings.TrimSpace(p.URL),
		Locale: strings.TrimSpace(p.Locale),
		Tone:   strings.TrimSpace(p.Tone),
		Product: domain.ManualProduct{
			Name:          strings.TrimSpace(p.Product.Name),
			Category:      strings.TrimSpace(p.Product.Category),
			Description:   strings.TrimSpace(p.Product.Description),
			Audience:      strings.TrimSpace(p.Product.Audience),
			Price:         strings.TrimSpace(p.Product.Price),
			Differentials: p.Product.Differentials,
		},
	}
	if signal.Locale == "" {
		signal.Locale = preferredLocale
	}
	if signal.Kind == domain.SourceImage {
		img, err := p.Image.Decode()
		if err != nil {
			return domain.SourceSignal{}, err
		}
		signal.Image = img
	}
	return signal, signal.Validate()
}
