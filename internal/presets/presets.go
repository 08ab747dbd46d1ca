// Package presets turns the named generators of the workspace (logos,
// banners, product media, notification mockups) into GenerationJobs.
package presets

import (
	"fmt"
	"strings"

	"campaignkit/internal/domain"
)

// Kind names one preset generator.
type Kind string

const (
	KindLogo         Kind = "logo"
	KindBanner       Kind = "banner"
	KindAppIcon      Kind = "app_icon"
	KindWallpaper    Kind = "wallpaper"
	KindProductMedia Kind = "product_media"
	KindNotification Kind = "notification"
)

// Request is the caller input for one preset action. Only the fields the
// preset needs are read.
type Request struct {
	Kind      Kind                `json:"kind"`
	Prompt    string              `json:"prompt"`
	Style     string              `json:"style"`
	Reference *domain.InlineImage `json:"-"`
	Media     MediaKind           `json:"media"`
	Count     int                 `json:"count"`
	// Notification is required for KindNotification.
	Notification *NotificationSpec `json:"-"`
}

// Descriptor describes a preset for listings.
type Descriptor struct {
	ID            string             `json:"id"`
	Kind          Kind               `json:"kind"`
	Title         string             `json:"title"`
	Count         int                `json:"count"`
	AspectRatio   domain.AspectRatio `json:"aspect_ratio"`
	RequiresImage bool               `json:"requires_image"`
	Group         string             `json:"group,omitempty"`
}

type promptPreset struct {
	kind   Kind
	title  string
	prefix string
	count  int
	aspect domain.AspectRatio
}

var promptPresets = map[Kind]promptPreset{
	KindLogo: {
		kind:   KindLogo,
		title:  "Logos",
		prefix: "A minimalist flat vector logo, centered on a solid white background, for: ",
		count:  10,
		aspect: domain.AspectSquare,
	},
	KindBanner: {
		kind:   KindBanner,
		title:  "Banners",
		prefix: "A promotional web banner with cinematic lighting, high resolution, 4k. The banner is about: ",
		count:  10,
		aspect: domain.AspectLandscape,
	},
	KindAppIcon: {
		kind:   KindAppIcon,
		title:  "App icons",
		prefix: "A minimalist vector app icon, flat design, centered on a solid white background, for: ",
		count:  6,
		aspect: domain.AspectSquare,
	},
	KindWallpaper: {
		kind:   KindWallpaper,
		title:  "Phone wallpapers",
		prefix: "A beautiful abstract phone wallpaper, subtle, high resolution, 4k, cinematic lighting, related to: ",
		count:  6,
		aspect: domain.AspectPortrait,
	},
}

var promptPresetOrder = []Kind{KindLogo, KindBanner, KindAppIcon, KindWallpaper}

// ParseKind returns the preset kind for raw.
func ParseKind(raw string) (Kind, bool) {
	kind := Kind(strings.ToLower(strings.TrimSpace(raw)))
	switch kind {
	case KindProductMedia, KindNotification:
		return kind, true
	}
	_, ok := promptPresets[kind]
	return kind, ok
}

// Build returns the job for req. Validation errors wrap domain.ErrInvalidInput.
func Build(req Request) (domain.GenerationJob, error) {
	switch req.Kind {
	case KindProductMedia:
		return buildProductMedia(req)
	case KindNotification:
		return buildNotification(req)
	}
	preset, ok := promptPresets[req.Kind]
	if !ok {
		return domain.GenerationJob{}, fmt.Errorf("%w: unknown preset %q", domain.ErrInvalidInput, req.Kind)
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return domain.GenerationJob{}, fmt.Errorf("%w: %s prompt is required", domain.ErrInvalidInput, req.Kind)
	}
	count, err := resolveCount(req.Count, preset.count, domain.MaxJobCount)
	if err != nil {
		return domain.GenerationJob{}, err
	}

	job := domain.GenerationJob{
		Prompt:      withStyle(req.Style, preset.prefix+prompt),
		AspectRatio: preset.aspect,
		Count:       count,
	}
	if !req.Reference.Empty() {
		job.ReferenceImage = req.Reference
	}
	job.Normalize()
	return job, job.Validate()
}

// List returns every preset in display order.
func List() []Descriptor {
	out := make([]Descriptor, 0, len(promptPresetOrder)+len(mediaOrder)+1)
	for _, kind := range promptPresetOrder {
		p := promptPresets[kind]
		out = append(out, Descriptor{
			ID:          string(kind),
			Kind:        kind,
			Title:       p.title,
			Count:       p.count,
			AspectRatio: p.aspect,
		})
	}
	for _, id := range mediaOrder {
		m := mediaPresets[id]
		out = append(out, Descriptor{
			ID:            string(id),
			Kind:          KindProductMedia,
			Title:         m.title,
			Count:         1,
			AspectRatio:   m.aspect,
			RequiresImage: true,
			Group:         m.group,
		})
	}
	out = append(out, Descriptor{
		ID:            string(KindNotification),
		Kind:          KindNotification,
		Title:         "Sales notification mockup",
		Count:         1,
		AspectRatio:   domain.AspectPortrait,
		RequiresImage: true,
	})
	return out
}

func withStyle(style, prompt string) string {
	if style = strings.TrimSpace(style); style == "" {
		return prompt
	}
	return fmt.Sprintf("Style %s. %s", style, prompt)
}

func resolveCount(requested, fallback, limit int) (int, error) {
	if requested == 0 {
		return fallback, nil
	}
	if requested < 1 || requested > limit {
		return 0, fmt.Errorf("%w: count must be between 1 and %d", domain.ErrInvalidInput, limit)
	}
	return requested, nil
}
