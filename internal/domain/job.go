package domain

import (
	"fmt"
	"strings"
)

// BackendMode tells the orchestrator how the image backend accepts work.
type BackendMode string

const (
	// BackendBatchCapable backends return many images from a single call.
	BackendBatchCapable BackendMode = "batch"
	// BackendSingleOnly backends return at most one image per call. Reference
	// image editing always runs in this mode.
	BackendSingleOnly BackendMode = "single"
)

// AspectRatio enumerates the ratios accepted by the image backends.
type AspectRatio string

const (
	AspectSquare    AspectRatio = "1:1"
	AspectLandscape AspectRatio = "16:9"
	AspectPortrait  AspectRatio = "9:16"
	AspectClassic   AspectRatio = "4:3"
	AspectTall      AspectRatio = "3:4"
)

var allowedAspectRatios = map[AspectRatio]struct{}{
	AspectSquare:    {},
	AspectLandscape: {},
	AspectPortrait:  {},
	AspectClassic:   {},
	AspectTall:      {},
}

const (
	// MaxJobCount caps the number of slots a single action may request.
	MaxJobCount = 10
	// DefaultAspectRatio is applied when a job omits the ratio.
	DefaultAspectRatio = AspectSquare
)

// Attachment is an extra labelled image sent alongside the reference image,
// such as an app icon for a notification mockup.
type Attachment struct {
	Label string       `json:"label"`
	Image *InlineImage `json:"image"`
}

// GenerationJob describes one user action that produces an ordered set of
// images.
type GenerationJob struct {
	Prompt         string       `json:"prompt"`
	ReferenceImage *InlineImage `json:"reference_image,omitempty"`
	Attachments    []Attachment `json:"attachments,omitempty"`
	AspectRatio    AspectRatio  `json:"aspect_ratio"`
	BackendMode    BackendMode  `json:"backend_mode"`
	Count          int          `json:"count"`
}

// ParseAspectRatio returns the canonical ratio for raw or false when the
// ratio is not supported.
func ParseAspectRatio(raw string) (AspectRatio, bool) {
	ratio := AspectRatio(strings.TrimSpace(raw))
	if ratio == "" {
		return DefaultAspectRatio, true
	}
	_, ok := allowedAspectRatios[ratio]
	return ratio, ok
}

// Normalize fills defaults. A reference image always forces the single-image
// edit path.
func (j *GenerationJob) Normalize() {
	if j == nil {
		return
	}
	j.Prompt = strings.TrimSpace(j.Prompt)
	if j.AspectRatio == "" {
		j.AspectRatio = DefaultAspectRatio
	}
	if j.ReferenceImage != nil && !j.ReferenceImage.Empty() {
		j.BackendMode = BackendSingleOnly
	}
	if j.BackendMode == "" {
		j.BackendMode = BackendBatchCapable
	}
}

// Validate enforces the job preconditions checked before any dispatch.
func (j GenerationJob) Validate() error {
	if strings.TrimSpace(j.Prompt) == "" {
		return fmt.Errorf("%w: prompt is required", ErrInvalidInput)
	}
	if j.Count < 1 || j.Count > MaxJobCount {
		return fmt.Errorf("%w: count must be between 1 and %d", ErrInvalidInput, MaxJobCount)
	}
	if _, ok := allowedAspectRatios[j.AspectRatio]; !ok {
		return fmt.Errorf("%w: unsupported aspect ratio %q", ErrInvalidInput, j.AspectRatio)
	}
	switch j.BackendMode {
	case BackendBatchCapable:
		if j.ReferenceImage != nil {
			return fmt.Errorf("%w: reference images require single mode", ErrInvalidInput)
		}
	case BackendSingleOnly:
	default:
		return fmt.Errorf("%w: unknown backend mode %q", ErrInvalidInput, j.BackendMode)
	}
	if j.ReferenceImage != nil && j.ReferenceImage.Empty() {
		return fmt.Errorf("%w: reference image is empty", ErrInvalidInput)
	}
	if len(j.Attachments) > 0 && j.ReferenceImage == nil {
		return fmt.Errorf("%w: attachments require a reference image", ErrInvalidInput)
	}
	for i, a := range j.Attachments {
		if a.Image.Empty() {
			return fmt.Errorf("%w: attachment %d is empty", ErrInvalidInput, i)
		}
	}
	return nil
}
