package presets

import (
	"errors"
	"strings"
	"testing"

	"campaignkit/internal/domain"
)

func png() *domain.InlineImage {
	return &domain.InlineImage{Data: []byte{0x89, 'P', 'N', 'G'}, MIMEType: "image/png"}
}

func TestPromptPresetsDefaults(t *testing.T) {
	tests := []struct {
		kind   Kind
		count  int
		aspect domain.AspectRatio
		prefix string
	}{
		{KindLogo, 10, domain.AspectSquare, "A minimalist flat vector logo"},
		{KindBanner, 10, domain.AspectLandscape, "A promotional web banner"},
		{KindAppIcon, 6, domain.AspectSquare, "A minimalist vector app icon"},
		{KindWallpaper, 6, domain.AspectPortrait, "A beautiful abstract phone wallpaper"},
	}
	for _, tc := range tests {
		job, err := Build(Request{Kind: tc.kind, Prompt: "lemon bakery"})
		if err != nil {
			t.Fatalf("%s: Build returned error: %v", tc.kind, err)
		}
		if job.Count != tc.count || job.AspectRatio != tc.aspect || job.BackendMode != domain.BackendBatchCapable {
			t.Fatalf("%s: job = %+v", tc.kind, job)
		}
		if !strings.HasPrefix(job.Prompt, tc.prefix) || !strings.HasSuffix(job.Prompt, "lemon bakery") {
			t.Fatalf("%s: prompt = %q", tc.kind, job.Prompt)
		}
	}
}

func TestPromptPresetStyleAndReference(t *testing.T) {
	job, err := Build(Request{Kind: KindLogo, Prompt: "coffee", Style: "retro", Reference: png(), Count: 3})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if !strings.HasPrefix(job.Prompt, "Style retro. A minimalist") {
		t.Fatalf("prompt = %q", job.Prompt)
	}
	if job.BackendMode != domain.BackendSingleOnly || job.Count != 3 || job.ReferenceImage == nil {
		t.Fatalf("job = %+v", job)
	}
}

func TestPromptPresetValidation(t *testing.T) {
	cases := []Request{
		{Kind: "poster", Prompt: "x"},
		{Kind: KindBanner, Prompt: "  "},
		{Kind: KindBanner, Prompt: "x", Count: domain.MaxJobCount + 1},
		{Kind: KindBanner, Prompt: "x", Count: -1},
	}
	for i, req := range cases {
		if _, err := Build(req); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("case %d: error = %v, want ErrInvalidInput", i, err)
		}
	}
}

func TestProductMedia(t *testing.T) {
	if len(MediaKinds()) != 19 {
		t.Fatalf("len(MediaKinds) = %d, want 19", len(MediaKinds()))
	}
	for _, kind := range MediaKinds() {
		job, err := Build(Request{Kind: KindProductMedia, Media: kind, Reference: png()})
		if err != nil {
			t.Fatalf("%s: Build returned error: %v", kind, err)
		}
		if job.Count != 1 || job.BackendMode != domain.BackendSingleOnly || job.Prompt == "" {
			t.Fatalf("%s: job = %+v", kind, job)
		}
	}

	if _, err := Build(Request{Kind: KindProductMedia, Media: MediaWhiteBackground}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("missing source image error = %v", err)
	}
	if _, err := Build(Request{Kind: KindProductMedia, Media: "hologram", Reference: png()}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("unknown media error = %v", err)
	}
	if _, err := Build(Request{Kind: KindProductMedia, Media: MediaFloating, Reference: png(), Count: 5}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("count above limit error = %v", err)
	}
}

func TestNotificationJob(t *testing.T) {
	spec := &NotificationSpec{
		Notifications: []Notification{
			{Event: EventSaleApproved, Value: "R$ 1.297,00", Client: "João da Silva"},
			{Event: EventPixExpired, Value: "R$ 97,00", Product: "Template"},
		},
		Frame:      FrameSquare,
		Background: png(),
		AppIcon:    png(),
	}
	job, err := Build(Request{Kind: KindNotification, Notification: spec})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if job.AspectRatio != domain.AspectPortrait || job.BackendMode != domain.BackendSingleOnly || job.Count != 1 {
		t.Fatalf("job = %+v", job)
	}
	if len(job.Attachments) != 1 || job.Attachments[0].Label != appIconLabel {
		t.Fatalf("attachments = %+v", job.Attachments)
	}
	for _, want := range []string{`"14:27"`, "Sale approved", "#22c55e", "Digital Marketing Course", "Pix expired", "straight 90 degree corners"} {
		if !strings.Contains(job.Prompt, want) {
			t.Fatalf("prompt lacks %q:\n%s", want, job.Prompt)
		}
	}
	if spec.Notifications[0].Product != "" {
		t.Fatalf("Build must not mutate the caller's notifications")
	}
}

func TestNotificationValidation(t *testing.T) {
	base := func() *NotificationSpec {
		return &NotificationSpec{Notifications: []Notification{{Event: EventOrderShipped}}, Background: png()}
	}
	noBackground := base()
	noBackground.Background = nil
	badEvent := base()
	badEvent.Notifications[0].Event = "refund"
	badFrame := base()
	badFrame.Frame = "round"
	tooMany := base()
	tooMany.Notifications = make([]Notification, maxNotifications+1)
	for i := range tooMany.Notifications {
		tooMany.Notifications[i].Event = EventSaleApproved
	}

	for name, spec := range map[string]*NotificationSpec{
		"no background": noBackground,
		"bad event":     badEvent,
		"bad frame":     badFrame,
		"too many":      tooMany,
		"empty":         {Background: png()},
	} {
		if _, err := Build(Request{Kind: KindNotification, Notification: spec}); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("%s: error = %v, want ErrInvalidInput", name, err)
		}
	}
	if _, err := Build(Request{Kind: KindNotification}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("missing spec error = %v", err)
	}
}

func TestDeviceFramePrompt(t *testing.T) {
	prompt := NotificationPrompt(NotificationSpec{Frame: FrameDevice, Device: "iPhone 15 Pro"})
	if !strings.HasSuffix(prompt, "photorealistic iPhone 15 Pro device mockup.") {
		t.Fatalf("prompt = %q", prompt)
	}
}

func TestListAndParseKind(t *testing.T) {
	list := List()
	if len(list) != 4+19+1 {
		t.Fatalf("len(List) = %d", len(list))
	}
	if list[0].ID != "logo" || list[len(list)-1].Kind != KindNotification {
		t.Fatalf("unexpected ordering: first %q last %q", list[0].ID, list[len(list)-1].Kind)
	}
	for _, raw := range []string{"Logo", " banner ", "product_media", "notification"} {
		if _, ok := ParseKind(raw); !ok {
			t.Fatalf("ParseKind(%q) not ok", raw)
		}
	}
	if _, ok := ParseKind("poster"); ok {
		t.Fatalf("ParseKind accepted unknown kind")
	}
}
