package presets

import (
	"fmt"
	"strings"

	"campaignkit/internal/domain"
)

// EventType is the sales event shown in a notification card.
type EventType string

const (
	EventSaleApproved  EventType = "sale_approved"
	EventPixGenerated  EventType = "pix_generated"
	EventOrderShipped  EventType = "order_shipped"
	EventSaleCancelled EventType = "sale_cancelled"
	EventPixExpired    EventType = "pix_expired"
)

type eventStyle struct {
	label          string
	accent         string
	defaultProduct string
}

var eventStyles = map[EventType]eventStyle{
	EventSaleApproved:  {label: "Sale approved", accent: "#22c55e", defaultProduct: "Digital Marketing Course"},
	EventPixGenerated:  {label: "Pix generated", accent: "#3b82f6", defaultProduct: "Online Sales e-book"},
	EventOrderShipped:  {label: "Order shipped", accent: "#f97316", defaultProduct: "Essential Tools Kit"},
	EventSaleCancelled: {label: "Sale cancelled", accent: "#ef4444", defaultProduct: "One-on-one Mentoring"},
	EventPixExpired:    {label: "Pix expired", accent: "#6b7280", defaultProduct: "Exclusive Template"},
}

// FrameType controls how the phone screen is framed in the mockup.
type FrameType string

const (
	FrameDevice    FrameType = "framed"
	FrameFrameless FrameType = "frameless"
	FrameSquare    FrameType = "square"
)

const (
	maxNotifications = 6
	defaultDevice    = "generic Android smartphone (black)"
	defaultStoreName = "My Store"
	appIconLabel     = "Use this image as the app icon:"
)

// Notification is one card on the mocked lock screen.
type Notification struct {
	Event   EventType `json:"event"`
	Value   string    `json:"value"`
	Product string    `json:"product"`
	Client  string    `json:"client"`
	Time    string    `json:"time"`
}

// StatusBar is the phone status bar drawn above the notifications.
type StatusBar struct {
	Time    string `json:"time"`
	Signal  string `json:"signal"`
	Battery string `json:"battery"`
}

// NotificationSpec configures a notification mockup.
type NotificationSpec struct {
	Notifications []Notification      `json:"notifications"`
	StatusBar     StatusBar           `json:"status_bar"`
	Frame         FrameType           `json:"frame"`
	Device        string              `json:"device"`
	StoreName     string              `json:"store_name"`
	Background    *domain.InlineImage `json:"-"`
	AppIcon       *domain.InlineImage `json:"-"`
}

func (s *NotificationSpec) normalize() {
	s.StatusBar.Time = coalesce(s.StatusBar.Time, "14:27")
	s.StatusBar.Signal = coalesce(s.StatusBar.Signal, "wifi")
	s.StatusBar.Battery = coalesce(s.StatusBar.Battery, "86%")
	if s.Frame == "" {
		s.Frame = FrameDevice
	}
	s.Device = coalesce(s.Device, defaultDevice)
	s.StoreName = coalesce(s.StoreName, defaultStoreName)
	for i := range s.Notifications {
		n := &s.Notifications[i]
		if style, ok := eventStyles[n.Event]; ok {
			n.Product = coalesce(n.Product, style.defaultProduct)
		}
		n.Time = coalesce(n.Time, s.StatusBar.Time)
	}
}

func (s NotificationSpec) validate() error {
	if len(s.Notifications) == 0 {
		return fmt.Errorf("%w: at least one notification is required", domain.ErrInvalidInput)
	}
	if len(s.Notifications) > maxNotifications {
		return fmt.Errorf("%w: at most %d notifications are supported", domain.ErrInvalidInput, maxNotifications)
	}
	for i, n := range s.Notifications {
		if _, ok := eventStyles[n.Event]; !ok {
			return fmt.Errorf("%w: notification %d has unknown event %q", domain.ErrInvalidInput, i, n.Event)
		}
	}
	switch s.Frame {
	case FrameDevice, FrameFrameless, FrameSquare:
	default:
		return fmt.Errorf("%w: unknown frame type %q", domain.ErrInvalidInput, s.Frame)
	}
	if s.Background.Empty() {
		return fmt.Errorf("%w: notification mockups require a background image", domain.ErrInvalidInput)
	}
	return nil
}

func buildNotification(req Request) (domain.GenerationJob, error) {
	if req.Notification == nil {
		return domain.GenerationJob{}, fmt.Errorf("%w: notification settings are required", domain.ErrInvalidInput)
	}
	spec := *req.Notification
	spec.Notifications = append([]Notification(nil), spec.Notifications...)
	spec.normalize()
	if err := spec.validate(); err != nil {
		return domain.GenerationJob{}, err
	}
	count, err := resolveCount(req.Count, 1, maxMediaCount)
	if err != nil {
		return domain.GenerationJob{}, err
	}

	job := domain.GenerationJob{
		Prompt:         NotificationPrompt(spec),
		ReferenceImage: spec.Background,
		AspectRatio:    domain.AspectPortrait,
		Count:          count,
	}
	if !spec.AppIcon.Empty() {
		job.Attachments = []domain.Attachment{{Label: appIconLabel, Image: spec.AppIcon}}
	}
	job.Normalize()
	return job, job.Validate()
}

// NotificationPrompt renders the edit prompt for a notification mockup. The
// attached background image becomes the lock screen wallpaper.
func NotificationPrompt(spec NotificationSpec) string {
	sb := &strings.Builder{}
	sb.WriteString("Generate a photorealistic image of a phone screen (9:19.5 proportion) using the attached image as the wallpaper.\n")
	fmt.Fprintf(sb, "The status bar at the top shows %q on the left, and %s and battery at %s icons on the right.\n",
		spec.StatusBar.Time, spec.StatusBar.Signal, spec.StatusBar.Battery)
	sb.WriteString("Below the status bar, render these notifications as translucent dark cards with rounded corners, ")
	sb.WriteString("each with the app icon to the left of the store name in its header:\n")
	for i, n := range spec.Notifications {
		style := eventStyles[n.Event]
		fmt.Fprintf(sb, "%d. Store %q at %s. Title %q in bold white, value %q in bold %s. Details: Product: %s | Client: %s.\n",
			i+1, spec.StoreName, n.Time, style.label, n.Value, style.accent, n.Product, coalesce(n.Client, "-"))
	}
	switch spec.Frame {
	case FrameFrameless:
		sb.WriteString("The image must be only the screen, with slightly rounded corners, like a screenshot.")
	case FrameSquare:
		sb.WriteString("The image must be only the screen, with straight 90 degree corners and no frame.")
	default:
		fmt.Fprintf(sb, "Render the screen inside a photorealistic %s device mockup.", spec.Device)
	}
	return sb.String()
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
