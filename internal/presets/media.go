package presets

import (
	"fmt"
	"strings"

	"campaignkit/internal/domain"
)

// MediaKind names a product-media edit applied to the source photo.
type MediaKind string

const (
	MediaWhiteBackground     MediaKind = "white_background"
	MediaInstagramPost       MediaKind = "instagram_post_promo"
	MediaFacebookAd          MediaKind = "facebook_post_ad"
	MediaInstagramStory      MediaKind = "instagram_story_promo"
	MediaLifestyleMockup     MediaKind = "mockup_with_model_lifestyle"
	MediaProfessionalMockup  MediaKind = "mockup_with_model_professional"
	MediaProductMockup       MediaKind = "mockup_product_focused"
	MediaCloseUpMockup       MediaKind = "mockup_close_up"
	MediaCouponBanner        MediaKind = "banner_promo_coupon"
	MediaSeasonalBanner      MediaKind = "banner_seasonal_bf"
	MediaFacebookCover       MediaKind = "banner_facebook_cover"
	MediaPostTemplate        MediaKind = "template_instagram_post"
	MediaStoryTemplate       MediaKind = "template_instagram_story"
	MediaTikTokReels         MediaKind = "vertical_tiktok_reels"
	MediaWhatsAppStatus      MediaKind = "vertical_whatsapp_status"
	Media3DShadow            MediaKind = "effect_3d_shadow"
	MediaFloating            MediaKind = "effect_floating"
	MediaBenefitsInfographic MediaKind = "infographic_benefits"
	MediaYouTubeThumbnail    MediaKind = "youtube_thumbnail"
)

// maxMediaCount caps variations per product-media action.
const maxMediaCount = 4

type mediaPreset struct {
	title  string
	group  string
	aspect domain.AspectRatio
	prompt string
}

var mediaOrder = []MediaKind{
	MediaWhiteBackground, MediaInstagramPost, MediaFacebookAd, MediaInstagramStory,
	MediaLifestyleMockup, MediaProfessionalMockup, MediaProductMockup, MediaCloseUpMockup,
	MediaCouponBanner, MediaSeasonalBanner, MediaFacebookCover, MediaPostTemplate, MediaStoryTemplate,
	MediaTikTokReels, MediaWhatsAppStatus,
	Media3DShadow, MediaFloating,
	MediaBenefitsInfographic, MediaYouTubeThumbnail,
}

var mediaPresets = map[MediaKind]mediaPreset{
	MediaWhiteBackground: {
		title: "White background (marketplace)", group: "product", aspect: domain.AspectSquare,
		prompt: "Keeping the original product's exact position, angle, and composition, remove the background completely and replace it with a clean, professional, solid white background. The product should be perfectly lit. Generate a photorealistic 4K image.",
	},
	MediaInstagramPost: {
		title: "Instagram post", group: "product", aspect: domain.AspectSquare,
		prompt: "Using the exact product from the original image, place it into a new scene for an Instagram post. The product's angle, lighting, and composition must remain identical to the original. Create a visually appealing lifestyle photo around it, featuring a person happily using or interacting with the product. Leave empty space where promotional text could be added later.",
	},
	MediaFacebookAd: {
		title: "Facebook ad", group: "product", aspect: domain.AspectLandscape,
		prompt: "Using the exact product from the original image, place it into a new scene for a Facebook ad. The product's appearance, angle, and composition must remain identical to the original. The new scene should be eye-catching and show a person enjoying the benefits of the product, with clean space for a call-to-action to be added later.",
	},
	MediaInstagramStory: {
		title: "Instagram story", group: "product", aspect: domain.AspectPortrait,
		prompt: "Using the exact product from the original image, create a vertical Instagram story scene. Keep the product's angle and composition identical to the original. Surround it with a bright, modern setting and leave generous empty space at the top and bottom for stickers and promotional text.",
	},
	MediaLifestyleMockup: {
		title: "Lifestyle mockup", group: "mockup", aspect: domain.AspectTall,
		prompt: "Recreate the original image, keeping the product's composition, angle, and appearance exactly the same. Place this unchanged product into a realistic lifestyle mockup showing it being used by a person in a home environment. The scene should feel authentic and relatable.",
	},
	MediaProfessionalMockup: {
		title: "Professional mockup", group: "mockup", aspect: domain.AspectTall,
		prompt: "Recreate the original image, keeping the product exactly the same. Place it into a realistic professional setting, such as an office or studio, with a person using it confidently. Lighting should be clean and corporate.",
	},
	MediaProductMockup: {
		title: "Product focused mockup", group: "mockup", aspect: domain.AspectSquare,
		prompt: "Keeping the product's exact appearance and composition from the original image, place it on a stylish, minimalist surface (like marble or wood). Enhance the scene with dramatic lighting and realistic shadows to create a premium feel. This is a hero shot.",
	},
	MediaCloseUpMockup: {
		title: "Close-up detail", group: "mockup", aspect: domain.AspectSquare,
		prompt: "Create a detailed macro close-up of the product from the original image, preserving its exact materials, colors, and finish. Use a shallow depth of field and soft studio lighting to highlight texture and quality.",
	},
	MediaCouponBanner: {
		title: "Promotional coupon banner", group: "banner", aspect: domain.AspectLandscape,
		prompt: "Create a compelling promotional banner. The banner must feature the product exactly as it appears in the original image, preserving its composition and angle. Design an eye-catching background around it, with a clear area where a coupon code can be added later.",
	},
	MediaSeasonalBanner: {
		title: "Seasonal sale banner", group: "banner", aspect: domain.AspectLandscape,
		prompt: "Create a bold seasonal sale banner in a Black Friday mood with dark tones and vibrant accents. Feature the product exactly as it appears in the original image, keeping its composition intact, and leave a clear area for the discount headline.",
	},
	MediaFacebookCover: {
		title: "Facebook cover", group: "banner", aspect: domain.AspectLandscape,
		prompt: "Create a wide banner image for a Facebook cover photo. Take the product from the original image, keeping its composition and appearance identical, and place it prominently on the right side of the banner. The overall design should be clean and professional, with empty space on the left for text and profile elements to be added.",
	},
	MediaPostTemplate: {
		title: "Instagram post template", group: "banner", aspect: domain.AspectSquare,
		prompt: "Design a reusable square social media post template featuring the product exactly as in the original image. Use a cohesive color palette derived from the product, geometric shapes, and clearly separated empty areas for a headline and price, without any text.",
	},
	MediaStoryTemplate: {
		title: "Instagram story template", group: "banner", aspect: domain.AspectPortrait,
		prompt: "Design a reusable vertical story template featuring the product exactly as in the original image. Use a cohesive color palette derived from the product and leave clear empty areas for a headline, a price, and a swipe-up call to action, without any text.",
	},
	MediaTikTokReels: {
		title: "TikTok / Reels frame", group: "vertical", aspect: domain.AspectPortrait,
		prompt: "Create a high-energy, visually engaging image for a TikTok video or Instagram Reel. The image must feature the product exactly as it is in the original photo, maintaining its composition perfectly. Build a scene around it with a person interacting with the product in a fun and dynamic way. The style should be modern and trendy, with empty space for text overlays.",
	},
	MediaWhatsAppStatus: {
		title: "WhatsApp status", group: "vertical", aspect: domain.AspectPortrait,
		prompt: "Create a clean and clear image for a WhatsApp Status update. The image must showcase the product with its original composition and angle perfectly preserved. Place it against a simple, attractive new background. Ensure there is plenty of empty space for adding promotional text later.",
	},
	Media3DShadow: {
		title: "Realistic 3D shadow", group: "effect", aspect: domain.AspectSquare,
		prompt: "Take the original image and, without altering the product or its composition in any way, add a realistic, soft 3D shadow underneath it to create a sense of depth and make it pop from the background.",
	},
	MediaFloating: {
		title: "Floating effect", group: "effect", aspect: domain.AspectSquare,
		prompt: "Take the original image and, keeping the product's composition identical, place it on a clean, simple background and add a subtle shadow effect directly beneath it to create a modern 'floating' illusion.",
	},
	MediaBenefitsInfographic: {
		title: "Benefits infographic", group: "education", aspect: domain.AspectSquare,
		prompt: "Create a simple, visually appealing infographic template for an Instagram post. Feature the product from the original image, maintaining its exact composition. Arrange placeholders for three key benefits around the product, using modern icons, but without any text. Leave clean areas for text to be added later.",
	},
	MediaYouTubeThumbnail: {
		title: "YouTube thumbnail", group: "education", aspect: domain.AspectLandscape,
		prompt: "Generate a high-click-through-rate YouTube thumbnail. The thumbnail must feature the product exactly as it appears in the original image, with identical composition. Place a person with an expressive, excited, or surprised facial expression next to the product. The overall image should be vibrant and high-contrast, with significant empty space for a catchy title to be added later.",
	},
}

// MediaKinds returns every product-media kind in display order.
func MediaKinds() []MediaKind {
	out := make([]MediaKind, len(mediaOrder))
	copy(out, mediaOrder)
	return out
}

func buildProductMedia(req Request) (domain.GenerationJob, error) {
	kind := MediaKind(strings.ToLower(strings.TrimSpace(string(req.Media))))
	preset, ok := mediaPresets[kind]
	if !ok {
		return domain.GenerationJob{}, fmt.Errorf("%w: unknown product media %q", domain.ErrInvalidInput, req.Media)
	}
	if req.Reference.Empty() {
		return domain.GenerationJob{}, fmt.Errorf("%w: product media requires a source image", domain.ErrInvalidInput)
	}
	count, err := resolveCount(req.Count, 1, maxMediaCount)
	if err != nil {
		return domain.GenerationJob{}, err
	}
	prompt := preset.prompt
	if extra := strings.TrimSpace(req.Prompt); extra != "" {
		prompt += " " + extra
	}
	job := domain.GenerationJob{
		Prompt:         prompt,
		ReferenceImage: req.Reference,
		AspectRatio:    preset.aspect,
		Count:          count,
	}
	job.Normalize()
	return job, job.Validate()
}
