package genai

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"

	"campaignkit/internal/domain"
)

func (c *Client) syntheticImages(prompt, requestID string, aspect domain.AspectRatio, baseIndex, count int) []*domain.InlineImage {
	width, height := dimensionsFor(aspect)
	out := make([]*domain.InlineImage, count)
	for i := 0; i < count; i++ {
		seed := deterministicSeed(requestID, prompt, aspect, baseIndex+i)
		out[i] = &domain.InlineImage{
			Data:     renderSyntheticImage(width, height, seed),
			MIMEType: "image/png",
		}
	}

	c.logger.Debug().
		Str("request_id", requestID).
		Str("aspect_ratio", string(aspect)).
		Int("quantity", count).
		Msg("genai: generated synthetic images")
	return out
}

// dimensionsFor returns a small canvas with the requested ratio. Synthetic
// images only need to be valid PNGs of the right shape.
func dimensionsFor(aspect domain.AspectRatio) (int, int) {
	switch aspect {
	case domain.AspectLandscape:
		return 320, 180
	case domain.AspectPortrait:
		return 180, 320
	case domain.AspectClassic:
		return 256, 192
	case domain.AspectTall:
		return 192, 256
	default:
		return 256, 256
	}
}

func renderSyntheticImage(width, height int, seed string) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	base := colorFromSeed(seed, 0)
	accent := colorFromSeed(seed, 1)
	draw.Draw(img, img.Bounds(), &image.Uniform{base}, image.Point{}, draw.Src)

	stripeHeight := max(8, height/12)
	for y := 0; y < height; y += stripeHeight * 2 {
		stripe := image.Rect(0, y, width, min(height, y+stripeHeight))
		draw.Draw(img, stripe, &image.Uniform{accent}, image.Point{}, draw.Over)
	}

	diagonal := colorFromSeed(seed, 2)
	for x := 0; x < max(width, height); x += max(8, width/16) {
		for y := 0; y < height && x+y < width; y++ {
			img.Set(x+y, y, diagonal)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}

func colorFromSeed(seed string, shift int) color.RGBA {
	if len(seed) < 6 {
		seed = "000000"
	}
	doubled := seed + seed
	start := (shift * 6) % len(seed)
	segment := doubled[start : start+6]
	return color.RGBA{
		R: parseHexByte(segment[0:2]),
		G: parseHexByte(segment[2:4]),
		B: parseHexByte(segment[4:6]),
		A: 255,
	}
}

func parseHexByte(s string) uint8 {
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0
	}
	return uint8(v)
}

func deterministicSeed(parts ...any) string {
	hasher := sha256.New()
	for _, part := range parts {
		switch v := part.(type) {
		case []byte:
			hasher.Write(v)
		default:
			fmt.Fprintf(hasher, "%v", v)
		}
		hasher.Write([]byte{'|'})
	}
	return hex.EncodeToString(hasher.Sum(nil))[:16]
}
