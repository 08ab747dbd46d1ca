package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// InlineImage is an image carried by value, either as a reference supplied by
// the caller or as a payload produced by a generation backend.
type InlineImage struct {
	Data     []byte `json:"-"`
	MIMEType string `json:"mime_type"`
}

// Empty reports whether the image carries no bytes.
func (i *InlineImage) Empty() bool {
	return i == nil || len(i.Data) == 0
}

// Base64 returns the standard base64 encoding of the image bytes.
func (i *InlineImage) Base64() string {
	if i.Empty() {
		return ""
	}
	return base64.StdEncoding.EncodeToString(i.Data)
}

// Clone returns a deep copy so snapshots never share backing arrays with
// in-flight writers.
func (i *InlineImage) Clone() *InlineImage {
	if i == nil {
		return nil
	}
	data := make([]byte, len(i.Data))
	copy(data, i.Data)
	return &InlineImage{Data: data, MIMEType: i.MIMEType}
}

// DecodeInlineImage decodes a base64 payload (optionally a data URL) into an
// InlineImage. The MIME type embedded in a data URL wins over mimeType.
func DecodeInlineImage(encoded, mimeType string) (*InlineImage, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, fmt.Errorf("%w: image data is empty", ErrInvalidInput)
	}
	if strings.HasPrefix(encoded, "data:") {
		header, body, ok := strings.Cut(encoded, ",")
		if !ok {
			return nil, fmt.Errorf("%w: malformed data url", ErrInvalidInput)
		}
		meta := strings.TrimPrefix(header, "data:")
		meta = strings.TrimSuffix(meta, ";base64")
		if meta != "" {
			mimeType = meta
		}
		encoded = body
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: image data is not valid base64", ErrInvalidInput)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: image data is empty", ErrInvalidInput)
	}
	mimeType = strings.TrimSpace(strings.ToLower(mimeType))
	if mimeType == "" {
		mimeType = "image/png"
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("%w: unsupported mime type %q", ErrInvalidInput, mimeType)
	}
	return &InlineImage{Data: data, MIMEType: mimeType}, nil
}
