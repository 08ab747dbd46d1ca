package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"campaignkit/internal/domain"
)

// ParseTypedObject decodes an object-mode response. Code fences and chatter
// around the JSON object are tolerated. Anything that does not decode to a
// JSON object is a malformed response; wrong-typed fields are not.
func ParseTypedObject(data []byte) (ParsedContent, error) {
	fragment := extractObjectFragment(string(data))
	if fragment == "" {
		return ParsedContent{}, fmt.Errorf("%w: empty object payload", domain.ErrMalformedResponse)
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(fragment)))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return ParsedContent{}, fmt.Errorf("%w: decode object: %v", domain.ErrMalformedResponse, err)
	}
	return ParseTypedValue(decoded)
}

// ParseTypedValue coerces an already decoded response. v must be a map.
func ParseTypedValue(v any) (ParsedContent, error) {
	var partial map[CategoryID]any
	switch obj := v.(type) {
	case map[string]any:
		partial = make(map[CategoryID]any, len(obj))
		for k, val := range obj {
			partial[CategoryID(k)] = val
		}
	case map[CategoryID]any:
		partial = obj
	default:
		return ParsedContent{}, fmt.Errorf("%w: expected object, got %T", domain.ErrMalformedResponse, v)
	}
	return Coerce(partial), nil
}

// Parse dispatches raw to the strategy matching the mode that produced it.
func Parse(raw RawResponse) (ParsedContent, error) {
	switch raw.Format {
	case FormatDelimited:
		return ParseDelimitedText(raw.Body, nil)
	case FormatObject:
		return ParseTypedObject([]byte(raw.Body))
	default:
		return ParsedContent{}, fmt.Errorf("%w: unknown response format %q", domain.ErrMalformedResponse, raw.Format)
	}
}

func extractObjectFragment(raw string) string {
	text := trimCodeFence(raw)
	if text == "" {
		return ""
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
