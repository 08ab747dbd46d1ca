package content

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Coerce resolves every catalogue category to a well-formed list. Missing,
// nil and non-array values become an empty list; array elements are turned
// into strings in their original order, a null element becoming "" so item
// positions survive. Keys outside the catalogue are ignored.
func Coerce(partial map[CategoryID]any) ParsedContent {
	sections := make(map[CategoryID][]string, len(catalogue.ordered))
	for _, c := range catalogue.ordered {
		sections[c.ID] = coerceList(partial[c.ID])
	}
	return ParsedContent{sections: sections}
}

func coerceList(v any) []string {
	switch list := v.(type) {
	case []string:
		out := make([]string, len(list))
		copy(out, list)
		return out
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, coerceItem(item))
		}
		return out
	default:
		return []string{}
	}
}

func coerceItem(v any) string {
	switch item := v.(type) {
	case nil:
		return ""
	case string:
		return item
	case json.Number:
		return item.String()
	case float64:
		return strconv.FormatFloat(item, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(item)
	case fmt.Stringer:
		return item.String()
	default:
		raw, err := json.Marshal(item)
		if err != nil {
			return fmt.Sprint(item)
		}
		return string(raw)
	}
}
