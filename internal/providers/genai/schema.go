package genai

import (
	"fmt"

	sdk "google.golang.org/genai"

	"campaignkit/internal/content"
)

// CatalogueSchema builds the object-mode response schema: one string array
// per catalogue category, keyed by category id, in generation order.
func CatalogueSchema() *sdk.Schema {
	categories := content.Categories()
	schema := &sdk.Schema{
		Type:             sdk.TypeObject,
		Properties:       make(map[string]*sdk.Schema, len(categories)),
		PropertyOrdering: make([]string, 0, len(categories)),
	}
	for _, c := range categories {
		key := string(c.ID)
		schema.Properties[key] = &sdk.Schema{
			Type:        sdk.TypeArray,
			Description: fmt.Sprintf("Array with %d %s.", c.Count, c.Brief),
			Items:       &sdk.Schema{Type: sdk.TypeString},
		}
		schema.PropertyOrdering = append(schema.PropertyOrdering, key)
	}
	return schema
}
