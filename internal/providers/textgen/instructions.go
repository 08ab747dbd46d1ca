package textgen

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"campaignkit/internal/content"
	"campaignkit/internal/domain"
)

// BuildInstruction renders the model instruction for signal. The format
// decides whether sections are requested as "### <Title>" blocks or as keys
// of a JSON object.
func BuildInstruction(signal domain.SourceSignal, locale string, format content.Format) string {
	sb := &strings.Builder{}
	sb.WriteString("You are a senior e-commerce copywriter and marketing strategist. ")
	sb.WriteString("Create a complete marketing kit for the product described below.\n")
	fmt.Fprintf(sb, "Write every item in %s.", languageName(locale))
	fmt.Fprintf(sb, " Tone: %s.\n\n", coalesce(signal.Tone, "persuasive, friendly and trustworthy"))

	sb.WriteString("Product:\n")
	writeSource(sb, signal)
	sb.WriteString("\n")

	if format == content.FormatObject {
		sb.WriteString("Return only a JSON object. Each key below maps to an array of strings:\n")
		for _, c := range content.Categories() {
			fmt.Fprintf(sb, "- %s: %d %s\n", c.ID, c.Count, c.Brief)
		}
		return sb.String()
	}

	sb.WriteString("Structure the answer in sections. Start each section with its marker exactly as written, ")
	sb.WriteString("on its own line, then the items. Write nothing before the first marker.\n\n")
	for _, c := range content.Categories() {
		fmt.Fprintf(sb, "%s\n%d %s; %s.\n", c.Marker(), c.Count, c.Brief, layoutHint(c))
	}
	return sb.String()
}

func writeSource(sb *strings.Builder, signal domain.SourceSignal) {
	switch signal.Kind {
	case domain.SourceImage:
		sb.WriteString("The product is shown in the attached image. Identify it and base every item on what you see.\n")
	case domain.SourceURL:
		fmt.Fprintf(sb, "Research the product page at %s with web search and base every item on what you find there.\n", strings.TrimSpace(signal.URL))
	default:
		p := signal.Product
		writeField(sb, "Name", p.Name)
		writeField(sb, "Category", p.Category)
		writeField(sb, "Description", p.Description)
		writeField(sb, "Target audience", p.Audience)
		writeField(sb, "Price", p.Price)
		if len(p.Differentials) > 0 {
			writeField(sb, "Differentials", strings.Join(p.Differentials, "; "))
		}
	}
}

func writeField(sb *strings.Builder, label, value string) {
	if value = strings.TrimSpace(value); value != "" {
		fmt.Fprintf(sb, "%s: %s\n", label, value)
	}
}

func layoutHint(c content.Category) string {
	switch c.Shape {
	case content.CommaList:
		return "all on one line, comma separated"
	case content.HashtagList:
		return "all on one line, comma separated, each starting with #"
	case content.MultiBlock:
		return fmt.Sprintf("start each one with a line like %q", c.BlockMarker(1))
	case content.QaPairList:
		return "each question on a line starting with \"Q:\" and its answer on the next line starting with \"A:\""
	default:
		return "one per line, numbered"
	}
}

// languageName returns the English display name for locale, used to tell the
// model which language to write in.
func languageName(locale string) string {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil || tag == language.Und {
		tag = language.BrazilianPortuguese
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return tag.String()
}
