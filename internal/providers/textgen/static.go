package textgen

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"campaignkit/internal/content"
)

// StaticWriter renders a deterministic placeholder kit without calling a
// model. It keeps local runs working when no text provider is configured and
// serves as the fallback for remote writers.
type StaticWriter struct{}

func NewStaticWriter() *StaticWriter {
	return &StaticWriter{}
}

func (s *StaticWriter) Write(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := req.Signal.Validate(); err != nil {
		return nil, err
	}
	locale := req.locale()
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.BrazilianPortuguese
	}
	subject := cases.Title(tag).String(coalesce(req.Signal.Subject(), "Product"))

	sb := &strings.Builder{}
	for _, c := range content.Categories() {
		sb.WriteString(c.Marker())
		sb.WriteString("\n")
		writeStaticSection(sb, c, subject)
		sb.WriteString("\n")
	}
	return &Response{
		Raw:      content.RawResponse{Format: content.FormatDelimited, Body: sb.String()},
		Provider: staticProviderName,
		Metadata: map[string]string{
			"format": string(content.FormatDelimited),
			"locale": locale,
		},
	}, nil
}

func writeStaticSection(sb *strings.Builder, c content.Category, subject string) {
	label := strings.ToLower(c.Title)
	switch c.Shape {
	case content.CommaList, content.HashtagList:
		slug := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return unicode.ToLower(r)
			}
			return -1
		}, subject)
		items := make([]string, c.Count)
		for i := range items {
			items[i] = fmt.Sprintf("%s%d", slug, i+1)
			if c.Shape == content.HashtagList {
				items[i] = "#" + items[i]
			}
		}
		sb.WriteString(strings.Join(items, ", "))
		sb.WriteString("\n")
	case content.MultiBlock:
		for i := 1; i <= c.Count; i++ {
			fmt.Fprintf(sb, "%s\n%s: %s draft %d.\n", c.BlockMarker(i), subject, strings.TrimSuffix(label, "s"), i)
		}
	case content.QaPairList:
		for i := 1; i <= c.Count; i++ {
			fmt.Fprintf(sb, "Q: What should I know about %s (%d)?\nA: %s answer %d.\n", subject, i, subject, i)
		}
	default:
		for i := 1; i <= c.Count; i++ {
			fmt.Fprintf(sb, "%d. %s: %s %d\n", i, subject, label, i)
		}
	}
}

var _ Writer = (*StaticWriter)(nil)
