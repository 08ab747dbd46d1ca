package content

import (
	"regexp"
	"strconv"
	"strings"
)

// CategoryID names one content category. The value doubles as the JSON key
// used in object-mode responses.
type CategoryID string

// Shape controls how the raw text of a category is tokenized.
type Shape string

const (
	FlatList    Shape = "flat_list"
	CommaList   Shape = "comma_list"
	HashtagList Shape = "hashtag_list"
	MultiBlock  Shape = "multi_block"
	QaPairList  Shape = "qa_pair_list"
)

// Group clusters categories the way the workspace presents them.
type Group string

const (
	GroupEssentials Group = "essentials"
	GroupSocial     Group = "social"
	GroupSEO        Group = "seo"
	GroupSales      Group = "sales"
	GroupAdvanced   Group = "advanced"
)

const (
	Titles                CategoryID = "titles"
	Descriptions          CategoryID = "descriptions"
	ProductPricing        CategoryID = "productPricing"
	Tags                  CategoryID = "tags"
	Hashtags              CategoryID = "hashtags"
	SocialMediaPosts      CategoryID = "socialMediaPosts"
	ShortVideoScripts     CategoryID = "shortVideoScripts"
	FictionalTestimonials CategoryID = "fictionalTestimonials"
	SocialMediaBios       CategoryID = "socialMediaBios"
	LongTailKeywords      CategoryID = "longTailKeywords"
	MetaTagsAndAltTexts   CategoryID = "metaTagsAndAltTexts"
	BlogArticles          CategoryID = "blogArticles"
	BuyingGuides          CategoryID = "buyingGuides"
	FAQs                  CategoryID = "faqs"
	PromotionalPhrases    CategoryID = "promotionalPhrases"
	MarketingEmails       CategoryID = "marketingEmails"
	PriceVariations       CategoryID = "priceVariations"
	DiscountCoupons       CategoryID = "discountCoupons"
	CountdownPromos       CategoryID = "countdownPromos"
	PopupCopies           CategoryID = "popupCopies"
	AdCopies              CategoryID = "adCopies"
	CTAs                  CategoryID = "ctas"
	WelcomeEmails         CategoryID = "welcomeEmails"
	Slogans               CategoryID = "slogans"
	ViralHooks            CategoryID = "viralHooks"
	LandingPageCopies     CategoryID = "landingPageCopies"
	CompetitorComparisons CategoryID = "competitorComparisons"
	InteractiveQuizzes    CategoryID = "interactiveQuizzes"
	ChatbotScripts        CategoryID = "chatbotScripts"
)

// Category is one row of the catalogue.
type Category struct {
	ID    CategoryID
	Title string
	Shape Shape
	Group Group
	// Count is the number of items the model is asked for.
	Count int
	// Brief describes the expected items to the model.
	Brief string
	// BlockLabel is the secondary marker label for MultiBlock categories,
	// rendered as "### <BlockLabel> <n>".
	BlockLabel string

	block *regexp.Regexp
}

// Marker returns the primary section header for the category.
func (c Category) Marker() string {
	return "### " + c.Title
}

// BlockMarker returns the secondary header for the n-th block of a
// MultiBlock category, or "" for other shapes.
func (c Category) BlockMarker(n int) string {
	if c.BlockLabel == "" {
		return ""
	}
	return "### " + c.BlockLabel + " " + strconv.Itoa(n)
}

// questionPrefix matches a FAQ question line once list bullets, quote marks
// and emphasis have been stripped.
var questionPrefix = regexp.MustCompile(`(?i)^(?:q|p|question|pergunta)\s*\d*\s*[:.)-]`)

var questionDecoration = regexp.MustCompile(`^(?:[\s>*+_-]|\d+[.)]\s*)*`)

var catalogue = buildCatalogue([]Category{
	{ID: Titles, Title: "Titles", Shape: FlatList, Group: GroupEssentials, Count: 15, Brief: "catchy, SEO optimized product titles"},
	{ID: Descriptions, Title: "Descriptions", Shape: FlatList, Group: GroupEssentials, Count: 4, Brief: "detailed, persuasive product descriptions focused on benefits, one per line"},
	{ID: ProductPricing, Title: "Product Pricing", Shape: FlatList, Group: GroupEssentials, Count: 1, Brief: "a price suggestion with a short justification"},
	{ID: Tags, Title: "Tags", Shape: CommaList, Group: GroupEssentials, Count: 25, Brief: "SEO and marketplace tags, comma separated"},
	{ID: Hashtags, Title: "Hashtags", Shape: HashtagList, Group: GroupEssentials, Count: 25, Brief: "popular social media hashtags, comma separated"},
	{ID: SocialMediaPosts, Title: "Social Media Posts", Shape: FlatList, Group: GroupSocial, Count: 25, Brief: "creative one-line social media post captions"},
	{ID: ShortVideoScripts, Title: "Short Video Scripts", Shape: MultiBlock, Group: GroupSocial, Count: 3, Brief: "short video scripts with hook, body and call to action", BlockLabel: "Script"},
	{ID: FictionalTestimonials, Title: "Testimonials", Shape: FlatList, Group: GroupSocial, Count: 3, Brief: "fictional customer testimonials, each highlighting one benefit"},
	{ID: SocialMediaBios, Title: "Social Media Bios", Shape: FlatList, Group: GroupSocial, Count: 2, Brief: "social profile bios focused on the product"},
	{ID: LongTailKeywords, Title: "Long Tail Keywords", Shape: CommaList, Group: GroupSEO, Count: 12, Brief: "long tail keywords with purchase intent, comma separated"},
	{ID: MetaTagsAndAltTexts, Title: "Meta Tags And Alt Texts", Shape: FlatList, Group: GroupSEO, Count: 7, Brief: "meta descriptions and image alt texts"},
	{ID: BlogArticles, Title: "Blog Articles", Shape: MultiBlock, Group: GroupSEO, Count: 4, Brief: "blog post ideas, each a title plus a short summary", BlockLabel: "Article"},
	{ID: BuyingGuides, Title: "Buying Guides", Shape: MultiBlock, Group: GroupSEO, Count: 2, Brief: "buying guide outlines comparing alternatives or explaining how to choose", BlockLabel: "Guide"},
	{ID: FAQs, Title: "FAQs", Shape: QaPairList, Group: GroupSEO, Count: 7, Brief: "frequently asked questions, each a 'Q:' line followed by an 'A:' line"},
	{ID: PromotionalPhrases, Title: "Promotional Phrases", Shape: FlatList, Group: GroupSales, Count: 25, Brief: "high impact promotional phrases using scarcity and urgency"},
	{ID: MarketingEmails, Title: "Marketing Emails", Shape: MultiBlock, Group: GroupSales, Count: 4, Brief: "marketing emails: launch, promotion, nurture, cart recovery", BlockLabel: "Email"},
	{ID: PriceVariations, Title: "Price Variations", Shape: FlatList, Group: GroupSales, Count: 3, Brief: "price variations for A/B tests or promotions"},
	{ID: DiscountCoupons, Title: "Discount Coupons", Shape: FlatList, Group: GroupSales, Count: 3, Brief: "discount coupon ideas such as FIRSTBUY10"},
	{ID: CountdownPromos, Title: "Countdown Promos", Shape: FlatList, Group: GroupSales, Count: 2, Brief: "countdown promotion texts"},
	{ID: PopupCopies, Title: "Popup Copies", Shape: FlatList, Group: GroupSales, Count: 2, Brief: "short website popup texts"},
	{ID: AdCopies, Title: "Ad Copies", Shape: FlatList, Group: GroupSales, Count: 7, Brief: "short paid ad copies"},
	{ID: CTAs, Title: "Calls To Action", Shape: FlatList, Group: GroupSales, Count: 7, Brief: "clear calls to action for buttons and links"},
	{ID: WelcomeEmails, Title: "Welcome Emails", Shape: MultiBlock, Group: GroupSales, Count: 2, Brief: "complete welcome emails for new customers or leads", BlockLabel: "Welcome Email"},
	{ID: Slogans, Title: "Slogans", Shape: FlatList, Group: GroupSales, Count: 7, Brief: "short memorable slogans"},
	{ID: ViralHooks, Title: "Viral Hooks", Shape: FlatList, Group: GroupSales, Count: 7, Brief: "opening hooks designed for short videos"},
	{ID: LandingPageCopies, Title: "Landing Page Copies", Shape: MultiBlock, Group: GroupAdvanced, Count: 2, Brief: "landing page blocks with headline and call to action", BlockLabel: "Landing Page"},
	{ID: CompetitorComparisons, Title: "Competitor Comparisons", Shape: FlatList, Group: GroupAdvanced, Count: 2, Brief: "comparison points against a fictional competitor"},
	{ID: InteractiveQuizzes, Title: "Interactive Quizzes", Shape: MultiBlock, Group: GroupAdvanced, Count: 2, Brief: "interactive quiz ideas related to the product", BlockLabel: "Quiz"},
	{ID: ChatbotScripts, Title: "Chatbot Scripts", Shape: MultiBlock, Group: GroupAdvanced, Count: 2, Brief: "simple sales chatbot scripts", BlockLabel: "Chatbot Script"},
})

type catalogueIndex struct {
	ordered []Category
	byID    map[CategoryID]int
	byTitle map[string]int
}

func buildCatalogue(rows []Category) catalogueIndex {
	idx := catalogueIndex{
		ordered: rows,
		byID:    make(map[CategoryID]int, len(rows)),
		byTitle: make(map[string]int, len(rows)),
	}
	for i := range rows {
		row := &rows[i]
		if row.Shape == MultiBlock {
			row.block = regexp.MustCompile(`(?im)^\s*#{1,6}\s*` + regexp.QuoteMeta(row.BlockLabel) + `\s+\d+\b.*$`)
		}
		idx.byID[row.ID] = i
		idx.byTitle[strings.ToLower(row.Title)] = i
	}
	return idx
}

// Categories returns the catalogue in generation order.
func Categories() []Category {
	out := make([]Category, len(catalogue.ordered))
	copy(out, catalogue.ordered)
	return out
}

// OrderedCategoryIDs returns every category id in generation order.
func OrderedCategoryIDs() []CategoryID {
	ids := make([]CategoryID, len(catalogue.ordered))
	for i, c := range catalogue.ordered {
		ids[i] = c.ID
	}
	return ids
}

// Lookup returns the catalogue row for id.
func Lookup(id CategoryID) (Category, bool) {
	i, ok := catalogue.byID[id]
	if !ok {
		return Category{}, false
	}
	return catalogue.ordered[i], true
}

// ShapeOf returns the shape for id. Ids outside the catalogue are treated as
// flat lists.
func ShapeOf(id CategoryID) Shape {
	if c, ok := Lookup(id); ok {
		return c.Shape
	}
	return FlatList
}

// Markers returns the primary section headers in generation order.
func Markers() []string {
	markers := make([]string, len(catalogue.ordered))
	for i, c := range catalogue.ordered {
		markers[i] = c.Marker()
	}
	return markers
}
