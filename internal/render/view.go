package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lukman83/phonescope/internal/models"
)

// MaxThumbnails caps the thumbnail tiles shown per detailed card.
const MaxThumbnails = 6

// specSummaryKeys is how many spec snapshot properties a basic card lists.
const specSummaryKeys = 3

type BasicView struct {
	Total  int
	Groups []GroupView
}

type GroupView struct {
	Source string
	Count  int
	Cards  []BasicCard
}

type BasicCard struct {
	Source      string
	Name        string
	URL         string
	Price       string
	Stars       string
	RatingText  string // empty when unrated
	SpecSummary string
	ImageURL    string
}

type DetailedView struct {
	Total int
	Cards []DetailedCard
}

type DetailedCard struct {
	ID             string
	Name           string
	Link           string
	CurrentPrice   string
	OriginalPrice  string
	Rating         string
	Highlights     []string
	Specs          []SpecGroupView
	Offers         []string
	Thumbnails     []string
	ThumbnailCount int
}

type SpecGroupView struct {
	ID       string
	Title    string
	Expanded bool
	Details  []models.SpecEntry
}

// Stars renders a 0-10 rating as floor(rating/2) star glyphs out of five.
func Stars(rating float64) string {
	n := int(math.Floor(rating / 2))
	if n <= 0 {
		return ""
	}
	return strings.Repeat("★", n)
}

// FormatRating prints a rating exactly as given, e.g. "7/10" or "8.5/10".
// A zero rating counts as no rating and yields "".
func FormatRating(rating float64) string {
	if rating <= 0 {
		return ""
	}
	return strconv.FormatFloat(rating, 'f', -1, 64) + "/10"
}

// Summary is the "Found N phone(s)" line.
func Summary(n int) string {
	if n == 1 {
		return "Found 1 phone"
	}
	return fmt.Sprintf("Found %d phones", n)
}

// NewBasicView builds the grouped basic-mode view model.
func NewBasicView(resp *models.SearchResponse) BasicView {
	var v BasicView
	for _, g := range resp.Groups {
		if len(g.Phones) == 0 {
			continue
		}
		gv := GroupView{Source: g.Source, Count: len(g.Phones)}
		for _, p := range g.Phones {
			gv.Cards = append(gv.Cards, BasicCard{
				Source:      g.Source,
				Name:        p.DisplayName(),
				URL:         p.URL,
				Price:       p.Price,
				Stars:       Stars(p.Rating),
				RatingText:  FormatRating(p.Rating),
				SpecSummary: specSummary(p.Specs),
				ImageURL:    p.ImageURL,
			})
		}
		v.Total += gv.Count
		v.Groups = append(v.Groups, gv)
	}
	return v
}

func specSummary(specs []models.SpecEntry) string {
	keys := make([]string, 0, specSummaryKeys)
	for _, s := range specs {
		if len(keys) == specSummaryKeys {
			break
		}
		keys = append(keys, s.Property)
	}
	return strings.Join(keys, " • ")
}

// NewDetailedView builds the detailed-mode view model. Only the first spec
// group of each card starts expanded.
func NewDetailedView(resp *models.SearchResponse) DetailedView {
	v := DetailedView{Total: resp.TotalResult}
	for i, p := range resp.Detailed {
		id := fmt.Sprintf("phone-%d", i)
		card := DetailedCard{
			ID:             id,
			Name:           p.Name,
			Link:           p.Link,
			CurrentPrice:   p.CurrentPrice,
			OriginalPrice:  p.OriginalPrice,
			Highlights:     p.Highlights,
			Offers:         p.Offers,
			Thumbnails:     p.Thumbnails,
			ThumbnailCount: max(p.ThumbnailCount, len(p.Thumbnails)),
		}
		if p.Rating > 0 {
			card.Rating = strconv.FormatFloat(p.Rating, 'f', -1, 64)
		}
		if len(card.Thumbnails) > MaxThumbnails {
			card.Thumbnails = card.Thumbnails[:MaxThumbnails]
		}
		for j, g := range p.Specs {
			card.Specs = append(card.Specs, SpecGroupView{
				ID:       fmt.Sprintf("spec-%s-%d", id, j),
				Title:    g.Title,
				Expanded: j == 0,
				Details:  g.Details,
			})
		}
		v.Cards = append(v.Cards, card)
	}
	return v
}
