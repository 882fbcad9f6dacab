package render

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"unicode"

	"github.com/lukman83/phonescope/internal/models"
)

// FormatTable writes resp as numbered terminal cards.
func FormatTable(w io.Writer, resp *models.SearchResponse, mode models.Mode) {
	if mode == models.ModeDetailed {
		formatDetailedTable(w, NewDetailedView(resp))
		return
	}
	formatBasicTable(w, NewBasicView(resp))
}

func formatBasicTable(w io.Writer, v BasicView) {
	if v.Total == 0 {
		fmt.Fprintln(w, "No phones found matching your search.")
		return
	}
	fmt.Fprintf(w, "%s\n", Summary(v.Total))
	for _, g := range v.Groups {
		fmt.Fprintf(w, "\n== %s (%d results) ==\n", plain(strings.ToUpper(g.Source)), g.Count)
		for i, c := range g.Cards {
			fmt.Fprintf(w, "\n %d. %s\n", i+1, plain(c.Name))
			if c.Price != "" {
				fmt.Fprintf(w, "    Price: %s\n", plain(c.Price))
			}
			if c.RatingText != "" {
				fmt.Fprintf(w, "    Rating: %s %s\n", c.Stars, c.RatingText)
			}
			if c.SpecSummary != "" {
				fmt.Fprintf(w, "    %s\n", plain(c.SpecSummary))
			}
			if c.URL != "" {
				fmt.Fprintf(w, "    %s\n", plain(cleanURL(c.URL)))
			}
		}
	}
}

func formatDetailedTable(w io.Writer, v DetailedView) {
	if len(v.Cards) == 0 {
		fmt.Fprintln(w, "No detailed results found.")
		return
	}
	fmt.Fprintf(w, "%s\n", Summary(v.Total))
	for i, c := range v.Cards {
		fmt.Fprintf(w, "\n %d. %s\n", i+1, plain(c.Name))

		var parts []string
		if c.CurrentPrice != "" {
			price := "Price: " + plain(c.CurrentPrice)
			if c.OriginalPrice != "" {
				price += fmt.Sprintf("  (was %s)", plain(c.OriginalPrice))
			}
			parts = append(parts, price)
		}
		if c.Rating != "" {
			parts = append(parts, "Rating: "+plain(c.Rating))
		}
		if len(parts) > 0 {
			fmt.Fprintf(w, "    %s\n", strings.Join(parts, "  |  "))
		}
		if len(c.Highlights) > 0 {
			var tags []string
			for _, h := range c.Highlights {
				tags = append(tags, "["+plain(h)+"]")
			}
			fmt.Fprintf(w, "    %s\n", strings.Join(tags, " "))
		}
		for _, g := range c.Specs {
			fmt.Fprintf(w, "    %s:\n", plain(g.Title))
			for _, d := range g.Details {
				fmt.Fprintf(w, "      %-20s %s\n", truncate(plain(d.Property), 20), plain(d.Value))
			}
		}
		for _, o := range c.Offers {
			fmt.Fprintf(w, "    * %s\n", plain(o))
		}
		if c.ThumbnailCount > 0 {
			fmt.Fprintf(w, "    Images: %d\n", c.ThumbnailCount)
		}
		if c.Link != "" {
			fmt.Fprintf(w, "    %s\n", plain(cleanURL(c.Link)))
		}
	}
}

// plain drops control characters so backend text cannot drive the terminal
// with escape sequences.
func plain(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// cleanURL strips tracking query params and returns just the page URL.
func cleanURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.RawQuery = ""
	return u.String()
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
