package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Mode selects how a search response is displayed.
type Mode string

const (
	ModeBasic    Mode = "basic"
	ModeDetailed Mode = "detailed"
)

// ParseMode maps user input to a Mode. Empty input means basic.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeBasic:
		return ModeBasic, nil
	case ModeDetailed:
		return ModeDetailed, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want basic or detailed)", s)
	}
}

// SearchRequest is the body POSTed to the backend search endpoint.
type SearchRequest struct {
	Query      string   `json:"query"`
	Mode       Mode     `json:"mode"`
	MaxResults int      `json:"max_results"`
	Sites      []string `json:"sites"`
}

// SpecEntry is one property/value pair of a spec snapshot or spec group.
type SpecEntry struct {
	Property string `json:"property"`
	Value    string `json:"value"`
}

type SpecGroup struct {
	Title   string      `json:"title"`
	Details []SpecEntry `json:"details"`
}

// BasicPhone is a flat phone record as listed by one source.
type BasicPhone struct {
	Name     string      `json:"name,omitempty"`
	Brand    string      `json:"brand,omitempty"`
	Model    string      `json:"model,omitempty"`
	URL      string      `json:"url,omitempty"`
	Price    string      `json:"price,omitempty"`
	Rating   float64     `json:"rating,omitempty"` // 0-10, zero means unrated
	Specs    []SpecEntry `json:"specs,omitempty"`
	ImageURL string      `json:"image_url,omitempty"`
	Source   string      `json:"source"`
}

// DisplayName is the explicit name when present, otherwise "brand model".
func (p BasicPhone) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return strings.TrimSpace(p.Brand + " " + p.Model)
}

// DetailedPhone is an enriched phone record from a detailed-mode search.
type DetailedPhone struct {
	Name          string      `json:"name"`
	Link          string      `json:"link,omitempty"`
	CurrentPrice  string      `json:"current_price,omitempty"`
	OriginalPrice string      `json:"original_price,omitempty"`
	Rating        float64     `json:"rating,omitempty"`
	Highlights    []string    `json:"highlights,omitempty"`
	Specs         []SpecGroup `json:"specs,omitempty"`
	Offers        []string    `json:"offers,omitempty"`
	Thumbnails    []string    `json:"all_thumbnails,omitempty"`
	Source        string      `json:"source,omitempty"`

	// ThumbnailCount is the length of the received thumbnail list, including
	// entries too blank to display.
	ThumbnailCount int `json:"thumbnail_count,omitempty"`
}

// SourceGroup holds the basic records of one source, in source order.
type SourceGroup struct {
	Source string       `json:"source"`
	Phones []BasicPhone `json:"phones"`
}

// Shape records which backend payload layout a response arrived in.
type Shape int

const (
	// ShapeBySource is an object mapping source identifier to a list of records.
	ShapeBySource Shape = iota
	// ShapeFlat is an object with a "phones" list whose records carry their source.
	ShapeFlat
)

// MarshalText encodes the shape by name.
func (s Shape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s Shape) String() string {
	switch s {
	case ShapeBySource:
		return "by-source"
	case ShapeFlat:
		return "flat"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// SearchResponse is a backend payload normalized into one view-independent value.
type SearchResponse struct {
	Shape  Shape         `json:"shape"`
	Groups []SourceGroup `json:"groups,omitempty"`

	Detailed    []DetailedPhone `json:"result,omitempty"`
	TotalResult int             `json:"total_result"`

	// Raw is the payload exactly as received, object key order intact.
	Raw json.RawMessage `json:"raw,omitempty"`
}

// Total counts the basic records across all groups.
func (r *SearchResponse) Total() int {
	n := 0
	for _, g := range r.Groups {
		n += len(g.Phones)
	}
	return n
}
