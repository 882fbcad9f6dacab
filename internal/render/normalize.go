package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/lukman83/phonescope/internal/models"
	"github.com/spf13/cast"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// UnknownSource labels flat-shape records that carry no source field.
const UnknownSource = "unknown"

// ErrNotObject is returned when a payload is not a JSON object.
var ErrNotObject = errors.New("payload is not a JSON object")

type object = orderedmap.OrderedMap[string, json.RawMessage]

// Normalize parses a search payload in either backend shape into one
// SearchResponse. Object key order is kept, so groups appear in the order
// their source identifiers are first seen.
func Normalize(raw json.RawMessage) (*models.SearchResponse, error) {
	if isEmptyArray(raw) {
		// An empty list is a by-source payload with no sources.
		return &models.SearchResponse{Shape: models.ShapeBySource, Raw: append(json.RawMessage(nil), raw...)}, nil
	}
	top, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	resp := &models.SearchResponse{Raw: append(json.RawMessage(nil), raw...)}

	if phones, ok := top.Get("phones"); ok && isArray(phones) {
		resp.Shape = models.ShapeFlat
		resp.Groups, err = groupFlat(phones)
	} else {
		resp.Shape = models.ShapeBySource
		resp.Groups, err = groupBySource(top)
	}
	if err != nil {
		return nil, err
	}

	if result, ok := top.Get("result"); ok && isArray(result) {
		resp.Detailed, err = detailedList(result)
		if err != nil {
			return nil, err
		}
	}
	resp.TotalResult = len(resp.Detailed)
	if total, ok := top.Get("total_result"); ok {
		if n, err := cast.ToIntE(scalar(total)); err == nil && n >= 0 {
			resp.TotalResult = n
		}
	}

	return resp, nil
}

func groupFlat(phones json.RawMessage) ([]models.SourceGroup, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(phones, &items); err != nil {
		return nil, fmt.Errorf("decode phones: %w", err)
	}

	var groups []models.SourceGroup
	index := make(map[string]int)
	for _, item := range items {
		rec, err := decodeObject(item)
		if err != nil {
			continue
		}
		p := basicPhone(rec)
		if p.Source == "" {
			p.Source = UnknownSource
		}
		i, ok := index[p.Source]
		if !ok {
			i = len(groups)
			index[p.Source] = i
			groups = append(groups, models.SourceGroup{Source: p.Source})
		}
		groups[i].Phones = append(groups[i].Phones, p)
	}
	return groups, nil
}

// groupBySource treats every array-valued key as a source. Scalars and the
// detailed-mode "result" list are metadata, not sources.
func groupBySource(top *object) ([]models.SourceGroup, error) {
	var groups []models.SourceGroup
	for pair := top.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Key == "result" || !isArray(pair.Value) {
			continue
		}
		var items []json.RawMessage
		if err := json.Unmarshal(pair.Value, &items); err != nil {
			return nil, fmt.Errorf("decode source %q: %w", pair.Key, err)
		}
		g := models.SourceGroup{Source: pair.Key}
		for _, item := range items {
			rec, err := decodeObject(item)
			if err != nil {
				continue
			}
			p := basicPhone(rec)
			p.Source = pair.Key
			g.Phones = append(g.Phones, p)
		}
		if len(g.Phones) > 0 {
			groups = append(groups, g)
		}
	}
	return groups, nil
}

func basicPhone(rec *object) models.BasicPhone {
	return models.BasicPhone{
		Name:     text(rec, "name"),
		Brand:    text(rec, "brand"),
		Model:    text(rec, "model"),
		URL:      text(rec, "url"),
		Price:    text(rec, "price"),
		Rating:   number(rec, "rating"),
		Specs:    specSnapshot(rec),
		ImageURL: text(rec, "image_url"),
		Source:   text(rec, "source"),
	}
}

func detailedList(result json.RawMessage) ([]models.DetailedPhone, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(result, &items); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	phones := make([]models.DetailedPhone, 0, len(items))
	for _, item := range items {
		rec, err := decodeObject(item)
		if err != nil {
			continue
		}
		phones = append(phones, models.DetailedPhone{
			Name:           text(rec, "name"),
			Link:           text(rec, "link"),
			CurrentPrice:   text(rec, "current_price"),
			OriginalPrice:  text(rec, "original_price"),
			Rating:         number(rec, "rating"),
			Highlights:     textList(rec, "highlights"),
			Specs:          specGroups(rec),
			Offers:         offers(rec),
			Thumbnails:     textList(rec, "all_thumbnails"),
			ThumbnailCount: arrayLen(rec, "all_thumbnails"),
			Source:         text(rec, "source"),
		})
	}
	return phones, nil
}

// specSnapshot reads a flat "specs" object, keeping property order.
func specSnapshot(rec *object) []models.SpecEntry {
	raw, ok := rec.Get("specs")
	if !ok {
		return nil
	}
	specs, err := decodeObject(raw)
	if err != nil {
		return nil
	}
	var out []models.SpecEntry
	for pair := specs.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, models.SpecEntry{Property: pair.Key, Value: cast.ToString(scalar(pair.Value))})
	}
	return out
}

func specGroups(rec *object) []models.SpecGroup {
	raw, ok := rec.Get("specs")
	if !ok || !isArray(raw) {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]models.SpecGroup, 0, len(items))
	for _, item := range items {
		// A malformed group is skipped on its own.
		var g struct {
			Title   any `json:"title"`
			Details []struct {
				Property any `json:"property"`
				Value    any `json:"value"`
			} `json:"details"`
		}
		if err := json.Unmarshal(item, &g); err != nil {
			continue
		}
		sg := models.SpecGroup{Title: cast.ToString(g.Title)}
		for _, d := range g.Details {
			sg.Details = append(sg.Details, models.SpecEntry{
				Property: cast.ToString(d.Property),
				Value:    cast.ToString(d.Value),
			})
		}
		out = append(out, sg)
	}
	return out
}

// offers returns each offer's description, or the raw offer value when it has none.
func offers(rec *object) []string {
	raw, ok := rec.Get("offers")
	if !ok || !isArray(raw) {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	var out []string
	for _, item := range items {
		if o, err := decodeObject(item); err == nil {
			if d := text(o, "description"); d != "" {
				out = append(out, d)
				continue
			}
		}
		if s := cast.ToString(scalar(item)); s != "" {
			out = append(out, s)
			continue
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, item); err == nil && buf.Len() > 0 && buf.String() != "null" {
			out = append(out, buf.String())
		}
	}
	return out
}

func decodeObject(raw json.RawMessage) (*object, error) {
	if !isObject(raw) {
		return nil, ErrNotObject
	}
	obj := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(raw, obj); err != nil {
		return nil, fmt.Errorf("decode object: %w", err)
	}
	return obj, nil
}

// scalar decodes a raw JSON value, returning nil for objects, arrays, and invalid input.
func scalar(raw json.RawMessage) any {
	if isObject(raw) || isArray(raw) {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

func text(rec *object, key string) string {
	raw, ok := rec.Get(key)
	if !ok {
		return ""
	}
	return strings.TrimSpace(cast.ToString(scalar(raw)))
}

// number reads a numeric field that may arrive as a JSON number or string.
// Unparseable, negative, and non-finite values read as zero.
func number(rec *object, key string) float64 {
	raw, ok := rec.Get(key)
	if !ok {
		return 0
	}
	v := scalar(raw)
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func textList(rec *object, key string) []string {
	raw, ok := rec.Get(key)
	if !ok || !isArray(raw) {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	var out []string
	for _, item := range items {
		if s := strings.TrimSpace(cast.ToString(scalar(item))); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// arrayLen counts every element of an array field, blank or not.
func arrayLen(rec *object, key string) int {
	raw, ok := rec.Get(key)
	if !ok || !isArray(raw) {
		return 0
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return 0
	}
	return len(items)
}

func isEmptyArray(raw json.RawMessage) bool {
	var items []json.RawMessage
	return isArray(raw) && json.Unmarshal(raw, &items) == nil && len(items) == 0
}

func isObject(raw json.RawMessage) bool { return firstByte(raw) == '{' }
func isArray(raw json.RawMessage) bool  { return firstByte(raw) == '[' }

func firstByte(raw json.RawMessage) byte {
	b := bytes.TrimSpace(raw)
	if len(b) == 0 {
		return 0
	}
	return b[0]
}
