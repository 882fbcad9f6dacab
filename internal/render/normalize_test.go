package render

import (
	"encoding/json"
	"testing"

	"github.com/lukman83/phonescope/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bySourcePayload = `{
  "kimovil": [
    {"brand": "Samsung", "model": "Galaxy S24", "url": "https://kimovil.example/s24", "price": "$799", "rating": 8.4},
    {"brand": "Samsung", "model": "Galaxy A55", "url": "https://kimovil.example/a55"}
  ],
  "gsmarena": [
    {"brand": "Samsung", "model": "Galaxy S24 Ultra", "url": "https://gsmarena.example/s24u", "rating": "9"}
  ],
  "mobiles91": []
}`

const flatPayload = `{
  "query": "galaxy",
  "total_results": 3,
  "phones": [
    {"brand": "Samsung", "model": "Galaxy S24", "url": "https://kimovil.example/s24", "price": "$799", "rating": 8.4, "source": "kimovil"},
    {"brand": "Samsung", "model": "Galaxy S24 Ultra", "url": "https://gsmarena.example/s24u", "rating": "9", "source": "gsmarena"},
    {"brand": "Samsung", "model": "Galaxy A55", "url": "https://kimovil.example/a55", "source": "kimovil"}
  ]
}`

func groupSummary(groups []models.SourceGroup) map[string][]string {
	out := make(map[string][]string)
	for _, g := range groups {
		for _, p := range g.Phones {
			out[g.Source] = append(out[g.Source], p.DisplayName())
		}
	}
	return out
}

func sources(groups []models.SourceGroup) []string {
	var out []string
	for _, g := range groups {
		out = append(out, g.Source)
	}
	return out
}

func TestNormalizeBySource(t *testing.T) {
	resp, err := Normalize(json.RawMessage(bySourcePayload))
	require.NoError(t, err)

	assert.Equal(t, models.ShapeBySource, resp.Shape)
	// Key order of the payload, not alphabetical; empty lists are dropped.
	assert.Equal(t, []string{"kimovil", "gsmarena"}, sources(resp.Groups))
	assert.Equal(t, 3, resp.Total())

	s24 := resp.Groups[0].Phones[0]
	assert.Equal(t, "Galaxy S24", s24.Model)
	assert.Equal(t, "$799", s24.Price)
	assert.Equal(t, 8.4, s24.Rating)
	assert.Equal(t, "kimovil", s24.Source)
	assert.Equal(t, 9.0, resp.Groups[1].Phones[0].Rating)
}

func TestNormalizeFlat(t *testing.T) {
	resp, err := Normalize(json.RawMessage(flatPayload))
	require.NoError(t, err)

	assert.Equal(t, models.ShapeFlat, resp.Shape)
	assert.Equal(t, []string{"kimovil", "gsmarena"}, sources(resp.Groups))
	assert.Equal(t, []string{"Samsung Galaxy S24", "Samsung Galaxy A55"}, groupSummary(resp.Groups)["kimovil"])
}

func TestNormalizeShapeInvariance(t *testing.T) {
	bySource, err := Normalize(json.RawMessage(bySourcePayload))
	require.NoError(t, err)
	flat, err := Normalize(json.RawMessage(flatPayload))
	require.NoError(t, err)

	assert.Equal(t, bySource.Total(), flat.Total())
	assert.Equal(t, sources(bySource.Groups), sources(flat.Groups))
	assert.Equal(t, groupSummary(bySource.Groups), groupSummary(flat.Groups))

	basicA, err := Render(bySource, models.ModeBasic)
	require.NoError(t, err)
	basicB, err := Render(flat, models.ModeBasic)
	require.NoError(t, err)
	assert.Equal(t, basicA, basicB)
}

func TestNormalizeFlatMissingSource(t *testing.T) {
	resp, err := Normalize(json.RawMessage(`{"phones": [{"name": "Pixel 9"}, {"name": "Pixel 9 Pro", "source": ""}]}`))
	require.NoError(t, err)

	require.Len(t, resp.Groups, 1)
	assert.Equal(t, UnknownSource, resp.Groups[0].Source)
	assert.Len(t, resp.Groups[0].Phones, 2)
}

func TestNormalizeSkipsMetadataAndBadRecords(t *testing.T) {
	resp, err := Normalize(json.RawMessage(`{"query": "x", "count": 2, "gsmarena": [{"name": "A"}, "junk", 7, {"name": "B"}]}`))
	require.NoError(t, err)

	require.Len(t, resp.Groups, 1)
	assert.Equal(t, []string{"A", "B"}, groupSummary(resp.Groups)["gsmarena"])
}

func TestNormalizeSpecSnapshotKeepsOrder(t *testing.T) {
	resp, err := Normalize(json.RawMessage(`{"gsmarena": [{"name": "A", "specs": {"Display": "6.1\"", "Chipset": "A18", "Battery": 3561, "OS": "iOS"}}]}`))
	require.NoError(t, err)

	specs := resp.Groups[0].Phones[0].Specs
	require.Len(t, specs, 4)
	assert.Equal(t, "Display", specs[0].Property)
	assert.Equal(t, "Chipset", specs[1].Property)
	assert.Equal(t, "3561", specs[2].Value)
}

func TestNormalizeCoercesScalars(t *testing.T) {
	resp, err := Normalize(json.RawMessage(`{"gsmarena": [
		{"name": "A", "price": 12999, "rating": "7.5"},
		{"name": "B", "price": null, "rating": "n/a"},
		{"name": "C", "rating": -3}
	]}`))
	require.NoError(t, err)

	phones := resp.Groups[0].Phones
	assert.Equal(t, "12999", phones[0].Price)
	assert.Equal(t, 7.5, phones[0].Rating)
	assert.Empty(t, phones[1].Price)
	assert.Zero(t, phones[1].Rating)
	assert.Zero(t, phones[2].Rating)
}

func TestNormalizeDetailed(t *testing.T) {
	resp, err := Normalize(json.RawMessage(`{
		"total_result": 12,
		"query": "pixel",
		"result": [{
			"name": "Google Pixel 9",
			"link": "https://example.com/pixel9",
			"current_price": "₹79,999",
			"original_price": 84999,
			"rating": 4.6,
			"highlights": ["12 GB RAM", "", "Tensor G4"],
			"specs": [{"title": "Display", "details": [{"property": "Size", "value": 6.3}]}],
			"offers": [{"description": "Bank offer 10%"}, "No cost EMI", {"type": "exchange"}],
			"all_thumbnails": ["https://img.example/1.jpg"]
		}]
	}`))
	require.NoError(t, err)

	assert.Equal(t, 12, resp.TotalResult)
	require.Len(t, resp.Detailed, 1)
	p := resp.Detailed[0]
	assert.Equal(t, "84999", p.OriginalPrice)
	assert.Equal(t, []string{"12 GB RAM", "Tensor G4"}, p.Highlights)
	assert.Equal(t, "6.3", p.Specs[0].Details[0].Value)
	assert.Equal(t, []string{"Bank offer 10%", "No cost EMI", `{"type":"exchange"}`}, p.Offers)

	// The detailed list is not mistaken for a source group.
	assert.Empty(t, resp.Groups)
}

func TestNormalizeDetailedTotalFallsBackToLength(t *testing.T) {
	resp, err := Normalize(json.RawMessage(`{"result": [{"name": "A"}, {"name": "B"}]}`))
	require.NoError(t, err)
	assert.Equal(t, 2, resp.TotalResult)
}

func TestNormalizeRejectsNonObject(t *testing.T) {
	for _, raw := range []string{`[1, 2]`, `"phones"`, `null`, ``} {
		_, err := Normalize(json.RawMessage(raw))
		assert.ErrorIs(t, err, ErrNotObject, "payload %q", raw)
	}
}

func TestNormalizeKeepsRawPayload(t *testing.T) {
	resp, err := Normalize(json.RawMessage(flatPayload))
	require.NoError(t, err)
	assert.JSONEq(t, flatPayload, string(resp.Raw))
}

func TestNormalizeEmptyArrayIsEmptyResult(t *testing.T) {
	resp, err := Normalize(json.RawMessage(` [ ] `))
	require.NoError(t, err)
	assert.Equal(t, models.ShapeBySource, resp.Shape)
	assert.Empty(t, resp.Groups)
	assert.Zero(t, resp.Total())

	out, err := Render(resp, models.ModeBasic)
	require.NoError(t, err)
	assert.Contains(t, string(out), "No phones found matching your search.")
}

func TestNormalizeDetailedSkipsOnlyMalformedSpecGroup(t *testing.T) {
	resp, err := Normalize(json.RawMessage(`{"result": [{"name": "Pixel 9", "specs": [
		{"title": "Display", "details": [{"property": "Size", "value": "6.3"}]},
		{"title": "Camera", "details": "n/a"},
		{"title": "Battery", "details": [{"property": "Capacity", "value": 4700}]}
	]}]}`))
	require.NoError(t, err)
	require.Len(t, resp.Detailed, 1)

	specs := resp.Detailed[0].Specs
	require.Len(t, specs, 2)
	assert.Equal(t, "Display", specs[0].Title)
	assert.Equal(t, "Battery", specs[1].Title)
	assert.Equal(t, "4700", specs[1].Details[0].Value)
}

func TestNormalizeDetailedThumbnailCountIncludesBlanks(t *testing.T) {
	resp, err := Normalize(json.RawMessage(`{"result": [{"name": "Pixel 9", "all_thumbnails": [
		"a.jpg", "", null, "b.jpg", "c.jpg", "d.jpg", "e.jpg", "f.jpg", "g.jpg"
	]}]}`))
	require.NoError(t, err)
	p := resp.Detailed[0]
	assert.Equal(t, 9, p.ThumbnailCount)
	assert.Len(t, p.Thumbnails, 7)

	out, err := Render(resp, models.ModeDetailed)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Images (9)")
	assert.Equal(t, MaxThumbnails, countClass(parseFragment(t, string(out)), "thumbnail"))
}
