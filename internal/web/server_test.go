package web

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/lukman83/phonescope/internal/frontend"
	"github.com/lukman83/phonescope/internal/search"
	"github.com/lukman83/phonescope/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type fixture struct {
	srv      *Server
	requests *atomic.Int32
}

func newFixture(t *testing.T, status int, body string, limiter *rate.Limiter) *fixture {
	t.Helper()
	var requests atomic.Int32
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(backend.Close)

	submitter := search.NewSubmitter(backend.Client(), backend.URL)
	ctrl := frontend.NewController(submitter, session.New(), nil)
	srv := NewServer(ctrl, limiter, nil, Defaults{Mode: "basic", MaxResults: 10, Sites: []string{"gsmarena"}})
	return &fixture{srv: srv, requests: &requests}
}

func (f *fixture) do(t *testing.T, req *http.Request) (*http.Response, *goquery.Document) {
	t.Helper()
	resp, err := f.srv.App().Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		return resp, nil
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	return resp, doc
}

func searchRequest(form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func validForm() url.Values {
	return url.Values{
		"query":       {"galaxy"},
		"mode":        {"basic"},
		"max_results": {"5"},
		"sites":       {"gsmarena", "kimovil"},
	}
}

const flatBody = `{"success": true, "data": {"phones": [
	{"name": "Galaxy S24", "source": "kimovil", "rating": 7, "url": "https://kimovil.example/s24"},
	{"name": "<img src=x onerror=alert(1)>", "source": "gsmarena"}
]}}`

func TestIndexRendersForm(t *testing.T) {
	f := newFixture(t, http.StatusOK, flatBody, nil)
	resp, doc := f.do(t, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, doc)
	assert.Equal(t, 1, doc.Find("form#searchForm").Length())
	assert.Equal(t, 3, doc.Find("input.site-checkbox").Length())
	assert.True(t, doc.Find("input#gsmarena").Is("[checked]"))
	assert.False(t, doc.Find("input#kimovil").Is("[checked]"))
	assert.Equal(t, "10", doc.Find("input#maxResults").AttrOr("value", ""))
	assert.Equal(t, 0, doc.Find("#exportBtn").Length())
}

func TestSearchRendersResults(t *testing.T) {
	f := newFixture(t, http.StatusOK, flatBody, nil)
	resp, doc := f.do(t, searchRequest(validForm()))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, doc)
	assert.EqualValues(t, 1, f.requests.Load())

	results := doc.Find("#resultsContent")
	assert.Contains(t, results.Find(".alert-success").Text(), "Found 2 phones")
	assert.Equal(t, 2, results.Find(".site-section").Length())
	assert.Equal(t, "KIMOVIL (1 results)", strings.TrimSpace(results.Find(".site-section h4").First().Text()))
	assert.Equal(t, "★★★", results.Find(".rating-stars").Text())

	// The hostile name is text, not an element.
	assert.Equal(t, 0, results.Find("img[onerror]").Length())
	assert.Equal(t, "<img src=x onerror=alert(1)>", results.Find(".card-title").Last().Text())

	assert.Equal(t, 1, doc.Find("#exportBtn").Length())
	assert.True(t, doc.Find("input#kimovil").Is("[checked]"))
}

func TestDetailedSearchAllowsCrossOriginImages(t *testing.T) {
	f := newFixture(t, http.StatusOK, `{"success": true, "data": {"total_result": 1, "result": [
		{"name": "Pixel 9", "all_thumbnails": ["https://fdn2.gsmarena.com/a.jpg"]}
	]}}`, nil)

	form := validForm()
	form.Set("mode", "detailed")
	resp, doc := f.do(t, searchRequest(form))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "unsafe-none", resp.Header.Get("Cross-Origin-Embedder-Policy"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "https://fdn2.gsmarena.com/a.jpg", doc.Find("#resultsContent img").First().AttrOr("src", ""))
}

func TestSearchValidationError(t *testing.T) {
	f := newFixture(t, http.StatusOK, flatBody, nil)

	form := validForm()
	form.Del("sites")
	resp, doc := f.do(t, searchRequest(form))

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Please select at least one site to search", doc.Find("#searchError").Text())
	assert.Zero(t, f.requests.Load())

	form = validForm()
	form.Set("query", "   ")
	resp, doc = f.do(t, searchRequest(form))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Please enter a search query", doc.Find("#searchError").Text())
	assert.Zero(t, f.requests.Load())
}

func TestSearchBackendFailure(t *testing.T) {
	f := newFixture(t, http.StatusInternalServerError, `{"error": "Internal Server Error", "message": "<b>scraper</b> blocked"}`, nil)
	resp, doc := f.do(t, searchRequest(validForm()))

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	msg := doc.Find("#searchError").Text()
	assert.True(t, strings.HasPrefix(msg, "Search failed: "), msg)
	assert.Contains(t, msg, "500")
	assert.Contains(t, msg, "<b>scraper</b> blocked")
	assert.Equal(t, 0, doc.Find("#searchError b").Length())
	assert.Equal(t, 0, doc.Find("#resultsContent").Length())
}

func TestSearchRateLimited(t *testing.T) {
	f := newFixture(t, http.StatusOK, flatBody, rate.NewLimiter(rate.Limit(0.001), 1))

	resp, _ := f.do(t, searchRequest(validForm()))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, doc := f.do(t, searchRequest(validForm()))
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Contains(t, doc.Find("#searchError").Text(), "Too many searches")
	assert.EqualValues(t, 1, f.requests.Load())
}

func TestExport(t *testing.T) {
	f := newFixture(t, http.StatusOK, flatBody, nil)

	resp, _ := f.do(t, httptest.NewRequest(http.MethodGet, "/export", nil))
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	f.do(t, searchRequest(validForm()))

	resp, _ = f.do(t, httptest.NewRequest(http.MethodGet, "/export", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Regexp(t, `^attachment; filename="phone_search_\d+\.json"$`, resp.Header.Get("Content-Disposition"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "{\n  \"phones\": [\n    {\n      \"name\": \"Galaxy S24\","), string(body))
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, http.StatusOK, flatBody, nil)
	resp, _ := f.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}
