package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/lukman83/phonescope/internal/httputil"
	"github.com/lukman83/phonescope/internal/models"
	"github.com/lukman83/phonescope/internal/sites"
	"go.uber.org/zap"
)

// Payload is the data of a successful search response, left uninterpreted.
type Payload struct {
	SearchID string
	Data     json.RawMessage
}

// Submitter sends search requests to the backend search endpoint.
type Submitter struct {
	client    *http.Client
	apiURL    string
	logger    *zap.Logger
	indicator Indicator
}

type Option func(*Submitter)

// WithIndicator engages ind for the duration of every Submit call.
func WithIndicator(ind Indicator) Option {
	return func(s *Submitter) { s.indicator = ind }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Submitter) { s.logger = logger }
}

// NewSubmitter creates a Submitter for the API rooted at apiURL.
func NewSubmitter(client *http.Client, apiURL string, opts ...Option) *Submitter {
	s := &Submitter{
		client: client,
		apiURL: strings.TrimRight(strings.TrimSpace(apiURL), "/"),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewRequest builds a SearchRequest from raw user input and validates it.
// maxResults is parsed as a base-10 integer.
func NewRequest(query, mode, maxResults string, siteIDs []string) (models.SearchRequest, error) {
	m, err := models.ParseMode(mode)
	if err != nil {
		return models.SearchRequest{}, &ValidationError{Field: "mode", Reason: err.Error()}
	}
	n, err := strconv.Atoi(strings.TrimSpace(maxResults))
	if err != nil {
		return models.SearchRequest{}, &ValidationError{Field: "max_results", Reason: "Max results must be a whole number"}
	}

	req := models.SearchRequest{
		Query:      strings.TrimSpace(query),
		Mode:       m,
		MaxResults: n,
		Sites:      normalizeSites(siteIDs),
	}
	if err := Validate(req); err != nil {
		return models.SearchRequest{}, err
	}
	return req, nil
}

// Validate checks the preconditions that must hold before a request is sent.
func Validate(req models.SearchRequest) error {
	if strings.TrimSpace(req.Query) == "" {
		return &ValidationError{Field: "query", Reason: "Please enter a search query"}
	}
	if len(normalizeSites(req.Sites)) == 0 {
		return &ValidationError{Field: "sites", Reason: "Please select at least one site to search"}
	}
	if req.MaxResults <= 0 {
		return &ValidationError{Field: "max_results", Reason: "Max results must be a positive number"}
	}
	if _, err := models.ParseMode(string(req.Mode)); err != nil {
		return &ValidationError{Field: "mode", Reason: err.Error()}
	}
	return nil
}

// normalizeSites drops blanks and duplicates, keeping first-seen order.
func normalizeSites(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, s := range ids {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func (s *Submitter) endpoint() (string, error) {
	if s.apiURL == "" {
		return "", &ValidationError{Field: "api_url", Reason: "Please configure the search API URL before searching"}
	}
	u, err := url.Parse(s.apiURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", &ValidationError{Field: "api_url", Reason: fmt.Sprintf("Search API URL %q is not a valid http(s) URL", s.apiURL)}
	}
	return s.apiURL + "/search", nil
}

// Submit validates req and issues exactly one POST to the search endpoint.
// It never retries. The busy indicator, if any, is stopped on every outcome.
func (s *Submitter) Submit(ctx context.Context, req models.SearchRequest) (*Payload, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	endpoint, err := s.endpoint()
	if err != nil {
		return nil, err
	}
	req.Query = strings.TrimSpace(req.Query)
	req.Sites = normalizeSites(req.Sites)

	if s.indicator != nil {
		s.indicator.Start(fmt.Sprintf("Searching '%s' on %s...", req.Query, strings.Join(req.Sites, ", ")))
		defer s.indicator.Stop()
	}

	searchID := uuid.NewString()
	logger := s.logger.With(zap.String("search_id", searchID), zap.String("query", req.Query), zap.String("mode", string(req.Mode)))

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	for k, v := range httputil.JSONAPIHeaders() {
		httpReq.Header[k] = v
	}
	httpReq.Header.Set("X-Request-ID", searchID)

	ReportProgress(ctx, "Sending request to search API...")
	logger.Info("submitting search", zap.Strings("sites", req.Sites), zap.Int("max_results", req.MaxResults))
	for _, id := range req.Sites {
		// The backend owns the authoritative site list, so unknown ids are still sent.
		if _, err := sites.Get(id); err != nil {
			logger.Warn("searching unregistered site", zap.String("site", id))
		}
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		logger.Warn("search request failed", zap.Error(err))
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	ReportProgress(ctx, "Parsing response...")
	respBody, err := httputil.ReadBody(resp)
	if err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		cause := errors.New(http.StatusText(resp.StatusCode))
		if env, err := decodeEnvelope(respBody); err == nil && env.cause() != "" {
			cause = errors.New(env.cause())
		}
		logger.Warn("search API returned error status", zap.Int("status", resp.StatusCode), zap.Error(cause))
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: cause}
	}

	data, err := unwrapEnvelope(respBody)
	if err != nil {
		logger.Warn("unusable search response", zap.Error(err))
		return nil, err
	}

	logger.Info("search completed", zap.Int("bytes", len(data)))
	return &Payload{SearchID: searchID, Data: data}, nil
}

// envelope covers both deployment variants of the search API:
// {"status":"success","results":...} and {"success":true,"data":...}.
// Either may instead carry {"error":...,"message":...}.
type envelope struct {
	Status  string          `json:"status"`
	Results json.RawMessage `json:"results"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

// cause is the backend's explanation of a failure: message, else a string
// error value.
func (e *envelope) cause() string {
	if m := strings.TrimSpace(e.Message); m != "" {
		return m
	}
	var s string
	if err := json.Unmarshal(e.Error, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return ""
}

func decodeEnvelope(body []byte) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

func unwrapEnvelope(body []byte) (json.RawMessage, error) {
	env, err := decodeEnvelope(body)
	if err != nil {
		return nil, &ResponseShapeError{Reason: "malformed JSON response", Err: err}
	}

	switch {
	case env.Status == "success" && present(env.Results):
		return env.Results, nil
	case env.Success && present(env.Data):
		return env.Data, nil
	case present(env.Error) || (env.Status != "" && env.Status != "success"):
		msg := env.cause()
		if msg == "" {
			msg = "Search failed"
		}
		return nil, &ResponseShapeError{Reason: msg}
	default:
		return nil, &ResponseShapeError{Reason: "Invalid response format"}
	}
}

// present reports whether a raw JSON value is set to something truthy.
func present(raw json.RawMessage) bool {
	switch strings.TrimSpace(string(raw)) {
	case "", "null", "false", `""`, "0":
		return false
	}
	return true
}
