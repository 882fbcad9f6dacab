package httputil

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// LoggingTransport is an http.RoundTripper that logs every outbound call.
type LoggingTransport struct {
	Base   http.RoundTripper
	Logger *zap.Logger
}

func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	transport := t.Base
	if transport == nil {
		transport = http.DefaultTransport
	}

	start := time.Now()
	resp, err := transport.RoundTrip(req)
	if t.Logger == nil {
		return resp, err
	}

	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("url", req.URL.Redacted()),
		zap.String("request_id", req.Header.Get("X-Request-ID")),
		zap.Duration("latency", time.Since(start)),
	}
	if err != nil {
		t.Logger.Warn("api call failed", append(fields, zap.Error(err))...)
		return nil, err
	}
	t.Logger.Debug("api call", append(fields, zap.Int("status", resp.StatusCode))...)
	return resp, nil
}

// NewTransport returns the base transport for API calls. A non-empty proxyURL
// routes every request through that HTTP or SOCKS5 proxy.
func NewTransport(proxyURL string) (*http.Transport, error) {
	t := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	if proxyURL == "" {
		return t, nil
	}
	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("parse proxy url: %w", err)
	}
	switch u.Scheme {
	case "http", "https", "socks5":
	default:
		return nil, fmt.Errorf("unsupported proxy scheme %q", u.Scheme)
	}
	t.Proxy = http.ProxyURL(u)
	return t, nil
}
