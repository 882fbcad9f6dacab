package mcp

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/lukman83/phonescope/internal/frontend"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// NewHTTPHandler returns the MCP streamable-HTTP endpoint plus /healthz,
// guarded by a Bearer token when apiKey is set.
func NewHTTPHandler(ctrl *frontend.Controller, apiKey string) http.Handler {
	httpServer := server.NewStreamableHTTPServer(newServer(ctrl), server.WithStateLess(true))

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	var mcpHandler http.Handler = httpServer
	if apiKey != "" {
		mcpHandler = bearerAuth(apiKey, httpServer)
	}
	mux.Handle("/mcp", mcpHandler)
	return mux
}

// NewHTTPServer builds the MCP HTTP server listening on addr.
func NewHTTPServer(addr string, ctrl *frontend.Controller, apiKey string, logger *zap.Logger) *http.Server {
	logger.Info("MCP HTTP server configured", zap.String("addr", addr), zap.Bool("auth", apiKey != ""))
	return &http.Server{
		Addr:         addr,
		Handler:      NewHTTPHandler(ctrl, apiKey),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

func bearerAuth(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			w.Header().Set("WWW-Authenticate", `Bearer realm="mcp"`)
			http.Error(w, `{"error":"missing Authorization header"}`, http.StatusUnauthorized)
			return
		}
		token, found := strings.CutPrefix(auth, "Bearer ")
		if !found || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="mcp", error="invalid_token"`)
			http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
