package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/lukman83/phonescope/internal/frontend"
	"github.com/lukman83/phonescope/internal/search"
	"github.com/lukman83/phonescope/internal/sites"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

//go:embed templates/page.html
var pageFS embed.FS

var pageTemplate = template.Must(template.ParseFS(pageFS, "templates/page.html"))

// Defaults pre-fills the search form.
type Defaults struct {
	Mode       string
	MaxResults int
	Sites      []string
}

// Server is the browser front-end: a search form, a rendered result page, and
// the JSON export download.
type Server struct {
	app      *fiber.App
	ctrl     *frontend.Controller
	limiter  *rate.Limiter
	logger   *zap.Logger
	defaults Defaults
}

// NewServer wires the routes. A nil limiter disables throttling.
func NewServer(ctrl *frontend.Controller, limiter *rate.Limiter, logger *zap.Logger, defaults Defaults) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		app: fiber.New(fiber.Config{
			AppName:               "phonescope",
			DisableStartupMessage: true,
			ReadTimeout:           30 * time.Second,
			IdleTimeout:           120 * time.Second,
		}),
		ctrl:     ctrl,
		limiter:  limiter,
		logger:   logger,
		defaults: defaults,
	}

	s.app.Use(recover.New())
	// Result cards embed images from the scraped sites' CDNs, which send no
	// Cross-Origin-Resource-Policy header.
	s.app.Use(helmet.New(helmet.Config{CrossOriginEmbedderPolicy: "unsafe-none"}))
	s.app.Use(requestLogger(logger))

	s.app.Get("/", s.handleIndex)
	s.app.Post("/search", s.handleSearch)
	s.app.Get("/export", s.handleExport)
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	return s
}

// App exposes the fiber app, mainly for app.Test in tests.
func (s *Server) App() *fiber.App { return s.app }

func (s *Server) Listen(addr string) error {
	s.logger.Info("web UI listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

type searchForm struct {
	Query      string   `form:"query"`
	Mode       string   `form:"mode"`
	MaxResults string   `form:"max_results"`
	Sites      []string `form:"sites"`
}

type siteOption struct {
	ID      string
	Label   string
	Checked bool
}

type pageData struct {
	Form       searchForm
	Sites      []siteOption
	Error      string
	Results    template.HTML
	HasResults bool
}

func (s *Server) handleIndex(c *fiber.Ctx) error {
	form := searchForm{
		Mode:       s.defaults.Mode,
		MaxResults: strconv.Itoa(s.defaults.MaxResults),
		Sites:      s.defaults.Sites,
	}
	return s.page(c, fiber.StatusOK, pageData{Form: form})
}

func (s *Server) handleSearch(c *fiber.Ctx) error {
	var form searchForm
	if err := c.BodyParser(&form); err != nil {
		return s.page(c, fiber.StatusBadRequest, pageData{Form: form, Error: "Invalid search form"})
	}

	if s.limiter != nil && !s.limiter.Allow() {
		return s.page(c, fiber.StatusTooManyRequests, pageData{Form: form, Error: "Too many searches, please wait a moment and try again"})
	}

	req, err := search.NewRequest(form.Query, form.Mode, form.MaxResults, form.Sites)
	if err != nil {
		return s.page(c, fiber.StatusBadRequest, pageData{Form: form, Error: search.UserMessage(err)})
	}

	outcome, err := s.ctrl.Search(c.UserContext(), req)
	if err != nil {
		status := fiber.StatusBadGateway
		msg := search.UserMessage(err)
		var verr *search.ValidationError
		switch {
		case errors.As(err, &verr):
			status = fiber.StatusBadRequest
		case errors.Is(err, frontend.ErrSuperseded):
			status = fiber.StatusConflict
			msg = "A newer search replaced this one."
		default:
			s.logger.Warn("search failed", zap.String("query", req.Query), zap.Error(err))
		}
		return s.page(c, status, pageData{Form: form, Error: msg})
	}

	return s.page(c, fiber.StatusOK, pageData{Form: form, Results: outcome.Markup})
}

func (s *Server) handleExport(c *fiber.Ctx) error {
	artifact, ok, err := s.ctrl.Export()
	if err != nil {
		s.logger.Error("export failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "export failed"})
	}
	if !ok {
		return c.SendStatus(fiber.StatusNoContent)
	}
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, artifact.Filename))
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Send(artifact.Data)
}

func (s *Server) page(c *fiber.Ctx, status int, data pageData) error {
	selected := make(map[string]bool, len(data.Form.Sites))
	for _, id := range data.Form.Sites {
		selected[id] = true
	}
	for _, site := range sites.List() {
		data.Sites = append(data.Sites, siteOption{ID: site.ID, Label: site.Label, Checked: selected[site.ID]})
	}
	data.HasResults = s.ctrl.Last() != nil

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	c.Status(status)
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func requestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		logger.Info("http request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.IP()),
		)
		return err
	}
}
