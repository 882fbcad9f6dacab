package frontend

import (
	"context"
	"errors"
	"html/template"
	"time"

	"github.com/lukman83/phonescope/internal/export"
	"github.com/lukman83/phonescope/internal/models"
	"github.com/lukman83/phonescope/internal/render"
	"github.com/lukman83/phonescope/internal/search"
	"github.com/lukman83/phonescope/internal/session"
	"go.uber.org/zap"
)

// ErrSuperseded is returned when a newer search began before this one finished.
// Its response is discarded.
var ErrSuperseded = errors.New("search superseded by a newer search")

// Submitter sends one search request.
type Submitter interface {
	Submit(ctx context.Context, req models.SearchRequest) (*search.Payload, error)
}

// Outcome is a completed, rendered search.
type Outcome struct {
	Snapshot *session.Snapshot
	Markup   template.HTML
}

// Controller runs searches and owns the state of the last completed one.
type Controller struct {
	submitter Submitter
	state     *session.State
	logger    *zap.Logger
	now       func() time.Time
}

func NewController(submitter Submitter, state *session.State, logger *zap.Logger) *Controller {
	if state == nil {
		state = session.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		submitter: submitter,
		state:     state,
		logger:    logger,
		now:       time.Now,
	}
}

// Search submits req, normalizes and renders the response, and records it as
// the last completed search.
func (c *Controller) Search(ctx context.Context, req models.SearchRequest) (*Outcome, error) {
	if err := search.Validate(req); err != nil {
		return nil, err
	}

	ticket := c.state.Begin()
	payload, err := c.submitter.Submit(ctx, req)
	if err != nil {
		return nil, err
	}
	if !c.state.Current(ticket) {
		c.logger.Info("discarding superseded search", zap.String("search_id", payload.SearchID))
		return nil, ErrSuperseded
	}

	resp, err := render.Normalize(payload.Data)
	if err != nil {
		return nil, &search.ResponseShapeError{Reason: "unexpected result data", Err: err}
	}

	markup, err := render.Render(resp, req.Mode)
	if err != nil {
		return nil, err
	}

	snap := &session.Snapshot{
		SearchID:    payload.SearchID,
		Request:     req,
		Response:    resp,
		CompletedAt: c.now(),
	}
	if !c.state.Complete(ticket, snap) {
		c.logger.Info("discarding superseded search", zap.String("search_id", payload.SearchID))
		return nil, ErrSuperseded
	}

	c.logger.Debug("search rendered",
		zap.String("search_id", payload.SearchID),
		zap.Stringer("shape", resp.Shape),
		zap.Int("groups", len(resp.Groups)),
		zap.Int("detailed", len(resp.Detailed)),
	)
	return &Outcome{Snapshot: snap, Markup: markup}, nil
}

// Export builds the download for the last completed search. It is a no-op
// returning (nil, false, nil) when no search has completed.
func (c *Controller) Export() (*export.Artifact, bool, error) {
	return export.Build(c.state.Last(), c.now())
}

// Last returns the last completed search, or nil.
func (c *Controller) Last() *session.Snapshot {
	return c.state.Last()
}
