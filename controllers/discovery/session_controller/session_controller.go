package session_controller

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Modeva-Ecommerce/modeva-discovery/discovery"
	"github.com/Modeva-Ecommerce/modeva-discovery/models"
	"github.com/Modeva-Ecommerce/modeva-discovery/services"
)

// SessionController exposes discovery sessions over HTTP. Every mutating
// endpoint answers with the snapshot as it stands right after the change;
// clients follow up with ?wait=true or the event stream.
type SessionController struct {
	Registry    *services.SessionRegistry
	WaitTimeout time.Duration
	Heartbeat   time.Duration
	Logger      *zap.Logger
}

func NewSessionController(registry *services.SessionRegistry, waitTimeout time.Duration, logger *zap.Logger) *SessionController {
	if waitTimeout <= 0 {
		waitTimeout = discovery.DefaultFetchTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionController{
		Registry:    registry,
		WaitTimeout: waitTimeout,
		Heartbeat:   15 * time.Second,
		Logger:      logger,
	}
}

type sessionResponse struct {
	ID       string             `json:"id"`
	Snapshot discovery.Snapshot `json:"snapshot"`
}

type actionResponse struct {
	Triggered bool               `json:"triggered"`
	Snapshot  discovery.Snapshot `json:"snapshot"`
}

type createSessionRequest struct {
	Query   string               `json:"query"`
	Country string               `json:"country"`
	Sort    string               `json:"sort"`
	Filters models.FilterOptions `json:"filters"`
}

type sortRequest struct {
	Sort string `json:"sort"`
}

type queryRequest struct {
	Query   string  `json:"query"`
	Country *string `json:"country"`
}

type urlRequest struct {
	Search string `json:"search"`
}

type sentinelRequest struct {
	Intersecting *bool    `json:"intersecting"`
	Distance     *float64 `json:"distance"`
}

// Create godoc
// @Summary Start a discovery session
// @Description The query string is read as the page URL parameters. The body carries header search, country, sort and sidebar filters.
// @Tags discovery
// @Accept json
// @Produce json
// @Success 201 {object} models.ApiResponse
// @Failure 400 {object} models.ApiResponse
// @Router /discovery/sessions [post]
func (sc *SessionController) Create(c *gin.Context) {
	var body createSessionRequest
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse(c, "Invalid session body"))
		return
	}

	state := models.FilterState{Query: body.Query, Country: body.Country, Options: body.Filters}
	id, engine := sc.Registry.Create(c.Request.URL.Query(), state, body.Sort)

	c.JSON(http.StatusCreated, models.SuccessResponse(c, "Discovery session started", sessionResponse{
		ID:       id.String(),
		Snapshot: engine.Snapshot(),
	}))
}

// Get godoc
// @Summary Get a discovery session snapshot
// @Tags discovery
// @Produce json
// @Param id path string true "Session ID"
// @Param wait query bool false "Block until no fetch is in flight"
// @Success 200 {object} models.ApiResponse
// @Failure 404 {object} models.ApiResponse
// @Router /discovery/sessions/{id} [get]
func (sc *SessionController) Get(c *gin.Context) {
	id, engine, ok := sc.session(c)
	if !ok {
		return
	}

	snapshot := engine.Snapshot()
	if c.Query("wait") == "true" {
		ctx, cancel := context.WithTimeout(c.Request.Context(), sc.WaitTimeout)
		defer cancel()
		// On timeout the latest snapshot is still the best answer.
		if settled, err := engine.Settled(ctx); err == nil {
			snapshot = settled
		} else {
			snapshot = engine.Snapshot()
		}
	}

	c.JSON(http.StatusOK, models.SuccessResponse(c, "Discovery session fetched", sessionResponse{
		ID:       id.String(),
		Snapshot: snapshot,
	}))
}

func (sc *SessionController) UpdateFilters(c *gin.Context) {
	_, engine, ok := sc.session(c)
	if !ok {
		return
	}
	var body models.FilterOptions
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse(c, "Invalid filters body"))
		return
	}
	sc.respondAction(c, "Filters updated", engine.SetFilters(body), engine)
}

func (sc *SessionController) UpdateSort(c *gin.Context) {
	_, engine, ok := sc.session(c)
	if !ok {
		return
	}
	var body sortRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse(c, "Invalid sort body"))
		return
	}
	sc.respondAction(c, "Sort updated", engine.SetSort(body.Sort), engine)
}

func (sc *SessionController) UpdateQuery(c *gin.Context) {
	_, engine, ok := sc.session(c)
	if !ok {
		return
	}
	var body queryRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse(c, "Invalid query body"))
		return
	}
	changed := engine.SetQuery(body.Query)
	if body.Country != nil && engine.SetCountry(*body.Country) {
		changed = true
	}
	sc.respondAction(c, "Search updated", changed, engine)
}

// UpdateURL replaces the page URL parameters, as after client-side
// navigation. Search is the raw query string, with or without "?".
func (sc *SessionController) UpdateURL(c *gin.Context) {
	_, engine, ok := sc.session(c)
	if !ok {
		return
	}
	var body urlRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse(c, "Invalid url body"))
		return
	}
	params, err := url.ParseQuery(strings.TrimPrefix(body.Search, "?"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse(c, "Malformed query string"))
		return
	}
	sc.respondAction(c, "URL parameters updated", engine.SetURLParams(params), engine)
}

// Sentinel reports the scroll sentinel position. A distance is measured
// from the viewport bottom to the sentinel.
func (sc *SessionController) Sentinel(c *gin.Context) {
	_, engine, ok := sc.session(c)
	if !ok {
		return
	}
	var body sentinelRequest
	if err := c.ShouldBindJSON(&body); err != nil || (body.Intersecting == nil && body.Distance == nil) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse(c, "Provide intersecting or distance"))
		return
	}

	var triggered bool
	if body.Distance != nil {
		triggered = engine.ObserveDistance(*body.Distance)
	} else {
		triggered = engine.ObserveIntersecting(*body.Intersecting)
	}
	sc.respondAction(c, "Sentinel observed", triggered, engine)
}

func (sc *SessionController) LoadMore(c *gin.Context) {
	_, engine, ok := sc.session(c)
	if !ok {
		return
	}
	sc.respondAction(c, "Load more handled", engine.LoadMore(), engine)
}

func (sc *SessionController) Retry(c *gin.Context) {
	_, engine, ok := sc.session(c)
	if !ok {
		return
	}
	sc.respondAction(c, "Retry handled", engine.Retry(), engine)
}

func (sc *SessionController) Delete(c *gin.Context) {
	id, ok := sc.parseID(c)
	if !ok {
		return
	}
	if !sc.Registry.Delete(id) {
		c.JSON(http.StatusNotFound, models.ErrorResponse(c, "Discovery session not found"))
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse(c, "Discovery session closed", nil))
}

// Events streams a snapshot on connect and after every state change.
// GET /api/v1/discovery/sessions/:id/events
func (sc *SessionController) Events(c *gin.Context) {
	id, engine, ok := sc.session(c)
	if !ok {
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	heartbeat := time.NewTicker(sc.Heartbeat)
	defer heartbeat.Stop()

	ctx := c.Request.Context()
	changed := engine.Changed()
	c.SSEvent("snapshot", engine.Snapshot())
	c.Writer.Flush()

	for {
		select {
		case <-ctx.Done():
			return
		case <-changed:
			changed = engine.Changed()
			c.SSEvent("snapshot", engine.Snapshot())
			c.Writer.Flush()
		case <-heartbeat.C:
			if _, alive := sc.Registry.Get(id); !alive {
				c.SSEvent("closed", gin.H{"id": id.String()})
				c.Writer.Flush()
				return
			}
			_, _ = io.WriteString(c.Writer, ": heartbeat\n\n")
			c.Writer.Flush()
		}
	}
}

func (sc *SessionController) respondAction(c *gin.Context, message string, triggered bool, engine *discovery.Engine) {
	c.JSON(http.StatusOK, models.SuccessResponse(c, message, actionResponse{
		Triggered: triggered,
		Snapshot:  engine.Snapshot(),
	}))
}

func (sc *SessionController) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse(c, "Invalid session ID"))
		return uuid.Nil, false
	}
	return id, true
}

func (sc *SessionController) session(c *gin.Context) (uuid.UUID, *discovery.Engine, bool) {
	id, ok := sc.parseID(c)
	if !ok {
		return uuid.Nil, nil, false
	}
	engine, ok := sc.Registry.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse(c, "Discovery session not found"))
		return uuid.Nil, nil, false
	}
	return id, engine, true
}
