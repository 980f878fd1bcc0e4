// Package server exposes the admin and playground HTTP API.
package server

import (
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/xaenox/aidesk/internal/index"
	"github.com/xaenox/aidesk/internal/models"
	"github.com/xaenox/aidesk/internal/pipeline"
	"github.com/xaenox/aidesk/internal/style"
	"github.com/xaenox/aidesk/internal/ticket"
	"github.com/xaenox/aidesk/pkg/config"
)

// Deliverer pushes an operator reply back over the channel a ticket
// arrived on.
type Deliverer interface {
	Deliver(contactInfo map[string]string, text string) error
}

// Server wires the HTTP surface to the core components.
type Server struct {
	echo       *echo.Echo
	indexer    *index.Indexer
	queue      *index.Queue
	settings   *config.SystemStore
	analyzer   *style.Analyzer
	engine     *style.Engine
	machine    *ticket.Machine
	store      ticket.Store
	pipeline   *pipeline.Pipeline
	deliverers map[string]Deliverer
	logger     *zap.Logger
}

func New(
	indexer *index.Indexer,
	queue *index.Queue,
	settings *config.SystemStore,
	analyzer *style.Analyzer,
	engine *style.Engine,
	machine *ticket.Machine,
	store ticket.Store,
	p *pipeline.Pipeline,
	logger *zap.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:       e,
		indexer:    indexer,
		queue:      queue,
		settings:   settings,
		analyzer:   analyzer,
		engine:     engine,
		machine:    machine,
		store:      store,
		pipeline:   p,
		deliverers: make(map[string]Deliverer),
		logger:     logger,
	}
	s.routes()
	return s
}

// RegisterDeliverer attaches an outbound channel for operator replies.
func (s *Server) RegisterDeliverer(source string, d Deliverer) {
	s.deliverers[source] = d
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) routes() {
	s.echo.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"message": "AI Help Desk API is running"})
	})

	api := s.echo.Group("/api/v1")

	admin := api.Group("/admin")
	admin.POST("/upload-document", s.uploadDocument)
	admin.GET("/documents", s.listDocuments)
	admin.DELETE("/documents/:filename", s.deleteDocument)
	admin.GET("/documents/:filename/chunks", s.documentChunks)
	admin.PUT("/chunks/:id", s.updateChunk)
	admin.GET("/settings", s.getSettings)
	admin.POST("/settings", s.updateSettings)
	admin.POST("/analyze-style", s.analyzeStyle)
	admin.POST("/evaluate", s.evaluate)
	admin.GET("/analytics", s.analytics)
	admin.GET("/feedback", s.listFeedback)
	admin.POST("/feedback/:index/rate", s.rateFeedback)
	admin.DELETE("/feedback/all", s.clearFeedback)
	admin.GET("/feedback/download", s.downloadFeedback)
	admin.POST("/operator/reply", s.operatorReply)
	admin.GET("/operator/tickets", s.pendingTickets)

	api.POST("/playground", s.playground)
	api.POST("/style/profile", s.buildProfile)
	api.POST("/style/generate", s.generatePost)
}

// uploadDocument accepts multipart files, spools each to a temp file and
// hands it to the ingestion queue. The response returns before indexing
// finishes; the queue owns and removes every temp file.
func (s *Server) uploadDocument(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "multipart form required")
	}

	for _, file := range form.File["files"] {
		if file.Filename == "" {
			continue
		}

		src, err := file.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "cannot read upload")
		}

		tmp, err := os.CreateTemp("", "upload-*"+filepath.Ext(file.Filename))
		if err != nil {
			src.Close()
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot spool upload")
		}
		if _, err := io.Copy(tmp, src); err != nil {
			src.Close()
			tmp.Close()
			os.Remove(tmp.Name())
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot spool upload")
		}
		src.Close()
		tmp.Close()

		s.queue.Submit(index.Job{
			Path:      tmp.Name(),
			Source:    filepath.Base(file.Filename),
			Temporary: true,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Uploads accepted. Processing started in background."})
}

func (s *Server) listDocuments(c echo.Context) error {
	sources, err := s.indexer.ListSources(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if sources == nil {
		sources = []string{}
	}
	return c.JSON(http.StatusOK, echo.Map{"documents": sources})
}

func (s *Server) deleteDocument(c echo.Context) error {
	filename := c.Param("filename")
	if err := s.indexer.Delete(c.Request().Context(), filename); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Deleted " + filename})
}

func (s *Server) documentChunks(c echo.Context) error {
	chunks, err := s.indexer.ChunksBySource(c.Request().Context(), c.Param("filename"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	out := make([]echo.Map, 0, len(chunks))
	for _, ch := range chunks {
		out = append(out, echo.Map{
			"id":       ch.ID,
			"content":  ch.Content,
			"metadata": echo.Map{"source": ch.Source},
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"chunks": out})
}

type chunkUpdateRequest struct {
	Content string `json:"content"`
}

func (s *Server) updateChunk(c echo.Context) error {
	var req chunkUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := s.indexer.UpdateChunk(c.Request().Context(), c.Param("id"), req.Content); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Chunk updated"})
}

func (s *Server) getSettings(c echo.Context) error {
	return c.JSON(http.StatusOK, s.settings.Current())
}

func (s *Server) updateSettings(c echo.Context) error {
	cfg := &config.SystemConfig{}
	if err := c.Bind(cfg); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid settings document")
	}
	if err := s.settings.Replace(cfg); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Settings updated, saved, and applied."})
}

type analyzeRequest struct {
	Text  string   `json:"text"`
	Texts []string `json:"texts"`
}

func (s *Server) analyzeStyle(c echo.Context) error {
	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	texts := req.Texts
	if len(texts) == 0 && req.Text != "" {
		texts = []string{req.Text}
	}
	profile := s.analyzer.BuildProfile(c.Request().Context(), texts)
	return c.JSON(http.StatusOK, profile)
}

type evaluateRequest struct {
	Text1 string `json:"text1"`
	Text2 string `json:"text2"`
}

func (s *Server) evaluate(c echo.Context) error {
	var req evaluateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	return c.JSON(http.StatusOK, style.EvaluateSimilarity(req.Text1, req.Text2))
}

type playgroundRequest struct {
	Text string `json:"text"`
}

func (s *Server) playground(c echo.Context) error {
	var req playgroundRequest
	if err := c.Bind(&req); err != nil || req.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text required")
	}

	ctx := c.Request().Context()
	result := s.pipeline.Process(ctx, req.Text, "playground")

	switch result.Action {
	case models.ActionEscalate:
		if _, err := s.machine.Create(ctx, req.Text, "playground", nil); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	case models.ActionAutoReply:
		if err := s.machine.Log(ctx, req.Text, "playground", models.TicketResult{
			Action:   models.ActionAutoReply,
			Response: result.Response,
		}); err != nil {
			s.logger.Error("failed to log playground request", zap.Error(err))
		}
	}

	return c.JSON(http.StatusOK, result)
}
