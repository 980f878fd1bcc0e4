package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xaenox/aidesk/internal/models"
	"github.com/xaenox/aidesk/internal/style"
)

type profileRequest struct {
	Texts []string `json:"texts"`
}

// buildProfile analyzes a reference corpus into a StyleProfile the
// generation endpoints can feed back in.
func (s *Server) buildProfile(c echo.Context) error {
	var req profileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	profile := s.analyzer.BuildProfile(c.Request().Context(), req.Texts)
	return c.JSON(http.StatusOK, profile)
}

type generateRequest struct {
	Topic             string              `json:"topic"`
	Strategy          string              `json:"strategy"`
	Profile           models.StyleProfile `json:"profile"`
	ReferencePosts    []string            `json:"reference_posts"`
	Platforms         []string            `json:"platforms"`
	AdditionalContext string              `json:"additional_context"`
	EnableRAG         bool                `json:"enable_rag"`
	EnableCritic      bool                `json:"enable_critic"`
}

func (s *Server) generatePost(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	strategy := style.Strategy(req.Strategy)
	known := false
	for _, st := range style.Strategies() {
		if st == strategy {
			known = true
			break
		}
	}
	if !known {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown strategy")
	}

	results, err := s.engine.GeneratePost(c.Request().Context(), style.GenerateRequest{
		Profile:           req.Profile,
		Topic:             req.Topic,
		Strategy:          strategy,
		ReferencePosts:    req.ReferencePosts,
		Platforms:         req.Platforms,
		AdditionalContext: req.AdditionalContext,
		EnableRAG:         req.EnableRAG,
		EnableCritic:      req.EnableCritic,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"results": results})
}
