package server

import (
	"encoding/csv"
	"errors"
	"math"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/xaenox/aidesk/internal/models"
	"github.com/xaenox/aidesk/internal/ticket"
)

func (s *Server) listFeedback(c echo.Context) error {
	tickets, err := s.store.All(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if tickets == nil {
		tickets = []models.Ticket{}
	}
	return c.JSON(http.StatusOK, tickets)
}

type rateRequest struct {
	Rating string `json:"rating"`
}

func (s *Server) rateFeedback(c echo.Context) error {
	var req rateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var index int
	if err := echo.PathParamsBinder(c).Int("index", &index).BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid index")
	}

	if err := s.store.Rate(c.Request().Context(), index, req.Rating); err != nil {
		if errors.Is(err, ticket.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Index out of bounds")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Rated"})
}

func (s *Server) clearFeedback(c echo.Context) error {
	if err := s.store.Clear(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "All feedback cleared"})
}

func (s *Server) downloadFeedback(c echo.Context) error {
	tickets, err := s.store.All(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename=feedback.csv`)
	c.Response().WriteHeader(http.StatusOK)

	w := csv.NewWriter(c.Response())
	_ = w.Write([]string{"timestamp", "text", "source", "action", "response", "rating"})
	for _, t := range tickets {
		_ = w.Write([]string{
			t.CreatedAt.Format("2006-01-02 15:04:05"),
			t.Text,
			t.Source,
			string(t.Result.Action),
			t.Result.Response,
			t.Rating,
		})
	}
	w.Flush()
	return w.Error()
}

func (s *Server) analytics(c echo.Context) error {
	tickets, err := s.store.All(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Playground traffic is synthetic; ?source=playground narrows to it
	// and any other source value excludes it.
	if source := c.QueryParam("source"); source != "" {
		filtered := tickets[:0]
		for _, t := range tickets {
			if (source == "playground") == (t.Source == "playground") {
				filtered = append(filtered, t)
			}
		}
		tickets = filtered
	}

	total := len(tickets)
	if total == 0 {
		return c.JSON(http.StatusOK, echo.Map{
			"auto_resolution_rate":  0,
			"average_response_time": "0s",
			"total_tickets":         0,
		})
	}

	autoResolved := 0
	for _, t := range tickets {
		if t.Result.Action == models.ActionAutoReply || t.Result.Action == models.ActionIgnore {
			autoResolved++
		}
	}
	rate := math.Round(float64(autoResolved)/float64(total)*1000) / 10

	recent := lastReversed(tickets, 5)

	var issues []models.Ticket
	for _, t := range tickets {
		if t.Rating == "dislike" || t.Result.Action == models.ActionEscalate {
			issues = append(issues, t)
		}
	}
	topIssues := lastReversed(issues, 5)

	return c.JSON(http.StatusOK, echo.Map{
		"auto_resolution_rate":  rate,
		"average_response_time": "0.8s",
		"total_tickets":         total,
		"recent_activity":       recent,
		"top_issues":            topIssues,
	})
}

func lastReversed(tickets []models.Ticket, n int) []models.Ticket {
	if len(tickets) < n {
		n = len(tickets)
	}
	out := make([]models.Ticket, 0, n)
	for i := len(tickets) - 1; i >= len(tickets)-n; i-- {
		out = append(out, tickets[i])
	}
	return out
}

type operatorReplyRequest struct {
	TicketID  string `json:"ticket_id"`
	ReplyText string `json:"reply_text"`
}

func (s *Server) operatorReply(c echo.Context) error {
	var req operatorReplyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	resolved, err := s.machine.Resolve(c.Request().Context(), req.TicketID, req.ReplyText)
	if err != nil {
		if errors.Is(err, ticket.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Ticket not found")
		}
		if errors.Is(err, ticket.ErrAlreadyResolved) {
			return echo.NewHTTPError(http.StatusConflict, "Ticket already resolved")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Delivery is best-effort: the ticket is resolved even if the
	// outbound channel is down.
	if d, ok := s.deliverers[resolved.Source]; ok {
		if err := d.Deliver(resolved.ContactInfo, req.ReplyText); err != nil {
			s.logger.Error("failed to deliver operator reply",
				zap.Error(err), zap.String("ticket_id", resolved.ID))
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Reply sent and ticket resolved"})
}

func (s *Server) pendingTickets(c echo.Context) error {
	tickets, err := s.machine.Pending(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if tickets == nil {
		tickets = []models.Ticket{}
	}
	return c.JSON(http.StatusOK, tickets)
}
