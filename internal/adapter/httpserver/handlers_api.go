package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pscheid92/boxvote/internal/domain"
)

type voteRequest struct {
	Side string `json:"side"`
}

func (s *Server) registerAPIRoutes() {
	api := s.echo.Group("/api")
	api.GET("/view", s.handleView)
	api.POST("/vote", s.handleVote, newRateLimiter(s.config.VoteRateLimit, s.config.VoteRateBurst))
}

func (s *Server) handleView(c echo.Context) error {
	view, err := s.app.Render(c.Request().Context())
	if err != nil {
		return err
	}
	if err := c.JSON(http.StatusOK, view); err != nil {
		return fmt.Errorf("failed to write view response: %w", err)
	}
	return nil
}

func (s *Server) handleVote(c echo.Context) error {
	var req voteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	side, err := domain.ParseSide(req.Side)
	if err != nil {
		return err
	}

	view, err := s.app.CastVote(c.Request().Context(), side)
	if err != nil {
		return err
	}
	if err := c.JSON(http.StatusOK, view); err != nil {
		return fmt.Errorf("failed to write vote response: %w", err)
	}
	return nil
}
