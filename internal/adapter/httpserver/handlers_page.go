package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/pscheid92/boxvote/internal/domain"
)

type pageData struct {
	View domain.View
}

func (s *Server) handlePage(c echo.Context) error {
	view, err := s.app.Render(c.Request().Context())
	if err != nil {
		return err
	}
	return s.renderTemplate(c, "index.html", pageData{View: view})
}
