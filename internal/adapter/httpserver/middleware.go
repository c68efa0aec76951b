package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pscheid92/boxvote/internal/domain"
	"github.com/pscheid92/boxvote/internal/platform/correlation"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, id := correlation.Ensure(c.Request().Context(), c.Request().Header.Get(correlation.Header))
		c.SetRequest(c.Request().WithContext(ctx))
		c.Response().Header().Set(correlation.Header, id)
		return next(c)
	}
}

// ErrorHandlingMiddleware turns domain errors into JSON responses. Rejected votes become
// 409/400 with the message shown to the visitor; anything else is a logged 500.
func ErrorHandlingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) {
				return err
			}

			status, resp := classifyError(err)
			logError(c, status, err)

			if err := c.JSON(status, resp); err != nil {
				return fmt.Errorf("failed to write error response: %w", err)
			}
			return nil
		}
	}
}

func classifyError(err error) (int, errorResponse) {
	switch {
	case errors.Is(err, domain.ErrRoundClosed):
		return http.StatusConflict, errorResponse{Error: "round_closed", Message: domain.VoteErrorMessage(err)}
	case errors.Is(err, domain.ErrAlreadyVoted):
		return http.StatusConflict, errorResponse{Error: "already_voted", Message: domain.VoteErrorMessage(err)}
	case errors.Is(err, domain.ErrInvalidSide):
		return http.StatusBadRequest, errorResponse{Error: "invalid_side", Message: domain.VoteErrorMessage(err)}
	default:
		return http.StatusInternalServerError, errorResponse{Error: "internal", Message: "Something went wrong."}
	}
}

func logError(c echo.Context, status int, err error) {
	attrs := []any{
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
		"status", status,
		"error", err,
	}

	ctx := c.Request().Context()
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, "Internal error", attrs...)
		return
	}
	slog.InfoContext(ctx, "Request rejected", attrs...)
}
