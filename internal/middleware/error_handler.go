package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"travel_app_echo/internal/domain"
)

// StatusFor maps an error onto the HTTP status and message returned to the client
func StatusFor(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok && m != "" {
			msg = m
		}
		return he.Code, msg
	}

	switch {
	case domain.IsValidation(err):
		return http.StatusBadRequest, err.Error()
	case domain.IsNotFound(err):
		return http.StatusNotFound, err.Error()
	case domain.IsConflict(err):
		return http.StatusConflict, err.Error()
	case domain.IsGateway(err):
		// provider details stay in the logs
		return http.StatusBadRequest, "payment gateway request failed"
	default:
		return http.StatusInternalServerError, "Something went wrong. Please try again later."
	}
}

// CustomErrorHandler renders every error as {"error": "..."}
func CustomErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, msg := StatusFor(err)
	if code >= http.StatusInternalServerError || domain.IsGateway(err) {
		c.Logger().Error(err)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(code)
	} else {
		writeErr = c.JSON(code, map[string]string{"error": msg})
	}
	if writeErr != nil {
		c.Logger().Error(writeErr)
	}
}
