package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"travel_app_echo/internal/domain"
	"travel_app_echo/internal/repository"
)

// PageResponse is the envelope of every list endpoint
type PageResponse[T any] struct {
	Count    int64 `json:"count"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Results  []T   `json:"results"`
}

func newPageResponse[T any](items []T, total int64, page repository.Page) PageResponse[T] {
	size, offset := page.Offset()
	if items == nil {
		items = []T{}
	}
	return PageResponse[T]{
		Count:    total,
		Page:     offset/size + 1,
		PageSize: size,
		Results:  items,
	}
}

// parsePage reads the page and page_size query parameters
func parsePage(c echo.Context) (repository.Page, error) {
	var page repository.Page
	if v := c.QueryParam("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return page, domain.ValidationError{Field: "page", Msg: "must be a positive integer"}
		}
		page.Number = n
	}
	if v := c.QueryParam("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return page, domain.ValidationError{Field: "page_size", Msg: "must be a positive integer"}
		}
		page.Size = n
	}
	return page, nil
}

func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

// parseOptionalID reads an optional numeric query parameter
func parseOptionalID(c echo.Context, name string) (uint, error) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, domain.ValidationError{Field: name, Msg: "must be a positive integer"}
	}
	return uint(id), nil
}

// bind decodes the body and runs the registered validator
func bind(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if c.Echo().Validator != nil {
		if err := c.Validate(dst); err != nil {
			return err
		}
	}
	return nil
}

// isPatch tells PATCH (partial update) apart from PUT
func isPatch(c echo.Context) bool {
	return c.Request().Method == http.MethodPatch
}
