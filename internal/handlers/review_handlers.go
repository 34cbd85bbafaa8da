package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"travel_app_echo/internal/services"
)

type ReviewHandler struct {
	catalog Catalog
}

func NewReviewHandler(catalog Catalog) *ReviewHandler {
	return &ReviewHandler{catalog: catalog}
}

func (h *ReviewHandler) List(c echo.Context) error {
	page, err := parsePage(c)
	if err != nil {
		return err
	}
	listingID, err := parseOptionalID(c, "listing_id")
	if err != nil {
		return err
	}
	reviews, total, err := h.catalog.ListReviews(c.Request().Context(), listingID, page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPageResponse(reviews, total, page))
}

func (h *ReviewHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	review, err := h.catalog.GetReview(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, review)
}

func (h *ReviewHandler) Create(c echo.Context) error {
	var in services.ReviewInput
	if err := bind(c, &in); err != nil {
		return err
	}
	review, err := h.catalog.CreateReview(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var in services.ReviewInput
	if err := bind(c, &in); err != nil {
		return err
	}
	review, err := h.catalog.UpdateReview(c.Request().Context(), id, in, isPatch(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, review)
}

func (h *ReviewHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteReview(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
