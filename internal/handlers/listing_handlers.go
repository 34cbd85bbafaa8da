package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"travel_app_echo/internal/services"
)

type ListingHandler struct {
	catalog Catalog
}

func NewListingHandler(catalog Catalog) *ListingHandler {
	return &ListingHandler{catalog: catalog}
}

// List returns a page of listings, filtered by ?location= when given
func (h *ListingHandler) List(c echo.Context) error {
	page, err := parsePage(c)
	if err != nil {
		return err
	}
	listings, total, err := h.catalog.ListListings(c.Request().Context(), c.QueryParam("location"), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPageResponse(listings, total, page))
}

func (h *ListingHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	listing, err := h.catalog.GetListing(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listing)
}

func (h *ListingHandler) Create(c echo.Context) error {
	var in services.ListingInput
	if err := bind(c, &in); err != nil {
		return err
	}
	listing, err := h.catalog.CreateListing(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, listing)
}

// Update serves both PUT and PATCH
func (h *ListingHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var in services.ListingInput
	if err := bind(c, &in); err != nil {
		return err
	}
	listing, err := h.catalog.UpdateListing(c.Request().Context(), id, in, isPatch(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listing)
}

func (h *ListingHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteListing(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Reviews lists the reviews of one listing
func (h *ListingHandler) Reviews(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	page, err := parsePage(c)
	if err != nil {
		return err
	}
	if _, err := h.catalog.GetListing(c.Request().Context(), id); err != nil {
		return err
	}
	reviews, total, err := h.catalog.ListReviews(c.Request().Context(), id, page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPageResponse(reviews, total, page))
}
