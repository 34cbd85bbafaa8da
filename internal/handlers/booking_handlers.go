package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"travel_app_echo/internal/services"
)

type BookingHandler struct {
	catalog Catalog
}

func NewBookingHandler(catalog Catalog) *BookingHandler {
	return &BookingHandler{catalog: catalog}
}

func (h *BookingHandler) List(c echo.Context) error {
	page, err := parsePage(c)
	if err != nil {
		return err
	}
	listingID, err := parseOptionalID(c, "listing_id")
	if err != nil {
		return err
	}
	bookings, total, err := h.catalog.ListBookings(c.Request().Context(), listingID, page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPageResponse(bookings, total, page))
}

func (h *BookingHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	booking, err := h.catalog.GetBooking(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, booking)
}

// Create stores the booking; the confirmation email goes out asynchronously
func (h *BookingHandler) Create(c echo.Context) error {
	var in services.BookingInput
	if err := bind(c, &in); err != nil {
		return err
	}
	booking, err := h.catalog.CreateBooking(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, booking)
}

func (h *BookingHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var in services.BookingInput
	if err := bind(c, &in); err != nil {
		return err
	}
	booking, err := h.catalog.UpdateBooking(c.Request().Context(), id, in, isPatch(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, booking)
}

func (h *BookingHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteBooking(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
