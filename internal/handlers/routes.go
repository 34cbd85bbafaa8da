package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	authMiddleware "travel_app_echo/internal/middleware"
)

// Routes holds everything Register needs
type Routes struct {
	Payments PaymentFlow
	Catalog  Catalog
	// Admin guards listing writes; nil means use RequireAdmin(nil), which rejects them
	Admin echo.MiddlewareFunc
}

// Register mounts the API on e. NewServer strips trailing slashes, so /payments/initiate/ matches too.
func Register(e *echo.Echo, r Routes) {
	admin := r.Admin
	if admin == nil {
		admin = authMiddleware.RequireAdmin(nil)
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	payments := NewPaymentHandler(r.Payments)
	p := e.Group("/payments")
	p.POST("/initiate", payments.Initiate)
	p.GET("/verify", payments.Verify)
	p.GET("/callback", payments.Callback)
	p.POST("/callback", payments.Callback)
	p.GET("/return", payments.Return)
	p.GET("/:id", payments.Get)

	listings := NewListingHandler(r.Catalog)
	bookings := NewBookingHandler(r.Catalog)
	reviews := NewReviewHandler(r.Catalog)

	api := e.Group("/api")

	api.GET("/listings", listings.List)
	api.GET("/listings/:id", listings.Get)
	api.GET("/listings/:id/reviews", listings.Reviews)
	api.POST("/listings", listings.Create, admin)
	api.PUT("/listings/:id", listings.Update, admin)
	api.PATCH("/listings/:id", listings.Update, admin)
	api.DELETE("/listings/:id", listings.Delete, admin)

	api.GET("/bookings", bookings.List)
	api.GET("/bookings/:id", bookings.Get)
	api.POST("/bookings", bookings.Create)
	api.PUT("/bookings/:id", bookings.Update)
	api.PATCH("/bookings/:id", bookings.Update)
	api.DELETE("/bookings/:id", bookings.Delete)

	api.GET("/reviews", reviews.List)
	api.GET("/reviews/:id", reviews.Get)
	api.POST("/reviews", reviews.Create)
	api.PUT("/reviews/:id", reviews.Update)
	api.PATCH("/reviews/:id", reviews.Update)
	api.DELETE("/reviews/:id", reviews.Delete)
}

// NewServer builds an Echo instance with the JSON error handler and validator
func NewServer() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.HTTPErrorHandler = authMiddleware.CustomErrorHandler
	e.Validator = authMiddleware.NewValidator()
	return e
}
