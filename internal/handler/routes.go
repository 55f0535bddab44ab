package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handlers groups every HTTP handler of the service
type Handlers struct {
	Customers    *CustomerHandler
	ProductTypes *ProductTypeHandler
	Products     *ProductHandler
	Images       *ImageHandler
}

// Register mounts the API under api and the public routes on e
func (h *Handlers) Register(e *echo.Echo, api *echo.Group) {
	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	e.GET("/storage/img/:name", h.Images.Get)

	h.Customers.Register(api.Group("/customers"))
	h.ProductTypes.Register(api.Group("/product-types"))
	h.Products.Register(api.Group("/products"))
}
