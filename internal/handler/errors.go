package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pastelaria-service/internal/imagestore"
	"pastelaria-service/internal/repository"
	"pastelaria-service/pkg/logger"
)

var kindTitles = map[string]string{
	repository.KindCustomer:    "Customer",
	repository.KindProductType: "Product type",
	repository.KindProduct:     "Product",
}

// respondError maps a repository error onto the HTTP response. kind is the
// resource the request addressed.
func respondError(c echo.Context, kind string, err error) error {
	log := logger.FromContext(c)

	var validationErr *ValidationError
	var httpErr *echo.HTTPError
	var nf *repository.NotFoundError

	switch {
	case errors.As(err, &httpErr):
		return c.JSON(httpErr.Code, echo.Map{"error": httpErr.Message})

	case errors.As(err, &validationErr):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":  "Validation failed",
			"fields": validationErr.Fields,
		})

	case errors.As(err, &nf) && nf.Kind != kind:
		// a referenced record, e.g. the product type of a product, is a client error
		log.Warn("Referenced record not found", zap.Error(err))
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error": kindTitles[nf.Kind] + " not found or deleted",
		})

	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": kindTitles[kind] + " not found",
		})

	case errors.Is(err, imagestore.ErrInvalidBinaryContent):
		log.Warn("Rejected image payload", zap.Error(err))
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error": "photo must be a valid base64 encoded image",
		})

	default:
		log.Error("Request failed", zap.String("kind", kind), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Internal server error",
		})
	}
}
