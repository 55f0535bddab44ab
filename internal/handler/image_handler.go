package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pastelaria-service/internal/imagestore"
	"pastelaria-service/pkg/logger"
)

// ImageHandler streams stored product images
type ImageHandler struct {
	images *imagestore.Store
}

// NewImageHandler creates the image handler
func NewImageHandler(images *imagestore.Store) *ImageHandler {
	return &ImageHandler{images: images}
}

// Get handles GET /storage/img/:name
func (h *ImageHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)

	ref, ok := imagestore.ReferenceFromName(c.Param("name"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Image not found"})
	}

	rc, contentType, err := h.images.Open(c.Request().Context(), ref)
	if errors.Is(err, imagestore.ErrObjectNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Image not found"})
	}
	if err != nil {
		log.Error("Failed to open image", zap.String("reference", ref.String()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}
	defer rc.Close()

	c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	return c.Stream(http.StatusOK, contentType, rc)
}
