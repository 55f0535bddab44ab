package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pastelaria-service/internal/repository"
	"pastelaria-service/pkg/logger"
)

// Store is the repository surface a resource handler drives
type Store[T any, In any] interface {
	Kind() string
	List(ctx context.Context, filters ...repository.Filter) ([]T, error)
	Find(ctx context.Context, id uint) (*T, error)
	Create(ctx context.Context, in In) (*T, error)
	Update(ctx context.Context, id uint, in In) (*T, error)
	Destroy(ctx context.Context, id uint) error
	Restore(ctx context.Context, id uint) (*T, error)
}

// ResourceHandler serves the CRUD, soft-delete and restore endpoints of one kind
type ResourceHandler[T any, In any] struct {
	store Store[T, In]

	// check reports field problems the tag rules cannot express;
	// creating is true for POST
	check func(in In, creating bool) map[string]string

	// filters builds list filters from the query string
	filters func(c echo.Context) ([]repository.Filter, error)
}

// List handles retrieving all active records
func (h *ResourceHandler[T, In]) List(c echo.Context) error {
	log := logger.FromContext(c)

	var filters []repository.Filter
	if h.filters != nil {
		var err error
		if filters, err = h.filters(c); err != nil {
			log.Warn("Invalid list filter", zap.Error(err))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
	}

	items, err := h.store.List(c.Request().Context(), filters...)
	if err != nil {
		return respondError(c, h.store.Kind(), err)
	}

	log.Info("Records retrieved successfully",
		zap.String("kind", h.store.Kind()),
		zap.Int("count", len(items)))
	return c.JSON(http.StatusOK, items)
}

// Get handles retrieving a single active record by ID
func (h *ResourceHandler[T, In]) Get(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid id"})
	}

	item, err := h.store.Find(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.store.Kind(), err)
	}
	return c.JSON(http.StatusOK, item)
}

// Create handles creating a new record
func (h *ResourceHandler[T, In]) Create(c echo.Context) error {
	in, err := h.bind(c, true)
	if err != nil {
		return respondError(c, h.store.Kind(), err)
	}

	item, err := h.store.Create(c.Request().Context(), in)
	if err != nil {
		return respondError(c, h.store.Kind(), err)
	}

	logger.FromContext(c).Info("Record created successfully", zap.String("kind", h.store.Kind()))
	return c.JSON(http.StatusCreated, item)
}

// Update handles a partial update of an active record
func (h *ResourceHandler[T, In]) Update(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid id"})
	}

	in, err := h.bind(c, false)
	if err != nil {
		return respondError(c, h.store.Kind(), err)
	}

	item, err := h.store.Update(c.Request().Context(), id, in)
	if err != nil {
		return respondError(c, h.store.Kind(), err)
	}

	logger.FromContext(c).Info("Record updated successfully",
		zap.String("kind", h.store.Kind()),
		zap.Uint64("id", uint64(id)))
	return c.JSON(http.StatusOK, item)
}

// Delete handles soft-deleting a record
func (h *ResourceHandler[T, In]) Delete(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid id"})
	}

	if err := h.store.Destroy(c.Request().Context(), id); err != nil {
		return respondError(c, h.store.Kind(), err)
	}

	logger.FromContext(c).Info("Record deleted successfully",
		zap.String("kind", h.store.Kind()),
		zap.Uint64("id", uint64(id)))
	return c.NoContent(http.StatusNoContent)
}

// Restore handles bringing back a soft-deleted record
func (h *ResourceHandler[T, In]) Restore(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid id"})
	}

	item, err := h.store.Restore(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.store.Kind(), err)
	}

	logger.FromContext(c).Info("Record restored successfully",
		zap.String("kind", h.store.Kind()),
		zap.Uint64("id", uint64(id)))
	return c.JSON(http.StatusOK, item)
}

// Register mounts the resource routes on g
func (h *ResourceHandler[T, In]) Register(g *echo.Group) {
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/restore", h.Restore)
}

func (h *ResourceHandler[T, In]) bind(c echo.Context, creating bool) (In, error) {
	var in In
	if err := c.Bind(&in); err != nil {
		logger.FromContext(c).Warn("Invalid request data", zap.Error(err))
		return in, echo.NewHTTPError(http.StatusBadRequest, "Invalid request data")
	}
	if err := c.Validate(&in); err != nil {
		return in, err
	}
	if h.check != nil {
		if problems := h.check(in, creating); len(problems) > 0 {
			return in, &ValidationError{Fields: problems}
		}
	}
	return in, nil
}

func parseID(c echo.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
