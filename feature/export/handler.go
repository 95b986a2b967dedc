package export

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"point-record/core/logger"
	"point-record/core/point"
	"point-record/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for exports.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the export routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/export")
	group.Post("/:id", h.HandleExport)
	group.Get("/:id", h.HandleList)
	group.Get("/:id/:name", h.HandleFetch)
	group.Delete("/:id/:name", h.HandleDelete)
}

func param(c *fiber.Ctx, key string) (string, error) {
	return url.PathUnescape(strings.Clone(c.Params(key)))
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, reconcile.ErrInvalidRequest), errors.Is(err, ErrInvalidName):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// HandleExport uploads the points of a series within ?start=&end=.
// ?name= overrides the object name.
func (h *Handler) HandleExport(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid series id"})
	}
	start, errStart := strconv.ParseInt(c.Query("start"), 10, 64)
	end, errEnd := strconv.ParseInt(c.Query("end"), 10, 64)
	if errStart != nil || errEnd != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "start and end must be unix seconds"})
	}

	res, err := h.service.Export(c.Context(), id, point.TimeRange{Start: start, End: end}, strings.Clone(c.Query("name")))
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Export failed", zap.String("series", id), zap.Error(err))
		return c.Status(errorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// HandleList lists the exports of a series.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	id, err := param(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid series id"})
	}
	objects, err := h.service.List(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(objects)
}

// HandleFetch returns one export of a series.
func (h *Handler) HandleFetch(c *fiber.Ctx) error {
	id, errID := param(c, "id")
	name, errName := param(c, "name")
	if errID != nil || errName != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid path"})
	}
	snap, err := h.service.Fetch(c.Context(), id, name)
	if err != nil {
		return c.Status(errorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(snap)
}

// HandleDelete removes one export of a series.
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	id, errID := param(c, "id")
	name, errName := param(c, "name")
	if errID != nil || errName != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid path"})
	}
	if err := h.service.Delete(c.Context(), id, name); err != nil {
		return c.Status(errorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
