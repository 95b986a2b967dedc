package series

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

// Handler handles HTTP requests for series.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the series routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/series")
	group.Post("/", h.HandleRegister)
	group.Get("/:id/points", h.HandleRange)
	group.Post("/:id/points", h.HandleAppend)
	group.Get("/:id/point", h.HandleLookup)
	group.Delete("/:id/cache", h.HandleResetCache)
	group.Delete("/:id", h.HandleInvalidate)

	app.Get("/filter", h.HandleGetFilter)
	app.Put("/filter", h.HandleUpdateFilter)
	app.Get("/record", h.HandleStatus)
}

// seriesID returns a copy of the unescaped :id parameter. Fiber parameters
// point into a reused request buffer and the record keeps ids as map keys.
func seriesID(c *fiber.Ctx) (string, error) {
	return url.PathUnescape(strings.Clone(c.Params("id")))
}

func queryInt64(c *fiber.Ctx, key string) (int64, bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, true, err
	}
	return v, true, nil
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// HandleRange returns the points of a series within ?start=&end=.
func (h *Handler) HandleRange(c *fiber.Ctx) error {
	id, err := seriesID(c)
	if err != nil {
		return badRequest(c, "invalid series id")
	}
	start, okStart, errStart := queryInt64(c, "start")
	end, okEnd, errEnd := queryInt64(c, "end")
	if errStart != nil || errEnd != nil || !okStart || !okEnd {
		return badRequest(c, "start and end must be unix seconds")
	}

	r := point.TimeRange{Start: start, End: end}
	pts, err := h.service.Range(c.Context(), id, r)
	if err != nil {
		return badRequest(c, err.Error())
	}

	return c.JSON(fiber.Map{
		"series": id,
		"range":  r,
		"points": pts,
	})
}

// HandleLookup returns one point for ?at=, ?before= or ?after=.
func (h *Handler) HandleLookup(c *fiber.Ctx) error {
	id, err := seriesID(c)
	if err != nil {
		return badRequest(c, "invalid series id")
	}

	var (
		dir   Direction
		t     int64
		count int
	)
	for _, d := range []Direction{At, Before, After} {
		v, ok, err := queryInt64(c, string(d))
		if err != nil {
			return badRequest(c, string(d)+" must be unix seconds")
		}
		if ok {
			dir, t = d, v
			count++
		}
	}
	if count != 1 {
		return badRequest(c, "exactly one of at, before or after is required")
	}

	p, ok, err := h.service.Lookup(c.Context(), id, dir, t)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "point not found"})
	}
	return c.JSON(p)
}

type registerRequest struct {
	Name  string `json:"name"`
	Units string `json:"units"`
}

// HandleRegister registers a series.
func (h *Handler) HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := h.service.Register(c.Context(), req.Name, req.Units); err != nil {
		status := fiber.StatusServiceUnavailable
		switch {
		case errors.Is(err, reconcile.ErrInvalidRequest):
			status = fiber.StatusBadRequest
		case errors.Is(err, reconcile.ErrRegistrationConflict):
			status = fiber.StatusConflict
		}
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(req)
}

// HandleAppend writes points to a series. ?bulk=true wraps the write in a
// bulk operation.
func (h *Handler) HandleAppend(c *fiber.Ctx) error {
	id, err := seriesID(c)
	if err != nil {
		return badRequest(c, "invalid series id")
	}
	var points []point.Point
	if err := c.BodyParser(&points); err != nil {
		return badRequest(c, "body must be a JSON array of points")
	}
	if len(points) == 0 {
		return badRequest(c, "no points")
	}

	res := h.service.Append(c.Context(), id, points, c.QueryBool("bulk"))
	if !res.Applied {
		logger.WithRayID(h.service.logger, c).Warn("Points not written",
			zap.String("series", id),
			zap.Int("count", len(points)),
			zap.String("reason", res.Error),
		)
	}
	return c.Status(fiber.StatusAccepted).JSON(res)
}

// HandleInvalidate removes the persisted record of a series.
func (h *Handler) HandleInvalidate(c *fiber.Ctx) error {
	id, err := seriesID(c)
	if err != nil {
		return badRequest(c, "invalid series id")
	}
	return c.JSON(h.service.Invalidate(c.Context(), id))
}

// HandleResetCache drops the buffered points of a series.
func (h *Handler) HandleResetCache(c *fiber.Ctx) error {
	id, err := seriesID(c)
	if err != nil {
		return badRequest(c, "invalid series id")
	}
	return c.JSON(h.service.ResetCache(c.Context(), id))
}

// HandleGetFilter returns the active filter.
func (h *Handler) HandleGetFilter(c *fiber.Ctx) error {
	return c.JSON(h.service.Filter())
}

// HandleUpdateFilter changes the filter mode and/or code set.
func (h *Handler) HandleUpdateFilter(c *fiber.Ctx) error {
	var req FilterUpdate
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	state, err := h.service.UpdateFilter(c.Context(), req)
	if err != nil {
		return badRequest(c, err.Error())
	}
	return c.JSON(state)
}

// HandleStatus returns the record diagnostics.
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(h.service.Status())
}
