package catalog

import (
	"errors"
	"strconv"

	"livelist/core/list"
	"livelist/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the catalog.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the catalog routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/catalog")
	group.Get("/", h.HandleSnapshot)
	group.Get("/children", h.HandleChildren)
	group.Post("/children", h.HandleAddChild)
	group.Delete("/children/:pos", h.HandleRemoveChild)
	group.Post("/children/:from/move/:to", h.HandleMoveChild)
	group.Put("/children", h.HandleReloadChildren)
	group.Post("/children/:id/items", h.HandleInsertItem)
	group.Delete("/children/:id/items/:pos", h.HandleRemoveItem)
	group.Get("/entries/:index", h.HandleEntry)
	group.Get("/stats", h.HandleStats)
	group.Post("/refresh", h.HandleRefresh)
}

// AddChildRequest is the body of POST /catalog/children.
// Exactly one of Items, Prefix and Table selects the kind of child;
// none creates an empty in-memory list.
type AddChildRequest struct {
	Position *int     `json:"position"`
	Items    []string `json:"items"`
	Prefix   string   `json:"prefix"`
	Table    string   `json:"table"`
}

// InsertItemRequest is the body of POST /catalog/children/:id/items.
type InsertItemRequest struct {
	Position *int   `json:"position"`
	Key      string `json:"key"`
}

// ReloadRequest is the body of PUT /catalog/children.
type ReloadRequest struct {
	Children [][]string `json:"children"`
}

// HandleSnapshot returns the composite list.
func (h *Handler) HandleSnapshot(c *fiber.Ctx) error {
	items, gen := h.service.Snapshot()
	if items == nil {
		items = []string{}
	}
	return c.JSON(fiber.Map{
		"generation": gen,
		"size":       len(items),
		"items":      items,
	})
}

// HandleChildren lists the member lists.
func (h *Handler) HandleChildren(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"children": h.service.Children()})
}

// HandleAddChild attaches a child list.
func (h *Handler) HandleAddChild(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req AddChildRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	pos := len(h.service.Children())
	if req.Position != nil {
		pos = *req.Position
	}

	var (
		child Child
		err   error
	)
	switch {
	case req.Prefix != "":
		child, err = h.service.AddPrefixChild(c.Context(), pos, req.Prefix)
	case req.Table != "":
		child, err = h.service.AddTableChild(c.Context(), pos, req.Table)
	default:
		child, err = h.service.AddChild(pos, req.Items)
	}
	if err != nil {
		l.Warn("Failed to attach child", zap.Int("position", pos), zap.Error(err))
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(child)
}

// HandleRemoveChild detaches the child at :pos.
func (h *Handler) HandleRemoveChild(c *fiber.Ctx) error {
	pos, err := c.ParamsInt("pos")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid position"})
	}
	if err := h.service.RemoveChild(pos); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleMoveChild moves the child at :from to :to.
func (h *Handler) HandleMoveChild(c *fiber.Ctx) error {
	from, err := c.ParamsInt("from")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid position"})
	}
	to, err := c.ParamsInt("to")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid position"})
	}
	if err := h.service.MoveChild(from, to); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleReloadChildren replaces every child.
func (h *Handler) HandleReloadChildren(c *fiber.Ctx) error {
	var req ReloadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	return c.JSON(fiber.Map{"children": h.service.ReloadChildren(req.Children)})
}

// HandleInsertItem inserts a key into the child :id.
func (h *Handler) HandleInsertItem(c *fiber.Ctx) error {
	var req InsertItemRequest
	if err := c.BodyParser(&req); err != nil || req.Key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	id := c.Params("id")
	pos := 0
	if req.Position != nil {
		pos = *req.Position
	} else if m, err := h.service.lookup(id); err == nil {
		pos = m.child().Size
	}
	if err := h.service.InsertItem(c.Context(), id, pos, req.Key); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleRemoveItem removes the element at :pos of the child :id.
func (h *Handler) HandleRemoveItem(c *fiber.Ctx) error {
	pos, err := c.ParamsInt("pos")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid position"})
	}
	if err := h.service.RemoveItem(c.Context(), c.Params("id"), pos); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleEntry materializes the composite element at :index.
func (h *Handler) HandleEntry(c *fiber.Ctx) error {
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid index"})
	}
	entry, err := h.service.Entry(index)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(entry)
}

// HandleStats returns the entry cache counters.
func (h *Handler) HandleStats(c *fiber.Ctx) error {
	_, gen := h.service.Snapshot()
	return c.JSON(fiber.Map{"generation": gen, "cache": h.service.Stats()})
}

// HandleRefresh relists prefix children and reloads table children.
func (h *Handler) HandleRefresh(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	if err := h.service.Refresh(c.Context()); err != nil {
		l.Error("Catalog refresh failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "refreshed", "children": h.service.Children()})
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, list.ErrOutOfRange):
		status = fiber.StatusUnprocessableEntity
	case errors.Is(err, ErrChildNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, ErrStorageUnavailable), errors.Is(err, ErrDatabaseUnavailable):
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
