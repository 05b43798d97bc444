package decks

import (
	"context"
	"errors"

	"deck-sync/core/logger"
	"deck-sync/feature/decks/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CollectionReader reads stored collections.
type CollectionReader interface {
	ListCollection(ctx context.Context, collection string) ([]store.Note, error)
	Marks(ctx context.Context) ([]store.SyncMark, error)
}

// StatusResponse is the body of GET /sync/status.
type StatusResponse struct {
	Running bool             `json:"running"`
	Last    *RoundReport     `json:"last,omitempty"`
	Marks   []store.SyncMark `json:"collections"`
}

// Handler handles HTTP requests for synchronization.
type Handler struct {
	coordinator *Coordinator
	notes       CollectionReader
	logger      *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(coordinator *Coordinator, notes CollectionReader, logger *zap.Logger) *Handler {
	return &Handler{coordinator: coordinator, notes: notes, logger: logger}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Post("/", h.HandleSync)
	group.Post("/cleanup", h.HandleSyncCleanup)
	group.Get("/status", h.HandleStatus)

	app.Get("/collections/:name", h.HandleCollection)
}

// HandleSync starts a manual sync round.
// @Summary Start Sync
// @Description Starts a sync round across all configured sources. Returns immediately.
// @Tags sync
// @Produce json
// @Success 202 {object} map[string]string "Round started"
// @Failure 409 {object} map[string]string "Sync already in progress"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync [post]
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	return h.start(c, func(ctx context.Context) (*Round, error) {
		return h.coordinator.StartManual(ctx)
	})
}

// HandleSyncCleanup starts a manual sync round that removes obsolete records.
// @Summary Start Sync With Cleanup
// @Description Starts a sync round and deletes records no source returned. Deletion only happens when confirm=true.
// @Tags sync
// @Produce json
// @Param confirm query boolean false "Confirm deletion of obsolete records"
// @Success 202 {object} map[string]string "Round started"
// @Failure 409 {object} map[string]string "Sync already in progress"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync/cleanup [post]
func (h *Handler) HandleSyncCleanup(c *fiber.Ctx) error {
	confirm := StaticConfirmer(c.QueryBool("confirm", false))
	return h.start(c, func(ctx context.Context) (*Round, error) {
		return h.coordinator.StartManualWithCleanup(ctx, confirm)
	})
}

func (h *Handler) start(c *fiber.Ctx, startFn func(ctx context.Context) (*Round, error)) error {
	l := logger.WithRayID(h.logger, c)

	round, err := startFn(c.UserContext())
	if err != nil {
		if errors.Is(err, ErrSyncInProgress) {
			l.Info("Sync request rejected, round in progress")
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		l.Error("Failed to start sync", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status":   "started",
		"round_id": round.ID,
	})
}

// HandleStatus reports whether a round is running and the last round's outcome.
// @Summary Sync Status
// @Description Returns the running flag, the last round report and the per-collection sync marks.
// @Tags sync
// @Produce json
// @Success 200 {object} StatusResponse "Status"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync/status [get]
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	marks, err := h.notes.Marks(c.UserContext())
	if err != nil {
		l.Error("Failed to read sync marks", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	resp := StatusResponse{Running: h.coordinator.Running(), Marks: marks}
	if last, ok := h.coordinator.LastReport(); ok {
		resp.Last = &last
	}
	return c.JSON(resp)
}

// HandleCollection lists the records of a collection.
// @Summary Get Collection
// @Description Lists the stored records of a collection.
// @Tags sync
// @Produce json
// @Param name path string true "Collection name"
// @Success 200 {object} map[string]interface{} "Collection records"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /collections/{name} [get]
func (h *Handler) HandleCollection(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)
	name := c.Params("name")

	notes, err := h.notes.ListCollection(c.UserContext(), name)
	if err != nil {
		l.Error("Failed to list collection", zap.String("collection", name), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"collection": name,
		"count":      len(notes),
		"records":    notes,
	})
}
