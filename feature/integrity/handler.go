package integrity

import (
	"deck-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/structure", h.HandleStructureCheck)
	group.Get("/archives", h.HandleArchiveCheck)
	group.Get("/media", h.HandleMediaCheck)
	group.Get("/server", h.HandleServerCheck)
}

// HandleIntegrityCheck triggers all integrity checks.
// @Summary Run All Integrity Checks
// @Description Performs all read-only integrity checks (Structure, Archives, Media, Server).
// @Tags integrity
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Combined Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity [get]
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	ctx := c.Context()
	report := make(map[string]interface{})

	if missing, err := h.service.CheckStructure(ctx); err != nil {
		report["structure"] = fiber.Map{"status": "error", "error": err.Error()}
	} else {
		report["structure"] = fiber.Map{"status": "ok", "missing": missing}
	}

	if archives, err := h.service.CheckArchives(ctx); err != nil {
		report["archives"] = fiber.Map{"status": "error", "error": err.Error()}
	} else {
		report["archives"] = archives
	}

	if orphans, err := h.service.CheckMedia(ctx); err != nil {
		report["media"] = fiber.Map{"status": "error", "error": err.Error()}
	} else {
		report["media"] = fiber.Map{"status": "ok", "orphans": orphans}
	}

	if srvReport, err := h.service.CheckServer(); err != nil {
		report["server"] = fiber.Map{"status": "error", "error": err.Error()}
	} else {
		report["server"] = srvReport
	}

	return c.JSON(report)
}

// HandleStructureCheck checks and optionally fixes structure.
// @Summary Check Structure
// @Description Checks that the bucket and its export and media folders exist. Optionally creates what is missing.
// @Tags integrity
// @Accept json
// @Produce json
// @Param fix query boolean false "Fix missing folders"
// @Success 200 {object} map[string]interface{} "Structure Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/structure [get]
func (h *Handler) HandleStructureCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	if c.QueryBool("fix") {
		l.Info("Attempting to fix structure")
		fixed, err := h.service.FixStructure(c.Context())
		if err != nil {
			l.Error("Structure fix failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "Failed to fix structure",
				"details": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"status": "fixed",
			"fixed":  fixed,
		})
	}

	missing, err := h.service.CheckStructure(c.Context())
	if err != nil {
		l.Error("Structure check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if len(missing) > 0 {
		l.Warn("Missing folders detected", zap.Strings("missing", missing))
	}

	return c.JSON(fiber.Map{
		"status":  "checked",
		"missing": missing,
	})
}

// HandleArchiveCheck checks that every configured source has an export archive.
// @Summary Check Export Archives
// @Description Verifies that an export archive exists in the bucket for every configured source.
// @Tags integrity
// @Accept json
// @Produce json
// @Success 200 {object} checks.ArchiveReport "Archive Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/archives [get]
func (h *Handler) HandleArchiveCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.CheckArchives(c.Context())
	if err != nil {
		l.Error("Archive check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if len(report.Missing) > 0 {
		l.Warn("Missing export archives", zap.Strings("sources", report.Missing))
	}

	return c.JSON(report)
}

// HandleMediaCheck finds and optionally removes orphaned media.
// @Summary Check Media
// @Description Lists media objects that no stored note references. Optionally removes them.
// @Tags integrity
// @Accept json
// @Produce json
// @Param fix query boolean false "Remove orphaned media"
// @Success 200 {object} map[string]interface{} "Media Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/media [get]
func (h *Handler) HandleMediaCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	if c.QueryBool("fix") {
		removed, err := h.service.FixMedia(c.Context())
		if err != nil {
			l.Error("Media cleanup failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{
			"status":  "fixed",
			"removed": removed,
		})
	}

	orphans, err := h.service.CheckMedia(c.Context())
	if err != nil {
		l.Error("Media check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"status":  "checked",
		"orphans": orphans,
	})
}

// HandleServerCheck checks server schema integrity.
// @Summary Check Server Schema
// @Description Checks if the record database schema matches the expected models.
// @Tags integrity
// @Accept json
// @Produce json
// @Success 200 {object} checks.ServerReport "Server Check Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/server [get]
func (h *Handler) HandleServerCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Starting server schema check")

	report, err := h.service.CheckServer()
	if err != nil {
		l.Error("Server schema check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(report)
}
