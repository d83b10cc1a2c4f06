package handler

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/eventdesk/eventdesk/api/internal/domain"
	"github.com/eventdesk/eventdesk/api/internal/middleware"
)

// ExportService produces registration exports
type ExportService interface {
	WriteCSV(ctx context.Context, eventID uuid.UUID, w io.Writer) (int, error)
	Create(ctx context.Context, event *domain.Event, actor domain.Actor) (*domain.Export, error)
	Get(ctx context.Context, eventID, id uuid.UUID) (*domain.Export, error)
}

// ExportsHandler handles CSV downloads and asynchronous exports
type ExportsHandler struct {
	exports ExportService
	logger  *zap.Logger
}

// NewExportsHandler creates a new exports handler
func NewExportsHandler(exports ExportService, logger *zap.Logger) *ExportsHandler {
	return &ExportsHandler{
		exports: exports,
		logger:  logger,
	}
}

// DownloadCSV handles GET /api/events/:eventId/registrations/export.csv.
// Rows are streamed as they are read, so a failure midway truncates the file.
func (h *ExportsHandler) DownloadCSV(c *fiber.Ctx) error {
	event := currentEvent(c)

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="registrations-%s.csv"`, event.Slug))
	c.Set(fiber.HeaderCacheControl, "no-store")

	// The request context is recycled once the handler returns
	ctx := context.WithoutCancel(c.UserContext())
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		rows, err := h.exports.WriteCSV(ctx, event.ID, w)
		if err != nil {
			h.logger.Error("csv export failed",
				zap.String("event_id", event.ID.String()),
				zap.Int("rows", rows),
				zap.Error(err),
			)
		}
		_ = w.Flush()
	}))
	return nil
}

// Create handles POST /api/events/:eventId/exports
func (h *ExportsHandler) Create(c *fiber.Ctx) error {
	export, err := h.exports.Create(c.Context(), currentEvent(c), middleware.GetActor(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	h.logger.Info("export queued",
		zap.String("export_id", export.ID.String()),
		zap.String("event_id", export.EventID.String()),
	)
	return c.Status(fiber.StatusAccepted).JSON(export)
}

// Get handles GET /api/events/:eventId/exports/:exportId
func (h *ExportsHandler) Get(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "exportId", "export")
	if err != nil {
		return handleServiceError(c, err)
	}

	export, err := h.exports.Get(c.Context(), currentEvent(c).ID, id)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(export)
}
