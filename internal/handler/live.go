package handler

import (
	"bufio"
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/eventdesk/eventdesk/api/internal/service"
)

const liveHeartbeat = 30 * time.Second

// LiveFeed is the registration change stream of an event
type LiveFeed interface {
	Subscribe(ctx context.Context, eventID uuid.UUID) *service.Subscriber
	Unsubscribe(id string)
	GetSubscriberCount(eventID uuid.UUID) int
}

// LiveHandler handles Server-Sent Events endpoints
type LiveHandler struct {
	feed   LiveFeed
	logger *zap.Logger
}

// NewLiveHandler creates a new live handler
func NewLiveHandler(feed LiveFeed, logger *zap.Logger) *LiveHandler {
	return &LiveHandler{
		feed:   feed,
		logger: logger,
	}
}

// Stream handles GET /api/events/:eventId/live
func (h *LiveHandler) Stream(c *fiber.Ctx) error {
	event := currentEvent(c)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set(fiber.HeaderTransferEncoding, "chunked")
	c.Set("X-Accel-Buffering", "no")

	// The subscription outlives the handler, it ends when the client goes away
	ctx, cancel := context.WithCancel(context.Background())
	sub := h.feed.Subscribe(ctx, event.ID)

	h.logger.Info("live client connected",
		zap.String("event_id", event.ID.String()),
		zap.String("subscriber_id", sub.ID),
	)

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer func() {
			cancel()
			h.feed.Unsubscribe(sub.ID)
			h.logger.Info("live client disconnected", zap.String("subscriber_id", sub.ID))
		}()

		fmt.Fprintf(w, "event: connected\ndata: {\"subscriberId\":%q}\n\n", sub.ID)
		if err := w.Flush(); err != nil {
			return
		}

		heartbeat := time.NewTicker(liveHeartbeat)
		defer heartbeat.Stop()

		for {
			select {
			case change, ok := <-sub.Channel:
				if !ok {
					return
				}
				frame, err := service.FormatSSE(change)
				if err != nil {
					h.logger.Error("failed to format live change", zap.Error(err))
					continue
				}
				if _, err := w.Write(frame); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}

			case <-heartbeat.C:
				fmt.Fprint(w, ": heartbeat\n\n")
				if err := w.Flush(); err != nil {
					return
				}

			case <-sub.Done:
				return
			}
		}
	}))

	return nil
}

// Subscribers handles GET /api/events/:eventId/live/subscribers
func (h *LiveHandler) Subscribers(c *fiber.Ctx) error {
	event := currentEvent(c)
	return c.JSON(fiber.Map{
		"count": h.feed.GetSubscriberCount(event.ID),
	})
}
