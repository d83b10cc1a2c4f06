// Package broker publishes and consumes delayed messages over RabbitMQ's
// x-delayed-message exchange.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/eventdesk/eventdesk/api/internal/config"
	"github.com/eventdesk/eventdesk/api/internal/tasks"
)

// Handler processes one message body. A failed message is published again
// with a growing delay and dead-lettered once its retries are spent.
type Handler func(ctx context.Context, body []byte) error

const (
	headerRetryCount = "x-retry-count"
	maxRetryDelay    = 10 * time.Minute
)

// Client holds a connection with one channel bound to a delayed exchange and queue
type Client struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	queue      string
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger
}

// New connects to RabbitMQ and declares the delayed exchange and its queue
func New(cfg config.RabbitMQConfig, logger *zap.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	c := &Client{
		conn:       conn,
		channel:    ch,
		exchange:   cfg.Exchange,
		queue:      cfg.Queue,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     logger,
	}

	if err := c.declare(); err != nil {
		c.Close()
		return nil, err
	}

	logger.Info("RabbitMQ initialized",
		zap.String("exchange", cfg.Exchange),
		zap.String("queue", cfg.Queue),
	)

	return c, nil
}

func (c *Client) declare() error {
	args := amqp.Table{"x-delayed-type": "direct"}
	if err := c.channel.ExchangeDeclare(c.exchange, "x-delayed-message", true, false, false, false, args); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	if _, err := c.channel.QueueDeclare(c.deadLetterQueue(), true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare dead letter queue: %w", err)
	}

	queueArgs := amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": c.deadLetterQueue(),
	}
	if _, err := c.channel.QueueDeclare(c.queue, true, false, false, false, queueArgs); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := c.channel.QueueBind(c.queue, "", c.exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	return nil
}

func (c *Client) deadLetterQueue() string {
	return c.queue + ".dead"
}

// Close closes the channel and the connection
func (c *Client) Close() {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// Publish sends body to the exchange, delivered to the queue after delay
func (c *Client) Publish(ctx context.Context, body []byte, delay time.Duration) error {
	return c.publish(ctx, body, delay, amqp.Table{})
}

func (c *Client) publish(ctx context.Context, body []byte, delay time.Duration, headers amqp.Table) error {
	if delay > 0 {
		headers["x-delay"] = delayMillis(delay)
	}

	err := c.channel.PublishWithContext(ctx, c.exchange, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
		Timestamp:    time.Now(),
		Headers:      headers,
	})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.logger.Debug("message published",
		zap.String("exchange", c.exchange),
		zap.Duration("delay", delay),
	)
	return nil
}

// ScheduleExpiry publishes a registration expiry to be delivered at at
func (c *Client) ScheduleExpiry(ctx context.Context, payload *tasks.RegistrationExpirePayload, at time.Time) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal expiry message: %w", err)
	}
	return c.Publish(ctx, body, time.Until(at))
}

// Consume delivers messages from the queue to handler until ctx is done or
// the channel closes.
func (c *Client) Consume(ctx context.Context, handler Handler) error {
	msgs, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	c.logger.Info("consuming", zap.String("queue", c.queue))

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			if err := handler(ctx, d.Body); err != nil {
				c.retry(ctx, d, err)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// retry publishes a failed delivery again after a backoff, or rejects it to
// the dead letter queue when its retries are spent or it cannot be published
func (c *Client) retry(ctx context.Context, d amqp.Delivery, cause error) {
	attempt, delay, dead := c.nextRetry(d.Headers)
	if dead {
		c.logger.Error("message dead-lettered",
			zap.Int("attempts", attempt-1),
			zap.Error(cause),
		)
		_ = d.Nack(false, false)
		return
	}

	c.logger.Warn("failed to process message, retrying",
		zap.Int("attempt", attempt),
		zap.Duration("delay", delay),
		zap.Error(cause),
	)
	if err := c.publish(ctx, d.Body, delay, amqp.Table{headerRetryCount: int32(attempt)}); err != nil {
		c.logger.Error("failed to republish message", zap.Error(err))
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

// nextRetry returns the number of the next attempt, its delay, and whether
// the message should be dead-lettered instead
func (c *Client) nextRetry(headers amqp.Table) (int, time.Duration, bool) {
	attempt := retryCount(headers) + 1
	if attempt > c.maxRetries {
		return attempt, 0, true
	}

	delay := c.retryDelay
	for i := 1; i < attempt && delay < maxRetryDelay; i++ {
		delay *= 2
	}
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return attempt, delay, false
}

func retryCount(headers amqp.Table) int {
	switch v := headers[headerRetryCount].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

// delayMillis converts delay to the x-delay header value, capped at the
// plugin's 32-bit limit
func delayMillis(delay time.Duration) int32 {
	ms := delay.Milliseconds()
	if ms > int64(^uint32(0)>>1) {
		ms = int64(^uint32(0) >> 1)
	}
	return int32(ms)
}
