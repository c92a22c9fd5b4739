package amqp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"transferdash/internal/log"
	"transferdash/internal/refresh"
)

// Circuit breaker states
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures    = 5
	openTimeout    = 30 * time.Second
	publishTimeout = 5 * time.Second
	maxBackoff     = 30 * time.Second
)

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

type dialFunc func(url, exchange string) (publisher, io.Closer, error)

// Client publishes snapshot messages to a durable topic exchange. It
// reconnects lazily after connection errors and stops trying for a while
// after repeated failures.
type Client struct {
	url          string
	exchangeName string
	dial         dialFunc

	mu          sync.Mutex
	pub         publisher
	conn        io.Closer
	lastFailure time.Time

	state        int32
	failureCount int64
}

// NewClient dials the broker and declares the exchange.
func NewClient(url, exchangeName string) (*Client, error) {
	c := newClient(url, exchangeName, dialAMQP)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.connectLocked(); err != nil {
		return nil, err
	}
	return c, nil
}

func newClient(url, exchangeName string, dial dialFunc) *Client {
	return &Client{url: url, exchangeName: exchangeName, dial: dial}
}

func dialAMQP(url, exchangeName string) (publisher, io.Closer, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchangeName, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("declare exchange: %w", err)
	}
	return channel, conn, nil
}

func (c *Client) connectLocked() error {
	pub, conn, err := c.dial(c.url, c.exchangeName)
	if err != nil {
		return err
	}
	c.pub, c.conn = pub, conn
	return nil
}

func (c *Client) resetLocked() {
	if c.pub != nil {
		c.pub.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
	c.pub, c.conn = nil, nil
}

// Publish sends body with the given routing key. A connection error triggers
// one reconnect and retry.
func (c *Client) Publish(ctx context.Context, routingKey string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.isCircuitOpen() {
		return fmt.Errorf("publish %s: circuit breaker is open", routingKey)
	}

	err := c.publishOnce(ctx, routingKey, body)
	if err != nil && isConnectionError(err) {
		attempt := int(atomic.LoadInt64(&c.failureCount))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(exponentialBackoff(attempt) / 10):
		}
		c.mu.Lock()
		c.resetLocked()
		c.mu.Unlock()
		err = c.publishOnce(ctx, routingKey, body)
	}
	if err != nil {
		c.recordFailure()
		return fmt.Errorf("publish message: %w", err)
	}
	c.recordSuccess()
	return nil
}

func (c *Client) publishOnce(ctx context.Context, routingKey string, body []byte) error {
	c.mu.Lock()
	if c.pub == nil {
		if err := c.connectLocked(); err != nil {
			c.mu.Unlock()
			return err
		}
	}
	pub := c.pub
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return pub.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		routingKey,     // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

// PublishSnapshot publishes the summary of st.
func (c *Client) PublishSnapshot(ctx context.Context, st refresh.State) error {
	msg := NewSnapshotMessage(st)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := c.Publish(ctx, msg.RoutingKey(), body); err != nil {
		return err
	}
	slog.DebugContext(ctx, "Published snapshot message",
		log.FieldRoutingKey, msg.RoutingKey(),
		"exchange", c.exchangeName,
		log.FieldTotal, msg.Total)
	return nil
}

// Notifier adapts the client to a refresh subscriber. Failures are logged
// and never reach the refresh loop.
func (c *Client) Notifier(logger *log.Logger) refresh.Subscriber {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentAMQP)
	return func(ctx context.Context, st refresh.State) {
		if err := c.PublishSnapshot(ctx, st); err != nil {
			logger.WarnContext(ctx, "Snapshot notification failed",
				log.FieldStatus, string(st.Status),
				log.FieldError, err)
		}
	}
}

func (c *Client) isCircuitOpen() bool {
	switch atomic.LoadInt32(&c.state) {
	case StateOpen:
		c.mu.Lock()
		last := c.lastFailure
		c.mu.Unlock()
		if time.Since(last) > openTimeout {
			atomic.StoreInt32(&c.state, StateHalfOpen)
			return false
		}
		return true
	default:
		return false
	}
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func (c *Client) recordFailure() {
	n := atomic.AddInt64(&c.failureCount, 1)
	c.mu.Lock()
	c.lastFailure = time.Now()
	c.mu.Unlock()
	if n >= maxFailures || atomic.LoadInt32(&c.state) == StateHalfOpen {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

func exponentialBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := time.Second
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection", "eof", "broken pipe", "closed"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var err error
	if c.pub != nil {
		c.pub.Close()
	}
	if c.conn != nil {
		err = c.conn.Close()
	}
	c.pub, c.conn = nil, nil
	return err
}
