package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes JSON events on a core NATS connection.
type NATSPublisher struct {
	nc     *nats.Conn
	logger *log.Logger
	mu     sync.Mutex
	closed bool
}

// ConnectNATS dials url and returns a publisher that reconnects in the background.
func ConnectNATS(url string, logger *log.Logger) (*NATSPublisher, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	nc, err := nats.Connect(url,
		nats.Name("storefront-api"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Printf("events: disconnected error=%v", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Printf("events: reconnected url=%s", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return NewNATSPublisher(nc, logger), nil
}

func NewNATSPublisher(nc *nats.Conn, logger *log.Logger) *NATSPublisher {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &NATSPublisher{nc: nc, logger: logger}
}

// Publish sends data to subject. NATS publish is fire-and-forget, so ctx is
// only checked before sending.
func (p *NATSPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}
	return p.nc.Publish(subject, data)
}

func (p *NATSPublisher) PublishJSON(ctx context.Context, subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := p.Publish(ctx, subject, data); err != nil {
		p.logger.Printf("events: publish subject=%s error=%v", subject, err)
		return err
	}
	return nil
}

// Ping reports whether the connection is currently usable.
func (p *NATSPublisher) Ping(context.Context) error {
	if status := p.nc.Status(); status != nats.CONNECTED {
		return fmt.Errorf("nats connection %s", status)
	}
	return nil
}

func (p *NATSPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
		return err
	}
	return nil
}
