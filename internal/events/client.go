package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Client publishes engine events for downstream consumers (reporting and
// visualization layers). Payloads are JSON.
type Client interface {
	Publish(ctx context.Context, subject string, event interface{}) error
	Close()
}

// NATSClient publishes through a JetStream stream so consumers that attach
// late can still replay recent runs.
type NATSClient struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	logger *slog.Logger
}

func NewNATSClient(ctx context.Context, url string, logger *slog.Logger) (*NATSClient, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	c := &NATSClient{conn: nc, js: js, logger: logger}

	maxAge, _ := time.ParseDuration(StreamMaxAge)
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     StreamName,
		Subjects: []string{"poverty.run.>", "poverty.cell.>", "poverty.survey.>"},
		MaxAge:   maxAge,
	})
	if err != nil {
		logger.Warn("failed to ensure event stream", "error", err)
	}
	return c, nil
}

func (c *NATSClient) Publish(ctx context.Context, subject string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err := c.js.Publish(ctx, subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	c.logger.Debug("event published", "subject", subject)
	return nil
}

func (c *NATSClient) Close() {
	c.conn.Close()
}
