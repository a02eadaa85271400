package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/ns-adiraghavan/adas-compassiq/backend/internal/insights"
	"github.com/sirupsen/logrus"
)

// SubjectInsightsGenerated carries one message per freshly generated insight.
const SubjectInsightsGenerated = "insights.generated"

// Publisher announces insight lifecycle events over NATS.
type Publisher struct {
	conn   *nats.Conn
	logger *logrus.Logger
}

// Connect dials NATS and keeps reconnecting for the life of the process.
func Connect(url string, logger *logrus.Logger) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("compassiq-insights"),
		nats.Timeout(10*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.WithError(err).Warn("Disconnected from NATS")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.WithField("url", nc.ConnectedUrl()).Info("Reconnected to NATS")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	logger.WithField("url", url).Info("Connected to NATS")
	return NewPublisher(conn, logger), nil
}

func NewPublisher(conn *nats.Conn, logger *logrus.Logger) *Publisher {
	return &Publisher{conn: conn, logger: logger}
}

// InsightsGenerated implements insights.Notifier.
func (p *Publisher) InsightsGenerated(ctx context.Context, event insights.GeneratedEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.conn.Publish(SubjectInsightsGenerated, data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", SubjectInsightsGenerated, err)
	}

	p.logger.WithFields(logrus.Fields{
		"event_id":  event.ID,
		"cache_key": event.CacheKey,
	}).Debug("Published insights event")
	return nil
}

// Ping reports whether the connection is usable.
func (p *Publisher) Ping(ctx context.Context) error {
	if !p.conn.IsConnected() {
		return fmt.Errorf("nats connection is %s", p.conn.Status())
	}
	return nil
}

// Close flushes pending messages before closing.
func (p *Publisher) Close() error {
	return p.conn.Drain()
}
