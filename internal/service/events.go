package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/leaps-program/leaps-api/internal/models"
)

// PointsCreditedEvent is published after a ledger credit commits. Consumers
// (leaderboard refreshers, downstream integrations) treat it as advisory; the
// ledger remains the source of truth.
type PointsCreditedEvent struct {
	UserID       uint                `json:"user_id"`
	ActivityCode models.ActivityCode `json:"activity_code"`
	Delta        int                 `json:"delta"`
	Source       models.PointsSource `json:"source"`
	CreditedAt   time.Time           `json:"credited_at"`
}

// EventPublisher emits engine events to interested consumers. Publishing is
// best-effort and never fails the originating operation.
type EventPublisher interface {
	PointsCredited(ctx context.Context, event PointsCreditedEvent)
}

type natsPublisher struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewNATSPublisher builds a publisher over an optional NATS connection. A nil
// connection yields a publisher that drops events.
func NewNATSPublisher(conn *nats.Conn, subject string, logger zerolog.Logger) EventPublisher {
	if subject == "" {
		subject = "leaps.points.credited"
	}
	return &natsPublisher{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "event_publisher").Logger(),
	}
}

func (p *natsPublisher) PointsCredited(ctx context.Context, event PointsCreditedEvent) {
	if p.conn == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to encode points credited event")
		return
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		p.logger.Warn().Err(err).Str("subject", p.subject).Msg("failed to publish points credited event")
	}
}
