// Package events announces newly recorded invite grants.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"invitegate/internal/ledger"
)

const TypeGranted = "invite.granted"

// Granted is the payload of an invite.granted event. The invite code itself
// is never published.
type Granted struct {
	Type       string    `json:"type"`
	GrantID    string    `json:"grant_id"`
	Domain     string    `json:"domain"`
	Owner      string    `json:"owner"`
	ChainID    int64     `json:"chain_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewGranted(g ledger.InviteGrant) Granted {
	return Granted{
		Type:       TypeGranted,
		GrantID:    g.ID.String(),
		Domain:     g.Domain.String(),
		Owner:      g.Owner.String(),
		ChainID:    int64(g.ChainID),
		OccurredAt: g.CreatedAt.UTC(),
	}
}

// Producer is the transport a KafkaPublisher writes to.
type Producer interface {
	Publish(ctx context.Context, key, value []byte) error
}

// KafkaPublisher writes grant events keyed by domain, so events for one name
// stay ordered within a partition.
type KafkaPublisher struct {
	producer Producer
}

func NewKafkaPublisher(producer Producer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

func (p *KafkaPublisher) PublishGranted(ctx context.Context, g ledger.InviteGrant) error {
	payload, err := json.Marshal(NewGranted(g))
	if err != nil {
		return fmt.Errorf("encode grant event: %w", err)
	}
	if err := p.producer.Publish(ctx, []byte(g.Domain.String()), payload); err != nil {
		return fmt.Errorf("publish grant event: %w", err)
	}
	return nil
}

// LogPublisher writes grant events to the log. Used when no brokers are
// configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) PublishGranted(ctx context.Context, g ledger.InviteGrant) error {
	ev := NewGranted(g)
	p.logger.InfoContext(ctx, "grant event",
		"type", ev.Type,
		"grant_id", ev.GrantID,
		"domain", ev.Domain,
		"owner", ev.Owner,
		"chain_id", ev.ChainID,
	)
	return nil
}
