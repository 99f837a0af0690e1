package events

import (
	"context"
	"encoding/json"

	"verdant-backend/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Event types carried on the off-chain indexing feed.
const (
	TypeListingCreated      = "listing-created"
	TypeListingSold         = "listing-sold"
	TypeListingCanceled     = "listing-canceled"
	TypeConversionCompleted = "conversion-completed"
	TypeCreditsIssued       = "credits-issued"
)

// DefaultChannel is the Redis pub/sub channel indexers subscribe to.
const DefaultChannel = "verdant:events"

// Recorder persists market events and, after commit, publishes them to Redis
// for off-chain indexers. Events are written in the same transaction as the
// mutation they describe; publishing is best-effort and never fails the
// operation.
type Recorder struct {
	Rdb     *redis.Client
	Channel string
}

// RecordTx writes the event row inside tx and returns it for publishing after
// commit.
func (r *Recorder) RecordTx(tx *gorm.DB, eventType, actor string, payload map[string]interface{}) (*domain.MarketEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	event := &domain.MarketEvent{
		Type:    eventType,
		Actor:   actor,
		Payload: datatypes.JSON(data),
	}
	if err := tx.Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

// Publish pushes a committed event to the Redis channel and logs it. A nil
// Redis client (tests, single-node deploys) logs only.
func (r *Recorder) Publish(ctx context.Context, event *domain.MarketEvent) {
	if event == nil {
		return
	}
	log.Info().
		Str("event_id", event.EventID.String()).
		Str("type", event.Type).
		Str("actor", event.Actor).
		RawJSON("payload", event.Payload).
		Msg("Market event")
	if r == nil || r.Rdb == nil {
		return
	}
	body, err := json.Marshal(event)
	if err != nil {
		return
	}
	channel := r.Channel
	if channel == "" {
		channel = DefaultChannel
	}
	if err := r.Rdb.Publish(ctx, channel, body).Err(); err != nil {
		log.Warn().Err(err).Str("event_id", event.EventID.String()).Msg("Event publish failed")
	}
}

// Service reads the persisted event feed.
type Service struct {
	DB *gorm.DB
}

// List returns the newest events first, capped at limit (default 100).
func (s *Service) List(ctx context.Context, eventType string, limit int) ([]domain.MarketEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := s.DB.WithContext(ctx).Order(`"createdAt" DESC`).Limit(limit)
	if eventType != "" {
		q = q.Where("type = ?", eventType)
	}
	var out []domain.MarketEvent
	err := q.Find(&out).Error
	return out, err
}
