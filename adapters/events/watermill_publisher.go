package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vitalis-labs/healthmarket/core"
	"github.com/vitalis-labs/healthmarket/ports"
)

const (
	TopicRecordRegistered = "healthmarket.record.registered"
	TopicPriceUpdated     = "healthmarket.record.price_updated"
	TopicAccessGranted    = "healthmarket.record.access_granted"
)

// RecordRegisteredEvent announces a new registry entry.
type RecordRegisteredEvent struct {
	ID       uint64    `json:"id"`
	DataHash string    `json:"data_hash"`
	Owner    string    `json:"owner"`
	At       time.Time `json:"at"`
}

// PriceUpdatedEvent announces a price change.
type PriceUpdatedEvent struct {
	ID    uint64          `json:"id"`
	Price decimal.Decimal `json:"price"`
	At    time.Time       `json:"at"`
}

// AccessGrantedEvent announces a new access grant.
type AccessGrantedEvent struct {
	DataHash string    `json:"data_hash"`
	Grantee  string    `json:"grantee"`
	At       time.Time `json:"at"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill.
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher.
func NewWatermillPublisher(publisher message.Publisher) *WatermillPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishRecordRegistered publishes a registration event.
func (p *WatermillPublisher) PublishRecordRegistered(ctx context.Context, id uint64, dataHash string, owner core.Identity) error {
	return p.publish(TopicRecordRegistered, RecordRegisteredEvent{
		ID:       id,
		DataHash: dataHash,
		Owner:    owner.String(),
		At:       time.Now(),
	})
}

// PublishPriceUpdated publishes a price change event.
func (p *WatermillPublisher) PublishPriceUpdated(ctx context.Context, id uint64, price decimal.Decimal) error {
	return p.publish(TopicPriceUpdated, PriceUpdatedEvent{
		ID:    id,
		Price: price,
		At:    time.Now(),
	})
}

// PublishAccessGranted publishes a grant event.
func (p *WatermillPublisher) PublishAccessGranted(ctx context.Context, dataHash string, grantee core.Identity) error {
	return p.publish(TopicAccessGranted, AccessGrantedEvent{
		DataHash: dataHash,
		Grantee:  grantee.String(),
		At:       time.Now(),
	})
}

func (p *WatermillPublisher) publish(topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

var _ ports.EventPublisher = (*WatermillPublisher)(nil)
