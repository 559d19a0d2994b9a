package events

import (
	"context"
	"fmt"
	"time"

	"github.com/Tesseract-Nexus/go-shared/events"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	CategoryStream = "CATEGORY_EVENTS"
	PricingStream  = "PRICING_EVENTS"
)

// Category event types
const (
	CategoryCreated = "category.created"
	CategoryUpdated = "category.updated"
	CategoryDeleted = "category.deleted"
)

// Pricing event types
const (
	PricingRuleCreated     = "pricing.rule.created"
	PricingRuleUpdated     = "pricing.rule.updated"
	PricingRuleDeleted     = "pricing.rule.deleted"
	PricingSettingsUpdated = "pricing.settings.updated"
	SellerOverrideChanged  = "pricing.seller.override.changed"
)

// Actor identifies who triggered a change
type Actor struct {
	ID        string `json:"actorId,omitempty"`
	Name      string `json:"actorName,omitempty"`
	Email     string `json:"actorEmail,omitempty"`
	ClientIP  string `json:"clientIp,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
}

// CategoryEvent represents a category-related event
type CategoryEvent struct {
	events.BaseEvent
	CategoryID      string           `json:"categoryId"`
	CategoryName    string           `json:"categoryName"`
	ParentID        string           `json:"parentId,omitempty"`
	DefaultMargin   *decimal.Decimal `json:"defaultMargin,omitempty"`
	ShippingFee     *decimal.Decimal `json:"shippingFee,omitempty"`
	InheritsPricing bool             `json:"inheritsPricing"`
	Status          string           `json:"status,omitempty"`
	Actor
}

func (e *CategoryEvent) GetSubject() string {
	return e.EventType
}

func (e *CategoryEvent) GetStream() string {
	return CategoryStream
}

// PricingEvent represents a change to rules, settings or seller overrides.
// EntityID is the rule id, "settings", or "<sellerId>:<productId>" for overrides.
type PricingEvent struct {
	events.BaseEvent
	Entity   string                 `json:"entity"`
	EntityID string                 `json:"entityId"`
	SellerID string                 `json:"sellerId,omitempty"`
	Changes  map[string]interface{} `json:"changes,omitempty"`
	Actor
}

func (e *PricingEvent) GetSubject() string {
	return e.EventType
}

func (e *PricingEvent) GetStream() string {
	return PricingStream
}

// Publisher wraps the shared events publisher. A nil *Publisher drops every event,
// so callers never need to check whether NATS is configured.
type Publisher struct {
	publisher *events.Publisher
	logger    *logrus.Entry
}

// NewPublisher connects to natsURL and ensures both streams exist
func NewPublisher(natsURL string, logger *logrus.Logger) (*Publisher, error) {
	if natsURL == "" {
		natsURL = "nats://nats.nats.svc.cluster.local:4222"
	}

	config := events.DefaultPublisherConfig(natsURL)
	config.Name = "dropship-pricing-service"

	publisher, err := events.NewPublisher(config, logger)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := publisher.EnsureStream(ctx, CategoryStream, []string{"category.>"}); err != nil {
		logger.WithError(err).Warn("Failed to ensure CATEGORY_EVENTS stream")
	}
	if err := publisher.EnsureStream(ctx, PricingStream, []string{"pricing.>"}); err != nil {
		logger.WithError(err).Warn("Failed to ensure PRICING_EVENTS stream")
	}

	return &Publisher{
		publisher: publisher,
		logger:    logger.WithField("component", "events.publisher"),
	}, nil
}

func baseEvent(eventType, sourceID string) events.BaseEvent {
	return events.BaseEvent{
		EventType: eventType,
		TenantID:  "marketplace",
		SourceID:  sourceID,
		Timestamp: time.Now().UTC(),
	}
}

// CategoryPayload carries the category fields published with an event
type CategoryPayload struct {
	ID              uint
	Name            string
	ParentID        *uint
	DefaultMargin   decimal.Decimal
	ShippingFee     *decimal.Decimal
	InheritsPricing bool
	IsActive        bool
}

// PublishCategory publishes one of the category.* events
func (p *Publisher) PublishCategory(ctx context.Context, eventType string, c CategoryPayload, actor Actor) error {
	if p == nil {
		return nil
	}
	id := fmt.Sprint(c.ID)
	event := &CategoryEvent{
		BaseEvent:       baseEvent(eventType, id),
		CategoryID:      id,
		CategoryName:    c.Name,
		InheritsPricing: c.InheritsPricing,
		Actor:           actor,
	}
	if c.ParentID != nil {
		event.ParentID = fmt.Sprint(*c.ParentID)
	}
	switch eventType {
	case CategoryDeleted:
		event.Status = "DELETED"
	default:
		margin := c.DefaultMargin
		event.DefaultMargin = &margin
		event.ShippingFee = c.ShippingFee
		event.Status = "INACTIVE"
		if c.IsActive {
			event.Status = "ACTIVE"
		}
	}
	return p.report(p.publisher.Publish(ctx, event), eventType)
}

// PublishPricing publishes one of the pricing.* events
func (p *Publisher) PublishPricing(ctx context.Context, eventType, entity, entityID, sellerID string, changes map[string]interface{}, actor Actor) error {
	if p == nil {
		return nil
	}
	event := &PricingEvent{
		BaseEvent: baseEvent(eventType, entityID),
		Entity:    entity,
		EntityID:  entityID,
		SellerID:  sellerID,
		Changes:   changes,
		Actor:     actor,
	}
	return p.report(p.publisher.Publish(ctx, event), eventType)
}

func (p *Publisher) report(err error, eventType string) error {
	if err != nil {
		p.logger.WithError(err).WithField("event_type", eventType).Warn("Failed to publish event")
	}
	return err
}

// IsConnected returns true if connected to NATS
func (p *Publisher) IsConnected() bool {
	return p != nil && p.publisher.IsConnected()
}

// Close closes the publisher connection
func (p *Publisher) Close() {
	if p != nil {
		p.publisher.Close()
	}
}
