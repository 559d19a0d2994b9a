package subscribers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"dropship-pricing-service/internal/events"
	"dropship-pricing-service/internal/metrics"
	"dropship-pricing-service/internal/pricing"
	"dropship-pricing-service/internal/repository"

	gosharedevents "github.com/Tesseract-Nexus/go-shared/events"
	"github.com/sirupsen/logrus"
)

// CategorySubscriber reacts to category deletions. Deletes never cascade, so it reports the
// children and rules left pointing at the removed category and drops stale cache entries.
type CategorySubscriber struct {
	subscriber *gosharedevents.Subscriber
	categories repository.CategoryRepositoryInterface
	rules      repository.RuleRepositoryInterface
	logger     *logrus.Entry
	cancel     context.CancelFunc
}

// NewCategorySubscriber creates a durable consumer on the category event stream
func NewCategorySubscriber(
	natsURL string,
	categories repository.CategoryRepositoryInterface,
	rules repository.RuleRepositoryInterface,
	logger *logrus.Logger,
) (*CategorySubscriber, error) {
	if natsURL == "" {
		natsURL = "nats://nats.nats.svc.cluster.local:4222"
	}

	config := gosharedevents.DefaultSubscriberConfig(natsURL, "dropship-pricing-category-consistency")
	config.Name = "dropship-pricing-category-subscriber"
	config.DeliverPolicy = "new"
	config.MaxDeliver = 3
	config.AckWait = 30 * time.Second

	subscriber, err := gosharedevents.NewSubscriber(config, logger)
	if err != nil {
		return nil, err
	}

	return &CategorySubscriber{
		subscriber: subscriber,
		categories: categories,
		rules:      rules,
		logger:     logger.WithField("component", "category-subscriber"),
	}, nil
}

// Start starts listening for category events
func (s *CategorySubscriber) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	subjects := []string{events.CategoryDeleted}

	s.logger.Info("Starting category event subscription...")

	err := s.subscriber.Subscribe(ctx, events.CategoryStream, subjects, s.handleCategoryMessage)
	if err != nil {
		return err
	}

	s.logger.WithField("subjects", subjects).Info("Category subscriber started successfully")
	return nil
}

func (s *CategorySubscriber) handleCategoryMessage(ctx context.Context, msg *gosharedevents.Message) error {
	var event events.CategoryEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		s.logger.WithError(err).Error("Failed to unmarshal category event")
		return nil // Don't retry for invalid data
	}
	return s.HandleCategoryEvent(ctx, &event)
}

// HandleCategoryEvent processes one decoded category event
func (s *CategorySubscriber) HandleCategoryEvent(ctx context.Context, event *events.CategoryEvent) error {
	s.logger.WithFields(logrus.Fields{
		"event_type":  event.EventType,
		"category_id": event.CategoryID,
	}).Info("Received category event")

	if event.EventType != events.CategoryDeleted {
		s.logger.WithField("event_type", event.EventType).Debug("Ignoring category event")
		return nil
	}

	id, err := strconv.ParseUint(event.CategoryID, 10, 64)
	if err != nil {
		s.logger.WithField("category_id", event.CategoryID).Warn("Ignoring category event with malformed id")
		return nil
	}

	warnings, err := s.danglingReferences(ctx, uint(id))
	if err != nil {
		s.logger.WithError(err).Error("Failed to check references to deleted category")
		return err
	}
	for _, w := range warnings {
		s.logger.WithFields(logrus.Fields{
			"kind":      w.Kind,
			"entity":    w.Entity,
			"id":        w.ID,
			"reference": w.Reference,
		}).Warn(w.Message)
	}
	metrics.RecordWarnings(warnings)

	s.categories.InvalidateCache(ctx)
	s.rules.InvalidateCache(ctx)
	return nil
}

// danglingReferences lists the children and category rules that still reference categoryID
func (s *CategorySubscriber) danglingReferences(ctx context.Context, categoryID uint) ([]pricing.ConsistencyWarning, error) {
	ref := fmt.Sprint(categoryID)
	var warnings []pricing.ConsistencyWarning

	children, err := s.categories.GetChildren(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	for _, c := range children {
		warnings = append(warnings, pricing.ConsistencyWarning{
			Kind:      pricing.WarningOrphanedCategory,
			Entity:    "category",
			ID:        fmt.Sprint(c.ID),
			Reference: ref,
			Message:   "parent category was deleted",
		})
	}

	rules, err := s.rules.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	for _, r := range rules {
		if !r.IsActive {
			continue
		}
		warnings = append(warnings, pricing.ConsistencyWarning{
			Kind:      pricing.WarningDanglingRule,
			Entity:    "pricing_rule",
			ID:        fmt.Sprint(r.ID),
			Reference: ref,
			Message:   "rule targets a deleted category and no longer matches any product",
		})
	}
	return warnings, nil
}

// Stop stops the category subscriber
func (s *CategorySubscriber) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.subscriber != nil {
		s.subscriber.Close()
	}
	s.logger.Info("Category subscriber stopped")
}
