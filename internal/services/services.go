package services

import (
	"errors"
	"strings"

	"dropship-pricing-service/internal/metrics"
	"dropship-pricing-service/internal/pricing"

	"github.com/sirupsen/logrus"
)

// notFound converts a repository sentinel into a *pricing.NotFoundError
func notFound(err, sentinel error, entity string, id any) error {
	if errors.Is(err, sentinel) {
		return pricing.NewNotFoundError(entity, id)
	}
	return err
}

// reportWarnings logs each consistency warning and counts it
func reportWarnings(logger *logrus.Entry, warnings []pricing.ConsistencyWarning) {
	for _, w := range warnings {
		logger.WithFields(logrus.Fields{
			"kind":      w.Kind,
			"entity":    w.Entity,
			"id":        w.ID,
			"reference": w.Reference,
		}).Warn(w.Message)
	}
	metrics.RecordWarnings(warnings)
}

func requireText(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", pricing.NewValidationError(field, "is required")
	}
	return value, nil
}

func componentLogger(logger *logrus.Logger, component string) *logrus.Entry {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return logger.WithField("component", component)
}
