// Package services holds the relationship state machine and the exchange
// engine. Every state change runs in one gorm transaction and relies on
// conditional writes in the repositories rather than in-process locks.
package services

import (
	"context"
	"strings"
	"time"

	"github.com/anonto42/gamehub/backend/internal/apperrors"
	"github.com/anonto42/gamehub/backend/internal/models"
	"github.com/anonto42/gamehub/backend/internal/repositories"
	"github.com/sirupsen/logrus"
)

const eventRecordTimeout = 5 * time.Second

// outcomeOf turns an operation result into a metrics label.
func outcomeOf(err error) string {
	if err == nil {
		return "ok"
	}
	if kind := apperrors.KindOf(err); kind != "" {
		return strings.ToLower(string(kind))
	}
	return "error"
}

// recordEvent appends to the exchange log after the relational commit.
// The log is informational, so failures are only logged.
func recordEvent(ctx context.Context, log logrus.FieldLogger, events repositories.ExchangeEventRepository, event *models.ExchangeEvent) {
	if events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventRecordTimeout)
	defer cancel()

	if err := events.Record(ctx, event); err != nil {
		log.WithFields(logrus.Fields{
			"reference": event.Reference,
			"kind":      event.Kind,
			"offer_id":  event.OfferID,
		}).WithError(err).Warn("failed to record exchange event")
	}
}
