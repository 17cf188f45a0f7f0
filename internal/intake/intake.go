// Package intake gates inbound alert deliveries: it validates them, filters
// resolved notifications, deduplicates firing alerts by fingerprint within a
// TTL window, and forwards each unique alert to the external investigator
// exactly once per window.
package intake

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/common/model"

	"github.com/clusterscope/evidence-core/internal/models"
	"github.com/clusterscope/evidence-core/internal/monitoring"
	"github.com/clusterscope/evidence-core/pkg/cache"
	"github.com/clusterscope/evidence-core/pkg/logger"
)

// ErrInvalidEvent marks a structurally malformed alert. Such events are
// rejected synchronously and never forwarded.
var ErrInvalidEvent = errors.New("invalid alert event")

const dedupKeyPrefix = "dedup:alert:"

// Dispatcher forwards an accepted alert to the external investigator and
// returns the assigned investigation ID.
type Dispatcher interface {
	Dispatch(ctx context.Context, event *models.AlertEvent, instruction string) (string, error)
}

// Intake is the alert deduplication-and-dispatch gate. Submit may be called
// from any number of goroutines; the dedup cache's atomic check-and-insert
// is the only shared state.
type Intake struct {
	cache      cache.DedupCache
	dispatcher Dispatcher
	ttl        time.Duration
	logger     logger.Logger
}

// Result is the outcome of one submission. InvestigationID is set only when
// the alert was accepted and dispatched.
type Result struct {
	Outcome         models.SubmitOutcome
	InvestigationID string
}

func New(dedupCache cache.DedupCache, dispatcher Dispatcher, ttl time.Duration, log logger.Logger) *Intake {
	return &Intake{
		cache:      dedupCache,
		dispatcher: dispatcher,
		ttl:        ttl,
		logger:     log,
	}
}

// Submit processes one alert delivery.
//
// Resolved notifications are suppressed without touching the cache. For
// firing alerts the dedup entry is committed before dispatch, so concurrent
// redeliveries within the TTL see exactly one acceptance. If dispatch then
// fails, the entry is deleted (best effort) so a redelivered alert can retry
// instead of being silently suppressed for the rest of the window.
func (in *Intake) Submit(ctx context.Context, event *models.AlertEvent) (Result, error) {
	if err := validate(event); err != nil {
		monitoring.RecordIntakeOutcome("invalid")
		return Result{}, err
	}

	if event.Status == models.StatusResolved {
		monitoring.RecordIntakeOutcome("resolved_skipped")
		in.logger.Debug("Skipping resolved alert", "fingerprint", event.Fingerprint, "alertname", event.Name())
		return Result{Outcome: models.OutcomeDeduplicated}, nil
	}

	if event.Fingerprint == "" {
		event.Fingerprint = DeriveFingerprint(event.Labels)
	}
	key := dedupKeyPrefix + event.Fingerprint

	created, err := in.cache.CheckAndSet(ctx, key, in.ttl)
	if err != nil {
		return Result{}, fmt.Errorf("dedup check for %s: %w", event.Fingerprint, err)
	}
	if !created {
		monitoring.RecordIntakeOutcome("deduplicated")
		in.logger.Info("Skipping duplicate alert", "fingerprint", event.Fingerprint, "alertname", event.Name())
		return Result{Outcome: models.OutcomeDeduplicated}, nil
	}

	in.logger.Info("Processing alert",
		"alertname", event.Name(),
		"severity", event.Labels["severity"],
		"namespace", event.Labels["namespace"],
		"fingerprint", event.Fingerprint,
	)

	investigationID, err := in.dispatcher.Dispatch(ctx, event, BuildInstruction(event))
	if err != nil {
		monitoring.RecordIntakeOutcome("dispatch_failed")
		if delErr := in.cache.Delete(ctx, key); delErr != nil {
			in.logger.Warn("Failed to release dedup entry after dispatch failure; alert stays suppressed for one TTL window",
				"fingerprint", event.Fingerprint, "error", delErr)
		}
		return Result{}, err
	}

	monitoring.RecordIntakeOutcome("accepted")
	return Result{Outcome: models.OutcomeAccepted, InvestigationID: investigationID}, nil
}

// DeriveFingerprint computes a stable fingerprint from the alert's label
// set using the same FNV-64a label-set hash Alertmanager uses, so derived
// and upstream-supplied fingerprints agree regardless of key order.
func DeriveFingerprint(labels map[string]string) string {
	ls := make(model.LabelSet, len(labels))
	for name, value := range labels {
		ls[model.LabelName(name)] = model.LabelValue(value)
	}
	return ls.Fingerprint().String()
}

func validate(event *models.AlertEvent) error {
	if event == nil {
		return fmt.Errorf("%w: nil event", ErrInvalidEvent)
	}
	if event.Status != models.StatusFiring && event.Status != models.StatusResolved {
		return fmt.Errorf("%w: status %q", ErrInvalidEvent, event.Status)
	}
	if event.Fingerprint == "" && len(event.Labels) == 0 {
		return fmt.Errorf("%w: no fingerprint and no labels to derive one from", ErrInvalidEvent)
	}
	return nil
}
