package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/launchstack/SubRelay/app/models"
	"github.com/launchstack/SubRelay/internal/pkg/analytics"
)

// Dispatch error classes. Controllers map these onto the HTTP response
// taxonomy: rejected at transport vs accepted-but-failed.
var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrInvalidPayload   = errors.New("invalid webhook payload")
)

// OutcomeRecorder counts webhook outcomes per provider, best-effort.
type OutcomeRecorder interface {
	Add(provider, outcome string)
}

// PayloadArchiver stores verified raw payloads out-of-band, best-effort.
type PayloadArchiver interface {
	Archive(ctx context.Context, provider, eventID string, payload []byte) error
}

// Outcome labels passed to the OutcomeRecorder.
const (
	OutcomeRejected  = "rejected"
	OutcomeInvalid   = "invalid"
	OutcomeDuplicate = "duplicate"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
	OutcomeProcessed = "processed"
)

// Dispatcher sequences a single webhook delivery: verify, record, parse,
// build, persist, emit analytics. All collaborators are injected at the
// composition root; the dispatcher holds no global state.
type Dispatcher struct {
	service  *Service
	sink     analytics.Sink
	counters OutcomeRecorder
	archiver PayloadArchiver

	polarSecret      string
	revenueCatSecret string
}

// NewDispatcher wires a dispatcher. sink must not be nil (use
// analytics.NopSink); counters and archiver may be nil.
func NewDispatcher(service *Service, sink analytics.Sink, counters OutcomeRecorder, archiver PayloadArchiver, polarSecret, revenueCatSecret string) *Dispatcher {
	return &Dispatcher{
		service:          service,
		sink:             sink,
		counters:         counters,
		archiver:         archiver,
		polarSecret:      strings.TrimSpace(polarSecret),
		revenueCatSecret: strings.TrimSpace(revenueCatSecret),
	}
}

// Dispatch processes one delivery to completion. Hard failures (bad
// signature, malformed payload, persistence errors) return a non-nil error;
// valid-but-irrelevant deliveries return Processed=false with a reason.
// Analytics and archival failures never fail the dispatch.
func (d *Dispatcher) Dispatch(ctx context.Context, delivery Delivery) (DispatchResult, error) {
	provider := strings.ToLower(strings.TrimSpace(delivery.Provider))

	// Verification short-circuits before any database access.
	if !d.verify(provider, delivery) {
		d.count(provider, OutcomeRejected)
		return DispatchResult{}, ErrInvalidSignature
	}

	ev, err := d.parse(provider, delivery.Payload)
	if err != nil {
		d.count(provider, OutcomeInvalid)
		return DispatchResult{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	// The transport message id is unique per message and stable across the
	// provider's retries. Prefer it for dedup: body-derived ids collapse
	// distinct events for the same subscription (every subscription.updated
	// carries the same object id) and would skip legitimate updates.
	if id := strings.TrimSpace(delivery.WebhookID); id != "" {
		ev.EventID = id
	}

	created, stored, err := d.service.RecordWebhookEvent(ctx, WebhookEventInput{
		Provider:        provider,
		ProviderEventID: ev.EventID,
		EventType:       ev.EventType,
		PayloadJSON:     string(delivery.Payload),
		SignatureValid:  true,
	})
	if err != nil {
		d.count(provider, OutcomeFailed)
		return DispatchResult{}, fmt.Errorf("webhook event persist failed: %w", err)
	}
	if !created {
		// Only a completed delivery is a duplicate. An event row whose
		// processing never finished (crash, failed upsert answered 500) comes
		// back on the provider's retry with the same event id; re-process it
		// instead of dropping the update. The upsert is idempotent, so a
		// concurrent in-flight delivery re-processing here is harmless.
		if stored.ProcessedAt != nil && stored.ProcessingError == "" {
			d.count(provider, OutcomeDuplicate)
			return DispatchResult{Processed: false, Reason: SkipReasonDuplicateEvent}, nil
		}
	}

	d.archive(ctx, provider, ev.EventID, delivery.Payload)

	update, skipReason := d.buildUpdate(provider, ev)
	if update == nil {
		_ = d.service.MarkWebhookProcessed(ctx, stored.ID, nil)
		d.count(provider, OutcomeSkipped)
		return DispatchResult{Processed: false, Reason: skipReason}, nil
	}

	sub, err := d.service.UpsertSubscriptionForTenant(ctx, provider, update)
	if err != nil {
		_ = d.service.MarkWebhookProcessed(ctx, stored.ID, err)
		d.count(provider, OutcomeFailed)
		return DispatchResult{}, fmt.Errorf("subscription sync failed: %w", err)
	}

	if analyticsEvent := d.deriveAnalytics(provider, ev, update); analyticsEvent != nil {
		if err := d.sink.Capture(ctx, *analyticsEvent); err != nil {
			log.Warnf("[Billing] analytics capture failed for %s %s: %v", provider, ev.EventType, err)
		}
	}

	_ = d.service.MarkWebhookProcessed(ctx, stored.ID, nil)
	d.count(provider, OutcomeProcessed)
	log.Infof("[Billing] %s %s reconciled tenant %s to status %s", provider, ev.EventType, sub.TenantID, sub.Status)
	return DispatchResult{Processed: true}, nil
}

func (d *Dispatcher) verify(provider string, delivery Delivery) bool {
	switch provider {
	case models.BillingProviderPolar:
		return VerifyPolarWebhookSignature(delivery.Payload, delivery.Signature, delivery.WebhookID, delivery.Timestamp, d.polarSecret)
	case models.BillingProviderRevenueCat:
		return VerifyRevenueCatWebhookSignature(delivery.Payload, delivery.Signature, d.revenueCatSecret)
	default:
		return false
	}
}

func (d *Dispatcher) parse(provider string, payload []byte) (*WebhookEvent, error) {
	switch provider {
	case models.BillingProviderPolar:
		return ParsePolarWebhookEvent(payload)
	case models.BillingProviderRevenueCat:
		return ParseRevenueCatWebhookEvent(payload)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func (d *Dispatcher) buildUpdate(provider string, ev *WebhookEvent) (*SubscriptionUpdate, string) {
	switch provider {
	case models.BillingProviderPolar:
		if !IsPolarSubscriptionEvent(ev.EventType) {
			return nil, SkipReasonIrrelevantEvent
		}
		if update := MapPolarEventToSubscriptionUpdate(ev); update != nil {
			return update, ""
		}
		return nil, SkipReasonMissingTenantID
	case models.BillingProviderRevenueCat:
		if !IsRevenueCatSubscriptionEvent(ev.EventType) {
			return nil, SkipReasonIrrelevantEvent
		}
		if update := MapRevenueCatEventToSubscriptionUpdate(ev); update != nil {
			return update, ""
		}
		return nil, SkipReasonMissingTenantID
	default:
		return nil, SkipReasonIrrelevantEvent
	}
}

func (d *Dispatcher) deriveAnalytics(provider string, ev *WebhookEvent, update *SubscriptionUpdate) *analytics.Event {
	switch provider {
	case models.BillingProviderPolar:
		return DerivePolarAnalyticsEvent(ev, update)
	case models.BillingProviderRevenueCat:
		return DeriveRevenueCatAnalyticsEvent(ev, update)
	default:
		return nil
	}
}

func (d *Dispatcher) count(provider, outcome string) {
	if d.counters != nil {
		d.counters.Add(provider, outcome)
	}
}

func (d *Dispatcher) archive(ctx context.Context, provider, eventID string, payload []byte) {
	if d.archiver == nil {
		return
	}
	if err := d.archiver.Archive(ctx, provider, eventID, payload); err != nil {
		log.Warnf("[Billing] payload archive failed for %s %s: %v", provider, eventID, err)
	}
}
