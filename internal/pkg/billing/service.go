package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/launchstack/SubRelay/app/models"
	"github.com/launchstack/SubRelay/app/repository"
	"github.com/launchstack/SubRelay/internal/pkg/entitlements"
	"gorm.io/gorm"
)

// Service provides provider-neutral subscription synchronization on top of
// the repository layer.
type Service struct {
	subs     repository.SubscriptionRepository
	events   repository.WebhookEventRepository
	mappings repository.PlanMappingRepository
}

// NewService creates a billing service from injected repositories.
func NewService(subs repository.SubscriptionRepository, events repository.WebhookEventRepository, mappings repository.PlanMappingRepository) *Service {
	return &Service{subs: subs, events: events, mappings: mappings}
}

// RecordWebhookEvent persists webhook payloads idempotently. Deliveries
// without a provider event id get a payload-hash id so re-deliveries dedupe.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.WebhookEvent, error) {
	_ = ctx
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		return false, nil, errors.New("provider is required")
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.WebhookEvent{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	}
	return s.events.CreateIfNotExists(event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	_ = ctx
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.events.MarkProcessed(webhookEventID, errMsg)
}

// ResolveInternalPlan resolves a provider product reference to an internal
// entitlement plan. Unmapped products resolve to free.
func (s *Service) ResolveInternalPlan(ctx context.Context, provider, providerProductID string) (entitlements.Plan, error) {
	_ = ctx
	p := strings.ToLower(strings.TrimSpace(provider))
	ref := strings.TrimSpace(providerProductID)
	if p == "" || ref == "" {
		return entitlements.PlanFree, errors.New("provider and provider product id are required")
	}

	m, err := s.mappings.FindActive(p, ref)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entitlements.PlanFree, nil
		}
		return entitlements.PlanFree, err
	}
	return entitlements.NormalizePlan(m.InternalPlan), nil
}

// UpsertSubscriptionForTenant applies a subscription mutation to the tenant's
// single subscription row. Exactly one logical write per update; re-delivery
// of the same provider event converges to the same row state.
func (s *Service) UpsertSubscriptionForTenant(ctx context.Context, provider string, update *SubscriptionUpdate) (*models.Subscription, error) {
	p := strings.ToLower(strings.TrimSpace(provider))
	if update == nil {
		return nil, errors.New("subscription update is required")
	}
	if p == "" || strings.TrimSpace(update.TenantID) == "" || strings.TrimSpace(update.ProviderSubscriptionID) == "" {
		return nil, errors.New("provider, tenant_id and provider_subscription_id are required")
	}

	status := strings.ToLower(strings.TrimSpace(update.Status))
	if status == "" {
		status = models.SubscriptionStatusActive
	}

	internalPlan, err := s.ResolveInternalPlan(ctx, p, update.PlanID)
	if err != nil {
		return nil, err
	}

	sub := &models.Subscription{
		TenantID:               strings.TrimSpace(update.TenantID),
		UserID:                 strings.TrimSpace(update.UserID),
		Provider:               p,
		ProviderSubscriptionID: strings.TrimSpace(update.ProviderSubscriptionID),
		ProviderCustomerID:     strings.TrimSpace(update.ProviderCustomerID),
		PlanID:                 strings.TrimSpace(update.PlanID),
		PlanName:               strings.TrimSpace(update.PlanName),
		InternalPlan:           string(internalPlan),
		Status:                 status,
		CurrentPeriodStart:     update.CurrentPeriodStart,
		CurrentPeriodEnd:       update.CurrentPeriodEnd,
		CancelAtPeriodEnd:      update.CancelAtPeriodEnd,
		RawPayloadJSON:         update.RawPayloadJSON,
	}
	return s.subs.UpsertForTenant(sub, update.HardExpired)
}

// GetTenantSubscription returns the tenant's current subscription row, or nil
// when the tenant never had one.
func (s *Service) GetTenantSubscription(ctx context.Context, tenantID string) (*models.Subscription, error) {
	_ = ctx
	sub, err := s.subs.GetByTenantID(strings.TrimSpace(tenantID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return sub, nil
}
