package billing

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/launchstack/SubRelay/app/models"
	"github.com/launchstack/SubRelay/internal/pkg/analytics"
)

type revenueCatSubscriberAttribute struct {
	Value string `json:"value"`
}

type revenueCatEvent struct {
	ID                    string                                   `json:"id"`
	Type                  string                                   `json:"type"`
	AppUserID             string                                   `json:"app_user_id"`
	OriginalAppUserID     string                                   `json:"original_app_user_id"`
	ProductID             string                                   `json:"product_id"`
	EntitlementIDs        []string                                 `json:"entitlement_ids"`
	PeriodType            string                                   `json:"period_type"`
	Store                 string                                   `json:"store"`
	EventTimestampMs      int64                                    `json:"event_timestamp_ms"`
	PurchasedAtMs         int64                                    `json:"purchased_at_ms"`
	ExpirationAtMs        int64                                    `json:"expiration_at_ms"`
	TransactionID         string                                   `json:"transaction_id"`
	OriginalTransactionID string                                   `json:"original_transaction_id"`
	CancelReason          string                                   `json:"cancel_reason"`
	SubscriberAttributes  map[string]revenueCatSubscriberAttribute `json:"subscriber_attributes"`
}

type revenueCatWebhookPayload struct {
	APIVersion string          `json:"api_version"`
	Event      revenueCatEvent `json:"event"`
}

// ParseRevenueCatWebhookEvent decodes a raw RevenueCat webhook body into the
// normalized envelope. When the provider omits the event id, a
// timestamp-derived one is synthesized; callers must not assume such ids are
// collision free.
func ParseRevenueCatWebhookEvent(payload []byte) (*WebhookEvent, error) {
	var raw revenueCatWebhookPayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("invalid revenuecat webhook payload: %w", err)
	}
	if strings.TrimSpace(raw.Event.Type) == "" {
		return nil, errors.New("revenuecat webhook payload missing event type")
	}

	eventID := strings.TrimSpace(raw.Event.ID)
	if eventID == "" {
		eventID = fmt.Sprintf("rc:%d:%s", raw.Event.EventTimestampMs, strings.ToLower(raw.Event.Type))
	}

	data, err := json.Marshal(raw.Event)
	if err != nil {
		return nil, err
	}

	return &WebhookEvent{
		EventID:    eventID,
		EventType:  strings.ToUpper(strings.TrimSpace(raw.Event.Type)),
		RawPayload: data,
	}, nil
}

// IsRevenueCatSubscriptionEvent reports whether the event type belongs to the
// subscription lifecycle family. TEST and TRANSFER deliveries, among others,
// are not reconciled.
func IsRevenueCatSubscriptionEvent(eventType string) bool {
	switch strings.ToUpper(strings.TrimSpace(eventType)) {
	case "INITIAL_PURCHASE", "RENEWAL", "CANCELLATION", "UNCANCELLATION",
		"EXPIRATION", "BILLING_ISSUE", "PRODUCT_CHANGE", "SUBSCRIPTION_PAUSED",
		"SUBSCRIPTION_EXTENDED":
		return true
	default:
		return false
	}
}

// RevenueCatEventToSubscriptionStatus maps RevenueCat's event vocabulary onto
// the internal status enum. RevenueCat encodes state transitions in the event
// type rather than a status field. Total mapping; unrecognized types default
// to active (documented fail-open policy shared with the Polar mapper).
func RevenueCatEventToSubscriptionStatus(eventType, periodType string) string {
	switch strings.ToUpper(strings.TrimSpace(eventType)) {
	case "INITIAL_PURCHASE":
		if strings.EqualFold(strings.TrimSpace(periodType), "TRIAL") {
			return models.SubscriptionStatusTrialing
		}
		return models.SubscriptionStatusActive
	case "RENEWAL", "UNCANCELLATION", "PRODUCT_CHANGE", "SUBSCRIPTION_EXTENDED":
		return models.SubscriptionStatusActive
	case "CANCELLATION":
		return models.SubscriptionStatusCanceled
	case "BILLING_ISSUE":
		return models.SubscriptionStatusPastDue
	case "SUBSCRIPTION_PAUSED":
		return models.SubscriptionStatusPaused
	case "EXPIRATION":
		return models.SubscriptionStatusExpired
	default:
		return models.SubscriptionStatusActive
	}
}

// MapRevenueCatEventToSubscriptionUpdate turns a parsed RevenueCat event into
// a tenant-scoped subscription mutation. The tenant is correlated through the
// tenantId subscriber attribute stamped by the mobile clients at login.
func MapRevenueCatEventToSubscriptionUpdate(ev *WebhookEvent) *SubscriptionUpdate {
	if ev == nil || !IsRevenueCatSubscriptionEvent(ev.EventType) {
		return nil
	}

	var event revenueCatEvent
	if err := json.Unmarshal(ev.RawPayload, &event); err != nil {
		log.Warnf("[Billing] revenuecat %s: undecodable event data: %v", ev.EventType, err)
		return nil
	}

	tenantID := subscriberAttribute(event.SubscriberAttributes, "tenantId", "tenant_id")
	if tenantID == "" {
		log.Warnf("[Billing] revenuecat %s for user %s dropped: no tenantId subscriber attribute", ev.EventType, event.AppUserID)
		return nil
	}

	subscriptionID := strings.TrimSpace(event.OriginalTransactionID)
	if subscriptionID == "" {
		subscriptionID = "appuser:" + strings.TrimSpace(event.AppUserID)
	}

	update := &SubscriptionUpdate{
		TenantID:               tenantID,
		UserID:                 strings.TrimSpace(event.AppUserID),
		PlanID:                 strings.TrimSpace(event.ProductID),
		CurrentPeriodStart:     msToTime(event.PurchasedAtMs),
		CurrentPeriodEnd:       msToTime(event.ExpirationAtMs),
		CancelAtPeriodEnd:      strings.EqualFold(ev.EventType, "CANCELLATION"),
		ProviderSubscriptionID: subscriptionID,
		ProviderCustomerID:     strings.TrimSpace(event.AppUserID),
		RawStatus:              strings.ToUpper(strings.TrimSpace(ev.EventType)),
		RawPayloadJSON:         string(ev.RawPayload),
	}

	// EXPIRATION ends access immediately, mirroring Polar's revoked handling.
	if strings.EqualFold(ev.EventType, "EXPIRATION") {
		update.Status = models.SubscriptionStatusExpired
		update.HardExpired = true
		return update
	}

	update.Status = RevenueCatEventToSubscriptionStatus(ev.EventType, event.PeriodType)
	return update
}

// DeriveRevenueCatAnalyticsEvent derives zero-or-one analytics event from a
// processed RevenueCat webhook.
func DeriveRevenueCatAnalyticsEvent(ev *WebhookEvent, update *SubscriptionUpdate) *analytics.Event {
	if ev == nil || update == nil || update.UserID == "" {
		return nil
	}

	var name string
	switch strings.ToUpper(strings.TrimSpace(ev.EventType)) {
	case "INITIAL_PURCHASE":
		name = "subscription.started"
	case "RENEWAL":
		name = "subscription.renewed"
	case "BILLING_ISSUE":
		name = "subscription.payment_failed"
	case "CANCELLATION":
		name = "subscription.canceled"
	case "UNCANCELLATION":
		name = "subscription.resumed"
	case "SUBSCRIPTION_PAUSED":
		name = "subscription.paused"
	case "EXPIRATION":
		name = "subscription.expired"
	default:
		return nil
	}

	return &analytics.Event{
		Name:   name,
		UserID: update.UserID,
		Properties: map[string]any{
			"provider":  models.BillingProviderRevenueCat,
			"tenant_id": update.TenantID,
			"plan_id":   update.PlanID,
			"status":    update.Status,
		},
	}
}

func subscriberAttribute(attrs map[string]revenueCatSubscriberAttribute, keys ...string) string {
	for _, key := range keys {
		if attr, ok := attrs[key]; ok && strings.TrimSpace(attr.Value) != "" {
			return strings.TrimSpace(attr.Value)
		}
	}
	return ""
}

func msToTime(ms int64) *time.Time {
	if ms <= 0 {
		return nil
	}
	t := time.UnixMilli(ms).UTC()
	return &t
}
