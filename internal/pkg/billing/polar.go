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

// polarSubscriptionData is the subscription object embedded in Polar
// "subscription.*" webhook payloads.
type polarSubscriptionData struct {
	ID                 string         `json:"id"`
	Status             string         `json:"status"`
	ProductID          string         `json:"product_id"`
	CustomerID         string         `json:"customer_id"`
	CurrentPeriodStart *time.Time     `json:"current_period_start"`
	CurrentPeriodEnd   *time.Time     `json:"current_period_end"`
	CancelAtPeriodEnd  bool           `json:"cancel_at_period_end"`
	Metadata           map[string]any `json:"metadata"`
	Product            struct {
		Name string `json:"name"`
	} `json:"product"`
	Customer struct {
		ID         string `json:"id"`
		ExternalID string `json:"external_id"`
	} `json:"customer"`
}

type polarWebhookPayload struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ParsePolarWebhookEvent decodes a raw Polar webhook body into the normalized
// envelope. Only malformed JSON is an error; unknown event types flow through
// so the update builder remains the single relevance filter.
func ParsePolarWebhookEvent(payload []byte) (*WebhookEvent, error) {
	var raw polarWebhookPayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("invalid polar webhook payload: %w", err)
	}
	if strings.TrimSpace(raw.Type) == "" {
		return nil, errors.New("polar webhook payload missing event type")
	}

	// Polar carries no event-level id in the body; derive one from the
	// embedded object as a fallback only. The dispatcher overrides it with
	// the webhook-id header, which is unique per message — the body-derived
	// id is shared by every event of one type for the same subscription.
	eventID := ""
	var data struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw.Data, &data); err == nil && strings.TrimSpace(data.ID) != "" {
		eventID = raw.Type + ":" + strings.TrimSpace(data.ID)
	}

	return &WebhookEvent{
		EventID:    eventID,
		EventType:  strings.TrimSpace(raw.Type),
		RawPayload: append(json.RawMessage(nil), raw.Data...),
	}, nil
}

// IsPolarSubscriptionEvent reports whether the event type belongs to the
// subscription lifecycle family this service reconciles.
func IsPolarSubscriptionEvent(eventType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(eventType)), "subscription.")
}

// PolarStatusToSubscriptionStatus maps Polar's subscription status vocabulary
// onto the internal status enum. The mapping is total: unrecognized statuses
// default to active so an unknown vocabulary addition never blocks webhook
// processing. Changing this fail-open default requires updating entitlement
// consumers.
func PolarStatusToSubscriptionStatus(providerStatus string) string {
	switch strings.ToLower(strings.TrimSpace(providerStatus)) {
	case "trialing":
		return models.SubscriptionStatusTrialing
	case "active":
		return models.SubscriptionStatusActive
	case "past_due", "unpaid":
		return models.SubscriptionStatusPastDue
	case "canceled":
		return models.SubscriptionStatusCanceled
	case "incomplete_expired":
		return models.SubscriptionStatusExpired
	case "paused":
		return models.SubscriptionStatusPaused
	default:
		return models.SubscriptionStatusActive
	}
}

// MapPolarEventToSubscriptionUpdate turns a parsed Polar event into a
// tenant-scoped subscription mutation. Non-subscription events and events
// without tenant metadata yield nil; the latter is logged since it usually
// means a checkout was created without tenant correlation.
func MapPolarEventToSubscriptionUpdate(ev *WebhookEvent) *SubscriptionUpdate {
	if ev == nil || !IsPolarSubscriptionEvent(ev.EventType) {
		return nil
	}

	var data polarSubscriptionData
	if err := json.Unmarshal(ev.RawPayload, &data); err != nil {
		log.Warnf("[Billing] polar %s: undecodable subscription data: %v", ev.EventType, err)
		return nil
	}

	tenantID := metadataString(data.Metadata, "tenantId", "tenant_id")
	if tenantID == "" {
		log.Warnf("[Billing] polar %s for subscription %s dropped: no tenantId in metadata", ev.EventType, data.ID)
		return nil
	}

	userID := metadataString(data.Metadata, "userId", "user_id")
	if userID == "" {
		userID = strings.TrimSpace(data.Customer.ExternalID)
	}

	update := &SubscriptionUpdate{
		TenantID:               tenantID,
		UserID:                 userID,
		PlanID:                 strings.TrimSpace(data.ProductID),
		PlanName:               strings.TrimSpace(data.Product.Name),
		CurrentPeriodStart:     data.CurrentPeriodStart,
		CurrentPeriodEnd:       data.CurrentPeriodEnd,
		CancelAtPeriodEnd:      data.CancelAtPeriodEnd,
		ProviderSubscriptionID: strings.TrimSpace(data.ID),
		ProviderCustomerID:     strings.TrimSpace(data.CustomerID),
		RawStatus:              strings.ToLower(strings.TrimSpace(data.Status)),
		RawPayloadJSON:         string(ev.RawPayload),
	}

	// Revoked means access ends now, as opposed to a subscription that ran
	// out naturally. It bypasses the status table and the stale guard.
	if strings.EqualFold(ev.EventType, "subscription.revoked") {
		update.Status = models.SubscriptionStatusExpired
		update.HardExpired = true
		return update
	}

	update.Status = PolarStatusToSubscriptionStatus(data.Status)
	return update
}

// DerivePolarAnalyticsEvent derives zero-or-one analytics event from a
// processed Polar webhook. subscription.updated is split into renewed vs
// payment_failed from the provider's raw status because the internal enum
// collapses that distinction.
func DerivePolarAnalyticsEvent(ev *WebhookEvent, update *SubscriptionUpdate) *analytics.Event {
	if ev == nil || update == nil || update.UserID == "" {
		return nil
	}

	var name string
	switch strings.ToLower(strings.TrimSpace(ev.EventType)) {
	case "subscription.created":
		name = "subscription.started"
	case "subscription.updated":
		if update.RawStatus == "past_due" || update.RawStatus == "unpaid" {
			name = "subscription.payment_failed"
		} else {
			name = "subscription.renewed"
		}
	case "subscription.canceled":
		name = "subscription.canceled"
	case "subscription.uncanceled":
		name = "subscription.resumed"
	case "subscription.revoked":
		name = "subscription.expired"
	default:
		return nil
	}

	return &analytics.Event{
		Name:   name,
		UserID: update.UserID,
		Properties: map[string]any{
			"provider":  models.BillingProviderPolar,
			"tenant_id": update.TenantID,
			"plan_id":   update.PlanID,
			"status":    update.Status,
		},
	}
}

func metadataString(metadata map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := metadata[key]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}
