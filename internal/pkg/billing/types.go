package billing

import (
	"encoding/json"
	"time"
)

// WebhookEvent is the normalized envelope for a single inbound provider
// webhook. It lives only for the duration of one dispatch.
type WebhookEvent struct {
	EventID    string
	EventType  string
	RawPayload json.RawMessage
}

// SubscriptionUpdate is the provider-agnostic mutation derived from a webhook
// event. It is built fresh per event; the upsert identity across calls is the
// tenant, not the event.
type SubscriptionUpdate struct {
	TenantID               string
	UserID                 string
	Status                 string
	PlanID                 string
	PlanName               string
	CurrentPeriodStart     *time.Time
	CurrentPeriodEnd       *time.Time
	CancelAtPeriodEnd      bool
	ProviderSubscriptionID string
	ProviderCustomerID     string

	// RawStatus carries the provider's own status vocabulary so the analytics
	// layer can distinguish cases the internal status enum collapses.
	RawStatus string

	// HardExpired marks revoked-style events that must overwrite the stored
	// row even when the stale-delivery guard would otherwise keep it.
	HardExpired bool

	RawPayloadJSON string
}

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	PayloadJSON     string
	SignatureValid  bool
}

// Delivery is one raw inbound webhook call as received on the HTTP surface.
// Payload must be the exact bytes the provider signed.
type Delivery struct {
	Provider  string
	Payload   []byte
	Signature string

	// Standard-webhooks metadata (Polar).
	WebhookID string
	Timestamp string
}

// DispatchResult reports the outcome of a fully accepted delivery. Processed
// is false for valid-but-irrelevant webhooks; Reason says why.
type DispatchResult struct {
	Processed bool
	Reason    string
}

// Skip reasons surfaced in DispatchResult and webhook responses.
const (
	SkipReasonDuplicateEvent  = "duplicate_event"
	SkipReasonIrrelevantEvent = "irrelevant_event_type"
	SkipReasonMissingTenantID = "missing_tenant_id"
)
