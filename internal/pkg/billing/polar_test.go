package billing

import (
	"testing"
	"time"

	"github.com/launchstack/SubRelay/app/models"
)

func TestPolarStatusToSubscriptionStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "trialing", want: models.SubscriptionStatusTrialing},
		{in: "active", want: models.SubscriptionStatusActive},
		{in: "past_due", want: models.SubscriptionStatusPastDue},
		{in: "unpaid", want: models.SubscriptionStatusPastDue},
		{in: "canceled", want: models.SubscriptionStatusCanceled},
		{in: "incomplete_expired", want: models.SubscriptionStatusExpired},
		{in: "paused", want: models.SubscriptionStatusPaused},
		{in: "ACTIVE", want: models.SubscriptionStatusActive},
		{in: "something_new", want: models.SubscriptionStatusActive},
		{in: "", want: models.SubscriptionStatusActive},
	}

	for _, tt := range tests {
		if got := PolarStatusToSubscriptionStatus(tt.in); got != tt.want {
			t.Fatalf("PolarStatusToSubscriptionStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParsePolarWebhookEvent(t *testing.T) {
	payload := []byte(`{"type":"subscription.created","data":{"id":"sub_123","status":"active"}}`)

	ev, err := ParsePolarWebhookEvent(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.EventType != "subscription.created" {
		t.Fatalf("unexpected event type %q", ev.EventType)
	}
	if ev.EventID != "subscription.created:sub_123" {
		t.Fatalf("unexpected event id %q", ev.EventID)
	}

	if _, err := ParsePolarWebhookEvent([]byte(`not json`)); err == nil {
		t.Fatalf("expected malformed payload to error")
	}
	if _, err := ParsePolarWebhookEvent([]byte(`{"data":{"id":"x"}}`)); err == nil {
		t.Fatalf("expected missing type to error")
	}
}

func TestIsPolarSubscriptionEvent(t *testing.T) {
	if !IsPolarSubscriptionEvent("subscription.created") {
		t.Fatalf("expected subscription.created to be relevant")
	}
	if !IsPolarSubscriptionEvent("Subscription.Revoked") {
		t.Fatalf("expected case-insensitive match")
	}
	if IsPolarSubscriptionEvent("order.created") {
		t.Fatalf("expected order.created to be irrelevant")
	}
	if IsPolarSubscriptionEvent("checkout.updated") {
		t.Fatalf("expected checkout.updated to be irrelevant")
	}
}

func TestMapPolarEventToSubscriptionUpdate(t *testing.T) {
	payload := []byte(`{
		"type": "subscription.updated",
		"data": {
			"id": "sub_123",
			"status": "past_due",
			"product_id": "prod_pro",
			"customer_id": "cus_9",
			"current_period_start": "2026-08-01T00:00:00Z",
			"current_period_end": "2026-09-01T00:00:00Z",
			"cancel_at_period_end": true,
			"metadata": {"tenantId": "ten-1", "userId": "user-7"},
			"product": {"name": "Pro Monthly"},
			"customer": {"id": "cus_9", "external_id": "ext-7"}
		}
	}`)

	ev, err := ParsePolarWebhookEvent(payload)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	update := MapPolarEventToSubscriptionUpdate(ev)
	if update == nil {
		t.Fatalf("expected an update")
	}
	if update.TenantID != "ten-1" {
		t.Fatalf("unexpected tenant id %q", update.TenantID)
	}
	if update.UserID != "user-7" {
		t.Fatalf("unexpected user id %q", update.UserID)
	}
	if update.Status != models.SubscriptionStatusPastDue {
		t.Fatalf("unexpected status %q", update.Status)
	}
	if update.PlanID != "prod_pro" || update.PlanName != "Pro Monthly" {
		t.Fatalf("unexpected plan %q / %q", update.PlanID, update.PlanName)
	}
	if !update.CancelAtPeriodEnd {
		t.Fatalf("expected cancel_at_period_end to carry through")
	}
	if update.HardExpired {
		t.Fatalf("updated must not be a hard expiry")
	}
	wantEnd := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	if update.CurrentPeriodEnd == nil || !update.CurrentPeriodEnd.Equal(wantEnd) {
		t.Fatalf("unexpected period end %v", update.CurrentPeriodEnd)
	}
}

func TestMapPolarEventToSubscriptionUpdate_MissingTenant(t *testing.T) {
	payload := []byte(`{"type":"subscription.created","data":{"id":"sub_1","status":"active","metadata":{}}}`)
	ev, err := ParsePolarWebhookEvent(payload)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if update := MapPolarEventToSubscriptionUpdate(ev); update != nil {
		t.Fatalf("expected events without tenant metadata to be dropped")
	}
}

func TestMapPolarEventToSubscriptionUpdate_Revoked(t *testing.T) {
	payload := []byte(`{"type":"subscription.revoked","data":{"id":"sub_1","status":"canceled","metadata":{"tenant_id":"ten-2"}}}`)
	ev, err := ParsePolarWebhookEvent(payload)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	update := MapPolarEventToSubscriptionUpdate(ev)
	if update == nil {
		t.Fatalf("expected an update")
	}
	if update.Status != models.SubscriptionStatusExpired {
		t.Fatalf("expected revoked to map to expired, got %q", update.Status)
	}
	if !update.HardExpired {
		t.Fatalf("expected revoked to force through the stale guard")
	}
}

func TestMapPolarEventToSubscriptionUpdate_ExternalIDFallback(t *testing.T) {
	payload := []byte(`{"type":"subscription.created","data":{"id":"sub_1","status":"active","metadata":{"tenantId":"ten-3"},"customer":{"external_id":"ext-42"}}}`)
	ev, err := ParsePolarWebhookEvent(payload)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	update := MapPolarEventToSubscriptionUpdate(ev)
	if update == nil || update.UserID != "ext-42" {
		t.Fatalf("expected customer external id fallback, got %+v", update)
	}
}

func TestDerivePolarAnalyticsEvent(t *testing.T) {
	tests := []struct {
		eventType string
		rawStatus string
		want      string
	}{
		{eventType: "subscription.created", rawStatus: "active", want: "subscription.started"},
		{eventType: "subscription.updated", rawStatus: "active", want: "subscription.renewed"},
		{eventType: "subscription.updated", rawStatus: "past_due", want: "subscription.payment_failed"},
		{eventType: "subscription.updated", rawStatus: "unpaid", want: "subscription.payment_failed"},
		{eventType: "subscription.canceled", rawStatus: "canceled", want: "subscription.canceled"},
		{eventType: "subscription.uncanceled", rawStatus: "active", want: "subscription.resumed"},
		{eventType: "subscription.revoked", rawStatus: "canceled", want: "subscription.expired"},
	}

	for _, tt := range tests {
		ev := &WebhookEvent{EventType: tt.eventType}
		update := &SubscriptionUpdate{TenantID: "ten-1", UserID: "user-1", RawStatus: tt.rawStatus}
		got := DerivePolarAnalyticsEvent(ev, update)
		if got == nil || got.Name != tt.want {
			t.Fatalf("DerivePolarAnalyticsEvent(%q, %q) = %+v, want %q", tt.eventType, tt.rawStatus, got, tt.want)
		}
		if got.UserID != "user-1" {
			t.Fatalf("expected analytics event to carry the user id")
		}
	}

	ev := &WebhookEvent{EventType: "subscription.created"}
	if got := DerivePolarAnalyticsEvent(ev, &SubscriptionUpdate{TenantID: "ten-1"}); got != nil {
		t.Fatalf("expected no analytics event without a user id, got %+v", got)
	}
	if got := DerivePolarAnalyticsEvent(ev, nil); got != nil {
		t.Fatalf("expected no analytics event without an update")
	}
}
