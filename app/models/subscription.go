package models

import "time"

// Billing provider constants used across subscription-related models.
const (
	BillingProviderPolar      = "polar"
	BillingProviderRevenueCat = "revenuecat"
)

const (
	SubscriptionStatusTrialing = "trialing"
	SubscriptionStatusActive   = "active"
	SubscriptionStatusPastDue  = "past_due"
	SubscriptionStatusCanceled = "canceled"
	SubscriptionStatusExpired  = "expired"
	SubscriptionStatusPaused   = "paused"
)

// Subscription holds the latest known billing state for a tenant with exactly
// one provider at a time. Rows are never deleted, only status-transitioned.
// The unique index on tenant_id enforces the single-current-subscription rule.
type Subscription struct {
	ID                     uint       `gorm:"primaryKey" json:"id"`
	TenantID               string     `gorm:"type:varchar(36);not null;uniqueIndex:ux_subscriptions_tenant" json:"tenant_id"`
	UserID                 string     `gorm:"type:varchar(64);index" json:"user_id,omitempty"`
	Provider               string     `gorm:"type:varchar(20);not null;index:idx_subscriptions_provider_status,priority:1" json:"provider"`
	ProviderSubscriptionID string     `gorm:"type:varchar(191);not null;index" json:"provider_subscription_id"`
	ProviderCustomerID     string     `gorm:"type:varchar(191);not null;default:''" json:"provider_customer_id"`
	PlanID                 string     `gorm:"type:varchar(191);not null" json:"plan_id"`
	PlanName               string     `gorm:"type:varchar(150);default:''" json:"plan_name,omitempty"`
	InternalPlan           string     `gorm:"type:varchar(50);not null;default:'free';index" json:"internal_plan"`
	Status                 string     `gorm:"type:varchar(32);not null;default:'active';index:idx_subscriptions_provider_status,priority:2" json:"status"`
	CurrentPeriodStart     *time.Time `gorm:"type:timestamp;default:null" json:"current_period_start,omitempty"`
	CurrentPeriodEnd       *time.Time `gorm:"type:timestamp;default:null" json:"current_period_end,omitempty"`
	CancelAtPeriodEnd      bool       `gorm:"default:false" json:"cancel_at_period_end"`
	RawPayloadJSON         string     `gorm:"type:longtext" json:"-"`
	CreatedAt              time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsEntitled reports whether the subscription status unlocks paid
// entitlements. canceled keeps access until the period actually ends, which
// is modeled by the provider sending a final expiration event.
func (s *Subscription) IsEntitled() bool {
	switch s.Status {
	case SubscriptionStatusActive, SubscriptionStatusTrialing, SubscriptionStatusPastDue:
		return true
	default:
		return false
	}
}
