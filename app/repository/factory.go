package repository

import (
	"gorm.io/gorm"
)

// Repositories bundles all repository implementations over one DB handle.
type Repositories struct {
	Tenant       TenantRepository
	Subscription SubscriptionRepository
	WebhookEvent WebhookEventRepository
	PlanMapping  PlanMappingRepository
}

// NewRepositories constructs every repository against the given DB handle.
// The result is built once at process start and injected; there is no global
// instance.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Tenant:       NewTenantRepository(db),
		Subscription: NewSubscriptionRepository(db),
		WebhookEvent: NewWebhookEventRepository(db),
		PlanMapping:  NewPlanMappingRepository(db),
	}
}
