package repository

import (
	"github.com/launchstack/SubRelay/app/models"
)

// TenantRepository defines tenant-related database operations
type TenantRepository interface {
	Create(tenant *models.Tenant) error
	GetByUUID(uuid string) (*models.Tenant, error)
	GetByAPIKeyHash(hash string) (*models.Tenant, error)
	Update(tenant *models.Tenant) error
	Count() (int64, error)
}

// SubscriptionRepository defines subscription-related database operations.
// UpsertForTenant is keyed by tenant id: at most one current subscription row
// exists per tenant.
type SubscriptionRepository interface {
	// UpsertForTenant creates or updates the tenant's subscription row and
	// returns the persisted state. When force is false, deliveries that would
	// regress the stored billing period are ignored and the stored row is
	// returned unchanged.
	UpsertForTenant(sub *models.Subscription, force bool) (*models.Subscription, error)
	GetByTenantID(tenantID string) (*models.Subscription, error)
	ListByStatus(status string, offset, limit int) ([]models.Subscription, error)
}

// WebhookEventRepository defines webhook event log operations
type WebhookEventRepository interface {
	CreateIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	MarkProcessed(id uint, processingError string) error
	GetByProviderEventID(provider, providerEventID string) (*models.WebhookEvent, error)
}

// PlanMappingRepository defines plan mapping lookups
type PlanMappingRepository interface {
	FindActive(provider, providerProductID string) (*models.PlanMapping, error)
	Upsert(mapping *models.PlanMapping) error
}
