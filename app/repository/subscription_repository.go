package repository

import (
	"errors"

	"github.com/launchstack/SubRelay/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a subscription repository backed by GORM.
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) UpsertForTenant(sub *models.Subscription, force bool) (*models.Subscription, error) {
	var out *models.Subscription
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Subscription
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tenant_id = ?", sub.TenantID).
			First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := tx.Create(sub).Error; err != nil {
				return err
			}
			out = sub
			return nil
		}
		if err != nil {
			return err
		}

		// Providers retry and reorder deliveries; never let a stale event
		// roll the tenant's billing period backwards. Hard transitions
		// (revoked access) always win.
		if !force && isStaleDelivery(&existing, sub) {
			out = &existing
			return nil
		}

		existing.UserID = sub.UserID
		existing.Provider = sub.Provider
		existing.ProviderSubscriptionID = sub.ProviderSubscriptionID
		existing.ProviderCustomerID = sub.ProviderCustomerID
		existing.PlanID = sub.PlanID
		existing.PlanName = sub.PlanName
		existing.InternalPlan = sub.InternalPlan
		existing.Status = sub.Status
		existing.CurrentPeriodStart = sub.CurrentPeriodStart
		existing.CurrentPeriodEnd = sub.CurrentPeriodEnd
		existing.CancelAtPeriodEnd = sub.CancelAtPeriodEnd
		existing.RawPayloadJSON = sub.RawPayloadJSON
		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		out = &existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// isStaleDelivery reports whether incoming would regress the stored billing
// period for the same provider subscription.
func isStaleDelivery(existing, incoming *models.Subscription) bool {
	if existing.Provider != incoming.Provider {
		return false
	}
	if existing.ProviderSubscriptionID != incoming.ProviderSubscriptionID {
		return false
	}
	if existing.CurrentPeriodEnd == nil || incoming.CurrentPeriodEnd == nil {
		return false
	}
	return incoming.CurrentPeriodEnd.Before(*existing.CurrentPeriodEnd)
}

func (r *subscriptionRepository) GetByTenantID(tenantID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Where("tenant_id = ?", tenantID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) ListByStatus(status string, offset, limit int) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.Where("status = ?", status).Offset(offset).Limit(limit).Order("updated_at DESC").Find(&subs).Error
	return subs, err
}
