package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// PlanMapping maps provider-specific product references to internal
// entitlement plans.
type PlanMapping struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Provider          string    `gorm:"type:varchar(20);not null;index:ux_plan_mappings_ref,unique,priority:1;index" json:"provider" validate:"required,oneof=polar revenuecat"`
	ProviderProductID string    `gorm:"type:varchar(191);not null;index:ux_plan_mappings_ref,unique,priority:2" json:"provider_product_id" validate:"required"`
	InternalPlan      string    `gorm:"type:varchar(50);not null;default:'free';index" json:"internal_plan" validate:"oneof=free starter pro"`
	IsActive          bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (m *PlanMapping) Validate() error {
	v := validator.New()

	return v.Struct(m)
}
