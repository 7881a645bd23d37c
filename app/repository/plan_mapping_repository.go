package repository

import (
	"github.com/launchstack/SubRelay/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type planMappingRepository struct {
	db *gorm.DB
}

// NewPlanMappingRepository creates a plan mapping repository backed by GORM.
func NewPlanMappingRepository(db *gorm.DB) PlanMappingRepository {
	return &planMappingRepository{db: db}
}

func (r *planMappingRepository) FindActive(provider, providerProductID string) (*models.PlanMapping, error) {
	var m models.PlanMapping
	err := r.db.
		Where("provider = ? AND provider_product_id = ? AND is_active = ?", provider, providerProductID, true).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *planMappingRepository) Upsert(mapping *models.PlanMapping) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_product_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"internal_plan",
			"is_active",
			"updated_at",
		}),
	}).Create(mapping).Error; err != nil {
		return err
	}

	return r.db.Where("provider = ? AND provider_product_id = ?", mapping.Provider, mapping.ProviderProductID).
		First(mapping).Error
}
