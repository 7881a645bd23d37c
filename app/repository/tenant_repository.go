package repository

import (
	"github.com/launchstack/SubRelay/app/models"
	"gorm.io/gorm"
)

type tenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository creates a tenant repository backed by GORM.
func NewTenantRepository(db *gorm.DB) TenantRepository {
	return &tenantRepository{db: db}
}

func (r *tenantRepository) Create(tenant *models.Tenant) error {
	return r.db.Create(tenant).Error
}

func (r *tenantRepository) GetByUUID(uuid string) (*models.Tenant, error) {
	var tenant models.Tenant
	err := r.db.Where("uuid = ?", uuid).First(&tenant).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *tenantRepository) GetByAPIKeyHash(hash string) (*models.Tenant, error) {
	var tenant models.Tenant
	err := r.db.Where("api_key_hash = ? AND api_key_revoked_at IS NULL", hash).First(&tenant).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *tenantRepository) Update(tenant *models.Tenant) error {
	return r.db.Save(tenant).Error
}

func (r *tenantRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Tenant{}).Count(&count).Error
	return count, err
}
