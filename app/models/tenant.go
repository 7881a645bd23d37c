package models

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TenantStatusActive    = "active"
	TenantStatusSuspended = "suspended"
)

var apiKeyEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Tenant is the billing and access-control unit. Each tenant owns at most one
// subscription row at a time.
type Tenant struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UUID            string     `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	Name            string     `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=2,max=150"`
	Status          string     `gorm:"type:varchar(20);not null;default:'active'" json:"status" validate:"oneof=active suspended"`
	OwnerUserID     string     `gorm:"type:varchar(64);index" json:"owner_user_id"`
	APIKeyHash      string     `gorm:"type:varchar(64);index" json:"-"`
	APIKeyPrefix    string     `gorm:"type:varchar(12)" json:"-"`
	APIKeyIssuedAt  *time.Time `gorm:"type:timestamp;default:null" json:"-"`
	APIKeyRevokedAt *time.Time `gorm:"type:timestamp;default:null" json:"-"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (t *Tenant) Validate() error {
	v := validator.New()

	return v.Struct(t)
}

// BeforeCreate assigns a public UUID when none is set.
func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if strings.TrimSpace(t.UUID) == "" {
		t.UUID = uuid.NewString()
	}
	return nil
}

// HasActiveAPIKey reports whether the tenant has an active API key configured
func (t *Tenant) HasActiveAPIKey() bool {
	return t != nil && t.APIKeyHash != "" && t.APIKeyRevokedAt == nil
}

// IssueAPIKey generates a new API key, persists metadata on the struct, and
// returns the raw secret. The raw key is never stored.
func (t *Tenant) IssueAPIKey() (string, error) {
	rawKey, prefix, hash, err := generateAPIKeyMaterial()
	if err != nil {
		return "", err
	}
	now := time.Now()
	t.APIKeyHash = hash
	t.APIKeyPrefix = prefix
	t.APIKeyIssuedAt = &now
	t.APIKeyRevokedAt = nil
	return rawKey, nil
}

// RevokeAPIKey invalidates the tenant's current API key.
func (t *Tenant) RevokeAPIKey() {
	now := time.Now()
	t.APIKeyHash = ""
	t.APIKeyPrefix = ""
	t.APIKeyRevokedAt = &now
}

// HashAPIKey returns the SHA-256 hash for the provided API key.
func HashAPIKey(raw string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(raw)))
	return hex.EncodeToString(sum[:])
}

func generateAPIKeyMaterial() (string, string, string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", "", err
	}
	encoded := apiKeyEncoding.EncodeToString(b)
	rawKey := "sr_" + strings.ToLower(encoded)
	prefix := rawKey[:min(12, len(rawKey))]
	hash := HashAPIKey(rawKey)
	return rawKey, prefix, hash, nil
}
