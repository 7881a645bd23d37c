package controllers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/launchstack/SubRelay/app/models"
	"github.com/launchstack/SubRelay/internal/pkg/billing"
	"github.com/launchstack/SubRelay/internal/pkg/cache"
	"github.com/launchstack/SubRelay/internal/pkg/entitlements"
	"github.com/launchstack/SubRelay/internal/pkg/tenantcontext"
)

const (
	entitlementsCacheKeyPrefix = "tenant:entitlements:"
	entitlementsCacheTTL       = 5 * time.Minute
)

// SubscriptionController serves the tenant-facing read API for subscription
// state and entitlements.
type SubscriptionController struct {
	service *billing.Service
}

func NewSubscriptionController(service *billing.Service) *SubscriptionController {
	return &SubscriptionController{service: service}
}

// HandleGetSubscription returns the tenant's current subscription row plus
// the entitlements it unlocks.
func (sc *SubscriptionController) HandleGetSubscription(c *fiber.Ctx) error {
	tenant := tenantcontext.Get(c)
	if !tenant.IsAuthenticated {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sub, err := sc.service.GetTenantSubscription(ctx, tenant.TenantUUID)
	if err != nil {
		log.Errorf("subscription lookup failed for tenant %s: %v", tenant.TenantUUID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "subscription_lookup_failed"})
	}

	features := resolveFeatures(tenant.TenantUUID, sub)
	if sub == nil {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"subscription": nil, "entitlements": features})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"subscription": sub, "entitlements": features})
}

// HandleGetEntitlements returns only the entitlement feature set for the
// tenant's current plan.
func (sc *SubscriptionController) HandleGetEntitlements(c *fiber.Ctx) error {
	tenant := tenantcontext.Get(c)
	if !tenant.IsAuthenticated {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	if cached, err := cache.Get(entitlementsCacheKeyPrefix + tenant.TenantUUID); err == nil && cached != "" {
		var features entitlements.Features
		if err := json.Unmarshal([]byte(cached), &features); err == nil {
			return c.Status(fiber.StatusOK).JSON(features)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sub, err := sc.service.GetTenantSubscription(ctx, tenant.TenantUUID)
	if err != nil {
		log.Errorf("entitlements lookup failed for tenant %s: %v", tenant.TenantUUID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "entitlements_lookup_failed"})
	}

	features := resolveFeatures(tenant.TenantUUID, sub)
	return c.Status(fiber.StatusOK).JSON(features)
}

// resolveFeatures computes the effective feature set and refreshes the cache
// best-effort. Tenants without an entitling subscription fall back to free.
func resolveFeatures(tenantUUID string, sub *models.Subscription) entitlements.Features {
	plan := entitlements.PlanFree
	if sub != nil && sub.IsEntitled() {
		plan = entitlements.NormalizePlan(sub.InternalPlan)
	}
	features := entitlements.ForPlan(plan)

	if encoded, err := json.Marshal(features); err == nil {
		if err := cache.Set(entitlementsCacheKeyPrefix+tenantUUID, string(encoded), entitlementsCacheTTL); err != nil {
			log.Debugf("entitlements cache refresh failed for tenant %s: %v", tenantUUID, err)
		}
	}
	return features
}
