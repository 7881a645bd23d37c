package tenantcontext

import "github.com/gofiber/fiber/v2"

const localsKey = "TENANT_CONTEXT"

// TenantContext represents the authenticated tenant for a request
type TenantContext struct {
	TenantID        uint   `json:"tenant_id"`
	TenantUUID      string `json:"tenant_uuid"`
	Name            string `json:"name"`
	IsAuthenticated bool   `json:"is_authenticated"`
}

// Set stores the tenant context on the fiber context
func Set(c *fiber.Ctx, ctx TenantContext) {
	c.Locals(localsKey, ctx)
}

// Get retrieves the tenant context from fiber context
// Returns an unauthenticated context if none is set
func Get(c *fiber.Ctx) TenantContext {
	if ctx := c.Locals(localsKey); ctx != nil {
		return ctx.(TenantContext)
	}
	return TenantContext{IsAuthenticated: false}
}

// IsAuthenticated checks if the request carries a valid tenant API key
func IsAuthenticated(c *fiber.Ctx) bool {
	return Get(c).IsAuthenticated
}

// GetTenantUUID returns the authenticated tenant's public id, or empty string
func GetTenantUUID(c *fiber.Ctx) string {
	return Get(c).TenantUUID
}
