package constants

// Static route constants
const (
	PolarWebhookRoute      = "/api/webhooks/polar"
	RevenueCatWebhookRoute = "/api/webhooks/revenuecat"
	HealthRoute            = "/healthz"
	MetricsRoute           = "/metrics"
)
