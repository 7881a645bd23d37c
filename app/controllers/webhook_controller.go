package controllers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/launchstack/SubRelay/app/models"
	"github.com/launchstack/SubRelay/internal/pkg/billing"
)

const webhookDispatchTimeout = 15 * time.Second

// webhookDispatcher is the slice of the billing dispatcher the controller
// needs; narrowed for testability.
type webhookDispatcher interface {
	Dispatch(ctx context.Context, delivery billing.Delivery) (billing.DispatchResult, error)
}

// WebhookController exposes the provider webhook endpoints. It owns no
// business logic: it translates HTTP into a Delivery and the DispatchResult
// back into the two-class response contract (rejected at transport vs
// accepted with processed true/false).
type WebhookController struct {
	dispatcher webhookDispatcher
}

func NewWebhookController(dispatcher webhookDispatcher) *WebhookController {
	return &WebhookController{dispatcher: dispatcher}
}

// HandlePolarWebhook handles POST /api/webhooks/polar. The signature is
// computed over the raw request bytes, so the body is captured before any
// parsing.
func (wc *WebhookController) HandlePolarWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)

	delivery := billing.Delivery{
		Provider:  models.BillingProviderPolar,
		Payload:   rawBody,
		Signature: strings.TrimSpace(c.Get("webhook-signature")),
		WebhookID: strings.TrimSpace(c.Get("webhook-id")),
		Timestamp: strings.TrimSpace(c.Get("webhook-timestamp")),
	}
	return wc.respond(c, delivery)
}

// HandleRevenueCatWebhook handles POST /api/webhooks/revenuecat.
func (wc *WebhookController) HandleRevenueCatWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)

	delivery := billing.Delivery{
		Provider:  models.BillingProviderRevenueCat,
		Payload:   rawBody,
		Signature: strings.TrimSpace(c.Get("x-revenuecat-signature")),
	}
	return wc.respond(c, delivery)
}

func (wc *WebhookController) respond(c *fiber.Ctx, delivery billing.Delivery) error {
	ctx, cancel := context.WithTimeout(context.Background(), webhookDispatchTimeout)
	defer cancel()

	result, err := wc.dispatcher.Dispatch(ctx, delivery)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrInvalidSignature):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
		case errors.Is(err, billing.ErrInvalidPayload):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "subscription_sync_failed"})
		}
	}

	body := fiber.Map{"received": true, "processed": result.Processed}
	if !result.Processed && result.Reason != "" {
		body["reason"] = result.Reason
	}
	return c.Status(fiber.StatusOK).JSON(body)
}
