package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// VerifyPolarWebhookSignature checks a Polar webhook signature. Polar signs
// deliveries per the standard-webhooks scheme: HMAC-SHA256 over
// "{webhook-id}.{webhook-timestamp}.{body}" with a base64 secret that may be
// prefixed "whsec_". The signature header carries one or more space-separated
// "v1,<base64>" entries.
func VerifyPolarWebhookSignature(payload []byte, signatureHeader, webhookID, timestamp, webhookSecret string) bool {
	sig := strings.TrimSpace(signatureHeader)
	id := strings.TrimSpace(webhookID)
	ts := strings.TrimSpace(timestamp)
	secret := strings.TrimSpace(webhookSecret)
	if sig == "" || id == "" || ts == "" || secret == "" {
		return false
	}

	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, "whsec_"))
	if err != nil {
		// Secrets handed over un-encoded are used as-is.
		key = []byte(strings.TrimPrefix(secret, "whsec_"))
	}

	signedContent := id + "." + ts + "."
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(signedContent))
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, part := range strings.Fields(sig) {
		candidate := part
		if idx := strings.IndexByte(part, ','); idx >= 0 {
			if part[:idx] != "v1" {
				continue
			}
			candidate = part[idx+1:]
		}
		decoded, err := base64.StdEncoding.DecodeString(candidate)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			return true
		}
	}
	return false
}

// VerifyRevenueCatWebhookSignature checks a RevenueCat webhook signature:
// HMAC-SHA256 over the raw body. Hex and base64 signature encodings are both
// accepted since configured integrations differ.
func VerifyRevenueCatWebhookSignature(payload []byte, signatureHeader, webhookSecret string) bool {
	sig := strings.TrimSpace(signatureHeader)
	secret := strings.TrimSpace(webhookSecret)
	if sig == "" || secret == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := mac.Sum(nil)

	if decoded, err := hex.DecodeString(strings.ToLower(sig)); err == nil && hmac.Equal(decoded, expected) {
		return true
	}
	if decoded, err := base64.StdEncoding.DecodeString(sig); err == nil && hmac.Equal(decoded, expected) {
		return true
	}
	return false
}
