package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"testing"
)

func polarSign(payload []byte, webhookID, timestamp string, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(webhookID + "." + timestamp + "."))
	mac.Write(payload)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifyPolarWebhookSignature(t *testing.T) {
	payload := []byte(`{"type":"subscription.created","data":{"id":"sub_1"}}`)
	key := []byte("polar-signing-key")
	secret := "whsec_" + base64.StdEncoding.EncodeToString(key)
	webhookID := "msg_2Ku806jlnn"
	timestamp := "1756339200"

	sig := "v1," + polarSign(payload, webhookID, timestamp, key)

	if !VerifyPolarWebhookSignature(payload, sig, webhookID, timestamp, secret) {
		t.Fatalf("expected signature to validate")
	}
	if !VerifyPolarWebhookSignature(payload, "v2,bogus "+sig, webhookID, timestamp, secret) {
		t.Fatalf("expected multi-entry header with a valid v1 entry to validate")
	}
	if VerifyPolarWebhookSignature(payload, sig, "msg_other", timestamp, secret) {
		t.Fatalf("expected mismatched webhook id to fail")
	}
	if VerifyPolarWebhookSignature(payload, sig, webhookID, "1756339201", secret) {
		t.Fatalf("expected mismatched timestamp to fail")
	}
	if VerifyPolarWebhookSignature([]byte(`{"tampered":true}`), sig, webhookID, timestamp, secret) {
		t.Fatalf("expected tampered payload to fail")
	}
	if VerifyPolarWebhookSignature(payload, "v1,ZGVhZGJlZWY=", webhookID, timestamp, secret) {
		t.Fatalf("expected wrong signature to fail")
	}
}

func TestVerifyPolarWebhookSignature_UnencodedSecret(t *testing.T) {
	payload := []byte(`{"type":"subscription.updated"}`)
	// Secret that does not decode as base64 is used as the raw key.
	secret := "plain-text-secret!"
	webhookID := "msg_raw"
	timestamp := "1756339300"

	sig := "v1," + polarSign(payload, webhookID, timestamp, []byte(secret))
	if !VerifyPolarWebhookSignature(payload, sig, webhookID, timestamp, secret) {
		t.Fatalf("expected raw secret fallback to validate")
	}
}

func TestVerifyPolarWebhookSignature_MissingInputs(t *testing.T) {
	payload := []byte(`{}`)
	if VerifyPolarWebhookSignature(payload, "", "id", "1", "secret") {
		t.Fatalf("expected empty signature header to fail")
	}
	if VerifyPolarWebhookSignature(payload, "v1,abc", "", "1", "secret") {
		t.Fatalf("expected empty webhook id to fail")
	}
	if VerifyPolarWebhookSignature(payload, "v1,abc", "id", "", "secret") {
		t.Fatalf("expected empty timestamp to fail")
	}
	if VerifyPolarWebhookSignature(payload, "v1,abc", "id", "1", "") {
		t.Fatalf("expected empty secret to fail")
	}
}

func TestVerifyRevenueCatWebhookSignature(t *testing.T) {
	payload := []byte(`{"api_version":"1.0","event":{"type":"RENEWAL"}}`)
	secret := "rc-shared-secret"

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	sum := mac.Sum(nil)

	hexSig := hex.EncodeToString(sum)
	if !VerifyRevenueCatWebhookSignature(payload, hexSig, secret) {
		t.Fatalf("expected hex signature to validate")
	}

	b64Sig := base64.StdEncoding.EncodeToString(sum)
	if !VerifyRevenueCatWebhookSignature(payload, b64Sig, secret) {
		t.Fatalf("expected base64 signature to validate")
	}

	if VerifyRevenueCatWebhookSignature(payload, hexSig, "wrong-secret") {
		t.Fatalf("expected wrong secret to fail")
	}
	if VerifyRevenueCatWebhookSignature([]byte(`{"tampered":true}`), hexSig, secret) {
		t.Fatalf("expected tampered payload to fail")
	}
	if VerifyRevenueCatWebhookSignature(payload, "", secret) {
		t.Fatalf("expected empty signature to fail")
	}
	if VerifyRevenueCatWebhookSignature(payload, hexSig, "") {
		t.Fatalf("expected empty secret to fail")
	}
}
