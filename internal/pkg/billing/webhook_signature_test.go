package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"
)

func signWebhook(payload []byte, secret string, at time.Time) string {
	ts := fmt.Sprintf("%d", at.Unix())
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifyWebhookSignature(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"subscription.updated"}`)
	secret := "whsec_test"
	now := time.Now()

	header := signWebhook(payload, secret, now)
	if !VerifyWebhookSignature(payload, header, secret, now) {
		t.Fatalf("expected valid signature to verify")
	}

	if VerifyWebhookSignature([]byte(`tampered`), header, secret, now) {
		t.Fatalf("tampered payload must not verify")
	}
	if VerifyWebhookSignature(payload, header, "other_secret", now) {
		t.Fatalf("wrong secret must not verify")
	}
	if VerifyWebhookSignature(payload, "", secret, now) {
		t.Fatalf("empty header must not verify")
	}
	if VerifyWebhookSignature(payload, header, "", now) {
		t.Fatalf("empty secret must not verify")
	}
}

func TestVerifyWebhookSignatureRejectsReplay(t *testing.T) {
	payload := []byte(`{"id":"evt_2"}`)
	secret := "whsec_test"
	signedAt := time.Now().Add(-webhookSignatureTolerance - time.Minute)

	header := signWebhook(payload, secret, signedAt)
	if VerifyWebhookSignature(payload, header, secret, time.Now()) {
		t.Fatalf("stale signature must not verify")
	}
}

func TestVerifyWebhookSignatureMalformedHeader(t *testing.T) {
	payload := []byte(`{}`)
	secret := "whsec_test"

	for _, header := range []string{"v1=deadbeef", "t=123", "t=abc,v1=zz", "nonsense"} {
		if VerifyWebhookSignature(payload, header, secret, time.Now()) {
			t.Fatalf("malformed header %q must not verify", header)
		}
	}
}
