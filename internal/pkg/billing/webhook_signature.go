package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// webhookSignatureTolerance bounds how old a signed webhook may be before it
// is rejected as a replay.
const webhookSignatureTolerance = 5 * time.Minute

// VerifyWebhookSignature checks a "t=<unix>,v1=<hex>" signature header against
// HMAC-SHA256 of "<t>.<payload>" with the shared webhook secret.
func VerifyWebhookSignature(payload []byte, signatureHeader, webhookSecret string, now time.Time) bool {
	secret := strings.TrimSpace(webhookSecret)
	header := strings.TrimSpace(signatureHeader)
	if secret == "" || header == "" {
		return false
	}

	var ts string
	var sigs [][]byte
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			ts = v
		case "v1":
			if decoded, err := hex.DecodeString(strings.ToLower(v)); err == nil {
				sigs = append(sigs, decoded)
			}
		}
	}
	if ts == "" || len(sigs) == 0 {
		return false
	}

	tsUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return false
	}
	age := now.Sub(time.Unix(tsUnix, 0))
	if age > webhookSignatureTolerance || age < -webhookSignatureTolerance {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, sig := range sigs {
		if hmac.Equal(expected, sig) {
			return true
		}
	}
	return false
}
