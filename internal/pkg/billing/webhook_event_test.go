package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const subscriptionPayload = `{
  "id": "evt_1",
  "type": "customer.subscription.updated",
  "data": {
    "object": {
      "id": "sub_123",
      "customer": "cus_9",
      "status": "Active",
      "cancel_at_period_end": true,
      "current_period_start": 1735689600,
      "current_period_end": 1738368000,
      "items": {
        "data": [
          {"price": {"id": "price_pro_m", "recurring": {"interval": "month"}}}
        ]
      }
    }
  }
}`

func TestParseSubscriptionEvent(t *testing.T) {
	ev, err := ParseSubscriptionEvent([]byte(subscriptionPayload))
	require.NoError(t, err)

	assert.Equal(t, "evt_1", ev.EventID)
	assert.Equal(t, "cus_9", ev.CustomerID)
	assert.Equal(t, "sub_123", ev.SubscriptionID)
	assert.Equal(t, "price_pro_m", ev.PlanRef)
	assert.Equal(t, "month", ev.Interval)
	assert.Equal(t, "active", ev.Status)
	assert.True(t, ev.CancelAtPeriodEnd)
	require.NotNil(t, ev.CurrentPeriodStart)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), ev.CurrentPeriodStart.UTC())
}

func TestParseSubscriptionEventDeletedNormalizesStatus(t *testing.T) {
	payload := `{"id":"evt_2","type":"customer.subscription.deleted","data":{"object":{"id":"sub_1","customer":"cus_1","status":"active"}}}`

	ev, err := ParseSubscriptionEvent([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, "canceled", ev.Status)
	assert.Equal(t, "unknown", ev.Interval)
	assert.Empty(t, ev.PlanRef)
}

func TestParseSubscriptionEventRejectsOtherTypes(t *testing.T) {
	payload := `{"id":"evt_3","type":"invoice.paid","data":{"object":{}}}`

	_, err := ParseSubscriptionEvent([]byte(payload))
	assert.Error(t, err)
}

func TestParseSubscriptionEventMissingFields(t *testing.T) {
	payload := `{"id":"evt_4","type":"customer.subscription.created","data":{"object":{"status":"active"}}}`

	_, err := ParseSubscriptionEvent([]byte(payload))
	assert.Error(t, err)
}

func TestParseCheckoutCompletedEvent(t *testing.T) {
	payload := `{"id":"evt_5","type":"checkout.session.completed","data":{"object":{"customer":"cus_7","client_reference_id":"user-42","customer_email":"a@b.com"}}}`

	ev, err := ParseCheckoutCompletedEvent([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, "cus_7", ev.CustomerID)
	assert.Equal(t, "user-42", ev.ClientReferenceID)
	assert.Equal(t, "a@b.com", ev.CustomerEmail)
}

func TestParseWebhookEnvelope(t *testing.T) {
	id, typ, err := ParseWebhookEnvelope([]byte(`{"id":"evt_9","type":"invoice.paid","data":{"object":{}}}`))
	require.NoError(t, err)
	assert.Equal(t, "evt_9", id)
	assert.Equal(t, "invoice.paid", typ)

	_, _, err = ParseWebhookEnvelope([]byte("not-json"))
	assert.Error(t, err)
}

func TestUserIDFromClientReference(t *testing.T) {
	id, ok := UserIDFromClientReference("user-42")
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)

	for _, ref := range []string{"", "user-", "user-0", "user-4a", "customer-42"} {
		_, ok := UserIDFromClientReference(ref)
		assert.False(t, ok, ref)
	}
}
