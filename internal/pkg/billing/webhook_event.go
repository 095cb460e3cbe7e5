package billing

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// SubscriptionEvent is the subset of a provider subscription webhook payload
// the sync flow needs.
type SubscriptionEvent struct {
	EventID            string
	EventType          string
	CustomerID         string
	SubscriptionID     string
	PlanRef            string
	Interval           string
	Status             string
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	CancelAtPeriodEnd  bool
}

// CheckoutCompletedEvent links a finished checkout back to a local user via
// the client reference id we set when opening the session.
type CheckoutCompletedEvent struct {
	EventID           string
	CustomerID        string
	ClientReferenceID string
	CustomerEmail     string
}

// IsSubscriptionEvent reports whether the event type carries subscription state.
func IsSubscriptionEvent(eventType string) bool {
	switch strings.ToLower(strings.TrimSpace(eventType)) {
	case "customer.subscription.created", "customer.subscription.updated", "customer.subscription.deleted":
		return true
	default:
		return false
	}
}

// IsCheckoutCompletedEvent reports whether the event finalizes a checkout session.
func IsCheckoutCompletedEvent(eventType string) bool {
	return strings.EqualFold(strings.TrimSpace(eventType), "checkout.session.completed")
}

type webhookEnvelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// ParseWebhookEnvelope extracts the event id and type without touching the payload object.
func ParseWebhookEnvelope(raw []byte) (eventID, eventType string, err error) {
	var env webhookEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", "", err
	}
	return env.ID, env.Type, nil
}

// ParseSubscriptionEvent decodes a customer.subscription.* payload.
func ParseSubscriptionEvent(raw []byte) (*SubscriptionEvent, error) {
	var env webhookEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	if !IsSubscriptionEvent(env.Type) {
		return nil, errors.New("not a subscription event")
	}

	var obj struct {
		ID                 string `json:"id"`
		Customer           string `json:"customer"`
		Status             string `json:"status"`
		CancelAtPeriodEnd  bool   `json:"cancel_at_period_end"`
		CurrentPeriodStart int64  `json:"current_period_start"`
		CurrentPeriodEnd   int64  `json:"current_period_end"`
		Items              struct {
			Data []struct {
				Price struct {
					ID        string `json:"id"`
					Recurring struct {
						Interval string `json:"interval"`
					} `json:"recurring"`
				} `json:"price"`
			} `json:"data"`
		} `json:"items"`
	}
	if err := json.Unmarshal(env.Data.Object, &obj); err != nil {
		return nil, err
	}
	if obj.ID == "" || obj.Customer == "" {
		return nil, errors.New("subscription event missing id or customer")
	}

	ev := &SubscriptionEvent{
		EventID:           env.ID,
		EventType:         env.Type,
		CustomerID:        obj.Customer,
		SubscriptionID:    obj.ID,
		Status:            strings.ToLower(strings.TrimSpace(obj.Status)),
		CancelAtPeriodEnd: obj.CancelAtPeriodEnd,
		Interval:          "unknown",
	}
	if len(obj.Items.Data) > 0 {
		ev.PlanRef = obj.Items.Data[0].Price.ID
		if iv := obj.Items.Data[0].Price.Recurring.Interval; iv != "" {
			ev.Interval = normalizeInterval(iv)
		}
	}
	if obj.CurrentPeriodStart > 0 {
		t := time.Unix(obj.CurrentPeriodStart, 0).UTC()
		ev.CurrentPeriodStart = &t
	}
	if obj.CurrentPeriodEnd > 0 {
		t := time.Unix(obj.CurrentPeriodEnd, 0).UTC()
		ev.CurrentPeriodEnd = &t
	}

	// Deleted subscriptions arrive with their last known status; normalize.
	if strings.EqualFold(env.Type, "customer.subscription.deleted") {
		ev.Status = "canceled"
	}

	return ev, nil
}

// ParseCheckoutCompletedEvent decodes a checkout.session.completed payload.
func ParseCheckoutCompletedEvent(raw []byte) (*CheckoutCompletedEvent, error) {
	var env webhookEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	if !IsCheckoutCompletedEvent(env.Type) {
		return nil, errors.New("not a checkout completion event")
	}

	var obj struct {
		Customer          string `json:"customer"`
		ClientReferenceID string `json:"client_reference_id"`
		CustomerEmail     string `json:"customer_email"`
	}
	if err := json.Unmarshal(env.Data.Object, &obj); err != nil {
		return nil, err
	}
	if obj.Customer == "" {
		return nil, errors.New("checkout event missing customer")
	}

	return &CheckoutCompletedEvent{
		EventID:           env.ID,
		CustomerID:        obj.Customer,
		ClientReferenceID: obj.ClientReferenceID,
		CustomerEmail:     obj.CustomerEmail,
	}, nil
}

// UserIDFromClientReference parses the "user-<id>" reference set at checkout.
func UserIDFromClientReference(ref string) (uint, bool) {
	ref = strings.TrimSpace(ref)
	if !strings.HasPrefix(ref, "user-") {
		return 0, false
	}
	digits := strings.TrimPrefix(ref, "user-")
	if digits == "" {
		return 0, false
	}
	var id uint64
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
		id = id*10 + uint64(r-'0')
	}
	if id == 0 {
		return 0, false
	}
	return uint(id), true
}
