package controllers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/postwiselab/Postwise/internal/pkg/database"
	"github.com/postwiselab/Postwise/internal/pkg/entitlements"
	"github.com/postwiselab/Postwise/internal/pkg/featuregate"
	"github.com/postwiselab/Postwise/internal/pkg/session"
	"github.com/postwiselab/Postwise/internal/pkg/trial"
	"github.com/postwiselab/Postwise/internal/pkg/usercontext"
)

// Session/Locals keys shared with the middlewares
const (
	AUTH_KEY       string = "authenticated"
	USER_ID        string = "user_id"
	USER_NAME      string = "username"
	USER_IS_ADMIN  string = "isAdmin"
	FROM_PROTECTED string = "from_protected"
)

func isLoggedIn(c *fiber.Ctx) bool {
	var fromProtected bool
	if protectedValue := c.Locals(FROM_PROTECTED); protectedValue != nil {
		fromProtected = protectedValue.(bool)
	}

	return fromProtected
}

// ExtractUsername gets the username from Locals (set by middleware)
func ExtractUsername(c *fiber.Ctx) string {
	if userNameValue := c.Locals(USER_NAME); userNameValue != nil {
		if userName, ok := userNameValue.(string); ok {
			return userName
		}
	}

	return ""
}

// GetClientIP determines the actual client IP address considering proxies and dual stack
func GetClientIP(c *fiber.Ctx) (string, string) {
	ipv4 := ""
	ipv6 := ""

	// Cloudflare passes the original client IP through its own header
	cfIP := c.Get("CF-Connecting-IP")
	if cfIP != "" {
		if strings.Contains(cfIP, ":") {
			ipv6 = cfIP
		} else {
			ipv4 = cfIP
		}
		return ipv4, ipv6
	}

	// X-Forwarded-For can contain a list of IPs - the first one is the original client
	xff := c.Get("X-Forwarded-For")
	if xff != "" {
		clientIP := strings.TrimSpace(strings.Split(xff, ",")[0])
		if strings.Contains(clientIP, ":") {
			ipv6 = clientIP
		} else {
			ipv4 = clientIP
		}
		return ipv4, ipv6
	}

	ipAddr := c.IP()
	if strings.Contains(ipAddr, ":") {
		if strings.Contains(ipAddr, ".") && strings.HasPrefix(ipAddr, "::ffff:") {
			// IPv4 address in IPv6 mapping (::ffff:192.168.1.1)
			ipv4 = strings.TrimPrefix(ipAddr, "::ffff:")
		} else {
			ipv6 = ipAddr
		}
	} else {
		ipv4 = ipAddr
	}

	return ipv4, ipv6
}

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func previewSessionKey(feature entitlements.Feature) string {
	return "preview_chosen:" + string(feature)
}

// gateFor re-enters the gate for one feature on the current request: the plan
// comes from the user context, the trial status from the ledger (fail-closed)
// and a previously chosen preview is restored from the session.
func gateFor(c *fiber.Ctx, feature entitlements.Feature) *featuregate.Machine {
	userCtx := usercontext.GetUserContext(c)
	plan := entitlements.NormalizePlan(userCtx.Plan)

	ledger := trial.NewLedger(trial.NewRepository(database.GetDB()))
	status, _ := ledger.FetchStatus(userCtx.UserID)

	previewChosen := session.GetSessionValue(c, previewSessionKey(feature)) == "1"
	return featuregate.Resume(feature, plan, status, previewChosen)
}

// respondLocked renders the upsell envelope for a locked gate.
func respondLocked(c *fiber.Ctx, m *featuregate.Machine) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"error":   "feature_locked",
		"message": "This feature is not included in your plan",
		"feature": m.Feature(),
		"state":   m.State(),
		"actions": m.Actions(),
	})
}

// gateEnvelope is the metadata every gated screen response carries so the
// frontend can render the preview banner and upsell actions.
func gateEnvelope(m *featuregate.Machine) fiber.Map {
	return fiber.Map{
		"feature": m.Feature(),
		"state":   m.State(),
		"preview": m.State() == featuregate.StatePreview,
		"actions": m.Actions(),
	}
}
