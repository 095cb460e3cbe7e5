package mail

import (
	"fmt"
	"strings"

	"github.com/postwiselab/Postwise/internal/pkg/env"
)

func publicBaseURL() string {
	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	if base == "" {
		base = "http://localhost:" + env.GetEnv("APP_PORT", "4000")
	}
	return base
}

// SendActivationMail sends the account activation link.
func SendActivationMail(to, name, token string) error {
	link := fmt.Sprintf("%s/activate?token=%s", publicBaseURL(), token)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>welcome to Postwise. Click the link below to activate your account:</p><p><a href=\"%s\">%s</a></p>",
		name, link, link,
	)
	return SendMail(to, "Activate your Postwise account", body)
}

// SendTeamInviteMail notifies an invitee about a pending team seat.
func SendTeamInviteMail(to, ownerName, role string) error {
	body := fmt.Sprintf(
		"<p>%s invited you to their Postwise team as %s.</p><p>Sign in at <a href=\"%s\">%s</a> to accept the invite.</p>",
		ownerName, role, publicBaseURL(), publicBaseURL(),
	)
	return SendMail(to, "You have been invited to a Postwise team", body)
}
