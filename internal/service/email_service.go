package service

import (
	"log/slog"
	"strings"
)

// EmailService simulates outbound delivery: every message is logged and
// reported as sent. Wiring a real SMTP relay is a deployment concern; the
// handlers only depend on this contract.
type EmailService struct{}

func NewEmailService() *EmailService {
	return &EmailService{}
}

func (s *EmailService) Send(to string, subject string, body string) {
	slog.Info("mock email delivered", "to", to, "subject", subject, "bytes", len(body))
}

// ShareDashboard fans the message out to each comma-separated recipient and
// returns how many were addressed.
func (s *EmailService) ShareDashboard(recipients string, subject string, message string, dashboardLink string) int {
	body := message + "\n\nDashboard link: " + dashboardLink

	sent := 0
	for _, recipient := range strings.Split(recipients, ",") {
		recipient = strings.TrimSpace(recipient)
		if recipient == "" {
			continue
		}
		s.Send(recipient, subject, body)
		sent++
	}
	return sent
}

func (s *EmailService) SendPasswordReset(email string) {
	s.Send(email, "Password reset", "A password reset was requested for this address.")
}
