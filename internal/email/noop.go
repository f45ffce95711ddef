package email

import (
	"context"

	"kronus_crm_backend/platform/logger"
)

// NoopSender is used when email delivery is disabled. It logs what would have
// been sent so local development still shows notification flow.
type NoopSender struct {
	log *logger.Logger
}

func NewNoopSender(log *logger.Logger) *NoopSender {
	return &NoopSender{log: log}
}

func (s *NoopSender) SendAssignmentEmail(_ context.Context, toEmail, _, leadName, _, _ string) error {
	s.log.Info("email disabled, skipping assignment email", "to", toEmail, "lead", leadName)
	return nil
}

func (s *NoopSender) SendFollowUpDigestEmail(_ context.Context, toEmail, _, window string, leads []DigestLead) error {
	s.log.Info("email disabled, skipping follow-up digest", "to", toEmail, "window", window, "leads", len(leads))
	return nil
}

func (s *NoopSender) SendWelcomeEmail(_ context.Context, toEmail, _, _, _ string) error {
	s.log.Info("email disabled, skipping welcome email", "to", toEmail)
	return nil
}

var _ Sender = (*NoopSender)(nil)
