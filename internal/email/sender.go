package email

import (
	"kronus_crm_backend/internal/config"
	"kronus_crm_backend/platform/logger"
)

// NewSender picks the delivery implementation from config: SMTP when email is
// enabled, a logging no-op otherwise.
func NewSender(cfg *config.Config, log *logger.Logger) Sender {
	if !cfg.EmailEnabled {
		return NewNoopSender(log)
	}
	return NewSMTPSender(
		cfg.SMTPHost,
		cfg.SMTPPort,
		cfg.SMTPUsername,
		cfg.SMTPPassword,
		cfg.EmailFromAddress,
		cfg.EmailFromName,
	)
}
