// Package email renders and delivers transactional email for the CRM.
package email

import "context"

// DigestLead is one row in a follow-up digest email.
type DigestLead struct {
	Name         string
	Property     string
	Phone        string
	Status       string
	Priority     string
	FollowUpDate string
	URL          string
}

// Sender delivers rendered emails. Implementations must be safe for
// concurrent use.
type Sender interface {
	// SendAssignmentEmail notifies an agent that a lead was assigned to them.
	SendAssignmentEmail(ctx context.Context, toEmail, agentName, leadName, assignedBy, leadURL string) error

	// SendFollowUpDigestEmail sends an agent their follow-up digest for a
	// window ("today" or "tomorrow").
	SendFollowUpDigestEmail(ctx context.Context, toEmail, agentName, window string, leads []DigestLead) error

	// SendWelcomeEmail sends a newly provisioned user their temporary
	// password and a sign-in link.
	SendWelcomeEmail(ctx context.Context, toEmail, userName, tempPassword, signInURL string) error
}
