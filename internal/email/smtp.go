package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements Sender using a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendAssignmentEmail(ctx context.Context, toEmail, agentName, leadName, assignedBy, leadURL string) error {
	subject := fmt.Sprintf(subjectAssignmentFmt, leadName)
	content, err := renderEmailTemplate("assignment.html", assignmentEmailData{
		baseEmailData: baseEmailData{
			Title:    "New lead assigned",
			Heading:  "New lead assigned",
			CTALabel: "Open lead",
			CTAURL:   leadURL,
		},
		AgentName:  agentName,
		LeadName:   leadName,
		AssignedBy: assignedBy,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendFollowUpDigestEmail(ctx context.Context, toEmail, agentName, window string, leads []DigestLead) error {
	subjectFmt := subjectDigestTodayFmt
	heading := "Follow-ups due today"
	if window == "tomorrow" {
		subjectFmt = subjectDigestTomorrowFmt
		heading = "Follow-ups due tomorrow"
	}
	subject := fmt.Sprintf(subjectFmt, len(leads))

	content, err := renderEmailTemplate("followup_digest.html", followUpDigestEmailData{
		baseEmailData: baseEmailData{
			Title:   heading,
			Heading: heading,
		},
		AgentName: agentName,
		Window:    window,
		Leads:     leads,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendWelcomeEmail(ctx context.Context, toEmail, userName, tempPassword, signInURL string) error {
	content, err := renderEmailTemplate("welcome.html", welcomeEmailData{
		baseEmailData: baseEmailData{
			Title:    "Welcome to Kronus CRM",
			Heading:  "Welcome to Kronus CRM",
			CTALabel: "Sign in",
			CTAURL:   signInURL,
		},
		UserName:     userName,
		TempPassword: tempPassword,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectWelcome, content)
}

var _ Sender = (*SMTPSender)(nil)
