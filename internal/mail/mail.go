package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
	"github.com/netgee-k/mt5-v2/internal/config"
	"go.uber.org/zap"
)

// Sender delivers transactional mail (verification links, password resets)
// over SMTP.
type Sender struct {
	client    *gomail.Client
	fromEmail string
	fromName  string
	logger    *zap.Logger
}

// NewSender creates a new SMTP sender.
func NewSender(cfg *config.SMTP, logger *zap.Logger) (*Sender, error) {
	client, err := gomail.NewClient(cfg.Host,
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.User),
		gomail.WithPassword(cfg.Password),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	return &Sender{
		client:    client,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logger:    logger,
	}, nil
}

// Send delivers one HTML mail.
func (s *Sender) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		s.logger.Error("Failed to send mail", zap.String("to", to), zap.Error(err))
		return fmt.Errorf("failed to send mail: %w", err)
	}

	s.logger.Info("Mail sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

// SendVerification mails an email-verification link.
func (s *Sender) SendVerification(ctx context.Context, to, name, verifyURL string, expireHours int) error {
	body := fmt.Sprintf(`<html><body>
<h2>Email Verification</h2>
<p>Hello %s,</p>
<p>Thank you for registering! Please click the link below to verify your email:</p>
<p><a href="%s">Verify Email</a></p>
<p>This link will expire in %d hours.</p>
<br>
<p>If you didn't create an account, please ignore this email.</p>
</body></html>`, name, verifyURL, expireHours)

	return s.Send(ctx, to, "Verify your email", body)
}

// SendPasswordReset mails a password-reset link.
func (s *Sender) SendPasswordReset(ctx context.Context, to, name, resetURL string) error {
	body := fmt.Sprintf(`<html><body>
<h2>Password Reset Request</h2>
<p>Hello %s,</p>
<p>You requested to reset your password. Click the link below:</p>
<p><a href="%s">Reset Password</a></p>
<p>This link will expire in 1 hour.</p>
<br>
<p>If you didn't request this, please ignore this email.</p>
</body></html>`, name, resetURL)

	return s.Send(ctx, to, "Password reset", body)
}
