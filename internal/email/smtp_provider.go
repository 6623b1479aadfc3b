package email

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"
)

// dialer - то, что нужно от gomail.Dialer
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPProvider реализует Provider для SMTP через gomail
type SMTPProvider struct {
	config *SMTPConfig
	dialer dialer
}

// NewSMTPProvider создает новый SMTP провайдер
func NewSMTPProvider(config *SMTPConfig) *SMTPProvider {
	return &SMTPProvider{
		config: config,
		dialer: gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
	}
}

// Send отправляет email сообщение
func (p *SMTPProvider) Send(ctx context.Context, email *Email) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := p.dialer.DialAndSend(p.buildMessage(email)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", email.ToEmail, err)
	}
	return nil
}

func (p *SMTPProvider) buildMessage(email *Email) *gomail.Message {
	fromEmail, fromName := email.FromEmail, email.FromName
	if fromEmail == "" {
		fromEmail, fromName = p.config.FromEmail, p.config.FromName
	}

	m := gomail.NewMessage()
	if fromName != "" {
		m.SetAddressHeader("From", fromEmail, fromName)
	} else {
		m.SetHeader("From", fromEmail)
	}
	if email.ToName != "" {
		m.SetAddressHeader("To", email.ToEmail, email.ToName)
	} else {
		m.SetHeader("To", email.ToEmail)
	}
	m.SetHeader("Subject", email.Subject)

	switch {
	case email.HTMLBody != "" && email.TextBody != "":
		m.SetBody("text/plain", email.TextBody)
		m.AddAlternative("text/html", email.HTMLBody)
	case email.HTMLBody != "":
		m.SetBody("text/html", email.HTMLBody)
	default:
		m.SetBody("text/plain", email.TextBody)
	}
	return m
}

// Validate проверяет конфигурацию провайдера
func (p *SMTPProvider) Validate() error {
	if p.config == nil {
		return errors.New("smtp config is nil")
	}
	if p.config.Host == "" {
		return errors.New("smtp host is required")
	}
	if p.config.Port <= 0 {
		return errors.New("smtp port must be positive")
	}
	if p.config.FromEmail == "" {
		return errors.New("sender email is required")
	}
	return nil
}

// Close - gomail открывает соединение на каждую отправку
func (p *SMTPProvider) Close() error {
	return nil
}
