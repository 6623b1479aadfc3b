package services

import (
	"context"
	"net/http"

	"dealvalue_backend/internal/email"
	"dealvalue_backend/internal/logger"
	"dealvalue_backend/internal/services/dto"
	"dealvalue_backend/pkg/apperrors"
)

// EmailService предоставляет высокоуровневый интерфейс для отправки писем
type EmailService struct {
	provider  email.Provider
	fromEmail string
	fromName  string
}

// NewEmailService создает новый экземпляр EmailService
func NewEmailService(provider email.Provider, fromEmail, fromName string) *EmailService {
	return &EmailService{
		provider:  provider,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

// Send отправляет HTML письмо одному получателю
func (s *EmailService) Send(ctx context.Context, req *dto.SendEmailRequest) (*dto.SendEmailResponse, error) {
	msg := &email.Email{
		FromEmail: s.fromEmail,
		FromName:  s.fromName,
		ToEmail:   req.ToEmail,
		ToName:    req.ToName,
		Subject:   req.Subject,
		HTMLBody:  req.HTMLContent,
	}

	if err := s.provider.Send(ctx, msg); err != nil {
		logger.CtxWithError(ctx, "Email sending failed", err, "to", req.ToEmail)
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, apperrors.DomainEmail,
			"Failed to send email", http.StatusInternalServerError).WithDetails(err.Error())
	}

	logger.CtxInfo(ctx, "Email sent", "to", req.ToEmail, "subject", req.Subject)
	return &dto.SendEmailResponse{Message: "Email sent successfully"}, nil
}
