package dto

// SendEmailRequest - тело POST /user/api/send-email
type SendEmailRequest struct {
	ToEmail     string `json:"toEmail" validate:"required,email"`
	ToName      string `json:"toName"`
	Subject     string `json:"subject" validate:"required"`
	HTMLContent string `json:"htmlContent" validate:"required"`
}

type SendEmailResponse struct {
	Message string `json:"message"`
}
