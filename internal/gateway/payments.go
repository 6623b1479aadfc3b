package gateway

import (
	"context"
	"math"
	"net/http"
	"net/url"
)

const (
	BillingTypeCreditCard = "CREDIT_CARD"
	BillingTypePix        = "PIX"
)

// ChargeCardInput - разовое списание с токенизированной карты
type ChargeCardInput struct {
	CustomerID        string  `validate:"required"`
	CardToken         string  `validate:"required"`
	Value             float64 `validate:"gt=0"`
	Description       string
	ExternalReference string
	// InstallmentCount > 1 включает оплату в рассрочку
	InstallmentCount int     `validate:"gte=0"`
	InstallmentValue float64 `validate:"gte=0"`
	RemoteIP         string  `validate:"required"`
}

type chargeCardRequest struct {
	Customer          string   `json:"customer"`
	BillingType       string   `json:"billingType"`
	DueDate           string   `json:"dueDate"`
	Value             *float64 `json:"value,omitempty"`
	InstallmentCount  int      `json:"installmentCount,omitempty"`
	InstallmentValue  *float64 `json:"installmentValue,omitempty"`
	Description       string   `json:"description"`
	ExternalReference string   `json:"externalReference,omitempty"`
	PostalService     bool     `json:"postalService"`
	CreditCardToken   string   `json:"creditCardToken"`
	RemoteIP          string   `json:"remoteIp"`
}

// ChargeCard - POST payments (CREDIT_CARD), списание на следующий день
func (c *Client) ChargeCard(ctx context.Context, in ChargeCardInput) (*Response, error) {
	if err := c.validate("charge_card", in); err != nil {
		return nil, err
	}

	payload := chargeCardRequest{
		Customer:          in.CustomerID,
		BillingType:       BillingTypeCreditCard,
		DueDate:           c.tomorrow(),
		Description:       in.Description,
		ExternalReference: in.ExternalReference,
		PostalService:     false,
		CreditCardToken:   in.CardToken,
		RemoteIP:          in.RemoteIP,
	}

	if in.InstallmentCount > 1 {
		installment := in.InstallmentValue
		if installment == 0 {
			installment = math.Round(in.Value/float64(in.InstallmentCount)*100) / 100
		}
		payload.InstallmentCount = in.InstallmentCount
		payload.InstallmentValue = &installment
	} else {
		value := in.Value
		payload.Value = &value
	}

	return c.do(ctx, "charge_card", http.MethodPost, "payments", nil, payload)
}

// ChargePixInput - разовый платеж через PIX
type ChargePixInput struct {
	CustomerID        string  `validate:"required"`
	Value             float64 `validate:"gt=0"`
	Description       string
	ExternalReference string
	CpfCnpj           string
}

type chargePixRequest struct {
	Customer                                   string  `json:"customer"`
	BillingType                                string  `json:"billingType"`
	DueDate                                    string  `json:"dueDate"`
	Value                                      float64 `json:"value"`
	Description                                string  `json:"description"`
	ExternalReference                          string  `json:"externalReference,omitempty"`
	DaysAfterDueDateToCancellationRegistration int     `json:"daysAfterDueDateToCancellationRegistration"`
	CpfCnpj                                    string  `json:"cpfCnpj,omitempty"`
	PostalService                              bool    `json:"postalService"`
}

// ChargePix - POST payments (PIX)
func (c *Client) ChargePix(ctx context.Context, in ChargePixInput) (*Response, error) {
	if err := c.validate("charge_pix", in); err != nil {
		return nil, err
	}

	payload := chargePixRequest{
		Customer:          in.CustomerID,
		BillingType:       BillingTypePix,
		DueDate:           c.tomorrow(),
		Value:             in.Value,
		Description:       in.Description,
		ExternalReference: in.ExternalReference,
		CpfCnpj:           in.CpfCnpj,
		PostalService:     false,
	}
	payload.DaysAfterDueDateToCancellationRegistration = 1

	return c.do(ctx, "charge_pix", http.MethodPost, "payments", nil, payload)
}

// PixQRCode - GET payments/{id}/pixQrCode
func (c *Client) PixQRCode(ctx context.Context, paymentID string) (*Response, error) {
	if paymentID == "" {
		return nil, &InputError{Operation: "pix_qrcode", Err: errMissing("paymentId")}
	}
	return c.do(ctx, "pix_qrcode", http.MethodGet, "payments/"+url.PathEscape(paymentID)+"/pixQrCode", nil, nil)
}

// PaymentStatus - GET payments/{id}/status
func (c *Client) PaymentStatus(ctx context.Context, paymentID string) (*Response, error) {
	if paymentID == "" {
		return nil, &InputError{Operation: "payment_status", Err: errMissing("paymentId")}
	}
	return c.do(ctx, "payment_status", http.MethodGet, "payments/"+url.PathEscape(paymentID)+"/status", nil, nil)
}
