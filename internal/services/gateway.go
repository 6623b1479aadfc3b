package services

import (
	"context"
	"encoding/json"
	"errors"

	"dealvalue_backend/internal/gateway"
	"dealvalue_backend/internal/models"
)

// PaymentGateway - операции платежного шлюза, нужные сервисам
type PaymentGateway interface {
	RegisterCustomer(ctx context.Context, in gateway.CustomerInput) (*gateway.Response, error)
	DeleteCustomer(ctx context.Context, customerID string) (*gateway.Response, error)
	TokenizeCard(ctx context.Context, in gateway.TokenizeInput) (*gateway.Response, error)
	ChargeCard(ctx context.Context, in gateway.ChargeCardInput) (*gateway.Response, error)
	ChargePix(ctx context.Context, in gateway.ChargePixInput) (*gateway.Response, error)
	PixQRCode(ctx context.Context, paymentID string) (*gateway.Response, error)
	PaymentStatus(ctx context.Context, paymentID string) (*gateway.Response, error)
	CreateSubscription(ctx context.Context, in gateway.SubscriptionInput) (*gateway.Response, error)
	CancelSubscription(ctx context.Context, subscriptionID string) (*gateway.Response, error)
	CreateSubaccount(ctx context.Context, in gateway.SubaccountInput) (*gateway.Response, error)
	RecoverSubaccount(ctx context.Context, email string) (*gateway.Response, error)
}

var _ PaymentGateway = (*gateway.Client)(nil)

var errNoSubaccount = errors.New("no sub-account found for email")

// gatewayData - тело ответа шлюза в виде, пригодном для хранения
func gatewayData(res *gateway.Response) (models.GatewayData, error) {
	m, err := res.Map()
	if err != nil {
		return nil, err
	}
	return models.GatewayData(m), nil
}

// firstAccount достает первый субаккаунт из ответа GET accounts?email=
func firstAccount(res *gateway.Response) (models.GatewayData, error) {
	var list struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(res.Body, &list); err != nil {
		return nil, err
	}
	if len(list.Data) == 0 {
		return nil, errNoSubaccount
	}
	return models.GatewayData(list.Data[0]), nil
}
