package gateway

import (
	"context"
	"net/http"
	"net/url"
)

const CycleMonthly = "MONTHLY"

// Split - доля платежа, уходящая на кошелек партнера
type Split struct {
	WalletID          string  `json:"walletId" validate:"required"`
	PercentualValue   float64 `json:"percentualValue" validate:"gt=0,lte=100"`
	ExternalReference string  `json:"externalReference"`
	Description       string  `json:"description"`
}

// SubscriptionInput - данные для создания подписки.
// Split == nil означает подписку без разделения платежа.
type SubscriptionInput struct {
	CustomerID  string  `validate:"required"`
	CardToken   string  `validate:"required"`
	Value       float64 `validate:"gte=0"`
	NextDueDate string  `validate:"required,datetime=2006-01-02"`
	Cycle       string  `validate:"is-billing-cycle"`
	Description string
	RemoteIP    string `validate:"required"`
	Split       *Split `validate:"omitempty"`
}

type subscriptionRequest struct {
	BillingType     string  `json:"billingType"`
	Cycle           string  `json:"cycle"`
	Customer        string  `json:"customer"`
	Value           float64 `json:"value"`
	NextDueDate     string  `json:"nextDueDate"`
	Description     string  `json:"description"`
	CreditCardToken string  `json:"creditCardToken"`
	Split           []Split `json:"split,omitempty"`
	RemoteIP        string  `json:"remoteIp"`
}

// CreateSubscription - POST subscriptions
func (c *Client) CreateSubscription(ctx context.Context, in SubscriptionInput) (*Response, error) {
	if err := c.validate("create_subscription", in); err != nil {
		return nil, err
	}
	if in.Cycle == "" {
		in.Cycle = CycleMonthly
	}

	payload := subscriptionRequest{
		BillingType:     BillingTypeCreditCard,
		Cycle:           in.Cycle,
		Customer:        in.CustomerID,
		Value:           in.Value,
		NextDueDate:     in.NextDueDate,
		Description:     in.Description,
		CreditCardToken: in.CardToken,
		RemoteIP:        in.RemoteIP,
	}
	if in.Split != nil {
		payload.Split = []Split{*in.Split}
	}

	return c.do(ctx, "create_subscription", http.MethodPost, "subscriptions", nil, payload)
}

// CancelSubscription - DELETE subscriptions/{id}
func (c *Client) CancelSubscription(ctx context.Context, subscriptionID string) (*Response, error) {
	if subscriptionID == "" {
		return nil, &InputError{Operation: "cancel_subscription", Err: errMissing("subscriptionId")}
	}
	return c.do(ctx, "cancel_subscription", http.MethodDelete, "subscriptions/"+url.PathEscape(subscriptionID), nil, nil)
}
