package gateway

import (
	"context"
	"net/http"
	"net/url"
)

// CustomerInput - данные для регистрации клиента в шлюзе
type CustomerInput struct {
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone"`
	MobilePhone   string `json:"mobilePhone"`
	CpfCnpj       string `json:"cpfCnpj" validate:"required"`
	PostalCode    string `json:"postalCode"`
	Address       string `json:"address"`
	AddressNumber string `json:"addressNumber"`
	Complement    string `json:"complement"`
	Province      string `json:"province"`
}

type customerRequest struct {
	CustomerInput
	ExternalReference    string `json:"externalReference"`
	NotificationDisabled bool   `json:"notificationDisabled"`
	Observations         string `json:"observations"`
}

// RegisterCustomer - POST customers
func (c *Client) RegisterCustomer(ctx context.Context, in CustomerInput) (*Response, error) {
	if err := c.validate("register_customer", in); err != nil {
		return nil, err
	}
	if in.Complement == "" {
		in.Complement = " "
	}

	payload := customerRequest{
		CustomerInput:        in,
		ExternalReference:    in.Email,
		NotificationDisabled: false,
		Observations:         "app",
	}
	return c.do(ctx, "register_customer", http.MethodPost, "customers", nil, payload)
}

// DeleteCustomer - DELETE customers/{id}
func (c *Client) DeleteCustomer(ctx context.Context, customerID string) (*Response, error) {
	if customerID == "" {
		return nil, &InputError{Operation: "delete_customer", Err: errMissing("customerId")}
	}
	return c.do(ctx, "delete_customer", http.MethodDelete, "customers/"+url.PathEscape(customerID), nil, nil)
}
