package gateway

import (
	"context"
	"net/http"
	"net/url"
)

const defaultIncomeValue = 1000

// SubaccountInput - данные партнера для субаккаунта
type SubaccountInput struct {
	Name          string `validate:"required"`
	Email         string `validate:"required,email"`
	CpfCnpj       string `validate:"required"`
	DocumentType  string `validate:"omitempty,is-document-type"`
	BirthDate     string
	CompanyType   string `validate:"omitempty,is-company-type"`
	Phone         string
	MobilePhone   string
	IncomeValue   float64 `validate:"gte=0"`
	Address       string
	AddressNumber string
	Province      string
	PostalCode    string
}

type subaccountRequest struct {
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	LoginEmail    string  `json:"loginEmail"`
	CpfCnpj       string  `json:"cpfCnpj"`
	BirthDate     string  `json:"birthDate,omitempty"`
	CompanyType   string  `json:"companyType,omitempty"`
	Phone         string  `json:"phone"`
	MobilePhone   string  `json:"mobilePhone"`
	IncomeValue   float64 `json:"incomeValue"`
	Address       string  `json:"address"`
	AddressNumber string  `json:"addressNumber"`
	Province      string  `json:"province"`
	PostalCode    string  `json:"postalCode"`
}

// CreateSubaccount - POST accounts
func (c *Client) CreateSubaccount(ctx context.Context, in SubaccountInput) (*Response, error) {
	if err := c.validate("create_subaccount", in); err != nil {
		return nil, err
	}

	payload := subaccountRequest{
		Name:          in.Name,
		Email:         in.Email,
		LoginEmail:    in.Email,
		CpfCnpj:       in.CpfCnpj,
		BirthDate:     in.BirthDate,
		Phone:         in.Phone,
		MobilePhone:   in.MobilePhone,
		IncomeValue:   in.IncomeValue,
		Address:       in.Address,
		AddressNumber: in.AddressNumber,
		Province:      in.Province,
		PostalCode:    in.PostalCode,
	}
	if payload.IncomeValue == 0 {
		payload.IncomeValue = defaultIncomeValue
	}
	// Тип компании передается только для юрлиц
	if in.DocumentType == "CNPJ" {
		payload.CompanyType = in.CompanyType
		if payload.CompanyType == "" {
			payload.CompanyType = "INDIVIDUAL"
		}
	}

	return c.do(ctx, "create_subaccount", http.MethodPost, "accounts", nil, payload)
}

// RecoverSubaccount - GET accounts?email=
func (c *Client) RecoverSubaccount(ctx context.Context, email string) (*Response, error) {
	if email == "" {
		return nil, &InputError{Operation: "recover_subaccount", Err: errMissing("email")}
	}
	return c.do(ctx, "recover_subaccount", http.MethodGet, "accounts", url.Values{"email": {email}}, nil)
}
