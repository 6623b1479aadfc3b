package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// HolderInfo - данные владельца карты
type HolderInfo struct {
	Name              string `json:"name" validate:"required"`
	Email             string `json:"email" validate:"required,email"`
	CpfCnpj           string `json:"cpfCnpj" validate:"required"`
	PostalCode        string `json:"postalCode"`
	AddressNumber     string `json:"addressNumber"`
	AddressComplement string `json:"addressComplement"`
	Phone             string `json:"phone"`
	MobilePhone       string `json:"mobilePhone"`
}

// TokenizeInput - карта для токенизации
type TokenizeInput struct {
	CustomerID string     `validate:"required"`
	HolderName string     `validate:"required"`
	Number     string     `validate:"required"`
	Expiry     string     `validate:"card-expiry"` // MM/YY
	CCV        string     `validate:"required"`
	Holder     HolderInfo
	RemoteIP   string     `validate:"required"`
}

type creditCard struct {
	HolderName  string `json:"holderName"`
	Number      string `json:"number"`
	ExpiryMonth string `json:"expiryMonth"`
	ExpiryYear  string `json:"expiryYear"`
	CCV         string `json:"ccv"`
}

type tokenizeRequest struct {
	CreditCard           creditCard `json:"creditCard"`
	CreditCardHolderInfo HolderInfo `json:"creditCardHolderInfo"`
	Customer             string     `json:"customer"`
	RemoteIP             string     `json:"remoteIp"`
}

// TokenizeCard - POST creditCard/tokenize
func (c *Client) TokenizeCard(ctx context.Context, in TokenizeInput) (*Response, error) {
	if err := c.validate("tokenize_card", in); err != nil {
		return nil, err
	}
	month, year := splitExpiry(in.Expiry)

	payload := tokenizeRequest{
		CreditCard: creditCard{
			HolderName:  in.HolderName,
			Number:      strings.ReplaceAll(in.Number, " ", ""),
			ExpiryMonth: month,
			ExpiryYear:  year,
			CCV:         in.CCV,
		},
		CreditCardHolderInfo: in.Holder,
		Customer:             in.CustomerID,
		RemoteIP:             in.RemoteIP,
	}
	return c.do(ctx, "tokenize_card", http.MethodPost, "creditCard/tokenize", nil, payload)
}

// splitExpiry: "07/29" -> "07", "2029"
func splitExpiry(expiry string) (month, year string) {
	parts := strings.SplitN(expiry, "/", 2)
	if len(parts) != 2 {
		return expiry, ""
	}
	return parts[0], "20" + parts[1]
}

func errMissing(field string) error {
	return fmt.Errorf("field '%s': This field is required", field)
}
