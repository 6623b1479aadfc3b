package dto

import "encoding/json"

// BuyCreditsRequest - тело POST /plan/credits
type BuyCreditsRequest struct {
	UserID string  `json:"userId" validate:"required"`
	Amount float64 `json:"amount" validate:"gt=0"`
	// InstallmentCount > 1 - покупка в рассрочку
	InstallmentCount int `json:"installmentCount,omitempty" validate:"omitempty,gte=1,lte=12"`
}

// PixChargeRequest - тело POST /plan/pix
type PixChargeRequest struct {
	UserID      string  `json:"userId" validate:"required"`
	Amount      float64 `json:"amount" validate:"gt=0"`
	Description string  `json:"description"`
}

// BuyCreditsResponse - результат покупки кредитов
type BuyCreditsResponse struct {
	Message string          `json:"message"`
	Credits float64         `json:"credits"`
	Rev     string          `json:"rev"`
	Payment json.RawMessage `json:"payment"`
}
