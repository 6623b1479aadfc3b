package dto

// OnboardResponse - результат регистрации пользователя в платежном шлюзе
type OnboardResponse struct {
	Message    string `json:"message"`
	ID         string `json:"id"`
	Rev        string `json:"rev"`
	CustomerID string `json:"customerId"`
	CardToken  string `json:"creditCardToken"`
	WalletID   string `json:"walletId,omitempty"`
}

// DeleteManyResponse - ответ на массовое удаление
type DeleteManyResponse struct {
	Message string `json:"message"`
	Deleted int    `json:"deleted"`
}
