package models

type Purchase struct {
	Document
	Description string  `json:"description" validate:"required"`
	Quantity    int     `json:"quantity" validate:"gte=0"`
	Price       float64 `json:"price" validate:"gte=0"`
	Date        string  `json:"date,omitempty"`
}
