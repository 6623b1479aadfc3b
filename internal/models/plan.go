package models

type Plan struct {
	Document
	Title         string   `json:"title" validate:"required"`
	Subtitle      string   `json:"subtitle"`
	Price         float64  `json:"price" validate:"gte=0"`
	Features      []string `json:"features"`
	PromotionDays int      `json:"promotionDays" validate:"gte=0"`
	Credits       float64  `json:"credits,omitempty"`
	PartnerID     string   `json:"partnerId,omitempty"`
	CreatedAt     string   `json:"createdAt,omitempty"`
	UpdatedAt     string   `json:"updatedAt,omitempty"`
}

// IsAdminTemplate - план создан администратором, партнер приходит из запроса
func (p *Plan) IsAdminTemplate() bool {
	return p.PartnerID == AdminPlanPartnerID
}
