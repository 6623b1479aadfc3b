package handlers

import (
	"dealvalue_backend/internal/services"
	"dealvalue_backend/internal/validator"
)

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	UserHandler     *UserHandler
	PlanHandler     *PlanHandler
	PurchaseHandler *PurchaseHandler
}

// NewAppHandlers собирает хэндлеры поверх контейнера сервисов
func NewAppHandlers(svc *services.ServiceContainer, v *validator.Validator) *AppHandlers {
	base := NewBaseHandler(v)
	return &AppHandlers{
		UserHandler:     NewUserHandler(base, svc.UserService, svc.UploadService, svc.EmailService),
		PlanHandler:     NewPlanHandler(base, svc.PlanService),
		PurchaseHandler: NewPurchaseHandler(base, svc.PurchaseService),
	}
}
