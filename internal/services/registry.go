package services

import (
	"dealvalue_backend/internal/docstore"
	"dealvalue_backend/internal/email"
	"dealvalue_backend/internal/repositories"
	"dealvalue_backend/internal/storage"
)

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	UserService     UserService
	PlanService     PlanService
	PurchaseService PurchaseService
	UploadService   UploadService
	EmailService    *EmailService
}

// Deps - внешние зависимости, из которых собираются сервисы
type Deps struct {
	Store     docstore.Store
	Gateway   PaymentGateway
	Email     email.Provider
	FromEmail string
	FromName  string
	Storage   storage.Storage
	MaxUpload int64
}

// NewServiceContainer собирает репозитории и сервисы поверх одного хранилища документов
func NewServiceContainer(d Deps) *ServiceContainer {
	users := repositories.NewUserRepository(d.Store)
	plans := repositories.NewPlanRepository(d.Store)
	purchases := repositories.NewPurchaseRepository(d.Store)

	return &ServiceContainer{
		UserService:     NewUserService(users, d.Gateway),
		PlanService:     NewPlanService(plans, users, d.Gateway),
		PurchaseService: NewPurchaseService(purchases),
		UploadService:   NewUploadService(d.Storage, d.MaxUpload),
		EmailService:    NewEmailService(d.Email, d.FromEmail, d.FromName),
	}
}
