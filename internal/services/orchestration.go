package services

import (
	"context"
	"errors"
	"fmt"

	"dealvalue_backend/internal/docstore"
	"dealvalue_backend/internal/gateway"
	"dealvalue_backend/internal/logger"
	"dealvalue_backend/internal/repositories"
	"dealvalue_backend/pkg/apperrors"
)

// Шаги оркестраций. Имя шага попадает в ответ об ошибке.
const (
	StepLoadUser           = "load_user"
	StepLoadPlan           = "load_plan"
	StepLoadPartner        = "load_partner"
	StepLoadSubscription   = "load_subscription"
	StepRegisterCustomer   = "register_customer"
	StepTokenizeCard       = "tokenize_card"
	StepCreateSubaccount   = "create_subaccount"
	StepRecoverSubaccount  = "recover_subaccount"
	StepCreateSubscription = "create_subscription"
	StepCancelSubscription = "cancel_subscription"
	StepChargeCard         = "charge_card"
	StepChargePix          = "charge_pix"
	StepPaymentStatus      = "payment_status"
	StepPixQRCode          = "pix_qrcode"
	StepDeleteCustomer     = "delete_customer"
	StepPersistUser        = "persist_user"
)

// step - один удаленный вызов в цепочке
type step struct {
	name string
	run  func(ctx context.Context) error
}

// runSteps выполняет шаги по порядку и останавливается на первой ошибке.
// Откатов нет: уже выполненные вызовы шлюза остаются в силе.
func runSteps(ctx context.Context, flow string, steps ...step) error {
	for _, s := range steps {
		if err := s.run(ctx); err != nil {
			appErr, ok := apperrors.AsAppError(err)
			if !ok {
				appErr = apperrors.InternalError(err)
			}
			if appErr.Step == "" {
				appErr.Step = s.name
			}
			logger.CtxWarn(ctx, "orchestration step failed",
				"flow", flow,
				"step", s.name,
				"system", appErr.Domain,
				"error", err.Error(),
			)
			return appErr
		}
		logger.CtxDebug(ctx, "orchestration step completed", "flow", flow, "step", s.name)
	}
	return nil
}

// gatewayFailure - шаг, вызывавший платежный шлюз, завершился ошибкой (400)
func gatewayFailure(step, message string, err error) *apperrors.AppError {
	var details any = err.Error()

	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		details = apiErr.Details()
	}
	return apperrors.ErrGateway(err, step, message, details)
}

// loadFailure - сущность не загрузилась: отсутствие дает 404, остальное 400
func loadFailure(step, entity string, err error) *apperrors.AppError {
	if errors.Is(err, docstore.ErrNotFound) {
		return apperrors.ErrNotFound(err, domainOf(entity), fmt.Sprintf("%s not found", entity)).WithStep(step)
	}
	return apperrors.ErrStore(err, step, fmt.Sprintf("Failed to load %s", lower(entity)))
}

// persistFailure - запись результата не удалась после успешных вызовов шлюза
func persistFailure(step, message string, err error) *apperrors.AppError {
	if errors.Is(err, docstore.ErrConflict) {
		return apperrors.ErrConflict(err, apperrors.DomainStore, message+": document changed concurrently").WithStep(step)
	}
	return apperrors.ErrStore(err, step, message)
}

// storeError переводит ошибки хранилища для CRUD-операций
func storeError(err error, entity string) error {
	domain := domainOf(entity)
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		return apperrors.ErrNotFound(err, domain, fmt.Sprintf("%s not found", entity))
	case errors.Is(err, docstore.ErrConflict):
		return apperrors.ErrConflict(err, domain, "Document revision is stale or missing")
	case errors.Is(err, repositories.ErrMissingID):
		return apperrors.NewBadRequestError("Document _id is required")
	default:
		return apperrors.InternalError(err)
	}
}

func domainOf(entity string) string {
	switch entity {
	case "User", "Partner":
		return apperrors.DomainUser
	case "Plan":
		return apperrors.DomainPlan
	case "Purchase":
		return apperrors.DomainPurchase
	default:
		return apperrors.DomainStore
	}
}

func lower(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
