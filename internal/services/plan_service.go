package services

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"dealvalue_backend/internal/gateway"
	"dealvalue_backend/internal/logger"
	"dealvalue_backend/internal/models"
	"dealvalue_backend/internal/repositories"
	"dealvalue_backend/internal/services/dto"
	"dealvalue_backend/pkg/apperrors"
)

// Параметры разделения платежа подписки с партнером
const (
	partnerSharePercent  = 75
	splitReference       = "Subscription"
	splitDescription     = "Administration fee"
	creditPurchaseReason = "Credit purchase"
	dueDateLayout        = "2006-01-02"
)

// PlanService - планы, подписки и разовые платежи
type PlanService interface {
	Create(ctx context.Context, plan *models.Plan) (models.DocResponse, error)
	Get(ctx context.Context, id string) (*models.Plan, error)
	Update(ctx context.Context, plan *models.Plan) (models.DocResponse, error)
	Delete(ctx context.Context, id, rev string) (models.DocResponse, error)
	List(ctx context.Context) (*models.ListResponse[models.Plan], error)

	// Subscribe оформляет подписку пользователя на план
	Subscribe(ctx context.Context, planID, userID, partnerID, remoteIP string) (json.RawMessage, error)
	// Cancel отменяет текущую подписку пользователя
	Cancel(ctx context.Context, userID string) (json.RawMessage, error)
	// BuyCredits списывает сумму с карты и начисляет кредиты
	BuyCredits(ctx context.Context, req *dto.BuyCreditsRequest, remoteIP string) (*dto.BuyCreditsResponse, error)

	ChargePix(ctx context.Context, req *dto.PixChargeRequest) (json.RawMessage, error)
	PaymentStatus(ctx context.Context, paymentID string) (json.RawMessage, error)
	PixQRCode(ctx context.Context, paymentID string) (json.RawMessage, error)
}

type planService struct {
	plans   repositories.PlanRepository
	users   repositories.UserRepository
	gateway PaymentGateway
	now     func() time.Time
}

func NewPlanService(plans repositories.PlanRepository, users repositories.UserRepository, gw PaymentGateway) PlanService {
	return &planService{
		plans:   plans,
		users:   users,
		gateway: gw,
		now:     time.Now,
	}
}

func (s *planService) Create(ctx context.Context, plan *models.Plan) (models.DocResponse, error) {
	stamp := s.now().UTC().Format(time.RFC3339)
	if plan.CreatedAt == "" {
		plan.CreatedAt = stamp
	}
	plan.UpdatedAt = stamp

	res, err := s.plans.Create(ctx, plan)
	if err != nil {
		return models.DocResponse{}, storeError(err, "Plan")
	}
	logger.CtxInfo(ctx, "Plan created", "plan_id", res.ID, "partner_id", plan.PartnerID)
	return res, nil
}

func (s *planService) Get(ctx context.Context, id string) (*models.Plan, error) {
	plan, err := s.plans.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Plan")
	}
	return plan, nil
}

func (s *planService) Update(ctx context.Context, plan *models.Plan) (models.DocResponse, error) {
	plan.UpdatedAt = s.now().UTC().Format(time.RFC3339)
	res, err := s.plans.Replace(ctx, plan)
	if err != nil {
		return models.DocResponse{}, storeError(err, "Plan")
	}
	return res, nil
}

func (s *planService) Delete(ctx context.Context, id, rev string) (models.DocResponse, error) {
	res, err := s.plans.Delete(ctx, id, rev)
	if err != nil {
		return models.DocResponse{}, storeError(err, "Plan")
	}
	return res, nil
}

func (s *planService) List(ctx context.Context) (*models.ListResponse[models.Plan], error) {
	plans, err := s.plans.FindAll(ctx)
	if err != nil {
		return nil, storeError(err, "Plan")
	}
	return &models.ListResponse[models.Plan]{Docs: plans, Total: len(plans)}, nil
}

// =======================
// Subscription
// =======================

func (s *planService) Subscribe(ctx context.Context, planID, userID, partnerID, remoteIP string) (json.RawMessage, error) {
	ctx = logger.WithUserID(ctx, userID)

	var (
		user    *models.User
		plan    *models.Plan
		partner *models.User
		created *gateway.Response
	)

	err := runSteps(ctx, "subscription",
		step{StepLoadUser, func(ctx context.Context) (err error) {
			user, err = s.users.FindByID(ctx, userID)
			if err != nil {
				return loadFailure(StepLoadUser, "User", err)
			}
			return nil
		}},
		step{StepLoadPlan, func(ctx context.Context) (err error) {
			plan, err = s.plans.FindByID(ctx, planID)
			if err != nil {
				return loadFailure(StepLoadPlan, "Plan", err)
			}
			return nil
		}},
		step{StepLoadPartner, func(ctx context.Context) (err error) {
			id := resolvePartnerID(user, plan, partnerID)
			if id == "" {
				return nil
			}
			partner, err = s.users.FindByID(ctx, id)
			if err != nil {
				return loadFailure(StepLoadPartner, "Partner", err)
			}
			if partner.WalletID() == "" {
				return apperrors.ErrInvalidOperation(apperrors.DomainPlan, "Partner has no sub-account wallet").WithStep(StepLoadPartner)
			}
			return nil
		}},
		step{StepCreateSubscription, func(ctx context.Context) (err error) {
			created, err = s.gateway.CreateSubscription(ctx, s.subscriptionInput(user, plan, partner, remoteIP))
			if err != nil {
				return gatewayFailure(StepCreateSubscription, "Failed to create subscription", err)
			}
			return nil
		}},
		step{StepPersistUser, func(ctx context.Context) error {
			data, err := gatewayData(created)
			if err != nil {
				return persistFailure(StepPersistUser, "Failed to save subscription", err)
			}
			payment := user.Payment()
			payment.PlanID = plan.ID
			payment.GatewayPlanData = data
			if partner != nil {
				user.Credits = math.Ceil(plan.Price)
			}
			if _, err := s.users.Replace(ctx, user); err != nil {
				return persistFailure(StepPersistUser, "Failed to save subscription", err)
			}
			return nil
		}},
	)
	if err != nil {
		return nil, err
	}

	logger.CtxInfo(ctx, "Subscription created",
		"plan_id", plan.ID,
		"subscription_id", user.SubscriptionID(),
		"split", partner != nil,
	)
	return created.Body, nil
}

// resolvePartnerID - партнер ищется только для клиентов.
// Для шаблона администратора id приходит из запроса, иначе из плана.
func resolvePartnerID(user *models.User, plan *models.Plan, requested string) string {
	if user.Role != models.UserRoleClient {
		return ""
	}
	if plan.IsAdminTemplate() {
		return requested
	}
	return plan.PartnerID
}

func (s *planService) subscriptionInput(user *models.User, plan *models.Plan, partner *models.User, remoteIP string) gateway.SubscriptionInput {
	in := gateway.SubscriptionInput{
		CustomerID:  user.CustomerID(),
		CardToken:   user.CardToken(),
		Value:       plan.Price,
		NextDueDate: dueDate(s.now(), plan.PromotionDays),
		Cycle:       gateway.CycleMonthly,
		Description: plan.Subtitle,
		RemoteIP:    remoteIP,
	}
	if partner != nil {
		in.Split = &gateway.Split{
			WalletID:          partner.WalletID(),
			PercentualValue:   partnerSharePercent,
			ExternalReference: splitReference,
			Description:       splitDescription,
		}
	}
	return in
}

// dueDate - первая дата списания: сегодня плюс дни промо-периода
func dueDate(now time.Time, promotionDays int) string {
	return now.AddDate(0, 0, promotionDays).Format(dueDateLayout)
}

// =======================
// Cancellation
// =======================

func (s *planService) Cancel(ctx context.Context, userID string) (json.RawMessage, error) {
	ctx = logger.WithUserID(ctx, userID)

	var (
		user     *models.User
		canceled *gateway.Response
	)

	err := runSteps(ctx, "cancellation",
		step{StepLoadUser, func(ctx context.Context) (err error) {
			user, err = s.users.FindByID(ctx, userID)
			if err != nil {
				return loadFailure(StepLoadUser, "User", err)
			}
			return nil
		}},
		step{StepLoadSubscription, func(ctx context.Context) error {
			if user.SubscriptionID() == "" {
				return apperrors.ErrNotFound(nil, apperrors.DomainPlan, "Subscription not found")
			}
			return nil
		}},
		step{StepCancelSubscription, func(ctx context.Context) (err error) {
			canceled, err = s.gateway.CancelSubscription(ctx, user.SubscriptionID())
			if err != nil {
				return gatewayFailure(StepCancelSubscription, "Failed to cancel subscription", err)
			}
			return nil
		}},
		step{StepPersistUser, func(ctx context.Context) error {
			data, err := gatewayData(canceled)
			if err != nil {
				return persistFailure(StepPersistUser, "Failed to save cancellation", err)
			}
			user.Payment().GatewayPlanData = data
			if _, err := s.users.Replace(ctx, user); err != nil {
				return persistFailure(StepPersistUser, "Failed to save cancellation", err)
			}
			return nil
		}},
	)
	if err != nil {
		return nil, err
	}

	logger.CtxInfo(ctx, "Subscription canceled")
	return canceled.Body, nil
}

// =======================
// Credits
// =======================

func (s *planService) BuyCredits(ctx context.Context, req *dto.BuyCreditsRequest, remoteIP string) (*dto.BuyCreditsResponse, error) {
	ctx = logger.WithUserID(ctx, req.UserID)

	var (
		user    *models.User
		charged *gateway.Response
		saved   models.DocResponse
	)

	err := runSteps(ctx, "credit_purchase",
		step{StepLoadUser, func(ctx context.Context) (err error) {
			user, err = s.users.FindByID(ctx, req.UserID)
			if err != nil {
				return loadFailure(StepLoadUser, "User", err)
			}
			return nil
		}},
		step{StepChargeCard, func(ctx context.Context) (err error) {
			charged, err = s.gateway.ChargeCard(ctx, gateway.ChargeCardInput{
				CustomerID:       user.CustomerID(),
				CardToken:        user.CardToken(),
				Value:            req.Amount,
				Description:      creditPurchaseReason,
				InstallmentCount: req.InstallmentCount,
				RemoteIP:         remoteIP,
			})
			if err != nil {
				return gatewayFailure(StepChargeCard, "Failed to charge card", err)
			}
			return nil
		}},
		step{StepPersistUser, func(ctx context.Context) (err error) {
			user.Credits += req.Amount
			saved, err = s.users.Replace(ctx, user)
			if err != nil {
				return persistFailure(StepPersistUser, "Failed to save credits", err)
			}
			return nil
		}},
	)
	if err != nil {
		return nil, err
	}

	logger.CtxInfo(ctx, "Credits purchased", "amount", req.Amount, "credits", user.Credits)
	return &dto.BuyCreditsResponse{
		Message: "Credits added",
		Credits: user.Credits,
		Rev:     saved.Rev,
		Payment: charged.Body,
	}, nil
}

// =======================
// PIX and payment lookups
// =======================

func (s *planService) ChargePix(ctx context.Context, req *dto.PixChargeRequest) (json.RawMessage, error) {
	ctx = logger.WithUserID(ctx, req.UserID)

	var (
		user    *models.User
		charged *gateway.Response
	)

	err := runSteps(ctx, "pix_charge",
		step{StepLoadUser, func(ctx context.Context) (err error) {
			user, err = s.users.FindByID(ctx, req.UserID)
			if err != nil {
				return loadFailure(StepLoadUser, "User", err)
			}
			if user.CustomerID() == "" {
				return apperrors.ErrInvalidOperation(apperrors.DomainUser, "User is not registered in the payment gateway")
			}
			return nil
		}},
		step{StepChargePix, func(ctx context.Context) (err error) {
			description := req.Description
			if description == "" {
				description = creditPurchaseReason
			}
			charged, err = s.gateway.ChargePix(ctx, gateway.ChargePixInput{
				CustomerID:  user.CustomerID(),
				Value:       req.Amount,
				Description: description,
				CpfCnpj:     user.DocumentNo,
			})
			if err != nil {
				return gatewayFailure(StepChargePix, "Failed to create PIX charge", err)
			}
			return nil
		}},
	)
	if err != nil {
		return nil, err
	}
	return charged.Body, nil
}

func (s *planService) PaymentStatus(ctx context.Context, paymentID string) (json.RawMessage, error) {
	res, err := s.gateway.PaymentStatus(ctx, paymentID)
	if err != nil {
		return nil, gatewayFailure(StepPaymentStatus, "Failed to fetch payment status", err)
	}
	return res.Body, nil
}

func (s *planService) PixQRCode(ctx context.Context, paymentID string) (json.RawMessage, error) {
	res, err := s.gateway.PixQRCode(ctx, paymentID)
	if err != nil {
		return nil, gatewayFailure(StepPixQRCode, "Failed to fetch PIX QR code", err)
	}
	return res.Body, nil
}

