package services

import (
	"context"
	"time"

	"dealvalue_backend/internal/gateway"
	"dealvalue_backend/internal/logger"
	"dealvalue_backend/internal/models"
	"dealvalue_backend/internal/repositories"
	"dealvalue_backend/internal/services/dto"
	"dealvalue_backend/pkg/apperrors"
)

// UserService - пользователи и их регистрация в платежном шлюзе
type UserService interface {
	Create(ctx context.Context, user *models.User) (models.DocResponse, error)
	Get(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, id string, user *models.User) (models.DocResponse, error)
	Delete(ctx context.Context, id, rev, customerID string) (models.DocResponse, error)
	List(ctx context.Context) (*models.ListResponse[models.User], error)
	DeleteNonAdmins(ctx context.Context) (*dto.DeleteManyResponse, error)

	// Onboard регистрирует пользователя в шлюзе: клиент, карта, субаккаунт партнера
	Onboard(ctx context.Context, id, remoteIP string) (*dto.OnboardResponse, error)
}

type userService struct {
	users   repositories.UserRepository
	gateway PaymentGateway
	now     func() time.Time
}

func NewUserService(users repositories.UserRepository, gw PaymentGateway) UserService {
	return &userService{
		users:   users,
		gateway: gw,
		now:     time.Now,
	}
}

func (s *userService) Create(ctx context.Context, user *models.User) (models.DocResponse, error) {
	if user.CreatedAt == "" {
		user.CreatedAt = s.now().UTC().Format(time.RFC3339)
	}
	res, err := s.users.Create(ctx, user)
	if err != nil {
		return models.DocResponse{}, storeError(err, "User")
	}
	logger.CtxInfo(ctx, "User created", "user_id", res.ID, "role", user.Role)
	return res, nil
}

func (s *userService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "User")
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, id string, user *models.User) (models.DocResponse, error) {
	if user.ID != "" && user.ID != id {
		return models.DocResponse{}, apperrors.NewBadRequestError("Body _id does not match the path id")
	}
	user.ID = id

	res, err := s.users.Replace(ctx, user)
	if err != nil {
		return models.DocResponse{}, storeError(err, "User")
	}
	return res, nil
}

// Delete удаляет клиента в шлюзе, затем документ.
// Если шлюз отказал, документ остается нетронутым.
func (s *userService) Delete(ctx context.Context, id, rev, customerID string) (models.DocResponse, error) {
	if _, err := s.gateway.DeleteCustomer(ctx, customerID); err != nil {
		logger.CtxWarn(ctx, "Gateway customer deletion failed", "user_id", id, "customer_id", customerID, "error", err.Error())
		return models.DocResponse{}, gatewayFailure(StepDeleteCustomer, "Failed to delete gateway customer", err)
	}

	res, err := s.users.Delete(ctx, id, rev)
	if err != nil {
		return models.DocResponse{}, storeError(err, "User")
	}
	logger.CtxInfo(ctx, "User deleted", "user_id", id, "customer_id", customerID)
	return res, nil
}

func (s *userService) List(ctx context.Context) (*models.ListResponse[models.User], error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, storeError(err, "User")
	}
	return &models.ListResponse[models.User]{Docs: users, Total: len(users)}, nil
}

func (s *userService) DeleteNonAdmins(ctx context.Context) (*dto.DeleteManyResponse, error) {
	deleted, err := s.users.DeleteNonAdmins(ctx)
	if err != nil {
		logger.CtxWarn(ctx, "Bulk delete stopped", "deleted", deleted, "error", err.Error())
		return nil, storeError(err, "User")
	}
	logger.CtxInfo(ctx, "Non-admin users deleted", "deleted", deleted)
	return &dto.DeleteManyResponse{
		Message: "Non-admin users deleted",
		Deleted: deleted,
	}, nil
}

// =======================
// Onboarding
// =======================

func (s *userService) Onboard(ctx context.Context, id, remoteIP string) (*dto.OnboardResponse, error) {
	ctx = logger.WithUserID(ctx, id)

	var (
		user       *models.User
		customer   models.GatewayData
		card       models.GatewayData
		subaccount models.GatewayData
		saved      models.DocResponse
	)

	err := runSteps(ctx, "onboarding",
		step{StepLoadUser, func(ctx context.Context) (err error) {
			user, err = s.users.FindByID(ctx, id)
			if err != nil {
				return loadFailure(StepLoadUser, "User", err)
			}
			return nil
		}},
		step{StepRegisterCustomer, func(ctx context.Context) error {
			res, err := s.gateway.RegisterCustomer(ctx, customerInput(user))
			if err == nil {
				customer, err = gatewayData(res)
			}
			if err != nil {
				return gatewayFailure(StepRegisterCustomer, "Failed to register customer", err)
			}
			return nil
		}},
		step{StepTokenizeCard, func(ctx context.Context) error {
			res, err := s.gateway.TokenizeCard(ctx, tokenizeInput(user, customer.String("id"), remoteIP))
			if err == nil {
				card, err = gatewayData(res)
			}
			if err != nil {
				return gatewayFailure(StepTokenizeCard, "Failed to tokenize card", err)
			}
			return nil
		}},
		step{StepCreateSubaccount, func(ctx context.Context) error {
			if user.Role != models.UserRolePartner {
				return nil
			}
			var err error
			subaccount, err = s.subaccount(ctx, user)
			return err
		}},
		step{StepPersistUser, func(ctx context.Context) (err error) {
			payment := user.Payment()
			payment.CVV = ""
			payment.GatewayUserData = customer
			payment.GatewayCardData = card
			if subaccount != nil {
				payment.GatewaySubaccountData = subaccount
			}
			saved, err = s.users.Replace(ctx, user)
			if err != nil {
				return persistFailure(StepPersistUser, "Failed to save gateway data", err)
			}
			return nil
		}},
	)
	if err != nil {
		return nil, err
	}

	logger.CtxInfo(ctx, "User onboarded", "customer_id", customer.String("id"), "role", user.Role)
	return &dto.OnboardResponse{
		Message:    "Created successfully",
		ID:         saved.ID,
		Rev:        saved.Rev,
		CustomerID: customer.String("id"),
		CardToken:  card.String("creditCardToken"),
		WalletID:   subaccount.String("walletId"),
	}, nil
}

// subaccount создает субаккаунт партнера, при отказе ищет уже существующий по email
func (s *userService) subaccount(ctx context.Context, user *models.User) (models.GatewayData, error) {
	res, createErr := s.gateway.CreateSubaccount(ctx, subaccountInput(user))
	if createErr == nil {
		data, err := gatewayData(res)
		if err != nil {
			return nil, gatewayFailure(StepCreateSubaccount, "Failed to create sub-account", err)
		}
		return data, nil
	}

	logger.CtxWarn(ctx, "Sub-account creation failed, recovering by email", "error", createErr.Error())

	res, err := s.gateway.RecoverSubaccount(ctx, user.Email)
	if err != nil {
		return nil, gatewayFailure(StepRecoverSubaccount, "Failed to recover sub-account", err)
	}
	data, err := firstAccount(res)
	if err != nil {
		return nil, gatewayFailure(StepRecoverSubaccount, "Failed to recover sub-account", err)
	}
	return data, nil
}

func customerInput(u *models.User) gateway.CustomerInput {
	addr := u.Address()
	return gateway.CustomerInput{
		Name:          u.Name,
		Email:         u.Email,
		Phone:         u.Phone,
		MobilePhone:   u.Phone,
		CpfCnpj:       u.DocumentNo,
		PostalCode:    addr.Zipcode,
		Address:       addr.Neighborhood,
		AddressNumber: addr.Number,
		Complement:    addr.Complement,
		Province:      addr.Street,
	}
}

func tokenizeInput(u *models.User, customerID, remoteIP string) gateway.TokenizeInput {
	addr := u.Address()
	payment := u.Payment()
	return gateway.TokenizeInput{
		CustomerID: customerID,
		HolderName: payment.CardHolderName,
		Number:     payment.CardNumber,
		Expiry:     payment.ExpirationDate,
		CCV:        payment.CVV,
		Holder: gateway.HolderInfo{
			Name:              u.Name,
			Email:             u.Email,
			CpfCnpj:           u.DocumentNo,
			PostalCode:        addr.Zipcode,
			AddressNumber:     addr.Number,
			AddressComplement: addr.Complement,
			Phone:             u.Phone,
			MobilePhone:       u.Phone,
		},
		RemoteIP: remoteIP,
	}
}

func subaccountInput(u *models.User) gateway.SubaccountInput {
	addr := u.Address()
	return gateway.SubaccountInput{
		Name:          u.Name,
		Email:         u.Email,
		CpfCnpj:       u.DocumentNo,
		DocumentType:  string(u.DocumentType),
		BirthDate:     u.BirthDate,
		CompanyType:   string(u.CompanyType),
		Phone:         u.Phone,
		MobilePhone:   u.Phone,
		Address:       addr.Neighborhood,
		AddressNumber: addr.Number,
		Province:      addr.Street,
		PostalCode:    addr.Zipcode,
	}
}
