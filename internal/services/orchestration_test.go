package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"dealvalue_backend/internal/docstore"
	"dealvalue_backend/internal/gateway"
	"dealvalue_backend/internal/models"
	"dealvalue_backend/internal/repositories"
	"dealvalue_backend/internal/services/dto"
	"dealvalue_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 31, 10, 0, 0, 0, time.UTC)

type fixture struct {
	users repositories.UserRepository
	plans repositories.PlanRepository
	gw    *fakeGateway
	user  *userService
	plan  *planService
}

func newFixture() *fixture {
	store := docstore.NewMemoryStore()
	f := &fixture{
		users: repositories.NewUserRepository(store),
		plans: repositories.NewPlanRepository(store),
		gw:    newFakeGateway(),
	}
	f.user = NewUserService(f.users, f.gw).(*userService)
	f.user.now = func() time.Time { return fixedNow }
	f.plan = NewPlanService(f.plans, f.users, f.gw).(*planService)
	f.plan.now = func() time.Time { return fixedNow }
	return f
}

// failingReplace - репозиторий пользователей, который не может сохранить изменения
type failingReplace struct {
	repositories.UserRepository
	err error
}

func (r failingReplace) Replace(ctx context.Context, user *models.User) (models.DocResponse, error) {
	return models.DocResponse{}, r.err
}

// breakPersistence пересобирает сервисы так, что запись пользователя падает
func (f *fixture) breakPersistence(err error) {
	users := failingReplace{UserRepository: f.users, err: err}
	f.user = NewUserService(users, f.gw).(*userService)
	f.user.now = func() time.Time { return fixedNow }
	f.plan = NewPlanService(f.plans, users, f.gw).(*planService)
	f.plan.now = func() time.Time { return fixedNow }
}

func (f *fixture) addUser(t *testing.T, u *models.User) *models.User {
	t.Helper()
	_, err := f.users.Create(context.Background(), u)
	require.NoError(t, err)
	return u
}

func (f *fixture) addPlan(t *testing.T, p *models.Plan) *models.Plan {
	t.Helper()
	_, err := f.plans.Create(context.Background(), p)
	require.NoError(t, err)
	return p
}

func (f *fixture) reload(t *testing.T, id string) *models.User {
	t.Helper()
	u, err := f.users.FindByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func requireAppError(t *testing.T, err error) *apperrors.AppError {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "ожидалась AppError, получено %T", err)
	return appErr
}

func newClient(credits float64) *models.User {
	return &models.User{
		Email:      "client@example.com",
		Name:       "Client",
		DocumentNo: "12345678909",
		Role:       models.UserRoleClient,
		Phone:      "11999990000",
		Credits:    credits,
		AddressData: &models.AddressData{
			Street:       "Rua A",
			Number:       "10",
			Neighborhood: "Centro",
			Zipcode:      "01001000",
		},
		PaymentData: &models.PaymentData{
			CardNumber:     "4111 1111 1111 1111",
			CardHolderName: "CLIENT",
			ExpirationDate: "05/29",
			CVV:            "123",
		},
	}
}

// registered - клиент, уже прошедший регистрацию в шлюзе
func registered(u *models.User) *models.User {
	p := u.Payment()
	p.CVV = ""
	p.GatewayUserData = models.GatewayData{"id": "cus_1"}
	p.GatewayCardData = models.GatewayData{"creditCardToken": "tok_1"}
	return u
}

func newPartner(walletID string) *models.User {
	u := &models.User{
		Email: "partner@example.com",
		Name:  "Partner",
		Role:  models.UserRolePartner,
	}
	if walletID != "" {
		u.Payment().GatewaySubaccountData = models.GatewayData{"walletId": walletID}
	}
	return u
}

// =======================
// Onboarding
// =======================

func TestOnboard_Client(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	// 1. Подготовка
	f.gw.respond("register_customer", `{"id":"cus_9","object":"customer"}`).
		respond("tokenize_card", `{"creditCardToken":"tok_9","creditCardBrand":"VISA"}`)
	user := f.addUser(t, newClient(0))

	// 2. Действие
	res, err := f.user.Onboard(ctx, user.ID, "10.0.0.1")

	// 3. Проверка
	require.NoError(t, err)
	assert.Equal(t, "cus_9", res.CustomerID)
	assert.Equal(t, "tok_9", res.CardToken)
	assert.Empty(t, res.WalletID)
	assert.False(t, f.gw.called("create_subaccount"), "клиенту субаккаунт не нужен")

	tok := f.gw.input("tokenize_card").(gateway.TokenizeInput)
	assert.Equal(t, "cus_9", tok.CustomerID, "токенизация использует id нового клиента")
	assert.Equal(t, "10.0.0.1", tok.RemoteIP)
	assert.Equal(t, "05/29", tok.Expiry)

	cust := f.gw.input("register_customer").(gateway.CustomerInput)
	assert.Equal(t, "12345678909", cust.CpfCnpj)
	assert.Equal(t, "Centro", cust.Address)
	assert.Equal(t, "Rua A", cust.Province)

	saved := f.reload(t, user.ID)
	assert.Equal(t, res.Rev, saved.Rev)
	assert.Empty(t, saved.PaymentData.CVV, "CVV не должен сохраняться")
	assert.Equal(t, "cus_9", saved.CustomerID())
	assert.Equal(t, "tok_9", saved.CardToken())
	assert.Equal(t, "VISA", saved.PaymentData.GatewayCardData.String("creditCardBrand"))
	assert.Nil(t, saved.PaymentData.GatewaySubaccountData)
}

func TestOnboard_PartnerRecoversSubaccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	// 1. Подготовка: создание субаккаунта отклонено, он уже существует
	f.gw.fail("create_subaccount", http.StatusBadRequest, `{"errors":[{"description":"email already in use"}]}`).
		respond("recover_subaccount", `{"totalCount":1,"data":[{"id":"acc_1","walletId":"wal_1"}]}`)
	partner := newClient(0)
	partner.Role = models.UserRolePartner
	f.addUser(t, partner)

	// 2. Действие
	res, err := f.user.Onboard(ctx, partner.ID, "10.0.0.1")

	// 3. Проверка
	require.NoError(t, err)
	assert.Equal(t, "wal_1", res.WalletID)
	assert.Equal(t, "client@example.com", f.gw.input("recover_subaccount"))

	saved := f.reload(t, partner.ID)
	assert.Equal(t, "wal_1", saved.WalletID())
	assert.Equal(t, "acc_1", saved.PaymentData.GatewaySubaccountData.String("id"))
}

func TestOnboard_PartnerCreatesSubaccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.gw.respond("create_subaccount", `{"id":"acc_2","walletId":"wal_2"}`)
	partner := newClient(0)
	partner.Role = models.UserRolePartner
	partner.DocumentType = models.DocumentTypeCNPJ
	partner.CompanyType = models.CompanyTypeMEI
	f.addUser(t, partner)

	res, err := f.user.Onboard(ctx, partner.ID, "10.0.0.1")

	require.NoError(t, err)
	assert.Equal(t, "wal_2", res.WalletID)
	assert.False(t, f.gw.called("recover_subaccount"))

	cust := f.gw.input("register_customer").(gateway.CustomerInput)
	acc := f.gw.input("create_subaccount").(gateway.SubaccountInput)
	assert.Equal(t, cust.Address, acc.Address, "адрес совпадает с регистрацией клиента")
	assert.Equal(t, cust.Province, acc.Province)
	assert.Equal(t, "Centro", acc.Address)
	assert.Equal(t, "Rua A", acc.Province)
	assert.Equal(t, "CNPJ", acc.DocumentType)
	assert.Equal(t, "MEI", acc.CompanyType)
}

func TestOnboard_PartnerEmptyRecovery(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.gw.fail("create_subaccount", http.StatusBadRequest, `{"errors":[]}`).
		respond("recover_subaccount", `{"totalCount":0,"data":[]}`)
	partner := newClient(0)
	partner.Role = models.UserRolePartner
	f.addUser(t, partner)

	_, err := f.user.Onboard(ctx, partner.ID, "10.0.0.1")

	appErr := requireAppError(t, err)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPCode)
	assert.Equal(t, StepRecoverSubaccount, appErr.Step)
	assert.Equal(t, apperrors.DomainGateway, appErr.Domain)

	saved := f.reload(t, partner.ID)
	assert.Equal(t, partner.Rev, saved.Rev, "при ошибке документ не меняется")
	assert.Equal(t, "123", saved.PaymentData.CVV)
}

func TestOnboard_TokenizeFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.gw.fail("tokenize_card", http.StatusBadRequest, `{"errors":[{"code":"invalid_creditCard","description":"Cartão inválido"}]}`)
	user := f.addUser(t, newClient(0))

	_, err := f.user.Onboard(ctx, user.ID, "10.0.0.1")

	appErr := requireAppError(t, err)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPCode)
	assert.Equal(t, StepTokenizeCard, appErr.Step)
	details, ok := appErr.Details.(map[string]any)
	require.True(t, ok, "details должны содержать тело ответа шлюза")
	assert.Contains(t, details, "errors")
	assert.True(t, f.gw.called("register_customer"), "клиент уже зарегистрирован, отката нет")
}

func TestOnboard_UserNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.user.Onboard(context.Background(), "missing", "10.0.0.1")

	appErr := requireAppError(t, err)
	assert.Equal(t, http.StatusNotFound, appErr.HTTPCode)
	assert.Equal(t, StepLoadUser, appErr.Step)
	assert.False(t, f.gw.called("register_customer"))
}

// =======================
// Subscription
// =======================

func TestSubscribe_WithPlanPartner(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	// 1. Подготовка
	partner := f.addUser(t, newPartner("wal_7"))
	plan := f.addPlan(t, &models.Plan{Title: "Pro", Subtitle: "Pro monthly", Price: 49.9, PromotionDays: 10, PartnerID: partner.ID})
	user := f.addUser(t, registered(newClient(3)))
	f.gw.respond("create_subscription", `{"id":"sub_1","status":"ACTIVE"}`)

	// 2. Действие
	body, err := f.plan.Subscribe(ctx, plan.ID, user.ID, "", "10.0.0.1")

	// 3. Проверка
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"sub_1","status":"ACTIVE"}`, string(body))

	in := f.gw.input("create_subscription").(gateway.SubscriptionInput)
	require.NotNil(t, in.Split)
	assert.Equal(t, "wal_7", in.Split.WalletID)
	assert.Equal(t, float64(75), in.Split.PercentualValue)
	assert.Equal(t, "Subscription", in.Split.ExternalReference)
	assert.Equal(t, "Administration fee", in.Split.Description)
	assert.Equal(t, "2025-04-10", in.NextDueDate)
	assert.Equal(t, gateway.CycleMonthly, in.Cycle)
	assert.Equal(t, 49.9, in.Value)
	assert.Equal(t, "Pro monthly", in.Description)
	assert.Equal(t, "cus_1", in.CustomerID)
	assert.Equal(t, "tok_1", in.CardToken)

	saved := f.reload(t, user.ID)
	assert.Equal(t, float64(50), saved.Credits, "кредиты = ceil(price)")
	assert.Equal(t, plan.ID, saved.PaymentData.PlanID)
	assert.Equal(t, "sub_1", saved.SubscriptionID())
}

func TestSubscribe_AdminTemplateUsesRequestedPartner(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	partner := f.addUser(t, newPartner("wal_admin"))
	plan := f.addPlan(t, &models.Plan{Title: "Template", Price: 10, PartnerID: models.AdminPlanPartnerID})
	user := f.addUser(t, registered(newClient(0)))

	_, err := f.plan.Subscribe(ctx, plan.ID, user.ID, partner.ID, "10.0.0.1")

	require.NoError(t, err)
	in := f.gw.input("create_subscription").(gateway.SubscriptionInput)
	require.NotNil(t, in.Split)
	assert.Equal(t, "wal_admin", in.Split.WalletID)
	assert.Equal(t, "2025-03-31", in.NextDueDate, "без промо-периода списание сегодня")
}

func TestSubscribe_WithoutPartner(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	plan := f.addPlan(t, &models.Plan{Title: "Solo", Price: 19.5})
	user := f.addUser(t, registered(newClient(4)))

	_, err := f.plan.Subscribe(ctx, plan.ID, user.ID, "", "10.0.0.1")

	require.NoError(t, err)
	in := f.gw.input("create_subscription").(gateway.SubscriptionInput)
	assert.Nil(t, in.Split, "без партнера разделения нет")
	assert.Equal(t, float64(4), f.reload(t, user.ID).Credits, "кредиты не меняются")
}

func TestSubscribe_PartnerRoleSkipsPartnerLookup(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	plan := f.addPlan(t, &models.Plan{Title: "Pro", Price: 10, PartnerID: "unknown-partner"})
	user := registered(newClient(0))
	user.Role = models.UserRolePartner
	f.addUser(t, user)

	_, err := f.plan.Subscribe(ctx, plan.ID, user.ID, "", "10.0.0.1")

	require.NoError(t, err)
	assert.Nil(t, f.gw.input("create_subscription").(gateway.SubscriptionInput).Split)
}

func TestSubscribe_PartnerFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("partner not found", func(t *testing.T) {
		f := newFixture()
		plan := f.addPlan(t, &models.Plan{Title: "Pro", Price: 10, PartnerID: "ghost"})
		user := f.addUser(t, registered(newClient(0)))

		_, err := f.plan.Subscribe(ctx, plan.ID, user.ID, "", "10.0.0.1")

		appErr := requireAppError(t, err)
		assert.Equal(t, http.StatusNotFound, appErr.HTTPCode)
		assert.Equal(t, StepLoadPartner, appErr.Step)
		assert.False(t, f.gw.called("create_subscription"))
	})

	t.Run("partner without wallet", func(t *testing.T) {
		f := newFixture()
		partner := f.addUser(t, newPartner(""))
		plan := f.addPlan(t, &models.Plan{Title: "Pro", Price: 10, PartnerID: partner.ID})
		user := f.addUser(t, registered(newClient(0)))

		_, err := f.plan.Subscribe(ctx, plan.ID, user.ID, "", "10.0.0.1")

		appErr := requireAppError(t, err)
		assert.Equal(t, http.StatusBadRequest, appErr.HTTPCode)
		assert.False(t, f.gw.called("create_subscription"))
	})

	t.Run("gateway rejects", func(t *testing.T) {
		f := newFixture()
		plan := f.addPlan(t, &models.Plan{Title: "Solo", Price: 10})
		user := f.addUser(t, registered(newClient(2)))
		f.gw.fail("create_subscription", http.StatusBadRequest, `{"errors":[{"description":"card declined"}]}`)

		_, err := f.plan.Subscribe(ctx, plan.ID, user.ID, "", "10.0.0.1")

		appErr := requireAppError(t, err)
		assert.Equal(t, StepCreateSubscription, appErr.Step)
		saved := f.reload(t, user.ID)
		assert.Equal(t, user.Rev, saved.Rev)
		assert.Empty(t, saved.SubscriptionID())
	})
}

func TestDueDate(t *testing.T) {
	assert.Equal(t, "2025-03-31", dueDate(fixedNow, 0))
	assert.Equal(t, "2025-04-30", dueDate(fixedNow, 30))
	assert.Equal(t, "2025-04-01", dueDate(fixedNow, 1))
}

// =======================
// Cancellation
// =======================

func TestCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("no subscription id", func(t *testing.T) {
		f := newFixture()
		user := f.addUser(t, registered(newClient(0)))

		_, err := f.plan.Cancel(ctx, user.ID)

		appErr := requireAppError(t, err)
		assert.Equal(t, http.StatusNotFound, appErr.HTTPCode)
		assert.Equal(t, "Subscription not found", appErr.Message)
		assert.False(t, f.gw.called("cancel_subscription"), "шлюз не вызывается без id подписки")
	})

	t.Run("user not found", func(t *testing.T) {
		f := newFixture()

		_, err := f.plan.Cancel(ctx, "missing")

		appErr := requireAppError(t, err)
		assert.Equal(t, http.StatusNotFound, appErr.HTTPCode)
		assert.Equal(t, "User not found", appErr.Message)
	})

	t.Run("cancels and stores gateway body", func(t *testing.T) {
		f := newFixture()
		user := registered(newClient(0))
		user.Payment().GatewayPlanData = models.GatewayData{"id": "sub_5", "status": "ACTIVE"}
		f.addUser(t, user)
		f.gw.respond("cancel_subscription", `{"deleted":true,"id":"sub_5"}`)

		body, err := f.plan.Cancel(ctx, user.ID)

		require.NoError(t, err)
		assert.JSONEq(t, `{"deleted":true,"id":"sub_5"}`, string(body))
		assert.Equal(t, "sub_5", f.gw.input("cancel_subscription"))
		saved := f.reload(t, user.ID)
		assert.Equal(t, true, saved.PaymentData.GatewayPlanData["deleted"])
	})
}

// =======================
// Credits
// =======================

func TestBuyCredits(t *testing.T) {
	ctx := context.Background()

	t.Run("charge succeeds", func(t *testing.T) {
		f := newFixture()
		user := f.addUser(t, registered(newClient(2.5)))

		res, err := f.plan.BuyCredits(ctx, &dto.BuyCreditsRequest{UserID: user.ID, Amount: 10}, "10.0.0.1")

		require.NoError(t, err)
		assert.Equal(t, 12.5, res.Credits)
		assert.Equal(t, 12.5, f.reload(t, user.ID).Credits)

		in := f.gw.input("charge_card").(gateway.ChargeCardInput)
		assert.Equal(t, "Credit purchase", in.Description)
		assert.Equal(t, float64(10), in.Value)
		assert.Equal(t, "tok_1", in.CardToken)
	})

	t.Run("charge fails", func(t *testing.T) {
		f := newFixture()
		user := f.addUser(t, registered(newClient(2.5)))
		f.gw.fail("charge_card", http.StatusBadRequest, `{"errors":[{"description":"insufficient funds"}]}`)

		_, err := f.plan.BuyCredits(ctx, &dto.BuyCreditsRequest{UserID: user.ID, Amount: 10}, "10.0.0.1")

		appErr := requireAppError(t, err)
		assert.Equal(t, StepChargeCard, appErr.Step)
		assert.Equal(t, 2.5, f.reload(t, user.ID).Credits, "кредиты не меняются при отказе")
	})

	t.Run("user not found", func(t *testing.T) {
		f := newFixture()

		_, err := f.plan.BuyCredits(ctx, &dto.BuyCreditsRequest{UserID: "missing", Amount: 10}, "10.0.0.1")

		appErr := requireAppError(t, err)
		assert.Equal(t, http.StatusNotFound, appErr.HTTPCode)
		assert.False(t, f.gw.called("charge_card"))
	})
}

func TestChargePix_RequiresGatewayCustomer(t *testing.T) {
	f := newFixture()
	user := f.addUser(t, newClient(0))

	_, err := f.plan.ChargePix(context.Background(), &dto.PixChargeRequest{UserID: user.ID, Amount: 5})

	appErr := requireAppError(t, err)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPCode)
	assert.False(t, f.gw.called("charge_pix"))
}

// =======================
// Persistence after gateway success
// =======================

func TestPersistFailureAfterGatewaySuccess(t *testing.T) {
	ctx := context.Background()
	storeErr := errors.New("store unavailable")

	cases := []struct {
		name      string
		gatewayOp string
		seed      func(f *fixture) *models.User
		run       func(f *fixture, userID string) error
		check     func(t *testing.T, saved *models.User)
	}{
		{
			name:      "onboarding",
			gatewayOp: "tokenize_card",
			seed:      func(f *fixture) *models.User { return newClient(0) },
			run: func(f *fixture, userID string) error {
				_, err := f.user.Onboard(ctx, userID, "10.0.0.1")
				return err
			},
			check: func(t *testing.T, saved *models.User) {
				assert.Empty(t, saved.CustomerID())
				assert.Equal(t, "123", saved.PaymentData.CVV)
			},
		},
		{
			name:      "subscription",
			gatewayOp: "create_subscription",
			seed:      func(f *fixture) *models.User { return registered(newClient(4)) },
			run: func(f *fixture, userID string) error {
				plan := &models.Plan{Title: "Solo", Price: 19.5}
				if _, err := f.plans.Create(ctx, plan); err != nil {
					return err
				}
				_, err := f.plan.Subscribe(ctx, plan.ID, userID, "", "10.0.0.1")
				return err
			},
			check: func(t *testing.T, saved *models.User) {
				assert.Empty(t, saved.SubscriptionID())
				assert.Equal(t, float64(4), saved.Credits)
			},
		},
		{
			name:      "credit purchase",
			gatewayOp: "charge_card",
			seed:      func(f *fixture) *models.User { return registered(newClient(2.5)) },
			run: func(f *fixture, userID string) error {
				_, err := f.plan.BuyCredits(ctx, &dto.BuyCreditsRequest{UserID: userID, Amount: 10}, "10.0.0.1")
				return err
			},
			check: func(t *testing.T, saved *models.User) {
				assert.Equal(t, 2.5, saved.Credits, "списание прошло, баланс остался прежним")
			},
		},
		{
			name:      "cancellation",
			gatewayOp: "cancel_subscription",
			seed: func(f *fixture) *models.User {
				u := registered(newClient(0))
				u.Payment().GatewayPlanData = models.GatewayData{"id": "sub_5", "status": "ACTIVE"}
				return u
			},
			run: func(f *fixture, userID string) error {
				_, err := f.plan.Cancel(ctx, userID)
				return err
			},
			check: func(t *testing.T, saved *models.User) {
				assert.Equal(t, "ACTIVE", saved.PaymentData.GatewayPlanData.String("status"))
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			user := f.addUser(t, tc.seed(f))
			f.breakPersistence(storeErr)

			err := tc.run(f, user.ID)

			appErr := requireAppError(t, err)
			assert.Equal(t, http.StatusBadRequest, appErr.HTTPCode)
			assert.Equal(t, StepPersistUser, appErr.Step)
			assert.ErrorIs(t, err, storeErr)
			assert.True(t, f.gw.called(tc.gatewayOp), "вызов шлюза не откатывается")

			saved := f.reload(t, user.ID)
			assert.Equal(t, user.Rev, saved.Rev)
			tc.check(t, saved)
		})
	}
}

func TestPersistConflictAfterGatewaySuccess(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	user := f.addUser(t, registered(newClient(2.5)))
	f.breakPersistence(docstore.ErrConflict)

	_, err := f.plan.BuyCredits(ctx, &dto.BuyCreditsRequest{UserID: user.ID, Amount: 10}, "10.0.0.1")

	appErr := requireAppError(t, err)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPCode)
	assert.Equal(t, StepPersistUser, appErr.Step)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
	assert.True(t, f.gw.called("charge_card"))
	assert.Equal(t, 2.5, f.reload(t, user.ID).Credits)
}
