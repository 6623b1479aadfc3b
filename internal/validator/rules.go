package validator

import (
	"log"

	"dealvalue_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules регистрирует все кастомные функции валидации в
// переданном экземпляре валидатора.
func registerCustomRules(v *validator.Validate) {

	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// Без правил приложение запускать нельзя
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	// 'is-user-role': client, partner, admin
	mustRegister("is-user-role", validateUserRole)

	// 'is-document-type': CPF или CNPJ
	mustRegister("is-document-type", validateDocumentType)

	// 'is-company-type': типы компаний платежного шлюза
	mustRegister("is-company-type", validateCompanyType)

	// 'is-billing-cycle': периодичность подписки
	mustRegister("is-billing-cycle", validateBillingCycle)

	// 'card-expiry': срок действия карты в формате MM/YY
	mustRegister("card-expiry", validateCardExpiry)
}

// --- Функции валидации ---

func validateUserRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Не проверяем пустые значения, для этого есть 'required'
	}

	switch models.UserRole(value) {
	case models.UserRoleClient, models.UserRolePartner, models.UserRoleAdmin:
		return true
	default:
		return false
	}
}

func validateDocumentType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.DocumentType(value) {
	case models.DocumentTypeCPF, models.DocumentTypeCNPJ:
		return true
	default:
		return false
	}
}

func validateCompanyType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.CompanyType(value) {
	case models.CompanyTypeMEI, models.CompanyTypeLimited, models.CompanyTypeIndividual, models.CompanyTypeAssociation:
		return true
	default:
		return false
	}
}

func validateBillingCycle(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", "WEEKLY", "BIWEEKLY", "MONTHLY", "BIMONTHLY", "QUARTERLY", "SEMIANNUALLY", "YEARLY":
		return true
	default:
		return false
	}
}

func validateCardExpiry(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if len(value) != 5 || value[2] != '/' {
		return false
	}
	for _, i := range []int{0, 1, 3, 4} {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	month := int(value[0]-'0')*10 + int(value[1]-'0')
	return month >= 1 && month <= 12
}
