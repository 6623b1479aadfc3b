package models

type UserRole string
type DocumentType string
type CompanyType string

const (
	UserRoleClient  UserRole = "client"
	UserRolePartner UserRole = "partner"
	UserRoleAdmin   UserRole = "admin"

	DocumentTypeCPF  DocumentType = "CPF"
	DocumentTypeCNPJ DocumentType = "CNPJ"

	CompanyTypeMEI         CompanyType = "MEI"
	CompanyTypeLimited     CompanyType = "LIMITED"
	CompanyTypeIndividual  CompanyType = "INDIVIDUAL"
	CompanyTypeAssociation CompanyType = "ASSOCIATION"
)

// AdminPlanPartnerID - partnerId шаблона плана, созданного администратором.
// Для таких планов партнер берется из запроса.
const AdminPlanPartnerID = "admin-created-client-plan"
