package models

type User struct {
	Document
	Email        string       `json:"email" validate:"required,email"`
	DocumentNo   string       `json:"document"`
	Name         string       `json:"name"`
	BirthDate    string       `json:"birthDate,omitempty"`
	DocumentType DocumentType `json:"documentType,omitempty" validate:"omitempty,is-document-type"`
	CompanyType  CompanyType  `json:"companyType,omitempty" validate:"omitempty,is-company-type"`
	PersonType   string       `json:"personType,omitempty"`
	Role         UserRole     `json:"role" validate:"required,is-user-role"`
	Password     string       `json:"password,omitempty"`
	Phone        string       `json:"phone,omitempty"`
	URL          string       `json:"url,omitempty"`
	CreatedAt    string       `json:"createdAt,omitempty"`
	PartnerID    string       `json:"partnerId,omitempty"`
	Credits      float64      `json:"credits"`

	AddressData         *AddressData         `json:"address_data,omitempty"`
	PaymentData         *PaymentData         `json:"payment_data,omitempty"`
	PersonalizationData *PersonalizationData `json:"personalization_data,omitempty"`
}

type AddressData struct {
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	Zipcode      string `json:"zipcode"`
	Country      string `json:"country"`
}

type PaymentData struct {
	PlanID         string `json:"planId,omitempty"`
	CardNumber     string `json:"card_number,omitempty"`
	CardHolderName string `json:"card_holder_name,omitempty"`
	ExpirationDate string `json:"expiration_date,omitempty"` // MM/YY
	CVV            string `json:"cvv,omitempty"`

	GatewayUserData       GatewayData `json:"gateway_user_data,omitempty"`
	GatewayCardData       GatewayData `json:"gateway_card_data,omitempty"`
	GatewayPlanData       GatewayData `json:"gateway_plan_data,omitempty"`
	GatewaySubaccountData GatewayData `json:"gateway_subaccount_data,omitempty"`
}

type PersonalizationData struct {
	PrimaryColor    string      `json:"primary_color"`
	SecondaryColor  string      `json:"secondary_color"`
	PageTitle       string      `json:"page_title"`
	PageSubtitle    string      `json:"page_subtitle"`
	PageDescription string      `json:"page_description"`
	ImageURL        string      `json:"image_url"`
	SocialMedia     SocialMedia `json:"social_media"`
	ContactInfo     ContactInfo `json:"contact_info"`
}

type SocialMedia struct {
	Facebook  string `json:"facebook,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	YouTube   string `json:"youtube,omitempty"`
}

type ContactInfo struct {
	Email    string `json:"email,omitempty"`
	WhatsApp string `json:"whatsapp,omitempty"`
	Location string `json:"location,omitempty"`
}

// Payment возвращает платежные данные, создавая их при необходимости
func (u *User) Payment() *PaymentData {
	if u.PaymentData == nil {
		u.PaymentData = &PaymentData{}
	}
	return u.PaymentData
}

// Address возвращает адрес или пустую структуру
func (u *User) Address() AddressData {
	if u.AddressData == nil {
		return AddressData{}
	}
	return *u.AddressData
}

// CustomerID - id клиента в платежном шлюзе
func (u *User) CustomerID() string {
	if u.PaymentData == nil {
		return ""
	}
	return u.PaymentData.GatewayUserData.String("id")
}

// CardToken - токен карты в платежном шлюзе
func (u *User) CardToken() string {
	if u.PaymentData == nil {
		return ""
	}
	return u.PaymentData.GatewayCardData.String("creditCardToken")
}

// SubscriptionID - id подписки в платежном шлюзе
func (u *User) SubscriptionID() string {
	if u.PaymentData == nil {
		return ""
	}
	return u.PaymentData.GatewayPlanData.String("id")
}

// WalletID - кошелек субаккаунта партнера
func (u *User) WalletID() string {
	if u.PaymentData == nil {
		return ""
	}
	return u.PaymentData.GatewaySubaccountData.String("walletId")
}
