package apperrors

// ErrorCode - тип для кодов ошибок
type ErrorCode string

const (
	// Системные и неизвестные ошибки
	CodeInternalError ErrorCode = "INTERNAL_ERROR"
	CodeStoreError    ErrorCode = "STORE_ERROR"

	// Ошибки платежного шлюза
	CodeGatewayError ErrorCode = "GATEWAY_ERROR"

	// Общие ошибки бизнес-логики
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeInvalidOperation ErrorCode = "INVALID_OPERATION"
	CodeFileTooLarge     ErrorCode = "FILE_TOO_LARGE"
)

// Домены, в которых может возникнуть ошибка
const (
	DomainSystem   = "system"
	DomainRequest  = "request"
	DomainGateway  = "payment_gateway"
	DomainStore    = "document_store"
	DomainEmail    = "email"
	DomainUpload   = "upload"
	DomainUser     = "user"
	DomainPlan     = "plan"
	DomainPurchase = "purchase"
)
