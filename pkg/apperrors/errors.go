package apperrors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError - основная структура ошибки приложения
type AppError struct {
	Code     ErrorCode   `json:"code"`
	Domain   string      `json:"domain"`
	Step     string      `json:"step,omitempty"` // шаг оркестрации, на котором произошла ошибка
	Message  string      `json:"error"`
	Details  interface{} `json:"details,omitempty"`
	Err      error       `json:"-"`
	HTTPCode int         `json:"-"`
}

func (e *AppError) Error() string {
	prefix := fmt.Sprintf("[%s:%s]", e.Domain, e.Code)
	if e.Step != "" {
		prefix = fmt.Sprintf("[%s:%s:%s]", e.Domain, e.Step, e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s (%v)", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s", prefix, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New - базовый конструктор
func New(code ErrorCode, domain, message string, httpCode int) *AppError {
	return &AppError{
		Code:     code,
		Domain:   domain,
		Message:  message,
		HTTPCode: httpCode,
	}
}

// Wrap - оборачивает существующую ошибку в AppError
func Wrap(err error, code ErrorCode, domain, message string, httpCode int) *AppError {
	return &AppError{
		Code:     code,
		Domain:   domain,
		Message:  message,
		Err:      err,
		HTTPCode: httpCode,
	}
}

// Вспомогательные методы
func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

func (e *AppError) WithStep(step string) *AppError {
	e.Step = step
	return e
}

// MarshalJSON - тело ответа: {"error": ..., "code": ..., "domain": ..., "step": ..., "details": ...}
func (e *AppError) MarshalJSON() ([]byte, error) {
	type alias struct {
		Error   string      `json:"error"`
		Code    ErrorCode   `json:"code"`
		Domain  string      `json:"domain"`
		Step    string      `json:"step,omitempty"`
		Details interface{} `json:"details,omitempty"`
	}
	return json.Marshal(&alias{
		Error:   e.Message,
		Code:    e.Code,
		Domain:  e.Domain,
		Step:    e.Step,
		Details: e.Details,
	})
}

// Is - обертка над стандартной функцией errors.Is
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As - обертка над стандартной функцией errors.As
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// --- ОБЩИЕ ХЕЛПЕРЫ (не-доменные) ---

// InternalError оборачивает неизвестную системную ошибку.
// Текст исходной ошибки возвращается клиенту как есть.
func InternalError(err error) *AppError {
	msg := "Internal server error"
	if err != nil {
		msg = err.Error()
	}
	return Wrap(err, CodeInternalError, DomainSystem, msg, http.StatusInternalServerError)
}

// ValidationError создает ошибку валидации с деталями
func ValidationError(details interface{}) *AppError {
	return New(CodeValidationFailed, "validation", "Validation failed", http.StatusBadRequest).WithDetails(details)
}

// NewBadRequestError создает ошибку 400
func NewBadRequestError(message string) *AppError {
	return New(CodeValidationFailed, DomainRequest, message, http.StatusBadRequest)
}
