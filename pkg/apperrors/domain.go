package apperrors

import (
	"net/http"
)

/*
Фабрики для ошибок бизнес-логики и внешних систем.
Статусы ограничены 400/404/500: конфликт ревизии отдается как 400.
*/

// ErrNotFound - фабрика для ошибки "не найдено" (404)
func ErrNotFound(err error, domain, message string) *AppError {
	return Wrap(err, CodeNotFound, domain, message, http.StatusNotFound)
}

// ErrConflict - устаревшая или отсутствующая ревизия документа (400)
func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusBadRequest)
}

// ErrGateway - ошибка вызова платежного шлюза (400), details = тело ответа шлюза
func ErrGateway(err error, step, message string, details interface{}) *AppError {
	return Wrap(err, CodeGatewayError, DomainGateway, message, http.StatusBadRequest).
		WithStep(step).
		WithDetails(details)
}

// ErrStore - ошибка записи в хранилище документов в середине оркестрации (400)
func ErrStore(err error, step, message string) *AppError {
	appErr := Wrap(err, CodeStoreError, DomainStore, message, http.StatusBadRequest).WithStep(step)
	if err != nil {
		appErr.Details = err.Error()
	}
	return appErr
}

// ErrInvalidOperation - фабрика для невалидных операций (400)
func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// --- Uploads ---

var ErrFileTooLarge = New(
	CodeFileTooLarge,
	DomainUpload,
	"File exceeds the maximum allowed size",
	http.StatusBadRequest,
)

var ErrMissingFile = New(
	CodeValidationFailed,
	DomainUpload,
	"No file uploaded",
	http.StatusBadRequest,
)
