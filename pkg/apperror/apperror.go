// Package apperror — единая таксономия ошибок сервиса.
// Сервисный слой возвращает *AppError, хэндлеры переводят Type в HTTP-статус.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorType int

const (
	Internal ErrorType = iota
	Authentication
	Authorization
	NotFound
	Validation
	Conflict
	Database
)

type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode переводит тип ошибки в HTTP-статус.
// 401 — не аутентифицирован, 403 — аутентифицирован, но нет прав.
func (e *AppError) StatusCode() int {
	switch e.Type {
	case Authentication:
		return http.StatusUnauthorized
	case Authorization:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Validation:
		return http.StatusBadRequest
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func New(errType ErrorType, message string, err error) *AppError {
	return &AppError{Type: errType, Message: message, Err: err}
}

func NewAuthentication(message string, err error) *AppError {
	return New(Authentication, message, err)
}

func NewAuthorization(message string, err error) *AppError {
	return New(Authorization, message, err)
}

func NewNotFound(message string, err error) *AppError {
	return New(NotFound, message, err)
}

func NewValidation(message string, err error) *AppError {
	return New(Validation, message, err)
}

func NewConflict(message string, err error) *AppError {
	return New(Conflict, message, err)
}

func NewDatabase(message string, err error) *AppError {
	return New(Database, message, err)
}

func NewInternal(message string, err error) *AppError {
	return New(Internal, message, err)
}

// FromError достает *AppError из цепочки обернутых ошибок.
func FromError(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

func isType(err error, t ErrorType) bool {
	var ae *AppError
	return errors.As(err, &ae) && ae.Type == t
}

func IsAuthentication(err error) bool { return isType(err, Authentication) }
func IsAuthorization(err error) bool  { return isType(err, Authorization) }
func IsNotFound(err error) bool       { return isType(err, NotFound) }
func IsValidation(err error) bool     { return isType(err, Validation) }
func IsConflict(err error) bool       { return isType(err, Conflict) }
