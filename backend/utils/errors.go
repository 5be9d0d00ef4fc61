package utils

import (
	"fmt"
	"net/http"
)

const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeBadRequest        = "BAD_REQUEST"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeNotFound          = "NOT_FOUND"
	CodeConflict          = "CONFLICT"
	CodeInsufficientFunds = "INSUFFICIENT_FUNDS"
	CodePaymentFailed     = "PAYMENT_FAILED"
	CodeLessonLocked      = "LESSON_LOCKED"
	CodeAttemptsExhausted = "ATTEMPTS_EXHAUSTED"
	CodeInternal          = "INTERNAL_ERROR"
)

// AppError is an error the API reports to clients as-is.
type AppError struct {
	Status  int
	Code    string
	Message string
	Details interface{}
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(status int, code, message string) *AppError {
	return &AppError{Status: status, Code: code, Message: message}
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

func ValidationErr(message string, details ...interface{}) *AppError {
	err := NewAppError(http.StatusBadRequest, CodeValidation, message)
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

func BadRequestErr(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeBadRequest, message)
}

func UnauthorizedErr(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message)
}

func ForbiddenErr(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message)
}

// NotFoundErr formats "<what> not found".
func NotFoundErr(what string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, fmt.Sprintf("%s not found", what))
}

func ConflictErr(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, message)
}

func InsufficientFundsErr() *AppError {
	return NewAppError(http.StatusPaymentRequired, CodeInsufficientFunds, "insufficient wallet balance")
}

func PaymentFailedErr(message string) *AppError {
	return NewAppError(http.StatusPaymentRequired, CodePaymentFailed, message)
}

func LessonLockedErr() *AppError {
	return NewAppError(http.StatusForbidden, CodeLessonLocked, "complete the previous section to unlock this lesson")
}

func AttemptsExhaustedErr() *AppError {
	return NewAppError(http.StatusForbidden, CodeAttemptsExhausted, "no attempts left for this quiz")
}
