package utils

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SuccessResponse is the envelope of every successful reply.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// ErrorResponse carries the error code in Error.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func Success(c *fiber.Ctx, status int, data interface{}, meta ...interface{}) error {
	response := SuccessResponse{
		Success: true,
		Data:    data,
	}

	if len(meta) > 0 {
		response.Meta = meta[0]
	}

	return c.Status(status).JSON(response)
}

func OK(c *fiber.Ctx, data interface{}) error {
	return Success(c, fiber.StatusOK, data)
}

func Created(c *fiber.Ctx, data interface{}) error {
	return Success(c, fiber.StatusCreated, data)
}

func Message(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusOK).JSON(SuccessResponse{Success: true, Message: message})
}

func NoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

type PaginatedResponse struct {
	Success  bool        `json:"success"`
	Data     interface{} `json:"data"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
}

func Paginate(c *fiber.Ctx, data interface{}, total int64, p Page) error {
	return c.JSON(PaginatedResponse{
		Success:  true,
		Data:     data,
		Total:    total,
		Page:     p.Number,
		PageSize: p.Size,
	})
}

// ErrorHandler is the fiber error handler for the whole API.
func ErrorHandler(reporter *Reporter) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		appErr := ToAppError(err)
		if appErr.Status >= http.StatusInternalServerError {
			reporter.Error(c, err)
		}
		return c.Status(appErr.Status).JSON(ErrorResponse{
			Success: false,
			Error:   appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		})
	}
}

// ToAppError classifies any error returned by a handler.
func ToAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return ValidationErr("validation failed", TranslateValidation(validationErrs))
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundErr("resource")
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return NewAppError(fiberErr.Code, codeForStatus(fiberErr.Code), fiberErr.Message)
	}

	return NewAppError(http.StatusInternalServerError, CodeInternal, http.StatusText(http.StatusInternalServerError))
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return CodeBadRequest
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	default:
		if status >= http.StatusInternalServerError {
			return CodeInternal
		}
		return CodeBadRequest
	}
}
