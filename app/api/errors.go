package api

import (
	"errors"
	"log/slog"

	"doclib/types"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler maps internal failures to user-safe JSON responses. Embedding
// and storage causes are logged but never leak into the response body.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if apiErr, ok := err.(Error); ok {
		return c.Status(apiErr.Code).JSON(apiErr)
	}
	if valErr, ok := err.(types.ValidationError); ok {
		return c.Status(valErr.Status).JSON(valErr)
	}

	var embErr types.EmbeddingError
	var storeErr types.StorageError
	switch {
	case errors.As(err, &embErr):
		slog.Default().Error("embedding provider failure", "error", embErr.Err)
		return c.Status(fiber.StatusBadGateway).JSON(NewError(fiber.StatusBadGateway, "search failed"))
	case errors.As(err, &storeErr):
		slog.Default().Error("storage failure", "op", storeErr.Op, "error", storeErr.Err)
		return c.Status(fiber.StatusInternalServerError).JSON(NewError(fiber.StatusInternalServerError, "search failed"))
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(NewError(fiberErr.Code, fiberErr.Message))
	}

	slog.Default().Error("request failed", "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(NewError(fiber.StatusInternalServerError, "internal error"))
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
}

// Error implements the error interface
func (e Error) Error() string {
	return e.Message
}

func NewError(code int, err string) Error {
	return Error{
		Code:    code,
		Message: err,
	}
}

func ErrBadRequest() Error {
	return Error{
		Code:    fiber.StatusBadRequest,
		Message: "invalid JSON request",
	}
}

func ErrInvalidID() Error {
	return Error{
		Code:    fiber.StatusBadRequest,
		Message: "invalid id given",
	}
}

func ErrUnAuthorized(msg string) Error {
	return Error{
		Code:    fiber.StatusUnauthorized,
		Message: msg,
	}
}
