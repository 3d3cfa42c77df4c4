package serverutils

import (
	"errors"

	"cardiac-assistant-be/internal/constant"
	"cardiac-assistant-be/pkg/rag"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware renders any error returned down the chain as a
// BaseResponse. A failed answer generation is a 502.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := fiber.StatusInternalServerError
		message := "Internal server error"

		var fe *fiber.Error
		switch {
		case errors.As(err, &fe):
			code = fe.Code
			message = fe.Message
		case errors.Is(err, rag.ErrGeneration):
			code = fiber.StatusBadGateway
			message = constant.GenerationFailedMessage
		}

		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}
