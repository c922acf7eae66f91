package serverutils

import (
	"errors"
	"fmt"

	"myinco-admin-be/internal/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns panics and unhandled handler errors into the
// standard envelope. Unknown errors are logged and answered generically.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("HTTP", "Recovered from panic", map[string]interface{}{
					"panic":  fmt.Sprint(r),
					"method": ctx.Method(),
					"path":   ctx.Path(),
				})
				err = ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(500, "Internal server error"))
			}
		}()

		err = ctx.Next()
		if err == nil {
			return nil
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return ctx.Status(fe.Code).JSON(ErrorResponse(fe.Code, fe.Message))
		}
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(400, ValidationMessage(err)))
		}

		log.Error("HTTP", "Unhandled error", map[string]interface{}{
			"error":  err.Error(),
			"method": ctx.Method(),
			"path":   ctx.Path(),
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(500, "Internal server error"))
	}
}
