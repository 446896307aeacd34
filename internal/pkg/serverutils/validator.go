package serverutils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ValidationError carries field-level messages back to the error middleware.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

// ValidateRequest runs struct tag validation on a bound request body.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		var fields []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag()))
			}
		} else {
			fields = append(fields, err.Error())
		}
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ErrorHandlerMiddleware converts downstream errors into the standard
// envelope. Validation problems map to 400, everything else to 500.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		if verr, ok := err.(*ValidationError); ok {
			return ctx.Status(fiber.StatusBadRequest).JSON(FailResponse(verr.Error()))
		}
		if ferr, ok := err.(*fiber.Error); ok {
			return ctx.Status(ferr.Code).JSON(FailResponse(ferr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(FailResponse(err.Error()))
	}
}
