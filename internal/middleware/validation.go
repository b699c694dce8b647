package middleware

import (
	"notewise/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validation.NewValidator(),
	}
}

// ValidateSessionID checks the :id path parameter of session routes.
func (vm *ValidationMiddleware) ValidateSessionID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if errors := vm.validator.ValidateSessionID(id); len(errors) > 0 {
			return errors // This will be handled by ErrorHandler middleware
		}
		return c.Next()
	}
}

// ValidateExportFormat checks the format query parameter of export routes.
func (vm *ValidationMiddleware) ValidateExportFormat() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if errors := vm.validator.ValidateExportFormat(c.Query("format")); len(errors) > 0 {
			return errors
		}
		return c.Next()
	}
}
