package handler

import (
	"errors"
	"log"
	"os"

	"go-pharmapos/internal/sale"
	"go-pharmapos/internal/service"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Every response follows the {success, message, data} envelope the
// POS frontend expects.

func respondOK(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(fiber.Map{"success": true, "message": message, "data": data})
}

func respondCreated(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": message, "data": data})
}

func respondError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "message": message})
}

// respondServiceError maps the service error taxonomy onto HTTP codes:
// validation 400, missing records 404, stock conflicts 409, everything
// else 500. Internal detail is hidden from clients in production.
func respondServiceError(c *fiber.Ctx, err error) error {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		return respondError(c, fiber.StatusBadRequest, validationErr.Message)
	}

	var invalidAmount *sale.InvalidAmountError
	if errors.As(err, &invalidAmount) {
		return respondError(c, fiber.StatusBadRequest, invalidAmount.Error())
	}

	var insufficient *sale.InsufficientStockError
	if errors.As(err, &insufficient) {
		// A stock shortfall is a conflict with current inventory state
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success":   false,
			"message":   insufficient.Error(),
			"available": insufficient.Available,
			"requested": insufficient.Requested,
		})
	}

	switch {
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrBatchNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return respondError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrDuplicateReference),
		errors.Is(err, service.ErrEmailExists):
		return respondError(c, fiber.StatusConflict, err.Error())
	}

	log.Printf("internal error on %s %s: %v", c.Method(), c.Path(), err)
	if os.Getenv("APP_ENV") == "production" {
		return respondError(c, fiber.StatusInternalServerError, "Internal Server Error")
	}
	return respondError(c, fiber.StatusInternalServerError, err.Error())
}
