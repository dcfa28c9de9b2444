package handler

import (
	"go-pharmapos/internal/model"
	"go-pharmapos/internal/repository"
	"go-pharmapos/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

type DiscountHandler struct {
	discountRepo repository.DiscountRepository
}

func NewDiscountHandler(discountRepo repository.DiscountRepository) *DiscountHandler {
	return &DiscountHandler{discountRepo: discountRepo}
}

// GetDiscounts returns all configured discounts
// GET /api/v1/discounts
func (h *DiscountHandler) GetDiscounts(c *fiber.Ctx) error {
	discounts, err := h.discountRepo.FindAll()
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondOK(c, "Discounts fetched", discounts)
}

// CreateDiscount registers a new named discount
// POST /api/v1/discounts
func (h *DiscountHandler) CreateDiscount(c *fiber.Ctx) error {
	var discount model.Discount
	if err := c.BodyParser(&discount); err != nil {
		return respondError(c, 400, "Invalid JSON")
	}

	if errs := validator.ValidateStruct(&discount); len(errs) > 0 {
		return respondError(c, 400, "Validation failed: "+errs[0].FailedField)
	}

	discount.CreatedBy = getUserID(c)
	discount.UpdatedBy = getUserID(c)

	if err := h.discountRepo.Create(&discount); err != nil {
		return respondServiceError(c, err)
	}

	return respondCreated(c, "Discount created", discount)
}
