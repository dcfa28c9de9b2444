package handler

import (
	"strconv"

	"go-pharmapos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SalesHandler struct {
	service service.SalesService
}

func NewSalesHandler(s service.SalesService) *SalesHandler {
	return &SalesHandler{service: s}
}

// Helper to get user info from JWT context (set by auth middleware)
func getUserID(c *fiber.Ctx) string {
	userID := c.Locals("user_id")
	if userID == nil {
		return "system" // Fallback (shouldn't happen in protected routes)
	}
	return userID.(string)
}

func getUserName(c *fiber.Ctx) string {
	userName := c.Locals("user_name")
	if userName == nil {
		return "Unknown"
	}
	return userName.(string)
}

// CreateTransaction records a sale: calculation, persistence, and FIFO
// stock deduction in one shot
// POST /api/v1/transactions
func (h *SalesHandler) CreateTransaction(c *fiber.Ctx) error {
	var req service.CreateSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, 400, "Invalid JSON")
	}

	result, err := h.service.RecordSale(&req, getUserID(c), getUserName(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return respondCreated(c, "Transaction recorded", result)
}

// GetTransactions returns a paginated list, newest first, each order
// truncated to its first line item as a preview
// GET /api/v1/transactions?page=&limit=
func (h *SalesHandler) GetTransactions(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	pageData, err := h.service.GetSales(page, limit)
	if err != nil {
		return respondServiceError(c, err)
	}

	return respondOK(c, "Transactions fetched", pageData)
}

// GetTransaction returns the full order with lines and product names
// GET /api/v1/transactions/:id
func (h *SalesHandler) GetTransaction(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondError(c, 400, "Invalid transaction ID")
	}

	order, err := h.service.GetSaleByID(id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return respondOK(c, "Transaction fetched", order)
}

// DeleteTransaction removes the order and its lines; deducted stock is
// not restored
// DELETE /api/v1/transactions/:id
func (h *SalesHandler) DeleteTransaction(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondError(c, 400, "Invalid transaction ID")
	}

	if err := h.service.DeleteSale(id); err != nil {
		return respondServiceError(c, err)
	}

	return respondOK(c, "Transaction deleted", nil)
}
