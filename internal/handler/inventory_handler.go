package handler

import (
	"go-pharmapos/internal/model"
	"go-pharmapos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type InventoryHandler struct {
	service service.InventoryService
}

func NewInventoryHandler(s service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: s}
}

// GetStock returns total available stock and active batches for a
// product, in FIFO consumption order
// GET /api/v1/inventory/stock/:productId
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	productID, err := uuid.Parse(c.Params("productId"))
	if err != nil {
		return respondError(c, 400, "Invalid product ID")
	}

	summary, err := h.service.GetStock(productID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return respondOK(c, "Stock fetched", summary)
}

// AddBatch registers received stock as a new batch
// POST /api/v1/inventory/add
func (h *InventoryHandler) AddBatch(c *fiber.Ctx) error {
	var req service.AddBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, 400, "Invalid JSON")
	}

	batch, err := h.service.AddBatch(&req, getUserID(c), getUserName(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return respondCreated(c, "Stock batch added", batch)
}

// UpdateBatch applies a manual correction to a batch
// PUT /api/v1/inventory/:id
func (h *InventoryHandler) UpdateBatch(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondError(c, 400, "Invalid batch ID")
	}

	var req service.UpdateBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, 400, "Invalid JSON")
	}

	batch, err := h.service.UpdateBatch(id, &req, getUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return respondOK(c, "Stock batch updated", batch)
}

// DeleteBatch deactivates a batch; rows are never removed physically
// DELETE /api/v1/inventory/:id
func (h *InventoryHandler) DeleteBatch(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondError(c, 400, "Invalid batch ID")
	}

	if err := h.service.DeactivateBatch(id, getUserID(c)); err != nil {
		return respondServiceError(c, err)
	}

	return respondOK(c, "Stock batch deactivated", nil)
}

// GetProducts lists the catalog
// GET /api/v1/products
func (h *InventoryHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts()
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondOK(c, "Products fetched", products)
}

// CreateProduct adds a catalog entry
// POST /api/v1/products
func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return respondError(c, 400, "Invalid JSON")
	}

	if err := h.service.CreateProduct(&product, getUserID(c), getUserName(c)); err != nil {
		return respondServiceError(c, err)
	}

	return respondCreated(c, "Product created", product)
}

// UpdateProduct edits a catalog entry
// PUT /api/v1/products/:id
func (h *InventoryHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondError(c, 400, "Invalid product ID")
	}

	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return respondError(c, 400, "Invalid JSON")
	}

	updated, err := h.service.UpdateProduct(id, &product, getUserID(c), getUserName(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return respondOK(c, "Product updated", updated)
}

// DeleteProduct deactivates a catalog entry
// DELETE /api/v1/products/:id
func (h *InventoryHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondError(c, 400, "Invalid product ID")
	}

	if err := h.service.DeactivateProduct(id, getUserID(c)); err != nil {
		return respondServiceError(c, err)
	}

	return respondOK(c, "Product deactivated", nil)
}
