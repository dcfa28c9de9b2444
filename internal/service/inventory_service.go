package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-pharmapos/internal/model"
	"go-pharmapos/internal/repository"
	"go-pharmapos/internal/sale"
	"go-pharmapos/internal/ws"
	"go-pharmapos/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrBatchNotFound = errors.New("stock batch not found")

type InventoryService interface {
	CreateProduct(req *model.Product, actorID, actorName string) error
	UpdateProduct(id uuid.UUID, req *model.Product, actorID, actorName string) (*model.Product, error)
	DeactivateProduct(id uuid.UUID, actorID string) error
	GetAllProducts() ([]model.Product, error)

	AddBatch(req *AddBatchRequest, actorID, actorName string) (*model.StockBatch, error)
	UpdateBatch(id uuid.UUID, req *UpdateBatchRequest, actorID string) (*model.StockBatch, error)
	DeactivateBatch(id uuid.UUID, actorID string) error
	GetStock(productID uuid.UUID) (*StockSummary, error)
}

type AddBatchRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"uuid_required"`
	Quantity  int       `json:"quantity" validate:"gte=0"`
	Expiry    *string   `json:"expiry"` // Format: YYYY-MM-DD
	BatchNo   string    `json:"batchNo"`
	Location  string    `json:"location"`
}

type UpdateBatchRequest struct {
	Quantity *int    `json:"quantity" validate:"omitempty,gte=0"`
	Expiry   *string `json:"expiry"` // Format: YYYY-MM-DD
	BatchNo  *string `json:"batchNo"`
	Location *string `json:"location"`
}

// StockSummary is the per-product stock view: total across active
// batches plus the batches themselves in consumption (FIFO) order.
type StockSummary struct {
	ProductID  uuid.UUID          `json:"productId"`
	TotalStock int                `json:"totalStock"`
	Items      []model.StockBatch `json:"items"`
}

type inventoryService struct {
	productRepo repository.ProductRepository
	batchRepo   repository.BatchRepository
	wsHub       *ws.Hub
}

func NewInventoryService(pRepo repository.ProductRepository, bRepo repository.BatchRepository, hub *ws.Hub) InventoryService {
	return &inventoryService{
		productRepo: pRepo,
		batchRepo:   bRepo,
		wsHub:       hub,
	}
}

func (s *inventoryService) CreateProduct(req *model.Product, actorID, actorName string) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return &ValidationError{
			Message: fmt.Sprintf("Validation failed: Field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag),
		}
	}

	// Duplicate name check (business validation)
	existing, _ := s.productRepo.FindByName(req.Name)
	if existing != nil && existing.ID != uuid.Nil {
		return &ValidationError{Message: "product name already exists"}
	}

	req.Active = true
	req.CreatedBy = actorID
	req.UpdatedBy = actorID

	if err := s.productRepo.Create(req); err != nil {
		return err
	}

	go s.broadcastStock("product_created", map[string]interface{}{
		"id":    req.ID,
		"name":  req.Name,
		"price": req.Price,
	}, fmt.Sprintf("%s created product '%s'", actorName, req.Name))

	return nil
}

func (s *inventoryService) UpdateProduct(id uuid.UUID, req *model.Product, actorID, actorName string) (*model.Product, error) {
	existing, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, ErrProductNotFound
	}

	existing.Name = req.Name
	existing.Category = req.Category
	existing.Price = req.Price
	existing.VATExempt = req.VATExempt
	existing.Active = req.Active
	existing.UpdatedBy = actorID

	if errs := validator.ValidateStruct(existing); len(errs) > 0 {
		firstErr := errs[0]
		return nil, &ValidationError{
			Message: fmt.Sprintf("Validation failed: Field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag),
		}
	}

	if err := s.productRepo.Update(existing); err != nil {
		return nil, err
	}

	go s.broadcastStock("product_updated", map[string]interface{}{
		"id":    existing.ID,
		"name":  existing.Name,
		"price": existing.Price,
	}, fmt.Sprintf("%s updated product '%s'", actorName, existing.Name))

	return existing, nil
}

func (s *inventoryService) DeactivateProduct(id uuid.UUID, actorID string) error {
	if err := s.productRepo.Deactivate(id, actorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	return nil
}

func (s *inventoryService) GetAllProducts() ([]model.Product, error) {
	return s.productRepo.FindAll()
}

func (s *inventoryService) AddBatch(req *AddBatchRequest, actorID, actorName string) (*model.StockBatch, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return nil, &ValidationError{
			Message: fmt.Sprintf("Validation failed: Field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag),
		}
	}

	product, err := s.productRepo.FindByID(req.ProductID)
	if err != nil {
		return nil, ErrProductNotFound
	}

	expiry, err := parseExpiry(req.Expiry)
	if err != nil {
		return nil, err
	}

	batch := &model.StockBatch{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Expiry:    expiry,
		BatchNo:   req.BatchNo,
		Location:  req.Location,
		Active:    true,
	}
	batch.CreatedBy = actorID
	batch.UpdatedBy = actorID

	if err := s.batchRepo.Create(batch); err != nil {
		return nil, err
	}

	go s.broadcastStock("batch_added", map[string]interface{}{
		"batchId":   batch.ID,
		"productId": product.ID,
		"product":   product.Name,
		"quantity":  batch.Quantity,
	}, fmt.Sprintf("%s received %d units of '%s'", actorName, batch.Quantity, product.Name))

	return batch, nil
}

func (s *inventoryService) UpdateBatch(id uuid.UUID, req *UpdateBatchRequest, actorID string) (*model.StockBatch, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return nil, &ValidationError{
			Message: fmt.Sprintf("Validation failed: Field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag),
		}
	}

	batch, err := s.batchRepo.FindByID(id)
	if err != nil {
		return nil, ErrBatchNotFound
	}

	// Manual corrections: only provided fields change
	if req.Quantity != nil {
		batch.Quantity = *req.Quantity
	}
	if req.Expiry != nil {
		expiry, err := parseExpiry(req.Expiry)
		if err != nil {
			return nil, err
		}
		batch.Expiry = expiry
	}
	if req.BatchNo != nil {
		batch.BatchNo = *req.BatchNo
	}
	if req.Location != nil {
		batch.Location = *req.Location
	}
	batch.UpdatedBy = actorID

	if err := s.batchRepo.Update(batch); err != nil {
		return nil, err
	}

	go s.broadcastStock("batch_updated", map[string]interface{}{
		"batchId":   batch.ID,
		"productId": batch.ProductID,
		"quantity":  batch.Quantity,
	}, fmt.Sprintf("stock batch %s corrected", batch.ID))

	return batch, nil
}

func (s *inventoryService) DeactivateBatch(id uuid.UUID, actorID string) error {
	if err := s.batchRepo.Deactivate(id, actorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBatchNotFound
		}
		return err
	}
	return nil
}

func (s *inventoryService) GetStock(productID uuid.UUID) (*StockSummary, error) {
	if _, err := s.productRepo.FindByID(productID); err != nil {
		return nil, ErrProductNotFound
	}

	batches, err := s.batchRepo.ListActive(nil, productID)
	if err != nil {
		return nil, err
	}

	summary := &StockSummary{
		ProductID: productID,
		Items:     sale.SortBatchesFIFO(batches),
	}
	for _, b := range batches {
		summary.TotalStock += b.Quantity
	}
	return summary, nil
}

func (s *inventoryService) broadcastStock(action string, subject map[string]interface{}, message string) {
	payload := map[string]interface{}{
		"type":    "stock_update",
		"action":  action,
		"subject": subject,
		"message": message,
	}
	msg, _ := json.Marshal(payload)
	s.wsHub.Broadcast <- msg
}

func parseExpiry(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		return nil, &ValidationError{Message: "invalid expiry format, use YYYY-MM-DD"}
	}
	return &parsed, nil
}
