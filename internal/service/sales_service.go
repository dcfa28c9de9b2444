package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"go-pharmapos/internal/cache"
	"go-pharmapos/internal/model"
	"go-pharmapos/internal/repository"
	"go-pharmapos/internal/sale"
	"go-pharmapos/internal/ws"
	"go-pharmapos/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrOrderNotFound      = errors.New("transaction not found")
	ErrDuplicateReference = errors.New("reference number already used")
)

// ValidationError marks malformed request input; handlers map it to 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type SalesService interface {
	RecordSale(req *CreateSaleRequest, actorID, actorName string) (*SaleResult, error)
	GetSales(page, limit int) (*SalesPage, error)
	GetSaleByID(id uuid.UUID) (*model.Order, error)
	DeleteSale(id uuid.UUID) error
}

type CreateSaleRequest struct {
	ReferenceNo       string      `json:"referenceNo"`
	PaymentMethod     string      `json:"paymentMethod" validate:"required"`
	Subtotal          float64     `json:"subtotal"` // client-side figure, recomputed server-side
	IsSeniorPWDActive bool        `json:"isSeniorPWDActive"`
	SeniorPWDID       string      `json:"seniorPWDID"`
	CashReceived      float64     `json:"cashReceived" validate:"gte=0"`
	Change            float64     `json:"change"`
	UserID            string      `json:"userId"`
	Items             []sale.Item `json:"items" validate:"required,min=1,dive"`
}

type SaleResult struct {
	TransactionID     uuid.UUID        `json:"transactionId"`
	ReferenceNo       string           `json:"referenceNo"`
	CalculatedAmounts sale.OrderTotals `json:"calculatedAmounts"`
}

type SalesPage struct {
	Items []model.Order `json:"items"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
	Total int64         `json:"total"`
}

type salesService struct {
	orderRepo    repository.OrderRepository
	batchRepo    repository.BatchRepository
	discountRepo repository.DiscountRepository
	userRepo     repository.UserRepository
	db           *gorm.DB
	wsHub        *ws.Hub
	statsCache   cache.StatsCache
}

func NewSalesService(
	orderRepo repository.OrderRepository,
	batchRepo repository.BatchRepository,
	discountRepo repository.DiscountRepository,
	userRepo repository.UserRepository,
	db *gorm.DB,
	hub *ws.Hub,
	statsCache cache.StatsCache,
) SalesService {
	return &salesService{
		orderRepo:    orderRepo,
		batchRepo:    batchRepo,
		discountRepo: discountRepo,
		userRepo:     userRepo,
		db:           db,
		wsHub:        hub,
		statsCache:   statsCache,
	}
}

// RecordSale settles a sale end to end: cashier resolution, discount
// lookup, monetary calculation, then header + lines + FIFO stock
// deduction inside ONE database transaction. Any failure, including
// insufficient stock on a later item, rolls the whole sale back.
func (s *salesService) RecordSale(req *CreateSaleRequest, actorID, actorName string) (*SaleResult, error) {
	// 1. Validate input
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return nil, &ValidationError{
			Message: fmt.Sprintf("Validation failed: Field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag),
		}
	}

	// 2. Resolve cashier identity: request userId, then the acting JWT
	// user, then the seeded default cashier. Policy is leniency: a sale
	// is never refused because the cashier could not be resolved.
	cashierID := s.resolveCashier(req.UserID, actorID)

	// 3. Resolve discount percentage
	discountPercent := 0.0
	if req.IsSeniorPWDActive {
		discount, err := s.discountRepo.FindByName(model.SeniorPWDDiscountName)
		if err != nil {
			log.Printf("Warning: discount lookup failed, applying default %.0f%%: %v", model.DefaultDiscountPercent, err)
			discountPercent = model.DefaultDiscountPercent
		} else {
			discountPercent = discount.Percentage
		}
	}

	// 4. Compute all monetary figures before touching the database
	totals := sale.ComputeOrder(req.Items, req.IsSeniorPWDActive, discountPercent)

	referenceNo := req.ReferenceNo
	if referenceNo == "" {
		referenceNo = generateReferenceNo()
	}

	order := &model.Order{
		ReferenceNo:    referenceNo,
		PaymentMethod:  req.PaymentMethod,
		Subtotal:       totals.Subtotal,
		DiscountAmount: totals.Discount,
		VATAmount:      totals.VAT,
		Total:          totals.Total,
		CashReceived:   req.CashReceived,
		Change:         req.Change,
		SeniorPWDID:    req.SeniorPWDID,
		UserID:         cashierID,
	}
	order.CreatedBy = actorID
	order.UpdatedBy = actorID

	// 5. Atomic settlement
	err := s.db.Transaction(func(tx *gorm.DB) error {
		exists, err := s.orderRepo.ReferenceExists(tx, referenceNo)
		if err != nil {
			return fmt.Errorf("reference lookup: %w", err)
		}
		if exists {
			return ErrDuplicateReference
		}

		if err := s.orderRepo.CreateHeader(tx, order); err != nil {
			return fmt.Errorf("persist order header: %w", err)
		}

		lines := make([]model.OrderLine, 0, len(totals.Items))
		for _, it := range totals.Items {
			line := model.OrderLine{
				OrderID:        order.ID,
				ProductID:      it.ProductID,
				Quantity:       it.Quantity,
				UnitPrice:      it.UnitPrice,
				Subtotal:       it.Final,
				DiscountAmount: it.Discount,
				VATAmount:      it.VAT,
			}
			line.CreatedBy = actorID
			line.UpdatedBy = actorID
			lines = append(lines, line)
		}
		if err := s.orderRepo.CreateLines(tx, lines); err != nil {
			return fmt.Errorf("persist order lines: %w", err)
		}

		// FIFO deduction per requested item, oldest expiry first
		for _, it := range req.Items {
			var product model.Product
			if err := tx.First(&product, `"ID" = ?`, it.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: %s", ErrProductNotFound, it.ProductID)
				}
				return fmt.Errorf("product lookup: %w", err)
			}

			batches, err := s.batchRepo.ListActive(tx, it.ProductID)
			if err != nil {
				return fmt.Errorf("read stock ledger: %w", err)
			}

			plan, err := sale.PlanAllocation(batches, it.Quantity)
			if err != nil {
				return err // InsufficientStockError aborts and rolls back the sale
			}

			for _, alloc := range plan {
				if _, err := s.batchRepo.Deduct(tx, alloc.BatchID, alloc.Quantity, actorID); err != nil {
					return fmt.Errorf("deduct batch %s: %w", alloc.BatchID, err)
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	// 6. Post-commit side effects
	s.invalidateStats()
	go s.broadcastSale(order, totals, actorName)

	return &SaleResult{
		TransactionID:     order.ID,
		ReferenceNo:       order.ReferenceNo,
		CalculatedAmounts: totals,
	}, nil
}

func (s *salesService) resolveCashier(requestUserID, actorID string) *uuid.UUID {
	for _, candidate := range []string{requestUserID, actorID} {
		if candidate == "" {
			continue
		}
		id, err := uuid.Parse(candidate)
		if err != nil {
			continue
		}
		if _, err := s.userRepo.FindByID(id); err == nil {
			return &id
		}
	}

	fallback, err := s.userRepo.FindDefaultCashier()
	if err != nil {
		log.Printf("Warning: no cashier resolvable for sale, recording without user: %v", err)
		return nil
	}
	log.Printf("Warning: cashier not resolvable, falling back to default cashier %s", fallback.Email)
	return &fallback.ID
}

func (s *salesService) GetSales(page, limit int) (*SalesPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	orders, total, err := s.orderRepo.FindPage(page, limit)
	if err != nil {
		return nil, err
	}

	// List view carries only the first line item per order as a preview
	for i := range orders {
		if len(orders[i].Lines) > 1 {
			orders[i].Lines = orders[i].Lines[:1]
		}
	}

	return &SalesPage{Items: orders, Page: page, Limit: limit, Total: total}, nil
}

func (s *salesService) GetSaleByID(id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

// DeleteSale removes the order and its lines. Stock deducted by the
// sale stays deducted.
func (s *salesService) DeleteSale(id uuid.UUID) error {
	if err := s.orderRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}
	s.invalidateStats()
	return nil
}

func (s *salesService) invalidateStats() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.statsCache.Invalidate(ctx, cache.KeyDashboardStats); err != nil {
		log.Printf("Warning: failed to invalidate dashboard stats cache: %v", err)
	}
}

func (s *salesService) broadcastSale(order *model.Order, totals sale.OrderTotals, actorName string) {
	payload := map[string]interface{}{
		"type":   "sale_recorded",
		"action": "transaction_created",
		"transaction": map[string]interface{}{
			"id":          order.ID,
			"referenceNo": order.ReferenceNo,
			"total":       totals.Total,
			"items":       len(totals.Items),
		},
		"message": fmt.Sprintf("%s recorded sale %s", actorName, order.ReferenceNo),
	}
	msg, _ := json.Marshal(payload)
	s.wsHub.Broadcast <- msg
}

func generateReferenceNo() string {
	return fmt.Sprintf("PH-%d", time.Now().UnixNano())
}
