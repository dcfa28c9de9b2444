package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"go-pharmapos/internal/cache"
	"go-pharmapos/internal/model"
	"go-pharmapos/internal/repository"
	"go-pharmapos/internal/sale"
	"go-pharmapos/internal/ws"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Shared cache so every pooled connection sees the same database
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&model.Product{},
		&model.StockBatch{},
		&model.Order{},
		&model.OrderLine{},
		&model.Discount{},
		&model.User{},
		&model.Privilege{},
		&model.Role{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

type salesFixture struct {
	db      *gorm.DB
	service SalesService
	batches repository.BatchRepository
	orders  repository.OrderRepository
}

func newSalesFixture(t *testing.T) *salesFixture {
	t.Helper()

	db := newTestDB(t)
	hub := ws.NewHub()
	go hub.Run()

	orderRepo := repository.NewOrderRepo(db)
	batchRepo := repository.NewBatchRepo(db)
	discountRepo := repository.NewDiscountRepo(db)
	userRepo := repository.NewUserRepo(db)

	if err := discountRepo.SeedDefaults(); err != nil {
		t.Fatalf("seed discounts: %v", err)
	}

	svc := NewSalesService(orderRepo, batchRepo, discountRepo, userRepo, db, hub, cache.NoopStatsCache{})
	return &salesFixture{db: db, service: svc, batches: batchRepo, orders: orderRepo}
}

func (f *salesFixture) seedProduct(t *testing.T, name string, price float64) *model.Product {
	t.Helper()
	product := &model.Product{Name: name, Category: "Medicine", Price: price, Active: true}
	if err := f.db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func (f *salesFixture) seedBatch(t *testing.T, productID uuid.UUID, qty int, expiry *time.Time) *model.StockBatch {
	t.Helper()
	batch := &model.StockBatch{ProductID: productID, Quantity: qty, Expiry: expiry, Active: true}
	if err := f.db.Create(batch).Error; err != nil {
		t.Fatalf("seed batch: %v", err)
	}
	return batch
}

func (f *salesFixture) batchQuantity(t *testing.T, id uuid.UUID) int {
	t.Helper()
	batch, err := f.batches.FindByID(id)
	if err != nil {
		t.Fatalf("reload batch: %v", err)
	}
	return batch.Quantity
}

func expiryOn(y int, m time.Month, d int) *time.Time {
	e := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &e
}

func TestRecordSaleDeductsBatchesFIFO(t *testing.T) {
	f := newSalesFixture(t)
	product := f.seedProduct(t, "Paracetamol 500mg", 10)
	early := f.seedBatch(t, product.ID, 5, expiryOn(2025, 1, 1))
	late := f.seedBatch(t, product.ID, 10, expiryOn(2025, 2, 1))

	result, err := f.service.RecordSale(&CreateSaleRequest{
		PaymentMethod: "CASH",
		CashReceived:  100,
		Items: []sale.Item{
			{ProductID: product.ID, Quantity: 7, UnitPrice: 10},
		},
	}, "", "Test Cashier")
	if err != nil {
		t.Fatalf("record sale failed: %v", err)
	}

	if got := f.batchQuantity(t, early.ID); got != 0 {
		t.Fatalf("earliest-expiry batch should be drained, got qty %d", got)
	}
	if got := f.batchQuantity(t, late.ID); got != 8 {
		t.Fatalf("later batch should hold 8, got %d", got)
	}

	order, err := f.orders.FindByID(result.TransactionID)
	if err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if len(order.Lines) != 1 {
		t.Fatalf("expected 1 order line, got %d", len(order.Lines))
	}
	if order.Lines[0].Quantity != 7 {
		t.Fatalf("line quantity: want 7, got %d", order.Lines[0].Quantity)
	}
	if result.ReferenceNo == "" {
		t.Fatalf("expected generated reference number")
	}
}

func TestRecordSaleInsufficientStockRollsBackEverything(t *testing.T) {
	f := newSalesFixture(t)
	aspirin := f.seedProduct(t, "Aspirin 80mg", 5)
	amoxicillin := f.seedProduct(t, "Amoxicillin 250mg", 15)
	aspirinBatch := f.seedBatch(t, aspirin.ID, 20, expiryOn(2025, 6, 1))
	f.seedBatch(t, amoxicillin.ID, 30, expiryOn(2025, 6, 1))

	_, err := f.service.RecordSale(&CreateSaleRequest{
		PaymentMethod: "CASH",
		Items: []sale.Item{
			{ProductID: aspirin.ID, Quantity: 5, UnitPrice: 5},
			{ProductID: amoxicillin.ID, Quantity: 100, UnitPrice: 15},
		},
	}, "", "Test Cashier")

	var insufficient *sale.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if insufficient.Available != 30 || insufficient.Requested != 100 {
		t.Fatalf("expected {available:30, requested:100}, got %+v", insufficient)
	}

	// The deduction for the first item must have been rolled back
	if got := f.batchQuantity(t, aspirinBatch.ID); got != 20 {
		t.Fatalf("first item deduction must roll back, got qty %d", got)
	}

	var orderCount, lineCount int64
	f.db.Model(&model.Order{}).Count(&orderCount)
	f.db.Model(&model.OrderLine{}).Count(&lineCount)
	if orderCount != 0 || lineCount != 0 {
		t.Fatalf("no order rows may survive a failed sale, got %d orders %d lines", orderCount, lineCount)
	}
}

func TestRecordSaleSeniorPWDDiscount(t *testing.T) {
	f := newSalesFixture(t)
	product := f.seedProduct(t, "Losartan 50mg", 50)
	f.seedBatch(t, product.ID, 10, expiryOn(2026, 1, 1))

	result, err := f.service.RecordSale(&CreateSaleRequest{
		PaymentMethod:     "CASH",
		IsSeniorPWDActive: true,
		SeniorPWDID:       "SC-12345",
		Items: []sale.Item{
			{ProductID: product.ID, Quantity: 2, UnitPrice: 50},
		},
	}, "", "Test Cashier")
	if err != nil {
		t.Fatalf("record sale failed: %v", err)
	}

	amounts := result.CalculatedAmounts
	if amounts.Subtotal != 100 {
		t.Fatalf("subtotal: want 100, got %v", amounts.Subtotal)
	}
	if amounts.Discount != 20 {
		t.Fatalf("discount: want 20, got %v", amounts.Discount)
	}
	if amounts.VAT != 9.6 {
		t.Fatalf("VAT: want 9.6, got %v", amounts.VAT)
	}
	if amounts.Total != 89.6 {
		t.Fatalf("total: want 89.6, got %v", amounts.Total)
	}

	order, err := f.orders.FindByID(result.TransactionID)
	if err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if order.DiscountAmount != 20 || order.Total != 89.6 {
		t.Fatalf("persisted header mismatch: %+v", order)
	}
	if order.SeniorPWDID != "SC-12345" {
		t.Fatalf("senior/PWD id not persisted, got %q", order.SeniorPWDID)
	}
}

func TestRecordSaleUnknownProduct(t *testing.T) {
	f := newSalesFixture(t)

	_, err := f.service.RecordSale(&CreateSaleRequest{
		PaymentMethod: "CASH",
		Items: []sale.Item{
			{ProductID: uuid.New(), Quantity: 1, UnitPrice: 10},
		},
	}, "", "Test Cashier")

	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestRecordSaleRejectsMalformedRequests(t *testing.T) {
	f := newSalesFixture(t)
	product := f.seedProduct(t, "Cetirizine 10mg", 8)
	f.seedBatch(t, product.ID, 5, nil)

	cases := []struct {
		name string
		req  CreateSaleRequest
	}{
		{
			name: "missing payment method",
			req: CreateSaleRequest{
				Items: []sale.Item{{ProductID: product.ID, Quantity: 1, UnitPrice: 8}},
			},
		},
		{
			name: "empty items",
			req:  CreateSaleRequest{PaymentMethod: "CASH"},
		},
		{
			name: "zero quantity line",
			req: CreateSaleRequest{
				PaymentMethod: "CASH",
				Items:         []sale.Item{{ProductID: product.ID, Quantity: 0, UnitPrice: 8}},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.service.RecordSale(&tc.req, "", "Test Cashier")
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

// The fixture caps the pool at one connection, so any query that runs
// on the pool while the settlement transaction holds that connection
// would block forever. Guard RecordSale with a watchdog to catch that.
func TestRecordSaleCompletesOnSingleConnection(t *testing.T) {
	f := newSalesFixture(t)
	product := f.seedProduct(t, "Simvastatin 20mg", 14)
	batch := f.seedBatch(t, product.ID, 25, expiryOn(2026, 5, 1))

	done := make(chan error, 1)
	go func() {
		_, err := f.service.RecordSale(&CreateSaleRequest{
			ReferenceNo:   "PH-SINGLE-CONN",
			PaymentMethod: "CASH",
			Items: []sale.Item{
				{ProductID: product.ID, Quantity: 3, UnitPrice: 14},
			},
		}, "", "Test Cashier")
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("record sale failed: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("RecordSale did not return; the duplicate-reference check must read on the open transaction, not the pool")
	}

	if got := f.batchQuantity(t, batch.ID); got != 22 {
		t.Fatalf("batch quantity after sale: want 22, got %d", got)
	}
}

func TestRecordSaleDuplicateReference(t *testing.T) {
	f := newSalesFixture(t)
	product := f.seedProduct(t, "Ibuprofen 200mg", 12)
	f.seedBatch(t, product.ID, 50, nil)

	req := func() *CreateSaleRequest {
		return &CreateSaleRequest{
			ReferenceNo:   "PH-TEST-001",
			PaymentMethod: "CASH",
			Items: []sale.Item{
				{ProductID: product.ID, Quantity: 1, UnitPrice: 12},
			},
		}
	}

	if _, err := f.service.RecordSale(req(), "", "Test Cashier"); err != nil {
		t.Fatalf("first sale failed: %v", err)
	}

	_, err := f.service.RecordSale(req(), "", "Test Cashier")
	if !errors.Is(err, ErrDuplicateReference) {
		t.Fatalf("expected ErrDuplicateReference, got %v", err)
	}
}

func TestDeleteSaleKeepsStockDeducted(t *testing.T) {
	f := newSalesFixture(t)
	product := f.seedProduct(t, "Omeprazole 20mg", 18)
	batch := f.seedBatch(t, product.ID, 10, expiryOn(2026, 3, 1))

	result, err := f.service.RecordSale(&CreateSaleRequest{
		PaymentMethod: "CASH",
		Items: []sale.Item{
			{ProductID: product.ID, Quantity: 4, UnitPrice: 18},
		},
	}, "", "Test Cashier")
	if err != nil {
		t.Fatalf("record sale failed: %v", err)
	}

	if err := f.service.DeleteSale(result.TransactionID); err != nil {
		t.Fatalf("delete sale failed: %v", err)
	}

	if _, err := f.service.GetSaleByID(result.TransactionID); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound after delete, got %v", err)
	}

	var lineCount int64
	f.db.Model(&model.OrderLine{}).Where(`"TransactionID" = ?`, result.TransactionID).Count(&lineCount)
	if lineCount != 0 {
		t.Fatalf("lines must be removed with the order, got %d", lineCount)
	}

	// Deleting a sale is not a stock restock
	if got := f.batchQuantity(t, batch.ID); got != 6 {
		t.Fatalf("stock must stay deducted after delete, got %d", got)
	}
}

func TestDeleteSaleNotFound(t *testing.T) {
	f := newSalesFixture(t)
	if err := f.service.DeleteSale(uuid.New()); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestGetSalesPaginationAndPreview(t *testing.T) {
	f := newSalesFixture(t)
	first := f.seedProduct(t, "Vitamin C 500mg", 5)
	second := f.seedProduct(t, "Zinc 10mg", 7)
	f.seedBatch(t, first.ID, 100, nil)
	f.seedBatch(t, second.ID, 100, nil)

	var lastID uuid.UUID
	for i := 0; i < 3; i++ {
		result, err := f.service.RecordSale(&CreateSaleRequest{
			PaymentMethod: "CASH",
			Items: []sale.Item{
				{ProductID: first.ID, Quantity: 1, UnitPrice: 5},
				{ProductID: second.ID, Quantity: 2, UnitPrice: 7},
			},
		}, "", "Test Cashier")
		if err != nil {
			t.Fatalf("record sale %d failed: %v", i, err)
		}
		lastID = result.TransactionID
	}

	page, err := f.service.GetSales(1, 2)
	if err != nil {
		t.Fatalf("get sales failed: %v", err)
	}
	if page.Total != 3 {
		t.Fatalf("total: want 3, got %d", page.Total)
	}
	if len(page.Items) != 2 {
		t.Fatalf("page size: want 2, got %d", len(page.Items))
	}
	for _, order := range page.Items {
		if len(order.Lines) != 1 {
			t.Fatalf("list preview must truncate to the first line, got %d", len(order.Lines))
		}
	}

	// Detail view keeps every line
	full, err := f.service.GetSaleByID(lastID)
	if err != nil {
		t.Fatalf("get sale failed: %v", err)
	}
	if len(full.Lines) != 2 {
		t.Fatalf("detail view must keep all lines, got %d", len(full.Lines))
	}

	// Idempotence: same query, same result absent writes
	again, err := f.service.GetSales(1, 2)
	if err != nil {
		t.Fatalf("repeat get sales failed: %v", err)
	}
	if again.Total != page.Total || len(again.Items) != len(page.Items) {
		t.Fatalf("repeated read diverged: %d/%d vs %d/%d", again.Total, len(again.Items), page.Total, len(page.Items))
	}
	for i := range again.Items {
		if again.Items[i].ID != page.Items[i].ID {
			t.Fatalf("repeated read returned different order at %d", i)
		}
	}
}
