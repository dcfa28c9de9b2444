package service

import (
	"errors"
	"testing"

	"go-pharmapos/internal/model"
	"go-pharmapos/internal/repository"
	"go-pharmapos/internal/ws"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type inventoryFixture struct {
	db      *gorm.DB
	service InventoryService
}

func newInventoryFixture(t *testing.T) *inventoryFixture {
	t.Helper()

	db := newTestDB(t)
	hub := ws.NewHub()
	go hub.Run()

	svc := NewInventoryService(repository.NewProductRepo(db), repository.NewBatchRepo(db), hub)
	return &inventoryFixture{db: db, service: svc}
}

func strptr(s string) *string { return &s }

func TestAddBatchAndGetStock(t *testing.T) {
	f := newInventoryFixture(t)

	product := &model.Product{Name: "Salbutamol 2mg", Category: "Medicine", Price: 9}
	if err := f.service.CreateProduct(product, "", "Test Admin"); err != nil {
		t.Fatalf("create product: %v", err)
	}

	first, err := f.service.AddBatch(&AddBatchRequest{
		ProductID: product.ID,
		Quantity:  12,
		Expiry:    strptr("2025-09-01"),
		BatchNo:   "LOT-A",
	}, "", "Test Admin")
	if err != nil {
		t.Fatalf("add first batch: %v", err)
	}
	if first.Expiry == nil || first.Expiry.Format("2006-01-02") != "2025-09-01" {
		t.Fatalf("expiry not parsed, got %v", first.Expiry)
	}

	if _, err := f.service.AddBatch(&AddBatchRequest{
		ProductID: product.ID,
		Quantity:  8,
		Expiry:    strptr("2025-04-01"),
		BatchNo:   "LOT-B",
	}, "", "Test Admin"); err != nil {
		t.Fatalf("add second batch: %v", err)
	}

	summary, err := f.service.GetStock(product.ID)
	if err != nil {
		t.Fatalf("get stock: %v", err)
	}
	if summary.TotalStock != 20 {
		t.Fatalf("total stock: want 20, got %d", summary.TotalStock)
	}
	if len(summary.Items) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(summary.Items))
	}
	// Consumption order: soonest expiry first
	if summary.Items[0].BatchNo != "LOT-B" || summary.Items[1].BatchNo != "LOT-A" {
		t.Fatalf("batches out of consumption order: %s, %s", summary.Items[0].BatchNo, summary.Items[1].BatchNo)
	}
}

func TestAddBatchRejectsBadInput(t *testing.T) {
	f := newInventoryFixture(t)

	product := &model.Product{Name: "Loperamide 2mg", Category: "Medicine", Price: 4}
	if err := f.service.CreateProduct(product, "", "Test Admin"); err != nil {
		t.Fatalf("create product: %v", err)
	}

	var validationErr *ValidationError

	_, err := f.service.AddBatch(&AddBatchRequest{ProductID: product.ID, Quantity: -5}, "", "Test Admin")
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError for negative quantity, got %v", err)
	}

	_, err = f.service.AddBatch(&AddBatchRequest{
		ProductID: product.ID,
		Quantity:  5,
		Expiry:    strptr("01/09/2025"),
	}, "", "Test Admin")
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError for malformed expiry, got %v", err)
	}

	_, err = f.service.AddBatch(&AddBatchRequest{ProductID: uuid.New(), Quantity: 5}, "", "Test Admin")
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestCreateProductRejectsDuplicateName(t *testing.T) {
	f := newInventoryFixture(t)

	if err := f.service.CreateProduct(&model.Product{Name: "Mefenamic Acid 500mg", Category: "Medicine", Price: 7}, "", "Test Admin"); err != nil {
		t.Fatalf("create product: %v", err)
	}

	err := f.service.CreateProduct(&model.Product{Name: "Mefenamic Acid 500mg", Category: "Medicine", Price: 9}, "", "Test Admin")
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError for duplicate name, got %v", err)
	}
}

func TestUpdateBatchPartialCorrection(t *testing.T) {
	f := newInventoryFixture(t)

	product := &model.Product{Name: "Amlodipine 5mg", Category: "Medicine", Price: 11}
	if err := f.service.CreateProduct(product, "", "Test Admin"); err != nil {
		t.Fatalf("create product: %v", err)
	}
	batch, err := f.service.AddBatch(&AddBatchRequest{
		ProductID: product.ID,
		Quantity:  30,
		Expiry:    strptr("2026-01-01"),
		BatchNo:   "LOT-C",
		Location:  "Shelf 3",
	}, "", "Test Admin")
	if err != nil {
		t.Fatalf("add batch: %v", err)
	}

	qty := 25
	updated, err := f.service.UpdateBatch(batch.ID, &UpdateBatchRequest{Quantity: &qty}, "")
	if err != nil {
		t.Fatalf("update batch: %v", err)
	}
	if updated.Quantity != 25 {
		t.Fatalf("quantity: want 25, got %d", updated.Quantity)
	}
	// Untouched fields survive a partial correction
	if updated.BatchNo != "LOT-C" || updated.Location != "Shelf 3" {
		t.Fatalf("partial update clobbered fields: %+v", updated)
	}
	if updated.Expiry == nil || updated.Expiry.Format("2006-01-02") != "2026-01-01" {
		t.Fatalf("partial update clobbered expiry: %v", updated.Expiry)
	}
}

func TestGetStockUnknownProduct(t *testing.T) {
	f := newInventoryFixture(t)
	if _, err := f.service.GetStock(uuid.New()); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}
