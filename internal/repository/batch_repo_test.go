package repository

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"go-pharmapos/internal/model"
	"go-pharmapos/internal/sale"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

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

	if err := db.AutoMigrate(&model.Product{}, &model.StockBatch{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func seedBatchRows(t *testing.T, db *gorm.DB) (uuid.UUID, BatchRepository) {
	t.Helper()
	product := &model.Product{Name: "Metformin 500mg", Category: "Medicine", Price: 6, Active: true}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product.ID, NewBatchRepo(db)
}

func TestBatchDeduct(t *testing.T) {
	db := newTestDB(t)
	productID, repo := seedBatchRows(t, db)

	batch := &model.StockBatch{ProductID: productID, Quantity: 10, Active: true}
	if err := repo.Create(batch); err != nil {
		t.Fatalf("create batch: %v", err)
	}

	updated, err := repo.Deduct(nil, batch.ID, 4, "tester")
	if err != nil {
		t.Fatalf("deduct failed: %v", err)
	}
	if updated.Quantity != 6 {
		t.Fatalf("quantity after deduct: want 6, got %d", updated.Quantity)
	}
	if updated.UpdatedBy != "tester" {
		t.Fatalf("UpdatedBy not stamped, got %q", updated.UpdatedBy)
	}

	// Draining to exactly zero is allowed
	if _, err := repo.Deduct(nil, batch.ID, 6, "tester"); err != nil {
		t.Fatalf("deduct to zero failed: %v", err)
	}
	reloaded, err := repo.FindByID(batch.ID)
	if err != nil {
		t.Fatalf("reload batch: %v", err)
	}
	if reloaded.Quantity != 0 {
		t.Fatalf("quantity after drain: want 0, got %d", reloaded.Quantity)
	}
}

func TestBatchDeductFloorCheck(t *testing.T) {
	db := newTestDB(t)
	productID, repo := seedBatchRows(t, db)

	batch := &model.StockBatch{ProductID: productID, Quantity: 3, Active: true}
	if err := repo.Create(batch); err != nil {
		t.Fatalf("create batch: %v", err)
	}

	_, err := repo.Deduct(nil, batch.ID, 5, "tester")
	var invalid *sale.InvalidAmountError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidAmountError, got %v", err)
	}

	// A rejected deduction must not touch the row
	reloaded, err := repo.FindByID(batch.ID)
	if err != nil {
		t.Fatalf("reload batch: %v", err)
	}
	if reloaded.Quantity != 3 {
		t.Fatalf("quantity must be untouched, got %d", reloaded.Quantity)
	}

	if _, err := repo.Deduct(nil, batch.ID, -1, "tester"); !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidAmountError for negative amount, got %v", err)
	}
}

func TestBatchDeductMissingBatch(t *testing.T) {
	db := newTestDB(t)
	_, repo := seedBatchRows(t, db)

	_, err := repo.Deduct(nil, uuid.New(), 1, "tester")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestListActiveOrdersByExpiryThenCreation(t *testing.T) {
	db := newTestDB(t)
	productID, repo := seedBatchRows(t, db)

	expiry := func(y int, m time.Month, d int) *time.Time {
		e := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &e
	}

	later := &model.StockBatch{ProductID: productID, Quantity: 10, Expiry: expiry(2025, 8, 1), Active: true, BatchNo: "B-LATER"}
	sooner := &model.StockBatch{ProductID: productID, Quantity: 5, Expiry: expiry(2025, 3, 1), Active: true, BatchNo: "B-SOONER"}
	open := &model.StockBatch{ProductID: productID, Quantity: 7, Active: true, BatchNo: "B-OPEN"}
	retired := &model.StockBatch{ProductID: productID, Quantity: 99, Expiry: expiry(2025, 1, 1), Active: false, BatchNo: "B-RETIRED"}

	for _, b := range []*model.StockBatch{later, sooner, open, retired} {
		if err := repo.Create(b); err != nil {
			t.Fatalf("create batch %s: %v", b.BatchNo, err)
		}
	}

	batches, err := repo.ListActive(nil, productID)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}

	got := make([]string, 0, len(batches))
	for _, b := range batches {
		got = append(got, b.BatchNo)
	}
	want := []string{"B-SOONER", "B-LATER", "B-OPEN"}
	if len(got) != len(want) {
		t.Fatalf("batch order: want %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("batch order: want %v, got %v", want, got)
		}
	}
}

// Guards against GORM's zero-value handling: a column default tag on a
// bool would make Create silently store true for a false value.
func TestCreatePersistsInactiveFlag(t *testing.T) {
	db := newTestDB(t)
	productID, repo := seedBatchRows(t, db)

	batch := &model.StockBatch{ProductID: productID, Quantity: 50, Active: false}
	if err := repo.Create(batch); err != nil {
		t.Fatalf("create batch: %v", err)
	}

	reloaded, err := repo.FindByID(batch.ID)
	if err != nil {
		t.Fatalf("reload batch: %v", err)
	}
	if reloaded.Active {
		t.Fatal("batch created inactive must stay inactive")
	}

	product := &model.Product{Name: "Discontinued Syrup", Category: "Medicine", Price: 3, Active: false}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	var stored model.Product
	if err := db.First(&stored, `"ID" = ?`, product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if stored.Active {
		t.Fatal("product created inactive must stay inactive")
	}
}

func TestDeactivateBatch(t *testing.T) {
	db := newTestDB(t)
	productID, repo := seedBatchRows(t, db)

	batch := &model.StockBatch{ProductID: productID, Quantity: 8, Active: true}
	if err := repo.Create(batch); err != nil {
		t.Fatalf("create batch: %v", err)
	}

	if err := repo.Deactivate(batch.ID, "tester"); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}

	batches, err := repo.ListActive(nil, productID)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(batches) != 0 {
		t.Fatalf("deactivated batch must leave the active ledger, got %d rows", len(batches))
	}

	if err := repo.Deactivate(uuid.New(), "tester"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound for unknown batch, got %v", err)
	}
}
