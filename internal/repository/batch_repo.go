package repository

import (
	"go-pharmapos/internal/model"
	"go-pharmapos/internal/sale"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BatchRepository is the stock ledger accessor: batch-level stock rows
// per product, consumed oldest-expiry-first by the sale flow.
type BatchRepository interface {
	Create(batch *model.StockBatch) error
	FindByID(id uuid.UUID) (*model.StockBatch, error)
	// ListActive returns active batches for a product in FIFO order:
	// expiry ascending, batches without expiry last, then creation order.
	// Pass a tx to read inside an open transaction, or nil for the pool.
	ListActive(tx *gorm.DB, productID uuid.UUID) ([]model.StockBatch, error)
	// Deduct atomically decrements a batch quantity with a floor check
	// (Quantity >= amount) so concurrent sales can never drive it
	// negative, and returns the updated row.
	Deduct(tx *gorm.DB, batchID uuid.UUID, amount int, updatedBy string) (*model.StockBatch, error)
	Update(batch *model.StockBatch) error
	Deactivate(id uuid.UUID, updatedBy string) error
}

type batchRepo struct {
	db *gorm.DB
}

func NewBatchRepo(db *gorm.DB) BatchRepository {
	return &batchRepo{db}
}

func (r *batchRepo) Create(batch *model.StockBatch) error {
	return r.db.Create(batch).Error
}

func (r *batchRepo) FindByID(id uuid.UUID) (*model.StockBatch, error) {
	var batch model.StockBatch
	err := r.db.First(&batch, `"ID" = ?`, id).Error
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *batchRepo) ListActive(tx *gorm.DB, productID uuid.UUID) ([]model.StockBatch, error) {
	if tx == nil {
		tx = r.db
	}
	var batches []model.StockBatch
	err := tx.
		Where(`"ProductID" = ? AND "Active" = ?`, productID, true).
		Order(`"Expiry" ASC NULLS LAST, "CreatedAt" ASC`).
		Find(&batches).Error
	return batches, err
}

func (r *batchRepo) Deduct(tx *gorm.DB, batchID uuid.UUID, amount int, updatedBy string) (*model.StockBatch, error) {
	if tx == nil {
		tx = r.db
	}
	if amount < 0 {
		return nil, &sale.InvalidAmountError{Amount: amount}
	}

	// Conditional update instead of read-modify-write: the floor check
	// happens inside the same statement that decrements.
	res := tx.Model(&model.StockBatch{}).
		Where(`"ID" = ? AND "Quantity" >= ?`, batchID, amount).
		Updates(map[string]interface{}{
			"Quantity":  gorm.Expr(`"Quantity" - ?`, amount),
			"UpdatedBy": updatedBy,
		})
	if res.Error != nil {
		return nil, res.Error
	}

	if res.RowsAffected == 0 {
		// Zero rows: either the batch is gone or the floor check failed.
		var existing model.StockBatch
		if err := tx.First(&existing, `"ID" = ?`, batchID).Error; err != nil {
			return nil, err // gorm.ErrRecordNotFound for a missing batch
		}
		return nil, &sale.InvalidAmountError{Amount: amount}
	}

	var updated model.StockBatch
	if err := tx.First(&updated, `"ID" = ?`, batchID).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *batchRepo) Update(batch *model.StockBatch) error {
	return r.db.Save(batch).Error
}

// Batches are never removed physically; historical order lines keep
// referencing the product they were sold from.
func (r *batchRepo) Deactivate(id uuid.UUID, updatedBy string) error {
	res := r.db.Model(&model.StockBatch{}).
		Where(`"ID" = ?`, id).
		Updates(map[string]interface{}{
			"Active":    false,
			"UpdatedBy": updatedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
