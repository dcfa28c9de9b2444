package repository

import (
	"time"

	"go-pharmapos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderRepository interface {
	// CreateHeader and CreateLines take a tx so the whole sale can run
	// inside one database transaction.
	CreateHeader(tx *gorm.DB, order *model.Order) error
	CreateLines(tx *gorm.DB, lines []model.OrderLine) error
	FindPage(page, limit int) ([]model.Order, int64, error)
	FindByID(id uuid.UUID) (*model.Order, error)
	// Delete removes the order and its lines. Deducted stock is NOT
	// restored; voiding a sale is an inventory correction, not a refund
	// of batches.
	Delete(id uuid.UUID) error
	// ReferenceExists takes a tx so the duplicate check reads inside the
	// same transaction that settles the sale. Pass nil for the pool.
	ReferenceExists(tx *gorm.DB, referenceNo string) (bool, error)
	GetSalesMovement(startDate, endDate time.Time) ([]SalesMovementData, error)
	GetDashboardStats(lowStockThreshold int, expiryHorizon time.Time) (*DashboardStats, error)
}

// SalesMovementData is one day of aggregated sales for chart views
type SalesMovementData struct {
	Date         string  `json:"date"`
	Total        float64 `json:"total"`
	Transactions int     `json:"transactions"`
}

// DashboardStats is the overview payload for the dashboard
type DashboardStats struct {
	TodayTotal        float64 `json:"todayTotal"`
	TodayTransactions int64   `json:"todayTransactions"`
	ActiveProducts    int64   `json:"activeProducts"`
	LowStockProducts  int64   `json:"lowStockProducts"`
	ExpiringBatches   int64   `json:"expiringBatches"`
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db}
}

func (r *orderRepo) CreateHeader(tx *gorm.DB, order *model.Order) error {
	if tx == nil {
		tx = r.db
	}
	// Lines are inserted separately so both writes share the caller's tx
	return tx.Omit("Lines").Create(order).Error
}

func (r *orderRepo) CreateLines(tx *gorm.DB, lines []model.OrderLine) error {
	if tx == nil {
		tx = r.db
	}
	if len(lines) == 0 {
		return nil
	}
	return tx.Create(&lines).Error
}

func (r *orderRepo) FindPage(page, limit int) ([]model.Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var total int64
	if err := r.db.Model(&model.Order{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []model.Order
	err := r.db.
		Preload("Lines").
		Preload("Lines.Product").
		Preload("User").
		Order(`"CreatedAt" DESC`).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&orders).Error
	return orders, total, err
}

func (r *orderRepo) FindByID(id uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := r.db.
		Preload("Lines").
		Preload("Lines.Product").
		Preload("User").
		First(&order, `"ID" = ?`, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var order model.Order
		if err := tx.First(&order, `"ID" = ?`, id).Error; err != nil {
			return err
		}
		// Explicit line delete; we do not rely on FK cascade being
		// enforced by every backing store.
		if err := tx.Where(`"TransactionID" = ?`, id).Delete(&model.OrderLine{}).Error; err != nil {
			return err
		}
		return tx.Delete(&order).Error
	})
}

func (r *orderRepo) ReferenceExists(tx *gorm.DB, referenceNo string) (bool, error) {
	if tx == nil {
		tx = r.db
	}
	var count int64
	err := tx.Model(&model.Order{}).
		Where(`"ReferenceNo" = ?`, referenceNo).
		Count(&count).Error
	return count > 0, err
}

func (r *orderRepo) GetSalesMovement(startDate, endDate time.Time) ([]SalesMovementData, error) {
	var results []SalesMovementData

	rows, err := r.db.Model(&model.Order{}).
		Select(`DATE("CreatedAt") as date, COALESCE(SUM("Total"), 0) as total, COUNT(*) as transactions`).
		Where(`"CreatedAt" BETWEEN ? AND ?`, startDate, endDate).
		Group(`DATE("CreatedAt")`).
		Order(`date ASC`).
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data SalesMovementData
		if err := rows.Scan(&data.Date, &data.Total, &data.Transactions); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, rows.Err()
}

func (r *orderRepo) GetDashboardStats(lowStockThreshold int, expiryHorizon time.Time) (*DashboardStats, error) {
	var stats DashboardStats

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if err := r.db.Model(&model.Order{}).
		Where(`"CreatedAt" >= ?`, startOfDay).
		Select(`COALESCE(SUM("Total"), 0)`).
		Scan(&stats.TodayTotal).Error; err != nil {
		return nil, err
	}

	if err := r.db.Model(&model.Order{}).
		Where(`"CreatedAt" >= ?`, startOfDay).
		Count(&stats.TodayTransactions).Error; err != nil {
		return nil, err
	}

	if err := r.db.Model(&model.Product{}).
		Where(`"Active" = ?`, true).
		Count(&stats.ActiveProducts).Error; err != nil {
		return nil, err
	}

	// Products whose total active batch quantity sits under the threshold
	lowStockQuery := `
		SELECT COUNT(*) FROM (
			SELECT p."ID"
			FROM "Product" p
			LEFT JOIN "Product_Item" b ON b."ProductID" = p."ID" AND b."Active" = ?
			WHERE p."Active" = ?
			GROUP BY p."ID"
			HAVING COALESCE(SUM(b."Quantity"), 0) < ?
		) low`
	if err := r.db.Raw(lowStockQuery, true, true, lowStockThreshold).
		Scan(&stats.LowStockProducts).Error; err != nil {
		return nil, err
	}

	if err := r.db.Model(&model.StockBatch{}).
		Where(`"Active" = ? AND "Quantity" > 0 AND "Expiry" IS NOT NULL AND "Expiry" <= ?`, true, expiryHorizon).
		Count(&stats.ExpiringBatches).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}
