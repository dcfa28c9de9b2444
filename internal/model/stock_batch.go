package model

import (
	"time"

	"github.com/google/uuid"
)

// StockBatch is one receipt of stock for a product, tracked with its own
// expiry date and remaining quantity. Batches are never deleted physically,
// only deactivated, so historical sales keep a valid reference.
type StockBatch struct {
	BaseModel
	ProductID uuid.UUID  `gorm:"column:ProductID;type:uuid;not null;index" json:"productId" validate:"uuid_required"`
	Product   *Product   `gorm:"foreignKey:ProductID" json:"product,omitempty" validate:"-"`
	Quantity  int        `gorm:"column:Quantity;not null;default:0" json:"quantity" validate:"gte=0"`
	Expiry    *time.Time `gorm:"column:Expiry;type:date" json:"expiry,omitempty"`
	BatchNo   string     `gorm:"column:BatchNo;type:varchar(100)" json:"batchNo,omitempty"`
	Location  string     `gorm:"column:Location;type:varchar(100)" json:"location,omitempty"`
	// No column default on purpose: GORM omits zero-value fields that
	// carry a default tag, which would turn Active:false into true on
	// insert. Create paths set the flag explicitly.
	Active bool `gorm:"column:Active" json:"active"`
}

// Legacy table name from the hosted schema
func (StockBatch) TableName() string {
	return "Product_Item"
}
