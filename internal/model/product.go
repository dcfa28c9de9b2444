package model

type Product struct {
	BaseModel
	Name      string  `gorm:"column:Name;type:varchar(255);not null" json:"name" validate:"required"`
	Category  string  `gorm:"column:Category;type:varchar(100)" json:"category"`
	Price     float64 `gorm:"column:Price;not null" json:"price" validate:"gte=0"`
	VATExempt bool    `gorm:"column:VATExempt;default:false" json:"vatExempt"`
	Active    bool    `gorm:"column:Active" json:"active"`

	// Relasi
	Batches []StockBatch `gorm:"foreignKey:ProductID" json:"batches,omitempty"`
}

func (Product) TableName() string {
	return "Product"
}
