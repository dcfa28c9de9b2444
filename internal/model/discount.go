package model

// Discount is a named percentage discount (e.g. "Senior Citizen / PWD").
// Looked up by name at sale time; immutable during a sale.
type Discount struct {
	BaseModel
	Name         string  `gorm:"column:Name;type:varchar(100);uniqueIndex;not null" json:"name" validate:"required"`
	Percentage   float64 `gorm:"column:Percentage;not null" json:"percentage" validate:"gte=0,lte=100"`
	VATExemption bool    `gorm:"column:VATExemption;default:false" json:"vatExemption"`
}

func (Discount) TableName() string {
	return "Discount"
}

// DefaultDiscountPercent applies when a discount-eligible sale cannot
// resolve a discount record (statutory Senior Citizen / PWD rate).
const DefaultDiscountPercent = 20.0

// SeniorPWDDiscountName is the seeded discount looked up for eligible sales.
const SeniorPWDDiscountName = "Senior Citizen / PWD"
