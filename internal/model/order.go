package model

import "github.com/google/uuid"

// Order is the sale transaction header. Created exactly once per sale,
// never mutated afterward except by deletion (which cascades to lines
// but does NOT restore deducted stock).
type Order struct {
	BaseModel
	ReferenceNo    string     `gorm:"column:ReferenceNo;type:varchar(50);uniqueIndex;not null" json:"referenceNo"`
	PaymentMethod  string     `gorm:"column:PaymentMethod;type:varchar(20);not null" json:"paymentMethod" validate:"required"`
	Subtotal       float64    `gorm:"column:Subtotal;not null" json:"subtotal"`
	DiscountAmount float64    `gorm:"column:DiscountAmount;not null" json:"discountAmount"`
	VATAmount      float64    `gorm:"column:VATAmount;not null" json:"vatAmount"`
	Total          float64    `gorm:"column:Total;not null" json:"total"`
	CashReceived   float64    `gorm:"column:CashReceived" json:"cashReceived"`
	Change         float64    `gorm:"column:Change" json:"change"`
	SeniorPWDID    string     `gorm:"column:SeniorPWDID;type:varchar(50)" json:"seniorPWDID,omitempty"`
	UserID         *uuid.UUID `gorm:"column:UserID;type:uuid;index" json:"userId,omitempty"`
	User           *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`

	// Order exclusively owns its lines (cascade delete)
	Lines []OrderLine `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// Legacy table name from the hosted schema
func (Order) TableName() string {
	return "Transaction"
}

// OrderLine is one product line of a sale, immutable after creation.
// Subtotal is the post-discount, post-VAT amount for the line.
type OrderLine struct {
	BaseModel
	OrderID        uuid.UUID `gorm:"column:TransactionID;type:uuid;not null;index" json:"orderId"`
	ProductID      uuid.UUID `gorm:"column:ProductID;type:uuid;not null" json:"productId"`
	Product        *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity       int       `gorm:"column:Quantity;not null" json:"quantity"`
	UnitPrice      float64   `gorm:"column:UnitPrice;not null" json:"unitPrice"`
	Subtotal       float64   `gorm:"column:Subtotal;not null" json:"subtotal"`
	DiscountAmount float64   `gorm:"column:DiscountAmount;not null" json:"discountAmount"`
	VATAmount      float64   `gorm:"column:VATAmount;not null" json:"vatAmount"`
}

func (OrderLine) TableName() string {
	return "Transaction_Item"
}
