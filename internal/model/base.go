package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel handles ID (UUID) and standard audit trails.
// Column names are PascalCase to stay bit-compatible with the hosted
// store schema this service replaces.
type BaseModel struct {
	ID        uuid.UUID `gorm:"column:ID;type:uuid;primary_key" json:"id"`
	CreatedAt time.Time `gorm:"column:CreatedAt" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:UpdatedAt" json:"updatedAt"`

	// Audit user tracking
	CreatedBy string `gorm:"column:CreatedBy" json:"createdBy,omitempty"`
	UpdatedBy string `gorm:"column:UpdatedBy" json:"updatedBy,omitempty"`
}

// Hook to generate the UUID before insert
func (base *BaseModel) BeforeCreate(tx *gorm.DB) (err error) {
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	return
}
