package repository

import (
	"go-pharmapos/internal/model"

	"gorm.io/gorm"
)

type DiscountRepository interface {
	FindAll() ([]model.Discount, error)
	FindByName(name string) (*model.Discount, error)
	Create(discount *model.Discount) error
	SeedDefaults() error
}

type discountRepo struct {
	db *gorm.DB
}

func NewDiscountRepo(db *gorm.DB) DiscountRepository {
	return &discountRepo{db}
}

func (r *discountRepo) FindAll() ([]model.Discount, error) {
	var discounts []model.Discount
	err := r.db.Order(`"Name" ASC`).Find(&discounts).Error
	return discounts, err
}

func (r *discountRepo) FindByName(name string) (*model.Discount, error) {
	var discount model.Discount
	if err := r.db.Where(`"Name" = ?`, name).First(&discount).Error; err != nil {
		return nil, err
	}
	return &discount, nil
}

func (r *discountRepo) Create(discount *model.Discount) error {
	return r.db.Create(discount).Error
}

// SeedDefaults creates the statutory Senior Citizen / PWD discount if missing
func (r *discountRepo) SeedDefaults() error {
	var existing model.Discount
	err := r.db.Where(`"Name" = ?`, model.SeniorPWDDiscountName).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.db.Create(&model.Discount{
			Name:         model.SeniorPWDDiscountName,
			Percentage:   model.DefaultDiscountPercent,
			VATExemption: true,
		}).Error
	}
	return err
}
