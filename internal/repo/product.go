package repo

import (
	"context"
	"fmt"
	"math"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/tienda/internal/domain"
	"github.com/Skotchmaster/tienda/internal/models"
)

type ProductFields struct {
	Name        string
	Price       float64
	Description string
}

func (f ProductFields) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if math.IsNaN(f.Price) || math.IsInf(f.Price, 0) {
		return fmt.Errorf("%w: price must be a finite number", domain.ErrValidation)
	}
	if f.Price < 0 {
		return fmt.Errorf("%w: price cannot be negative", domain.ErrValidation)
	}
	return nil
}

func (r *GormRepo) ListProducts(ctx context.Context) ([]models.Product, error) {
	items := make([]models.Product, 0)
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var prod models.Product
	if err := r.DB.WithContext(ctx).First(&prod, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &prod, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, f ProductFields, imagePath string) (*models.Product, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	prod := models.Product{
		Name:        strings.TrimSpace(f.Name),
		Price:       f.Price,
		Description: f.Description,
		Image:       imagePath,
	}
	if err := r.DB.WithContext(ctx).Create(&prod).Error; err != nil {
		return nil, translateError(err)
	}
	return &prod, nil
}

// UpdateProduct replaces the image reference only when imagePath is non-empty.
func (r *GormRepo) UpdateProduct(ctx context.Context, id uint, f ProductFields, imagePath string) (*models.Product, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	var prod models.Product
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&prod, id).Error; err != nil {
			return err
		}

		prod.Name = strings.TrimSpace(f.Name)
		prod.Price = f.Price
		prod.Description = f.Description
		if imagePath != "" {
			prod.Image = imagePath
		}

		return tx.Save(&prod).Error
	})
	if err != nil {
		return nil, translateError(err)
	}
	return &prod, nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormRepo) SearchProducts(ctx context.Context, q string) ([]models.Product, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(q)) + "%"

	items := make([]models.Product, 0)
	if err := r.DB.WithContext(ctx).
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern).
		Order("id ASC").
		Limit(searchLimit).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
