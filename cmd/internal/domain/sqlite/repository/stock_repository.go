package repository

import (
	"errors"
	"nabha/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

type DefaultStockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) *DefaultStockRepository {
	return &DefaultStockRepository{db: db}
}

func (s *DefaultStockRepository) FindByID(id string) (*entity.PharmacyStock, error) {
	var stock entity.PharmacyStock
	err := s.db.First(&stock, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &stock, err
}

// FindAll lists stock rows matching one of the entity.StockFilter* values.
// Any other filter returns every row.
func (s *DefaultStockRepository) FindAll(filter string) ([]*entity.PharmacyStock, error) {
	query := s.db.Model(&entity.PharmacyStock{})
	switch filter {
	case entity.StockFilterInStock:
		query = query.Where("current_stock > min_stock")
	case entity.StockFilterLowStock:
		query = query.Where("current_stock > 0 AND current_stock <= min_stock")
	case entity.StockFilterOutOfStock:
		query = query.Where("current_stock = 0")
	}

	var rows []*entity.PharmacyStock
	err := query.Order("medicine_name asc").Find(&rows).Error
	return rows, err
}

func (s *DefaultStockRepository) Create(stock *entity.PharmacyStock) error {
	return s.db.Create(stock).Error
}

func (s *DefaultStockRepository) Save(stock *entity.PharmacyStock) error {
	return s.db.Save(stock).Error
}

// SetByMedicineID overwrites current_stock on every row holding medicineID.
// A non-nil pharmacyID narrows the overwrite to that pharmacy's rows.
func (s *DefaultStockRepository) SetByMedicineID(medicineID string, pharmacyID *string, newStock int, now int64) (int64, error) {
	query := s.db.Model(&entity.PharmacyStock{}).Where("medicine_id = ?", medicineID)
	if pharmacyID != nil {
		query = query.Where("pharmacy_id = ?", *pharmacyID)
	}
	res := query.Updates(map[string]any{"current_stock": newStock, "updated_at": now})
	return res.RowsAffected, res.Error
}

// Reserve decrements current_stock by quantity only when enough stock is
// left. It reports false when the row is missing or short.
func (s *DefaultStockRepository) Reserve(id string, quantity int, now int64) (bool, error) {
	res := s.db.Model(&entity.PharmacyStock{}).
		Where("id = ?", id).
		Where("current_stock >= ?", quantity).
		Updates(map[string]any{
			"current_stock": gorm.Expr("current_stock - ?", quantity),
			"updated_at":    now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
