package repository

import (
	"errors"
	"nabha/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

type DefaultMedicineRepository struct {
	db *gorm.DB
}

func NewMedicineRepository(db *gorm.DB) *DefaultMedicineRepository {
	return &DefaultMedicineRepository{db: db}
}

func (m *DefaultMedicineRepository) FindByID(id string) (*entity.Medicine, error) {
	var med entity.Medicine
	err := m.db.First(&med, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &med, err
}

func (m *DefaultMedicineRepository) FindAll() ([]*entity.Medicine, error) {
	var meds []*entity.Medicine
	err := m.db.Order("name asc").Find(&meds).Error
	return meds, err
}

func (m *DefaultMedicineRepository) Create(medicine *entity.Medicine) error {
	return m.db.Create(medicine).Error
}
