package repository

import (
	"nabha/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

type DefaultHealthRecordRepository struct {
	db *gorm.DB
}

func NewHealthRecordRepository(db *gorm.DB) *DefaultHealthRecordRepository {
	return &DefaultHealthRecordRepository{db: db}
}

func (h *DefaultHealthRecordRepository) Create(record *entity.HealthRecord) error {
	return h.db.Create(record).Error
}

func (h *DefaultHealthRecordRepository) FindAll() ([]*entity.HealthRecord, error) {
	var records []*entity.HealthRecord
	err := h.db.Order("created_at asc").Find(&records).Error
	return records, err
}

func (h *DefaultHealthRecordRepository) FindByPatientID(id string) ([]*entity.HealthRecord, error) {
	var records []*entity.HealthRecord
	err := h.db.Where("patient_id = ?", id).Order("created_at asc").Find(&records).Error
	return records, err
}

func (h *DefaultHealthRecordRepository) FindByDoctorID(id string) ([]*entity.HealthRecord, error) {
	var records []*entity.HealthRecord
	err := h.db.Where("doctor_id = ?", id).Order("created_at asc").Find(&records).Error
	return records, err
}
