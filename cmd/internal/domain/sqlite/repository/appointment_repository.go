package repository

import (
	"errors"
	"nabha/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

type DefaultAppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *DefaultAppointmentRepository {
	return &DefaultAppointmentRepository{db: db}
}

func (a *DefaultAppointmentRepository) FindByID(id string) (*entity.Appointment, error) {
	var appt entity.Appointment
	err := a.db.First(&appt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &appt, err
}

func (a *DefaultAppointmentRepository) FindAll() ([]*entity.Appointment, error) {
	var appts []*entity.Appointment
	err := a.db.Order("date asc, time asc, created_at asc").Find(&appts).Error
	return appts, err
}

func (a *DefaultAppointmentRepository) FindByPatientID(id string) ([]*entity.Appointment, error) {
	var appts []*entity.Appointment
	err := a.db.Where("patient_id = ?", id).
		Order("date asc, time asc, created_at asc").
		Find(&appts).Error
	return appts, err
}

func (a *DefaultAppointmentRepository) FindByDoctorID(id string) ([]*entity.Appointment, error) {
	var appts []*entity.Appointment
	err := a.db.Where("doctor_id = ?", id).
		Order("date asc, time asc, created_at asc").
		Find(&appts).Error
	return appts, err
}

func (a *DefaultAppointmentRepository) Create(appointment *entity.Appointment) error {
	return a.db.Create(appointment).Error
}

// Transition moves the appointment from status from to appointment.Status and,
// when record is non-nil, inserts it in the same transaction. It reports false
// without writing anything once the stored status is no longer from.
func (a *DefaultAppointmentRepository) Transition(appointment *entity.Appointment, from string, record *entity.HealthRecord) (bool, error) {
	moved := false
	err := a.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.Appointment{}).
			Where("id = ?", appointment.ID).
			Where("status = ?", from).
			Updates(map[string]any{
				"status":     appointment.Status,
				"updated_at": appointment.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		if record != nil {
			if err := tx.Create(record).Error; err != nil {
				return err
			}
		}
		moved = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return moved, nil
}

// SetPrescription writes the prescription unless the appointment has been
// cancelled in the meantime.
func (a *DefaultAppointmentRepository) SetPrescription(appointment *entity.Appointment) (bool, error) {
	res := a.db.Model(appointment).
		Where("status <> ?", entity.AppointmentCancelled).
		Select("prescription", "updated_at").
		Updates(appointment)
	return res.RowsAffected > 0, res.Error
}
