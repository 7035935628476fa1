package service

import (
	"fmt"
	"nabha/cmd/internal/domain/entity"
	"nabha/cmd/internal/utils"
	"nabha/cmd/internal/utils/apierror"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

const prescriptionValidity = 30 * 24 * time.Hour

type AppointmentRepository interface {
	FindByID(id string) (*entity.Appointment, error)
	FindAll() ([]*entity.Appointment, error)
	FindByPatientID(id string) ([]*entity.Appointment, error)
	FindByDoctorID(id string) ([]*entity.Appointment, error)
	Create(appointment *entity.Appointment) error
	Transition(appointment *entity.Appointment, from string, record *entity.HealthRecord) (bool, error)
	SetPrescription(appointment *entity.Appointment) (bool, error)
}

type MedicineRepository interface {
	FindByID(id string) (*entity.Medicine, error)
	FindAll() ([]*entity.Medicine, error)
}

type AppointmentRequest struct {
	PatientID string  `json:"patient_id"`
	DoctorID  string  `json:"doctor_id" validate:"required"`
	Date      string  `json:"date" validate:"required,isodate"`
	Time      string  `json:"time" validate:"required,clocktime"`
	Type      string  `json:"type" validate:"required,oneof=video voice chat"`
	Symptoms  string  `json:"symptoms" validate:"required,max=1024"`
	Notes     *string `json:"notes" validate:"omitempty,max=2048"`
}

type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=scheduled in-progress completed cancelled"`
}

type PrescribedMedicine struct {
	MedicineID   string `json:"medicine_id" validate:"required"`
	Dosage       string `json:"dosage" validate:"required,max=64"`
	Frequency    string `json:"frequency" validate:"required,max=64"`
	Duration     string `json:"duration" validate:"required,max=64"`
	Instructions string `json:"instructions" validate:"max=512"`
}

type PrescriptionRequest struct {
	Medicines    []PrescribedMedicine `json:"medicines" validate:"required,min=1,dive"`
	Instructions string               `json:"instructions" validate:"max=1024"`
	ValidUntil   string               `json:"valid_until" validate:"omitempty,isodate"`
}

type AppointmentResponse struct {
	ID           string               `json:"id"`
	PatientID    string               `json:"patient_id"`
	DoctorID     string               `json:"doctor_id"`
	PatientName  string               `json:"patient_name"`
	DoctorName   string               `json:"doctor_name"`
	Date         string               `json:"date"`
	Time         string               `json:"time"`
	Type         string               `json:"type"`
	Status       string               `json:"status"`
	Symptoms     string               `json:"symptoms"`
	Notes        *string              `json:"notes,omitempty"`
	Prescription *entity.Prescription `json:"prescription,omitempty"`
	CreatedAt    string               `json:"created_at"`
	UpdatedAt    string               `json:"updated_at"`
}

type DefaultAppointmentService struct {
	AppointmentRepo AppointmentRepository
	UserRepo        UserRepository
	MedicineRepo    MedicineRepository
	Ledger          RecordLedger
	Feed            *NotificationFeed
	Validate        *validator.Validate
}

func NewAppointmentService(apptRepo AppointmentRepository, userRepo UserRepository, medicineRepo MedicineRepository, recordLedger RecordLedger, feed *NotificationFeed, validate *validator.Validate) *DefaultAppointmentService {
	return &DefaultAppointmentService{
		AppointmentRepo: apptRepo,
		UserRepo:        userRepo,
		MedicineRepo:    medicineRepo,
		Ledger:          recordLedger,
		Feed:            feed,
		Validate:        validate,
	}
}

func (a *DefaultAppointmentService) GetAppointments(subId string) ([]*AppointmentResponse, apierror.ErrorResponse) {
	caller, apierr := a.findCaller(subId)
	if apierr != nil {
		return nil, apierr
	}

	var (
		appts []*entity.Appointment
		err   error
	)
	switch caller.Role {
	case entity.RoleAdmin:
		appts, err = a.AppointmentRepo.FindAll()
	case entity.RolePatient:
		appts, err = a.AppointmentRepo.FindByPatientID(caller.ID)
	case entity.RoleDoctor:
		appts, err = a.AppointmentRepo.FindByDoctorID(caller.ID)
	default:
		return nil, apierror.ForbiddenError
	}

	if err != nil {
		log.Errorf("failed to find appointments for user %s: %v", caller.ID, err)
		return nil, apierror.InternalServerError
	}

	response := make([]*AppointmentResponse, len(appts))
	for i, appt := range appts {
		response[i] = toAppointmentResponse(appt)
	}
	return response, nil
}

func (a *DefaultAppointmentService) GetAppointment(id, subId string) (*AppointmentResponse, apierror.ErrorResponse) {
	caller, apierr := a.findCaller(subId)
	if apierr != nil {
		return nil, apierr
	}

	appt, apierr := a.findVisible(id, caller)
	if apierr != nil {
		return nil, apierr
	}
	return toAppointmentResponse(appt), nil
}

// AddAppointment books a consultation. Slots are not checked for conflicts.
func (a *DefaultAppointmentService) AddAppointment(req *AppointmentRequest, subId string) (*AppointmentResponse, apierror.ErrorResponse) {
	caller, apierr := a.findCaller(subId)
	if apierr != nil {
		return nil, apierr
	}

	utils.Sanitize(req)
	if valerr := a.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}

	switch caller.Role {
	case entity.RolePatient:
		req.PatientID = caller.ID
	case entity.RoleAdmin:
		if req.PatientID == "" {
			return nil, apierror.NewMissingParamError("patient_id")
		}
	default:
		return nil, apierror.ForbiddenError
	}

	patient, err := a.UserRepo.FindByID(req.PatientID)
	if err != nil {
		log.Errorf("failed to fetch patient %s: %v", req.PatientID, err)
		return nil, apierror.InternalServerError
	}

	doctor, err := a.UserRepo.FindByID(req.DoctorID)
	if err != nil {
		log.Errorf("failed to fetch doctor %s: %v", req.DoctorID, err)
		return nil, apierror.InternalServerError
	}

	if patient == nil || patient.Role != entity.RolePatient || doctor == nil || doctor.Role != entity.RoleDoctor {
		return nil, apierror.UnknownParticipantError
	}

	now := utils.NowUTC()
	appointment := &entity.Appointment{
		ID:          uuid.NewString(),
		PatientID:   patient.ID,
		DoctorID:    doctor.ID,
		PatientName: patient.Name,
		DoctorName:  doctor.Name,
		Date:        req.Date,
		Time:        req.Time,
		Type:        req.Type,
		Status:      entity.AppointmentScheduled,
		Symptoms:    req.Symptoms,
		Notes:       req.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := a.AppointmentRepo.Create(appointment); err != nil {
		log.Errorf("failed to save appointment: %v", err)
		return nil, apierror.InternalServerError
	}

	a.Feed.AddNotification(NotificationData{
		UserID:  appointment.PatientID,
		Title:   "Appointment Booked",
		Message: fmt.Sprintf("Your appointment with %s is confirmed for %s at %s", appointment.DoctorName, appointment.Date, appointment.Time),
		Type:    entity.NotificationAppointment,
	})
	return toAppointmentResponse(appointment), nil
}

// UpdateAppointmentStatus moves an appointment along its lifecycle. Either
// participant may start or end the call. The write only lands if the status is
// still the one read here; completing also writes the consultation record in
// the same transaction.
func (a *DefaultAppointmentService) UpdateAppointmentStatus(id string, req *StatusRequest, subId string) (*AppointmentResponse, apierror.ErrorResponse) {
	caller, apierr := a.findCaller(subId)
	if apierr != nil {
		return nil, apierr
	}

	utils.Sanitize(req)
	if valerr := a.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}

	appt, apierr := a.findVisible(id, caller)
	if apierr != nil {
		return nil, apierr
	}

	if !appt.CanTransitionTo(req.Status) {
		return nil, apierror.IllegalTransitionError
	}

	from := appt.Status
	appt.Status = req.Status
	appt.UpdatedAt = utils.NowUTC()

	var record *entity.HealthRecord
	if req.Status == entity.AppointmentCompleted {
		record = consultationRecord(appt)
	}

	moved, err := a.AppointmentRepo.Transition(appt, from, record)
	if err != nil {
		log.Errorf("failed to move appointment %s from %s to %s: %v", appt.ID, from, req.Status, err)
		return nil, apierror.InternalServerError
	}

	if !moved {
		return nil, apierror.StaleStatusError
	}

	switch req.Status {
	case entity.AppointmentCompleted:
		sealRecord(a.Ledger, a.Feed, record)

	case entity.AppointmentCancelled:
		a.Feed.AddNotification(NotificationData{
			UserID:  appt.PatientID,
			Title:   "Appointment Cancelled",
			Message: fmt.Sprintf("Your appointment with %s on %s at %s has been cancelled", appt.DoctorName, appt.Date, appt.Time),
			Type:    entity.NotificationAppointment,
		})
	}
	return toAppointmentResponse(appt), nil
}

func (a *DefaultAppointmentService) AttachPrescription(id string, req *PrescriptionRequest, subId string) (*AppointmentResponse, apierror.ErrorResponse) {
	caller, apierr := a.findCaller(subId)
	if apierr != nil {
		return nil, apierr
	}

	utils.Sanitize(req)
	for i := range req.Medicines {
		utils.Sanitize(&req.Medicines[i])
	}
	if valerr := a.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}

	appt, apierr := a.findVisible(id, caller)
	if apierr != nil {
		return nil, apierr
	}

	if caller.ID != appt.DoctorID {
		return nil, apierror.ForbiddenError
	}

	if appt.Status == entity.AppointmentCancelled {
		return nil, apierror.AppointmentClosedError
	}

	medicines := make([]entity.Medicine, len(req.Medicines))
	for i, m := range req.Medicines {
		catalog, err := a.MedicineRepo.FindByID(m.MedicineID)
		if err != nil {
			log.Errorf("failed to fetch medicine %s: %v", m.MedicineID, err)
			return nil, apierror.InternalServerError
		}

		if catalog == nil {
			return nil, apierror.UnknownMedicineError
		}

		medicines[i] = entity.Medicine{
			ID:           catalog.ID,
			Name:         catalog.Name,
			Dosage:       m.Dosage,
			Frequency:    m.Frequency,
			Duration:     m.Duration,
			Instructions: m.Instructions,
			Price:        catalog.Price,
		}
	}

	now := time.Now().UTC()
	validUntil := req.ValidUntil
	if validUntil == "" {
		validUntil = now.Add(prescriptionValidity).Format(time.DateOnly)
	}

	appt.Prescription = &entity.Prescription{
		ID:           uuid.NewString(),
		PatientID:    appt.PatientID,
		DoctorID:     appt.DoctorID,
		Medicines:    medicines,
		Instructions: req.Instructions,
		IssuedDate:   now.Format(time.DateOnly),
		ValidUntil:   validUntil,
		Status:       entity.PrescriptionActive,
	}
	appt.UpdatedAt = now.UnixMilli()

	saved, err := a.AppointmentRepo.SetPrescription(appt)
	if err != nil {
		log.Errorf("failed to attach prescription to appointment %s: %v", appt.ID, err)
		return nil, apierror.InternalServerError
	}

	if !saved {
		return nil, apierror.AppointmentClosedError
	}

	a.Feed.AddNotification(NotificationData{
		UserID:  appt.PatientID,
		Title:   "Prescription Issued",
		Message: fmt.Sprintf("%s issued a prescription with %d medicine(s)", appt.DoctorName, len(medicines)),
		Type:    entity.NotificationMedicine,
	})
	return toAppointmentResponse(appt), nil
}

func (a *DefaultAppointmentService) findCaller(subId string) (*entity.User, apierror.ErrorResponse) {
	caller, err := a.UserRepo.FindByID(subId)
	if err != nil {
		log.Errorf("failed to fetch user %s: %v", subId, err)
		return nil, apierror.InternalServerError
	}

	if caller == nil {
		return nil, apierror.InvalidAuthTokenError
	}
	return caller, nil
}

// findVisible hides appointments the caller takes no part in behind a 404.
func (a *DefaultAppointmentService) findVisible(id string, caller *entity.User) (*entity.Appointment, apierror.ErrorResponse) {
	appt, err := a.AppointmentRepo.FindByID(id)
	if err != nil {
		log.Errorf("failed to fetch appointment by id %s: %v", id, err)
		return nil, apierror.InternalServerError
	}

	if appt == nil {
		return nil, apierror.NotFoundError
	}

	if !caller.IsAdmin() && caller.ID != appt.PatientID && caller.ID != appt.DoctorID {
		return nil, apierror.NotFoundError
	}
	return appt, nil
}

func consultationRecord(appt *entity.Appointment) *entity.HealthRecord {
	notes := "Consultation completed successfully"
	if appt.Notes != nil && *appt.Notes != "" {
		notes = *appt.Notes
	}

	apptID := appt.ID
	return &entity.HealthRecord{
		ID:            uuid.NewString(),
		PatientID:     appt.PatientID,
		DoctorID:      appt.DoctorID,
		AppointmentID: &apptID,
		Date:          utils.Today(),
		Type:          entity.RecordConsultation,
		Diagnosis:     "Consultation completed",
		Symptoms:      []string{appt.Symptoms},
		Treatment:     "Treatment plan discussed during consultation",
		Notes:         notes,
		Prescription:  appt.Prescription,
		CreatedAt:     appt.UpdatedAt,
	}
}

func toAppointmentResponse(appt *entity.Appointment) *AppointmentResponse {
	return &AppointmentResponse{
		ID:           appt.ID,
		PatientID:    appt.PatientID,
		DoctorID:     appt.DoctorID,
		PatientName:  appt.PatientName,
		DoctorName:   appt.DoctorName,
		Date:         appt.Date,
		Time:         appt.Time,
		Type:         appt.Type,
		Status:       appt.Status,
		Symptoms:     appt.Symptoms,
		Notes:        appt.Notes,
		Prescription: appt.Prescription,
		CreatedAt:    utils.FormatEpoch(appt.CreatedAt),
		UpdatedAt:    utils.FormatEpoch(appt.UpdatedAt),
	}
}
