package service

import (
	"errors"
	"nabha/cmd/internal/domain/entity"
	"nabha/cmd/internal/domain/ledger"
	"nabha/cmd/internal/utils"
	"nabha/cmd/internal/utils/apierror"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

type HealthRecordRepository interface {
	Create(record *entity.HealthRecord) error
	FindAll() ([]*entity.HealthRecord, error)
	FindByPatientID(id string) ([]*entity.HealthRecord, error)
	FindByDoctorID(id string) ([]*entity.HealthRecord, error)
}

type RecordLedger interface {
	Append(record *entity.HealthRecord) (*ledger.Entry, error)
	FindByRecordID(id string) (*ledger.Entry, error)
	Verify() (*ledger.Report, error)
}

type HealthRecordRequest struct {
	PatientID     string               `json:"patient_id" validate:"required"`
	DoctorID      string               `json:"doctor_id"`
	AppointmentID *string              `json:"appointment_id"`
	Date          string               `json:"date" validate:"omitempty,isodate"`
	Type          string               `json:"type" validate:"required,oneof=consultation test vaccination surgery"`
	Diagnosis     string               `json:"diagnosis" validate:"required,max=512"`
	Symptoms      []string             `json:"symptoms" validate:"dive,max=256"`
	Treatment     string               `json:"treatment" validate:"max=1024"`
	Notes         string               `json:"notes" validate:"max=2048"`
	Attachments   []string             `json:"attachments"`
	Prescription  *entity.Prescription `json:"prescription"`
}

type HealthRecordResponse struct {
	ID            string               `json:"id"`
	PatientID     string               `json:"patient_id"`
	DoctorID      string               `json:"doctor_id"`
	AppointmentID *string              `json:"appointment_id,omitempty"`
	Date          string               `json:"date"`
	Type          string               `json:"type"`
	Diagnosis     string               `json:"diagnosis"`
	Symptoms      []string             `json:"symptoms"`
	Treatment     string               `json:"treatment"`
	Notes         string               `json:"notes"`
	Attachments   []string             `json:"attachments"`
	Prescription  *entity.Prescription `json:"prescription,omitempty"`
	CreatedAt     string               `json:"created_at"`
}

type LedgerResponse struct {
	Height     int      `json:"height"`
	Valid      bool     `json:"valid"`
	BrokenAt   *int     `json:"broken_at,omitempty"`
	Records    int      `json:"records"`
	Tampered   []string `json:"tampered"`
	Unsealed   []string `json:"unsealed"`
	ChainValid bool     `json:"chain_valid"`
}

type DefaultHealthRecordService struct {
	RecordRepo HealthRecordRepository
	UserRepo   UserRepository
	Ledger     RecordLedger
	Feed       *NotificationFeed
	Validate   *validator.Validate
}

func NewHealthRecordService(recordRepo HealthRecordRepository, userRepo UserRepository, recordLedger RecordLedger, feed *NotificationFeed, validate *validator.Validate) *DefaultHealthRecordService {
	return &DefaultHealthRecordService{RecordRepo: recordRepo, UserRepo: userRepo, Ledger: recordLedger, Feed: feed, Validate: validate}
}

func (h *DefaultHealthRecordService) AddHealthRecord(req *HealthRecordRequest, subId string) (*HealthRecordResponse, apierror.ErrorResponse) {
	caller, err := h.UserRepo.FindByID(subId)
	if err != nil {
		log.Errorf("failed to fetch user %s: %v", subId, err)
		return nil, apierror.InternalServerError
	}

	if caller == nil {
		return nil, apierror.InvalidAuthTokenError
	}

	utils.Sanitize(req)
	if valerr := h.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}

	switch caller.Role {
	case entity.RoleDoctor:
		req.DoctorID = caller.ID
	case entity.RoleAdmin:
		if req.DoctorID == "" {
			return nil, apierror.NewMissingParamError("doctor_id")
		}
	default:
		return nil, apierror.ForbiddenError
	}

	if ok, apierr := hasRole(h.UserRepo, req.PatientID, entity.RolePatient); apierr != nil {
		return nil, apierr
	} else if !ok {
		return nil, apierror.UnknownParticipantError
	}

	date := req.Date
	if date == "" {
		date = utils.Today()
	}

	record := &entity.HealthRecord{
		ID:            uuid.NewString(),
		PatientID:     req.PatientID,
		DoctorID:      req.DoctorID,
		AppointmentID: req.AppointmentID,
		Date:          date,
		Type:          req.Type,
		Diagnosis:     req.Diagnosis,
		Symptoms:      req.Symptoms,
		Treatment:     req.Treatment,
		Notes:         req.Notes,
		Attachments:   req.Attachments,
		Prescription:  req.Prescription,
		CreatedAt:     utils.NowUTC(),
	}

	if err := h.RecordRepo.Create(record); err != nil {
		log.Errorf("failed to save health record: %v", err)
		return nil, apierror.InternalServerError
	}

	sealRecord(h.Ledger, h.Feed, record)
	return toHealthRecordResponse(record), nil
}

func (h *DefaultHealthRecordService) GetHealthRecords(subId string) ([]*HealthRecordResponse, apierror.ErrorResponse) {
	caller, err := h.UserRepo.FindByID(subId)
	if err != nil {
		log.Errorf("failed to fetch user %s: %v", subId, err)
		return nil, apierror.InternalServerError
	}

	if caller == nil {
		return nil, apierror.InvalidAuthTokenError
	}

	var records []*entity.HealthRecord
	switch caller.Role {
	case entity.RoleAdmin:
		records, err = h.RecordRepo.FindAll()
	case entity.RolePatient:
		records, err = h.RecordRepo.FindByPatientID(caller.ID)
	case entity.RoleDoctor:
		records, err = h.RecordRepo.FindByDoctorID(caller.ID)
	default:
		return nil, apierror.ForbiddenError
	}

	if err != nil {
		log.Errorf("failed to find health records for user %s: %v", caller.ID, err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*HealthRecordResponse, len(records))
	for i, r := range records {
		resp[i] = toHealthRecordResponse(r)
	}
	return resp, nil
}

// VerifyLedger checks the hash chain and then compares every stored record
// against the digest sealed when it was written.
func (h *DefaultHealthRecordService) VerifyLedger(subId string) (*LedgerResponse, apierror.ErrorResponse) {
	caller, err := h.UserRepo.FindByID(subId)
	if err != nil {
		log.Errorf("failed to fetch user %s: %v", subId, err)
		return nil, apierror.InternalServerError
	}

	if caller == nil || !caller.IsAdmin() {
		return nil, apierror.ForbiddenError
	}

	report, err := h.Ledger.Verify()
	if err != nil {
		log.Errorf("failed to verify record ledger: %v", err)
		return nil, apierror.InternalServerError
	}

	records, err := h.RecordRepo.FindAll()
	if err != nil {
		log.Errorf("failed to fetch health records: %v", err)
		return nil, apierror.InternalServerError
	}

	resp := &LedgerResponse{
		Height:     report.Height,
		BrokenAt:   report.BrokenAt,
		Records:    len(records),
		Tampered:   []string{},
		Unsealed:   []string{},
		ChainValid: report.Valid,
	}

	for _, r := range records {
		entry, err := h.Ledger.FindByRecordID(r.ID)
		if errors.Is(err, ledger.ErrNotFound) {
			resp.Unsealed = append(resp.Unsealed, r.ID)
			continue
		}
		if err != nil {
			log.Errorf("failed to read ledger entry for record %s: %v", r.ID, err)
			return nil, apierror.InternalServerError
		}

		digest, err := ledger.Digest(r)
		if err != nil {
			log.Errorf("failed to digest record %s: %v", r.ID, err)
			return nil, apierror.InternalServerError
		}
		if digest != entry.Digest {
			resp.Tampered = append(resp.Tampered, r.ID)
		}
	}

	resp.Valid = resp.ChainValid && len(resp.Tampered) == 0
	return resp, nil
}

// sealRecord runs after a record is committed. A ledger failure leaves the
// record unsealed; VerifyLedger reports it.
func sealRecord(l RecordLedger, feed *NotificationFeed, record *entity.HealthRecord) {
	if _, err := l.Append(record); err != nil {
		log.Errorf("failed to append record %s to ledger: %v", record.ID, err)
	}

	feed.AddNotification(NotificationData{
		UserID:  record.PatientID,
		Title:   "Health Record Added",
		Message: "New medical record has been added to your profile",
		Type:    entity.NotificationHealth,
	})
}

func hasRole(repo UserRepository, id, role string) (bool, apierror.ErrorResponse) {
	user, err := repo.FindByID(id)
	if err != nil {
		log.Errorf("failed to fetch user %s: %v", id, err)
		return false, apierror.InternalServerError
	}
	return user != nil && user.Role == role, nil
}

func toHealthRecordResponse(r *entity.HealthRecord) *HealthRecordResponse {
	symptoms := r.Symptoms
	if symptoms == nil {
		symptoms = []string{}
	}
	attachments := r.Attachments
	if attachments == nil {
		attachments = []string{}
	}

	return &HealthRecordResponse{
		ID:            r.ID,
		PatientID:     r.PatientID,
		DoctorID:      r.DoctorID,
		AppointmentID: r.AppointmentID,
		Date:          r.Date,
		Type:          r.Type,
		Diagnosis:     r.Diagnosis,
		Symptoms:      symptoms,
		Treatment:     r.Treatment,
		Notes:         r.Notes,
		Attachments:   attachments,
		Prescription:  r.Prescription,
		CreatedAt:     utils.FormatEpoch(r.CreatedAt),
	}
}
