package service

import (
	"fmt"
	"nabha/cmd/internal/domain/entity"
	"nabha/cmd/internal/utils"
	"nabha/cmd/internal/utils/apierror"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

type StockRepository interface {
	FindByID(id string) (*entity.PharmacyStock, error)
	FindAll(filter string) ([]*entity.PharmacyStock, error)
	Create(stock *entity.PharmacyStock) error
	Save(stock *entity.PharmacyStock) error
	SetByMedicineID(medicineID string, pharmacyID *string, newStock int, now int64) (int64, error)
	Reserve(id string, quantity int, now int64) (bool, error)
}

type StockLevelRequest struct {
	CurrentStock *int `json:"current_stock" validate:"required"`
}

type ReserveRequest struct {
	Quantity int `json:"quantity"`
}

type StockRequest struct {
	PharmacyID   string   `json:"pharmacy_id"`
	MedicineID   string   `json:"medicine_id" validate:"required"`
	CurrentStock int      `json:"current_stock" validate:"min=0"`
	MinStock     int      `json:"min_stock" validate:"min=0"`
	Price        *float64 `json:"price" validate:"omitempty,gt=0"`
	ExpiryDate   string   `json:"expiry_date" validate:"omitempty,isodate"`
	BatchNumber  string   `json:"batch_number" validate:"max=64"`
}

type StockResponse struct {
	ID           string  `json:"id"`
	PharmacyID   string  `json:"pharmacy_id"`
	MedicineID   string  `json:"medicine_id"`
	MedicineName string  `json:"medicine_name"`
	CurrentStock int     `json:"current_stock"`
	MinStock     int     `json:"min_stock"`
	Price        float64 `json:"price"`
	ExpiryDate   string  `json:"expiry_date"`
	BatchNumber  string  `json:"batch_number"`
	Availability string  `json:"availability"`
	UpdatedAt    string  `json:"updated_at"`
}

type StockUpdateResponse struct {
	MedicineID   string `json:"medicine_id"`
	CurrentStock int    `json:"current_stock"`
	RowsUpdated  int64  `json:"rows_updated"`
}

type ReserveResponse struct {
	Reserved bool           `json:"reserved"`
	Stock    *StockResponse `json:"stock,omitempty"`
}

var validStockFilters = map[string]bool{
	entity.StockFilterAll:        true,
	entity.StockFilterInStock:    true,
	entity.StockFilterLowStock:   true,
	entity.StockFilterOutOfStock: true,
}

type DefaultStockService struct {
	StockRepo    StockRepository
	MedicineRepo MedicineRepository
	UserRepo     UserRepository
	Feed         *NotificationFeed
	Validate     *validator.Validate
}

func NewStockService(stockRepo StockRepository, medicineRepo MedicineRepository, userRepo UserRepository, feed *NotificationFeed, validate *validator.Validate) *DefaultStockService {
	return &DefaultStockService{StockRepo: stockRepo, MedicineRepo: medicineRepo, UserRepo: userRepo, Feed: feed, Validate: validate}
}

// ListStock returns the rows matching filter whose medicine name contains
// search, ignoring case. An empty search matches every row.
func (s *DefaultStockService) ListStock(filter, search string) ([]*StockResponse, apierror.ErrorResponse) {
	if filter == "" {
		filter = entity.StockFilterAll
	}

	if !validStockFilters[filter] {
		return nil, apierror.NewSimple(400, fmt.Sprintf("Unknown stock filter: %s", filter))
	}

	rows, err := s.StockRepo.FindAll(filter)
	if err != nil {
		log.Errorf("failed to list stock with filter %s: %v", filter, err)
		return nil, apierror.InternalServerError
	}

	search = strings.ToLower(strings.TrimSpace(search))
	resp := make([]*StockResponse, 0, len(rows))
	for _, row := range rows {
		if search != "" && !strings.Contains(strings.ToLower(row.MedicineName), search) {
			continue
		}
		resp = append(resp, toStockResponse(row))
	}
	return resp, nil
}

func (s *DefaultStockService) ListMedicines() ([]*entity.Medicine, apierror.ErrorResponse) {
	medicines, err := s.MedicineRepo.FindAll()
	if err != nil {
		log.Errorf("failed to list medicines: %v", err)
		return nil, apierror.InternalServerError
	}
	return medicines, nil
}

func (s *DefaultStockService) AddStock(req *StockRequest, subId string) (*StockResponse, apierror.ErrorResponse) {
	caller, apierr := s.findStockKeeper(subId)
	if apierr != nil {
		return nil, apierr
	}

	utils.Sanitize(req)
	if valerr := s.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}

	if !caller.IsAdmin() {
		req.PharmacyID = caller.ID
	} else if req.PharmacyID == "" {
		return nil, apierror.NewMissingParamError("pharmacy_id")
	} else if ok, apierr := hasRole(s.UserRepo, req.PharmacyID, entity.RolePharmacy); apierr != nil {
		return nil, apierr
	} else if !ok {
		return nil, apierror.UnknownParticipantError
	}

	medicine, err := s.MedicineRepo.FindByID(req.MedicineID)
	if err != nil {
		log.Errorf("failed to fetch medicine %s: %v", req.MedicineID, err)
		return nil, apierror.InternalServerError
	}

	if medicine == nil {
		return nil, apierror.UnknownMedicineError
	}

	price := medicine.Price
	if req.Price != nil {
		price = *req.Price
	}

	row := &entity.PharmacyStock{
		ID:           uuid.NewString(),
		PharmacyID:   req.PharmacyID,
		MedicineID:   medicine.ID,
		MedicineName: medicine.Name,
		CurrentStock: req.CurrentStock,
		MinStock:     req.MinStock,
		Price:        price,
		ExpiryDate:   req.ExpiryDate,
		BatchNumber:  req.BatchNumber,
		UpdatedAt:    utils.NowUTC(),
	}

	if err := s.StockRepo.Create(row); err != nil {
		log.Errorf("failed to save stock row: %v", err)
		return nil, apierror.InternalServerError
	}
	return toStockResponse(row), nil
}

// UpdateStock overwrites current_stock on every row of medicineID the caller
// manages. Admins overwrite it for every pharmacy.
func (s *DefaultStockService) UpdateStock(medicineID string, req *StockLevelRequest, subId string) (*StockUpdateResponse, apierror.ErrorResponse) {
	caller, apierr := s.findStockKeeper(subId)
	if apierr != nil {
		return nil, apierr
	}

	if apierr := s.validateLevel(req); apierr != nil {
		return nil, apierr
	}

	var scope *string
	if !caller.IsAdmin() {
		scope = &caller.ID
	}

	updated, err := s.StockRepo.SetByMedicineID(medicineID, scope, *req.CurrentStock, utils.NowUTC())
	if err != nil {
		log.Errorf("failed to update stock of medicine %s: %v", medicineID, err)
		return nil, apierror.InternalServerError
	}

	if updated == 0 {
		return nil, apierror.NotFoundError
	}
	return &StockUpdateResponse{MedicineID: medicineID, CurrentStock: *req.CurrentStock, RowsUpdated: updated}, nil
}

func (s *DefaultStockService) SetStockRow(id string, req *StockLevelRequest, subId string) (*StockResponse, apierror.ErrorResponse) {
	caller, apierr := s.findStockKeeper(subId)
	if apierr != nil {
		return nil, apierr
	}

	if apierr := s.validateLevel(req); apierr != nil {
		return nil, apierr
	}

	row, err := s.StockRepo.FindByID(id)
	if err != nil {
		log.Errorf("failed to fetch stock row %s: %v", id, err)
		return nil, apierror.InternalServerError
	}

	if row == nil || (!caller.IsAdmin() && row.PharmacyID != caller.ID) {
		return nil, apierror.NotFoundError
	}

	row.CurrentStock = *req.CurrentStock
	row.UpdatedAt = utils.NowUTC()
	if err := s.StockRepo.Save(row); err != nil {
		log.Errorf("failed to save stock row %s: %v", id, err)
		return nil, apierror.InternalServerError
	}
	return toStockResponse(row), nil
}

// ReserveMedicine takes quantity units off a stock row. A missing row or
// insufficient stock is not an error: it answers Reserved=false and leaves
// the row untouched.
func (s *DefaultStockService) ReserveMedicine(id string, req *ReserveRequest, subId string) (*ReserveResponse, apierror.ErrorResponse) {
	caller, err := s.UserRepo.FindByID(subId)
	if err != nil {
		log.Errorf("failed to fetch user %s: %v", subId, err)
		return nil, apierror.InternalServerError
	}

	if caller == nil {
		return nil, apierror.InvalidAuthTokenError
	}

	if req.Quantity < 1 {
		return nil, apierror.InvalidQuantityError
	}

	reserved, err := s.StockRepo.Reserve(id, req.Quantity, utils.NowUTC())
	if err != nil {
		log.Errorf("failed to reserve %d units from stock row %s: %v", req.Quantity, id, err)
		return nil, apierror.InternalServerError
	}

	if !reserved {
		return &ReserveResponse{Reserved: false}, nil
	}

	row, err := s.StockRepo.FindByID(id)
	if err != nil || row == nil {
		log.Errorf("failed to reload stock row %s after reservation: %v", id, err)
		return nil, apierror.InternalServerError
	}

	s.Feed.AddNotification(NotificationData{
		UserID:  caller.ID,
		Title:   "Medicine Reserved",
		Message: fmt.Sprintf("%d units of %s reserved successfully", req.Quantity, row.MedicineName),
		Type:    entity.NotificationMedicine,
	})

	if row.CurrentStock <= row.MinStock {
		s.Feed.AddNotification(NotificationData{
			UserID:  row.PharmacyID,
			Title:   "Low Stock Alert",
			Message: fmt.Sprintf("%s is down to %d units", row.MedicineName, row.CurrentStock),
			Type:    entity.NotificationMedicine,
		})
	}
	return &ReserveResponse{Reserved: true, Stock: toStockResponse(row)}, nil
}

func (s *DefaultStockService) findStockKeeper(subId string) (*entity.User, apierror.ErrorResponse) {
	caller, err := s.UserRepo.FindByID(subId)
	if err != nil {
		log.Errorf("failed to fetch user %s: %v", subId, err)
		return nil, apierror.InternalServerError
	}

	if caller == nil {
		return nil, apierror.InvalidAuthTokenError
	}

	if caller.Role != entity.RolePharmacy && !caller.IsAdmin() {
		return nil, apierror.ForbiddenError
	}
	return caller, nil
}

func (s *DefaultStockService) validateLevel(req *StockLevelRequest) apierror.ErrorResponse {
	if valerr := s.Validate.Struct(req); valerr != nil {
		return apierror.FromValidationError(valerr)
	}

	if *req.CurrentStock < 0 {
		return apierror.NegativeStockError
	}
	return nil
}

func toStockResponse(row *entity.PharmacyStock) *StockResponse {
	return &StockResponse{
		ID:           row.ID,
		PharmacyID:   row.PharmacyID,
		MedicineID:   row.MedicineID,
		MedicineName: row.MedicineName,
		CurrentStock: row.CurrentStock,
		MinStock:     row.MinStock,
		Price:        row.Price,
		ExpiryDate:   row.ExpiryDate,
		BatchNumber:  row.BatchNumber,
		Availability: row.Availability(),
		UpdatedAt:    utils.FormatEpoch(row.UpdatedAt),
	}
}
