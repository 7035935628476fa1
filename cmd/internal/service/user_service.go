package service

import (
	"nabha/cmd/internal/domain/entity"
	"nabha/cmd/internal/utils"
	"nabha/cmd/internal/utils/apierror"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

type UserRepository interface {
	FindByID(id string) (*entity.User, error)
	FindByPhone(phone string) (*entity.User, error)
	FindByRole(role string) ([]*entity.User, error)
	ExistsByPhone(phone string) (bool, error)
	Create(user *entity.User) error
}

type SendOtpRequest struct {
	Phone string `json:"phone" validate:"required,e164"`
}

type LoginRequest struct {
	Phone string `json:"phone" validate:"required,e164"`
	Otp   string `json:"otp" validate:"required,len=6,numeric"`
}

type RegisterRequest struct {
	Name            string                  `json:"name" validate:"required,min=2,max=80"`
	Email           *string                 `json:"email" validate:"omitempty,email"`
	Phone           string                  `json:"phone" validate:"required,e164"`
	Role            string                  `json:"role" validate:"required,oneof=patient doctor pharmacy"`
	PatientProfile  *entity.PatientProfile  `json:"patient_profile"`
	DoctorProfile   *entity.DoctorProfile   `json:"doctor_profile"`
	PharmacyProfile *entity.PharmacyProfile `json:"pharmacy_profile"`
}

type UserResponse struct {
	ID              string                  `json:"id"`
	Name            string                  `json:"name"`
	Email           *string                 `json:"email,omitempty"`
	Phone           string                  `json:"phone"`
	Role            string                  `json:"role"`
	Avatar          *string                 `json:"avatar,omitempty"`
	IsVerified      bool                    `json:"is_verified"`
	CreatedAt       string                  `json:"created_at"`
	PatientProfile  *entity.PatientProfile  `json:"patient_profile,omitempty"`
	DoctorProfile   *entity.DoctorProfile   `json:"doctor_profile,omitempty"`
	PharmacyProfile *entity.PharmacyProfile `json:"pharmacy_profile,omitempty"`
}

type LoginResponse struct {
	AccessToken string        `json:"access_token"`
	User        *UserResponse `json:"user"`
}

// AuthSettings drive the mocked OTP flow. No SMS is ever sent: the only
// accepted code is MockOtp.
type AuthSettings struct {
	MockOtp         string
	DemoDoctorPhone string
}

type DefaultUserService struct {
	UserRepo UserRepository
	Validate *validator.Validate
	Tokens   *utils.TokenIssuer
	Settings AuthSettings
}

func NewUserService(userRepo UserRepository, validate *validator.Validate, tokens *utils.TokenIssuer, settings AuthSettings) *DefaultUserService {
	return &DefaultUserService{UserRepo: userRepo, Validate: validate, Tokens: tokens, Settings: settings}
}

func (u *DefaultUserService) SendOtp(req *SendOtpRequest) apierror.ErrorResponse {
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return apierror.FromValidationError(err)
	}

	log.Infof("mock OTP issued for %s", maskPhone(req.Phone))
	return nil
}

// Login checks the OTP and returns a signed token. A phone number seen for the
// first time is provisioned on the spot, the way the demo app does.
func (u *DefaultUserService) Login(req *LoginRequest) (*LoginResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	if req.Otp != u.Settings.MockOtp {
		return nil, apierror.InvalidOtpError
	}

	user, err := u.UserRepo.FindByPhone(req.Phone)
	if err != nil {
		log.Errorf("failed to fetch user by phone %s: %v", maskPhone(req.Phone), err)
		return nil, apierror.InternalServerError
	}

	if user == nil {
		user = u.provisionUser(req.Phone)
		if err := u.UserRepo.Create(user); err != nil {
			log.Errorf("failed to provision user %s: %v", maskPhone(req.Phone), err)
			return nil, apierror.InternalServerError
		}
	}

	token, err := u.Tokens.Issue(user.ID, user.Role)
	if err != nil {
		log.Errorf("failed to sign token for user %s: %v", user.ID, err)
		return nil, apierror.InternalServerError
	}
	return &LoginResponse{AccessToken: token, User: toUserResponse(user)}, nil
}

func (u *DefaultUserService) Register(req *RegisterRequest) (*UserResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	found, err := u.UserRepo.ExistsByPhone(req.Phone)
	if err != nil {
		log.Errorf("failed to check if user already exists: %v", err)
		return nil, apierror.InternalServerError
	}

	if found {
		return nil, apierror.UserAlreadyExistsError
	}

	now := utils.NowUTC()
	user := &entity.User{
		ID:         uuid.NewString(),
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Role:       req.Role,
		IsVerified: false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	// Only the profile matching the role is kept.
	switch req.Role {
	case entity.RolePatient:
		user.PatientProfile = req.PatientProfile
		if user.PatientProfile == nil {
			user.PatientProfile = &entity.PatientProfile{}
		}
		if user.PatientProfile.HealthID == "" {
			user.PatientProfile.HealthID = newHealthID()
		}
	case entity.RoleDoctor:
		user.DoctorProfile = req.DoctorProfile
	case entity.RolePharmacy:
		user.PharmacyProfile = req.PharmacyProfile
	}

	if err := u.UserRepo.Create(user); err != nil {
		log.Errorf("failed to create user: %v", err)
		return nil, apierror.InternalServerError
	}
	return toUserResponse(user), nil
}

func (u *DefaultUserService) GetUser(rawId, subId string) (*UserResponse, apierror.ErrorResponse) {
	id := rawId
	if rawId == "@me" {
		id = subId
	}

	user, err := u.UserRepo.FindByID(id)
	if err != nil {
		log.Errorf("failed to find user (%s) by id: %v", id, err)
		return nil, apierror.InternalServerError
	}

	if user == nil {
		return nil, apierror.NotFoundError
	}
	return toUserResponse(user), nil
}

func (u *DefaultUserService) GetDoctors() ([]*UserResponse, apierror.ErrorResponse) {
	doctors, err := u.UserRepo.FindByRole(entity.RoleDoctor)
	if err != nil {
		log.Errorf("failed to fetch doctors: %v", err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*UserResponse, len(doctors))
	for i, doc := range doctors {
		resp[i] = toUserResponse(doc)
	}
	return resp, nil
}

func (u *DefaultUserService) provisionUser(phone string) *entity.User {
	now := utils.NowUTC()
	user := &entity.User{
		ID:         uuid.NewString(),
		Phone:      phone,
		IsVerified: true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if phone == u.Settings.DemoDoctorPhone {
		user.Name = "Dr. Preet Singh"
		user.Role = entity.RoleDoctor
		user.DoctorProfile = &entity.DoctorProfile{
			Specialty:       "General Medicine",
			LicenseNumber:   "PMC12345",
			Experience:      8,
			Qualifications:  []string{"MBBS", "MD General Medicine"},
			ConsultationFee: 300,
			Availability: []entity.Availability{
				{Day: "Monday", StartTime: "09:00", EndTime: "17:00"},
				{Day: "Tuesday", StartTime: "09:00", EndTime: "17:00"},
			},
			Rating:      4.8,
			IsAvailable: true,
		}
		return user
	}

	user.Name = "Guest " + phone[len(phone)-4:]
	user.Role = entity.RolePatient
	user.PatientProfile = &entity.PatientProfile{HealthID: newHealthID()}
	return user
}

// newHealthID returns "NBH" followed by nine uppercase alphanumerics.
func newHealthID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "NBH" + strings.ToUpper(raw[:9])
}

func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}

func toUserResponse(user *entity.User) *UserResponse {
	return &UserResponse{
		ID:              user.ID,
		Name:            user.Name,
		Email:           user.Email,
		Phone:           user.Phone,
		Role:            user.Role,
		Avatar:          user.Avatar,
		IsVerified:      user.IsVerified,
		CreatedAt:       utils.FormatEpoch(user.CreatedAt),
		PatientProfile:  user.PatientProfile,
		DoctorProfile:   user.DoctorProfile,
		PharmacyProfile: user.PharmacyProfile,
	}
}
