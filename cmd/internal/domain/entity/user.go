package entity

const (
	RolePatient  = "patient"
	RoleDoctor   = "doctor"
	RolePharmacy = "pharmacy"
	RoleAdmin    = "admin"
)

type User struct {
	ID         string `gorm:"primaryKey"`
	Name       string `gorm:"not null"`
	Email      *string
	Phone      string `gorm:"not null;uniqueIndex"`
	Role       string `gorm:"not null;index"`
	Avatar     *string
	IsVerified bool  `gorm:"not null"`
	CreatedAt  int64 `gorm:"not null;autoCreateTime:milli"`
	UpdatedAt  int64 `gorm:"not null;autoUpdateTime:milli"`

	PatientProfile  *PatientProfile  `gorm:"serializer:json"`
	DoctorProfile   *DoctorProfile   `gorm:"serializer:json"`
	PharmacyProfile *PharmacyProfile `gorm:"serializer:json"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type PatientProfile struct {
	DateOfBirth       string   `json:"date_of_birth"`
	Gender            string   `json:"gender"`
	Address           string   `json:"address"`
	EmergencyContact  string   `json:"emergency_contact"`
	BloodGroup        string   `json:"blood_group,omitempty"`
	Allergies         []string `json:"allergies,omitempty"`
	ChronicConditions []string `json:"chronic_conditions,omitempty"`
	HealthID          string   `json:"health_id"`
}

type Availability struct {
	Day       string `json:"day"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type DoctorProfile struct {
	Specialty       string         `json:"specialty"`
	LicenseNumber   string         `json:"license_number"`
	Experience      int            `json:"experience"`
	Qualifications  []string       `json:"qualifications"`
	ConsultationFee float64        `json:"consultation_fee"`
	Availability    []Availability `json:"availability"`
	Rating          float64        `json:"rating"`
	IsAvailable     bool           `json:"is_available"`
}

type OperatingHours struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

type PharmacyProfile struct {
	Name           string         `json:"name"`
	Address        string         `json:"address"`
	LicenseNumber  string         `json:"license_number"`
	ContactNumber  string         `json:"contact_number"`
	OperatingHours OperatingHours `json:"operating_hours"`
}
