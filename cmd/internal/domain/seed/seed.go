// Package seed loads the demo clinic: one patient, one doctor, one pharmacy,
// an admin, a small medicine catalog and that pharmacy's stock.
package seed

import (
	"fmt"
	"nabha/cmd/internal/domain/entity"
	"nabha/cmd/internal/service"
	"time"

	"github.com/labstack/gommon/log"
)

const (
	PatientID  = "demo-patient"
	DoctorID   = "demo-doctor"
	PharmacyID = "demo-pharmacy"
	AdminID    = "demo-admin"
)

type UserStore interface {
	ExistsByPhone(phone string) (bool, error)
	Create(user *entity.User) error
}

type MedicineStore interface {
	FindByID(id string) (*entity.Medicine, error)
	Create(medicine *entity.Medicine) error
}

type StockStore interface {
	FindByID(id string) (*entity.PharmacyStock, error)
	Create(stock *entity.PharmacyStock) error
}

type Stores struct {
	Users     UserStore
	Medicines MedicineStore
	Stock     StockStore
}

// Demo inserts whatever part of the demo data is missing. Running it twice
// leaves the stores unchanged.
func Demo(stores Stores, doctorPhone string, now time.Time) error {
	millis := now.UTC().UnixMilli()

	for _, user := range demoUsers(doctorPhone, millis) {
		found, err := stores.Users.ExistsByPhone(user.Phone)
		if err != nil {
			return fmt.Errorf("check user %s: %w", user.ID, err)
		}
		if found {
			continue
		}
		if err := stores.Users.Create(user); err != nil {
			return fmt.Errorf("create user %s: %w", user.ID, err)
		}
	}

	for _, medicine := range demoMedicines() {
		existing, err := stores.Medicines.FindByID(medicine.ID)
		if err != nil {
			return fmt.Errorf("check medicine %s: %w", medicine.ID, err)
		}
		if existing != nil {
			continue
		}
		if err := stores.Medicines.Create(medicine); err != nil {
			return fmt.Errorf("create medicine %s: %w", medicine.ID, err)
		}
	}

	for _, row := range demoStock(now, millis) {
		existing, err := stores.Stock.FindByID(row.ID)
		if err != nil {
			return fmt.Errorf("check stock %s: %w", row.ID, err)
		}
		if existing != nil {
			continue
		}
		if err := stores.Stock.Create(row); err != nil {
			return fmt.Errorf("create stock %s: %w", row.ID, err)
		}
	}

	log.Infof("demo data ready (patient %s, doctor %s, pharmacy %s)", PatientID, DoctorID, PharmacyID)
	return nil
}

// Notifications gives the demo patient a starting feed. The last one is
// already read.
func Notifications(feed *service.NotificationFeed) {
	feed.AddNotification(service.NotificationData{
		UserID:  PatientID,
		Title:   "Health Record Updated",
		Message: "New consultation record added to your profile",
		Type:    entity.NotificationHealth,
	})
	read := feed.List(PatientID).Notifications[0]
	_ = feed.MarkNotificationRead(PatientID, read.ID)

	feed.AddNotification(service.NotificationData{
		UserID:  PatientID,
		Title:   "Medicine Available",
		Message: "Paracetamol is now available at nearby pharmacy",
		Type:    entity.NotificationMedicine,
	})
	feed.AddNotification(service.NotificationData{
		UserID:  PatientID,
		Title:   "Appointment Reminder",
		Message: "Your appointment with Dr. Preet Singh is in 1 hour",
		Type:    entity.NotificationAppointment,
	})
}

func demoUsers(doctorPhone string, now int64) []*entity.User {
	email := "amarjit@example.com"
	return []*entity.User{
		{
			ID:         PatientID,
			Name:       "Amarjit Kaur",
			Email:      &email,
			Phone:      "+919876543211",
			Role:       entity.RolePatient,
			IsVerified: true,
			CreatedAt:  now,
			UpdatedAt:  now,
			PatientProfile: &entity.PatientProfile{
				DateOfBirth:       "1985-06-15",
				Gender:            "female",
				Address:           "Village Nabha, Punjab",
				EmergencyContact:  "+919876543212",
				BloodGroup:        "B+",
				Allergies:         []string{"Penicillin"},
				ChronicConditions: []string{"Diabetes"},
				HealthID:          "NBH2024001234",
			},
		},
		{
			ID:         DoctorID,
			Name:       "Dr. Preet Singh",
			Phone:      doctorPhone,
			Role:       entity.RoleDoctor,
			IsVerified: true,
			CreatedAt:  now,
			UpdatedAt:  now,
			DoctorProfile: &entity.DoctorProfile{
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
			},
		},
		{
			ID:         PharmacyID,
			Name:       "Nabha Medical Store",
			Phone:      "+919876543213",
			Role:       entity.RolePharmacy,
			IsVerified: true,
			CreatedAt:  now,
			UpdatedAt:  now,
			PharmacyProfile: &entity.PharmacyProfile{
				Name:           "Nabha Medical Store",
				Address:        "Main Bazaar, Nabha, Punjab",
				LicenseNumber:  "PB-NAB-2231",
				ContactNumber:  "+919876543213",
				OperatingHours: entity.OperatingHours{Open: "08:00", Close: "21:00"},
			},
		},
		{
			ID:         AdminID,
			Name:       "Civil Hospital Admin",
			Phone:      "+919876543219",
			Role:       entity.RoleAdmin,
			IsVerified: true,
			CreatedAt:  now,
			UpdatedAt:  now,
		},
	}
}

func demoMedicines() []*entity.Medicine {
	return []*entity.Medicine{
		{ID: "med-paracetamol", Name: "Paracetamol 500mg", Dosage: "500mg", Frequency: "Every 6 hours", Duration: "3 days", Instructions: "Take after food", Price: 25},
		{ID: "med-amoxicillin", Name: "Amoxicillin 250mg", Dosage: "250mg", Frequency: "Three times daily", Duration: "5 days", Instructions: "Complete the course", Price: 85},
		{ID: "med-metformin", Name: "Metformin 500mg", Dosage: "500mg", Frequency: "Twice daily", Duration: "30 days", Instructions: "Take with meals", Price: 45},
		{ID: "med-ors", Name: "ORS Sachet", Dosage: "1 sachet", Frequency: "After each loose stool", Duration: "2 days", Instructions: "Dissolve in 1 litre of clean water", Price: 20},
		{ID: "med-cetirizine", Name: "Cetirizine 10mg", Dosage: "10mg", Frequency: "Once daily", Duration: "5 days", Instructions: "May cause drowsiness", Price: 30},
	}
}

func demoStock(now time.Time, millis int64) []*entity.PharmacyStock {
	expiry := now.UTC().AddDate(1, 0, 0).Format(time.DateOnly)
	row := func(id, medicineID, name string, current, min int, price float64, batch string) *entity.PharmacyStock {
		return &entity.PharmacyStock{
			ID:           id,
			PharmacyID:   PharmacyID,
			MedicineID:   medicineID,
			MedicineName: name,
			CurrentStock: current,
			MinStock:     min,
			Price:        price,
			ExpiryDate:   expiry,
			BatchNumber:  batch,
			UpdatedAt:    millis,
		}
	}

	return []*entity.PharmacyStock{
		row("stock-paracetamol", "med-paracetamol", "Paracetamol 500mg", 150, 50, 25, "PCM-2401"),
		row("stock-amoxicillin", "med-amoxicillin", "Amoxicillin 250mg", 30, 40, 85, "AMX-2402"),
		row("stock-metformin", "med-metformin", "Metformin 500mg", 0, 25, 45, "MET-2403"),
		row("stock-ors", "med-ors", "ORS Sachet", 200, 60, 20, "ORS-2404"),
		row("stock-cetirizine", "med-cetirizine", "Cetirizine 10mg", 12, 15, 30, "CTZ-2405"),
	}
}
