package entity

const (
	RecordConsultation = "consultation"
	RecordTest         = "test"
	RecordVaccination  = "vaccination"
	RecordSurgery      = "surgery"
)

// HealthRecord rows are never updated once written.
type HealthRecord struct {
	ID            string   `gorm:"primaryKey"`
	PatientID     string   `gorm:"not null;index"`
	DoctorID      string   `gorm:"not null;index"`
	AppointmentID *string  `gorm:"index"`
	Date          string   `gorm:"not null"`
	Type          string   `gorm:"not null"`
	Diagnosis     string   `gorm:"not null"`
	Symptoms      []string `gorm:"serializer:json"`
	Treatment     string
	Notes         string
	Attachments   []string      `gorm:"serializer:json"`
	Prescription  *Prescription `gorm:"serializer:json"`
	CreatedAt     int64         `gorm:"not null;autoCreateTime:milli"`
}
