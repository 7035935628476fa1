package entity

const (
	AppointmentScheduled  = "scheduled"
	AppointmentInProgress = "in-progress"
	AppointmentCompleted  = "completed"
	AppointmentCancelled  = "cancelled"
)

const (
	ConsultationVideo = "video"
	ConsultationVoice = "voice"
	ConsultationChat  = "chat"
)

type Appointment struct {
	ID           string `gorm:"primaryKey"`
	PatientID    string `gorm:"not null;index"` // References: users(id)
	DoctorID     string `gorm:"not null;index"` // References: users(id)
	PatientName  string `gorm:"not null"`
	DoctorName   string `gorm:"not null"`
	Date         string `gorm:"not null"` // YYYY-MM-DD
	Time         string `gorm:"not null"` // HH:MM
	Type         string `gorm:"not null"`
	Status       string `gorm:"not null"`
	Symptoms     string `gorm:"not null"`
	Notes        *string
	Prescription *Prescription `gorm:"serializer:json"`
	CreatedAt    int64         `gorm:"not null;autoCreateTime:milli"`
	UpdatedAt    int64         `gorm:"not null;autoUpdateTime:milli"`
}

// appointmentTransitions lists, for each status, the statuses it may move to.
// Completed and cancelled appointments are terminal.
var appointmentTransitions = map[string][]string{
	AppointmentScheduled:  {AppointmentInProgress, AppointmentCancelled},
	AppointmentInProgress: {AppointmentCompleted, AppointmentCancelled},
	AppointmentCompleted:  {},
	AppointmentCancelled:  {},
}

func (a *Appointment) CanTransitionTo(status string) bool {
	for _, s := range appointmentTransitions[a.Status] {
		if s == status {
			return true
		}
	}
	return false
}
