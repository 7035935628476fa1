package entity

const (
	PrescriptionActive    = "active"
	PrescriptionDispensed = "dispensed"
	PrescriptionExpired   = "expired"
)

// Prescription is embedded in appointments and health records as a JSON column.
type Prescription struct {
	ID           string     `json:"id"`
	PatientID    string     `json:"patient_id"`
	DoctorID     string     `json:"doctor_id"`
	Medicines    []Medicine `json:"medicines"`
	Instructions string     `json:"instructions"`
	IssuedDate   string     `json:"issued_date"`
	ValidUntil   string     `json:"valid_until"`
	Status       string     `json:"status"`
}
