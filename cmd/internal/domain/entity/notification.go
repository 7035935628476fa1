package entity

const (
	NotificationAppointment = "appointment"
	NotificationMedicine    = "medicine"
	NotificationHealth      = "health"
	NotificationSystem      = "system"
)

// Notification lives only in process memory; it has no table.
type Notification struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	IsRead    bool   `json:"is_read"`
	Timestamp string `json:"timestamp"`
}
