package entity

type Medicine struct {
	ID           string  `gorm:"primaryKey" json:"id"`
	Name         string  `gorm:"not null" json:"name"`
	Dosage       string  `json:"dosage"`
	Frequency    string  `json:"frequency"`
	Duration     string  `json:"duration"`
	Instructions string  `json:"instructions"`
	Price        float64 `gorm:"not null" json:"price"`
}
