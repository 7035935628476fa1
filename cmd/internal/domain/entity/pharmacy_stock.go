package entity

const (
	StockInStock    = "in-stock"
	StockLowStock   = "low-stock"
	StockOutOfStock = "out-of-stock"
)

const (
	StockFilterAll        = "all"
	StockFilterInStock    = "inStock"
	StockFilterLowStock   = "lowStock"
	StockFilterOutOfStock = "outOfStock"
)

type PharmacyStock struct {
	ID           string  `gorm:"primaryKey"`
	PharmacyID   string  `gorm:"not null;index"` // References: users(id)
	MedicineID   string  `gorm:"not null;index"` // References: medicines(id)
	MedicineName string  `gorm:"not null"`
	CurrentStock int     `gorm:"not null;check:current_stock >= 0"`
	MinStock     int     `gorm:"not null"`
	Price        float64 `gorm:"not null"`
	ExpiryDate   string
	BatchNumber  string
	UpdatedAt    int64 `gorm:"not null;autoUpdateTime:milli"`
}

func (s *PharmacyStock) Availability() string {
	switch {
	case s.CurrentStock == 0:
		return StockOutOfStock
	case s.CurrentStock <= s.MinStock:
		return StockLowStock
	default:
		return StockInStock
	}
}
