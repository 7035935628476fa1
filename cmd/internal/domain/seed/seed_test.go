package seed_test

import (
	"nabha/cmd/internal/domain/entity"
	"nabha/cmd/internal/domain/seed"
	"nabha/cmd/internal/domain/sqlite"
	"nabha/cmd/internal/domain/sqlite/repository"
	"nabha/cmd/internal/service"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemo_Idempotent(t *testing.T) {
	db, err := sqlite.Init("file:seed_demo?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	users := repository.NewUserRepository(db)
	medicines := repository.NewMedicineRepository(db)
	stock := repository.NewStockRepository(db)
	stores := seed.Stores{Users: users, Medicines: medicines, Stock: stock}
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, seed.Demo(stores, "+919876543210", now))
	require.NoError(t, seed.Demo(stores, "+919876543210", now))

	doctors, err := users.FindByRole(entity.RoleDoctor)
	require.NoError(t, err)
	require.Len(t, doctors, 1)
	assert.Equal(t, seed.DoctorID, doctors[0].ID)
	assert.Equal(t, "PMC12345", doctors[0].DoctorProfile.LicenseNumber)

	patient, err := users.FindByID(seed.PatientID)
	require.NoError(t, err)
	require.NotNil(t, patient)
	assert.Equal(t, []string{"Penicillin"}, patient.PatientProfile.Allergies)

	catalog, err := medicines.FindAll()
	require.NoError(t, err)
	assert.Len(t, catalog, 5)

	rows, err := stock.FindAll(entity.StockFilterAll)
	require.NoError(t, err)
	assert.Len(t, rows, 5)

	out, err := stock.FindAll(entity.StockFilterOutOfStock)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "stock-metformin", out[0].ID)
	assert.Equal(t, "2026-03-01", out[0].ExpiryDate)
}

func TestNotifications(t *testing.T) {
	feed := service.NewNotificationFeed(nil)
	seed.Notifications(feed)

	list := feed.List(seed.PatientID)
	require.Len(t, list.Notifications, 3)
	assert.Equal(t, "Appointment Reminder", list.Notifications[0].Title)
	assert.Equal(t, "Health Record Updated", list.Notifications[2].Title)
	assert.True(t, list.Notifications[2].IsRead)
	assert.Equal(t, 2, list.UnreadCount)
}
