package service

import (
	"nabha/cmd/internal/domain/entity"
	"nabha/cmd/internal/utils/apierror"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func newStockService(rows ...*entity.PharmacyStock) (*DefaultStockService, *fakeStockRepo, *NotificationFeed) {
	stock := newFakeStockRepo(rows...)
	feed := NewNotificationFeed(nil)
	medicines := newFakeMedicineRepo(
		&entity.Medicine{ID: "med-1", Name: "Paracetamol", Price: 25},
		&entity.Medicine{ID: "med-2", Name: "Amoxicillin", Price: 120},
	)
	svc := NewStockService(stock, medicines, newFakeUserRepo(cloneUsers()...), feed, newValidate())
	return svc, stock, feed
}

func paracetamolRow(current, min int) *entity.PharmacyStock {
	return &entity.PharmacyStock{
		ID:           "stock-1",
		PharmacyID:   chemist.ID,
		MedicineID:   "med-1",
		MedicineName: "Paracetamol",
		CurrentStock: current,
		MinStock:     min,
		Price:        25,
	}
}

func TestReserveMedicine_Example(t *testing.T) {
	svc, stock, feed := newStockService(paracetamolRow(5, 2))

	resp, apierr := svc.ReserveMedicine("stock-1", &ReserveRequest{Quantity: 3}, patient.ID)
	require.Nil(t, apierr)
	assert.True(t, resp.Reserved)
	assert.Equal(t, 2, resp.Stock.CurrentStock)
	assert.Equal(t, entity.StockLowStock, resp.Stock.Availability)

	resp, apierr = svc.ReserveMedicine("stock-1", &ReserveRequest{Quantity: 3}, patient.ID)
	require.Nil(t, apierr)
	assert.False(t, resp.Reserved)
	assert.Nil(t, resp.Stock)

	row, _ := stock.FindByID("stock-1")
	assert.Equal(t, 2, row.CurrentStock)

	mine := feed.List(patient.ID)
	require.Len(t, mine.Notifications, 1)
	assert.Equal(t, "Medicine Reserved", mine.Notifications[0].Title)
	assert.Equal(t, "3 units of Paracetamol reserved successfully", mine.Notifications[0].Message)

	alerts := feed.List(chemist.ID)
	require.Len(t, alerts.Notifications, 1)
	assert.Equal(t, "Low Stock Alert", alerts.Notifications[0].Title)
}

func TestReserveMedicine_MissingRowAndBadQuantity(t *testing.T) {
	svc, _, feed := newStockService(paracetamolRow(5, 2))

	resp, apierr := svc.ReserveMedicine("missing", &ReserveRequest{Quantity: 1}, patient.ID)
	require.Nil(t, apierr)
	assert.False(t, resp.Reserved)

	_, apierr = svc.ReserveMedicine("stock-1", &ReserveRequest{Quantity: 0}, patient.ID)
	assert.Equal(t, apierror.InvalidQuantityError, apierr)

	assert.Zero(t, feed.UnreadCount(patient.ID))
}

func TestReserveMedicine_ConcurrentCallersNeverOversell(t *testing.T) {
	svc, stock, _ := newStockService(paracetamolRow(10, 0))

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		won int
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, apierr := svc.ReserveMedicine("stock-1", &ReserveRequest{Quantity: 1}, patient.ID)
			if apierr == nil && resp.Reserved {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	row, _ := stock.FindByID("stock-1")
	assert.Equal(t, 10, won)
	assert.Equal(t, 0, row.CurrentStock)
}

func TestUpdateStock_ScopedToCallerPharmacy(t *testing.T) {
	rivalRow := paracetamolRow(9, 2)
	rivalRow.ID = "stock-2"
	rivalRow.PharmacyID = rival.ID
	svc, stock, _ := newStockService(paracetamolRow(5, 2), rivalRow)

	resp, apierr := svc.UpdateStock("med-1", &StockLevelRequest{CurrentStock: intPtr(40)}, chemist.ID)
	require.Nil(t, apierr)
	assert.Equal(t, int64(1), resp.RowsUpdated)

	mine, _ := stock.FindByID("stock-1")
	theirs, _ := stock.FindByID("stock-2")
	assert.Equal(t, 40, mine.CurrentStock)
	assert.Equal(t, 9, theirs.CurrentStock)

	resp, apierr = svc.UpdateStock("med-1", &StockLevelRequest{CurrentStock: intPtr(0)}, admin.ID)
	require.Nil(t, apierr)
	assert.Equal(t, int64(2), resp.RowsUpdated)
}

func TestUpdateStock_Rejections(t *testing.T) {
	svc, _, _ := newStockService(paracetamolRow(5, 2))

	_, apierr := svc.UpdateStock("med-1", &StockLevelRequest{CurrentStock: intPtr(-1)}, chemist.ID)
	assert.Equal(t, apierror.NegativeStockError, apierr)

	_, apierr = svc.UpdateStock("med-1", &StockLevelRequest{}, chemist.ID)
	require.NotNil(t, apierr)
	assert.Equal(t, 400, apierr.Code())

	_, apierr = svc.UpdateStock("med-9", &StockLevelRequest{CurrentStock: intPtr(3)}, chemist.ID)
	assert.Equal(t, apierror.NotFoundError, apierr)

	_, apierr = svc.UpdateStock("med-1", &StockLevelRequest{CurrentStock: intPtr(3)}, patient.ID)
	assert.Equal(t, apierror.ForbiddenError, apierr)
}

func TestSetStockRow(t *testing.T) {
	svc, _, _ := newStockService(paracetamolRow(5, 2))

	row, apierr := svc.SetStockRow("stock-1", &StockLevelRequest{CurrentStock: intPtr(0)}, chemist.ID)
	require.Nil(t, apierr)
	assert.Equal(t, entity.StockOutOfStock, row.Availability)

	_, apierr = svc.SetStockRow("stock-1", &StockLevelRequest{CurrentStock: intPtr(3)}, rival.ID)
	assert.Equal(t, apierror.NotFoundError, apierr)
}

func TestAddStockAndList(t *testing.T) {
	svc, _, _ := newStockService(paracetamolRow(1, 2))

	row, apierr := svc.AddStock(&StockRequest{MedicineID: "med-2", CurrentStock: 50, MinStock: 10, BatchNumber: "AMX-7"}, chemist.ID)
	require.Nil(t, apierr)
	assert.Equal(t, chemist.ID, row.PharmacyID)
	assert.Equal(t, "Amoxicillin", row.MedicineName)
	assert.InDelta(t, 120.0, row.Price, 0.001)

	_, apierr = svc.AddStock(&StockRequest{MedicineID: "med-404"}, chemist.ID)
	assert.Equal(t, apierror.UnknownMedicineError, apierr)

	_, apierr = svc.AddStock(&StockRequest{MedicineID: "med-2"}, admin.ID)
	require.NotNil(t, apierr)
	assert.Equal(t, 400, apierr.Code())

	all, apierr := svc.ListStock("", "")
	require.Nil(t, apierr)
	assert.Len(t, all, 2)

	low, apierr := svc.ListStock(entity.StockFilterLowStock, "")
	require.Nil(t, apierr)
	require.Len(t, low, 1)
	assert.Equal(t, "Paracetamol", low[0].MedicineName)

	_, apierr = svc.ListStock("expired", "")
	require.NotNil(t, apierr)
	assert.Equal(t, 400, apierr.Code())

	found, apierr := svc.ListStock(entity.StockFilterAll, " amoxi ")
	require.Nil(t, apierr)
	require.Len(t, found, 1)
	assert.Equal(t, "Amoxicillin", found[0].MedicineName)

	medicines, apierr := svc.ListMedicines()
	require.Nil(t, apierr)
	assert.Len(t, medicines, 2)
}
