package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Router struct {
	Users         *DefaultUserRoute
	Appointments  *DefaultAppointmentRoute
	HealthRecords *DefaultHealthRecordRoute
	Stock         *DefaultStockRoute
	Notifications *DefaultNotificationRoute
}

func (r *Router) Mount(e *echo.Echo) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	api := e.Group("/api")

	// Users
	api.POST("/users/otp", r.Users.SendOtp)
	api.POST("/users/login", r.Users.CreateLogin)
	api.POST("/users", r.Users.CreateUser)
	api.GET("/users/:id", r.Users.GetUser)
	api.GET("/doctors", r.Users.GetDoctors)

	// Appointments
	api.GET("/appointments", r.Appointments.GetAppointments)
	api.POST("/appointments", r.Appointments.CreateAppointment)
	api.GET("/appointments/:id", r.Appointments.GetAppointment)
	api.PATCH("/appointments/:id/status", r.Appointments.UpdateStatus)
	api.POST("/appointments/:id/prescription", r.Appointments.AttachPrescription)

	// Health records
	api.GET("/health-records", r.HealthRecords.GetHealthRecords)
	api.POST("/health-records", r.HealthRecords.CreateHealthRecord)
	api.GET("/health-records/ledger", r.HealthRecords.VerifyLedger)

	// Pharmacy
	api.GET("/medicines", r.Stock.GetMedicines)
	api.GET("/stock", r.Stock.GetStock)
	api.POST("/stock", r.Stock.CreateStock)
	api.PUT("/stock/medicine/:medicineId", r.Stock.UpdateMedicineStock)
	api.PUT("/stock/:id", r.Stock.UpdateStockRow)
	api.POST("/stock/:id/reserve", r.Stock.ReserveMedicine)

	// Notifications
	api.GET("/notifications", r.Notifications.GetNotifications)
	api.POST("/notifications/read-all", r.Notifications.MarkAllRead)
	api.POST("/notifications/:id/read", r.Notifications.MarkRead)
}
