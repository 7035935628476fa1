package routes

import (
	"nabha/cmd/internal/service"
	"nabha/cmd/internal/utils"
	"nabha/cmd/internal/utils/apierror"
	"net/http"

	"github.com/labstack/echo/v4"
)

type AppointmentService interface {
	GetAppointments(subId string) ([]*service.AppointmentResponse, apierror.ErrorResponse)
	GetAppointment(id, subId string) (*service.AppointmentResponse, apierror.ErrorResponse)
	AddAppointment(req *service.AppointmentRequest, subId string) (*service.AppointmentResponse, apierror.ErrorResponse)
	UpdateAppointmentStatus(id string, req *service.StatusRequest, subId string) (*service.AppointmentResponse, apierror.ErrorResponse)
	AttachPrescription(id string, req *service.PrescriptionRequest, subId string) (*service.AppointmentResponse, apierror.ErrorResponse)
}

type DefaultAppointmentRoute struct {
	AppointmentService AppointmentService
}

func NewAppointmentDefault(apptService AppointmentService) *DefaultAppointmentRoute {
	return &DefaultAppointmentRoute{AppointmentService: apptService}
}

func (a *DefaultAppointmentRoute) GetAppointments(c echo.Context) error {
	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	appts, apierr := a.AppointmentService.GetAppointments(data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"appointments": appts}
	return c.JSON(http.StatusOK, &resp)
}

func (a *DefaultAppointmentRoute) GetAppointment(c echo.Context) error {
	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	appt, apierr := a.AppointmentService.GetAppointment(c.Param("id"), data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, appt)
}

func (a *DefaultAppointmentRoute) CreateAppointment(c echo.Context) error {
	var req service.AppointmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, apierror.MalformedBodyError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	appt, apierr := a.AppointmentService.AddAppointment(&req, data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, appt)
}

func (a *DefaultAppointmentRoute) UpdateStatus(c echo.Context) error {
	var req service.StatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, apierror.MalformedBodyError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	appt, apierr := a.AppointmentService.UpdateAppointmentStatus(c.Param("id"), &req, data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, appt)
}

func (a *DefaultAppointmentRoute) AttachPrescription(c echo.Context) error {
	var req service.PrescriptionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, apierror.MalformedBodyError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	appt, apierr := a.AppointmentService.AttachPrescription(c.Param("id"), &req, data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, appt)
}
