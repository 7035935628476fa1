package routes

import (
	"nabha/cmd/internal/service"
	"nabha/cmd/internal/utils"
	"nabha/cmd/internal/utils/apierror"
	"net/http"

	"github.com/labstack/echo/v4"
)

type HealthRecordService interface {
	AddHealthRecord(req *service.HealthRecordRequest, subId string) (*service.HealthRecordResponse, apierror.ErrorResponse)
	GetHealthRecords(subId string) ([]*service.HealthRecordResponse, apierror.ErrorResponse)
	VerifyLedger(subId string) (*service.LedgerResponse, apierror.ErrorResponse)
}

type DefaultHealthRecordRoute struct {
	HealthRecordService HealthRecordService
}

func NewHealthRecordDefault(recordService HealthRecordService) *DefaultHealthRecordRoute {
	return &DefaultHealthRecordRoute{HealthRecordService: recordService}
}

func (h *DefaultHealthRecordRoute) GetHealthRecords(c echo.Context) error {
	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	records, apierr := h.HealthRecordService.GetHealthRecords(data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"health_records": records}
	return c.JSON(http.StatusOK, &resp)
}

func (h *DefaultHealthRecordRoute) CreateHealthRecord(c echo.Context) error {
	var req service.HealthRecordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, apierror.MalformedBodyError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	record, apierr := h.HealthRecordService.AddHealthRecord(&req, data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, record)
}

func (h *DefaultHealthRecordRoute) VerifyLedger(c echo.Context) error {
	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	report, apierr := h.HealthRecordService.VerifyLedger(data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, report)
}
