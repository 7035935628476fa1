package routes

import (
	"nabha/cmd/internal/domain/entity"
	"nabha/cmd/internal/service"
	"nabha/cmd/internal/utils"
	"nabha/cmd/internal/utils/apierror"
	"net/http"

	"github.com/labstack/echo/v4"
)

type StockService interface {
	ListStock(filter, search string) ([]*service.StockResponse, apierror.ErrorResponse)
	ListMedicines() ([]*entity.Medicine, apierror.ErrorResponse)
	AddStock(req *service.StockRequest, subId string) (*service.StockResponse, apierror.ErrorResponse)
	UpdateStock(medicineID string, req *service.StockLevelRequest, subId string) (*service.StockUpdateResponse, apierror.ErrorResponse)
	SetStockRow(id string, req *service.StockLevelRequest, subId string) (*service.StockResponse, apierror.ErrorResponse)
	ReserveMedicine(id string, req *service.ReserveRequest, subId string) (*service.ReserveResponse, apierror.ErrorResponse)
}

type DefaultStockRoute struct {
	StockService StockService
}

func NewStockDefault(stockService StockService) *DefaultStockRoute {
	return &DefaultStockRoute{StockService: stockService}
}

func (s *DefaultStockRoute) GetMedicines(c echo.Context) error {
	medicines, apierr := s.StockService.ListMedicines()
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"medicines": medicines}
	return c.JSON(http.StatusOK, &resp)
}

func (s *DefaultStockRoute) GetStock(c echo.Context) error {
	rows, apierr := s.StockService.ListStock(c.QueryParam("filter"), c.QueryParam("q"))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"stock": rows}
	return c.JSON(http.StatusOK, &resp)
}

func (s *DefaultStockRoute) CreateStock(c echo.Context) error {
	var req service.StockRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, apierror.MalformedBodyError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	row, apierr := s.StockService.AddStock(&req, data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, row)
}

func (s *DefaultStockRoute) UpdateMedicineStock(c echo.Context) error {
	var req service.StockLevelRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, apierror.MalformedBodyError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	resp, apierr := s.StockService.UpdateStock(c.Param("medicineId"), &req, data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *DefaultStockRoute) UpdateStockRow(c echo.Context) error {
	var req service.StockLevelRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, apierror.MalformedBodyError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	row, apierr := s.StockService.SetStockRow(c.Param("id"), &req, data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, row)
}

func (s *DefaultStockRoute) ReserveMedicine(c echo.Context) error {
	var req service.ReserveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, apierror.MalformedBodyError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	resp, apierr := s.StockService.ReserveMedicine(c.Param("id"), &req, data.Sub)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}
