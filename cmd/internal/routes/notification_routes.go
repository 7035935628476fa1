package routes

import (
	"nabha/cmd/internal/service"
	"nabha/cmd/internal/utils"
	"nabha/cmd/internal/utils/apierror"
	"net/http"

	"github.com/labstack/echo/v4"
)

type NotificationFeed interface {
	List(userID string) *service.NotificationsResponse
	MarkNotificationRead(userID, id string) apierror.ErrorResponse
	MarkAllNotificationsRead(userID string) int
}

type DefaultNotificationRoute struct {
	Feed NotificationFeed
}

func NewNotificationDefault(feed NotificationFeed) *DefaultNotificationRoute {
	return &DefaultNotificationRoute{Feed: feed}
}

func (n *DefaultNotificationRoute) GetNotifications(c echo.Context) error {
	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}
	return c.JSON(http.StatusOK, n.Feed.List(data.Sub))
}

func (n *DefaultNotificationRoute) MarkRead(c echo.Context) error {
	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	apierr := n.Feed.MarkNotificationRead(data.Sub, c.Param("id"))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusNoContent)
}

func (n *DefaultNotificationRoute) MarkAllRead(c echo.Context) error {
	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	changed := n.Feed.MarkAllNotificationsRead(data.Sub)
	resp := echo.Map{"marked": changed}
	return c.JSON(http.StatusOK, &resp)
}
