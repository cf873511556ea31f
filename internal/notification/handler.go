package notification

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"TaskFlow/internal/auth"
	"TaskFlow/internal/request"
)

// NotificationHandler serves the caller's own notifications.
type NotificationHandler struct {
	service *NotificationService
}

func NewNotificationHandler(service *NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

func (h *NotificationHandler) List(c echo.Context) error {
	claims, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	unread, err := request.QueryBool(c, "unread")
	if err != nil {
		return err
	}
	lo, err := request.ListOptions(c, SortFields...)
	if err != nil {
		return err
	}
	page, err := h.service.List(c.Request().Context(), claims.UserID(), unread, lo)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	claims, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	n, err := h.service.UnreadCount(c.Request().Context(), claims.UserID())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, UnreadCount{Count: n})
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	claims, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := request.PathID(c)
	if err != nil {
		return err
	}
	if err := h.service.MarkRead(c.Request().Context(), claims.UserID(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	claims, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	n, err := h.service.MarkAllRead(c.Request().Context(), claims.UserID())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": n})
}

func (h *NotificationHandler) Delete(c echo.Context) error {
	claims, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := request.PathID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), claims.UserID(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
