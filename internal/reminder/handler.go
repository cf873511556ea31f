package reminder

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type ReminderHandler struct {
	service *ReminderService
}

func NewReminderHandler(service *ReminderService) *ReminderHandler {
	return &ReminderHandler{service: service}
}

// Run triggers both sweeps now and reports their results.
func (h *ReminderHandler) Run(c echo.Context) error {
	results := h.service.Run(c.Request().Context())
	return c.JSON(http.StatusOK, echo.Map{"results": results})
}
