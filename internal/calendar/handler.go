package calendar

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"TaskFlow/internal/auth"
	"TaskFlow/internal/request"
)

const upcomingLimit = 50

type CalendarHandler struct {
	service *CalendarService
}

func NewCalendarHandler(service *CalendarService) *CalendarHandler {
	return &CalendarHandler{service: service}
}

func meetingFilter(c echo.Context) (MeetingFilter, error) {
	var (
		f   MeetingFilter
		err error
	)
	f.Status = c.QueryParam("status")
	if f.From, err = request.QueryTime(c, "from"); err != nil {
		return f, err
	}
	if f.To, err = request.QueryTime(c, "to"); err != nil {
		return f, err
	}
	if f.Project, err = request.QueryID(c, "project"); err != nil {
		return f, err
	}
	f.Attendee, err = request.QueryID(c, "attendee")
	return f, err
}

func eventFilter(c echo.Context) (EventFilter, error) {
	var (
		f   EventFilter
		err error
	)
	f.Type = c.QueryParam("type")
	if f.From, err = request.QueryTime(c, "from"); err != nil {
		return f, err
	}
	if f.To, err = request.QueryTime(c, "to"); err != nil {
		return f, err
	}
	f.Project, err = request.QueryID(c, "project")
	return f, err
}

func (h *CalendarHandler) ListMeetings(c echo.Context) error {
	f, err := meetingFilter(c)
	if err != nil {
		return err
	}
	lo, err := request.ListOptions(c, MeetingSortFields...)
	if err != nil {
		return err
	}
	page, err := h.service.ListMeetings(c.Request().Context(), f, lo)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// UpcomingMeetings lists the caller's scheduled meetings in the next ?days
// days.
func (h *CalendarHandler) UpcomingMeetings(c echo.Context) error {
	claims, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	days := request.QueryInt(c, "days", DefaultUpcomingDays)
	meetings, err := h.service.Upcoming(c.Request().Context(), claims.UserID(), days, upcomingLimit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, meetings)
}

func (h *CalendarHandler) GetMeeting(c echo.Context) error {
	id, err := request.PathID(c)
	if err != nil {
		return err
	}
	m, err := h.service.GetMeeting(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

func (h *CalendarHandler) CreateMeeting(c echo.Context) error {
	claims, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req MeetingRequest
	if err := request.Bind(c, &req); err != nil {
		return err
	}
	m, err := h.service.CreateMeeting(c.Request().Context(), claims, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *CalendarHandler) UpdateMeeting(c echo.Context) error {
	claims, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := request.PathID(c)
	if err != nil {
		return err
	}
	var req MeetingRequest
	if err := request.Bind(c, &req); err != nil {
		return err
	}
	m, err := h.service.UpdateMeeting(c.Request().Context(), claims, id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

func (h *CalendarHandler) DeleteMeeting(c echo.Context) error {
	id, err := request.PathID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteMeeting(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CalendarHandler) ListEvents(c echo.Context) error {
	f, err := eventFilter(c)
	if err != nil {
		return err
	}
	lo, err := request.ListOptions(c, EventSortFields...)
	if err != nil {
		return err
	}
	page, err := h.service.ListEvents(c.Request().Context(), f, lo)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (h *CalendarHandler) GetEvent(c echo.Context) error {
	id, err := request.PathID(c)
	if err != nil {
		return err
	}
	e, err := h.service.GetEvent(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, e)
}

func (h *CalendarHandler) CreateEvent(c echo.Context) error {
	claims, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req EventRequest
	if err := request.Bind(c, &req); err != nil {
		return err
	}
	e, err := h.service.CreateEvent(c.Request().Context(), claims, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *CalendarHandler) UpdateEvent(c echo.Context) error {
	id, err := request.PathID(c)
	if err != nil {
		return err
	}
	var req EventRequest
	if err := request.Bind(c, &req); err != nil {
		return err
	}
	e, err := h.service.UpdateEvent(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, e)
}

func (h *CalendarHandler) DeleteEvent(c echo.Context) error {
	id, err := request.PathID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteEvent(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
