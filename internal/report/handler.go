package report

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"TaskFlow/internal/auth"
	"TaskFlow/internal/request"
)

type ReportHandler struct {
	service *ReportService
}

func NewReportHandler(service *ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

func (h *ReportHandler) Dashboard(c echo.Context) error {
	claims, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	summary, err := h.service.Dashboard(c.Request().Context(), claims.UserID())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *ReportHandler) List(c echo.Context) error {
	f := Filter{Type: c.QueryParam("type")}
	project, err := request.QueryID(c, "project")
	if err != nil {
		return err
	}
	f.Project = project
	lo, err := request.ListOptions(c, SortFields...)
	if err != nil {
		return err
	}
	page, err := h.service.ListReports(c.Request().Context(), f, lo)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (h *ReportHandler) Get(c echo.Context) error {
	id, err := request.PathID(c)
	if err != nil {
		return err
	}
	r, err := h.service.GetReport(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

func (h *ReportHandler) Create(c echo.Context) error {
	claims, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req ReportRequest
	if err := request.Bind(c, &req); err != nil {
		return err
	}
	r, err := h.service.CreateReport(c.Request().Context(), claims, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *ReportHandler) Generate(c echo.Context) error {
	claims, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req GenerateRequest
	if err := request.Bind(c, &req); err != nil {
		return err
	}
	r, err := h.service.Generate(c.Request().Context(), claims, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *ReportHandler) Update(c echo.Context) error {
	id, err := request.PathID(c)
	if err != nil {
		return err
	}
	var req ReportRequest
	if err := request.Bind(c, &req); err != nil {
		return err
	}
	r, err := h.service.UpdateReport(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

func (h *ReportHandler) Delete(c echo.Context) error {
	id, err := request.PathID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteReport(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
