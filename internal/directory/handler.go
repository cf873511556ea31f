package directory

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"TaskFlow/internal/request"
)

type DirectoryHandler struct {
	service *DirectoryService
}

func NewDirectoryHandler(service *DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{service: service}
}

func (h *DirectoryHandler) ListDepartments(c echo.Context) error {
	lo, err := request.ListOptions(c, DepartmentSortFields...)
	if err != nil {
		return err
	}
	page, err := h.service.ListDepartments(c.Request().Context(), c.QueryParam("q"), lo)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (h *DirectoryHandler) GetDepartment(c echo.Context) error {
	id, err := request.PathID(c)
	if err != nil {
		return err
	}
	d, err := h.service.GetDepartment(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

func (h *DirectoryHandler) CreateDepartment(c echo.Context) error {
	var req DepartmentRequest
	if err := request.Bind(c, &req); err != nil {
		return err
	}
	d, err := h.service.CreateDepartment(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *DirectoryHandler) UpdateDepartment(c echo.Context) error {
	id, err := request.PathID(c)
	if err != nil {
		return err
	}
	var req DepartmentRequest
	if err := request.Bind(c, &req); err != nil {
		return err
	}
	d, err := h.service.UpdateDepartment(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

func (h *DirectoryHandler) DeleteDepartment(c echo.Context) error {
	id, err := request.PathID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteDepartment(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *DirectoryHandler) ListClients(c echo.Context) error {
	f := ClientFilter{Status: c.QueryParam("status"), Query: c.QueryParam("q")}
	lo, err := request.ListOptions(c, ClientSortFields...)
	if err != nil {
		return err
	}
	page, err := h.service.ListClients(c.Request().Context(), f, lo)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (h *DirectoryHandler) GetClient(c echo.Context) error {
	id, err := request.PathID(c)
	if err != nil {
		return err
	}
	detail, err := h.service.GetClient(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *DirectoryHandler) CreateClient(c echo.Context) error {
	var req ClientRequest
	if err := request.Bind(c, &req); err != nil {
		return err
	}
	client, err := h.service.CreateClient(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, client)
}

func (h *DirectoryHandler) UpdateClient(c echo.Context) error {
	id, err := request.PathID(c)
	if err != nil {
		return err
	}
	var req ClientRequest
	if err := request.Bind(c, &req); err != nil {
		return err
	}
	client, err := h.service.UpdateClient(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, client)
}

func (h *DirectoryHandler) DeleteClient(c echo.Context) error {
	id, err := request.PathID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteClient(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *DirectoryHandler) ListContacts(c echo.Context) error {
	client, err := request.QueryID(c, "client")
	if err != nil {
		return err
	}
	f := ContactFilter{Client: client, Query: c.QueryParam("q")}
	lo, err := request.ListOptions(c, ContactSortFields...)
	if err != nil {
		return err
	}
	page, err := h.service.ListContacts(c.Request().Context(), f, lo)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (h *DirectoryHandler) GetContact(c echo.Context) error {
	id, err := request.PathID(c)
	if err != nil {
		return err
	}
	contact, err := h.service.GetContact(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contact)
}

func (h *DirectoryHandler) CreateContact(c echo.Context) error {
	var req ContactRequest
	if err := request.Bind(c, &req); err != nil {
		return err
	}
	contact, err := h.service.CreateContact(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, contact)
}

func (h *DirectoryHandler) UpdateContact(c echo.Context) error {
	id, err := request.PathID(c)
	if err != nil {
		return err
	}
	var req ContactRequest
	if err := request.Bind(c, &req); err != nil {
		return err
	}
	contact, err := h.service.UpdateContact(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contact)
}

func (h *DirectoryHandler) DeleteContact(c echo.Context) error {
	id, err := request.PathID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteContact(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
