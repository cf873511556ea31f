package project

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"TaskFlow/internal/auth"
	"TaskFlow/internal/request"
)

type ProjectHandler struct {
	service *ProjectService
}

func NewProjectHandler(service *ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

func projectFilter(c echo.Context) (ProjectFilter, error) {
	var (
		f   ProjectFilter
		err error
	)
	f.Status = c.QueryParam("status")
	f.Priority = c.QueryParam("priority")
	f.Query = c.QueryParam("q")
	if f.Client, err = request.QueryID(c, "client"); err != nil {
		return f, err
	}
	if f.Manager, err = request.QueryID(c, "manager"); err != nil {
		return f, err
	}
	if f.Member, err = request.QueryID(c, "member"); err != nil {
		return f, err
	}
	if f.Department, err = request.QueryID(c, "department"); err != nil {
		return f, err
	}
	f.Overdue, err = request.QueryBool(c, "overdue")
	return f, err
}

func (h *ProjectHandler) List(c echo.Context) error {
	f, err := projectFilter(c)
	if err != nil {
		return err
	}
	lo, err := request.ListOptions(c, ProjectSortFields...)
	if err != nil {
		return err
	}
	page, err := h.service.ListProjects(c.Request().Context(), f, lo)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (h *ProjectHandler) Get(c echo.Context) error {
	id, err := request.PathID(c)
	if err != nil {
		return err
	}
	p, err := h.service.GetProject(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProjectHandler) Create(c echo.Context) error {
	claims, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req CreateProjectRequest
	if err := request.Bind(c, &req); err != nil {
		return err
	}
	p, err := h.service.CreateProject(c.Request().Context(), claims, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *ProjectHandler) Update(c echo.Context) error {
	id, err := request.PathID(c)
	if err != nil {
		return err
	}
	var req UpdateProjectRequest
	if err := request.Bind(c, &req); err != nil {
		return err
	}
	p, err := h.service.UpdateProject(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProjectHandler) Delete(c echo.Context) error {
	id, err := request.PathID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteProject(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ProjectHandler) Tasks(c echo.Context) error {
	id, err := request.PathID(c)
	if err != nil {
		return err
	}
	tasks, err := h.service.ProjectTasks(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}

type TaskHandler struct {
	service *ProjectService
}

func NewTaskHandler(service *ProjectService) *TaskHandler {
	return &TaskHandler{service: service}
}

func taskFilter(c echo.Context) (TaskFilter, error) {
	var (
		f   TaskFilter
		err error
	)
	f.Status = c.QueryParam("status")
	f.Priority = c.QueryParam("priority")
	f.Query = c.QueryParam("q")
	if f.Project, err = request.QueryID(c, "project"); err != nil {
		return f, err
	}
	if f.Assignee, err = request.QueryID(c, "assignee"); err != nil {
		return f, err
	}
	f.Overdue, err = request.QueryBool(c, "overdue")
	return f, err
}

func (h *TaskHandler) List(c echo.Context) error {
	f, err := taskFilter(c)
	if err != nil {
		return err
	}
	lo, err := request.ListOptions(c, TaskSortFields...)
	if err != nil {
		return err
	}
	page, err := h.service.ListTasks(c.Request().Context(), f, lo)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (h *TaskHandler) Mine(c echo.Context) error {
	claims, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	f, err := taskFilter(c)
	if err != nil {
		return err
	}
	lo, err := request.ListOptions(c, TaskSortFields...)
	if err != nil {
		return err
	}
	page, err := h.service.MyTasks(c.Request().Context(), claims.UserID(), f, lo)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (h *TaskHandler) Get(c echo.Context) error {
	id, err := request.PathID(c)
	if err != nil {
		return err
	}
	t, err := h.service.GetTask(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

func (h *TaskHandler) Create(c echo.Context) error {
	claims, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req CreateTaskRequest
	if err := request.Bind(c, &req); err != nil {
		return err
	}
	t, err := h.service.CreateTask(c.Request().Context(), claims, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *TaskHandler) Update(c echo.Context) error {
	claims, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := request.PathID(c)
	if err != nil {
		return err
	}
	var req UpdateTaskRequest
	if err := request.Bind(c, &req); err != nil {
		return err
	}
	t, err := h.service.UpdateTask(c.Request().Context(), claims, id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

func (h *TaskHandler) UpdateStatus(c echo.Context) error {
	id, err := request.PathID(c)
	if err != nil {
		return err
	}
	var req StatusRequest
	if err := request.Bind(c, &req); err != nil {
		return err
	}
	t, err := h.service.ChangeStatus(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

func (h *TaskHandler) Delete(c echo.Context) error {
	id, err := request.PathID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteTask(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
