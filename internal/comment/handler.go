package comment

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"TaskFlow/internal/auth"
	"TaskFlow/internal/request"
)

type CommentHandler struct {
	service *CommentService
}

func NewCommentHandler(service *CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

// List requires ?task= or ?project=.
func (h *CommentHandler) List(c echo.Context) error {
	var (
		f   Filter
		err error
	)
	if f.Task, err = request.QueryID(c, "task"); err != nil {
		return err
	}
	if f.Project, err = request.QueryID(c, "project"); err != nil {
		return err
	}
	comments, err := h.service.ListComments(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comments)
}

func (h *CommentHandler) Get(c echo.Context) error {
	id, err := request.PathID(c)
	if err != nil {
		return err
	}
	comment, err := h.service.GetComment(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) Create(c echo.Context) error {
	claims, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req CreateCommentRequest
	if err := request.Bind(c, &req); err != nil {
		return err
	}
	comment, err := h.service.CreateComment(c.Request().Context(), claims, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, comment)
}

func (h *CommentHandler) Update(c echo.Context) error {
	claims, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := request.PathID(c)
	if err != nil {
		return err
	}
	var req UpdateCommentRequest
	if err := request.Bind(c, &req); err != nil {
		return err
	}
	comment, err := h.service.UpdateComment(c.Request().Context(), claims, id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) Delete(c echo.Context) error {
	claims, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := request.PathID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteComment(c.Request().Context(), claims, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
