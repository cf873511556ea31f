package project

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"TaskFlow/internal/auth"
	"TaskFlow/internal/mail"
	"TaskFlow/internal/notification"
	"TaskFlow/internal/store"
)

// projectFor loads the project a task points at, reporting a missing one as
// ErrProjectNotFound rather than a bare 404 on the task.
func (s *ProjectService) projectFor(ctx context.Context, id primitive.ObjectID) (*Project, error) {
	p, err := s.projects.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrProjectNotFound
	}
	return p, err
}

func (s *ProjectService) CreateTask(ctx context.Context, actor *auth.JWTClaims, req CreateTaskRequest) (*Task, error) {
	projectID, err := store.ParseID(req.Project)
	if err != nil {
		return nil, err
	}
	assignees, err := userIDs(req.Assignees)
	if err != nil {
		return nil, err
	}
	p, err := s.projectFor(ctx, projectID)
	if err != nil {
		return nil, err
	}
	priority := req.Priority
	if priority == "" {
		priority = PriorityMedium
	}

	now := s.now()
	t := &Task{
		ID:             primitive.NewObjectID(),
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		Project:        projectID,
		Assignees:      assignees,
		CreatedBy:      actor.UserID(),
		Priority:       priority,
		Status:         req.Status,
		Progress:       req.Progress,
		StartDate:      req.StartDate,
		DueDate:        req.DueDate,
		EstimatedHours: req.EstimatedHours,
		ActualHours:    req.ActualHours,
		Tags:           tags(req.Tags),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := DeriveTask(t, now); err != nil {
		return nil, err
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, err
	}
	if err := s.projects.AddTask(ctx, projectID, t.ID); err != nil {
		return nil, err
	}
	if err := s.refreshProject(ctx, projectID); err != nil {
		return nil, err
	}

	s.notifyAssigned(ctx, actor, t, p, t.Assignees)
	s.logger.Info("task created", zap.String("task_id", t.ID.Hex()), zap.String("project_id", projectID.Hex()))
	return t, nil
}

func (s *ProjectService) GetTask(ctx context.Context, id primitive.ObjectID) (*Task, error) {
	return s.tasks.FindByID(ctx, id)
}

func (s *ProjectService) ListTasks(ctx context.Context, f TaskFilter, lo store.ListOptions) (*store.Page[Task], error) {
	return s.tasks.List(ctx, f, lo)
}

// MyTasks lists the tasks assigned to user, narrowed by f.
func (s *ProjectService) MyTasks(ctx context.Context, user primitive.ObjectID, f TaskFilter, lo store.ListOptions) (*store.Page[Task], error) {
	f.Assignee = user
	return s.tasks.List(ctx, f, lo)
}

// applyProgress sets status and progress together. Moving a task out of
// completed without an explicit progress restarts it from zero, and lowering
// the progress of a completed task reopens it.
func applyProgress(t *Task, status *string, progress *int) {
	wasCompleted := t.Status == TaskCompleted
	if progress != nil {
		t.Progress = *progress
	}
	switch {
	case status != nil:
		if wasCompleted && *status != TaskCompleted && progress == nil {
			t.Progress = 0
		}
		t.Status = *status
	case wasCompleted && progress != nil && *progress < 100:
		t.Status = TaskTodo
	}
}

func (s *ProjectService) UpdateTask(ctx context.Context, actor *auth.JWTClaims, id primitive.ObjectID, req UpdateTaskRequest) (*Task, error) {
	t, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldProject := t.Project
	oldAssignees := t.Assignees

	if req.Project != nil {
		pid, err := store.ParseID(*req.Project)
		if err != nil {
			return nil, err
		}
		t.Project = pid
	}
	if req.Assignees != nil {
		ids, err := userIDs(*req.Assignees)
		if err != nil {
			return nil, err
		}
		t.Assignees = ids
	}
	if req.Title != nil {
		t.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Priority != nil {
		t.Priority = *req.Priority
	}
	if req.StartDate != nil {
		t.StartDate = req.StartDate
	}
	if req.DueDate != nil {
		t.DueDate = req.DueDate
	}
	if req.EstimatedHours != nil {
		t.EstimatedHours = *req.EstimatedHours
	}
	if req.ActualHours != nil {
		t.ActualHours = *req.ActualHours
	}
	if req.Tags != nil {
		t.Tags = tags(*req.Tags)
	}
	applyProgress(t, req.Status, req.Progress)

	p, err := s.projectFor(ctx, t.Project)
	if err != nil {
		return nil, err
	}
	if err := s.saveTask(ctx, t, oldProject); err != nil {
		return nil, err
	}

	added := store.UniqueIDs(t.Assignees, oldAssignees...)
	s.notifyAssigned(ctx, actor, t, p, added)
	return t, nil
}

// ChangeStatus backs PATCH /api/tasks/:id/status.
func (s *ProjectService) ChangeStatus(ctx context.Context, id primitive.ObjectID, req StatusRequest) (*Task, error) {
	if req.Status == nil && req.Progress == nil {
		return nil, ErrEmptyStatusChange
	}
	t, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyProgress(t, req.Status, req.Progress)
	if err := s.saveTask(ctx, t, t.Project); err != nil {
		return nil, err
	}
	return t, nil
}

// saveTask derives and stores t, moves it between projects when its
// project changed and refreshes every affected project.
func (s *ProjectService) saveTask(ctx context.Context, t *Task, oldProject primitive.ObjectID) error {
	now := s.now()
	t.UpdatedAt = now
	if err := DeriveTask(t, now); err != nil {
		return err
	}
	if err := s.tasks.Replace(ctx, t); err != nil {
		return err
	}

	if oldProject != t.Project {
		if err := s.projects.PullTask(ctx, oldProject, t.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if err := s.projects.AddTask(ctx, t.Project, t.ID); err != nil {
			return err
		}
		if err := s.refreshProject(ctx, oldProject); err != nil {
			return err
		}
	}
	return s.refreshProject(ctx, t.Project)
}

func (s *ProjectService) DeleteTask(ctx context.Context, id primitive.ObjectID) error {
	t, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.projects.PullTask(ctx, t.Project, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if _, err := s.comments.DeleteForTasks(ctx, []primitive.ObjectID{id}); err != nil {
		return err
	}
	s.notifier.Forget(ctx, notification.RefTask, id)

	s.logger.Info("task deleted", zap.String("task_id", id.Hex()))
	return s.refreshProject(ctx, t.Project)
}

func (s *ProjectService) notifyAssigned(ctx context.Context, actor *auth.JWTClaims, t *Task, p *Project, assignees []primitive.ObjectID) {
	if len(assignees) == 0 {
		return
	}
	data := mail.TaskAssignedData{
		TaskTitle:   t.Title,
		ProjectName: p.Name,
		AssignedBy:  actor.Name,
		Path:        "/tasks/" + t.ID.Hex(),
	}
	if t.DueDate != nil {
		data.DueDate = mail.FormatDate(*t.DueDate)
	}
	err := s.notifier.Notify(ctx, notification.Notice{
		Recipients: assignees,
		Exclude:    []primitive.ObjectID{actor.UserID()},
		Kind:       notification.KindTaskAssigned,
		Message:    fmt.Sprintf("%s assigned you to %q", actor.Name, t.Title),
		Ref:        notification.Ref{Type: notification.RefTask, ID: t.ID},
		Email: &notification.Email{
			Subject:  "New task: " + t.Title,
			Template: mail.TemplateTaskAssigned,
			Data:     data,
		},
	})
	if err != nil {
		s.logger.Warn("failed to notify assignees", zap.String("task_id", t.ID.Hex()), zap.Error(err))
	}
}
