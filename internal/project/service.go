package project

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"TaskFlow/internal/apperr"
	"TaskFlow/internal/auth"
	"TaskFlow/internal/notification"
	"TaskFlow/internal/store"
)

var (
	ErrProjectNotFound   = apperr.NotFound("Project not found")
	ErrEmptyStatusChange = apperr.BadRequest("status or progress is required")
)

type projectStore interface {
	Create(ctx context.Context, p *Project) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Project, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, f ProjectFilter, lo store.ListOptions) (*store.Page[Project], error)
	AddTask(ctx context.Context, projectID, taskID primitive.ObjectID) error
	PullTask(ctx context.Context, projectID, taskID primitive.ObjectID) error
}

type taskStore interface {
	Create(ctx context.Context, t *Task) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Task, error)
	Replace(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, f TaskFilter, lo store.ListOptions) (*store.Page[Task], error)
	FindByProject(ctx context.Context, projectID primitive.ObjectID) ([]*Task, error)
	DeleteByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error)
}

// Notifier fans a notice out to users.
type Notifier interface {
	Notify(ctx context.Context, n notification.Notice) error
	Forget(ctx context.Context, refType string, ids ...primitive.ObjectID)
}

// CommentCleaner removes the comments attached to deleted tasks and projects.
type CommentCleaner interface {
	DeleteForTasks(ctx context.Context, taskIDs []primitive.ObjectID) (int64, error)
	DeleteForProject(ctx context.Context, projectID primitive.ObjectID) (int64, error)
}

// ProjectService owns projects and their tasks, keeping project.tasks and
// the derived project fields in step with every task write.
type ProjectService struct {
	projects projectStore
	tasks    taskStore
	comments CommentCleaner
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewProjectService(projects *ProjectRepository, tasks *TaskRepository, comments CommentCleaner, notifier *notification.NotificationService, logger *zap.Logger) *ProjectService {
	return newProjectService(projects, tasks, comments, notifier, logger)
}

func newProjectService(projects projectStore, tasks taskStore, comments CommentCleaner, notifier Notifier, logger *zap.Logger) *ProjectService {
	return &ProjectService{
		projects: projects,
		tasks:    tasks,
		comments: comments,
		notifier: notifier,
		logger:   logger.Named("project"),
		now:      time.Now,
	}
}

func optionalID(hex string) (*primitive.ObjectID, error) {
	id, err := store.ParseOptionalID(hex)
	if err != nil {
		return nil, err
	}
	return store.IDPtr(id), nil
}

func userIDs(hexes []string) ([]primitive.ObjectID, error) {
	ids, err := store.ParseIDs(hexes)
	if err != nil {
		return nil, err
	}
	return store.UniqueIDs(ids), nil
}

func tags(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t != "" && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

func (s *ProjectService) CreateProject(ctx context.Context, actor *auth.JWTClaims, req CreateProjectRequest) (*Project, error) {
	client, err := optionalID(req.Client)
	if err != nil {
		return nil, err
	}
	dept, err := optionalID(req.Department)
	if err != nil {
		return nil, err
	}
	manager, err := optionalID(req.Manager)
	if err != nil {
		return nil, err
	}
	members, err := userIDs(req.Members)
	if err != nil {
		return nil, err
	}
	if manager == nil {
		manager = store.IDPtr(actor.UserID())
	}
	priority := req.Priority
	if priority == "" {
		priority = PriorityMedium
	}

	now := s.now()
	p := &Project{
		ID:          primitive.NewObjectID(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Client:      client,
		Department:  dept,
		Manager:     manager,
		Members:     members,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Budget:      req.Budget,
		Spent:       req.Spent,
		Priority:    priority,
		Status:      req.Status,
		Progress:    req.Progress,
		Tasks:       []primitive.ObjectID{},
		Tags:        tags(req.Tags),
		CreatedBy:   actor.UserID(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := DeriveProject(p, nil, now); err != nil {
		return nil, err
	}
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("project created", zap.String("project_id", p.ID.Hex()), zap.String("by", actor.Subject))
	return p, nil
}

func (s *ProjectService) GetProject(ctx context.Context, id primitive.ObjectID) (*Project, error) {
	return s.projects.FindByID(ctx, id)
}

func (s *ProjectService) ListProjects(ctx context.Context, f ProjectFilter, lo store.ListOptions) (*store.Page[Project], error) {
	return s.projects.List(ctx, f, lo)
}

func applyProjectUpdate(p *Project, req UpdateProjectRequest) error {
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	for _, ref := range []struct {
		hex *string
		dst **primitive.ObjectID
	}{{req.Client, &p.Client}, {req.Department, &p.Department}, {req.Manager, &p.Manager}} {
		if ref.hex == nil {
			continue
		}
		id, err := optionalID(*ref.hex)
		if err != nil {
			return err
		}
		*ref.dst = id
	}
	if req.Members != nil {
		members, err := userIDs(*req.Members)
		if err != nil {
			return err
		}
		p.Members = members
	}
	if req.StartDate != nil {
		p.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		p.EndDate = req.EndDate
	}
	if req.Budget != nil {
		p.Budget = *req.Budget
	}
	if req.Spent != nil {
		p.Spent = *req.Spent
	}
	if req.Priority != nil {
		p.Priority = *req.Priority
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	if req.Progress != nil {
		p.Progress = *req.Progress
	}
	if req.Tags != nil {
		p.Tags = tags(*req.Tags)
	}
	return nil
}

// projectSet is the $set document for a project update. tasks is left out
// because it is only ever changed with $addToSet and $pull.
func projectSet(p *Project) bson.M {
	return bson.M{
		"name":        p.Name,
		"description": p.Description,
		"client":      p.Client,
		"department":  p.Department,
		"manager":     p.Manager,
		"members":     p.Members,
		"start_date":  p.StartDate,
		"end_date":    p.EndDate,
		"budget":      p.Budget,
		"spent":       p.Spent,
		"priority":    p.Priority,
		"status":      p.Status,
		"progress":    p.Progress,
		"overdue":     p.Overdue,
		"tags":        p.Tags,
		"updated_at":  p.UpdatedAt,
	}
}

func (s *ProjectService) UpdateProject(ctx context.Context, id primitive.ObjectID, req UpdateProjectRequest) (*Project, error) {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyProjectUpdate(p, req); err != nil {
		return nil, err
	}
	tasks, err := s.tasks.FindByProject(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	p.UpdatedAt = now
	if err := DeriveProject(p, tasks, now); err != nil {
		return nil, err
	}
	if err := s.projects.Update(ctx, id, projectSet(p)); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteProject removes the project together with its tasks and every
// comment on either.
func (s *ProjectService) DeleteProject(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.projects.FindByID(ctx, id); err != nil {
		return err
	}
	tasks, err := s.tasks.FindByProject(ctx, id)
	if err != nil {
		return err
	}
	taskIDs := make([]primitive.ObjectID, 0, len(tasks))
	for _, t := range tasks {
		taskIDs = append(taskIDs, t.ID)
	}

	if _, err := s.tasks.DeleteByProject(ctx, id); err != nil {
		return err
	}
	if len(taskIDs) > 0 {
		if _, err := s.comments.DeleteForTasks(ctx, taskIDs); err != nil {
			return err
		}
	}
	if _, err := s.comments.DeleteForProject(ctx, id); err != nil {
		return err
	}
	if err := s.projects.Delete(ctx, id); err != nil {
		return err
	}
	s.notifier.Forget(ctx, notification.RefTask, taskIDs...)
	s.notifier.Forget(ctx, notification.RefProject, id)

	s.logger.Info("project deleted", zap.String("project_id", id.Hex()), zap.Int("tasks", len(taskIDs)))
	return nil
}

func (s *ProjectService) ProjectTasks(ctx context.Context, id primitive.ObjectID) ([]*Task, error) {
	if _, err := s.projects.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.tasks.FindByProject(ctx, id)
}

// refreshProject re-derives the project from its current tasks and stores
// the derived fields.
func (s *ProjectService) refreshProject(ctx context.Context, id primitive.ObjectID) error {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("task references missing project", zap.String("project_id", id.Hex()))
			return nil
		}
		return err
	}
	tasks, err := s.tasks.FindByProject(ctx, id)
	if err != nil {
		return err
	}

	now := s.now()
	if err := DeriveProject(p, tasks, now); err != nil {
		return err
	}
	return s.projects.Update(ctx, id, bson.M{
		"progress":   p.Progress,
		"status":     p.Status,
		"overdue":    p.Overdue,
		"updated_at": now,
	})
}
