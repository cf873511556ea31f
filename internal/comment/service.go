package comment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"TaskFlow/internal/apperr"
	"TaskFlow/internal/auth"
	"TaskFlow/internal/mail"
	"TaskFlow/internal/notification"
	"TaskFlow/internal/project"
	"TaskFlow/internal/store"
)

var (
	ErrTarget         = apperr.BadRequest("Exactly one of task or project is required")
	ErrNotAuthor      = apperr.Forbidden("Only the author can edit this comment")
	ErrCannotDelete   = apperr.Forbidden("Not allowed to delete this comment")
	ErrTaskMissing    = apperr.NotFound("Task not found")
	ErrProjectMissing = apperr.NotFound("Project not found")
)

type commentStore interface {
	Create(ctx context.Context, c *Comment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Comment, error)
	Replace(ctx context.Context, c *Comment) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, f Filter) ([]*Comment, error)
}

type taskFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*project.Task, error)
}

type projectFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*project.Project, error)
}

type CommentService struct {
	repo     commentStore
	tasks    taskFinder
	projects projectFinder
	notifier project.Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewCommentService(
	repo *CommentRepository,
	tasks *project.TaskRepository,
	projects *project.ProjectRepository,
	notifier *notification.NotificationService,
	logger *zap.Logger,
) *CommentService {
	return newCommentService(repo, tasks, projects, notifier, logger)
}

func newCommentService(repo commentStore, tasks taskFinder, projects projectFinder, notifier project.Notifier, logger *zap.Logger) *CommentService {
	return &CommentService{
		repo:     repo,
		tasks:    tasks,
		projects: projects,
		notifier: notifier,
		logger:   logger.Named("comment"),
		now:      time.Now,
	}
}

// target is what a comment hangs off, resolved with everyone who follows it.
type target struct {
	refType   string
	id        primitive.ObjectID
	title     string
	followers []primitive.ObjectID
}

func (s *CommentService) resolve(ctx context.Context, c *Comment) (*target, error) {
	if c.Task != nil {
		t, err := s.tasks.FindByID(ctx, *c.Task)
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTaskMissing
		}
		if err != nil {
			return nil, err
		}
		followers := append([]primitive.ObjectID{t.CreatedBy}, t.Assignees...)
		p, err := s.projects.FindByID(ctx, t.Project)
		switch {
		case err == nil:
			followers = append(followers, store.IDValue(p.Manager))
		case !errors.Is(err, store.ErrNotFound):
			return nil, err
		}
		return &target{refType: notification.RefTask, id: t.ID, title: t.Title, followers: followers}, nil
	}

	p, err := s.projects.FindByID(ctx, *c.Project)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrProjectMissing
	}
	if err != nil {
		return nil, err
	}
	followers := append([]primitive.ObjectID{store.IDValue(p.Manager)}, p.Members...)
	return &target{refType: notification.RefProject, id: p.ID, title: p.Name, followers: followers}, nil
}

func (s *CommentService) CreateComment(ctx context.Context, actor *auth.JWTClaims, req CreateCommentRequest) (*Comment, error) {
	if (req.Task == "") == (req.Project == "") {
		return nil, ErrTarget
	}
	taskID, err := store.ParseOptionalID(req.Task)
	if err != nil {
		return nil, err
	}
	projectID, err := store.ParseOptionalID(req.Project)
	if err != nil {
		return nil, err
	}
	mentions, err := store.ParseIDs(req.Mentions)
	if err != nil {
		return nil, err
	}

	now := s.now()
	c := &Comment{
		ID:        primitive.NewObjectID(),
		Content:   strings.TrimSpace(req.Content),
		Author:    actor.UserID(),
		Task:      store.IDPtr(taskID),
		Project:   store.IDPtr(projectID),
		Mentions:  store.UniqueIDs(mentions),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if c.Content == "" {
		return nil, apperr.BadRequest("Content is required")
	}

	t, err := s.resolve(ctx, c)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.fanOut(ctx, actor, c, t)
	return c, nil
}

// fanOut notifies followers of the target with a comment notice and the
// mentioned users with a mention notice. Nobody gets both, and the author
// gets neither.
func (s *CommentService) fanOut(ctx context.Context, actor *auth.JWTClaims, c *Comment, t *target) {
	author := c.Author
	mentioned := store.UniqueIDs(c.Mentions, author)
	followers := store.UniqueIDs(t.followers, append([]primitive.ObjectID{author}, mentioned...)...)

	s.notify(ctx, actor, c, t, followers, false)
	s.notify(ctx, actor, c, t, mentioned, true)
}

func (s *CommentService) notify(ctx context.Context, actor *auth.JWTClaims, c *Comment, t *target, recipients []primitive.ObjectID, mention bool) {
	if len(recipients) == 0 {
		return
	}
	kind := notification.KindComment
	message := fmt.Sprintf("%s commented on %s %q", actor.Name, t.refType, t.title)
	subject := fmt.Sprintf("New comment on %s", t.title)
	if mention {
		kind = notification.KindMention
		message = fmt.Sprintf("%s mentioned you on %s %q", actor.Name, t.refType, t.title)
		subject = fmt.Sprintf("%s mentioned you", actor.Name)
	}

	err := s.notifier.Notify(ctx, notification.Notice{
		Recipients: recipients,
		Exclude:    []primitive.ObjectID{c.Author},
		Kind:       kind,
		Message:    message,
		Ref:        notification.Ref{Type: t.refType, ID: t.id},
		Email: &notification.Email{
			Subject:  subject,
			Template: mail.TemplateComment,
			Data: mail.CommentData{
				AuthorName:  actor.Name,
				TargetKind:  t.refType,
				TargetTitle: t.title,
				Content:     c.Content,
				Mentioned:   mention,
				Path:        fmt.Sprintf("/%ss/%s", t.refType, t.id.Hex()),
			},
		},
	})
	if err != nil {
		s.logger.Warn("failed to notify comment recipients",
			zap.String("comment_id", c.ID.Hex()),
			zap.String("kind", kind),
			zap.Error(err))
	}
}

func (s *CommentService) ListComments(ctx context.Context, f Filter) ([]*Comment, error) {
	if f.Task.IsZero() == f.Project.IsZero() {
		return nil, ErrTarget
	}
	return s.repo.List(ctx, f)
}

func (s *CommentService) GetComment(ctx context.Context, id primitive.ObjectID) (*Comment, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *CommentService) UpdateComment(ctx context.Context, actor *auth.JWTClaims, id primitive.ObjectID, req UpdateCommentRequest) (*Comment, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Author != actor.UserID() {
		return nil, ErrNotAuthor
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperr.BadRequest("Content is required")
	}
	c.Content = content
	if req.Mentions != nil {
		mentions, err := store.ParseIDs(*req.Mentions)
		if err != nil {
			return nil, err
		}
		c.Mentions = store.UniqueIDs(mentions)
	}
	c.Edited = true
	c.UpdatedAt = s.now()
	if err := s.repo.Replace(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, actor *auth.JWTClaims, id primitive.ObjectID) error {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if c.Author != actor.UserID() && !actor.IsManager() {
		return ErrCannotDelete
	}
	return s.repo.Delete(ctx, id)
}
