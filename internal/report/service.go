package report

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"TaskFlow/internal/apperr"
	"TaskFlow/internal/auth"
	"TaskFlow/internal/calendar"
	"TaskFlow/internal/directory"
	"TaskFlow/internal/project"
	"TaskFlow/internal/store"
)

const (
	dashboardDays     = 7
	dashboardMeetings = 5
	dashboardRecent   = 5
)

var ErrInvalidPeriod = apperr.BadRequest("Period end cannot be before period start")

type reportStore interface {
	Create(ctx context.Context, r *Report) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Report, error)
	Replace(ctx context.Context, r *Report) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, f Filter, lo store.ListOptions) (*store.Page[Report], error)
}

type counter interface {
	Count(ctx context.Context, match bson.M) (int64, error)
	CountBy(ctx context.Context, match bson.M, field string) (map[string]int64, error)
	Sums(ctx context.Context, match bson.M, fields ...string) (map[string]float64, error)
}

type projectStats interface {
	counter
	FindByID(ctx context.Context, id primitive.ObjectID) (*project.Project, error)
	Recent(ctx context.Context, limit int64) ([]*project.Project, error)
}

type clientCounter interface {
	CountClients(ctx context.Context, match bson.M) (int64, error)
}

type userCounter interface {
	CountByRole(ctx context.Context) (map[string]int64, error)
}

type meetingLister interface {
	Upcoming(ctx context.Context, user primitive.ObjectID, from, to time.Time, limit int64) ([]*calendar.Meeting, error)
}

type ReportService struct {
	repo     reportStore
	projects projectStats
	tasks    counter
	clients  clientCounter
	users    userCounter
	meetings meetingLister
	logger   *zap.Logger
	now      func() time.Time
}

func NewReportService(
	repo *ReportRepository,
	projects *project.ProjectRepository,
	tasks *project.TaskRepository,
	dir *directory.DirectoryRepository,
	users *auth.UserRepository,
	meetings *calendar.CalendarRepository,
	logger *zap.Logger,
) *ReportService {
	return newReportService(repo, projects, tasks, dir, users, meetings, logger)
}

func newReportService(
	repo reportStore,
	projects projectStats,
	tasks counter,
	clients clientCounter,
	users userCounter,
	meetings meetingLister,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		repo:     repo,
		projects: projects,
		tasks:    tasks,
		clients:  clients,
		users:    users,
		meetings: meetings,
		logger:   logger.Named("report"),
		now:      time.Now,
	}
}

// Dashboard runs the summary queries concurrently. user scopes my_tasks and
// upcoming_meetings.
func (s *ReportService) Dashboard(ctx context.Context, user primitive.ObjectID) (*Summary, error) {
	now := s.now()
	week := now.AddDate(0, 0, dashboardDays)
	overdue := bson.M{"overdue": true}

	var d dashboardData
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		d.projectsByStatus, err = s.projects.CountBy(gctx, nil, "status")
		return errors.Wrap(err, "projects by status")
	})
	g.Go(func() (err error) {
		d.projectsByPriority, err = s.projects.CountBy(gctx, nil, "priority")
		return errors.Wrap(err, "projects by priority")
	})
	g.Go(func() (err error) {
		d.projectsOverdue, err = s.projects.Count(gctx, overdue)
		return errors.Wrap(err, "overdue projects")
	})
	g.Go(func() error {
		sums, err := s.projects.Sums(gctx, nil, "budget", "spent")
		if err != nil {
			return errors.Wrap(err, "budget")
		}
		d.totalBudget, d.totalSpent = sums["budget"], sums["spent"]
		return nil
	})
	g.Go(func() (err error) {
		d.recent, err = s.projects.Recent(gctx, dashboardRecent)
		return errors.Wrap(err, "recent projects")
	})
	g.Go(func() (err error) {
		d.tasksByStatus, err = s.tasks.CountBy(gctx, nil, "status")
		return errors.Wrap(err, "tasks by status")
	})
	g.Go(func() (err error) {
		d.tasksByPriority, err = s.tasks.CountBy(gctx, nil, "priority")
		return errors.Wrap(err, "tasks by priority")
	})
	g.Go(func() (err error) {
		d.tasksOverdue, err = s.tasks.Count(gctx, overdue)
		return errors.Wrap(err, "overdue tasks")
	})
	g.Go(func() (err error) {
		d.tasksDueThisWeek, err = s.tasks.Count(gctx, bson.M{
			"status":   bson.M{"$ne": project.TaskCompleted},
			"due_date": bson.M{"$gte": now, "$lte": week},
		})
		return errors.Wrap(err, "tasks due this week")
	})
	g.Go(func() (err error) {
		d.myTasks, err = s.tasks.CountBy(gctx, bson.M{"assignees": user}, "status")
		return errors.Wrap(err, "my tasks")
	})
	g.Go(func() (err error) {
		d.clients, err = s.clients.CountClients(gctx, bson.M{})
		return errors.Wrap(err, "clients")
	})
	g.Go(func() (err error) {
		d.activeClients, err = s.clients.CountClients(gctx, bson.M{"status": directory.ClientActive})
		return errors.Wrap(err, "active clients")
	})
	g.Go(func() (err error) {
		d.usersByRole, err = s.users.CountByRole(gctx)
		return errors.Wrap(err, "users by role")
	})
	g.Go(func() (err error) {
		d.upcoming, err = s.meetings.Upcoming(gctx, user, now, week, dashboardMeetings)
		return errors.Wrap(err, "upcoming meetings")
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	summary := buildSummary(d)
	return &summary, nil
}

func checkPeriod(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return ErrInvalidPeriod
	}
	return nil
}

func (s *ReportService) CreateReport(ctx context.Context, actor *auth.JWTClaims, req ReportRequest) (*Report, error) {
	now := s.now()
	r := &Report{ID: primitive.NewObjectID(), CreatedBy: actor.UserID(), CreatedAt: now, UpdatedAt: now}
	if err := applyReport(r, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func applyReport(r *Report, req ReportRequest) error {
	if err := checkPeriod(req.PeriodStart, req.PeriodEnd); err != nil {
		return err
	}
	pid, err := store.ParseOptionalID(req.Project)
	if err != nil {
		return err
	}
	r.Title = strings.TrimSpace(req.Title)
	r.Type = req.Type
	r.Project = store.IDPtr(pid)
	r.PeriodStart = req.PeriodStart
	r.PeriodEnd = req.PeriodEnd
	r.Summary = req.Summary
	r.Content = req.Content
	r.Metrics = req.Metrics
	if r.Metrics == nil {
		r.Metrics = map[string]float64{}
	}
	return nil
}

func (s *ReportService) GetReport(ctx context.Context, id primitive.ObjectID) (*Report, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ReportService) ListReports(ctx context.Context, f Filter, lo store.ListOptions) (*store.Page[Report], error) {
	return s.repo.List(ctx, f, lo)
}

func (s *ReportService) UpdateReport(ctx context.Context, id primitive.ObjectID, req ReportRequest) (*Report, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyReport(r, req); err != nil {
		return nil, err
	}
	r.UpdatedAt = s.now()
	if err := s.repo.Replace(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *ReportService) DeleteReport(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.Delete(ctx, id)
}

// Generate snapshots current task and budget figures into a new report. The
// period, when given, restricts tasks by creation time.
func (s *ReportService) Generate(ctx context.Context, actor *auth.JWTClaims, req GenerateRequest) (*Report, error) {
	if err := checkPeriod(req.PeriodStart, req.PeriodEnd); err != nil {
		return nil, err
	}
	pid, err := store.ParseOptionalID(req.Project)
	if err != nil {
		return nil, err
	}

	taskMatch := bson.M{}
	if created := periodMatch(req.PeriodStart, req.PeriodEnd); created != nil {
		taskMatch["created_at"] = created
	}

	var p *project.Project
	if !pid.IsZero() {
		p, err = s.projects.FindByID(ctx, pid)
		if errors.Is(err, store.ErrNotFound) {
			return nil, project.ErrProjectNotFound
		}
		if err != nil {
			return nil, err
		}
		taskMatch["project"] = pid
	}

	m, err := s.taskMetrics(ctx, taskMatch)
	if err != nil {
		return nil, err
	}
	if p != nil {
		m["project_progress"] = float64(p.Progress)
		budgetMetrics(m, p.Budget, p.Spent)
	} else if err := s.portfolioMetrics(ctx, m); err != nil {
		return nil, err
	}

	now := s.now()
	r := &Report{
		ID:          primitive.NewObjectID(),
		Title:       strings.TrimSpace(req.Title),
		Type:        req.Type,
		Project:     store.IDPtr(pid),
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
		Summary:     summarize(m),
		Metrics:     m,
		CreatedBy:   actor.UserID(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if r.Title == "" {
		r.Title = defaultTitle(req.Type, p, now)
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	s.logger.Info("report generated", zap.String("report_id", r.ID.Hex()), zap.String("type", r.Type))
	return r, nil
}

func periodMatch(start, end *time.Time) bson.M {
	if start == nil && end == nil {
		return nil
	}
	cond := bson.M{}
	if start != nil {
		cond["$gte"] = *start
	}
	if end != nil {
		cond["$lte"] = *end
	}
	return cond
}

func with(match bson.M, key string, value interface{}) bson.M {
	out := make(bson.M, len(match)+1)
	for k, v := range match {
		out[k] = v
	}
	out[key] = value
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func (s *ReportService) taskMetrics(ctx context.Context, match bson.M) (map[string]float64, error) {
	byStatus, err := s.tasks.CountBy(ctx, match, "status")
	if err != nil {
		return nil, err
	}
	overdue, err := s.tasks.Count(ctx, with(match, "overdue", true))
	if err != nil {
		return nil, err
	}
	sums, err := s.tasks.Sums(ctx, match, "progress", "estimated_hours", "actual_hours")
	if err != nil {
		return nil, err
	}

	statuses, total := withKeys(project.TaskStatuses, byStatus)
	m := map[string]float64{
		"tasks_total":     float64(total),
		"tasks_overdue":   float64(overdue),
		"estimated_hours": sums["estimated_hours"],
		"actual_hours":    sums["actual_hours"],
	}
	for status, n := range statuses {
		m["tasks_"+status] = float64(n)
	}
	m["average_progress"] = 0
	if total > 0 {
		m["average_progress"] = round1(sums["progress"] / float64(total))
	}
	return m, nil
}

func (s *ReportService) portfolioMetrics(ctx context.Context, m map[string]float64) error {
	byStatus, err := s.projects.CountBy(ctx, nil, "status")
	if err != nil {
		return err
	}
	overdue, err := s.projects.Count(ctx, bson.M{"overdue": true})
	if err != nil {
		return err
	}
	sums, err := s.projects.Sums(ctx, nil, "budget", "spent")
	if err != nil {
		return err
	}
	statuses, total := withKeys(project.ProjectStatuses, byStatus)
	m["projects_total"] = float64(total)
	m["projects_overdue"] = float64(overdue)
	for status, n := range statuses {
		m["projects_"+status] = float64(n)
	}
	budgetMetrics(m, sums["budget"], sums["spent"])
	return nil
}

func budgetMetrics(m map[string]float64, budget, spent float64) {
	m["budget"] = budget
	m["spent"] = spent
	m["remaining"] = budget - spent
	m["utilization"] = utilization(budget, spent)
}

func summarize(m map[string]float64) string {
	return fmt.Sprintf("%.0f tasks, %.0f completed, %.0f overdue. Average progress %.1f%%. Budget utilization %.1f%%.",
		m["tasks_total"], m["tasks_"+project.TaskCompleted], m["tasks_overdue"], m["average_progress"], m["utilization"])
}

func defaultTitle(kind string, p *project.Project, now time.Time) string {
	label := strings.ToUpper(kind[:1]) + kind[1:]
	if p != nil {
		return fmt.Sprintf("%s report: %s", label, p.Name)
	}
	return fmt.Sprintf("%s report %s", label, now.Format("2006-01-02"))
}
