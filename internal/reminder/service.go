// Package reminder runs the daily sweeps that refresh overdue flags and
// email due-task digests and meeting reminders.
package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"TaskFlow/internal/auth"
	"TaskFlow/internal/calendar"
	"TaskFlow/internal/config"
	"TaskFlow/internal/mail"
	"TaskFlow/internal/metrics"
	"TaskFlow/internal/notification"
	"TaskFlow/internal/project"
	"TaskFlow/internal/store"
)

const (
	SweepTasks    = "task_due"
	SweepMeetings = "meeting_reminder"

	meetingHorizon = 24 * time.Hour
)

// SweepResult summarises one sweep. Candidates counts the tasks or meetings
// found; Emailed and Failed count individual emails.
type SweepResult struct {
	Sweep      string `json:"sweep"`
	Candidates int    `json:"candidates"`
	Emailed    int    `json:"emailed"`
	Failed     int    `json:"failed"`
	Error      string `json:"error,omitempty"`
}

type taskStore interface {
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
	FindDueBefore(ctx context.Context, until time.Time) ([]*project.Task, error)
}

type projectStore interface {
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
	Names(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error)
}

type meetingStore interface {
	CompleteEnded(ctx context.Context, now time.Time) (int64, error)
	Upcoming(ctx context.Context, user primitive.ObjectID, from, to time.Time, limit int64) ([]*calendar.Meeting, error)
}

type userLookup interface {
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*auth.User, error)
}

type mailer interface {
	Send(ctx context.Context, to []string, subject, template string, data interface{}) error
}

type notifier interface {
	Notify(ctx context.Context, n notification.Notice) error
}

type ReminderService struct {
	tasks    taskStore
	projects projectStore
	meetings meetingStore
	users    userLookup
	mailer   mailer
	notifier notifier
	metrics  *metrics.Metrics
	logger   *zap.Logger

	window time.Duration
	loc    *time.Location
	now    func() time.Time
}

func NewReminderService(
	cfg *config.AppConfig,
	tasks *project.TaskRepository,
	projects *project.ProjectRepository,
	meetings *calendar.CalendarRepository,
	users *auth.UserRepository,
	m *mail.Mailer,
	notifier *notification.NotificationService,
	mt *metrics.Metrics,
	logger *zap.Logger,
) (*ReminderService, error) {
	loc, err := time.LoadLocation(cfg.Reminder.Timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "load reminder timezone %q", cfg.Reminder.Timezone)
	}
	s := newReminderService(tasks, projects, meetings, users, m, notifier, mt, logger)
	s.window = cfg.Reminder.DueSoonWindow
	s.loc = loc
	return s, nil
}

func newReminderService(
	tasks taskStore,
	projects projectStore,
	meetings meetingStore,
	users userLookup,
	m mailer,
	n notifier,
	mt *metrics.Metrics,
	logger *zap.Logger,
) *ReminderService {
	return &ReminderService{
		tasks:    tasks,
		projects: projects,
		meetings: meetings,
		users:    users,
		mailer:   m,
		notifier: n,
		metrics:  mt,
		logger:   logger.Named("reminder"),
		window:   48 * time.Hour,
		loc:      time.UTC,
		now:      time.Now,
	}
}

// Run refreshes time-based state and then runs both sweeps. A failing sweep
// is reported in its result and never stops the other one.
func (s *ReminderService) Run(ctx context.Context) []SweepResult {
	now := s.now()
	s.Refresh(ctx, now)

	results := []SweepResult{
		s.SweepTasks(ctx, now),
		s.SweepMeetings(ctx, now),
	}
	for _, r := range results {
		fields := []zap.Field{
			zap.String("sweep", r.Sweep),
			zap.Int("candidates", r.Candidates),
			zap.Int("emailed", r.Emailed),
			zap.Int("failed", r.Failed),
		}
		if r.Error != "" {
			s.logger.Error("reminder sweep failed", append(fields, zap.String("error", r.Error))...)
			continue
		}
		s.logger.Info("reminder sweep finished", fields...)
	}
	return results
}

// Refresh flags overdue tasks and projects and closes meetings that have
// ended.
func (s *ReminderService) Refresh(ctx context.Context, now time.Time) {
	if n, err := s.tasks.MarkOverdue(ctx, now); err != nil {
		s.logger.Error("failed to flag overdue tasks", zap.Error(err))
	} else if n > 0 {
		s.logger.Info("flagged overdue tasks", zap.Int64("count", n))
	}
	if n, err := s.projects.MarkOverdue(ctx, now); err != nil {
		s.logger.Error("failed to flag overdue projects", zap.Error(err))
	} else if n > 0 {
		s.logger.Info("flagged overdue projects", zap.Int64("count", n))
	}
	if n, err := s.meetings.CompleteEnded(ctx, now); err != nil {
		s.logger.Error("failed to complete ended meetings", zap.Error(err))
	} else if n > 0 {
		s.logger.Info("completed ended meetings", zap.Int64("count", n))
	}
}

type digest struct {
	dueSoon []mail.TaskLine
	overdue []mail.TaskLine
}

// SweepTasks sends every assignee one digest of their overdue and due-soon
// tasks, plus a task_due notification per task.
func (s *ReminderService) SweepTasks(ctx context.Context, now time.Time) SweepResult {
	res := SweepResult{Sweep: SweepTasks}
	tasks, err := s.tasks.FindDueBefore(ctx, now.Add(s.window))
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Candidates = len(tasks)
	if len(tasks) == 0 {
		return res
	}

	projectIDs := make([]primitive.ObjectID, 0, len(tasks))
	for _, t := range tasks {
		projectIDs = append(projectIDs, t.Project)
	}
	names, err := s.projects.Names(ctx, projectIDs)
	if err != nil {
		s.logger.Warn("failed to load project names", zap.Error(err))
		names = map[primitive.ObjectID]string{}
	}

	digests := make(map[primitive.ObjectID]*digest)
	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		due := t.DueDate.In(s.loc)
		line := mail.TaskLine{
			Title:   t.Title,
			Project: names[t.Project],
			DueDate: mail.FormatDate(due),
			Path:    "/tasks/" + t.ID.Hex(),
		}
		overdue := t.DueDate.Before(now)
		for _, a := range t.Assignees {
			d, ok := digests[a]
			if !ok {
				d = &digest{}
				digests[a] = d
			}
			if overdue {
				d.overdue = append(d.overdue, line)
			} else {
				d.dueSoon = append(d.dueSoon, line)
			}
		}

		message := fmt.Sprintf("%q is due %s", t.Title, mail.FormatDate(due))
		if overdue {
			message = fmt.Sprintf("%q is overdue since %s", t.Title, mail.FormatDate(due))
		}
		err := s.notifier.Notify(ctx, notification.Notice{
			Recipients: t.Assignees,
			Kind:       notification.KindTaskDue,
			Message:    message,
			Ref:        notification.Ref{Type: notification.RefTask, ID: t.ID},
		})
		if err != nil {
			s.logger.Warn("failed to create due notification", zap.String("task_id", t.ID.Hex()), zap.Error(err))
		}
	}

	users, err := s.loadUsers(ctx, recipients(digests))
	if err != nil {
		res.Error = err.Error()
		return res
	}
	for id, d := range digests {
		u, ok := users[id]
		if !ok {
			continue
		}
		data := mail.TaskDigestData{RecipientName: u.Name, DueSoon: d.dueSoon, Overdue: d.overdue}
		subject := fmt.Sprintf("You have %d task(s) needing attention", len(d.dueSoon)+len(d.overdue))
		s.deliver(ctx, &res, u, subject, mail.TemplateTaskDigest, data)
	}
	return res
}

// SweepMeetings reminds every participant of scheduled meetings starting in
// the next 24 hours.
func (s *ReminderService) SweepMeetings(ctx context.Context, now time.Time) SweepResult {
	res := SweepResult{Sweep: SweepMeetings}
	meetings, err := s.meetings.Upcoming(ctx, primitive.NilObjectID, now, now.Add(meetingHorizon), 0)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Candidates = len(meetings)
	if len(meetings) == 0 {
		return res
	}

	var everyone []primitive.ObjectID
	for _, m := range meetings {
		everyone = append(everyone, m.Participants()...)
	}
	users, err := s.loadUsers(ctx, everyone)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	for _, m := range meetings {
		organizer := ""
		if u, ok := users[m.Organizer]; ok {
			organizer = u.Name
		}
		start := mail.FormatTime(m.StartTime.In(s.loc))
		err := s.notifier.Notify(ctx, notification.Notice{
			Recipients: m.Participants(),
			Kind:       notification.KindMeetingReminder,
			Message:    fmt.Sprintf("%q starts %s", m.Title, start),
			Ref:        notification.Ref{Type: notification.RefMeeting, ID: m.ID},
		})
		if err != nil {
			s.logger.Warn("failed to create meeting reminder", zap.String("meeting_id", m.ID.Hex()), zap.Error(err))
		}

		for _, id := range store.UniqueIDs(m.Participants()) {
			u, ok := users[id]
			if !ok {
				continue
			}
			data := mail.MeetingData{
				RecipientName: u.Name,
				Title:         m.Title,
				Organizer:     organizer,
				StartTime:     start,
				EndTime:       mail.FormatTime(m.EndTime.In(s.loc)),
				Location:      m.Location,
				Link:          m.Link,
				Agenda:        m.Agenda,
				Path:          "/meetings/" + m.ID.Hex(),
			}
			s.deliver(ctx, &res, u, "Reminder: "+m.Title, mail.TemplateMeetingReminder, data)
		}
	}
	return res
}

func (s *ReminderService) deliver(ctx context.Context, res *SweepResult, u *auth.User, subject, template string, data interface{}) {
	if u.Email == "" {
		return
	}
	if err := s.mailer.Send(ctx, []string{u.Email}, subject, template, data); err != nil {
		res.Failed++
		s.metrics.ReminderEmails.WithLabelValues(res.Sweep, "failed").Inc()
		s.logger.Warn("reminder email failed", zap.String("sweep", res.Sweep), zap.String("to", u.Email), zap.Error(err))
		return
	}
	res.Emailed++
	s.metrics.ReminderEmails.WithLabelValues(res.Sweep, "sent").Inc()
}

// loadUsers returns the active users among ids, keyed by id.
func (s *ReminderService) loadUsers(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*auth.User, error) {
	users, err := s.users.FindByIDs(ctx, store.UniqueIDs(ids))
	if err != nil {
		return nil, errors.Wrap(err, "load recipients")
	}
	out := make(map[primitive.ObjectID]*auth.User, len(users))
	for _, u := range users {
		if u.Active {
			out[u.ID] = u
		}
	}
	return out, nil
}

func recipients(m map[primitive.ObjectID]*digest) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	return out
}
