package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"TaskFlow/internal/auth"
	"TaskFlow/internal/calendar"
	"TaskFlow/internal/config"
	"TaskFlow/internal/mail"
	"TaskFlow/internal/metrics"
	"TaskFlow/internal/notification"
	"TaskFlow/internal/project"
)

var now = time.Date(2024, 6, 10, 7, 0, 0, 0, time.UTC)

type mockTasks struct{ mock.Mock }

func (m *mockTasks) MarkOverdue(ctx context.Context, at time.Time) (int64, error) {
	args := m.Called(ctx, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTasks) FindDueBefore(ctx context.Context, until time.Time) ([]*project.Task, error) {
	args := m.Called(ctx, until)
	tasks, _ := args.Get(0).([]*project.Task)
	return tasks, args.Error(1)
}

type mockProjects struct{ mock.Mock }

func (m *mockProjects) MarkOverdue(ctx context.Context, at time.Time) (int64, error) {
	args := m.Called(ctx, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockProjects) Names(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	args := m.Called(ctx, ids)
	names, _ := args.Get(0).(map[primitive.ObjectID]string)
	return names, args.Error(1)
}

type mockMeetings struct{ mock.Mock }

func (m *mockMeetings) CompleteEnded(ctx context.Context, at time.Time) (int64, error) {
	args := m.Called(ctx, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockMeetings) Upcoming(ctx context.Context, user primitive.ObjectID, from, to time.Time, limit int64) ([]*calendar.Meeting, error) {
	args := m.Called(ctx, user, from, to, limit)
	out, _ := args.Get(0).([]*calendar.Meeting)
	return out, args.Error(1)
}

type mockUsers struct{ mock.Mock }

func (m *mockUsers) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*auth.User, error) {
	args := m.Called(ctx, ids)
	users, _ := args.Get(0).([]*auth.User)
	return users, args.Error(1)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) Send(ctx context.Context, to []string, subject, template string, data interface{}) error {
	return m.Called(ctx, to, subject, template, data).Error(0)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) Notify(ctx context.Context, n notification.Notice) error {
	return m.Called(ctx, n).Error(0)
}

type fixture struct {
	tasks    *mockTasks
	projects *mockProjects
	meetings *mockMeetings
	users    *mockUsers
	mailer   *mockMailer
	notifier *mockNotifier
	metrics  *metrics.Metrics
	svc      *ReminderService
}

func newFixture() *fixture {
	f := &fixture{
		tasks:    new(mockTasks),
		projects: new(mockProjects),
		meetings: new(mockMeetings),
		users:    new(mockUsers),
		mailer:   new(mockMailer),
		notifier: new(mockNotifier),
		metrics:  metrics.New(),
	}
	f.svc = newReminderService(f.tasks, f.projects, f.meetings, f.users, f.mailer, f.notifier, f.metrics, zap.NewNop())
	f.svc.now = func() time.Time { return now }
	return f
}

func at(d time.Duration) *time.Time {
	t := now.Add(d)
	return &t
}

func user(name, email string) *auth.User {
	return &auth.User{ID: primitive.NewObjectID(), Name: name, Email: email, Active: true}
}

func TestSweepTasks_GroupsByAssignee(t *testing.T) {
	f := newFixture()
	alice, bob := user("Alice", "alice@example.com"), user("Bob", "bob@example.com")
	pid := primitive.NewObjectID()
	late := &project.Task{ID: primitive.NewObjectID(), Title: "Late", Project: pid, DueDate: at(-24 * time.Hour), Assignees: []primitive.ObjectID{alice.ID}}
	soon := &project.Task{ID: primitive.NewObjectID(), Title: "Soon", Project: pid, DueDate: at(24 * time.Hour), Assignees: []primitive.ObjectID{alice.ID, bob.ID}}

	f.tasks.On("FindDueBefore", mock.Anything, now.Add(48*time.Hour)).Return([]*project.Task{late, soon}, nil)
	f.projects.On("Names", mock.Anything, mock.Anything).Return(map[primitive.ObjectID]string{pid: "Apollo"}, nil)
	f.notifier.On("Notify", mock.Anything, mock.MatchedBy(func(n notification.Notice) bool {
		return n.Kind == notification.KindTaskDue && n.Email == nil
	})).Return(nil).Twice()
	f.users.On("FindByIDs", mock.Anything, mock.Anything).Return([]*auth.User{alice, bob}, nil)
	f.mailer.On("Send", mock.Anything, []string{"alice@example.com"}, mock.Anything, mail.TemplateTaskDigest,
		mock.MatchedBy(func(d mail.TaskDigestData) bool {
			return d.RecipientName == "Alice" && len(d.Overdue) == 1 && len(d.DueSoon) == 1 &&
				d.Overdue[0].Project == "Apollo"
		})).Return(nil).Once()
	f.mailer.On("Send", mock.Anything, []string{"bob@example.com"}, mock.Anything, mail.TemplateTaskDigest, mock.Anything).
		Return(assert.AnError).Once()

	res := f.svc.SweepTasks(context.Background(), now)
	assert.Equal(t, SweepResult{Sweep: SweepTasks, Candidates: 2, Emailed: 1, Failed: 1}, res)
	f.notifier.AssertExpectations(t)
	f.mailer.AssertExpectations(t)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ReminderEmails.WithLabelValues(SweepTasks, "sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ReminderEmails.WithLabelValues(SweepTasks, "failed")))
}

func TestSweepTasks_SkipsInactiveUsers(t *testing.T) {
	f := newFixture()
	inactive := user("Carol", "carol@example.com")
	inactive.Active = false
	task := &project.Task{ID: primitive.NewObjectID(), Title: "Soon", DueDate: at(time.Hour), Assignees: []primitive.ObjectID{inactive.ID}}

	f.tasks.On("FindDueBefore", mock.Anything, mock.Anything).Return([]*project.Task{task}, nil)
	f.projects.On("Names", mock.Anything, mock.Anything).Return(map[primitive.ObjectID]string{}, nil)
	f.notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)
	f.users.On("FindByIDs", mock.Anything, mock.Anything).Return([]*auth.User{inactive}, nil)

	res := f.svc.SweepTasks(context.Background(), now)
	assert.Equal(t, 1, res.Candidates)
	assert.Zero(t, res.Emailed)
	f.mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSweepMeetings_RemindsEveryParticipant(t *testing.T) {
	f := newFixture()
	organizer, guest := user("Olga", "olga@example.com"), user("Gus", "")
	m := &calendar.Meeting{
		ID:        primitive.NewObjectID(),
		Title:     "Standup",
		StartTime: now.Add(2 * time.Hour),
		EndTime:   now.Add(150 * time.Minute),
		Organizer: organizer.ID,
		Attendees: []primitive.ObjectID{guest.ID, organizer.ID},
		Status:    calendar.MeetingScheduled,
	}
	f.meetings.On("Upcoming", mock.Anything, primitive.NilObjectID, now, now.Add(24*time.Hour), int64(0)).Return([]*calendar.Meeting{m}, nil)
	f.users.On("FindByIDs", mock.Anything, []primitive.ObjectID{organizer.ID, guest.ID}).Return([]*auth.User{organizer, guest}, nil)
	f.notifier.On("Notify", mock.Anything, mock.MatchedBy(func(n notification.Notice) bool {
		return n.Kind == notification.KindMeetingReminder && n.Ref.ID == m.ID
	})).Return(nil).Once()
	f.mailer.On("Send", mock.Anything, []string{"olga@example.com"}, "Reminder: Standup", mail.TemplateMeetingReminder,
		mock.MatchedBy(func(d mail.MeetingData) bool {
			return d.Organizer == "Olga" && d.Path == "/meetings/"+m.ID.Hex()
		})).Return(nil).Once()

	res := f.svc.SweepMeetings(context.Background(), now)
	assert.Equal(t, SweepResult{Sweep: SweepMeetings, Candidates: 1, Emailed: 1}, res)
	f.mailer.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestRun_SweepFailureDoesNotStopTheOther(t *testing.T) {
	f := newFixture()
	f.tasks.On("MarkOverdue", mock.Anything, now).Return(int64(2), nil)
	f.projects.On("MarkOverdue", mock.Anything, now).Return(int64(0), assert.AnError)
	f.meetings.On("CompleteEnded", mock.Anything, now).Return(int64(1), nil)
	f.tasks.On("FindDueBefore", mock.Anything, mock.Anything).Return(nil, assert.AnError)
	f.meetings.On("Upcoming", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]*calendar.Meeting{}, nil)

	results := f.svc.Run(context.Background())
	require.Len(t, results, 2)
	assert.Equal(t, SweepTasks, results[0].Sweep)
	assert.NotEmpty(t, results[0].Error)
	assert.Equal(t, SweepResult{Sweep: SweepMeetings}, results[1])
	f.meetings.AssertExpectations(t)
}

func TestScheduler(t *testing.T) {
	cfg := &config.AppConfig{Reminder: config.ReminderConfig{Schedule: "0 8 * * *", Timezone: "Europe/Berlin"}}
	svc := newFixture().svc

	s, err := NewScheduler(cfg, svc, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, s.cron.Entries(), 1)

	lc := fxtest.NewLifecycle(t)
	s.Start(lc)
	lc.RequireStart()
	next := s.cron.Entries()[0].Next
	assert.Equal(t, 8, next.Hour())
	assert.Equal(t, "Europe/Berlin", next.Location().String())
	lc.RequireStop()

	cfg.Reminder.Schedule = "every morning"
	_, err = NewScheduler(cfg, svc, zap.NewNop())
	assert.Error(t, err)

	cfg.Reminder.Schedule = "0 8 * * *"
	cfg.Reminder.Timezone = "Mars/Olympus"
	_, err = NewScheduler(cfg, svc, zap.NewNop())
	assert.Error(t, err)
}
