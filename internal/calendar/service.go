package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"TaskFlow/internal/auth"
	"TaskFlow/internal/mail"
	"TaskFlow/internal/notification"
	"TaskFlow/internal/store"
)

const (
	DefaultUpcomingDays = 7
	MaxUpcomingDays     = 90
)

type calendarStore interface {
	CreateMeeting(ctx context.Context, m *Meeting) error
	FindMeeting(ctx context.Context, id primitive.ObjectID) (*Meeting, error)
	ReplaceMeeting(ctx context.Context, m *Meeting) error
	DeleteMeeting(ctx context.Context, id primitive.ObjectID) error
	ListMeetings(ctx context.Context, f MeetingFilter, lo store.ListOptions) (*store.Page[Meeting], error)
	Upcoming(ctx context.Context, user primitive.ObjectID, from, to time.Time, limit int64) ([]*Meeting, error)

	CreateEvent(ctx context.Context, e *Event) error
	FindEvent(ctx context.Context, id primitive.ObjectID) (*Event, error)
	ReplaceEvent(ctx context.Context, e *Event) error
	DeleteEvent(ctx context.Context, id primitive.ObjectID) error
	ListEvents(ctx context.Context, f EventFilter, lo store.ListOptions) (*store.Page[Event], error)
}

// Notifier fans a notice out to users.
type Notifier interface {
	Notify(ctx context.Context, n notification.Notice) error
	Forget(ctx context.Context, refType string, ids ...primitive.ObjectID)
}

type CalendarService struct {
	repo     calendarStore
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewCalendarService(repo *CalendarRepository, notifier *notification.NotificationService, logger *zap.Logger) *CalendarService {
	return newCalendarService(repo, notifier, logger)
}

func newCalendarService(repo calendarStore, notifier Notifier, logger *zap.Logger) *CalendarService {
	return &CalendarService{repo: repo, notifier: notifier, logger: logger.Named("calendar"), now: time.Now}
}

// applyMeeting copies req onto m. An empty organizer or status keeps the
// stored value; on a new meeting the organizer falls back to the actor.
func (s *CalendarService) applyMeeting(m *Meeting, actor *auth.JWTClaims, req MeetingRequest) error {
	organizer, err := store.ParseOptionalID(req.Organizer)
	if err != nil {
		return err
	}
	if organizer.IsZero() {
		organizer = m.Organizer
	}
	if organizer.IsZero() {
		organizer = actor.UserID()
	}
	attendees, err := store.ParseIDs(req.Attendees)
	if err != nil {
		return err
	}
	project, err := store.ParseOptionalID(req.Project)
	if err != nil {
		return err
	}

	m.Title = strings.TrimSpace(req.Title)
	m.Agenda = req.Agenda
	m.StartTime = req.StartTime
	m.EndTime = req.EndTime
	m.Location = req.Location
	m.Link = req.Link
	m.Organizer = organizer
	m.Attendees = store.UniqueIDs(attendees)
	m.Project = store.IDPtr(project)
	if req.Status != "" {
		m.Status = req.Status
	}
	m.Notes = req.Notes
	return nil
}

func (s *CalendarService) CreateMeeting(ctx context.Context, actor *auth.JWTClaims, req MeetingRequest) (*Meeting, error) {
	now := s.now()
	m := &Meeting{ID: primitive.NewObjectID(), CreatedAt: now, UpdatedAt: now}
	if err := s.applyMeeting(m, actor, req); err != nil {
		return nil, err
	}
	if err := DeriveMeeting(m, now); err != nil {
		return nil, err
	}
	if err := s.repo.CreateMeeting(ctx, m); err != nil {
		return nil, err
	}
	s.notifyInvited(ctx, actor, m, m.Participants())
	return m, nil
}

func (s *CalendarService) GetMeeting(ctx context.Context, id primitive.ObjectID) (*Meeting, error) {
	m, err := s.repo.FindMeeting(ctx, id)
	if err != nil {
		return nil, err
	}
	_ = DeriveMeeting(m, s.now())
	return m, nil
}

func (s *CalendarService) ListMeetings(ctx context.Context, f MeetingFilter, lo store.ListOptions) (*store.Page[Meeting], error) {
	page, err := s.repo.ListMeetings(ctx, f, lo)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for _, m := range page.Data {
		_ = DeriveMeeting(m, now)
	}
	return page, nil
}

// Upcoming lists the scheduled meetings of user starting within the next
// days days.
func (s *CalendarService) Upcoming(ctx context.Context, user primitive.ObjectID, days int, limit int64) ([]*Meeting, error) {
	if days < 1 {
		days = DefaultUpcomingDays
	}
	if days > MaxUpcomingDays {
		days = MaxUpcomingDays
	}
	now := s.now()
	return s.repo.Upcoming(ctx, user, now, now.AddDate(0, 0, days), limit)
}

func (s *CalendarService) UpdateMeeting(ctx context.Context, actor *auth.JWTClaims, id primitive.ObjectID, req MeetingRequest) (*Meeting, error) {
	m, err := s.repo.FindMeeting(ctx, id)
	if err != nil {
		return nil, err
	}
	before := m.Participants()
	if err := s.applyMeeting(m, actor, req); err != nil {
		return nil, err
	}
	now := s.now()
	m.UpdatedAt = now
	if err := DeriveMeeting(m, now); err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceMeeting(ctx, m); err != nil {
		return nil, err
	}
	s.notifyInvited(ctx, actor, m, store.UniqueIDs(m.Participants(), before...))
	return m, nil
}

func (s *CalendarService) DeleteMeeting(ctx context.Context, id primitive.ObjectID) error {
	if err := s.repo.DeleteMeeting(ctx, id); err != nil {
		return err
	}
	s.notifier.Forget(ctx, notification.RefMeeting, id)
	return nil
}

func (s *CalendarService) notifyInvited(ctx context.Context, actor *auth.JWTClaims, m *Meeting, recipients []primitive.ObjectID) {
	if len(recipients) == 0 || m.Status != MeetingScheduled {
		return
	}
	err := s.notifier.Notify(ctx, notification.Notice{
		Recipients: recipients,
		Exclude:    []primitive.ObjectID{actor.UserID()},
		Kind:       notification.KindMeetingScheduled,
		Message:    fmt.Sprintf("%s invited you to %q on %s", actor.Name, m.Title, mail.FormatTime(m.StartTime)),
		Ref:        notification.Ref{Type: notification.RefMeeting, ID: m.ID},
		Email: &notification.Email{
			Subject:  "Meeting invitation: " + m.Title,
			Template: mail.TemplateMeetingScheduled,
			Data: mail.MeetingData{
				Title:     m.Title,
				Organizer: actor.Name,
				StartTime: mail.FormatTime(m.StartTime),
				EndTime:   mail.FormatTime(m.EndTime),
				Location:  m.Location,
				Link:      m.Link,
				Agenda:    m.Agenda,
				Path:      "/meetings/" + m.ID.Hex(),
			},
		},
	})
	if err != nil {
		s.logger.Warn("failed to notify attendees", zap.String("meeting_id", m.ID.Hex()), zap.Error(err))
	}
}

func (s *CalendarService) applyEvent(e *Event, req EventRequest) error {
	project, err := store.ParseOptionalID(req.Project)
	if err != nil {
		return err
	}
	e.Title = strings.TrimSpace(req.Title)
	e.Description = req.Description
	e.Start = req.Start
	e.End = req.End
	e.AllDay = req.AllDay
	e.Type = req.Type
	e.Project = store.IDPtr(project)
	e.Color = req.Color
	return DeriveEvent(e)
}

func (s *CalendarService) CreateEvent(ctx context.Context, actor *auth.JWTClaims, req EventRequest) (*Event, error) {
	now := s.now()
	e := &Event{ID: primitive.NewObjectID(), CreatedBy: actor.UserID(), CreatedAt: now, UpdatedAt: now}
	if err := s.applyEvent(e, req); err != nil {
		return nil, err
	}
	if err := s.repo.CreateEvent(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *CalendarService) GetEvent(ctx context.Context, id primitive.ObjectID) (*Event, error) {
	return s.repo.FindEvent(ctx, id)
}

func (s *CalendarService) ListEvents(ctx context.Context, f EventFilter, lo store.ListOptions) (*store.Page[Event], error) {
	return s.repo.ListEvents(ctx, f, lo)
}

func (s *CalendarService) UpdateEvent(ctx context.Context, id primitive.ObjectID, req EventRequest) (*Event, error) {
	e, err := s.repo.FindEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyEvent(e, req); err != nil {
		return nil, err
	}
	e.UpdatedAt = s.now()
	if err := s.repo.ReplaceEvent(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *CalendarService) DeleteEvent(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.DeleteEvent(ctx, id)
}
