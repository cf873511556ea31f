package calendar

import (
	"time"

	"TaskFlow/internal/apperr"
)

var (
	ErrMeetingTimes = apperr.BadRequest("End time must be after start time")
	ErrEventTimes   = apperr.BadRequest("End cannot be before start")
)

// DeriveMeeting validates the time range and closes scheduled meetings that
// have already ended.
func DeriveMeeting(m *Meeting, now time.Time) error {
	if !m.EndTime.After(m.StartTime) {
		return ErrMeetingTimes
	}
	if m.Status == "" {
		m.Status = MeetingScheduled
	}
	if m.Status == MeetingScheduled && m.EndTime.Before(now) {
		m.Status = MeetingCompleted
	}
	return nil
}

func DeriveEvent(e *Event) error {
	if e.End != nil && e.End.Before(e.Start) {
		return ErrEventTimes
	}
	if e.Type == "" {
		e.Type = EventOther
	}
	return nil
}
