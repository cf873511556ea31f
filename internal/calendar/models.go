package calendar

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MeetingScheduled = "scheduled"
	MeetingCompleted = "completed"
	MeetingCancelled = "cancelled"
)

const (
	EventHoliday   = "holiday"
	EventDeadline  = "deadline"
	EventMilestone = "milestone"
	EventReminder  = "reminder"
	EventOther     = "other"
)

var EventTypes = []string{EventHoliday, EventDeadline, EventMilestone, EventReminder, EventOther}

var (
	MeetingSortFields = []string{"title", "start_time", "end_time", "status"}
	EventSortFields   = []string{"title", "start", "end", "type"}
)

type Meeting struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Title     string               `bson:"title" json:"title"`
	Agenda    string               `bson:"agenda,omitempty" json:"agenda,omitempty"`
	StartTime time.Time            `bson:"start_time" json:"start_time"`
	EndTime   time.Time            `bson:"end_time" json:"end_time"`
	Location  string               `bson:"location,omitempty" json:"location,omitempty"`
	Link      string               `bson:"link,omitempty" json:"link,omitempty"`
	Organizer primitive.ObjectID   `bson:"organizer" json:"organizer"`
	Attendees []primitive.ObjectID `bson:"attendees" json:"attendees"`
	Project   *primitive.ObjectID  `bson:"project,omitempty" json:"project,omitempty"`
	Status    string               `bson:"status" json:"status"`
	Notes     string               `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time            `bson:"updated_at" json:"updated_at"`
}

// Participants is everyone expected at the meeting, organizer first.
func (m *Meeting) Participants() []primitive.ObjectID {
	return append([]primitive.ObjectID{m.Organizer}, m.Attendees...)
}

type Event struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Title       string              `bson:"title" json:"title"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	Start       time.Time           `bson:"start" json:"start"`
	End         *time.Time          `bson:"end,omitempty" json:"end,omitempty"`
	AllDay      bool                `bson:"all_day" json:"all_day"`
	Type        string              `bson:"type" json:"type"`
	Project     *primitive.ObjectID `bson:"project,omitempty" json:"project,omitempty"`
	CreatedBy   primitive.ObjectID  `bson:"created_by" json:"created_by"`
	Color       string              `bson:"color,omitempty" json:"color,omitempty"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updated_at"`
}

type MeetingRequest struct {
	Title     string    `json:"title" validate:"required,max=200"`
	Agenda    string    `json:"agenda" validate:"max=5000"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
	Location  string    `json:"location" validate:"max=200"`
	Link      string    `json:"link" validate:"omitempty,url"`
	Organizer string    `json:"organizer" validate:"omitempty,objectid"`
	Attendees []string  `json:"attendees" validate:"omitempty,objectid"`
	Project   string    `json:"project" validate:"omitempty,objectid"`
	Status    string    `json:"status" validate:"omitempty,oneof=scheduled completed cancelled"`
	Notes     string    `json:"notes" validate:"max=5000"`
}

type EventRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=5000"`
	Start       time.Time  `json:"start" validate:"required"`
	End         *time.Time `json:"end"`
	AllDay      bool       `json:"all_day"`
	Type        string     `json:"type" validate:"omitempty,eventtype"`
	Project     string     `json:"project" validate:"omitempty,objectid"`
	Color       string     `json:"color" validate:"omitempty,max=20"`
}

type MeetingFilter struct {
	From     time.Time
	To       time.Time
	Project  primitive.ObjectID
	Attendee primitive.ObjectID
	Status   string
}

type EventFilter struct {
	From    time.Time
	To      time.Time
	Type    string
	Project primitive.ObjectID
}
