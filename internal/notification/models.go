package notification

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	KindComment          = "comment"
	KindMention          = "mention"
	KindTaskAssigned     = "task_assigned"
	KindMeetingScheduled = "meeting_scheduled"
	KindTaskDue          = "task_due"
	KindMeetingReminder  = "meeting_reminder"
)

const (
	RefTask    = "task"
	RefProject = "project"
	RefMeeting = "meeting"
)

var SortFields = []string{"read", "kind"}

// Notification is one in-app message for a single recipient.
type Notification struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Recipient primitive.ObjectID  `bson:"recipient" json:"recipient"`
	Kind      string              `bson:"kind" json:"kind"`
	Message   string              `bson:"message" json:"message"`
	RefType   string              `bson:"ref_type,omitempty" json:"ref_type,omitempty"`
	RefID     *primitive.ObjectID `bson:"ref_id,omitempty" json:"ref_id,omitempty"`
	Read      bool                `bson:"read" json:"read"`
	ReadAt    *time.Time          `bson:"read_at,omitempty" json:"read_at,omitempty"`
	CreatedAt time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time           `bson:"updated_at" json:"updated_at"`
}

// Ref points a notification at the document it is about.
type Ref struct {
	Type string
	ID   primitive.ObjectID
}

// Email asks Notify to also mail every recipient the rendered template.
type Email struct {
	Subject  string
	Template string
	Data     interface{}
}

// Notice describes a fan-out of one message to many users.
type Notice struct {
	Recipients []primitive.ObjectID
	// Exclude is removed from Recipients, typically the acting user.
	Exclude []primitive.ObjectID
	Kind    string
	Message string
	Ref     Ref
	Email   *Email
}

type UnreadCount struct {
	Count int64 `json:"count"`
}
