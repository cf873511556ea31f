package calendar

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"TaskFlow/internal/store"
)

type CalendarRepository struct {
	meetings *store.Collection[Meeting]
	events   *store.Collection[Event]
}

func NewCalendarRepository(db *mongo.Database) *CalendarRepository {
	return &CalendarRepository{
		meetings: store.NewCollection[Meeting](db, "meetings"),
		events:   store.NewCollection[Event](db, "events"),
	}
}

func (r *CalendarRepository) CreateMeeting(ctx context.Context, m *Meeting) error {
	return r.meetings.Insert(ctx, m)
}

func (r *CalendarRepository) FindMeeting(ctx context.Context, id primitive.ObjectID) (*Meeting, error) {
	return r.meetings.FindByID(ctx, id)
}

func (r *CalendarRepository) ReplaceMeeting(ctx context.Context, m *Meeting) error {
	return r.meetings.Replace(ctx, m.ID, m)
}

func (r *CalendarRepository) DeleteMeeting(ctx context.Context, id primitive.ObjectID) error {
	return r.meetings.DeleteByID(ctx, id)
}

func (r *CalendarRepository) ListMeetings(ctx context.Context, f MeetingFilter, lo store.ListOptions) (*store.Page[Meeting], error) {
	filter := store.NewFilter().
		Range("start_time", f.From, f.To).
		ID("project", f.Project).
		ID("attendees", f.Attendee).
		Eq("status", f.Status)
	return r.meetings.List(ctx, filter.BSON(), lo)
}

// Upcoming returns scheduled meetings starting in [from, to] that user
// organises or attends, soonest first. A zero user matches every meeting.
func (r *CalendarRepository) Upcoming(ctx context.Context, user primitive.ObjectID, from, to time.Time, limit int64) ([]*Meeting, error) {
	filter := bson.M{
		"status":     MeetingScheduled,
		"start_time": bson.M{"$gte": from, "$lte": to},
	}
	if !user.IsZero() {
		filter["$or"] = bson.A{bson.M{"organizer": user}, bson.M{"attendees": user}}
	}
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return r.meetings.FindAll(ctx, filter, opts)
}

// CompleteEnded marks scheduled meetings that have ended as completed.
func (r *CalendarRepository) CompleteEnded(ctx context.Context, now time.Time) (int64, error) {
	return r.meetings.UpdateMany(ctx,
		bson.M{"status": MeetingScheduled, "end_time": bson.M{"$lt": now}},
		bson.M{"$set": bson.M{"status": MeetingCompleted, "updated_at": now}})
}

func (r *CalendarRepository) CreateEvent(ctx context.Context, e *Event) error {
	return r.events.Insert(ctx, e)
}

func (r *CalendarRepository) FindEvent(ctx context.Context, id primitive.ObjectID) (*Event, error) {
	return r.events.FindByID(ctx, id)
}

func (r *CalendarRepository) ReplaceEvent(ctx context.Context, e *Event) error {
	return r.events.Replace(ctx, e.ID, e)
}

func (r *CalendarRepository) DeleteEvent(ctx context.Context, id primitive.ObjectID) error {
	return r.events.DeleteByID(ctx, id)
}

func (r *CalendarRepository) ListEvents(ctx context.Context, f EventFilter, lo store.ListOptions) (*store.Page[Event], error) {
	filter := store.NewFilter().
		Range("start", f.From, f.To).
		Eq("type", f.Type).
		ID("project", f.Project)
	return r.events.List(ctx, filter.BSON(), lo)
}
