package project

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"TaskFlow/internal/store"
)

type ProjectRepository struct {
	projects *store.Collection[Project]
}

func NewProjectRepository(db *mongo.Database) *ProjectRepository {
	return &ProjectRepository{projects: store.NewCollection[Project](db, "projects")}
}

func (r *ProjectRepository) Create(ctx context.Context, p *Project) error {
	return r.projects.Insert(ctx, p)
}

func (r *ProjectRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Project, error) {
	return r.projects.FindByID(ctx, id)
}

func (r *ProjectRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	return r.projects.UpdateByID(ctx, id, bson.M{"$set": set})
}

func (r *ProjectRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.projects.DeleteByID(ctx, id)
}

func (r *ProjectRepository) List(ctx context.Context, f ProjectFilter, lo store.ListOptions) (*store.Page[Project], error) {
	filter := store.NewFilter().
		Eq("status", f.Status).
		Eq("priority", f.Priority).
		ID("client", f.Client).
		ID("manager", f.Manager).
		ID("members", f.Member).
		ID("department", f.Department).
		Bool("overdue", f.Overdue).
		Search(f.Query, "name", "description", "tags")
	return r.projects.List(ctx, filter.BSON(), lo)
}

// AddTask records taskID on the project. It is a no-op when already present.
func (r *ProjectRepository) AddTask(ctx context.Context, projectID, taskID primitive.ObjectID) error {
	return r.projects.UpdateByID(ctx, projectID, bson.M{"$addToSet": bson.M{"tasks": taskID}})
}

func (r *ProjectRepository) PullTask(ctx context.Context, projectID, taskID primitive.ObjectID) error {
	return r.projects.UpdateByID(ctx, projectID, bson.M{"$pull": bson.M{"tasks": taskID}})
}

// ListByClient returns id, name and status of the client's projects.
func (r *ProjectRepository) ListByClient(ctx context.Context, clientID primitive.ObjectID) ([]*Project, error) {
	opts := options.Find().
		SetProjection(bson.M{"name": 1, "status": 1, "progress": 1}).
		SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.projects.FindAll(ctx, bson.M{"client": clientID}, opts)
}

func (r *ProjectRepository) CountByClient(ctx context.Context, clientID primitive.ObjectID) (int64, error) {
	return r.projects.Count(ctx, bson.M{"client": clientID})
}

// Names maps each of ids to its project name.
func (r *ProjectRepository) Names(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	out := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	opts := options.Find().SetProjection(bson.M{"name": 1})
	projects, err := r.projects.FindAll(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		out[p.ID] = p.Name
	}
	return out, nil
}

// Recent returns the most recently updated projects.
func (r *ProjectRepository) Recent(ctx context.Context, limit int64) ([]*Project, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetLimit(limit).
		SetProjection(bson.M{"tasks": 0})
	return r.projects.FindAll(ctx, bson.M{}, opts)
}

// MarkOverdue flags open projects whose end date has passed.
func (r *ProjectRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	return r.projects.UpdateMany(ctx,
		bson.M{
			"end_date": bson.M{"$lt": now},
			"status":   bson.M{"$nin": bson.A{StatusCompleted, StatusCancelled}},
			"overdue":  bson.M{"$ne": true},
		},
		bson.M{"$set": bson.M{"overdue": true, "updated_at": now}})
}

func (r *ProjectRepository) Count(ctx context.Context, match bson.M) (int64, error) {
	return r.projects.Count(ctx, match)
}

func (r *ProjectRepository) CountBy(ctx context.Context, match bson.M, field string) (map[string]int64, error) {
	return r.projects.CountBy(ctx, match, field)
}

func (r *ProjectRepository) Sums(ctx context.Context, match bson.M, fields ...string) (map[string]float64, error) {
	return r.projects.Sums(ctx, match, fields...)
}

type TaskRepository struct {
	tasks *store.Collection[Task]
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{tasks: store.NewCollection[Task](db, "tasks")}
}

func (r *TaskRepository) Create(ctx context.Context, t *Task) error {
	return r.tasks.Insert(ctx, t)
}

func (r *TaskRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Task, error) {
	return r.tasks.FindByID(ctx, id)
}

func (r *TaskRepository) Replace(ctx context.Context, t *Task) error {
	return r.tasks.Replace(ctx, t.ID, t)
}

func (r *TaskRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.tasks.DeleteByID(ctx, id)
}

func (r *TaskRepository) List(ctx context.Context, f TaskFilter, lo store.ListOptions) (*store.Page[Task], error) {
	filter := store.NewFilter().
		ID("project", f.Project).
		ID("assignees", f.Assignee).
		Eq("status", f.Status).
		Eq("priority", f.Priority).
		Bool("overdue", f.Overdue).
		Search(f.Query, "title", "description", "tags")
	return r.tasks.List(ctx, filter.BSON(), lo)
}

func (r *TaskRepository) FindByProject(ctx context.Context, projectID primitive.ObjectID) ([]*Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return r.tasks.FindAll(ctx, bson.M{"project": projectID}, opts)
}

func (r *TaskRepository) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	return r.tasks.DeleteMany(ctx, bson.M{"project": projectID})
}

// MarkOverdue flags unfinished tasks whose due date has passed.
func (r *TaskRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	return r.tasks.UpdateMany(ctx,
		bson.M{
			"due_date": bson.M{"$lt": now},
			"status":   bson.M{"$ne": TaskCompleted},
			"overdue":  bson.M{"$ne": true},
		},
		bson.M{"$set": bson.M{"overdue": true, "updated_at": now}})
}

// FindDueBefore returns unfinished, assigned tasks due before until. That
// covers both overdue tasks and those due soon.
func (r *TaskRepository) FindDueBefore(ctx context.Context, until time.Time) ([]*Task, error) {
	filter := bson.M{
		"status":      bson.M{"$ne": TaskCompleted},
		"assignees.0": bson.M{"$exists": true},
		"due_date":    bson.M{"$lt": until},
	}
	opts := options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}})
	return r.tasks.FindAll(ctx, filter, opts)
}

func (r *TaskRepository) Count(ctx context.Context, match bson.M) (int64, error) {
	return r.tasks.Count(ctx, match)
}

func (r *TaskRepository) CountBy(ctx context.Context, match bson.M, field string) (map[string]int64, error) {
	return r.tasks.CountBy(ctx, match, field)
}

func (r *TaskRepository) Sums(ctx context.Context, match bson.M, fields ...string) (map[string]float64, error) {
	return r.tasks.Sums(ctx, match, fields...)
}
