package project

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusOnHold     = "on_hold"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

var ProjectStatuses = []string{StatusNotStarted, StatusInProgress, StatusOnHold, StatusCompleted, StatusCancelled}

const (
	TaskTodo       = "todo"
	TaskInProgress = "in_progress"
	TaskReview     = "review"
	TaskCompleted  = "completed"
	TaskBlocked    = "blocked"
)

var TaskStatuses = []string{TaskTodo, TaskInProgress, TaskReview, TaskCompleted, TaskBlocked}

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

var (
	ProjectSortFields = []string{"name", "status", "priority", "progress", "start_date", "end_date", "budget", "spent"}
	TaskSortFields    = []string{"title", "status", "priority", "progress", "start_date", "due_date", "completed_at"}
)

type Project struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description,omitempty" json:"description,omitempty"`
	Client      *primitive.ObjectID  `bson:"client,omitempty" json:"client,omitempty"`
	Department  *primitive.ObjectID  `bson:"department,omitempty" json:"department,omitempty"`
	Manager     *primitive.ObjectID  `bson:"manager,omitempty" json:"manager,omitempty"`
	Members     []primitive.ObjectID `bson:"members" json:"members"`
	StartDate   *time.Time           `bson:"start_date,omitempty" json:"start_date,omitempty"`
	EndDate     *time.Time           `bson:"end_date,omitempty" json:"end_date,omitempty"`
	Budget      float64              `bson:"budget" json:"budget"`
	Spent       float64              `bson:"spent" json:"spent"`
	Priority    string               `bson:"priority" json:"priority"`
	Status      string               `bson:"status" json:"status"`
	Progress    int                  `bson:"progress" json:"progress"`
	Overdue     bool                 `bson:"overdue" json:"overdue"`
	Tasks       []primitive.ObjectID `bson:"tasks" json:"tasks"`
	Tags        []string             `bson:"tags" json:"tags"`
	CreatedBy   primitive.ObjectID   `bson:"created_by" json:"created_by"`
	CreatedAt   time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at" json:"updated_at"`
}

type Task struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Title          string               `bson:"title" json:"title"`
	Description    string               `bson:"description,omitempty" json:"description,omitempty"`
	Project        primitive.ObjectID   `bson:"project" json:"project"`
	Assignees      []primitive.ObjectID `bson:"assignees" json:"assignees"`
	CreatedBy      primitive.ObjectID   `bson:"created_by" json:"created_by"`
	Priority       string               `bson:"priority" json:"priority"`
	Status         string               `bson:"status" json:"status"`
	Progress       int                  `bson:"progress" json:"progress"`
	StartDate      *time.Time           `bson:"start_date,omitempty" json:"start_date,omitempty"`
	DueDate        *time.Time           `bson:"due_date,omitempty" json:"due_date,omitempty"`
	CompletedAt    *time.Time           `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	EstimatedHours float64              `bson:"estimated_hours" json:"estimated_hours"`
	ActualHours    float64              `bson:"actual_hours" json:"actual_hours"`
	Overdue        bool                 `bson:"overdue" json:"overdue"`
	Tags           []string             `bson:"tags" json:"tags"`
	CreatedAt      time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time            `bson:"updated_at" json:"updated_at"`
}

type ProjectFilter struct {
	Status     string
	Priority   string
	Client     primitive.ObjectID
	Manager    primitive.ObjectID
	Member     primitive.ObjectID
	Department primitive.ObjectID
	Overdue    *bool
	Query      string
}

type TaskFilter struct {
	Project  primitive.ObjectID
	Assignee primitive.ObjectID
	Status   string
	Priority string
	Overdue  *bool
	Query    string
}

type CreateProjectRequest struct {
	Name        string     `json:"name" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=5000"`
	Client      string     `json:"client" validate:"omitempty,objectid"`
	Department  string     `json:"department" validate:"omitempty,objectid"`
	Manager     string     `json:"manager" validate:"omitempty,objectid"`
	Members     []string   `json:"members" validate:"omitempty,objectid"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Budget      float64    `json:"budget" validate:"gte=0"`
	Spent       float64    `json:"spent" validate:"gte=0"`
	Priority    string     `json:"priority" validate:"omitempty,priority"`
	Status      string     `json:"status" validate:"omitempty,projectstatus"`
	Progress    int        `json:"progress" validate:"gte=0,lte=100"`
	Tags        []string   `json:"tags" validate:"omitempty,dive,max=50"`
}

type UpdateProjectRequest struct {
	Name        *string    `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	Client      *string    `json:"client" validate:"omitempty,objectid"`
	Department  *string    `json:"department" validate:"omitempty,objectid"`
	Manager     *string    `json:"manager" validate:"omitempty,objectid"`
	Members     *[]string  `json:"members" validate:"omitempty,objectid"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Budget      *float64   `json:"budget" validate:"omitempty,gte=0"`
	Spent       *float64   `json:"spent" validate:"omitempty,gte=0"`
	Priority    *string    `json:"priority" validate:"omitempty,priority"`
	Status      *string    `json:"status" validate:"omitempty,projectstatus"`
	Progress    *int       `json:"progress" validate:"omitempty,gte=0,lte=100"`
	Tags        *[]string  `json:"tags" validate:"omitempty,dive,max=50"`
}

type CreateTaskRequest struct {
	Title          string     `json:"title" validate:"required,max=200"`
	Description    string     `json:"description" validate:"max=5000"`
	Project        string     `json:"project" validate:"required,objectid"`
	Assignees      []string   `json:"assignees" validate:"omitempty,objectid"`
	Priority       string     `json:"priority" validate:"omitempty,priority"`
	Status         string     `json:"status" validate:"omitempty,taskstatus"`
	Progress       int        `json:"progress" validate:"gte=0,lte=100"`
	StartDate      *time.Time `json:"start_date"`
	DueDate        *time.Time `json:"due_date"`
	EstimatedHours float64    `json:"estimated_hours" validate:"gte=0"`
	ActualHours    float64    `json:"actual_hours" validate:"gte=0"`
	Tags           []string   `json:"tags" validate:"omitempty,dive,max=50"`
}

type UpdateTaskRequest struct {
	Title          *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description    *string    `json:"description" validate:"omitempty,max=5000"`
	Project        *string    `json:"project" validate:"omitempty,objectid"`
	Assignees      *[]string  `json:"assignees" validate:"omitempty,objectid"`
	Priority       *string    `json:"priority" validate:"omitempty,priority"`
	Status         *string    `json:"status" validate:"omitempty,taskstatus"`
	Progress       *int       `json:"progress" validate:"omitempty,gte=0,lte=100"`
	StartDate      *time.Time `json:"start_date"`
	DueDate        *time.Time `json:"due_date"`
	EstimatedHours *float64   `json:"estimated_hours" validate:"omitempty,gte=0"`
	ActualHours    *float64   `json:"actual_hours" validate:"omitempty,gte=0"`
	Tags           *[]string  `json:"tags" validate:"omitempty,dive,max=50"`
}

// StatusRequest is the body of PATCH /api/tasks/:id/status.
type StatusRequest struct {
	Status   *string `json:"status" validate:"omitempty,taskstatus"`
	Progress *int    `json:"progress" validate:"omitempty,gte=0,lte=100"`
}
