package report

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"TaskFlow/internal/calendar"
	"TaskFlow/internal/project"
)

const (
	TypeProject   = "project"
	TypeTask      = "task"
	TypeFinancial = "financial"
	TypeTeam      = "team"
	TypeCustom    = "custom"
)

var Types = []string{TypeProject, TypeTask, TypeFinancial, TypeTeam, TypeCustom}

var SortFields = []string{"title", "type", "period_start", "period_end"}

type Report struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Title       string              `bson:"title" json:"title"`
	Type        string              `bson:"type" json:"type"`
	Project     *primitive.ObjectID `bson:"project,omitempty" json:"project,omitempty"`
	PeriodStart *time.Time          `bson:"period_start,omitempty" json:"period_start,omitempty"`
	PeriodEnd   *time.Time          `bson:"period_end,omitempty" json:"period_end,omitempty"`
	Summary     string              `bson:"summary,omitempty" json:"summary,omitempty"`
	Content     string              `bson:"content,omitempty" json:"content,omitempty"`
	Metrics     map[string]float64  `bson:"metrics" json:"metrics"`
	CreatedBy   primitive.ObjectID  `bson:"created_by" json:"created_by"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updated_at"`
}

type ReportRequest struct {
	Title       string             `json:"title" validate:"required,max=200"`
	Type        string             `json:"type" validate:"required,reporttype"`
	Project     string             `json:"project" validate:"omitempty,objectid"`
	PeriodStart *time.Time         `json:"period_start"`
	PeriodEnd   *time.Time         `json:"period_end"`
	Summary     string             `json:"summary" validate:"max=2000"`
	Content     string             `json:"content" validate:"max=50000"`
	Metrics     map[string]float64 `json:"metrics"`
}

type GenerateRequest struct {
	Type        string     `json:"type" validate:"required,reporttype"`
	Project     string     `json:"project" validate:"omitempty,objectid"`
	Title       string     `json:"title" validate:"max=200"`
	PeriodStart *time.Time `json:"period_start"`
	PeriodEnd   *time.Time `json:"period_end"`
}

type Filter struct {
	Type    string
	Project primitive.ObjectID
}

type ProjectStats struct {
	Total      int64            `json:"total"`
	ByStatus   map[string]int64 `json:"by_status"`
	ByPriority map[string]int64 `json:"by_priority"`
	Overdue    int64            `json:"overdue"`
}

type TaskStats struct {
	Total       int64            `json:"total"`
	ByStatus    map[string]int64 `json:"by_status"`
	ByPriority  map[string]int64 `json:"by_priority"`
	Overdue     int64            `json:"overdue"`
	DueThisWeek int64            `json:"due_this_week"`
}

type BudgetStats struct {
	TotalBudget float64 `json:"total_budget"`
	TotalSpent  float64 `json:"total_spent"`
	Remaining   float64 `json:"remaining"`
	Utilization float64 `json:"utilization"`
}

type ClientStats struct {
	Total  int64 `json:"total"`
	Active int64 `json:"active"`
}

type UserStats struct {
	Total  int64            `json:"total"`
	ByRole map[string]int64 `json:"by_role"`
}

// Summary is the GET /api/dashboard payload.
type Summary struct {
	Projects         ProjectStats        `json:"projects"`
	Tasks            TaskStats           `json:"tasks"`
	Budget           BudgetStats         `json:"budget"`
	Clients          ClientStats         `json:"clients"`
	Users            UserStats           `json:"users"`
	UpcomingMeetings []*calendar.Meeting `json:"upcoming_meetings"`
	RecentProjects   []*project.Project  `json:"recent_projects"`
	MyTasks          map[string]int64    `json:"my_tasks"`
}
