package report

import (
	"math"

	"TaskFlow/internal/auth"
	"TaskFlow/internal/calendar"
	"TaskFlow/internal/project"
)

// dashboardData is the raw query output that buildSummary assembles.
type dashboardData struct {
	projectsByStatus   map[string]int64
	projectsByPriority map[string]int64
	projectsOverdue    int64

	tasksByStatus    map[string]int64
	tasksByPriority  map[string]int64
	tasksOverdue     int64
	tasksDueThisWeek int64

	totalBudget float64
	totalSpent  float64

	clients       int64
	activeClients int64

	usersByRole map[string]int64
	myTasks     map[string]int64

	upcoming []*calendar.Meeting
	recent   []*project.Project
}

// withKeys copies counts into a map holding every key, and returns the sum
// of all counts including keys outside keys.
func withKeys(keys []string, counts map[string]int64) (map[string]int64, int64) {
	out := make(map[string]int64, len(keys))
	for _, k := range keys {
		out[k] = 0
	}
	var total int64
	for k, n := range counts {
		total += n
		if _, ok := out[k]; ok {
			out[k] = n
		}
	}
	return out, total
}

// utilization is spent as a percentage of budget, to one decimal place.
func utilization(budget, spent float64) float64 {
	if budget <= 0 {
		return 0
	}
	return math.Round(spent/budget*1000) / 10
}

func buildSummary(d dashboardData) Summary {
	var s Summary

	s.Projects.ByStatus, s.Projects.Total = withKeys(project.ProjectStatuses, d.projectsByStatus)
	s.Projects.ByPriority, _ = withKeys(project.Priorities, d.projectsByPriority)
	s.Projects.Overdue = d.projectsOverdue

	s.Tasks.ByStatus, s.Tasks.Total = withKeys(project.TaskStatuses, d.tasksByStatus)
	s.Tasks.ByPriority, _ = withKeys(project.Priorities, d.tasksByPriority)
	s.Tasks.Overdue = d.tasksOverdue
	s.Tasks.DueThisWeek = d.tasksDueThisWeek

	s.Budget = BudgetStats{
		TotalBudget: d.totalBudget,
		TotalSpent:  d.totalSpent,
		Remaining:   d.totalBudget - d.totalSpent,
		Utilization: utilization(d.totalBudget, d.totalSpent),
	}

	s.Clients = ClientStats{Total: d.clients, Active: d.activeClients}
	s.Users.ByRole, s.Users.Total = withKeys(auth.Roles, d.usersByRole)
	s.MyTasks, _ = withKeys(project.TaskStatuses, d.myTasks)

	s.UpcomingMeetings = d.upcoming
	if s.UpcomingMeetings == nil {
		s.UpcomingMeetings = []*calendar.Meeting{}
	}
	s.RecentProjects = d.recent
	if s.RecentProjects == nil {
		s.RecentProjects = []*project.Project{}
	}
	return s
}
