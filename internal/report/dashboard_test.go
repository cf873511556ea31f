package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"TaskFlow/internal/auth"
	"TaskFlow/internal/project"
)

func TestBuildSummary_FillsEveryKey(t *testing.T) {
	s := buildSummary(dashboardData{})

	for _, status := range project.ProjectStatuses {
		assert.Contains(t, s.Projects.ByStatus, status)
	}
	for _, status := range project.TaskStatuses {
		assert.Contains(t, s.Tasks.ByStatus, status)
		assert.Contains(t, s.MyTasks, status)
	}
	for _, p := range project.Priorities {
		assert.Contains(t, s.Projects.ByPriority, p)
		assert.Contains(t, s.Tasks.ByPriority, p)
	}
	for _, r := range auth.Roles {
		assert.Contains(t, s.Users.ByRole, r)
	}
	assert.NotNil(t, s.UpcomingMeetings)
	assert.NotNil(t, s.RecentProjects)
	assert.Zero(t, s.Budget.Utilization)
}

func TestBuildSummary_Totals(t *testing.T) {
	s := buildSummary(dashboardData{
		projectsByStatus: map[string]int64{project.StatusInProgress: 3, project.StatusCompleted: 2},
		tasksByStatus:    map[string]int64{project.TaskTodo: 4, "": 1},
		usersByRole:      map[string]int64{auth.RoleAdmin: 1, auth.RoleMember: 6},
		totalBudget:      1000,
		totalSpent:       333,
		clients:          4,
		activeClients:    3,
	})

	assert.Equal(t, int64(5), s.Projects.Total)
	assert.Equal(t, int64(3), s.Projects.ByStatus[project.StatusInProgress])
	assert.Equal(t, int64(0), s.Projects.ByStatus[project.StatusOnHold])
	assert.Equal(t, int64(5), s.Tasks.Total, "documents without a status still count towards the total")
	assert.NotContains(t, s.Tasks.ByStatus, "")
	assert.Equal(t, int64(7), s.Users.Total)
	assert.Equal(t, BudgetStats{TotalBudget: 1000, TotalSpent: 333, Remaining: 667, Utilization: 33.3}, s.Budget)
	assert.Equal(t, ClientStats{Total: 4, Active: 3}, s.Clients)
}

func TestUtilization(t *testing.T) {
	assert.Equal(t, 0.0, utilization(0, 50))
	assert.Equal(t, 50.0, utilization(200, 100))
	assert.Equal(t, 125.0, utilization(80, 100))
}
