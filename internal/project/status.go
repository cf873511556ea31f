package project

import (
	"math"
	"time"

	"TaskFlow/internal/apperr"
)

var ErrInvalidDates = apperr.BadRequest("End date cannot be before start date")

func clampProgress(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

// DeriveTask normalises a task before it is saved: progress and status are
// kept consistent and the overdue flag is recomputed against now.
func DeriveTask(t *Task, now time.Time) error {
	if t.StartDate != nil && t.DueDate != nil && t.DueDate.Before(*t.StartDate) {
		return ErrInvalidDates
	}
	if t.Status == "" {
		t.Status = TaskTodo
	}
	t.Progress = clampProgress(t.Progress)

	if t.Status == TaskCompleted || t.Progress == 100 {
		t.Status = TaskCompleted
		t.Progress = 100
		if t.CompletedAt == nil {
			completed := now
			t.CompletedAt = &completed
		}
	} else {
		t.CompletedAt = nil
		started := t.Progress > 0 || (t.StartDate != nil && !t.StartDate.After(now))
		if t.Status == TaskTodo && started {
			t.Status = TaskInProgress
		}
	}

	t.Overdue = t.DueDate != nil && t.DueDate.Before(now) && t.Status != TaskCompleted
	return nil
}

// DeriveProject recomputes a project's progress, status and overdue flag
// from its tasks. on_hold and cancelled are only ever set by hand.
func DeriveProject(p *Project, tasks []*Task, now time.Time) error {
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		return ErrInvalidDates
	}
	if p.Status == "" {
		p.Status = StatusNotStarted
	}

	if len(tasks) > 0 {
		sum := 0
		for _, t := range tasks {
			sum += clampProgress(t.Progress)
		}
		p.Progress = int(math.Round(float64(sum) / float64(len(tasks))))
	} else {
		p.Progress = clampProgress(p.Progress)
	}

	if p.Status != StatusOnHold && p.Status != StatusCancelled {
		if len(tasks) > 0 {
			p.Status = statusFromTasks(tasks, p.Progress)
		} else if p.Status == StatusCompleted {
			p.Progress = 100
		} else if p.Status == StatusNotStarted && p.StartDate != nil && !p.StartDate.After(now) {
			p.Status = StatusInProgress
		}
	}

	p.Overdue = p.EndDate != nil && p.EndDate.Before(now) &&
		p.Status != StatusCompleted && p.Status != StatusCancelled
	return nil
}

func statusFromTasks(tasks []*Task, progress int) string {
	allDone, started := true, progress > 0
	for _, t := range tasks {
		switch t.Status {
		case TaskCompleted:
			started = true
		case TaskInProgress, TaskReview:
			started = true
			allDone = false
		default:
			allDone = false
		}
	}
	switch {
	case allDone:
		return StatusCompleted
	case started:
		return StatusInProgress
	}
	return StatusNotStarted
}
