// Package suggestions generates deterministic coaching messages for a
// student from their submission history and their batch's task list.
// Rule-based, no learning component.
package suggestions

import (
	"fmt"
	"time"

	"github.com/dalemusser/studytrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Suggestion types, in the order they can appear in a report.
const (
	TypeAchievement    = "achievement"
	TypeNextTask       = "next_task"
	TypeImprovement    = "improvement"
	TypeExcellence     = "excellence"
	TypeTimeManagement = "time_management"
)

// urgentWindow is how far ahead a due date counts as urgent.
const urgentWindow = 48 * time.Hour

// TaskRef names a task inside a suggestion.
type TaskRef struct {
	ID      primitive.ObjectID `json:"id"`
	Title   string             `json:"title"`
	DueDate time.Time          `json:"due_date"`
}

// Suggestion is one coaching message.
type Suggestion struct {
	Type        string              `json:"type"`
	Message     string              `json:"message"`
	TaskID      *primitive.ObjectID `json:"task_id,omitempty"`
	UrgentTasks []TaskRef           `json:"urgent_tasks,omitempty"`
}

// Report is the full suggestion output for one student.
type Report struct {
	StudentName    string       `json:"studentName"`
	CompletedTasks int          `json:"completedTasks"`
	PendingTasks   int          `json:"pendingTasks"`
	AverageStars   float64      `json:"averageStars"`
	Suggestions    []Suggestion `json:"suggestions"`
}

// Build partitions the batch's tasks into completed and pending using
// the student's reviewed submissions, then applies the rules:
//
//	no pending            -> single achievement message
//	otherwise             -> next_task for the earliest-due pending task,
//	mean stars < 3.0      -> improvement (needs at least one review),
//	mean stars >= 4.0     -> excellence,
//	>1 pending, >=1 urgent -> time_management listing the urgent tasks.
//
// tasks must be in due-date ascending order; now anchors the urgency
// window so callers (and tests) control the clock.
func Build(studentName string, tasks []models.Task, reviewed []models.Submission, now time.Time) Report {
	completedIDs := make(map[primitive.ObjectID]struct{}, len(reviewed))
	totalStars := 0
	for _, sub := range reviewed {
		completedIDs[sub.TaskID] = struct{}{}
		totalStars += sub.StarsGiven
	}

	var pending []models.Task
	for _, task := range tasks {
		if _, done := completedIDs[task.ID]; !done {
			pending = append(pending, task)
		}
	}

	avg := 0.0
	if len(reviewed) > 0 {
		avg = float64(totalStars) / float64(len(reviewed))
	}

	report := Report{
		StudentName:    studentName,
		CompletedTasks: len(reviewed),
		PendingTasks:   len(pending),
		AverageStars:   avg,
		Suggestions:    []Suggestion{},
	}

	if len(pending) == 0 {
		report.Suggestions = append(report.Suggestions, Suggestion{
			Type:    TypeAchievement,
			Message: "Congratulations! You've completed all assigned tasks.",
		})
		return report
	}

	next := pending[0]
	nextID := next.ID
	report.Suggestions = append(report.Suggestions, Suggestion{
		Type: TypeNextTask,
		Message: fmt.Sprintf("Focus on completing %q which is due on %s.",
			next.Title, next.DueDate.Format("Jan 2, 2006")),
		TaskID: &nextID,
	})

	if len(reviewed) > 0 {
		switch {
		case avg < 3.0:
			report.Suggestions = append(report.Suggestions, Suggestion{
				Type: TypeImprovement,
				Message: "Your average rating is below 3 stars. Consider spending more time " +
					"on task quality and reviewing feedback from previous submissions.",
			})
		case avg >= 4.0:
			report.Suggestions = append(report.Suggestions, Suggestion{
				Type:    TypeExcellence,
				Message: "You're performing excellently with an average of 4+ stars! Keep up the good work.",
			})
		}
	}

	if len(pending) > 1 {
		deadline := now.Add(urgentWindow)
		var urgent []TaskRef
		for _, task := range pending {
			if !task.DueDate.After(deadline) {
				urgent = append(urgent, TaskRef{
					ID:      task.ID,
					Title:   task.Title,
					DueDate: task.DueDate,
				})
			}
		}
		if len(urgent) > 0 {
			report.Suggestions = append(report.Suggestions, Suggestion{
				Type: TypeTimeManagement,
				Message: fmt.Sprintf("You have %d task(s) due within the next 2 days. "+
					"Prioritize these to avoid missing deadlines.", len(urgent)),
				UrgentTasks: urgent,
			})
		}
	}

	return report
}
