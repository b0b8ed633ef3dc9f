package suggestions

import (
	"testing"
	"time"

	"github.com/dalemusser/studytrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var testNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func task(title string, due time.Time) models.Task {
	return models.Task{
		ID:      primitive.NewObjectID(),
		Title:   title,
		DueDate: due,
	}
}

func reviewedSub(taskID primitive.ObjectID, stars int) models.Submission {
	return models.Submission{
		ID:         primitive.NewObjectID(),
		TaskID:     taskID,
		StarsGiven: stars,
		IsReviewed: true,
	}
}

func types(r Report) []string {
	out := make([]string, len(r.Suggestions))
	for i, s := range r.Suggestions {
		out[i] = s.Type
	}
	return out
}

func TestBuild_AllComplete(t *testing.T) {
	t1 := task("Worksheet 1", testNow.Add(24*time.Hour))
	t2 := task("Worksheet 2", testNow.Add(48*time.Hour))
	subs := []models.Submission{reviewedSub(t1.ID, 4), reviewedSub(t2.ID, 5)}

	report := Build("Ada", []models.Task{t1, t2}, subs, testNow)

	if got := types(report); len(got) != 1 || got[0] != TypeAchievement {
		t.Fatalf("suggestions: got %v, want [achievement]", got)
	}
	if report.CompletedTasks != 2 || report.PendingTasks != 0 {
		t.Errorf("counts: got %d/%d, want 2/0", report.CompletedTasks, report.PendingTasks)
	}
	if report.AverageStars != 4.5 {
		t.Errorf("average: got %.2f, want 4.50", report.AverageStars)
	}
}

func TestBuild_NextTaskIsEarliestDue(t *testing.T) {
	// tasks arrive due-date ascending from the store.
	t1 := task("First", testNow.Add(72*time.Hour))
	t2 := task("Second", testNow.Add(96*time.Hour))

	report := Build("Ada", []models.Task{t1, t2}, nil, testNow)

	if len(report.Suggestions) == 0 || report.Suggestions[0].Type != TypeNextTask {
		t.Fatalf("first suggestion: got %v", types(report))
	}
	if report.Suggestions[0].TaskID == nil || *report.Suggestions[0].TaskID != t1.ID {
		t.Error("next_task should reference the earliest-due pending task")
	}
	if report.AverageStars != 0 {
		t.Errorf("average with no reviews: got %.2f, want 0", report.AverageStars)
	}
}

func TestBuild_ImprovementBelowThree(t *testing.T) {
	done := task("Done", testNow.Add(-24*time.Hour))
	open := task("Open", testNow.Add(120*time.Hour))
	subs := []models.Submission{reviewedSub(done.ID, 2)}

	report := Build("Ada", []models.Task{done, open}, subs, testNow)

	got := types(report)
	if len(got) != 2 || got[1] != TypeImprovement {
		t.Fatalf("suggestions: got %v, want [next_task improvement]", got)
	}
}

func TestBuild_ExcellenceAtFourOrAbove(t *testing.T) {
	done := task("Done", testNow.Add(-24*time.Hour))
	open := task("Open", testNow.Add(120*time.Hour))
	subs := []models.Submission{reviewedSub(done.ID, 4)}

	report := Build("Ada", []models.Task{done, open}, subs, testNow)

	got := types(report)
	if len(got) != 2 || got[1] != TypeExcellence {
		t.Fatalf("suggestions: got %v, want [next_task excellence]", got)
	}
}

func TestBuild_MiddlingAverageNoPerformanceMessage(t *testing.T) {
	done := task("Done", testNow.Add(-24*time.Hour))
	open := task("Open", testNow.Add(120*time.Hour))
	subs := []models.Submission{reviewedSub(done.ID, 3)}

	report := Build("Ada", []models.Task{done, open}, subs, testNow)

	if got := types(report); len(got) != 1 || got[0] != TypeNextTask {
		t.Fatalf("suggestions: got %v, want [next_task]", got)
	}
}

func TestBuild_TimeManagement(t *testing.T) {
	urgent1 := task("Urgent 1", testNow.Add(12*time.Hour))
	urgent2 := task("Urgent 2", testNow.Add(36*time.Hour))
	later := task("Later", testNow.Add(200*time.Hour))

	report := Build("Ada", []models.Task{urgent1, urgent2, later}, nil, testNow)

	got := types(report)
	if len(got) != 2 || got[1] != TypeTimeManagement {
		t.Fatalf("suggestions: got %v, want [next_task time_management]", got)
	}
	tm := report.Suggestions[1]
	if len(tm.UrgentTasks) != 2 {
		t.Fatalf("urgent tasks: got %d, want 2", len(tm.UrgentTasks))
	}
	// Exactly the tasks inside the 48h window, in due order.
	if tm.UrgentTasks[0].ID != urgent1.ID || tm.UrgentTasks[1].ID != urgent2.ID {
		t.Error("urgent list should contain only the tasks due within 48h, due date ascending")
	}
}

func TestBuild_SinglePendingNoTimeManagement(t *testing.T) {
	only := task("Only", testNow.Add(6*time.Hour))

	report := Build("Ada", []models.Task{only}, nil, testNow)

	for _, s := range report.Suggestions {
		if s.Type == TypeTimeManagement {
			t.Fatal("time_management requires more than one pending task")
		}
	}
}

func TestBuild_NoPendingDueSoonNoTimeManagement(t *testing.T) {
	far1 := task("Far 1", testNow.Add(100*time.Hour))
	far2 := task("Far 2", testNow.Add(120*time.Hour))

	report := Build("Ada", []models.Task{far1, far2}, nil, testNow)

	if got := types(report); len(got) != 1 || got[0] != TypeNextTask {
		t.Fatalf("suggestions: got %v, want [next_task]", got)
	}
}

func TestBuild_NoTasksAtAll(t *testing.T) {
	report := Build("Ada", nil, nil, testNow)

	if got := types(report); len(got) != 1 || got[0] != TypeAchievement {
		t.Fatalf("suggestions: got %v, want [achievement]", got)
	}
	if report.CompletedTasks != 0 || report.PendingTasks != 0 || report.AverageStars != 0 {
		t.Errorf("counts: got %+v", report)
	}
}
