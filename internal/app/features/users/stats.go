package users

import (
	"context"
	"net/http"

	"github.com/dalemusser/studytrack/internal/app/system/authz"
	"github.com/dalemusser/studytrack/internal/app/system/respond"
	"github.com/dalemusser/studytrack/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type topStudent struct {
	ID        primitive.ObjectID `json:"id"`
	Name      string             `json:"name"`
	Email     string             `json:"email"`
	Stars     int                `json:"stars"`
	BatchName string             `json:"batchName"`
}

type adminStats struct {
	TotalBatches  int64        `json:"totalBatches"`
	TotalTutors   int64        `json:"totalTutors"`
	TotalStudents int64        `json:"totalStudents"`
	TopStudents   []topStudent `json:"topStudents"`
}

// ServeAdminStats returns platform-wide counts and the star leaderboard.
// GET /users/admin/stats
func (h *Handler) ServeAdminStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	out := adminStats{TopStudents: []topStudent{}}

	var err error
	if out.TotalBatches, err = h.Batches.Count(ctx); err != nil {
		h.ErrLog.ServerError(w, r, err, "count batches failed")
		return
	}
	if out.TotalTutors, err = h.Users.CountByRole(ctx, authz.RoleTutor); err != nil {
		h.ErrLog.ServerError(w, r, err, "count tutors failed")
		return
	}
	if out.TotalStudents, err = h.Users.CountByRole(ctx, authz.RoleStudent); err != nil {
		h.ErrLog.ServerError(w, r, err, "count students failed")
		return
	}

	top, err := h.Users.TopStudents(ctx, nil, 10)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "load top students failed")
		return
	}

	// Resolve batch names once per distinct batch.
	names := map[primitive.ObjectID]string{}
	for _, s := range top {
		name := "No Batch"
		if s.BatchID != nil {
			if cached, ok := names[*s.BatchID]; ok {
				name = cached
			} else if b, err := h.Batches.GetByID(ctx, *s.BatchID); err == nil {
				name = b.Name
				names[*s.BatchID] = name
			}
		}
		out.TopStudents = append(out.TopStudents, topStudent{
			ID:        s.ID,
			Name:      s.Name,
			Email:     s.Email,
			Stars:     s.Stars,
			BatchName: name,
		})
	}

	respond.JSON(w, http.StatusOK, out)
}

type tutorStats struct {
	BatchName          string `json:"batchName"`
	TotalStudents      int    `json:"totalStudents"`
	TasksCreated       int64  `json:"tasksCreated"`
	PendingSubmissions int64  `json:"pendingSubmissions"`
}

// ServeTutorStats returns the signed-in tutor's batch overview.
// GET /users/tutor/stats
func (h *Handler) ServeTutorStats(w http.ResponseWriter, r *http.Request) {
	_, _, tutorID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Sign in required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	batches, err := h.Batches.FindByTutor(ctx, tutorID)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "load tutor batches failed")
		return
	}
	if len(batches) == 0 {
		respond.JSON(w, http.StatusOK, tutorStats{BatchName: "No Batch Assigned"})
		return
	}
	batch := batches[0]

	roadmapIDs, err := h.Roadmaps.IDsByBatch(ctx, batch.ID)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "load roadmaps failed")
		return
	}

	out := tutorStats{
		BatchName:     batch.Name,
		TotalStudents: len(batch.StudentIDs),
	}
	if len(roadmapIDs) > 0 {
		if out.TasksCreated, err = h.Tasks.CountByRoadmaps(ctx, roadmapIDs); err != nil {
			h.ErrLog.ServerError(w, r, err, "count tasks failed")
			return
		}
	}
	if len(batch.StudentIDs) > 0 {
		if out.PendingSubmissions, err = h.Submissions.CountPendingByStudents(ctx, batch.StudentIDs); err != nil {
			h.ErrLog.ServerError(w, r, err, "count pending submissions failed")
			return
		}
	}

	respond.JSON(w, http.StatusOK, out)
}

type studentStats struct {
	BatchName      string `json:"batchName"`
	TutorName      string `json:"tutorName"`
	CompletedTasks int64  `json:"completedTasks"`
	PendingTasks   int64  `json:"pendingTasks"`
	Stars          int    `json:"stars"`
	Rank           int    `json:"rank"`
}

// ServeStudentStats returns the signed-in student's progress summary.
// Rank is the 1-based position on the batch star leaderboard; 0 when
// the student has no batch.
// GET /users/student/stats
func (h *Handler) ServeStudentStats(w http.ResponseWriter, r *http.Request) {
	_, _, studentID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Sign in required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	student, err := h.Users.GetByID(ctx, studentID)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "load student failed")
		return
	}

	if student.BatchID == nil {
		respond.JSON(w, http.StatusOK, studentStats{
			BatchName: "No Batch Assigned",
			TutorName: "No Tutor Assigned",
			Stars:     student.Stars,
		})
		return
	}

	batch, err := h.Batches.GetByID(ctx, *student.BatchID)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "load batch failed")
		return
	}

	tutorName := "No Tutor Assigned"
	if batch.TutorID != nil {
		if tutor, err := h.Users.GetByID(ctx, *batch.TutorID); err == nil {
			tutorName = tutor.Name
		}
	}

	total, err := h.Submissions.CountByStudent(ctx, studentID)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "count submissions failed")
		return
	}
	pendingReview, err := h.Submissions.CountPendingByStudents(ctx, []primitive.ObjectID{studentID})
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "count pending submissions failed")
		return
	}

	roadmapIDs, err := h.Roadmaps.IDsByBatch(ctx, batch.ID)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "load roadmaps failed")
		return
	}
	var totalTasks int64
	if len(roadmapIDs) > 0 {
		if totalTasks, err = h.Tasks.CountByRoadmaps(ctx, roadmapIDs); err != nil {
			h.ErrLog.ServerError(w, r, err, "count tasks failed")
			return
		}
	}

	rank := 0
	leaders, err := h.Users.TopStudents(ctx, &batch.ID, int64(len(batch.StudentIDs)))
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "rank students failed")
		return
	}
	for i, s := range leaders {
		if s.ID == studentID {
			rank = i + 1
			break
		}
	}

	pendingTasks := totalTasks - total
	if pendingTasks < 0 {
		pendingTasks = 0
	}

	respond.JSON(w, http.StatusOK, studentStats{
		BatchName:      batch.Name,
		TutorName:      tutorName,
		CompletedTasks: total - pendingReview,
		PendingTasks:   pendingTasks,
		Stars:          student.Stars,
		Rank:           rank,
	})
}
