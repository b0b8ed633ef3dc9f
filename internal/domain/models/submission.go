// internal/domain/models/submission.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Submission is a student's attempt at a task. At most one submission
// exists per (student, task) pair; a unique index enforces this.
//
// A submission is "reviewed" once a tutor has attached feedback and a
// star rating; the stars are also accumulated onto the student record.
type Submission struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	StudentID primitive.ObjectID `bson:"student_id" json:"student_id"`
	TaskID    primitive.ObjectID `bson:"task_id" json:"task_id"`
	Content   string             `bson:"content" json:"content"`

	// Optional uploaded attachment. FilePath is the storage key, not a URL.
	FilePath string `bson:"file_path,omitempty" json:"file_path,omitempty"`
	FileName string `bson:"file_name,omitempty" json:"file_name,omitempty"`
	FileType string `bson:"file_type,omitempty" json:"file_type,omitempty"`
	FileSize int64  `bson:"file_size,omitempty" json:"file_size,omitempty"`

	SubmittedAt time.Time  `bson:"submitted_at" json:"submitted_at"`
	Feedback    string     `bson:"feedback" json:"feedback"`
	StarsGiven  int        `bson:"stars_given" json:"stars_given"`
	IsReviewed  bool       `bson:"is_reviewed" json:"is_reviewed"`
	ReviewedAt  *time.Time `bson:"reviewed_at,omitempty" json:"reviewed_at,omitempty"`
}
