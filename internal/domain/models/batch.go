// internal/domain/models/batch.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Batch is a cohort of students supervised by at most one tutor.
//
// TutorID and StudentIDs mirror User.BatchID on the user side; both sides
// are maintained together by the membership manager, never written directly
// by handlers.
type Batch struct {
	ID         primitive.ObjectID   `bson:"_id" json:"id"`
	Name       string               `bson:"name" json:"name"`
	NameCI     string               `bson:"name_ci" json:"-"`
	TutorID    *primitive.ObjectID  `bson:"tutor_id,omitempty" json:"tutor_id,omitempty"`
	StudentIDs []primitive.ObjectID `bson:"student_ids" json:"student_ids"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasStudent reports whether id is in the batch's student set.
func (b *Batch) HasStudent(id primitive.ObjectID) bool {
	for _, sid := range b.StudentIDs {
		if sid == id {
			return true
		}
	}
	return false
}
