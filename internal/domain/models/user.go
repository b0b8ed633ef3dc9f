// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents admins, tutors, and students.
//
// NOTE:
//   - BatchID is the only membership field stored on the user side.
//     The batch side holds the mirror (Batch.TutorID / Batch.StudentIDs),
//     and the membership manager keeps both in sync.
type User struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name         string              `bson:"name" json:"name"`
	NameCI       string              `bson:"name_ci" json:"-"` // lowercase, diacritics-stripped
	Email        string              `bson:"email" json:"email"`
	PasswordHash string              `bson:"password_hash" json:"-"`
	Role         string              `bson:"role" json:"role"` // admin | tutor | student
	BatchID      *primitive.ObjectID `bson:"batch_id,omitempty" json:"batch_id,omitempty"`
	Stars        int                 `bson:"stars" json:"stars"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
