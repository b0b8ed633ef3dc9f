// internal/domain/models/doubt.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Doubt is a free-form question a student raises for their tutor.
type Doubt struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	StudentID   primitive.ObjectID `bson:"student_id" json:"student_id"`
	Question    string             `bson:"question" json:"question"`
	SubmittedAt time.Time          `bson:"submitted_at" json:"submitted_at"`
	IsResolved  bool               `bson:"is_resolved" json:"is_resolved"`
	Reply       string             `bson:"reply" json:"reply"`
}
