// internal/domain/models/roadmap.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roadmap is a named collection of tasks assigned to a batch.
type Roadmap struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	BatchID     primitive.ObjectID `bson:"batch_id" json:"batch_id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	CreatedBy   primitive.ObjectID `bson:"created_by" json:"created_by"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
