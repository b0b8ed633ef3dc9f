// internal/domain/models/task.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Task is a single unit of work inside a roadmap, with a due date.
// IsDaily marks recurring practice tasks on student dashboards.
type Task struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	RoadmapID   primitive.ObjectID `bson:"roadmap_id" json:"roadmap_id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	DueDate     time.Time          `bson:"due_date" json:"due_date"`
	IsDaily     bool               `bson:"is_daily" json:"is_daily"`
	CreatedBy   primitive.ObjectID `bson:"created_by" json:"created_by"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
