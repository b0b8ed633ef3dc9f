package taskstore

import (
	"context"
	"time"

	"github.com/dalemusser/studytrack/internal/app/system/normalize"
	"github.com/dalemusser/studytrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("tasks")}
}

// Create inserts a task under a roadmap.
func (s *Store) Create(ctx context.Context, t models.Task) (models.Task, error) {
	t.ID = primitive.NewObjectID()
	t.Title = normalize.Name(t.Title)
	t.Description = normalize.Text(t.Description)

	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// GetByID loads a task by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	var t models.Task
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByRoadmap returns a roadmap's tasks ordered by due date.
func (s *Store) ListByRoadmap(ctx context.Context, roadmapID primitive.ObjectID) ([]models.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"roadmap_id": roadmapID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var tasks []models.Task
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListByRoadmaps returns every task under any of the given roadmaps,
// ordered by due date. Used by the suggestion engine to see a batch's
// whole task set at once.
func (s *Store) ListByRoadmaps(ctx context.Context, roadmapIDs []primitive.ObjectID) ([]models.Task, error) {
	if len(roadmapIDs) == 0 {
		return nil, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"roadmap_id": bson.M{"$in": roadmapIDs}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var tasks []models.Task
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// TaskUpdate holds the fields that can be rewritten on a task.
type TaskUpdate struct {
	Title       string
	Description string
	DueDate     time.Time
	IsDaily     bool
}

// Update rewrites a task's editable fields.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd TaskUpdate) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"title":       normalize.Name(upd.Title),
		"description": normalize.Text(upd.Description),
		"due_date":    upd.DueDate,
		"is_daily":    upd.IsDaily,
		"updated_at":  time.Now(),
	}})
	return err
}

// Delete removes a task by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByRoadmap removes every task under a roadmap (cascade on
// roadmap deletion). Returns the number deleted.
func (s *Store) DeleteByRoadmap(ctx context.Context, roadmapID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"roadmap_id": roadmapID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountByRoadmaps counts tasks under any of the given roadmaps.
func (s *Store) CountByRoadmaps(ctx context.Context, roadmapIDs []primitive.ObjectID) (int64, error) {
	if len(roadmapIDs) == 0 {
		return 0, nil
	}
	return s.c.CountDocuments(ctx, bson.M{"roadmap_id": bson.M{"$in": roadmapIDs}})
}
