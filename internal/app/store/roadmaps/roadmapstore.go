package roadmapstore

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
	return &Store{c: db.Collection("roadmaps")}
}

// Create inserts a roadmap for a batch.
func (s *Store) Create(ctx context.Context, rm models.Roadmap) (models.Roadmap, error) {
	rm.ID = primitive.NewObjectID()
	rm.Title = normalize.Name(rm.Title)
	rm.Description = normalize.Text(rm.Description)

	now := time.Now()
	rm.CreatedAt = now
	rm.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, rm); err != nil {
		return models.Roadmap{}, err
	}
	return rm, nil
}

// GetByID loads a roadmap by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Roadmap, error) {
	var rm models.Roadmap
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&rm); err != nil {
		return nil, err
	}
	return &rm, nil
}

// ListByBatch returns a batch's roadmaps, newest first.
func (s *Store) ListByBatch(ctx context.Context, batchID primitive.ObjectID) ([]models.Roadmap, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"batch_id": batchID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var roadmaps []models.Roadmap
	if err := cur.All(ctx, &roadmaps); err != nil {
		return nil, err
	}
	return roadmaps, nil
}

// IDsByBatch returns only the roadmap IDs for a batch, for callers that
// just need to fan out to tasks.
func (s *Store) IDsByBatch(ctx context.Context, batchID primitive.ObjectID) ([]primitive.ObjectID, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cur, err := s.c.Find(ctx, bson.M{"batch_id": batchID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.ID)
	}
	return ids, cur.Err()
}

// Update rewrites a roadmap's title and description.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, title, description string) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"title":       normalize.Name(title),
		"description": normalize.Text(description),
		"updated_at":  time.Now(),
	}})
	return err
}

// Delete removes a roadmap by ID. Returns the number of documents deleted (0 or 1).
// Cascading its tasks is the caller's job.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountByBatch counts a batch's roadmaps.
func (s *Store) CountByBatch(ctx context.Context, batchID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"batch_id": batchID})
}
