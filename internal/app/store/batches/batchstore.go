package batchstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/studytrack/internal/app/system/normalize"
	"github.com/dalemusser/studytrack/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("batches")}
}

// ErrDuplicateName is returned when a batch with the same folded name already exists.
var ErrDuplicateName = errors.New("a batch with this name already exists")

// GetByID loads a batch by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Batch, error) {
	var b models.Batch
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Insert creates a batch document. Roster consistency with users is the
// membership manager's job; this only writes the batch.
func (s *Store) Insert(ctx context.Context, b models.Batch) (models.Batch, error) {
	b.ID = primitive.NewObjectID()
	b.Name = normalize.Name(b.Name)
	b.NameCI = text.Fold(b.Name)
	if b.StudentIDs == nil {
		b.StudentIDs = []primitive.ObjectID{}
	}

	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, b); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Batch{}, ErrDuplicateName
		}
		return models.Batch{}, err
	}
	return b, nil
}

// List returns all batches ordered by folded name.
func (s *Store) List(ctx context.Context) ([]models.Batch, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var batches []models.Batch
	if err := cur.All(ctx, &batches); err != nil {
		return nil, err
	}
	return batches, nil
}

// FindByTutor returns the batches assigned to tutorID.
func (s *Store) FindByTutor(ctx context.Context, tutorID primitive.ObjectID) ([]models.Batch, error) {
	cur, err := s.c.Find(ctx, bson.M{"tutor_id": tutorID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var batches []models.Batch
	if err := cur.All(ctx, &batches); err != nil {
		return nil, err
	}
	return batches, nil
}

// SetName renames a batch. Returns ErrDuplicateName when the folded name
// collides with another batch.
func (s *Store) SetName(ctx context.Context, id primitive.ObjectID, name string) error {
	name = normalize.Name(name)
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"name":       name,
		"name_ci":    text.Fold(name),
		"updated_at": time.Now(),
	}})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateName
		}
		return err
	}
	return nil
}

// SetTutor points a batch at a tutor, or clears the slot when tutorID is nil.
func (s *Store) SetTutor(ctx context.Context, id primitive.ObjectID, tutorID *primitive.ObjectID) error {
	if tutorID == nil {
		_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
			"$set":   bson.M{"updated_at": time.Now()},
			"$unset": bson.M{"tutor_id": ""},
		})
		return err
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"tutor_id":   *tutorID,
		"updated_at": time.Now(),
	}})
	return err
}

// AddStudentID appends a student to the roster. $addToSet keeps the
// roster duplicate-free even under concurrent adds.
func (s *Store) AddStudentID(ctx context.Context, id, studentID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$addToSet": bson.M{"student_ids": studentID},
		"$set":      bson.M{"updated_at": time.Now()},
	})
	return err
}

// RemoveStudentID pulls a student from the roster.
func (s *Store) RemoveStudentID(ctx context.Context, id, studentID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$pull": bson.M{"student_ids": studentID},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	return err
}

// RemoveStudentEverywhere pulls a student from every roster that lists them.
func (s *Store) RemoveStudentEverywhere(ctx context.Context, studentID primitive.ObjectID) error {
	_, err := s.c.UpdateMany(ctx, bson.M{"student_ids": studentID}, bson.M{
		"$pull": bson.M{"student_ids": studentID},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	return err
}

// ClearTutorEverywhere vacates every batch the tutor is assigned to.
func (s *Store) ClearTutorEverywhere(ctx context.Context, tutorID primitive.ObjectID) error {
	_, err := s.c.UpdateMany(ctx, bson.M{"tutor_id": tutorID}, bson.M{
		"$set":   bson.M{"updated_at": time.Now()},
		"$unset": bson.M{"tutor_id": ""},
	})
	return err
}

// Delete removes a batch by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Count returns the number of batches.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
