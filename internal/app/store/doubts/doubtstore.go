package doubtstore

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
	return &Store{c: db.Collection("doubts")}
}

// Create inserts a doubt raised by a student.
func (s *Store) Create(ctx context.Context, d models.Doubt) (models.Doubt, error) {
	d.ID = primitive.NewObjectID()
	d.Question = normalize.Text(d.Question)
	d.SubmittedAt = time.Now()
	d.IsResolved = false
	d.Reply = ""

	if _, err := s.c.InsertOne(ctx, d); err != nil {
		return models.Doubt{}, err
	}
	return d, nil
}

// GetByID loads a doubt by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Doubt, error) {
	var d models.Doubt
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ListByStudent returns a student's doubts, newest first.
func (s *Store) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Doubt, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"student_id": studentID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var doubts []models.Doubt
	if err := cur.All(ctx, &doubts); err != nil {
		return nil, err
	}
	return doubts, nil
}

// ListByStudents returns doubts from any of the given students, newest
// first. Tutors use this to see their batch's open questions.
func (s *Store) ListByStudents(ctx context.Context, studentIDs []primitive.ObjectID) ([]models.Doubt, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"student_id": bson.M{"$in": studentIDs}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var doubts []models.Doubt
	if err := cur.All(ctx, &doubts); err != nil {
		return nil, err
	}
	return doubts, nil
}

// Reply records a tutor's reply and marks the doubt resolved.
// Returns mongo.ErrNoDocuments when the doubt does not exist.
func (s *Store) Reply(ctx context.Context, id primitive.ObjectID, reply string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"reply":       normalize.Text(reply),
		"is_resolved": true,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
