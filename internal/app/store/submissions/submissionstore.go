package submissionstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/studytrack/internal/app/system/normalize"
	"github.com/dalemusser/studytrack/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("submissions")}
}

var (
	// ErrDuplicate is returned when the student already submitted for this task.
	ErrDuplicate = errors.New("a submission for this task already exists")
	// ErrAlreadyReviewed is returned when reviewing a submission twice.
	ErrAlreadyReviewed = errors.New("submission has already been reviewed")
)

// Create inserts a submission. The unique (student_id, task_id) index
// rejects a second submission for the same task.
func (s *Store) Create(ctx context.Context, sub models.Submission) (models.Submission, error) {
	sub.ID = primitive.NewObjectID()
	sub.Content = normalize.Text(sub.Content)
	sub.SubmittedAt = time.Now()
	sub.IsReviewed = false
	sub.Feedback = ""
	sub.StarsGiven = 0
	sub.ReviewedAt = nil

	if _, err := s.c.InsertOne(ctx, sub); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Submission{}, ErrDuplicate
		}
		return models.Submission{}, err
	}
	return sub, nil
}

// GetByID loads a submission by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Submission, error) {
	var sub models.Submission
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListByStudent returns a student's submissions, newest first.
func (s *Store) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Submission, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"student_id": studentID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var subs []models.Submission
	if err := cur.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// ListByStudents returns submissions from any of the given students,
// newest first. Tutors use this to see their whole batch's work.
func (s *Store) ListByStudents(ctx context.Context, studentIDs []primitive.ObjectID) ([]models.Submission, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"student_id": bson.M{"$in": studentIDs}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var subs []models.Submission
	if err := cur.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// Review records feedback and stars on an unreviewed submission.
// Returns ErrAlreadyReviewed when the submission was reviewed before,
// and mongo.ErrNoDocuments when it does not exist at all.
func (s *Store) Review(ctx context.Context, id primitive.ObjectID, feedback string, stars int) error {
	now := time.Now()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "is_reviewed": false},
		bson.M{"$set": bson.M{
			"feedback":    normalize.Text(feedback),
			"stars_given": stars,
			"is_reviewed": true,
			"reviewed_at": now,
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Distinguish missing from already-reviewed.
		if err := s.c.FindOne(ctx, bson.M{"_id": id}).Err(); err != nil {
			return err // mongo.ErrNoDocuments or real error
		}
		return ErrAlreadyReviewed
	}
	return nil
}

// Delete removes a submission by ID. Returns the number deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountByStudent counts all of a student's submissions.
func (s *Store) CountByStudent(ctx context.Context, studentID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"student_id": studentID})
}

// CountPendingByStudents counts unreviewed submissions across students.
func (s *Store) CountPendingByStudents(ctx context.Context, studentIDs []primitive.ObjectID) (int64, error) {
	if len(studentIDs) == 0 {
		return 0, nil
	}
	return s.c.CountDocuments(ctx, bson.M{
		"student_id":  bson.M{"$in": studentIDs},
		"is_reviewed": false,
	})
}

// Exists reports whether the student already submitted for the task.
func (s *Store) Exists(ctx context.Context, studentID, taskID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"student_id": studentID, "task_id": taskID}).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	return false, err
}
