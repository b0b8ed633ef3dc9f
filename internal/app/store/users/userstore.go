package userstore

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
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	errBadRole        = errors.New(`role must be "admin"|"tutor"|"student"`)
)

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetStudentByID loads a user by ObjectID, returning an error if the user
// does not exist or is not a student.
func (s *Store) GetStudentByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "role": "student"}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetTutorByID loads a user by ObjectID, returning an error if the user
// does not exist or is not a tutor.
func (s *Store) GetTutorByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "role": "tutor"}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing & validating fields.
// It does not touch any batch roster; callers go through the membership
// manager for enrollment.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Name = normalize.Name(u.Name)
	u.NameCI = text.Fold(u.Name)
	u.Email = normalize.Email(u.Email)
	u.Role = normalize.Role(u.Role)

	switch u.Role {
	case "admin", "tutor", "student":
		// ok
	default:
		return models.User{}, errBadRole
	}

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// ListByRole returns all users with the given role, ordered by folded name.
func (s *Store) ListByRole(ctx context.Context, role string) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"role": normalize.Role(role)}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ListByBatch returns every user assigned to the given batch.
func (s *Store) ListByBatch(ctx context.Context, batchID primitive.ObjectID) ([]models.User, error) {
	cur, err := s.c.Find(ctx, bson.M{"batch_id": batchID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ListByIDs loads the users whose IDs are in ids. Missing IDs are
// silently absent from the result.
func (s *Store) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// TopStudents returns students ordered by stars descending, limited to n.
// When batchID is non-nil only that batch's students are considered.
func (s *Store) TopStudents(ctx context.Context, batchID *primitive.ObjectID, n int64) ([]models.User, error) {
	filter := bson.M{"role": "student"}
	if batchID != nil {
		filter["batch_id"] = *batchID
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "stars", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(n)
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateNameEmail rewrites a user's name and email.
// Returns ErrDuplicateEmail if the email already belongs to another user.
func (s *Store) UpdateNameEmail(ctx context.Context, id primitive.ObjectID, name, email string) error {
	name = normalize.Name(name)
	set := bson.M{
		"name":       name,
		"name_ci":    text.Fold(name),
		"email":      normalize.Email(email),
		"updated_at": time.Now(),
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// SetRole rewrites a user's role. Membership side effects are the
// manager's job; this only flips the field.
func (s *Store) SetRole(ctx context.Context, id primitive.ObjectID, role string) error {
	role = normalize.Role(role)
	switch role {
	case "admin", "tutor", "student":
	default:
		return errBadRole
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"role":       role,
		"updated_at": time.Now(),
	}})
	return err
}

// SetBatch points a user at a batch, or clears the assignment when
// batchID is nil.
func (s *Store) SetBatch(ctx context.Context, id primitive.ObjectID, batchID *primitive.ObjectID) error {
	update := bson.M{"updated_at": time.Now()}
	if batchID == nil {
		_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
			"$set":   update,
			"$unset": bson.M{"batch_id": ""},
		})
		return err
	}
	update["batch_id"] = *batchID
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	return err
}

// ClearBatchForAll clears batch_id on every user pointing at batchID.
func (s *Store) ClearBatchForAll(ctx context.Context, batchID primitive.ObjectID) error {
	_, err := s.c.UpdateMany(ctx, bson.M{"batch_id": batchID}, bson.M{
		"$set":   bson.M{"updated_at": time.Now()},
		"$unset": bson.M{"batch_id": ""},
	})
	return err
}

// AddStars increments a student's star total.
func (s *Store) AddStars(ctx context.Context, id primitive.ObjectID, n int) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"stars": n},
		"$set": bson.M{"updated_at": time.Now()},
	})
	return err
}

// Delete removes a user by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountByRole counts users with the given role.
func (s *Store) CountByRole(ctx context.Context, role string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"role": normalize.Role(role)})
}

// EmailExistsForOther checks if an email already exists for a user other than the given ID.
func (s *Store) EmailExistsForOther(ctx context.Context, email string, excludeID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"email": normalize.Email(email),
		"_id":   bson.M{"$ne": excludeID},
	}).Err()
	if err == nil {
		return true, nil // found another user with this email
	}
	if err == mongo.ErrNoDocuments {
		return false, nil // no duplicate
	}
	return false, err // actual error
}
