// Package membership keeps users and batches consistent with each
// other. A batch lists its students and tutor; each user points back at
// its batch. Every mutation that touches both sides runs inside a
// transaction so the two collections never disagree.
package membership

import (
	"context"
	"errors"

	batchstore "github.com/dalemusser/studytrack/internal/app/store/batches"
	userstore "github.com/dalemusser/studytrack/internal/app/store/users"
	"github.com/dalemusser/studytrack/internal/app/system/txn"
	"github.com/dalemusser/studytrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	// ErrBatchNotFound is returned when the referenced batch does not exist.
	ErrBatchNotFound = errors.New("batch not found")
	// ErrUserNotFound is returned when a referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrNotATutor is returned when a user assigned as tutor has another role.
	ErrNotATutor = errors.New("user is not a tutor")
	// ErrNotAStudent is returned when a user enrolled as student has another role.
	ErrNotAStudent = errors.New("user is not a student")
	// ErrAlreadyInBatch is returned when enrolling a student already on the roster.
	ErrAlreadyInBatch = errors.New("student is already in this batch")
	// ErrNotInBatch is returned when removing a student who is not on the roster.
	ErrNotInBatch = errors.New("student is not in this batch")
)

// Manager coordinates membership mutations across users and batches.
type Manager struct {
	db      *mongo.Database
	users   *userstore.Store
	batches *batchstore.Store
	log     *zap.Logger
}

// NewManager builds a Manager over db.
func NewManager(db *mongo.Database, log *zap.Logger) *Manager {
	return &Manager{
		db:      db,
		users:   userstore.New(db),
		batches: batchstore.New(db),
		log:     log,
	}
}

// requireTutor loads userID and confirms the tutor role.
func (m *Manager) requireTutor(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	u, err := m.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if u.Role != "tutor" {
		return nil, ErrNotATutor
	}
	return u, nil
}

// requireStudent loads userID and confirms the student role.
func (m *Manager) requireStudent(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	u, err := m.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if u.Role != "student" {
		return nil, ErrNotAStudent
	}
	return u, nil
}

// loadBatch loads batchID or reports ErrBatchNotFound.
func (m *Manager) loadBatch(ctx context.Context, batchID primitive.ObjectID) (*models.Batch, error) {
	b, err := m.batches.GetByID(ctx, batchID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrBatchNotFound
		}
		return nil, err
	}
	return b, nil
}

// dedupe returns ids with duplicates removed, preserving order.
func dedupe(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// CreateBatch creates a batch with an optional tutor and initial roster.
// The tutor must hold the tutor role and every student the student role.
// Students and the tutor already attached to other batches are moved:
// their previous enrollment is cleared before the new one is written.
func (m *Manager) CreateBatch(ctx context.Context, name string, tutorID *primitive.ObjectID, studentIDs []primitive.ObjectID) (models.Batch, error) {
	if tutorID != nil {
		if _, err := m.requireTutor(ctx, *tutorID); err != nil {
			return models.Batch{}, err
		}
	}
	studentIDs = dedupe(studentIDs)
	for _, sid := range studentIDs {
		if _, err := m.requireStudent(ctx, sid); err != nil {
			return models.Batch{}, err
		}
	}

	var created models.Batch
	err := txn.Run(ctx, m.db, m.log, func(ctx context.Context) error {
		// Detach everyone from their old batches before the insert, so
		// the clears cannot touch the new batch document.
		if tutorID != nil {
			if err := m.batches.ClearTutorEverywhere(ctx, *tutorID); err != nil {
				return err
			}
		}
		for _, sid := range studentIDs {
			if err := m.batches.RemoveStudentEverywhere(ctx, sid); err != nil {
				return err
			}
		}

		b, err := m.batches.Insert(ctx, models.Batch{
			Name:       name,
			TutorID:    tutorID,
			StudentIDs: studentIDs,
		})
		if err != nil {
			return err
		}

		if tutorID != nil {
			if err := m.users.SetBatch(ctx, *tutorID, &b.ID); err != nil {
				return err
			}
		}
		for _, sid := range studentIDs {
			if err := m.users.SetBatch(ctx, sid, &b.ID); err != nil {
				return err
			}
		}
		created = b
		return nil
	})
	if err != nil {
		return models.Batch{}, err
	}
	return created, nil
}

// placeTutor clears the tutor's previous batch assignment (if any) and
// points the tutor at batchID. The batch document's tutor_id is the
// caller's responsibility.
func (m *Manager) placeTutor(ctx context.Context, batchID, tutorID primitive.ObjectID) error {
	if err := m.batches.ClearTutorEverywhere(ctx, tutorID); err != nil {
		return err
	}
	return m.users.SetBatch(ctx, tutorID, &batchID)
}

// moveStudent detaches the student from any prior roster, appends them
// to batchID's roster, and points their batch_id at batchID.
func (m *Manager) moveStudent(ctx context.Context, batchID, studentID primitive.ObjectID) error {
	if err := m.batches.RemoveStudentEverywhere(ctx, studentID); err != nil {
		return err
	}
	if err := m.batches.AddStudentID(ctx, batchID, studentID); err != nil {
		return err
	}
	return m.users.SetBatch(ctx, studentID, &batchID)
}

// BatchUpdate carries the optional fields of UpdateBatch. Nil means
// leave unchanged.
type BatchUpdate struct {
	Name       *string
	TutorID    *primitive.ObjectID
	StudentIDs *[]primitive.ObjectID
}

// UpdateBatch applies a partial update. A new tutor replaces and
// detaches the previous one. A new student list is diffed against the
// current roster: dropped students are detached, added students are
// moved in, unchanged students are untouched.
func (m *Manager) UpdateBatch(ctx context.Context, batchID primitive.ObjectID, upd BatchUpdate) error {
	b, err := m.loadBatch(ctx, batchID)
	if err != nil {
		return err
	}

	if upd.TutorID != nil {
		if _, err := m.requireTutor(ctx, *upd.TutorID); err != nil {
			return err
		}
	}

	var added, removed []primitive.ObjectID
	if upd.StudentIDs != nil {
		next := dedupe(*upd.StudentIDs)
		for _, sid := range next {
			if _, err := m.requireStudent(ctx, sid); err != nil {
				return err
			}
		}
		current := make(map[primitive.ObjectID]struct{}, len(b.StudentIDs))
		for _, sid := range b.StudentIDs {
			current[sid] = struct{}{}
		}
		nextSet := make(map[primitive.ObjectID]struct{}, len(next))
		for _, sid := range next {
			nextSet[sid] = struct{}{}
			if _, ok := current[sid]; !ok {
				added = append(added, sid)
			}
		}
		for _, sid := range b.StudentIDs {
			if _, ok := nextSet[sid]; !ok {
				removed = append(removed, sid)
			}
		}
	}

	return txn.Run(ctx, m.db, m.log, func(ctx context.Context) error {
		if upd.Name != nil {
			if err := m.batches.SetName(ctx, batchID, *upd.Name); err != nil {
				return err
			}
		}

		if upd.TutorID != nil {
			if b.TutorID != nil && *b.TutorID != *upd.TutorID {
				if err := m.users.SetBatch(ctx, *b.TutorID, nil); err != nil {
					return err
				}
			}
			if err := m.placeTutor(ctx, batchID, *upd.TutorID); err != nil {
				return err
			}
			if err := m.batches.SetTutor(ctx, batchID, upd.TutorID); err != nil {
				return err
			}
		}

		for _, sid := range removed {
			if err := m.batches.RemoveStudentID(ctx, batchID, sid); err != nil {
				return err
			}
			if err := m.users.SetBatch(ctx, sid, nil); err != nil {
				return err
			}
		}
		for _, sid := range added {
			if err := m.moveStudent(ctx, batchID, sid); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteBatch removes the batch and clears the batch pointer on its
// tutor and every enrolled student.
func (m *Manager) DeleteBatch(ctx context.Context, batchID primitive.ObjectID) error {
	if _, err := m.loadBatch(ctx, batchID); err != nil {
		return err
	}

	return txn.Run(ctx, m.db, m.log, func(ctx context.Context) error {
		if err := m.users.ClearBatchForAll(ctx, batchID); err != nil {
			return err
		}
		n, err := m.batches.Delete(ctx, batchID)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrBatchNotFound
		}
		return nil
	})
}

// AddStudent enrolls a student in a batch. A student already on this
// roster is a conflict; a student enrolled elsewhere is moved.
func (m *Manager) AddStudent(ctx context.Context, batchID, studentID primitive.ObjectID) error {
	b, err := m.loadBatch(ctx, batchID)
	if err != nil {
		return err
	}
	if _, err := m.requireStudent(ctx, studentID); err != nil {
		return err
	}
	if b.HasStudent(studentID) {
		return ErrAlreadyInBatch
	}

	return txn.Run(ctx, m.db, m.log, func(ctx context.Context) error {
		return m.moveStudent(ctx, batchID, studentID)
	})
}

// RemoveStudent takes a student off a batch's roster and clears their
// batch pointer.
func (m *Manager) RemoveStudent(ctx context.Context, batchID, studentID primitive.ObjectID) error {
	b, err := m.loadBatch(ctx, batchID)
	if err != nil {
		return err
	}
	if !b.HasStudent(studentID) {
		return ErrNotInBatch
	}

	return txn.Run(ctx, m.db, m.log, func(ctx context.Context) error {
		if err := m.batches.RemoveStudentID(ctx, batchID, studentID); err != nil {
			return err
		}
		return m.users.SetBatch(ctx, studentID, nil)
	})
}

// AssignTutor puts a tutor in charge of a batch, detaching the previous
// tutor of the batch and the new tutor's previous batch.
func (m *Manager) AssignTutor(ctx context.Context, batchID, tutorID primitive.ObjectID) error {
	b, err := m.loadBatch(ctx, batchID)
	if err != nil {
		return err
	}
	if _, err := m.requireTutor(ctx, tutorID); err != nil {
		return err
	}

	return txn.Run(ctx, m.db, m.log, func(ctx context.Context) error {
		if b.TutorID != nil && *b.TutorID != tutorID {
			if err := m.users.SetBatch(ctx, *b.TutorID, nil); err != nil {
				return err
			}
		}
		if err := m.placeTutor(ctx, batchID, tutorID); err != nil {
			return err
		}
		return m.batches.SetTutor(ctx, batchID, &tutorID)
	})
}

// UserChange carries the membership-relevant parts of a user update.
type UserChange struct {
	Role       *string              // nil leaves the role alone
	BatchID    *primitive.ObjectID  // nil leaves the assignment alone
	ClearBatch bool                 // true detaches the user from any batch
}

// ApplyUserChange applies a role and/or batch change to a user, keeping
// both collections consistent. Changing away from tutor vacates any
// batch the user tutors; changing to tutor pulls the user off any
// student roster. A batch move enrolls the user on the side matching
// their (possibly new) role.
func (m *Manager) ApplyUserChange(ctx context.Context, userID primitive.ObjectID, ch UserChange) error {
	u, err := m.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}
		return err
	}

	role := u.Role
	if ch.Role != nil {
		role = *ch.Role
	}

	if ch.BatchID != nil {
		if _, err := m.loadBatch(ctx, *ch.BatchID); err != nil {
			return err
		}
	}

	return txn.Run(ctx, m.db, m.log, func(ctx context.Context) error {
		if ch.Role != nil && *ch.Role != u.Role {
			if u.Role == "tutor" {
				if err := m.batches.ClearTutorEverywhere(ctx, userID); err != nil {
					return err
				}
			}
			if *ch.Role == "tutor" || u.Role == "student" {
				if err := m.batches.RemoveStudentEverywhere(ctx, userID); err != nil {
					return err
				}
			}
			if err := m.users.SetRole(ctx, userID, *ch.Role); err != nil {
				return err
			}
			// A role change invalidates the old assignment unless a new
			// one is being set in the same call.
			if ch.BatchID == nil && !ch.ClearBatch {
				if err := m.users.SetBatch(ctx, userID, nil); err != nil {
					return err
				}
			}
		}

		if ch.ClearBatch {
			return m.detach(ctx, userID, role)
		}

		if ch.BatchID != nil {
			switch role {
			case "student":
				return m.moveStudent(ctx, *ch.BatchID, userID)
			case "tutor":
				b, err := m.loadBatch(ctx, *ch.BatchID)
				if err != nil {
					return err
				}
				if b.TutorID != nil && *b.TutorID != userID {
					if err := m.users.SetBatch(ctx, *b.TutorID, nil); err != nil {
						return err
					}
				}
				if err := m.placeTutor(ctx, *ch.BatchID, userID); err != nil {
					return err
				}
				return m.batches.SetTutor(ctx, *ch.BatchID, &userID)
			default:
				// Admins do not belong to batches.
				return m.users.SetBatch(ctx, userID, nil)
			}
		}
		return nil
	})
}

// detach removes the user from whichever side of a batch matches role
// and clears their batch pointer.
func (m *Manager) detach(ctx context.Context, userID primitive.ObjectID, role string) error {
	switch role {
	case "tutor":
		if err := m.batches.ClearTutorEverywhere(ctx, userID); err != nil {
			return err
		}
	case "student":
		if err := m.batches.RemoveStudentEverywhere(ctx, userID); err != nil {
			return err
		}
	}
	return m.users.SetBatch(ctx, userID, nil)
}

// DeleteUser removes a user after detaching them from any batch, all
// inside one transaction.
func (m *Manager) DeleteUser(ctx context.Context, userID primitive.ObjectID) error {
	u, err := m.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}
		return err
	}

	return txn.Run(ctx, m.db, m.log, func(ctx context.Context) error {
		if err := m.detach(ctx, userID, u.Role); err != nil {
			return err
		}
		n, err := m.users.Delete(ctx, userID)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}
