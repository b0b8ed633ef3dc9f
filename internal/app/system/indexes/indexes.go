// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureBatches(ctx, db); err != nil {
		problems = append(problems, "batches: "+err.Error())
	}
	if err := ensureRoadmaps(ctx, db); err != nil {
		problems = append(problems, "roadmaps: "+err.Error())
	}
	if err := ensureTasks(ctx, db); err != nil {
		problems = append(problems, "tasks: "+err.Error())
	}
	if err := ensureSubmissions(ctx, db); err != nil {
		problems = append(problems, "submissions: "+err.Error())
	}
	if err := ensureDoubts(ctx, db); err != nil {
		problems = append(problems, "doubts: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	av := false
	bv := false
	if a != nil {
		av = *a
	}
	if b != nil {
		bv = *b
	}
	return av == bv
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 { // E11000 duplicate key error index
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// Mongo/DocDB sometimes returns IndexOptionsConflict when an index with the
// same keys already exists under a different name (or options differ).
func isOptionsConflictErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "IndexOptionsConflict")
}

// dupHint points operators at the offending data when a unique index
// cannot be built over existing documents.
func dupHint(collName, desiredSig string) string {
	if collName == "users" && strings.Contains(desiredSig, "email:1") {
		return " — duplicates exist on users.email. Example finder:\n" +
			`db.users.aggregate([{ $group: { _id: "$email", n: { $sum: 1 } } }, { $match: { n: { $gt: 1 } } }])`
	}
	if collName == "submissions" && strings.Contains(desiredSig, "student_id:1") {
		return " — duplicate submissions exist for the same (student_id, task_id) pair"
	}
	return ""
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		var desiredName string
		var desiredUnique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			if m.Options.Unique != nil {
				desiredUnique = m.Options.Unique
			}
		}
		desiredSig := keySig(m.Keys.(bson.D))

		start := time.Now()
		zap.L().Info("ensuring index",
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", desiredSig),
			zap.Bool("unique", desiredUnique != nil && *desiredUnique))

		// 1) Load existing indexes
		existing := map[string]existingIndex{} // sig -> index
		cur, err := coll.Indexes().List(ctx)
		if err == nil {
			for cur.Next(ctx) {
				var idx existingIndex
				if err := cur.Decode(&idx); err != nil {
					zap.L().Warn("failed to decode existing index",
						zap.String("collection", coll.Name()),
						zap.Error(err))
					continue
				}
				existing[keySig(idx.Key)] = idx
			}
			cur.Close(ctx)
		}

		if ex, ok := existing[desiredSig]; ok {
			// Same key pattern exists already.
			if sameBoolPtr(desiredUnique, ex.Unique) {
				zap.L().Info("reusing existing index",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.String("keys", desiredSig),
					zap.Bool("unique", ex.Unique != nil && *ex.Unique),
					zap.String("took", time.Since(start).String()))
				continue
			}

			// Options mismatch (e.g., upgrading to unique). Drop & recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				zap.L().Warn("drop existing index failed",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.String("keys", desiredSig),
					zap.Error(err))
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
			if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
				if isDuplicateKeyErr(err) && desiredUnique != nil && *desiredUnique {
					errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)%s",
						coll.Name(), desiredName, dupHint(coll.Name(), desiredSig)))
				} else {
					errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
				}
				continue
			}
			zap.L().Info("index dropped and recreated",
				zap.String("collection", coll.Name()),
				zap.String("name", desiredName),
				zap.String("keys", desiredSig),
				zap.Bool("unique", desiredUnique != nil && *desiredUnique),
				zap.String("took", time.Since(start).String()))
			continue
		}

		// 2) No existing index with the same keys: create it.
		created, err := coll.Indexes().CreateOne(ctx, m)
		if err != nil {
			if isOptionsConflictErr(err) {
				// An index with these keys appeared under another name or
				// different options; drop it and retry once.
				if match := findBySig(ctx, coll, desiredSig); match != nil {
					if _, dropErr := coll.Indexes().DropOne(ctx, match.Name); dropErr != nil {
						zap.L().Warn("failed to drop conflicting index",
							zap.String("collection", coll.Name()),
							zap.String("name", match.Name),
							zap.Error(dropErr))
					}
					if _, retryErr := coll.Indexes().CreateOne(ctx, m); retryErr != nil {
						if isDuplicateKeyErr(retryErr) && desiredUnique != nil && *desiredUnique {
							errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)%s",
								coll.Name(), desiredName, dupHint(coll.Name(), desiredSig)))
						} else {
							errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, retryErr))
						}
						continue
					}
					zap.L().Info("index dropped and recreated (post-conflict)",
						zap.String("collection", coll.Name()),
						zap.String("name", desiredName),
						zap.String("keys", desiredSig),
						zap.String("took", time.Since(start).String()))
					continue
				}
			}

			zap.L().Warn("index ensure failed",
				zap.String("collection", coll.Name()),
				zap.String("name", desiredName),
				zap.String("keys", desiredSig),
				zap.Bool("unique", desiredUnique != nil && *desiredUnique),
				zap.String("took", time.Since(start).String()),
				zap.Error(err))
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
			continue
		}

		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("created_name", created),
			zap.String("keys", desiredSig),
			zap.Bool("unique", desiredUnique != nil && *desiredUnique),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// findBySig returns the existing index whose key pattern matches sig,
// or nil when none does.
func findBySig(ctx context.Context, coll *mongo.Collection, sig string) *existingIndex {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if keySig(idx.Key) == sig {
			return &idx
		}
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("users")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// 1) Email must be unique across all users
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
		},

		// 2) Role listings (admin user screens): filter by role, sort by
		//    folded name with a stable _id tiebreak
		{
			Keys: bson.D{
				{Key: "role", Value: 1},
				{Key: "name_ci", Value: 1},
				{Key: "_id", Value: 1},
			},
			Options: options.Index().SetName("idx_users_role_nameci_id"),
		},

		// 3) Batch rosters: who belongs to a batch
		{
			Keys:    bson.D{{Key: "batch_id", Value: 1}, {Key: "role", Value: 1}},
			Options: options.Index().SetName("idx_users_batch_role"),
		},

		// 4) Leaderboards: students ordered by stars, newest first on ties
		{
			Keys:    bson.D{{Key: "role", Value: 1}, {Key: "stars", Value: -1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_users_role_stars_id"),
		},
	})
}

func ensureBatches(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("batches")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Enforce global uniqueness of batch names (case/diacritics folded).
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_batches_nameci"),
		},

		// Name prefix search + stable sort
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_batches_nameci__id"),
		},
		// A tutor's batches
		{
			Keys:    bson.D{{Key: "tutor_id", Value: 1}},
			Options: options.Index().SetName("idx_batches_tutor"),
		},
	})
}

func ensureRoadmaps(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("roadmaps")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Roadmap lists are always scoped to a batch
		{
			Keys:    bson.D{{Key: "batch_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_roadmaps_batch_created"),
		},
		// Roadmaps a tutor authored
		{
			Keys:    bson.D{{Key: "created_by", Value: 1}},
			Options: options.Index().SetName("idx_roadmaps_createdby"),
		},
	})
}

func ensureTasks(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("tasks")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Task lists are scoped to a roadmap, ordered by due date
		{
			Keys:    bson.D{{Key: "roadmap_id", Value: 1}, {Key: "due_date", Value: 1}},
			Options: options.Index().SetName("idx_tasks_roadmap_due"),
		},
		// Upcoming-deadline scans for the suggestion engine
		{
			Keys:    bson.D{{Key: "due_date", Value: 1}},
			Options: options.Index().SetName("idx_tasks_due"),
		},
	})
}

func ensureSubmissions(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("submissions")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// One submission per student per task
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "task_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_submissions_student_task"),
		},
		// A student's history, newest first
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "submitted_at", Value: -1}},
			Options: options.Index().SetName("idx_submissions_student_submitted"),
		},
		// All submissions for a task (review queues)
		{
			Keys:    bson.D{{Key: "task_id", Value: 1}, {Key: "is_reviewed", Value: 1}},
			Options: options.Index().SetName("idx_submissions_task_reviewed"),
		},
	})
}

func ensureDoubts(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("doubts")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// A student's doubts, newest first
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "submitted_at", Value: -1}},
			Options: options.Index().SetName("idx_doubts_student_submitted"),
		},
		// Unresolved queue for tutors
		{
			Keys:    bson.D{{Key: "is_resolved", Value: 1}, {Key: "submitted_at", Value: -1}},
			Options: options.Index().SetName("idx_doubts_resolved_submitted"),
		},
	})
}
