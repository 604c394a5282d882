package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/logstore/core/internal/database"
	"github.com/logstore/core/internal/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) (*gorm.DB, func()) {
	tmpFile, err := os.CreateTemp("", "logstore_test_*.db")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	tmpFile.Close()

	db, err := database.InitializeWithLogger(tmpFile.Name(), logger.Default.LogMode(logger.Silent))
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("Failed to open database: %v", err)
	}

	cleanup := func() {
		database.Close(db)
		os.Remove(tmpFile.Name())
	}

	return db, cleanup
}

func seedUser(t *testing.T, db *gorm.DB, email string) uint {
	u := &models.User{Email: email, PasswordHash: "-"}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	return u.ID
}

func newTestLogService(db *gorm.DB) *LogService {
	return NewLogService(database.NewLogStore(db), nil)
}

func sampleInput(sender, message string) CreateLogInput {
	return CreateLogInput{
		SenderApplication: sender,
		Environment:       "production",
		Level:             string(models.LogLevelError),
		Message:           message,
	}
}

func senderGen() gopter.Gen {
	return gen.Identifier().SuchThat(func(s string) bool { return len(s) <= 100 })
}

// A query never returns logs owned by another user, even when the filter
// values are identical.
func TestProperty_QueriesAreScopedToOwner(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	properties.Property("each user only sees their own logs", prop.ForAll(
		func(sender string, countA, countB int) bool {
			db, cleanup := setupTestDB(t)
			defer cleanup()

			ctx := context.Background()
			svc := newTestLogService(db)
			userA := seedUser(t, db, "a@example.com")
			userB := seedUser(t, db, "b@example.com")

			for i := 0; i < countA; i++ {
				if _, err := svc.Create(ctx, userA, sampleInput(sender, fmt.Sprintf("a-%d", i))); err != nil {
					return false
				}
			}
			for i := 0; i < countB; i++ {
				if _, err := svc.Create(ctx, userB, sampleInput(sender, fmt.Sprintf("b-%d", i))); err != nil {
					return false
				}
			}

			logsA, err := svc.Query(ctx, userA, database.LogFilter{SenderApplication: sender})
			if err != nil || len(logsA) != countA {
				return false
			}
			for _, l := range logsA {
				if l.UserID != userA {
					return false
				}
			}

			logsB, err := svc.Query(ctx, userB, database.LogFilter{SenderApplication: sender})
			if countB == 0 {
				return errors.Is(err, ErrEmptyResult) && logsB == nil
			}
			if err != nil || len(logsB) != countB {
				return false
			}
			for _, l := range logsB {
				if l.UserID != userB {
					return false
				}
			}
			return true
		},
		senderGen(),
		gen.IntRange(1, 5),
		gen.IntRange(0, 5),
	))

	properties.TestingRun(t)
}

// Soft-deleting then restoring a log brings it back unchanged.
func TestProperty_SoftDeleteRestoreRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	properties.Property("restore undoes soft delete", prop.ForAll(
		func(count, pick int, message string) bool {
			db, cleanup := setupTestDB(t)
			defer cleanup()

			ctx := context.Background()
			svc := newTestLogService(db)
			userID := seedUser(t, db, "owner@example.com")

			var created []*models.Log
			for i := 0; i < count; i++ {
				l, err := svc.Create(ctx, userID, sampleInput("api", fmt.Sprintf("%s-%d", message, i)))
				if err != nil {
					return false
				}
				created = append(created, l)
			}
			before, err := svc.Query(ctx, userID, database.LogFilter{})
			if err != nil {
				return false
			}
			target := before[pick%count]

			if err := svc.SoftDelete(ctx, userID, target.ID); err != nil {
				return false
			}
			// A second soft delete finds nothing active
			if err := svc.SoftDelete(ctx, userID, target.ID); !errors.Is(err, ErrLogNotFound) {
				return false
			}

			during, err := svc.Query(ctx, userID, database.LogFilter{})
			if count == 1 {
				if !errors.Is(err, ErrEmptyResult) {
					return false
				}
			} else {
				if err != nil || len(during) != count-1 {
					return false
				}
				for _, l := range during {
					if l.ID == target.ID {
						return false
					}
				}
			}

			if err := svc.Restore(ctx, userID, target.ID); err != nil {
				return false
			}
			// Nothing left to restore
			if err := svc.Restore(ctx, userID, target.ID); !errors.Is(err, ErrLogNotFound) {
				return false
			}

			after, err := svc.Query(ctx, userID, database.LogFilter{})
			if err != nil || len(after) != len(before) {
				return false
			}
			for i := range before {
				b, a := before[i], after[i]
				if b.ID != a.ID || b.Message != a.Message || b.Level != a.Level ||
					b.Environment != a.Environment || b.SenderApplication != a.SenderApplication ||
					!b.CreatedAt.Equal(a.CreatedAt) || !b.UpdatedAt.Equal(a.UpdatedAt) {
					return false
				}
			}
			return len(created) == count
		},
		gen.IntRange(1, 5),
		gen.IntRange(0, 100),
		senderGen(),
	))

	properties.TestingRun(t)
}

// A purged log is gone for every later operation, whether it was active or
// soft-deleted when purged.
func TestProperty_PurgeIsTerminal(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	properties.Property("purged logs cannot be restored or purged again", prop.ForAll(
		func(softDeleteFirst bool) bool {
			db, cleanup := setupTestDB(t)
			defer cleanup()

			ctx := context.Background()
			svc := newTestLogService(db)
			userID := seedUser(t, db, "owner@example.com")

			l, err := svc.Create(ctx, userID, sampleInput("worker", "job failed"))
			if err != nil {
				return false
			}
			if softDeleteFirst {
				if err := svc.SoftDelete(ctx, userID, l.ID); err != nil {
					return false
				}
			}

			if err := svc.Purge(ctx, userID, l.ID); err != nil {
				return false
			}
			if err := svc.Restore(ctx, userID, l.ID); !errors.Is(err, ErrNotFound) {
				return false
			}
			if err := svc.SoftDelete(ctx, userID, l.ID); !errors.Is(err, ErrNotFound) {
				return false
			}
			if err := svc.Purge(ctx, userID, l.ID); !errors.Is(err, ErrNotFound) {
				return false
			}

			var rows int64
			db.Unscoped().Model(&models.Log{}).Where("id = ?", l.ID).Count(&rows)
			return rows == 0
		},
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// Mutations addressed at another user's log behave as if it did not exist.
func TestProperty_ForeignOwnerCannotMutate(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	properties.Property("another user's log is not found", prop.ForAll(
		func(ownerDeleted bool) bool {
			db, cleanup := setupTestDB(t)
			defer cleanup()

			ctx := context.Background()
			svc := newTestLogService(db)
			owner := seedUser(t, db, "owner@example.com")
			intruder := seedUser(t, db, "intruder@example.com")

			l, err := svc.Create(ctx, owner, sampleInput("billing", "charge declined"))
			if err != nil {
				return false
			}
			if ownerDeleted {
				if err := svc.SoftDelete(ctx, owner, l.ID); err != nil {
					return false
				}
			}

			if err := svc.SoftDelete(ctx, intruder, l.ID); !errors.Is(err, ErrNotFound) {
				return false
			}
			if err := svc.Restore(ctx, intruder, l.ID); !errors.Is(err, ErrNotFound) {
				return false
			}
			if err := svc.Purge(ctx, intruder, l.ID); !errors.Is(err, ErrNotFound) {
				return false
			}

			// The owner's log is in the state the owner left it
			var stored models.Log
			if err := db.Unscoped().First(&stored, l.ID).Error; err != nil {
				return false
			}
			return stored.DeletedAt.Valid == ownerDeleted
		},
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// Logs come back in the order they were stored.
func TestProperty_QueryPreservesInsertionOrder(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	properties.Property("query order matches insertion order", prop.ForAll(
		func(messages []string) bool {
			db, cleanup := setupTestDB(t)
			defer cleanup()

			ctx := context.Background()
			svc := newTestLogService(db)
			userID := seedUser(t, db, "owner@example.com")

			for _, m := range messages {
				if _, err := svc.Create(ctx, userID, sampleInput("api", m)); err != nil {
					return false
				}
			}

			logs, err := svc.Query(ctx, userID, database.LogFilter{})
			if err != nil || len(logs) != len(messages) {
				return false
			}
			for i, l := range logs {
				if l.Message != messages[i] {
					return false
				}
				if i > 0 && logs[i-1].ID >= l.ID {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(5, senderGen()),
	))

	properties.TestingRun(t)
}

func TestLogService_CreateRejectsInvalidInput(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	svc := newTestLogService(db)
	userID := seedUser(t, db, "owner@example.com")

	tests := []struct {
		name  string
		input CreateLogInput
		field string
	}{
		{"missing sender", CreateLogInput{Environment: "production", Level: "info", Message: "m"}, "sender_application"},
		{"unknown level", CreateLogInput{SenderApplication: "api", Environment: "production", Level: "fatal", Message: "m"}, "level"},
		{"missing environment", CreateLogInput{SenderApplication: "api", Level: "info", Message: "m"}, "environment"},
		{"overlong environment", CreateLogInput{SenderApplication: "api", Environment: strings.Repeat("e", 51), Level: "info", Message: "m"}, "environment"},
		{"blank message", CreateLogInput{SenderApplication: "api", Environment: "production", Level: "info", Message: "   "}, "message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, userID, tt.input)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("Expected validation error, got %v", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected *ValidationError, got %T", err)
			}
			if _, ok := verr.Fields[tt.field]; !ok {
				t.Errorf("Expected error on field %q, got %v", tt.field, verr.Fields)
			}
		})
	}

	var rows int64
	db.Unscoped().Model(&models.Log{}).Count(&rows)
	if rows != 0 {
		t.Errorf("Expected no stored logs, got %d", rows)
	}
}

func TestLogService_CreateNormalizesEnumerations(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	svc := newTestLogService(db)
	userID := seedUser(t, db, "owner@example.com")

	l, err := svc.Create(ctx, userID, CreateLogInput{
		SenderApplication: "  api  ",
		Environment:       " Production ",
		Level:             "ERROR",
		Message:           "boom",
		Details:           `{"code":500}`,
	})
	if err != nil {
		t.Fatal(err)
	}
	if l.SenderApplication != "api" || l.Environment != "production" || l.Level != "error" {
		t.Errorf("Unexpected normalized log: %+v", l)
	}

	logs, err := svc.Query(ctx, userID, database.LogFilter{Environment: "production", Level: "error"})
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 || logs[0].Details != `{"code":500}` {
		t.Errorf("Expected the stored log with details, got %+v", logs)
	}
}

func TestLogService_FreeFormEnvironment(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	svc := newTestLogService(db)
	userA := seedUser(t, db, "a@example.com")
	userB := seedUser(t, db, "b@example.com")

	l, err := svc.Create(ctx, userA, CreateLogInput{
		SenderApplication: "svc1",
		Environment:       "prod",
		Level:             "error",
		Message:           "m",
	})
	if err != nil {
		t.Fatalf("Expected free-form environment to be accepted, got %v", err)
	}

	logs, err := svc.Query(ctx, userA, database.LogFilter{SenderApplication: "svc1"})
	if err != nil || len(logs) != 1 || logs[0].ID != l.ID || logs[0].Environment != "prod" {
		t.Errorf("Expected exactly the created log, got %+v (%v)", logs, err)
	}
	if _, err := svc.Query(ctx, userB, database.LogFilter{SenderApplication: "svc1"}); !errors.Is(err, ErrEmptyResult) {
		t.Errorf("Expected ErrEmptyResult for another user, got %v", err)
	}
}

func TestLogService_QueryFiltersIgnoreCase(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	svc := newTestLogService(db)
	userID := seedUser(t, db, "owner@example.com")

	if _, err := svc.Create(ctx, userID, CreateLogInput{
		SenderApplication: "api",
		Environment:       "Production",
		Level:             "ERROR",
		Message:           "boom",
	}); err != nil {
		t.Fatal(err)
	}

	filters := []database.LogFilter{
		{Level: "ERROR"},
		{Level: "Error"},
		{Environment: "Production"},
		{Environment: " PRODUCTION "},
		{SenderApplication: " api ", Environment: "production", Level: "eRRoR"},
	}
	for _, f := range filters {
		logs, err := svc.Query(ctx, userID, f)
		if err != nil || len(logs) != 1 {
			t.Errorf("Query(%+v) = %d logs, %v; want 1", f, len(logs), err)
		}
	}
}

func TestLogService_FiltersCombineWithAnd(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	svc := newTestLogService(db)
	userID := seedUser(t, db, "owner@example.com")

	inputs := []CreateLogInput{
		{SenderApplication: "api", Environment: "production", Level: "error", Message: "1"},
		{SenderApplication: "api", Environment: "staging", Level: "error", Message: "2"},
		{SenderApplication: "web", Environment: "production", Level: "error", Message: "3"},
		{SenderApplication: "api", Environment: "production", Level: "info", Message: "4"},
	}
	for _, in := range inputs {
		if _, err := svc.Create(ctx, userID, in); err != nil {
			t.Fatal(err)
		}
	}

	logs, err := svc.Query(ctx, userID, database.LogFilter{
		SenderApplication: "api",
		Environment:       "production",
		Level:             "error",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 || logs[0].Message != "1" {
		t.Errorf("Expected only log 1, got %+v", logs)
	}

	if _, err := svc.Query(ctx, userID, database.LogFilter{Level: "critical"}); !errors.Is(err, ErrEmptyResult) {
		t.Errorf("Expected ErrEmptyResult, got %v", err)
	}
}

func TestLogService_BulkOperations(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	svc := newTestLogService(db)
	userID := seedUser(t, db, "owner@example.com")
	other := seedUser(t, db, "other@example.com")

	// Empty scope
	if err := svc.SoftDeleteAll(ctx, userID); !errors.Is(err, ErrNothingToDelete) {
		t.Errorf("Expected ErrNothingToDelete, got %v", err)
	}
	if err := svc.RestoreAll(ctx, userID); !errors.Is(err, ErrNothingToRestore) {
		t.Errorf("Expected ErrNothingToRestore, got %v", err)
	}
	if err := svc.PurgeAll(ctx, userID); !errors.Is(err, ErrNothingToDelete) {
		t.Errorf("Expected ErrNothingToDelete, got %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(ctx, userID, sampleInput("api", fmt.Sprintf("m-%d", i))); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := svc.Create(ctx, other, sampleInput("api", "other")); err != nil {
		t.Fatal(err)
	}

	if err := svc.SoftDeleteAll(ctx, userID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Query(ctx, userID, database.LogFilter{}); !errors.Is(err, ErrEmptyResult) {
		t.Errorf("Expected ErrEmptyResult after soft delete, got %v", err)
	}
	if err := svc.SoftDeleteAll(ctx, userID); !errors.Is(err, ErrNothingToDelete) {
		t.Errorf("Expected ErrNothingToDelete when all are deleted, got %v", err)
	}

	if err := svc.RestoreAll(ctx, userID); err != nil {
		t.Fatal(err)
	}
	logs, err := svc.Query(ctx, userID, database.LogFilter{})
	if err != nil || len(logs) != 3 {
		t.Fatalf("Expected 3 restored logs, got %d (%v)", len(logs), err)
	}

	// PurgeAll also removes soft-deleted rows
	if err := svc.SoftDelete(ctx, userID, logs[0].ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.PurgeAll(ctx, userID); err != nil {
		t.Fatal(err)
	}
	if err := svc.RestoreAll(ctx, userID); !errors.Is(err, ErrNothingToRestore) {
		t.Errorf("Expected ErrNothingToRestore after purge, got %v", err)
	}

	// The other user is untouched
	otherLogs, err := svc.Query(ctx, other, database.LogFilter{})
	if err != nil || len(otherLogs) != 1 {
		t.Errorf("Expected other user's log to survive, got %d (%v)", len(otherLogs), err)
	}
}

type failingStore struct {
	LogStore
	err error
}

func (s failingStore) Find(ctx context.Context, userID uint, filter database.LogFilter) ([]models.Log, error) {
	return nil, s.err
}

func (s failingStore) SoftDelete(ctx context.Context, userID, id uint) (int64, error) {
	return 0, s.err
}

func TestLogService_StoreErrorsPassThrough(t *testing.T) {
	storeErr := errors.New("disk I/O error")
	svc := NewLogService(failingStore{err: storeErr}, nil)

	if _, err := svc.Query(context.Background(), 1, database.LogFilter{}); !errors.Is(err, storeErr) {
		t.Errorf("Expected store error from Query, got %v", err)
	}
	err := svc.SoftDelete(context.Background(), 1, 1)
	if !errors.Is(err, storeErr) || errors.Is(err, ErrNotFound) {
		t.Errorf("Expected store error from SoftDelete, got %v", err)
	}
}
