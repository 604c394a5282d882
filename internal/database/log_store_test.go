package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/logstore/core/internal/database/models"
	"gorm.io/gorm"
)

func setupStore(t *testing.T) (*LogStore, *gorm.DB) {
	t.Helper()
	db, err := Initialize(filepath.Join(t.TempDir(), "nested", "logstore.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { Close(db) })
	return NewLogStore(db), db
}

func seed(t *testing.T, db *gorm.DB, store *LogStore, email string, senders ...string) (uint, []uint) {
	t.Helper()
	u := &models.User{Email: email, PasswordHash: "-"}
	if err := db.Create(u).Error; err != nil {
		t.Fatal(err)
	}
	var ids []uint
	for _, s := range senders {
		l := &models.Log{UserID: u.ID, SenderApplication: s, Environment: "testing", Level: "info", Message: "m"}
		if err := store.Create(context.Background(), l); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, l.ID)
	}
	return u.ID, ids
}

func TestLogFilter_IsEmpty(t *testing.T) {
	if !(LogFilter{}).IsEmpty() {
		t.Error("Expected zero filter to be empty")
	}
	if (LogFilter{Level: "info"}).IsEmpty() {
		t.Error("Expected filter with level to be non-empty")
	}
}

func TestLogStore_FindReturnsEmptySlice(t *testing.T) {
	store, _ := setupStore(t)

	logs, err := store.Find(context.Background(), 1, LogFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if logs == nil || len(logs) != 0 {
		t.Errorf("Expected empty non-nil slice, got %#v", logs)
	}
}

func TestLogStore_AffectedRows(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()
	owner, ids := seed(t, db, store, "owner@example.com", "api", "web")
	other, _ := seed(t, db, store, "other@example.com", "api")

	steps := []struct {
		name string
		run  func() (int64, error)
		want int64
	}{
		{"foreign soft delete", func() (int64, error) { return store.SoftDelete(ctx, other, ids[0]) }, 0},
		{"soft delete", func() (int64, error) { return store.SoftDelete(ctx, owner, ids[0]) }, 1},
		{"soft delete twice", func() (int64, error) { return store.SoftDelete(ctx, owner, ids[0]) }, 0},
		{"restore active", func() (int64, error) { return store.Restore(ctx, owner, ids[1]) }, 0},
		{"restore", func() (int64, error) { return store.Restore(ctx, owner, ids[0]) }, 1},
		{"restore all with nothing deleted", func() (int64, error) { return store.RestoreAll(ctx, owner) }, 0},
		{"soft delete all", func() (int64, error) { return store.SoftDeleteAll(ctx, owner) }, 2},
		{"restore all", func() (int64, error) { return store.RestoreAll(ctx, owner) }, 2},
		{"hard delete soft-deleted", func() (int64, error) {
			if _, err := store.SoftDelete(ctx, owner, ids[1]); err != nil {
				return 0, err
			}
			return store.HardDelete(ctx, owner, ids[1])
		}, 1},
		{"hard delete all", func() (int64, error) { return store.HardDeleteAll(ctx, owner) }, 1},
		{"hard delete all again", func() (int64, error) { return store.HardDeleteAll(ctx, owner) }, 0},
	}

	for _, step := range steps {
		n, err := step.run()
		if err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
		if n != step.want {
			t.Fatalf("%s: expected %d affected rows, got %d", step.name, step.want, n)
		}
	}

	// The other owner's row survives every step
	logs, err := store.Find(ctx, other, LogFilter{SenderApplication: "api"})
	if err != nil || len(logs) != 1 {
		t.Errorf("Expected other owner's log to survive, got %d (%v)", len(logs), err)
	}
}
