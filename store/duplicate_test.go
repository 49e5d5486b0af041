package store

import (
	"context"
	"errors"
	"testing"

	"github.com/cppla/storeapi/config"
	"github.com/cppla/storeapi/models"
)

func openInternal(t *testing.T) *Store {
	t.Helper()
	db, err := Open(&config.AppConfig{
		DatabaseURL: "sqlite://file:" + t.Name() + "?mode=memory&cache=shared&_pragma=foreign_keys(1)",
		LogLevel:    "silent",
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return New(db)
}

// A unique violation raised by the insert itself, as when a concurrent
// registration wins between the existence checks and the insert.
func TestDuplicateUserErrorNamesTheTakenColumn(t *testing.T) {
	s := openInternal(t)
	ctx := context.Background()
	existing := &models.User{Username: "alice", Email: "a@x.com", PasswordHash: "hash"}
	if err := s.db.Create(existing).Error; err != nil {
		t.Fatal(err)
	}

	racer := &models.User{Username: "alice2", Email: "a@x.com", PasswordHash: "hash"}
	insertErr := s.db.Create(racer).Error
	if !isUniqueViolation(insertErr) {
		t.Fatalf("expected unique violation, got %v", insertErr)
	}

	if err := s.duplicateUserError(ctx, racer); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate email reported as %v", err)
	}
	sameName := &models.User{Username: "alice", Email: "other@x.com"}
	if err := s.duplicateUserError(ctx, sameName); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("duplicate username reported as %v", err)
	}
}
