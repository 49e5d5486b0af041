// Package storetest opens throwaway in-memory stores for tests.
package storetest

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/cppla/storeapi/config"
	"github.com/cppla/storeapi/store"
)

var seq atomic.Int64

// Open returns a migrated store backed by a private in-memory SQLite database.
func Open(t testing.TB) *store.Store {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := &config.AppConfig{
		DatabaseURL: fmt.Sprintf("sqlite://file:%s_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", name, seq.Add(1)),
		LogLevel:    "silent",
	}
	db, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return store.New(db)
}
