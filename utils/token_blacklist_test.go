package utils

import (
	"context"
	"testing"
	"time"
)

func TestTokenBlacklistInMemory(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	b := NewTokenBlacklist(nil)
	b.now = func() time.Time { return now }

	if b.IsRevoked(ctx, "tok") {
		t.Fatal("unknown token reported as revoked")
	}
	if err := b.Revoke(ctx, "tok", now.Add(time.Minute)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if !b.IsRevoked(ctx, "tok") {
		t.Fatal("revoked token not reported")
	}
	if b.IsRevoked(ctx, "other") {
		t.Fatal("unrelated token reported as revoked")
	}

	now = now.Add(2 * time.Minute)
	if b.IsRevoked(ctx, "tok") {
		t.Fatal("entry should lapse with the token's expiry")
	}
	if len(b.entries) != 0 {
		t.Errorf("expired entry not pruned: %d left", len(b.entries))
	}
}

func TestTokenBlacklistSweepsOnRevoke(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	b := NewTokenBlacklist(nil)
	b.now = func() time.Time { return now }

	for _, tok := range []string{"a", "b"} {
		if err := b.Revoke(ctx, tok, now.Add(time.Minute)); err != nil {
			t.Fatal(err)
		}
	}
	now = now.Add(2 * time.Minute)
	if err := b.Revoke(ctx, "c", now.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}

	if len(b.entries) != 1 {
		t.Errorf("entries = %d, want only the live token", len(b.entries))
	}
	if !b.IsRevoked(ctx, "c") {
		t.Error("live token lost by the sweep")
	}
}

func TestTokenBlacklistIgnoresExpiredTokens(t *testing.T) {
	b := NewTokenBlacklist(nil)
	if err := b.Revoke(context.Background(), "old", time.Now().Add(-time.Second)); err != nil {
		t.Fatal(err)
	}
	if len(b.entries) != 0 {
		t.Error("already expired token should not be stored")
	}
}
