package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/and161185/inkwell/internal/errs"
)

func TestRefreshStore_ExpiryBoundary(t *testing.T) {
	t.Parallel()
	repo := newFakeRefresh()
	s := NewRefreshTokenStore(repo, time.Hour, nil)
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	raw, err := s.Issue(context.Background(), 7)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if len(raw) != 43 {
		t.Fatalf("token length = %d, want 43", len(raw))
	}

	s.now = func() time.Time { return base.Add(time.Hour - time.Nanosecond) }
	if uid, err := s.Verify(context.Background(), raw); err != nil || uid != 7 {
		t.Fatalf("Verify before expiry: uid=%d err=%v", uid, err)
	}

	s.now = func() time.Time { return base.Add(time.Hour) }
	if _, err := s.Verify(context.Background(), raw); !errors.Is(err, errs.ErrRefreshRejected) {
		t.Fatalf("Verify at expiry: want ErrRefreshRejected, got %v", err)
	}
}

func TestRefreshStore_VerifyRejects(t *testing.T) {
	t.Parallel()
	repo := newFakeRefresh()
	s := NewRefreshTokenStore(repo, time.Hour, nil)
	ctx := context.Background()

	if _, err := s.Verify(ctx, ""); !errors.Is(err, errs.ErrRefreshRejected) {
		t.Fatalf("empty: %v", err)
	}
	if _, err := s.Verify(ctx, "nope"); !errors.Is(err, errs.ErrRefreshRejected) {
		t.Fatalf("unknown: %v", err)
	}

	raw, _ := s.Issue(ctx, 1)
	if _, err := s.Revoke(ctx, raw); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := s.Verify(ctx, raw); !errors.Is(err, errs.ErrRefreshRejected) {
		t.Fatalf("revoked: %v", err)
	}

	repo.getErr = errors.New("db down")
	if _, err := s.Verify(ctx, raw); err == nil || errors.Is(err, errs.ErrRefreshRejected) {
		t.Fatalf("repo failure must not be masked, got %v", err)
	}
}

func TestRefreshStore_IssueRetriesCollision(t *testing.T) {
	t.Parallel()
	repo := newFakeRefresh()
	repo.createErrs = []error{errs.ErrConflict}
	s := NewRefreshTokenStore(repo, time.Hour, nil)

	if _, err := s.Issue(context.Background(), 1); err != nil {
		t.Fatalf("Issue after one collision: %v", err)
	}

	repo.createErrs = []error{errs.ErrConflict, errs.ErrConflict}
	if _, err := s.Issue(context.Background(), 1); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("want conflict after two collisions, got %v", err)
	}
}

func TestRefreshStore_RevokeIdempotent(t *testing.T) {
	t.Parallel()
	repo := newFakeRefresh()
	s := NewRefreshTokenStore(repo, time.Hour, nil)
	ctx := context.Background()
	raw, _ := s.Issue(ctx, 1)

	changed, err := s.Revoke(ctx, raw)
	if err != nil || !changed {
		t.Fatalf("first revoke: changed=%v err=%v", changed, err)
	}
	changed, err = s.Revoke(ctx, raw)
	if err != nil || changed {
		t.Fatalf("second revoke: changed=%v err=%v", changed, err)
	}
	if !repo.get(raw).Revoked {
		t.Fatalf("row not revoked")
	}
	if _, err := s.Revoke(ctx, "missing"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("missing: %v", err)
	}
	if _, err := s.Revoke(ctx, ""); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("empty: %v", err)
	}
}

func TestRefreshStore_RevokeAllAndPurge(t *testing.T) {
	t.Parallel()
	repo := newFakeRefresh()
	s := NewRefreshTokenStore(repo, time.Hour, nil)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	a, _ := s.Issue(ctx, 1)
	b, _ := s.Issue(ctx, 1)
	other, _ := s.Issue(ctx, 2)

	n, err := s.RevokeAllForUser(ctx, 1)
	if err != nil || n != 2 {
		t.Fatalf("RevokeAllForUser: n=%d err=%v", n, err)
	}
	for _, raw := range []string{a, b} {
		if !repo.get(raw).Revoked {
			t.Fatalf("token of user 1 left active")
		}
	}
	if repo.get(other).Revoked {
		t.Fatalf("token of user 2 revoked")
	}
	if _, err := s.RevokeAllForUser(ctx, 1); !errors.Is(err, errs.ErrNothingToRevoke) {
		t.Fatalf("second logout: want ErrNothingToRevoke, got %v", err)
	}

	s.now = func() time.Time { return base.Add(time.Hour) }
	purged, err := s.PurgeExpired(ctx)
	if err != nil || purged != 3 {
		t.Fatalf("PurgeExpired: n=%d err=%v", purged, err)
	}
	if repo.count() != 0 {
		t.Fatalf("rows left after purge: %d", repo.count())
	}
}
