package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/slack-go/slack"
)

func setupTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	cache, err := NewRedisCache("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("failed to create redis cache: %v", err)
	}
	return cache, s
}

func TestCacheSetAndGet(t *testing.T) {
	cache, s := setupTestCache(t)
	defer cache.Close()
	defer s.Close()

	ctx := context.Background()
	if err := cache.Set(ctx, "a@b.com", "U123"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	userID, ok := cache.Get(ctx, "a@b.com")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if userID != "U123" {
		t.Errorf("expected U123, got %s", userID)
	}
}

func TestCacheMiss(t *testing.T) {
	cache, s := setupTestCache(t)
	defer cache.Close()
	defer s.Close()

	if _, ok := cache.Get(context.Background(), "nobody@b.com"); ok {
		t.Error("expected cache miss")
	}
}

func TestCacheExpiry(t *testing.T) {
	cache, s := setupTestCache(t)
	defer cache.Close()
	defer s.Close()

	ctx := context.Background()
	if err := cache.Set(ctx, "a@b.com", "U123"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	s.FastForward(lookupTTL + 1)

	if _, ok := cache.Get(ctx, "a@b.com"); ok {
		t.Error("expected entry to expire")
	}
}

func TestNotifyUsesCachedLookup(t *testing.T) {
	cache, s := setupTestCache(t)
	defer cache.Close()
	defer s.Close()

	fake := &fakeSlack{}
	svc := NewWithClient(fake, testConfig()).WithCache(cache)

	ctx := context.Background()
	if err := svc.Notify(ctx, "summary", nil, "a@b.com"); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if err := svc.Notify(ctx, "summary", nil, "a@b.com"); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	if len(fake.lookups) != 1 {
		t.Errorf("expected one directory lookup, got %d", len(fake.lookups))
	}
	if len(fake.invites) != 2 {
		t.Errorf("expected invites on both notifications, got %d", len(fake.invites))
	}
}

func TestNotifyFailedLookupNotCached(t *testing.T) {
	cache, s := setupTestCache(t)
	defer cache.Close()
	defer s.Close()

	fake := &fakeSlack{
		getUserByEmailFn: func(context.Context, string) (*slack.User, error) {
			return nil, errors.New("users_not_found")
		},
	}
	svc := NewWithClient(fake, testConfig()).WithCache(cache)

	ctx := context.Background()
	if err := svc.Notify(ctx, "summary", nil, "nobody@b.com"); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if err := svc.Notify(ctx, "summary", nil, "nobody@b.com"); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	if len(fake.lookups) != 2 {
		t.Errorf("expected failed lookup to retry, got %d lookups", len(fake.lookups))
	}
}
