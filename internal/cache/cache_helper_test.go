package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type cachedSubject struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func newTestHelper(t *testing.T) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCacheHelper(client, "test:"), server
}

func TestCacheHelper_SetAndGet(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	original := cachedSubject{ID: 7, Name: "Radiology"}
	if err := helper.Set(ctx, "subject:7", original, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var got cachedSubject
	if err := helper.Get(ctx, "subject:7", &got); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != original {
		t.Errorf("Expected %+v, got %+v", original, got)
	}
}

func TestCacheHelper_GetMissingKey(t *testing.T) {
	helper, _ := newTestHelper(t)

	var got cachedSubject
	err := helper.Get(context.Background(), "subject:missing", &got)
	if !errors.Is(err, ErrCacheNotFound) {
		t.Fatalf("Expected ErrCacheNotFound, got %v", err)
	}
}

func TestCacheHelper_NilClientDegradesGracefully(t *testing.T) {
	helper := NewCacheHelper(nil, "test:")
	ctx := context.Background()

	if err := helper.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Errorf("Set with nil client should be a no-op, got %v", err)
	}
	var got string
	if err := helper.Get(ctx, "k", &got); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("Expected ErrCacheNotAvailable, got %v", err)
	}
	if err := helper.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete with nil client should be a no-op, got %v", err)
	}
}

func TestCacheHelper_Delete(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	if err := helper.SetString(ctx, "a", "1", time.Minute); err != nil {
		t.Fatalf("SetString failed: %v", err)
	}
	if err := helper.SetString(ctx, "b", "2", time.Minute); err != nil {
		t.Fatalf("SetString failed: %v", err)
	}

	if err := helper.Delete(ctx, "a", "b"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := helper.GetString(ctx, "a"); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("Expected key 'a' to be deleted, got %v", err)
	}
}

func TestCacheHelper_TTLExpiry(t *testing.T) {
	helper, server := newTestHelper(t)
	ctx := context.Background()

	if err := helper.SetString(ctx, "short", "lived", time.Minute); err != nil {
		t.Fatalf("SetString failed: %v", err)
	}

	server.FastForward(2 * time.Minute)

	if _, err := helper.GetString(ctx, "short"); !errors.Is(err, ErrCacheNotFound) {
		t.Fatalf("Expected key to expire, got %v", err)
	}
}

func TestCacheHelper_InvalidatePattern(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	for _, key := range []string{"subject:1", "subject:2", "question:1"} {
		if err := helper.SetString(ctx, key, "x", time.Minute); err != nil {
			t.Fatalf("SetString failed: %v", err)
		}
	}

	if err := helper.InvalidatePattern(ctx, "subject:*"); err != nil {
		t.Fatalf("InvalidatePattern failed: %v", err)
	}

	if _, err := helper.GetString(ctx, "subject:1"); !errors.Is(err, ErrCacheNotFound) {
		t.Error("subject:1 should have been invalidated")
	}
	if _, err := helper.GetString(ctx, "subject:2"); !errors.Is(err, ErrCacheNotFound) {
		t.Error("subject:2 should have been invalidated")
	}
	if _, err := helper.GetString(ctx, "question:1"); err != nil {
		t.Errorf("question:1 should survive, got %v", err)
	}
}

func TestCacheHelper_CacheOrExecute(t *testing.T) {
	helper, server := newTestHelper(t)
	ctx := context.Background()

	fetches := 0
	fetch := func() (interface{}, error) {
		fetches++
		return cachedSubject{ID: 3, Name: "Pathology"}, nil
	}

	var first cachedSubject
	if err := helper.CacheOrExecute(ctx, "subject:3", &first, time.Minute, fetch); err != nil {
		t.Fatalf("CacheOrExecute failed: %v", err)
	}
	if fetches != 1 {
		t.Fatalf("Expected one fetch on a cold cache, got %d", fetches)
	}
	if first.Name != "Pathology" {
		t.Errorf("Expected fetched value, got %+v", first)
	}

	// The write-back is asynchronous; wait for the key to land.
	deadline := time.Now().Add(2 * time.Second)
	for !server.Exists("test:subject:3") {
		if time.Now().After(deadline) {
			t.Fatal("Cache write-back never happened")
		}
		time.Sleep(10 * time.Millisecond)
	}

	var second cachedSubject
	if err := helper.CacheOrExecute(ctx, "subject:3", &second, time.Minute, fetch); err != nil {
		t.Fatalf("CacheOrExecute failed: %v", err)
	}
	if fetches != 1 {
		t.Errorf("Expected the warm cache to skip the fetch, got %d fetches", fetches)
	}
	if second != first {
		t.Errorf("Expected cached value %+v, got %+v", first, second)
	}
}

func TestCacheHelper_CacheOrExecuteFetchError(t *testing.T) {
	helper, _ := newTestHelper(t)

	wantErr := errors.New("database down")
	var dest cachedSubject
	err := helper.CacheOrExecute(context.Background(), "subject:9", &dest, time.Minute, func() (interface{}, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Expected the fetch error to surface, got %v", err)
	}
}
