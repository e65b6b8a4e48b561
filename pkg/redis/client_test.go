package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type mockCmdable struct {
	values map[string]string
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{values: map[string]string{}}
}

func (m *mockCmdable) Ping(ctx context.Context) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("PONG")
	return cmd
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	if val, ok := m.values[key]; ok {
		cmd.SetVal(val)
	} else {
		cmd.SetErr(redis.Nil)
	}
	return cmd
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd {
	cmd := redis.NewBoolCmd(ctx)
	if _, exists := m.values[key]; exists {
		cmd.SetVal(false)
		return cmd
	}
	m.values[key] = value.(string)
	cmd.SetVal(true)
	return cmd
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	var removed int64
	for _, key := range keys {
		if _, ok := m.values[key]; ok {
			delete(m.values, key)
			removed++
		}
	}
	cmd.SetVal(removed)
	return cmd
}

func TestRunLockLifecycle(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}

	if err := client.AcquireRunLock(ctx, "products", "runner-a", time.Minute); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	holder, err := client.RunLockHolder(ctx, "products")
	if err != nil {
		t.Fatalf("holder lookup failed: %v", err)
	}
	if holder != "runner-a" {
		t.Fatalf("expected holder runner-a, got %q", holder)
	}

	err = client.AcquireRunLock(ctx, "products", "runner-b", time.Minute)
	if !errors.Is(err, ErrLockHeld) {
		t.Fatalf("expected ErrLockHeld for second acquire, got %v", err)
	}

	if err := client.ReleaseRunLock(ctx, "products"); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	if err := client.AcquireRunLock(ctx, "products", "runner-b", time.Minute); err != nil {
		t.Fatalf("reacquire after release failed: %v", err)
	}
}

func TestRunLockHolderWhenFree(t *testing.T) {
	client := &Client{store: newMockCmdable()}
	holder, err := client.RunLockHolder(context.Background(), "products")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if holder != "" {
		t.Fatalf("expected empty holder, got %q", holder)
	}
}

func TestRunLockKeyNamespacing(t *testing.T) {
	client := &Client{store: newMockCmdable()}
	if got := client.RunLockKey("products"); got != "preflight:run_lock:products" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestUninitializedClientErrors(t *testing.T) {
	client := &Client{}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected error from uninitialized client")
	}
	if err := client.AcquireRunLock(context.Background(), "x", "y", time.Second); err == nil {
		t.Fatal("expected error from uninitialized client")
	}
}
