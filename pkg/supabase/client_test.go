package supabase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hovergrid/preflight/pkg/config"
)

func validConfig() config.SupabaseConfig {
	return config.SupabaseConfig{
		URL:            "https://abc.supabase.co",
		AnonKey:        "anon-key",
		ServiceRoleKey: "service-key",
	}
}

func TestNewAnonClient(t *testing.T) {
	client, err := New(validConfig(), RoleAnon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.Role() != RoleAnon {
		t.Fatalf("expected anon role, got %s", client.Role())
	}
}

func TestNewServiceClient(t *testing.T) {
	client, err := New(validConfig(), RoleService)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.Role() != RoleService {
		t.Fatalf("expected service role, got %s", client.Role())
	}
}

func TestNewRejectsMissingKeys(t *testing.T) {
	cfg := validConfig()
	cfg.AnonKey = ""
	if _, err := New(cfg, RoleAnon); err == nil {
		t.Fatal("expected error for missing anon key")
	}

	cfg = validConfig()
	cfg.ServiceRoleKey = ""
	if _, err := New(cfg, RoleService); err == nil {
		t.Fatal("expected error for missing service key")
	}
}

func TestNewRejectsUnknownRole(t *testing.T) {
	if _, err := New(validConfig(), Role("superuser")); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestPingHonorsContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	cfg := validConfig()
	cfg.URL = srv.URL
	client, err := New(cfg, RoleService)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	if err := client.Ping(ctx, "products"); err == nil {
		t.Fatal("expected ping to fail once the deadline passed")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("ping ignored the context deadline, took %s", elapsed)
	}
}

func TestNewRejectsMissingURL(t *testing.T) {
	cfg := validConfig()
	cfg.URL = ""
	if _, err := New(cfg, RoleAnon); err == nil {
		t.Fatal("expected error for missing SUPABASE_URL")
	}
}
