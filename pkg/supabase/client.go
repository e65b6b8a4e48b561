package supabase

import (
	"context"
	"fmt"

	"github.com/hovergrid/preflight/pkg/config"
	"github.com/supabase-community/postgrest-go"
)

// Role selects which API key a REST client authenticates with.
type Role string

const (
	RoleAnon    Role = "anon"
	RoleService Role = "service_role"
)

// Client wraps a PostgREST connection for one of the two Supabase API roles.
// The anon client is deliberately kept around even though the toolkit holds
// the service key: the RLS checks need to observe what an untrusted caller
// can and cannot do.
type Client struct {
	rest *postgrest.Client
	role Role
}

// New builds a REST client for the given role from the Supabase config.
func New(cfg config.SupabaseConfig, role Role) (*Client, error) {
	key, err := keyFor(cfg, role)
	if err != nil {
		return nil, err
	}

	restURL, err := cfg.RestURL()
	if err != nil {
		return nil, err
	}

	headers := map[string]string{
		"apikey":        key,
		"Authorization": "Bearer " + key,
	}

	rest := postgrest.NewClient(restURL, "", headers)
	if rest.ClientError != nil {
		return nil, fmt.Errorf("building postgrest client: %w", rest.ClientError)
	}

	return &Client{rest: rest, role: role}, nil
}

func keyFor(cfg config.SupabaseConfig, role Role) (string, error) {
	switch role {
	case RoleAnon:
		if cfg.AnonKey == "" {
			return "", fmt.Errorf("%s is required for the anon client", config.EnvSupabaseAnonKey)
		}
		return cfg.AnonKey, nil
	case RoleService:
		if cfg.ServiceRoleKey == "" {
			return "", fmt.Errorf("%s is required for the service client", config.EnvSupabaseServiceKey)
		}
		return cfg.ServiceRoleKey, nil
	default:
		return "", fmt.Errorf("unknown supabase role %q", role)
	}
}

// Role reports which key this client authenticates with.
func (c *Client) Role() Role {
	return c.role
}

// From starts a query against the named table.
func (c *Client) From(table string) *postgrest.QueryBuilder {
	return c.rest.From(table)
}

// Ping issues a cheap HEAD-style count against the table to prove PostgREST
// answers with this client's key.
func (c *Client) Ping(ctx context.Context, table string) error {
	if _, _, err := c.rest.From(table).Select("id", "exact", true).ExecuteWithContext(ctx); err != nil {
		return fmt.Errorf("postgrest ping (%s): %w", c.role, err)
	}
	return nil
}
