package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestClassifySQLStates(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Code
	}{
		{"checkViolation", &pgconn.PgError{Code: "23514", ConstraintName: "products_price_check"}, CodeConstraint},
		{"notNull", &pgconn.PgError{Code: "23502"}, CodeConstraint},
		{"rlsDenied", &pgconn.PgError{Code: "42501"}, CodePolicy},
		{"queryCanceled", &pgconn.PgError{Code: "57014"}, CodeTimeout},
		{"connectionFailure", &pgconn.PgError{Code: "08006"}, CodeConnection},
		{"plainQueryError", &pgconn.PgError{Code: "42703"}, CodeQuery},
		{"pqCheckViolation", &pq.Error{Code: "23514"}, CodeConstraint},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err); got != tc.want {
				t.Fatalf("Classify(%v) = %s, want %s", tc.err, got, tc.want)
			}
		})
	}
}

func TestClassifyWrappedDriverError(t *testing.T) {
	err := fmt.Errorf("inserting product: %w", &pgconn.PgError{Code: "23514"})
	if got := Classify(err); got != CodeConstraint {
		t.Fatalf("expected wrapped driver error to classify as constraint, got %s", got)
	}
}

func TestClassifyKeepsExistingCode(t *testing.T) {
	err := Wrap(CodePolicy, &pgconn.PgError{Code: "23514"}, "anon write rejected")
	if got := Classify(err); got != CodePolicy {
		t.Fatalf("expected explicit code to win, got %s", got)
	}
}

func TestClassifyContextErrors(t *testing.T) {
	if got := Classify(context.DeadlineExceeded); got != CodeTimeout {
		t.Fatalf("expected timeout, got %s", got)
	}
}

func TestClassifyUnknown(t *testing.T) {
	if got := Classify(fmt.Errorf("something odd")); got != CodeInternal {
		t.Fatalf("expected internal, got %s", got)
	}
}

func TestDumpIncludesPostgresDetail(t *testing.T) {
	cause := &pgconn.PgError{
		Code:           "23514",
		ConstraintName: "products_stock_quantity_check",
		TableName:      "products",
		Message:        "new row violates check constraint",
	}
	d := Dump(fmt.Errorf("insert: %w", cause))

	if d.PGCode != "23514" {
		t.Fatalf("expected pg code, got %q", d.PGCode)
	}
	if d.PGConstraint != "products_stock_quantity_check" {
		t.Fatalf("expected constraint name, got %q", d.PGConstraint)
	}
	if d.Code != CodeConstraint {
		t.Fatalf("expected classified code, got %s", d.Code)
	}
	if len(d.Chain) < 2 {
		t.Fatalf("expected unwrap chain, got %v", d.Chain)
	}
}

func TestMetadataRetryability(t *testing.T) {
	if !MetadataFor(CodeConnection).Retryable {
		t.Fatal("connection errors should be retryable")
	}
	if MetadataFor(CodeConstraint).Retryable {
		t.Fatal("constraint violations should not be retryable")
	}
	if MetadataFor(CodeConfig).ExitCode != 2 {
		t.Fatal("config errors should exit with code 2")
	}
	if MetadataFor(Code("NOPE")).ExitCode != MetadataFor(CodeInternal).ExitCode {
		t.Fatal("unknown codes should fall back to internal metadata")
	}
}
