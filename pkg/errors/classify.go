package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// SQLSTATE classes and codes the check suites care about.
const (
	sqlstateCheckViolation        = "23514"
	sqlstateNotNullViolation      = "23502"
	sqlstateUniqueViolation       = "23505"
	sqlstateForeignKeyViolation   = "23503"
	sqlstateInsufficientPrivilege = "42501"
	sqlstateQueryCanceled         = "57014"
	sqlstateClassConnection       = "08"
)

// Classify maps an arbitrary error onto the taxonomy. Errors already carrying
// a Code keep it; driver errors are classified by SQLSTATE; everything else
// lands on CodeInternal.
func Classify(err error) Code {
	if err == nil {
		return ""
	}

	if typed := As(err); typed != nil {
		return typed.Code()
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return CodeTimeout
	}
	if errors.Is(err, context.Canceled) {
		return CodeTimeout
	}

	if code, ok := sqlstateOf(err); ok {
		return classifySQLState(code)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return CodeTimeout
		}
		return CodeConnection
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return CodeConnection
	}

	return CodeInternal
}

func classifySQLState(code string) Code {
	switch code {
	case sqlstateCheckViolation, sqlstateNotNullViolation,
		sqlstateUniqueViolation, sqlstateForeignKeyViolation:
		return CodeConstraint
	case sqlstateInsufficientPrivilege:
		return CodePolicy
	case sqlstateQueryCanceled:
		return CodeTimeout
	}
	if strings.HasPrefix(code, sqlstateClassConnection) {
		return CodeConnection
	}
	return CodeQuery
}

func sqlstateOf(err error) (string, bool) {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code, true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), true
	}
	return "", false
}

// ErrorDump is the diagnostic shape logged when a check fails against
// postgres. It keeps the raw SQLSTATE detail next to the classified code.
type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	PGCode       string `json:"pg_code,omitempty"`
	PGConstraint string `json:"pg_constraint,omitempty"`
	PGTable      string `json:"pg_table,omitempty"`
	PGColumn     string `json:"pg_column,omitempty"`
	PGDetail     string `json:"pg_detail,omitempty"`
	PGMessage    string `json:"pg_message,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
		Code:       Classify(err),
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		d.PGCode = pgxErr.Code
		d.PGConstraint = pgxErr.ConstraintName
		d.PGTable = pgxErr.TableName
		d.PGColumn = pgxErr.ColumnName
		d.PGDetail = pgxErr.Detail
		d.PGMessage = pgxErr.Message
		return d
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		d.PGCode = string(pqErr.Code)
		d.PGConstraint = pqErr.Constraint
		d.PGTable = pqErr.Table
		d.PGColumn = pqErr.Column
		d.PGDetail = pqErr.Detail
		d.PGMessage = pqErr.Message
		return d
	}

	return d
}
