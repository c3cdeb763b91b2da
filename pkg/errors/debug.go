package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// PostgresFault is the driver-level detail behind a failed statement.
type PostgresFault struct {
	SQLState   string `json:"pg_code"`
	Constraint string `json:"pg_constraint,omitempty"`
	Table      string `json:"pg_table,omitempty"`
	Column     string `json:"pg_column,omitempty"`
	Detail     string `json:"pg_detail,omitempty"`
	Message    string `json:"pg_message,omitempty"`
}

// Diagnostics is a log-friendly snapshot of an error chain.
type Diagnostics struct {
	Message  string         `json:"message"`
	Code     Code           `json:"code,omitempty"`
	Chain    []string       `json:"chain,omitempty"`
	Postgres *PostgresFault `json:"postgres,omitempty"`
}

// Diagnose walks err and extracts the typed code plus any postgres fault
// reported by pgx or lib/pq.
func Diagnose(err error) Diagnostics {
	if err == nil {
		return Diagnostics{}
	}

	diag := Diagnostics{Message: err.Error()}
	if typed := As(err); typed != nil {
		diag.Code = typed.Code()
	}
	for cur := err; cur != nil; cur = errors.Unwrap(cur) {
		diag.Chain = append(diag.Chain, fmt.Sprintf("%T: %v", cur, cur))
	}
	diag.Postgres = postgresFault(err)
	return diag
}

func postgresFault(err error) *PostgresFault {
	if pgErr := (*pgconn.PgError)(nil); errors.As(err, &pgErr) {
		return &PostgresFault{
			SQLState:   pgErr.Code,
			Constraint: pgErr.ConstraintName,
			Table:      pgErr.TableName,
			Column:     pgErr.ColumnName,
			Detail:     pgErr.Detail,
			Message:    pgErr.Message,
		}
	}
	if pqErr := (*pq.Error)(nil); errors.As(err, &pqErr) {
		return &PostgresFault{
			SQLState:   string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Detail:     pqErr.Detail,
			Message:    pqErr.Message,
		}
	}
	return nil
}

// LogFields flattens the diagnostics for structured logging. Postgres keys
// are only present when a driver error was found.
func (d Diagnostics) LogFields() map[string]any {
	fields := map[string]any{
		"error":       d.Message,
		"error_chain": d.Chain,
	}
	if d.Code != "" {
		fields["error_code"] = d.Code
	}
	if pg := d.Postgres; pg != nil {
		fields["pg_code"] = pg.SQLState
		fields["pg_constraint"] = pg.Constraint
		fields["pg_table"] = pg.Table
		fields["pg_column"] = pg.Column
		fields["pg_detail"] = pg.Detail
		fields["pg_message"] = pg.Message
	}
	return fields
}
