// Copyright 2023 Northern.tech AS
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

package sqldb

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect abstracts engine-specific SQL syntax so that a single store
// implementation serves every supported engine.
type Dialect interface {
	// Name returns the dialect name ("sqlite", "postgres").
	Name() string

	// DriverName returns the database/sql driver to open.
	DriverName() string

	// Rebind rewrites ? placeholders into the engine's syntax.
	Rebind(query string) string

	// AutoIncrement returns the column definition of an
	// auto-incrementing primary key.
	AutoIncrement() string

	BigIntType() string
	BoolType() string
	BlobType() string

	// ReturningClause returns "RETURNING cols".
	ReturningClause(columns ...string) string

	// LimitOffset returns the LIMIT/OFFSET clause; zero values do not limit.
	LimitOffset(limit, offset int64) string

	// IsUniqueViolation reports whether err is a unique constraint failure.
	IsUniqueViolation(err error) bool
}

// SQLiteDialect implements Dialect for modernc.org/sqlite.
type SQLiteDialect struct{}

var _ Dialect = (*SQLiteDialect)(nil)

func (d *SQLiteDialect) Name() string { return "sqlite" }

func (d *SQLiteDialect) DriverName() string { return "sqlite" }

func (d *SQLiteDialect) Rebind(query string) string {
	return query
}

func (d *SQLiteDialect) AutoIncrement() string {
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}

func (d *SQLiteDialect) BigIntType() string { return "INTEGER" }

func (d *SQLiteDialect) BoolType() string { return "INTEGER" }

func (d *SQLiteDialect) BlobType() string { return "BLOB" }

func (d *SQLiteDialect) ReturningClause(columns ...string) string {
	if len(columns) == 0 {
		return ""
	}
	return "RETURNING " + strings.Join(columns, ", ")
}

func (d *SQLiteDialect) LimitOffset(limit, offset int64) string {
	switch {
	case limit <= 0 && offset <= 0:
		return ""
	case limit <= 0:
		// OFFSET requires a LIMIT in SQLite
		return fmt.Sprintf("LIMIT -1 OFFSET %d", offset)
	case offset <= 0:
		return fmt.Sprintf("LIMIT %d", limit)
	}
	return fmt.Sprintf("LIMIT %d OFFSET %d", limit, offset)
}

func (d *SQLiteDialect) IsUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE,
			sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return false
}

// PostgresDialect implements Dialect for pgx.
type PostgresDialect struct{}

var _ Dialect = (*PostgresDialect)(nil)

const pgUniqueViolation = "23505"

func (d *PostgresDialect) Name() string { return "postgres" }

func (d *PostgresDialect) DriverName() string { return "pgx" }

func (d *PostgresDialect) Rebind(query string) string {
	return ConvertPlaceholders(query)
}

func (d *PostgresDialect) AutoIncrement() string {
	return "BIGSERIAL PRIMARY KEY"
}

func (d *PostgresDialect) BigIntType() string { return "BIGINT" }

func (d *PostgresDialect) BoolType() string { return "BOOLEAN" }

func (d *PostgresDialect) BlobType() string { return "BYTEA" }

func (d *PostgresDialect) ReturningClause(columns ...string) string {
	if len(columns) == 0 {
		return ""
	}
	return "RETURNING " + strings.Join(columns, ", ")
}

func (d *PostgresDialect) LimitOffset(limit, offset int64) string {
	switch {
	case limit <= 0 && offset <= 0:
		return ""
	case limit <= 0:
		return fmt.Sprintf("OFFSET %d", offset)
	case offset <= 0:
		return fmt.Sprintf("LIMIT %d", limit)
	}
	return fmt.Sprintf("LIMIT %d OFFSET %d", limit, offset)
}

func (d *PostgresDialect) IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// ConvertPlaceholders converts ? placeholders to PostgreSQL-style $n placeholders.
func ConvertPlaceholders(query string) string {
	var result strings.Builder
	result.Grow(len(query) + 10)
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result.WriteString(fmt.Sprintf("$%d", n))
			n++
		} else {
			result.WriteByte(query[i])
		}
	}
	return result.String()
}

// Placeholders generates a comma-separated list of ? placeholders for IN clauses.
func Placeholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", count), ", ")
}
