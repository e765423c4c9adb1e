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

// Package sqldb implements the data store on top of database/sql,
// parameterized by an SQL dialect.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/mendersoftware/go-lib-micro/identity"

	"github.com/mendersoftware/operations/model"
	"github.com/mendersoftware/operations/store"
)

const (
	TableOperations = "operations"
	TableDispatch   = "dispatch_entries"

	IndexDispatchDedupe = "uq_dispatch_dedupe"

	MemoryPath = ":memory:"
)

const dispatchColumns = "id, enrollment_id, device_id, device_type, operation_id, " +
	"operation_code, operation_type, batch_position, status, response, " +
	"created_at, updated_at"

const operationColumns = "id, type, code, payload_handle, created_at, enabled, initiated_by"

// DataStoreSQL implements store.DataStore; tenants share tables and are
// told apart by the tenant_id column.
type DataStoreSQL struct {
	db      *sql.DB
	dialect Dialect
}

var _ store.DataStore = (*DataStoreSQL)(nil)

// NewDataStoreSQL wraps an open database. The schema is not touched.
func NewDataStoreSQL(db *sql.DB, dialect Dialect) *DataStoreSQL {
	return &DataStoreSQL{
		db:      db,
		dialect: dialect,
	}
}

// OpenSQLite opens (creating when needed) a SQLite database file.
func OpenSQLite(path string) (*DataStoreSQL, error) {
	dsn := path
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, errors.Wrap(err, "sqldb: failed to create db directory")
		}
		dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	dialect := &SQLiteDialect{}
	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, errors.Wrap(err, "sqldb: failed to open database")
	}
	// A single writer avoids SQLITE_BUSY; every connection of an
	// in-memory database would otherwise see its own database.
	db.SetMaxOpenConns(1)
	return NewDataStoreSQL(db, dialect), nil
}

// OpenPostgres opens a PostgreSQL database through pgx and checks the
// connection.
func OpenPostgres(ctx context.Context, dsn string) (*DataStoreSQL, error) {
	dialect := &PostgresDialect{}
	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, errors.Wrap(err, "sqldb: failed to open postgres connection")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "sqldb: failed to ping postgres")
	}
	return NewDataStoreSQL(db, dialect), nil
}

func (s *DataStoreSQL) Close() error {
	return s.db.Close()
}

func (s *DataStoreSQL) Dialect() Dialect {
	return s.dialect
}

func tenantFromContext(ctx context.Context) string {
	if id := identity.FromContext(ctx); id != nil {
		return id.Tenant
	}
	return ""
}

func toMicros(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}

func fromMicros(us int64) time.Time {
	if us == 0 {
		return time.Time{}
	}
	return time.UnixMicro(us).UTC()
}

func (s *DataStoreSQL) exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.dialect.Rebind(query), args...)
}

func (s *DataStoreSQL) query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
}

func (s *DataStoreSQL) queryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return s.db.QueryRowContext(ctx, s.dialect.Rebind(query), args...)
}

// Migrate creates the schema. It is idempotent.
func (s *DataStoreSQL) Migrate(ctx context.Context) error {
	for _, stmt := range schema(s.dialect) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "sqldb: failed to apply schema (%s)", s.dialect.Name())
		}
	}
	return nil
}

func (s *DataStoreSQL) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ProvisionTenant is a no-op: tenants share the schema.
func (s *DataStoreSQL) ProvisionTenant(ctx context.Context, tenantID string) error {
	return nil
}

//operations

func (s *DataStoreSQL) InsertOperation(ctx context.Context, op *model.Operation) error {
	if op == nil {
		return errors.New("nil operation")
	}
	q := fmt.Sprintf(
		"INSERT INTO %s (tenant_id, type, code, payload_handle, created_at, enabled, initiated_by) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?) %s",
		TableOperations, s.dialect.ReturningClause("id"),
	)
	err := s.queryRow(ctx, q,
		tenantFromContext(ctx),
		string(op.Type),
		op.Code,
		op.PayloadHandle,
		toMicros(op.CreatedAt),
		op.Enabled,
		op.InitiatedBy,
	).Scan(&op.ID)
	if err != nil {
		return errors.Wrap(err, "failed to insert operation")
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanOperation(row scanner) (*model.Operation, error) {
	var (
		op      model.Operation
		opType  string
		created int64
	)
	err := row.Scan(
		&op.ID,
		&opType,
		&op.Code,
		&op.PayloadHandle,
		&created,
		&op.Enabled,
		&op.InitiatedBy,
	)
	if err != nil {
		return nil, err
	}
	op.Type = model.OperationType(opType)
	op.CreatedAt = fromMicros(created)
	return &op, nil
}

func (s *DataStoreSQL) GetOperation(ctx context.Context, id int64) (*model.Operation, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE tenant_id = ? AND id = ?",
		operationColumns, TableOperations)
	op, err := scanOperation(s.queryRow(ctx, q, tenantFromContext(ctx), id))
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to get operation")
	}
	return op, nil
}

func (s *DataStoreSQL) GetOperationsByIDs(
	ctx context.Context,
	ids []int64,
) ([]model.Operation, error) {
	ops := []model.Operation{}
	if len(ids) == 0 {
		return ops, nil
	}
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, tenantFromContext(ctx))
	for _, id := range ids {
		args = append(args, id)
	}
	q := fmt.Sprintf("SELECT %s FROM %s WHERE tenant_id = ? AND id IN (%s) ORDER BY id",
		operationColumns, TableOperations, Placeholders(len(ids)))
	rows, err := s.query(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list operations")
	}
	defer rows.Close()
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to decode operation")
		}
		ops = append(ops, *op)
	}
	return ops, errors.Wrap(rows.Err(), "failed to list operations")
}

//dispatch queue

func (s *DataStoreSQL) InsertDispatchEntry(
	ctx context.Context,
	entry *model.DispatchEntry,
) error {
	if entry == nil {
		return errors.New("nil dispatch entry")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	tenantID := tenantFromContext(ctx)
	q := fmt.Sprintf("INSERT INTO %s (tenant_id, dedupe_key, %s) "+
		"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		TableDispatch, dispatchColumns)
	_, err := s.exec(ctx, q,
		tenantID,
		sql.NullString{String: entry.DedupeKey, Valid: entry.DedupeKey != ""},
		entry.ID,
		entry.EnrollmentID,
		entry.Device.ID,
		entry.Device.Type,
		entry.OperationID,
		entry.OperationCode,
		string(entry.OperationType),
		entry.Position,
		string(entry.Status),
		entry.Response,
		toMicros(entry.CreatedAt),
		toMicros(entry.UpdatedAt),
	)
	if s.dialect.IsUniqueViolation(err) {
		if entry.DedupeKey == "" {
			return store.ErrConflict
		}
		return s.insertConflict(ctx, tenantID, entry)
	} else if err != nil {
		return errors.Wrap(err, "failed to insert dispatch entry")
	}
	return nil
}

// insertConflict tells which unique key rejected entry.
func (s *DataStoreSQL) insertConflict(
	ctx context.Context,
	tenantID string,
	entry *model.DispatchEntry,
) error {
	var exists int
	err := s.queryRow(ctx, fmt.Sprintf("SELECT 1 FROM %s "+
		"WHERE tenant_id = ? AND enrollment_id = ? AND operation_id = ?",
		TableDispatch), tenantID, entry.EnrollmentID, entry.OperationID).Scan(&exists)
	switch {
	case err == sql.ErrNoRows:
		return store.ErrDuplicatePending
	case err != nil:
		return errors.Wrap(err, "failed to check dispatch entry")
	}
	return store.ErrConflict
}

func scanDispatchEntry(row scanner) (*model.DispatchEntry, error) {
	var (
		entry            model.DispatchEntry
		opType, status   string
		created, updated int64
	)
	err := row.Scan(
		&entry.ID,
		&entry.EnrollmentID,
		&entry.Device.ID,
		&entry.Device.Type,
		&entry.OperationID,
		&entry.OperationCode,
		&opType,
		&entry.Position,
		&status,
		&entry.Response,
		&created,
		&updated,
	)
	if err != nil {
		return nil, err
	}
	entry.OperationType = model.OperationType(opType)
	entry.Status = model.Status(status)
	entry.CreatedAt = fromMicros(created)
	entry.UpdatedAt = fromMicros(updated)
	return &entry, nil
}

func (s *DataStoreSQL) GetDispatchEntry(
	ctx context.Context,
	enrollmentID string,
	operationID int64,
) (*model.DispatchEntry, error) {
	q := fmt.Sprintf("SELECT %s FROM %s "+
		"WHERE tenant_id = ? AND enrollment_id = ? AND operation_id = ?",
		dispatchColumns, TableDispatch)
	entry, err := scanDispatchEntry(
		s.queryRow(ctx, q, tenantFromContext(ctx), enrollmentID, operationID))
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to get dispatch entry")
	}
	return entry, nil
}

func buildDispatchWhere(ctx context.Context, q store.DispatchQuery) (string, []interface{}) {
	clauses := []string{"tenant_id = ?"}
	args := []interface{}{tenantFromContext(ctx)}
	if q.EnrollmentID != "" {
		clauses = append(clauses, "enrollment_id = ?")
		args = append(args, q.EnrollmentID)
	}
	if len(q.OperationIDs) > 0 {
		clauses = append(clauses,
			fmt.Sprintf("operation_id IN (%s)", Placeholders(len(q.OperationIDs))))
		for _, id := range q.OperationIDs {
			args = append(args, id)
		}
	}
	if len(q.Statuses) > 0 {
		clauses = append(clauses,
			fmt.Sprintf("status IN (%s)", Placeholders(len(q.Statuses))))
		for _, status := range q.Statuses {
			args = append(args, string(status))
		}
	}
	if q.Code != "" {
		clauses = append(clauses, "operation_code = ?")
		args = append(args, q.Code)
	}
	if q.UpdatedAfter != nil {
		clauses = append(clauses, "updated_at > ?")
		args = append(args, toMicros(*q.UpdatedAfter))
	}
	return strings.Join(clauses, " AND "), args
}

func dispatchOrderBy(order store.SortOrder) string {
	switch order {
	case store.SortPosition:
		return "operation_id ASC, batch_position ASC"
	default:
		return "created_at ASC, operation_id ASC"
	}
}

func (s *DataStoreSQL) findDispatchEntries(
	ctx context.Context,
	q string,
	args ...interface{},
) ([]model.DispatchEntry, error) {
	rows, err := s.query(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list dispatch entries")
	}
	defer rows.Close()
	entries := []model.DispatchEntry{}
	for rows.Next() {
		entry, err := scanDispatchEntry(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to decode dispatch entry")
		}
		entries = append(entries, *entry)
	}
	return entries, errors.Wrap(rows.Err(), "failed to list dispatch entries")
}

func (s *DataStoreSQL) FindDispatchEntries(
	ctx context.Context,
	q store.DispatchQuery,
) ([]model.DispatchEntry, error) {
	if err := q.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid query")
	}
	where, args := buildDispatchWhere(ctx, q)
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY %s %s",
		dispatchColumns, TableDispatch, where,
		dispatchOrderBy(q.Sort), s.dialect.LimitOffset(q.Limit, q.Skip))
	return s.findDispatchEntries(ctx, query, args...)
}

func (s *DataStoreSQL) CountDispatchEntries(
	ctx context.Context,
	q store.DispatchQuery,
) (int64, error) {
	if err := q.Validate(); err != nil {
		return 0, errors.Wrap(err, "invalid query")
	}
	where, args := buildDispatchWhere(ctx, q)
	var count int64
	err := s.queryRow(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", TableDispatch, where),
		args...,
	).Scan(&count)
	if err != nil {
		return 0, errors.Wrap(err, "failed to count dispatch entries")
	}
	return count, nil
}

func (s *DataStoreSQL) NextDispatchEntry(
	ctx context.Context,
	enrollmentID string,
	notNowBefore time.Time,
) (*model.DispatchEntry, error) {
	q := fmt.Sprintf("SELECT %s FROM %s "+
		"WHERE tenant_id = ? AND enrollment_id = ? "+
		"AND (status = ? OR (status = ? AND updated_at <= ?)) "+
		"ORDER BY %s %s",
		dispatchColumns, TableDispatch,
		dispatchOrderBy(store.SortCreatedAsc), s.dialect.LimitOffset(1, 0))
	entry, err := scanDispatchEntry(s.queryRow(ctx, q,
		tenantFromContext(ctx),
		enrollmentID,
		string(model.StatusPending),
		string(model.StatusNotNow),
		toMicros(notNowBefore),
	))
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to get next dispatch entry")
	}
	return entry, nil
}

func (s *DataStoreSQL) UpdateDispatchEntry(
	ctx context.Context,
	enrollmentID string,
	operationID int64,
	expected model.Status,
	update model.DispatchUpdate,
) error {
	set := "status = ?, updated_at = ?"
	args := []interface{}{string(update.Status), toMicros(update.UpdatedAt)}
	if update.Response != nil {
		set += ", response = ?"
		args = append(args, update.Response)
	}
	if !update.Status.Pending() {
		set += ", dedupe_key = NULL"
	}
	tenantID := tenantFromContext(ctx)
	args = append(args, tenantID, enrollmentID, operationID, string(expected))

	res, err := s.exec(ctx, fmt.Sprintf("UPDATE %s SET %s "+
		"WHERE tenant_id = ? AND enrollment_id = ? AND operation_id = ? AND status = ?",
		TableDispatch, set), args...)
	if err != nil {
		return errors.Wrap(err, "failed to update dispatch entry")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to update dispatch entry")
	} else if affected > 0 {
		return nil
	}

	var exists int
	err = s.queryRow(ctx, fmt.Sprintf("SELECT 1 FROM %s "+
		"WHERE tenant_id = ? AND enrollment_id = ? AND operation_id = ?",
		TableDispatch), tenantID, enrollmentID, operationID).Scan(&exists)
	if err == sql.ErrNoRows {
		return store.ErrNotFound
	} else if err != nil {
		return errors.Wrap(err, "failed to check dispatch entry")
	}
	return store.ErrConflict
}

//activities

func (s *DataStoreSQL) FindUpdatedOperationIDs(
	ctx context.Context,
	since time.Time,
	skip, limit int64,
) ([]int64, error) {
	q := fmt.Sprintf("SELECT operation_id FROM %s "+
		"WHERE tenant_id = ? AND updated_at > ? "+
		"GROUP BY operation_id "+
		"ORDER BY MAX(updated_at) DESC, operation_id DESC %s",
		TableDispatch, s.dialect.LimitOffset(limit, skip))
	rows, err := s.query(ctx, q, tenantFromContext(ctx), toMicros(since))
	if err != nil {
		return nil, errors.Wrap(err, "failed to aggregate dispatch entries")
	}
	defer rows.Close()
	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "failed to decode operation id")
		}
		ids = append(ids, id)
	}
	return ids, errors.Wrap(rows.Err(), "failed to aggregate dispatch entries")
}
