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
	"context"
	"testing"
	"time"

	"github.com/mendersoftware/go-lib-micro/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mendersoftware/operations/model"
	"github.com/mendersoftware/operations/store"
)

func newTestStore(t *testing.T) *DataStoreSQL {
	ds, err := OpenSQLite(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { ds.Close() })
	require.NoError(t, ds.Migrate(context.Background()))
	return ds
}

func tenantContext(tenant string) context.Context {
	return identity.WithContext(context.Background(), &identity.Identity{Tenant: tenant})
}

func addEntry(
	t *testing.T,
	ctx context.Context,
	ds store.DataStore,
	op *model.Operation,
	position int,
	enrollmentID string,
) {
	err := ds.InsertDispatchEntry(ctx, &model.DispatchEntry{
		EnrollmentID:  enrollmentID,
		Device:        model.DeviceIdentifier{ID: "dev-" + enrollmentID, Type: "android"},
		OperationID:   op.ID,
		OperationCode: op.Code,
		OperationType: op.Type,
		Position:      position,
		Status:        model.StatusPending,
		CreatedAt:     op.CreatedAt,
		UpdatedAt:     op.CreatedAt,
	})
	require.NoError(t, err)
}

func TestMigrateIdempotent(t *testing.T) {
	ds := newTestStore(t)
	assert.NoError(t, ds.Migrate(context.Background()))
	assert.NoError(t, ds.Ping(context.Background()))
	assert.NoError(t, ds.ProvisionTenant(context.Background(), "acme"))
}

func TestInsertAndGetOperation(t *testing.T) {
	ds := newTestStore(t)
	ctx := tenantContext("acme")
	now := time.Now().UTC().Truncate(time.Microsecond)

	op := &model.Operation{
		Type:          model.OperationTypeConfig,
		Code:          "WIFI",
		PayloadHandle: "acme/1",
		CreatedAt:     now,
		Enabled:       true,
		InitiatedBy:   "admin@acme",
	}
	require.NoError(t, ds.InsertOperation(ctx, op))
	assert.Equal(t, int64(1), op.ID)

	other := &model.Operation{Type: model.OperationTypeCommand, Code: "LOCK", CreatedAt: now}
	require.NoError(t, ds.InsertOperation(ctx, other))
	assert.Equal(t, int64(2), other.ID)

	got, err := ds.GetOperation(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, *op, *got)

	_, err = ds.GetOperation(tenantContext("other"), op.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	ops, err := ds.GetOperationsByIDs(ctx, []int64{other.ID, op.ID, 42})
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, op.ID, ops[0].ID)
	assert.Equal(t, other.ID, ops[1].ID)

	ops, err = ds.GetOperationsByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, ops)

	assert.Error(t, ds.InsertOperation(ctx, nil))
}

func TestDispatchEntries(t *testing.T) {
	ds := newTestStore(t)
	ctx := tenantContext("acme")
	base := time.Now().UTC().Truncate(time.Microsecond).Add(-time.Hour)

	older := &model.Operation{Type: model.OperationTypeCommand, Code: "RING", CreatedAt: base}
	newer := &model.Operation{
		Type: model.OperationTypeCommand, Code: "LOCK", CreatedAt: base.Add(time.Minute),
	}
	require.NoError(t, ds.InsertOperation(ctx, older))
	require.NoError(t, ds.InsertOperation(ctx, newer))

	addEntry(t, ctx, ds, newer, 0, "e1")
	addEntry(t, ctx, ds, newer, 1, "e2")
	addEntry(t, ctx, ds, older, 0, "e1")

	err := ds.InsertDispatchEntry(ctx, &model.DispatchEntry{
		EnrollmentID: "e1", OperationID: newer.ID, Status: model.StatusPending,
	})
	assert.ErrorIs(t, err, store.ErrConflict)

	entry, err := ds.GetDispatchEntry(ctx, "e2", newer.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, 1, entry.Position)
	assert.Equal(t, model.DeviceIdentifier{ID: "dev-e2", Type: "android"}, entry.Device)
	assert.Equal(t, newer.CreatedAt, entry.CreatedAt)
	assert.Nil(t, entry.Response)

	_, err = ds.GetDispatchEntry(ctx, "e2", older.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	entries, err := ds.FindDispatchEntries(ctx, store.DispatchQuery{EnrollmentID: "e1"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, older.ID, entries[0].OperationID)
	assert.Equal(t, newer.ID, entries[1].OperationID)

	entries, err = ds.FindDispatchEntries(ctx, store.DispatchQuery{
		EnrollmentID: "e1",
		Skip:         1,
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, newer.ID, entries[0].OperationID)

	entries, err = ds.FindDispatchEntries(ctx, store.DispatchQuery{
		OperationIDs: []int64{newer.ID},
		Sort:         store.SortPosition,
		Limit:        1,
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "e1", entries[0].EnrollmentID)

	count, err := ds.CountDispatchEntries(ctx, store.DispatchQuery{Code: "LOCK"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = ds.CountDispatchEntries(tenantContext("other"), store.DispatchQuery{})
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = ds.FindDispatchEntries(ctx, store.DispatchQuery{Limit: -1})
	assert.Error(t, err)
}

func TestInsertDispatchEntryDedupe(t *testing.T) {
	ds := newTestStore(t)
	ctx := tenantContext("acme")
	now := time.Now().UTC().Truncate(time.Microsecond)

	entry := func(op *model.Operation, enrollmentID string) *model.DispatchEntry {
		return &model.DispatchEntry{
			EnrollmentID:  enrollmentID,
			OperationID:   op.ID,
			OperationCode: op.Code,
			Status:        model.StatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
			DedupeKey:     op.Code,
		}
	}
	var ops []*model.Operation
	for i := 0; i < 3; i++ {
		op := &model.Operation{Type: model.OperationTypeCommand, Code: "MONITOR", CreatedAt: now}
		require.NoError(t, ds.InsertOperation(ctx, op))
		ops = append(ops, op)
	}

	require.NoError(t, ds.InsertDispatchEntry(ctx, entry(ops[0], "e1")))
	assert.ErrorIs(t, ds.InsertDispatchEntry(ctx, entry(ops[1], "e1")),
		store.ErrDuplicatePending)
	assert.ErrorIs(t, ds.InsertDispatchEntry(ctx, entry(ops[0], "e1")),
		store.ErrConflict)

	// other enrollments and tenants hold their own keys
	require.NoError(t, ds.InsertDispatchEntry(ctx, entry(ops[1], "e2")))
	require.NoError(t, ds.InsertDispatchEntry(tenantContext("other"), entry(ops[1], "e1")))

	// NOTNOW still holds the key, a terminal status releases it
	require.NoError(t, ds.UpdateDispatchEntry(ctx, "e1", ops[0].ID,
		model.StatusPending, model.DispatchUpdate{Status: model.StatusNotNow, UpdatedAt: now}))
	assert.ErrorIs(t, ds.InsertDispatchEntry(ctx, entry(ops[2], "e1")),
		store.ErrDuplicatePending)
	require.NoError(t, ds.UpdateDispatchEntry(ctx, "e1", ops[0].ID,
		model.StatusNotNow, model.DispatchUpdate{Status: model.StatusCompleted, UpdatedAt: now}))
	assert.NoError(t, ds.InsertDispatchEntry(ctx, entry(ops[2], "e1")))
}

func TestNextDispatchEntry(t *testing.T) {
	ds := newTestStore(t)
	ctx := tenantContext("")
	base := time.Now().UTC().Truncate(time.Microsecond).Add(-time.Hour)

	first := &model.Operation{Type: model.OperationTypeCommand, Code: "RING", CreatedAt: base}
	second := &model.Operation{
		Type: model.OperationTypeCommand, Code: "LOCK", CreatedAt: base.Add(time.Second),
	}
	require.NoError(t, ds.InsertOperation(ctx, first))
	require.NoError(t, ds.InsertOperation(ctx, second))
	addEntry(t, ctx, ds, first, 0, "e1")
	addEntry(t, ctx, ds, second, 0, "e1")

	next, err := ds.NextDispatchEntry(ctx, "e1", base)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, first.ID, next.OperationID)

	deferredAt := base.Add(30 * time.Minute)
	require.NoError(t, ds.UpdateDispatchEntry(ctx, "e1", first.ID, model.StatusPending,
		model.DispatchUpdate{Status: model.StatusNotNow, UpdatedAt: deferredAt}))

	next, err = ds.NextDispatchEntry(ctx, "e1", deferredAt.Add(-time.Microsecond))
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, second.ID, next.OperationID)

	next, err = ds.NextDispatchEntry(ctx, "e1", deferredAt)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, first.ID, next.OperationID)
	assert.Equal(t, model.StatusNotNow, next.Status)

	next, err = ds.NextDispatchEntry(ctx, "unknown", deferredAt)
	assert.NoError(t, err)
	assert.Nil(t, next)
}

func TestUpdateDispatchEntry(t *testing.T) {
	ds := newTestStore(t)
	ctx := tenantContext("acme")
	now := time.Now().UTC().Truncate(time.Microsecond)

	op := &model.Operation{Type: model.OperationTypeCommand, Code: "RING", CreatedAt: now}
	require.NoError(t, ds.InsertOperation(ctx, op))
	addEntry(t, ctx, ds, op, 0, "e1")

	testCases := map[string]struct {
		enrollmentID string
		expected     model.Status
		update       model.DispatchUpdate

		err error
	}{
		"ok, in progress": {
			enrollmentID: "e1",
			expected:     model.StatusPending,
			update: model.DispatchUpdate{
				Status:    model.StatusInProgress,
				Response:  []byte(`{"ack":true}`),
				UpdatedAt: now.Add(time.Second),
			},
		},
		"error, status moved": {
			enrollmentID: "e1",
			expected:     model.StatusPending,
			update:       model.DispatchUpdate{Status: model.StatusCompleted},
			err:          store.ErrConflict,
		},
		"error, no such entry": {
			enrollmentID: "e2",
			expected:     model.StatusPending,
			update:       model.DispatchUpdate{Status: model.StatusCompleted},
			err:          store.ErrNotFound,
		},
		"ok, response kept": {
			enrollmentID: "e1",
			expected:     model.StatusInProgress,
			update: model.DispatchUpdate{
				Status:    model.StatusCompleted,
				UpdatedAt: now.Add(2 * time.Second),
			},
		},
	}
	// map iteration is random; run in a fixed order
	for _, name := range []string{
		"ok, in progress",
		"error, status moved",
		"error, no such entry",
		"ok, response kept",
	} {
		tc := testCases[name]
		t.Run(name, func(t *testing.T) {
			err := ds.UpdateDispatchEntry(ctx, tc.enrollmentID, op.ID, tc.expected, tc.update)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			entry, err := ds.GetDispatchEntry(ctx, tc.enrollmentID, op.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.update.Status, entry.Status)
			assert.Equal(t, tc.update.UpdatedAt, entry.UpdatedAt)
			assert.Equal(t, []byte(`{"ack":true}`), entry.Response)
		})
	}
}

func TestFindUpdatedOperationIDs(t *testing.T) {
	ds := newTestStore(t)
	ctx := tenantContext("acme")
	base := time.Now().UTC().Truncate(time.Microsecond).Add(-time.Hour)

	var ops []*model.Operation
	for i := 0; i < 3; i++ {
		op := &model.Operation{
			Type:      model.OperationTypeCommand,
			Code:      "RING",
			CreatedAt: base,
		}
		require.NoError(t, ds.InsertOperation(ctx, op))
		addEntry(t, ctx, ds, op, 0, "e1")
		addEntry(t, ctx, ds, op, 1, "e2")
		ops = append(ops, op)
	}

	since := base.Add(time.Minute)
	update := func(op *model.Operation, enrollmentID string, at time.Duration) {
		require.NoError(t, ds.UpdateDispatchEntry(ctx, enrollmentID, op.ID,
			model.StatusPending, model.DispatchUpdate{
				Status:    model.StatusCompleted,
				UpdatedAt: since.Add(at),
			}))
	}
	update(ops[0], "e1", 3*time.Minute)
	update(ops[0], "e2", time.Minute)
	update(ops[2], "e2", 2*time.Minute)

	ids, err := ds.FindUpdatedOperationIDs(ctx, since, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{ops[0].ID, ops[2].ID}, ids)

	ids, err = ds.FindUpdatedOperationIDs(ctx, since, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{ops[2].ID}, ids)

	ids, err = ds.FindUpdatedOperationIDs(ctx, since.Add(5*time.Minute), 0, 10)
	require.NoError(t, err)
	assert.Empty(t, ids)

	count, err := ds.CountDispatchEntries(ctx, store.DispatchQuery{UpdatedAfter: &since})
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
