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

//go:build integration

package sqldb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mendersoftware/operations/model"
	"github.com/mendersoftware/operations/store"
)

func TestPostgresDataStore(t *testing.T) {
	ctx := context.Background()
	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("operations"),
		postgres.WithUsername("operations"),
		postgres.WithPassword("operations"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	ds, err := OpenPostgres(ctx, dsn)
	require.NoError(t, err)
	defer ds.Close()
	require.NoError(t, ds.Migrate(ctx))
	require.NoError(t, ds.Migrate(ctx))

	tctx := tenantContext("acme")
	now := time.Now().UTC().Truncate(time.Microsecond)
	op := &model.Operation{
		Type: model.OperationTypeCommand, Code: "RING", CreatedAt: now, Enabled: true,
	}
	require.NoError(t, ds.InsertOperation(tctx, op))
	assert.NotZero(t, op.ID)

	addEntry(t, tctx, ds, op, 0, "e1")
	err = ds.InsertDispatchEntry(tctx, &model.DispatchEntry{
		EnrollmentID: "e1", OperationID: op.ID, Status: model.StatusPending,
	})
	assert.ErrorIs(t, err, store.ErrConflict)

	monitor := &model.Operation{Type: model.OperationTypeCommand, Code: "MONITOR", CreatedAt: now}
	require.NoError(t, ds.InsertOperation(tctx, monitor))
	require.NoError(t, ds.InsertDispatchEntry(tctx, &model.DispatchEntry{
		EnrollmentID: "e2", OperationID: monitor.ID, Status: model.StatusPending,
		DedupeKey: monitor.Code,
	}))
	err = ds.InsertDispatchEntry(tctx, &model.DispatchEntry{
		EnrollmentID: "e2", OperationID: op.ID, Status: model.StatusPending,
		DedupeKey: monitor.Code,
	})
	assert.ErrorIs(t, err, store.ErrDuplicatePending)

	next, err := ds.NextDispatchEntry(tctx, "e1", now)
	require.NoError(t, err)
	require.NotNil(t, next)

	err = ds.UpdateDispatchEntry(tctx, "e1", op.ID, model.StatusPending, model.DispatchUpdate{
		Status:    model.StatusCompleted,
		Response:  []byte("ok"),
		UpdatedAt: now.Add(time.Second),
	})
	require.NoError(t, err)

	ids, err := ds.FindUpdatedOperationIDs(tctx, now, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{op.ID}, ids)
}
