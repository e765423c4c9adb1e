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

package store

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/mendersoftware/operations/model"
)

var (
	ErrNotFound = errors.New("document not found")
	// ErrConflict is returned when a dispatch entry already exists or
	// when its status is not the one expected by an update.
	ErrConflict = errors.New("conflicting document")
	// ErrDuplicatePending is returned when an entry with the same dedupe
	// key is already pending for the enrollment.
	ErrDuplicatePending = errors.New("duplicate pending entry")
)

// DataStore persists operations and their per-enrollment dispatch entries.
// Every call is scoped to the tenant of the identity in ctx.
//
//go:generate ../utils/mockgen.sh
type DataStore interface {
	Ping(ctx context.Context) error

	//tenants
	ProvisionTenant(ctx context.Context, tenantID string) error

	//operations
	InsertOperation(ctx context.Context, op *model.Operation) error
	GetOperation(ctx context.Context, id int64) (*model.Operation, error)
	GetOperationsByIDs(ctx context.Context, ids []int64) ([]model.Operation, error)

	//dispatch queue
	// InsertDispatchEntry fails with ErrDuplicatePending when entry
	// carries a DedupeKey already held by a pending entry of the same
	// enrollment.
	InsertDispatchEntry(ctx context.Context, entry *model.DispatchEntry) error
	GetDispatchEntry(ctx context.Context,
		enrollmentID string, operationID int64) (*model.DispatchEntry, error)
	FindDispatchEntries(ctx context.Context, q DispatchQuery) ([]model.DispatchEntry, error)
	CountDispatchEntries(ctx context.Context, q DispatchQuery) (int64, error)
	// NextDispatchEntry returns the oldest PENDING entry of the enrollment,
	// or the oldest NOTNOW entry last updated no later than notNowBefore.
	NextDispatchEntry(ctx context.Context,
		enrollmentID string, notNowBefore time.Time) (*model.DispatchEntry, error)
	// UpdateDispatchEntry applies update only if the entry is still in
	// the expected status. Leaving the pending statuses releases the
	// entry's dedupe key.
	UpdateDispatchEntry(ctx context.Context, enrollmentID string, operationID int64,
		expected model.Status, update model.DispatchUpdate) error

	//activities
	// FindUpdatedOperationIDs returns ids of operations having entries
	// updated after since, most recently updated first.
	FindUpdatedOperationIDs(ctx context.Context,
		since time.Time, skip, limit int64) ([]int64, error)
}

// Migrator is implemented by data stores that can bring their schema up
// to date.
type Migrator interface {
	Migrate(ctx context.Context) error
}
