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
package mocks

import context "context"
import mock "github.com/stretchr/testify/mock"
import model "github.com/mendersoftware/operations/model"
import store "github.com/mendersoftware/operations/store"

import time "time"

// DataStore is an auto-generated mock type for the DataStore type
type DataStore struct {
	mock.Mock
}

// CountDispatchEntries provides a mock function with given fields: ctx, q
func (_m *DataStore) CountDispatchEntries(ctx context.Context, q store.DispatchQuery) (int64, error) {
	ret := _m.Called(ctx, q)

	var r0 int64
	if rf, ok := ret.Get(0).(func(context.Context, store.DispatchQuery) int64); ok {
		r0 = rf(ctx, q)
	} else {
		r0 = ret.Get(0).(int64)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, store.DispatchQuery) error); ok {
		r1 = rf(ctx, q)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// FindDispatchEntries provides a mock function with given fields: ctx, q
func (_m *DataStore) FindDispatchEntries(ctx context.Context, q store.DispatchQuery) ([]model.DispatchEntry, error) {
	ret := _m.Called(ctx, q)

	var r0 []model.DispatchEntry
	if rf, ok := ret.Get(0).(func(context.Context, store.DispatchQuery) []model.DispatchEntry); ok {
		r0 = rf(ctx, q)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]model.DispatchEntry)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, store.DispatchQuery) error); ok {
		r1 = rf(ctx, q)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// FindUpdatedOperationIDs provides a mock function with given fields: ctx, since, skip, limit
func (_m *DataStore) FindUpdatedOperationIDs(ctx context.Context, since time.Time, skip int64, limit int64) ([]int64, error) {
	ret := _m.Called(ctx, since, skip, limit)

	var r0 []int64
	if rf, ok := ret.Get(0).(func(context.Context, time.Time, int64, int64) []int64); ok {
		r0 = rf(ctx, since, skip, limit)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]int64)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, time.Time, int64, int64) error); ok {
		r1 = rf(ctx, since, skip, limit)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetDispatchEntry provides a mock function with given fields: ctx, enrollmentID, operationID
func (_m *DataStore) GetDispatchEntry(ctx context.Context, enrollmentID string, operationID int64) (*model.DispatchEntry, error) {
	ret := _m.Called(ctx, enrollmentID, operationID)

	var r0 *model.DispatchEntry
	if rf, ok := ret.Get(0).(func(context.Context, string, int64) *model.DispatchEntry); ok {
		r0 = rf(ctx, enrollmentID, operationID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*model.DispatchEntry)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, int64) error); ok {
		r1 = rf(ctx, enrollmentID, operationID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetOperation provides a mock function with given fields: ctx, id
func (_m *DataStore) GetOperation(ctx context.Context, id int64) (*model.Operation, error) {
	ret := _m.Called(ctx, id)

	var r0 *model.Operation
	if rf, ok := ret.Get(0).(func(context.Context, int64) *model.Operation); ok {
		r0 = rf(ctx, id)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*model.Operation)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, int64) error); ok {
		r1 = rf(ctx, id)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetOperationsByIDs provides a mock function with given fields: ctx, ids
func (_m *DataStore) GetOperationsByIDs(ctx context.Context, ids []int64) ([]model.Operation, error) {
	ret := _m.Called(ctx, ids)

	var r0 []model.Operation
	if rf, ok := ret.Get(0).(func(context.Context, []int64) []model.Operation); ok {
		r0 = rf(ctx, ids)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]model.Operation)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, []int64) error); ok {
		r1 = rf(ctx, ids)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// InsertDispatchEntry provides a mock function with given fields: ctx, entry
func (_m *DataStore) InsertDispatchEntry(ctx context.Context, entry *model.DispatchEntry) error {
	ret := _m.Called(ctx, entry)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *model.DispatchEntry) error); ok {
		r0 = rf(ctx, entry)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// InsertOperation provides a mock function with given fields: ctx, op
func (_m *DataStore) InsertOperation(ctx context.Context, op *model.Operation) error {
	ret := _m.Called(ctx, op)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *model.Operation) error); ok {
		r0 = rf(ctx, op)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// NextDispatchEntry provides a mock function with given fields: ctx, enrollmentID, notNowBefore
func (_m *DataStore) NextDispatchEntry(ctx context.Context, enrollmentID string, notNowBefore time.Time) (*model.DispatchEntry, error) {
	ret := _m.Called(ctx, enrollmentID, notNowBefore)

	var r0 *model.DispatchEntry
	if rf, ok := ret.Get(0).(func(context.Context, string, time.Time) *model.DispatchEntry); ok {
		r0 = rf(ctx, enrollmentID, notNowBefore)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*model.DispatchEntry)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, time.Time) error); ok {
		r1 = rf(ctx, enrollmentID, notNowBefore)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Ping provides a mock function with given fields: ctx
func (_m *DataStore) Ping(ctx context.Context) error {
	ret := _m.Called(ctx)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context) error); ok {
		r0 = rf(ctx)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// ProvisionTenant provides a mock function with given fields: ctx, tenantID
func (_m *DataStore) ProvisionTenant(ctx context.Context, tenantID string) error {
	ret := _m.Called(ctx, tenantID)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string) error); ok {
		r0 = rf(ctx, tenantID)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// UpdateDispatchEntry provides a mock function with given fields: ctx, enrollmentID, operationID, expected, update
func (_m *DataStore) UpdateDispatchEntry(ctx context.Context, enrollmentID string, operationID int64, expected model.Status, update model.DispatchUpdate) error {
	ret := _m.Called(ctx, enrollmentID, operationID, expected, update)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, int64, model.Status, model.DispatchUpdate) error); ok {
		r0 = rf(ctx, enrollmentID, operationID, expected, update)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}
