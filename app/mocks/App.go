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

import time "time"

// App is an auto-generated mock type for the App type
type App struct {
	mock.Mock
}

// AddOperation provides a mock function with given fields: ctx, op, devices
func (_m *App) AddOperation(ctx context.Context, op *model.Operation, devices []model.DeviceIdentifier) (*model.Activity, error) {
	ret := _m.Called(ctx, op, devices)

	var r0 *model.Activity
	if rf, ok := ret.Get(0).(func(context.Context, *model.Operation, []model.DeviceIdentifier) *model.Activity); ok {
		r0 = rf(ctx, op, devices)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*model.Activity)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, *model.Operation, []model.DeviceIdentifier) error); ok {
		r1 = rf(ctx, op, devices)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetActivitiesUpdatedAfter provides a mock function with given fields: ctx, since, limit, offset
func (_m *App) GetActivitiesUpdatedAfter(ctx context.Context, since time.Time, limit int, offset int) ([]model.Activity, error) {
	ret := _m.Called(ctx, since, limit, offset)

	var r0 []model.Activity
	if rf, ok := ret.Get(0).(func(context.Context, time.Time, int, int) []model.Activity); ok {
		r0 = rf(ctx, since, limit, offset)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]model.Activity)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, time.Time, int, int) error); ok {
		r1 = rf(ctx, since, limit, offset)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetActivityCountUpdatedAfter provides a mock function with given fields: ctx, since
func (_m *App) GetActivityCountUpdatedAfter(ctx context.Context, since time.Time) (int64, error) {
	ret := _m.Called(ctx, since)

	var r0 int64
	if rf, ok := ret.Get(0).(func(context.Context, time.Time) int64); ok {
		r0 = rf(ctx, since)
	} else {
		r0 = ret.Get(0).(int64)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, time.Time) error); ok {
		r1 = rf(ctx, since)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetNextPendingOperation provides a mock function with given fields: ctx, device
func (_m *App) GetNextPendingOperation(ctx context.Context, device model.DeviceIdentifier) (*model.DeviceOperation, error) {
	ret := _m.Called(ctx, device)

	var r0 *model.DeviceOperation
	if rf, ok := ret.Get(0).(func(context.Context, model.DeviceIdentifier) *model.DeviceOperation); ok {
		r0 = rf(ctx, device)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*model.DeviceOperation)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, model.DeviceIdentifier) error); ok {
		r1 = rf(ctx, device)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetNextPendingOperationWithWindow provides a mock function with given fields: ctx, device, window
func (_m *App) GetNextPendingOperationWithWindow(ctx context.Context, device model.DeviceIdentifier, window time.Duration) (*model.DeviceOperation, error) {
	ret := _m.Called(ctx, device, window)

	var r0 *model.DeviceOperation
	if rf, ok := ret.Get(0).(func(context.Context, model.DeviceIdentifier, time.Duration) *model.DeviceOperation); ok {
		r0 = rf(ctx, device, window)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*model.DeviceOperation)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, model.DeviceIdentifier, time.Duration) error); ok {
		r1 = rf(ctx, device, window)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetOperation provides a mock function with given fields: ctx, operationID
func (_m *App) GetOperation(ctx context.Context, operationID int64) (*model.Operation, error) {
	ret := _m.Called(ctx, operationID)

	var r0 *model.Operation
	if rf, ok := ret.Get(0).(func(context.Context, int64) *model.Operation); ok {
		r0 = rf(ctx, operationID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*model.Operation)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, int64) error); ok {
		r1 = rf(ctx, operationID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetOperationByActivityID provides a mock function with given fields: ctx, activityID
func (_m *App) GetOperationByActivityID(ctx context.Context, activityID string) (*model.Activity, error) {
	ret := _m.Called(ctx, activityID)

	var r0 *model.Activity
	if rf, ok := ret.Get(0).(func(context.Context, string) *model.Activity); ok {
		r0 = rf(ctx, activityID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*model.Activity)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, activityID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetOperationByActivityIDAndDevice provides a mock function with given fields: ctx, activityID, device
func (_m *App) GetOperationByActivityIDAndDevice(ctx context.Context, activityID string, device model.DeviceIdentifier) (*model.Activity, error) {
	ret := _m.Called(ctx, activityID, device)

	var r0 *model.Activity
	if rf, ok := ret.Get(0).(func(context.Context, string, model.DeviceIdentifier) *model.Activity); ok {
		r0 = rf(ctx, activityID, device)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*model.Activity)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, model.DeviceIdentifier) error); ok {
		r1 = rf(ctx, activityID, device)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetOperationByDeviceAndOperationID provides a mock function with given fields: ctx, device, operationID
func (_m *App) GetOperationByDeviceAndOperationID(ctx context.Context, device model.DeviceIdentifier, operationID int64) (*model.DeviceOperation, error) {
	ret := _m.Called(ctx, device, operationID)

	var r0 *model.DeviceOperation
	if rf, ok := ret.Get(0).(func(context.Context, model.DeviceIdentifier, int64) *model.DeviceOperation); ok {
		r0 = rf(ctx, device, operationID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*model.DeviceOperation)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, model.DeviceIdentifier, int64) error); ok {
		r1 = rf(ctx, device, operationID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetOperations provides a mock function with given fields: ctx, device
func (_m *App) GetOperations(ctx context.Context, device model.DeviceIdentifier) ([]model.DeviceOperation, error) {
	ret := _m.Called(ctx, device)

	var r0 []model.DeviceOperation
	if rf, ok := ret.Get(0).(func(context.Context, model.DeviceIdentifier) []model.DeviceOperation); ok {
		r0 = rf(ctx, device)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]model.DeviceOperation)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, model.DeviceIdentifier) error); ok {
		r1 = rf(ctx, device)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetOperationsByDeviceAndStatus provides a mock function with given fields: ctx, device, status
func (_m *App) GetOperationsByDeviceAndStatus(ctx context.Context, device model.DeviceIdentifier, status model.Status) ([]model.DeviceOperation, error) {
	ret := _m.Called(ctx, device, status)

	var r0 []model.DeviceOperation
	if rf, ok := ret.Get(0).(func(context.Context, model.DeviceIdentifier, model.Status) []model.DeviceOperation); ok {
		r0 = rf(ctx, device, status)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]model.DeviceOperation)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, model.DeviceIdentifier, model.Status) error); ok {
		r1 = rf(ctx, device, status)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetOperationsPaginated provides a mock function with given fields: ctx, device, req
func (_m *App) GetOperationsPaginated(ctx context.Context, device model.DeviceIdentifier, req model.PaginationRequest) (*model.PaginationResult, error) {
	ret := _m.Called(ctx, device, req)

	var r0 *model.PaginationResult
	if rf, ok := ret.Get(0).(func(context.Context, model.DeviceIdentifier, model.PaginationRequest) *model.PaginationResult); ok {
		r0 = rf(ctx, device, req)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*model.PaginationResult)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, model.DeviceIdentifier, model.PaginationRequest) error); ok {
		r1 = rf(ctx, device, req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetPendingOperations provides a mock function with given fields: ctx, device
func (_m *App) GetPendingOperations(ctx context.Context, device model.DeviceIdentifier) ([]model.DeviceOperation, error) {
	ret := _m.Called(ctx, device)

	var r0 []model.DeviceOperation
	if rf, ok := ret.Get(0).(func(context.Context, model.DeviceIdentifier) []model.DeviceOperation); ok {
		r0 = rf(ctx, device)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]model.DeviceOperation)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, model.DeviceIdentifier) error); ok {
		r1 = rf(ctx, device)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// HealthCheck provides a mock function with given fields: ctx
func (_m *App) HealthCheck(ctx context.Context) error {
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
func (_m *App) ProvisionTenant(ctx context.Context, tenantID string) error {
	ret := _m.Called(ctx, tenantID)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string) error); ok {
		r0 = rf(ctx, tenantID)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// UpdateOperation provides a mock function with given fields: ctx, device, update
func (_m *App) UpdateOperation(ctx context.Context, device model.DeviceIdentifier, update model.StatusUpdate) error {
	ret := _m.Called(ctx, device, update)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, model.DeviceIdentifier, model.StatusUpdate) error); ok {
		r0 = rf(ctx, device, update)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}
