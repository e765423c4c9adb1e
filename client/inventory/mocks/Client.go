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

// Client is an auto-generated mock type for the Client type
type Client struct {
	mock.Mock
}

// CheckHealth provides a mock function with given fields: ctx
func (_m *Client) CheckHealth(ctx context.Context) error {
	ret := _m.Called(ctx)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context) error); ok {
		r0 = rf(ctx)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// EnrollmentStatus provides a mock function with given fields: ctx, tenantID, enrollmentID
func (_m *Client) EnrollmentStatus(ctx context.Context, tenantID string, enrollmentID string) (model.EnrollmentStatus, error) {
	ret := _m.Called(ctx, tenantID, enrollmentID)

	var r0 model.EnrollmentStatus
	if rf, ok := ret.Get(0).(func(context.Context, string, string) model.EnrollmentStatus); ok {
		r0 = rf(ctx, tenantID, enrollmentID)
	} else {
		r0 = ret.Get(0).(model.EnrollmentStatus)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, string) error); ok {
		r1 = rf(ctx, tenantID, enrollmentID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ResolveEnrollment provides a mock function with given fields: ctx, tenantID, device
func (_m *Client) ResolveEnrollment(ctx context.Context, tenantID string, device model.DeviceIdentifier) (*model.Enrollment, error) {
	ret := _m.Called(ctx, tenantID, device)

	var r0 *model.Enrollment
	if rf, ok := ret.Get(0).(func(context.Context, string, model.DeviceIdentifier) *model.Enrollment); ok {
		r0 = rf(ctx, tenantID, device)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*model.Enrollment)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, model.DeviceIdentifier) error); ok {
		r1 = rf(ctx, tenantID, device)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}
