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

package authz

import (
	"context"
	"fmt"
	"testing"

	"github.com/mendersoftware/go-lib-micro/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mendersoftware/operations/model"
)

func TestAuthorize(t *testing.T) {
	testCases := []struct {
		subject *Subject
		action  Action
		err     error
	}{
		{subject: &Subject{Role: RoleAdmin}, action: ActionActivitiesRead},
		{subject: &Subject{Role: RoleAdmin}, action: ActionOperationsCreate},
		{subject: &Subject{Role: RoleOwner}, action: ActionOperationsCreate},
		{subject: &Subject{Role: RoleOwner}, action: ActionOperationsUpdate},
		{
			subject: &Subject{Role: RoleOwner},
			action:  ActionActivitiesRead,
			err:     ErrUnauthorized,
		},
		{
			subject: &Subject{Role: "GUEST"},
			action:  ActionOperationsRead,
			err:     ErrUnauthorized,
		},
		{action: ActionOperationsRead, err: ErrNoSubject},
	}
	for i, tc := range testCases {
		t.Run(fmt.Sprintf("test case %d", i), func(t *testing.T) {
			err := Authorize(tc.subject, tc.action)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCanAccess(t *testing.T) {
	enrollment := &model.Enrollment{
		ID:       "enr-1",
		TenantID: "tenant1",
		Owner:    "alice",
	}
	testCases := []struct {
		subject *Subject
		access  bool
	}{
		{
			subject: &Subject{TenantID: "tenant1", Principal: "bob", Role: RoleAdmin},
			access:  true,
		},
		{
			subject: &Subject{TenantID: "tenant1", Principal: "alice", Role: RoleOwner},
			access:  true,
		},
		{
			subject: &Subject{
				TenantID:         "tenant1",
				Principal:        "device",
				Role:             RoleOwner,
				OwnedEnrollments: []string{"enr-1"},
			},
			access: true,
		},
		{
			subject: &Subject{TenantID: "tenant1", Principal: "bob", Role: RoleOwner},
			access:  false,
		},
		{
			subject: &Subject{TenantID: "tenant2", Principal: "root", Role: RoleAdmin},
			access:  false,
		},
		{
			subject: &Subject{TenantID: "tenant1", Role: RoleOwner},
			access:  false,
		},
		{
			subject: &Subject{TenantID: "tenant1", Principal: "alice", Role: "AUDITOR"},
			access:  false,
		},
		{access: false},
	}
	for i, tc := range testCases {
		t.Run(fmt.Sprintf("test case %d", i), func(t *testing.T) {
			assert.Equal(t, tc.access, CanAccess(tc.subject, enrollment))
		})
	}
}

func TestProviders(t *testing.T) {
	ctx := context.Background()
	p := NewDefaultProvider()

	_, err := p.Subject(ctx)
	assert.ErrorIs(t, err, ErrNoSubject)

	userCtx := identity.WithContext(ctx, &identity.Identity{
		Subject: "user-1",
		Tenant:  "tenant1",
		IsUser:  true,
	})
	subject, err := p.Subject(userCtx)
	require.NoError(t, err)
	assert.Equal(t, &Subject{
		TenantID:  "tenant1",
		Principal: "user-1",
		Role:      RoleAdmin,
	}, subject)

	deviceCtx := identity.WithContext(ctx, &identity.Identity{
		Subject:  "enr-9",
		Tenant:   "tenant1",
		IsDevice: true,
	})
	subject, err = p.Subject(deviceCtx)
	require.NoError(t, err)
	assert.Equal(t, RoleOwner, subject.Role)
	assert.Equal(t, []string{"enr-9"}, subject.OwnedEnrollments)

	explicit := &Subject{TenantID: "tenant2", Principal: "bob", Role: RoleOwner}
	subject, err = p.Subject(WithSubject(userCtx, explicit))
	require.NoError(t, err)
	assert.Same(t, explicit, subject)
}
