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

// Package authz decides which enrollments a caller may act upon.
package authz

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/mendersoftware/operations/model"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNoSubject    = errors.New("no authorization context")
)

type Role string

const (
	// RoleAdmin may act on every enrollment of its tenant.
	RoleAdmin Role = "ADMIN"
	// RoleOwner may act only on the enrollments it owns.
	RoleOwner Role = "OWNER"
)

// Action is a permissionable operation of the operation manager.
type Action string

const (
	ActionOperationsCreate Action = "operations.create"
	ActionOperationsRead   Action = "operations.read"
	ActionOperationsUpdate Action = "operations.update"
	ActionActivitiesRead   Action = "activities.read"
)

var rolePolicies = map[Role][]string{
	RoleAdmin: {"*"},
	RoleOwner: {"operations.*"},
}

// Subject is the authorization context of a single call.
type Subject struct {
	TenantID  string
	Principal string
	Role      Role
	// OwnedEnrollments lists enrollment ids owned by the principal
	// in addition to those naming it as owner.
	OwnedEnrollments []string
}

func (s *Subject) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

// Authorize ensures subject may perform action.
func Authorize(subject *Subject, action Action) error {
	if subject == nil {
		return ErrNoSubject
	}
	if !roleAllows(subject.Role, action) {
		return errors.Wrapf(ErrUnauthorized,
			"role %q cannot perform %s", subject.Role, action)
	}
	return nil
}

// CanAccess reports whether subject may act on the enrollment.
func CanAccess(subject *Subject, enrollment *model.Enrollment) bool {
	if subject == nil || enrollment == nil {
		return false
	}
	if enrollment.TenantID != "" && enrollment.TenantID != subject.TenantID {
		return false
	}
	if subject.IsAdmin() {
		return true
	} else if subject.Role != RoleOwner {
		return false
	}
	if subject.Principal != "" && enrollment.Owner == subject.Principal {
		return true
	}
	for _, id := range subject.OwnedEnrollments {
		if id == enrollment.ID {
			return true
		}
	}
	return false
}

func roleAllows(role Role, action Action) bool {
	patterns, ok := rolePolicies[role]
	if !ok {
		return false
	}

	needle := strings.ToLower(string(action))
	for _, pattern := range patterns {
		switch {
		case pattern == "*":
			return true
		case strings.EqualFold(pattern, needle):
			return true
		case strings.HasSuffix(pattern, ".*"):
			prefix := strings.TrimSuffix(strings.ToLower(pattern), ".*")
			if strings.HasPrefix(needle, prefix+".") {
				return true
			}
		}
	}
	return false
}
