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

	"github.com/mendersoftware/go-lib-micro/identity"
)

type subjectContextKeyType int

const subjectContextKey subjectContextKeyType = 0

// WithSubject attaches the authorization context to ctx.
func WithSubject(ctx context.Context, subject *Subject) context.Context {
	return context.WithValue(ctx, subjectContextKey, subject)
}

// SubjectFromContext returns the subject attached with WithSubject.
func SubjectFromContext(ctx context.Context) *Subject {
	if subject, ok := ctx.Value(subjectContextKey).(*Subject); ok {
		return subject
	}
	return nil
}

// Provider supplies the authorization context of a call.
//
//go:generate ../utils/mockgen.sh
type Provider interface {
	Subject(ctx context.Context) (*Subject, error)
}

// ContextProvider returns the subject attached with WithSubject.
type ContextProvider struct{}

func (ContextProvider) Subject(ctx context.Context) (*Subject, error) {
	if subject := SubjectFromContext(ctx); subject != nil {
		return subject, nil
	}
	return nil, ErrNoSubject
}

// IdentityProvider derives the subject from the request identity:
// users administer their tenant, devices own their own enrollment.
type IdentityProvider struct{}

func (IdentityProvider) Subject(ctx context.Context) (*Subject, error) {
	id := identity.FromContext(ctx)
	if id == nil || id.Subject == "" {
		return nil, ErrNoSubject
	}
	subject := &Subject{
		TenantID:  id.Tenant,
		Principal: id.Subject,
	}
	switch {
	case id.IsDevice:
		subject.Role = RoleOwner
		subject.OwnedEnrollments = []string{id.Subject}
	case id.IsUser:
		subject.Role = RoleAdmin
	default:
		return nil, ErrNoSubject
	}
	return subject, nil
}

// ChainProvider returns the first subject found by its providers.
type ChainProvider []Provider

func (chain ChainProvider) Subject(ctx context.Context) (*Subject, error) {
	for _, p := range chain {
		subject, err := p.Subject(ctx)
		if err == nil {
			return subject, nil
		} else if err != ErrNoSubject {
			return nil, err
		}
	}
	return nil, ErrNoSubject
}

// NewDefaultProvider prefers an explicit subject over the request identity.
func NewDefaultProvider() Provider {
	return ChainProvider{ContextProvider{}, IdentityProvider{}}
}
