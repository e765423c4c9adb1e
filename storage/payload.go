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

// Package storage holds operation payloads in an object store.
package storage

import (
	"context"
	"errors"
	"path"

	"github.com/google/uuid"

	"github.com/mendersoftware/go-lib-micro/identity"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrEmptyPayload   = errors.New("empty payload")
)

// PayloadStore stores opaque operation payloads behind generated handles.
//
//go:generate ../utils/mockgen.sh
type PayloadStore interface {
	HealthCheck(ctx context.Context) error
	Store(ctx context.Context, payload []byte) (handle string, err error)
	Load(ctx context.Context, handle string) ([]byte, error)
	Delete(ctx context.Context, handle string) error
}

func NewHandle() string {
	return uuid.NewString()
}

// ObjectPath returns the object key of handle, scoped to the tenant of
// the context identity.
func ObjectPath(ctx context.Context, handle string) string {
	if id := identity.FromContext(ctx); id != nil && len(id.Tenant) > 0 {
		return path.Join(id.Tenant, handle)
	}
	return handle
}
