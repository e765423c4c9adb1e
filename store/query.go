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
	"time"

	"github.com/pkg/errors"

	"github.com/mendersoftware/operations/model"
)

type SortOrder int

const (
	// SortCreatedAsc orders entries oldest operation first, ties broken
	// by operation id.
	SortCreatedAsc SortOrder = iota
	// SortPosition orders entries by operation, then batch position.
	SortPosition
)

// DispatchQuery filters dispatch entries. Zero values do not filter.
type DispatchQuery struct {
	EnrollmentID string
	OperationIDs []int64
	Statuses     []model.Status
	Code         string
	UpdatedAfter *time.Time

	Sort  SortOrder
	Skip  int64
	Limit int64
}

func (q DispatchQuery) Validate() error {
	if q.Skip < 0 {
		return errors.New("skip: must be a non-negative integer")
	}
	if q.Limit < 0 {
		return errors.New("limit: must be a non-negative integer")
	}
	for _, s := range q.Statuses {
		if err := s.Validate(); err != nil {
			return errors.Wrapf(err, "statuses: %q", s)
		}
	}
	switch q.Sort {
	case SortCreatedAsc, SortPosition:
	default:
		return errors.New("sort: unknown order")
	}
	return nil
}
