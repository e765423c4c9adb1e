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

package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 500
)

// PaginationRequest selects a slice of a device's operation history.
// Owner, Ownership and DeviceType filter on the device enrollment.
type PaginationRequest struct {
	Offset     int    `json:"offset"`
	Limit      int    `json:"limit"`
	Owner      string `json:"owner,omitempty"`
	Ownership  string `json:"ownership,omitempty"`
	DeviceType string `json:"device_type,omitempty"`
}

func (r PaginationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Offset, validation.Min(0)),
		validation.Field(&r.Limit, validation.Min(0), validation.Max(MaxPageLimit)),
	)
}

// Matches reports whether the enrollment passes the request filters.
func (r PaginationRequest) Matches(e Enrollment) bool {
	if r.Owner != "" && r.Owner != e.Owner {
		return false
	}
	if r.Ownership != "" && r.Ownership != e.Ownership {
		return false
	}
	if r.DeviceType != "" && r.DeviceType != e.Device.Type {
		return false
	}
	return true
}

type PaginationResult struct {
	Data            []DeviceOperation `json:"data"`
	RecordsFiltered int64             `json:"recordsFiltered"`
	RecordsTotal    int64             `json:"recordsTotal"`
}
