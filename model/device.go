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
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DeviceIdentifier names a device by its id and device type.
type DeviceIdentifier struct {
	ID   string `json:"id" bson:"id"`
	Type string `json:"type" bson:"type"`
}

func (d DeviceIdentifier) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.ID, validation.Required, notBlank, lengthIn1To256),
		validation.Field(&d.Type, validation.Required, notBlank, lengthIn1To256),
	)
}

func (d DeviceIdentifier) String() string {
	return fmt.Sprintf("%s:%s", d.Type, d.ID)
}

type EnrollmentStatus string

const (
	EnrollmentStatusActive   EnrollmentStatus = "ACTIVE"
	EnrollmentStatusInactive EnrollmentStatus = "INACTIVE"
	EnrollmentStatusRemoved  EnrollmentStatus = "REMOVED"
)

// Enrollment binds one device to one tenant.
type Enrollment struct {
	ID        string           `json:"id"`
	TenantID  string           `json:"tenant_id,omitempty"`
	Device    DeviceIdentifier `json:"device"`
	Owner     string           `json:"owner"`
	Ownership string           `json:"ownership,omitempty"`
	Status    EnrollmentStatus `json:"status"`
}

func (e Enrollment) IsActive() bool {
	return e.Status == EnrollmentStatusActive
}

func (e Enrollment) IsRemoved() bool {
	return e.Status == EnrollmentStatusRemoved
}
