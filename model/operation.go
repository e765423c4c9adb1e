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
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type OperationType string

const (
	OperationTypeCommand OperationType = "COMMAND"
	OperationTypeConfig  OperationType = "CONFIG"
	OperationTypePolicy  OperationType = "POLICY"
	OperationTypeProfile OperationType = "PROFILE"
)

// Operation is the definition of a command sent to one or more devices.
// Payload is transient: only PayloadHandle is persisted.
type Operation struct {
	ID            int64         `json:"id" bson:"_id"`
	Type          OperationType `json:"type" bson:"type"`
	Code          string        `json:"code" bson:"code"`
	Payload       []byte        `json:"payload,omitempty" bson:"-"`
	PayloadHandle string        `json:"-" bson:"payload_handle,omitempty"`
	CreatedAt     time.Time     `json:"created_ts" bson:"created"`
	Enabled       bool          `json:"enabled" bson:"enabled"`
	InitiatedBy   string        `json:"initiated_by,omitempty" bson:"initiated_by,omitempty"`
}

func (o Operation) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Type, validation.Required, validation.In(
			OperationTypeCommand,
			OperationTypeConfig,
			OperationTypePolicy,
			OperationTypeProfile,
		)),
		validation.Field(&o.Code, validation.Required, notBlank, lengthIn1To256),
		validation.Field(&o.InitiatedBy, lengthIn0To4096),
	)
}

// DeviceOperation is an operation as seen by a single enrollment.
type DeviceOperation struct {
	Operation
	EnrollmentID string           `json:"enrollment_id"`
	Device       DeviceIdentifier `json:"device"`
	Status       Status           `json:"status"`
	Response     []byte           `json:"response,omitempty"`
	ReceivedAt   time.Time        `json:"received_ts"`
	UpdatedAt    time.Time        `json:"updated_ts"`
}

func NewDeviceOperation(op Operation, entry DispatchEntry) DeviceOperation {
	return DeviceOperation{
		Operation:    op,
		EnrollmentID: entry.EnrollmentID,
		Device:       entry.Device,
		Status:       entry.Status,
		Response:     entry.Response,
		ReceivedAt:   entry.CreatedAt,
		UpdatedAt:    entry.UpdatedAt,
	}
}

// StatusUpdate is a device-reported change of an operation's status.
type StatusUpdate struct {
	OperationID int64  `json:"operation_id"`
	Status      Status `json:"status"`
	Response    []byte `json:"response,omitempty"`
}

func (u StatusUpdate) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.OperationID, validation.Required, validation.Min(int64(1))),
		validation.Field(&u.Status, validation.Required, statusValidator{}),
	)
}
