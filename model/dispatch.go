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
)

// DispatchEntry tracks the delivery of one operation to one enrollment.
type DispatchEntry struct {
	ID            string           `json:"id" bson:"_id"`
	EnrollmentID  string           `json:"enrollment_id" bson:"enrollment_id"`
	Device        DeviceIdentifier `json:"device" bson:"device"`
	OperationID   int64            `json:"operation_id" bson:"operation_id"`
	OperationCode string           `json:"operation_code" bson:"operation_code"`
	OperationType OperationType    `json:"operation_type" bson:"operation_type"`
	// Position is the index of the device in the submitted batch.
	Position  int       `json:"position" bson:"position"`
	Status    Status    `json:"status" bson:"status"`
	Response  []byte    `json:"response,omitempty" bson:"response,omitempty"`
	CreatedAt time.Time `json:"created_ts" bson:"created"`
	UpdatedAt time.Time `json:"updated_ts" bson:"updated"`
	// DedupeKey is set while the entry is pending and its code must not
	// be queued twice for the enrollment. The store keeps it unique.
	DedupeKey string `json:"-" bson:"dedupe_key,omitempty"`
}

// DispatchUpdate is applied atomically to a single entry.
type DispatchUpdate struct {
	Status    Status
	Response  []byte
	UpdatedAt time.Time
}
