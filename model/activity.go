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
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const ActivityIDPrefix = "ACTIVITY_"

var (
	ErrInvalidActivityID = errors.New("invalid activity id")
)

// Activity is the cross-device view of a single operation.
type Activity struct {
	ActivityID  string           `json:"activity_id"`
	Type        OperationType    `json:"type"`
	Code        string           `json:"code"`
	CreatedAt   time.Time        `json:"created_ts"`
	InitiatedBy string           `json:"initiated_by,omitempty"`
	Statuses    []ActivityStatus `json:"statuses"`
}

type ActivityStatus struct {
	Device    DeviceIdentifier `json:"device"`
	Status    Status           `json:"status"`
	Response  []byte           `json:"response,omitempty"`
	UpdatedAt time.Time        `json:"updated_ts,omitempty"`
}

func NewActivity(op Operation) *Activity {
	return &Activity{
		ActivityID:  ActivityID(op.ID),
		Type:        op.Type,
		Code:        op.Code,
		CreatedAt:   op.CreatedAt,
		InitiatedBy: op.InitiatedBy,
		Statuses:    []ActivityStatus{},
	}
}

func NewActivityStatus(entry DispatchEntry) ActivityStatus {
	return ActivityStatus{
		Device:    entry.Device,
		Status:    entry.Status,
		Response:  entry.Response,
		UpdatedAt: entry.UpdatedAt,
	}
}

func ActivityID(operationID int64) string {
	return ActivityIDPrefix + strconv.FormatInt(operationID, 10)
}

// ParseActivityID returns the operation id encoded in an activity id.
func ParseActivityID(activityID string) (int64, error) {
	if !strings.HasPrefix(activityID, ActivityIDPrefix) {
		return 0, errors.Wrapf(ErrInvalidActivityID, "missing prefix: %q", activityID)
	}
	raw := strings.TrimPrefix(activityID, ActivityIDPrefix)
	if raw == "" || strings.TrimLeft(raw, "0123456789") != "" {
		return 0, errors.Wrapf(ErrInvalidActivityID, "not a number: %q", activityID)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, errors.Wrapf(ErrInvalidActivityID, "out of range: %q", activityID)
	}
	if strconv.FormatInt(id, 10) != raw {
		return 0, errors.Wrapf(ErrInvalidActivityID, "not canonical: %q", activityID)
	}
	return id, nil
}
