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
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	testCases := []struct {
		from Status
		to   Status
		ok   bool
	}{
		{from: StatusPending, to: StatusInProgress, ok: true},
		{from: StatusPending, to: StatusNotNow, ok: true},
		{from: StatusPending, to: StatusCompleted, ok: true},
		{from: StatusPending, to: StatusError, ok: true},
		{from: StatusPending, to: StatusPending, ok: false},
		{from: StatusPending, to: StatusRepeated, ok: false},
		{from: StatusNotNow, to: StatusNotNow, ok: true},
		{from: StatusNotNow, to: StatusInProgress, ok: true},
		{from: StatusNotNow, to: StatusPending, ok: false},
		{from: StatusInProgress, to: StatusNotNow, ok: true},
		{from: StatusInProgress, to: StatusCompleted, ok: true},
		{from: StatusInProgress, to: StatusPending, ok: false},
		{from: StatusCompleted, to: StatusPending, ok: false},
		{from: StatusCompleted, to: StatusError, ok: false},
		{from: StatusError, to: StatusNotNow, ok: false},
		{from: StatusRepeated, to: StatusPending, ok: false},
		{from: StatusInvalid, to: StatusPending, ok: false},
		{from: StatusUnauthorized, to: StatusPending, ok: false},
	}
	for i, tc := range testCases {
		t.Run(fmt.Sprintf("test case %d", i), func(t *testing.T) {
			assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to))
		})
	}
}

func TestStatusTerminal(t *testing.T) {
	for _, s := range []Status{
		StatusCompleted, StatusError, StatusRepeated,
		StatusInvalid, StatusUnauthorized,
	} {
		assert.True(t, s.Terminal(), s)
		assert.False(t, s.Pending(), s)
	}
	for _, s := range PendingStatuses {
		assert.False(t, s.Terminal(), s)
		assert.True(t, s.Pending(), s)
	}
	assert.False(t, Status("bogus").Terminal())
}

func TestStatusUnmarshal(t *testing.T) {
	var update StatusUpdate

	err := json.Unmarshal([]byte(`{"operation_id": 1, "status": "bad"}`), &update)
	assert.ErrorIs(t, err, ErrBadStatus)

	err = json.Unmarshal([]byte(`{"operation_id": 1, "status": "NOTNOW"}`), &update)
	assert.NoError(t, err)
	assert.Equal(t, StatusUpdate{OperationID: 1, Status: StatusNotNow}, update)
	assert.NoError(t, update.Validate())

	update.OperationID = 0
	assert.Error(t, update.Validate())
}
