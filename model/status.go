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
	"github.com/pkg/errors"
)

var (
	ErrBadStatus = errors.New("unknown status value")
)

// Status is the delivery state of one operation for one enrollment.
type Status string

const (
	StatusPending      Status = "PENDING"
	StatusInProgress   Status = "INPROGRESS"
	StatusNotNow       Status = "NOTNOW"
	StatusCompleted    Status = "COMPLETED"
	StatusError        Status = "ERROR"
	StatusRepeated     Status = "REPEATED"
	StatusInvalid      Status = "INVALID"
	StatusUnauthorized Status = "UNAUTHORIZED"
)

var (
	allStatuses = []Status{
		StatusPending,
		StatusInProgress,
		StatusNotNow,
		StatusCompleted,
		StatusError,
		StatusRepeated,
		StatusInvalid,
		StatusUnauthorized,
	}

	// PendingStatuses are the statuses of entries that still await
	// delivery or completion.
	PendingStatuses = []Status{
		StatusPending,
		StatusNotNow,
		StatusInProgress,
	}

	transitions = map[Status][]Status{
		StatusPending: {
			StatusInProgress,
			StatusNotNow,
			StatusCompleted,
			StatusError,
		},
		StatusNotNow: {
			StatusInProgress,
			StatusNotNow,
			StatusCompleted,
			StatusError,
		},
		StatusInProgress: {
			StatusCompleted,
			StatusError,
			StatusNotNow,
		},
	}
)

func (s Status) Validate() error {
	for _, known := range allStatuses {
		if s == known {
			return nil
		}
	}
	return ErrBadStatus
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	_, ok := transitions[s]
	return !ok && s.Validate() == nil
}

func (s Status) Pending() bool {
	for _, p := range PendingStatuses {
		if s == p {
			return true
		}
	}
	return false
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s Status) MarshalText() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return []byte(s), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	stat := Status(b)
	if err := stat.Validate(); err != nil {
		return err
	}
	*s = stat
	return nil
}

func (s Status) String() string {
	return string(s)
}
