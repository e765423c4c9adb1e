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

package app

import (
	"github.com/pkg/errors"
)

// Errors returned by the operation manager. Match them with errors.Is.
var (
	ErrInvalidTarget          = errors.New("invalid target")
	ErrNotFound               = errors.New("not found")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrInactiveEnrollment     = errors.New("enrollment is not active")
	ErrConcurrentModification = errors.New("operation status was modified concurrently")
	ErrTerminalStatus         = errors.New("operation status is terminal")
	ErrInvalidTransition      = errors.New("invalid operation status transition")
	ErrStorage                = errors.New("storage failure")
)

// StorageError carries a collaborator I/O failure.
type StorageError struct {
	Op  string
	Err error
}

func (err *StorageError) Error() string {
	msg := ErrStorage.Error()
	if err.Op != "" {
		msg += ": " + err.Op
	}
	if err.Err != nil {
		msg += ": " + err.Err.Error()
	}
	return msg
}

func (err *StorageError) Unwrap() error {
	return err.Err
}

func (err *StorageError) Is(target error) bool {
	return target == ErrStorage
}

func storageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
