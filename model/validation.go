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
	"github.com/asaskevich/govalidator"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pkg/errors"
)

var (
	// Initialize validation rules once.
	lengthIn1To256  = validation.Length(1, 256)
	lengthIn0To4096 = validation.Length(0, 4096)

	errBlank = errors.New("must not be blank")
)

type notBlankRule struct{}

// notBlank rejects strings made only of whitespace.
var notBlank = notBlankRule{}

func (notBlankRule) Validate(v interface{}) error {
	s, _ := v.(string)
	if govalidator.IsNull(govalidator.Trim(s, "")) {
		return errBlank
	}
	return nil
}

type statusValidator struct{}

func (statusValidator) Validate(v interface{}) error {
	switch s := v.(type) {
	case Status:
		return s.Validate()
	case *Status:
		if s == nil {
			return nil
		}
		return s.Validate()
	}
	return ErrBadStatus
}
