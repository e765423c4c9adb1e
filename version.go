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

package main

var (
	// Commit of the current build.
	Commit string

	// Tag of the current build, if any.
	Tag string

	// Branch the current build was made from.
	Branch string

	// BuildNumber of the CI pipeline.
	BuildNumber string
)

func CreateVersionString() string {

	version := "unknown"

	switch {
	case Tag != "":
		version = Tag

	case Commit != "" && Branch != "":
		version = Branch + "_" + Commit
	}

	out := "Version: " + version

	if BuildNumber != "" {
		out = out + " BuildNumber: " + BuildNumber
	}

	return out
}
