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

package restutil

import (
	"net/http"
	"sort"

	"github.com/ant0ine/go-json-rest/rest"
)

const (
	HttpHeaderAllow string = "Allow"
)

type CreateOptionsHandler func(methods ...string) rest.HandlerFunc

// NewOptionsHandler returns a handler answering OPTIONS requests with
// the given methods, OPTIONS included, in the Allow header.
func NewOptionsHandler(methods ...string) rest.HandlerFunc {
	set := make(map[string]struct{}, len(methods)+1)
	set[http.MethodOptions] = struct{}{}
	for _, method := range methods {
		set[method] = struct{}{}
	}
	allowed := make([]string, 0, len(set))
	for method := range set {
		allowed = append(allowed, method)
	}
	sort.Strings(allowed)

	return func(w rest.ResponseWriter, r *rest.Request) {
		for _, method := range allowed {
			w.Header().Add(HttpHeaderAllow, method)
		}
	}
}

// AutogenOptionsRoutes appends an OPTIONS route for every path of routes.
func AutogenOptionsRoutes(createHandler CreateOptionsHandler, routes ...*rest.Route) []*rest.Route {
	paths := make([]string, 0, len(routes))
	methodGroups := make(map[string][]string, len(routes))
	for _, route := range routes {
		if _, ok := methodGroups[route.PathExp]; !ok {
			paths = append(paths, route.PathExp)
		}
		methodGroups[route.PathExp] = append(methodGroups[route.PathExp], route.HttpMethod)
	}

	options := make([]*rest.Route, 0, len(paths))
	for _, path := range paths {
		options = append(options, rest.Options(path, createHandler(methodGroups[path]...)))
	}
	return append(routes, options...)
}
