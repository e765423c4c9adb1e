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
	"testing"

	"github.com/ant0ine/go-json-rest/rest"
	"github.com/ant0ine/go-json-rest/rest/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutogenOptionsRoutes(t *testing.T) {
	noop := func(w rest.ResponseWriter, r *rest.Request) {}
	routes := AutogenOptionsRoutes(NewOptionsHandler,
		rest.Get("/health", noop),
		rest.Post("/tenants", noop),
		rest.Get("/tenants", noop),
	)
	require.Len(t, routes, 5)
	assert.Equal(t, http.MethodOptions, routes[3].HttpMethod)
	assert.Equal(t, "/health", routes[3].PathExp)
	assert.Equal(t, "/tenants", routes[4].PathExp)

	router, err := rest.MakeRouter(routes...)
	require.NoError(t, err)
	api := rest.NewApi()
	api.SetApp(router)

	recorded := test.RunRequest(t, api.MakeHandler(),
		test.MakeSimpleRequest(http.MethodOptions, "http://localhost/tenants", nil))
	recorded.CodeIs(http.StatusOK)
	assert.Equal(t,
		[]string{http.MethodGet, http.MethodOptions, http.MethodPost},
		recorded.Recorder.Header()[HttpHeaderAllow])
}

func TestNewOptionsHandlerDeduplicates(t *testing.T) {
	router, err := rest.MakeRouter(
		rest.Options("/x", NewOptionsHandler(http.MethodGet, http.MethodGet, http.MethodOptions)),
	)
	require.NoError(t, err)
	api := rest.NewApi()
	api.SetApp(router)

	recorded := test.RunRequest(t, api.MakeHandler(),
		test.MakeSimpleRequest(http.MethodOptions, "http://localhost/x", nil))
	assert.Equal(t,
		[]string{http.MethodGet, http.MethodOptions},
		recorded.Recorder.Header()[HttpHeaderAllow])
}
