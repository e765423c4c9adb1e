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

package http

import (
	"context"

	"github.com/ant0ine/go-json-rest/rest"

	"github.com/mendersoftware/operations/app"
	"github.com/mendersoftware/operations/utils/restutil"
)

const (
	ApiUrlInternal = "/api/internal/v1/operations"

	ApiUrlInternalHealth  = ApiUrlInternal + "/health"
	ApiUrlInternalAlive   = ApiUrlInternal + "/alive"
	ApiUrlInternalTenants = ApiUrlInternal + "/tenants"
)

// NewRouter defines all REST API routes.
func NewRouter(ctx context.Context, app app.App) (rest.App, error) {
	handlers := NewInternalApiHandlers(app)

	routes := InternalRoutes(handlers)

	return rest.MakeRouter(restutil.AutogenOptionsRoutes(restutil.NewOptionsHandler, routes...)...)
}

func InternalRoutes(controller *InternalApiHandlers) []*rest.Route {
	if controller == nil {
		return []*rest.Route{}
	}

	return []*rest.Route{
		rest.Get(ApiUrlInternalHealth, controller.HealthCheck),
		rest.Get(ApiUrlInternalAlive, controller.LivelinessCheck),
		rest.Post(ApiUrlInternalTenants, controller.ProvisionTenantsHandler),
	}
}
