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
	"encoding/json"
	"io"
	"net/http"

	"github.com/ant0ine/go-json-rest/rest"
	"github.com/pkg/errors"

	"github.com/mendersoftware/go-lib-micro/log"
	"github.com/mendersoftware/go-lib-micro/rest_utils"

	"github.com/mendersoftware/operations/app"
)

var (
	ErrMissingTenantID = errors.New("tenant_id must be provided")
)

type InternalApiHandlers struct {
	app app.App
}

func NewInternalApiHandlers(app app.App) *InternalApiHandlers {
	return &InternalApiHandlers{
		app: app,
	}
}

type NewTenantReq struct {
	TenantId string `json:"tenant_id"`
}

func ParseNewTenantReq(source io.Reader) (*NewTenantReq, error) {
	var req NewTenantReq
	if err := json.NewDecoder(source).Decode(&req); err != nil {
		return nil, errors.Wrap(err, "malformed request body")
	}
	if req.TenantId == "" {
		return nil, ErrMissingTenantID
	}
	return &req, nil
}

func (h *InternalApiHandlers) HealthCheck(w rest.ResponseWriter, r *rest.Request) {
	ctx := r.Context()
	l := log.FromContext(ctx)

	if err := h.app.HealthCheck(ctx); err != nil {
		rest_utils.RestErrWithLog(w, r, l, err, http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *InternalApiHandlers) LivelinessCheck(w rest.ResponseWriter, r *rest.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (h *InternalApiHandlers) ProvisionTenantsHandler(w rest.ResponseWriter, r *rest.Request) {
	ctx := r.Context()
	l := log.FromContext(ctx)

	defer r.Body.Close()

	tenant, err := ParseNewTenantReq(r.Body)
	if err != nil {
		rest_utils.RestErrWithLog(w, r, l, err, http.StatusBadRequest)
		return
	}

	if err := h.app.ProvisionTenant(ctx, tenant.TenantId); err != nil {
		rest_utils.RestErrWithLogInternal(w, r, l, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}
