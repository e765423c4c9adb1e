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

package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mendersoftware/go-lib-micro/requestid"
	"github.com/mendersoftware/go-lib-micro/rest_utils"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mendersoftware/operations/model"
)

func TestCheckHealth(t *testing.T) {
	t.Parallel()

	expiredCtx, cancel := context.WithDeadline(
		context.TODO(), time.Now().Add(-1*time.Second))
	defer cancel()
	defaultCtx, cancel := context.WithTimeout(context.TODO(), time.Second*10)
	defer cancel()

	testCases := []struct {
		Name string

		Ctx context.Context

		// inventory response
		ResponseCode int
		ResponseBody interface{}

		Error error
	}{{
		Name: "ok",

		Ctx:          defaultCtx,
		ResponseCode: http.StatusOK,
	}, {
		Name: "error, expired deadline",

		Ctx:   expiredCtx,
		Error: errors.New(context.DeadlineExceeded.Error()),
	}, {
		Name: "error, inventory unhealthy",

		ResponseCode: http.StatusServiceUnavailable,
		ResponseBody: rest_utils.ApiError{
			Err:   "internal error",
			ReqId: "test",
		},

		Error: errors.New("internal error"),
	}, {
		Name: "error, bad response",

		Ctx:          context.TODO(),
		ResponseCode: http.StatusServiceUnavailable,
		ResponseBody: "foobar",

		Error: errors.New("health check HTTP error: 503 Service Unavailable"),
	}}

	responses := make(chan http.Response, 1)
	serveHTTP := func(w http.ResponseWriter, r *http.Request) {
		rsp := <-responses
		w.WriteHeader(rsp.StatusCode)
		if rsp.Body != nil {
			_, _ = io.Copy(w, rsp.Body)
		}
	}
	srv := httptest.NewServer(http.HandlerFunc(serveHTTP))
	client := NewClient().(*client)
	client.baseURL = srv.URL
	defer srv.Close()

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {

			if tc.ResponseCode > 0 {
				rsp := http.Response{
					StatusCode: tc.ResponseCode,
				}
				if tc.ResponseBody != nil {
					b, _ := json.Marshal(tc.ResponseBody)
					rsp.Body = io.NopCloser(bytes.NewReader(b))
				}
				responses <- rsp
			}

			err := client.CheckHealth(tc.Ctx)

			if tc.Error != nil {
				assert.Contains(t, err.Error(), tc.Error.Error())
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResolveEnrollment(t *testing.T) {
	t.Parallel()

	device := model.DeviceIdentifier{ID: "355000001", Type: "android"}
	enrollment := model.Enrollment{
		ID:       "enr-1",
		TenantID: "acme",
		Device:   device,
		Owner:    "alice",
		Status:   model.EnrollmentStatusActive,
	}

	testCases := []struct {
		Name string

		ResponseCode int
		ResponseBody interface{}

		Enrollment *model.Enrollment
		Error      error
	}{{
		Name: "ok",

		ResponseCode: http.StatusOK,
		ResponseBody: enrollment,

		Enrollment: &enrollment,
	}, {
		Name: "error, not found",

		ResponseCode: http.StatusNotFound,
		ResponseBody: rest_utils.ApiError{Err: "not found"},

		Error: ErrEnrollmentNotFound,
	}, {
		Name: "error, internal",

		ResponseCode: http.StatusInternalServerError,
		ResponseBody: rest_utils.ApiError{Err: "database down"},

		Error: errors.New("resolve enrollment request failed: database down"),
	}, {
		Name: "error, malformed body",

		ResponseCode: http.StatusOK,
		ResponseBody: "not an enrollment",

		Error: errors.New("error parsing enrollment response"),
	}}

	for i := range testCases {
		tc := testCases[i]
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(
				func(w http.ResponseWriter, r *http.Request) {
					assert.Equal(t,
						"/api/internal/v1/inventory/tenants/acme/enrollments",
						r.URL.Path)
					assert.Equal(t, device.ID, r.URL.Query().Get("device_id"))
					assert.Equal(t, device.Type, r.URL.Query().Get("device_type"))
					assert.Equal(t, "req-1", r.Header.Get(requestid.RequestIdHeader))
					w.WriteHeader(tc.ResponseCode)
					b, _ := json.Marshal(tc.ResponseBody)
					_, _ = w.Write(b)
				},
			))
			defer srv.Close()
			client := NewClient().(*client)
			client.baseURL = srv.URL

			ctx := requestid.WithContext(context.Background(), "req-1")
			res, err := client.ResolveEnrollment(ctx, "acme", device)
			if tc.Error != nil {
				if tc.Error == ErrEnrollmentNotFound {
					assert.ErrorIs(t, err, ErrEnrollmentNotFound)
				} else {
					require.Error(t, err)
					assert.Contains(t, err.Error(), tc.Error.Error())
				}
				assert.Nil(t, res)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.Enrollment, res)
			}
		})
	}
}

func TestEnrollmentStatus(t *testing.T) {
	t.Parallel()

	statuses := map[string]model.EnrollmentStatus{
		"enr-active":   model.EnrollmentStatusActive,
		"enr-inactive": model.EnrollmentStatusInactive,
	}
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			for id, status := range statuses {
				if r.URL.Path == "/api/internal/v1/inventory/tenants/acme/enrollments/"+
					id+"/status" {
					_ = json.NewEncoder(w).Encode(map[string]interface{}{
						"status": status,
					})
					return
				}
			}
			w.WriteHeader(http.StatusNotFound)
		},
	))
	defer srv.Close()
	client := NewClient().(*client)
	client.baseURL = srv.URL

	status, err := client.EnrollmentStatus(context.Background(), "acme", "enr-active")
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentStatusActive, status)

	status, err = client.EnrollmentStatus(context.Background(), "acme", "enr-inactive")
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentStatusInactive, status)

	_, err = client.EnrollmentStatus(context.Background(), "acme", "enr-gone")
	assert.ErrorIs(t, err, ErrEnrollmentNotFound)
}
