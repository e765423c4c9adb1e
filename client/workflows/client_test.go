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

package workflows

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mendersoftware/go-lib-micro/requestid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	workflow_mocks "github.com/mendersoftware/operations/client/workflows/mocks"
)

func TestOperationNotificationFails(t *testing.T) {
	mockHTTPClient := &workflow_mocks.HTTPClientMock{}
	mockHTTPClient.On("Do",
		mock.AnythingOfType("*http.Request"),
	).Return(&http.Response{
		StatusCode: http.StatusBadRequest,
		Body:       io.NopCloser(strings.NewReader("")),
	}, nil)

	workflowsClient := NewClient().(*client)
	workflowsClient.SetHTTPClient(mockHTTPClient)

	err := workflowsClient.StartOperationNotification(context.Background(),
		"tenant_id", "ACTIVITY_1", []string{"enr-1"})
	assert.EqualError(t, err, "failed to start workflow: operation_notification")

	mockHTTPClient.AssertExpectations(t)
}

func TestOperationNotificationTransportError(t *testing.T) {
	mockHTTPClient := &workflow_mocks.HTTPClientMock{}
	mockHTTPClient.On("Do",
		mock.AnythingOfType("*http.Request"),
	).Return(nil, errors.New("connection refused"))

	workflowsClient := NewClient().(*client)
	workflowsClient.SetHTTPClient(mockHTTPClient)

	err := workflowsClient.StartOperationNotification(context.Background(),
		"tenant_id", "ACTIVITY_1", []string{"enr-1"})
	assert.EqualError(t, err,
		"failed to start workflow: operation_notification: connection refused")
}

func TestOperationNotificationSuccessful(t *testing.T) {
	mockHTTPClient := &workflow_mocks.HTTPClientMock{}
	mockHTTPClient.On("Do",
		mock.MatchedBy(func(req *http.Request) bool {
			b, err := io.ReadAll(req.Body)
			if err != nil {
				return false
			}
			msg := OperationNotification{}
			if err := json.Unmarshal(b, &msg); err != nil {
				return false
			}
			assert.True(t, strings.HasSuffix(req.URL.Path, operationNotifyURL))
			assert.Equal(t, "req-1", msg.RequestID)
			assert.Equal(t, "tenant_id", msg.TenantID)
			assert.Equal(t, "ACTIVITY_7", msg.ActivityID)
			assert.Equal(t, []string{"enr-1", "enr-2"}, msg.EnrollmentIDs)
			return true
		}),
	).Return(&http.Response{
		StatusCode: http.StatusCreated,
		Body:       io.NopCloser(strings.NewReader("")),
	}, nil)

	workflowsClient := NewClient().(*client)
	workflowsClient.SetHTTPClient(mockHTTPClient)

	ctx := requestid.WithContext(context.Background(), "req-1")
	err := workflowsClient.StartOperationNotification(ctx,
		"tenant_id", "ACTIVITY_7", []string{"enr-1", "enr-2"})
	assert.NoError(t, err)

	mockHTTPClient.AssertExpectations(t)
}

func TestCheckHealth(t *testing.T) {
	healthy := true
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			if healthy {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":"workflows down"}`))
		},
	))
	defer srv.Close()

	c := NewClient().(*client)
	c.baseURL = srv.URL
	assert.NoError(t, c.CheckHealth(context.Background()))

	healthy = false
	assert.EqualError(t, c.CheckHealth(context.Background()), "workflows down")
}
