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
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mendersoftware/go-lib-micro/config"
	"github.com/mendersoftware/go-lib-micro/log"
	"github.com/mendersoftware/go-lib-micro/requestid"
	"github.com/mendersoftware/go-lib-micro/rest_utils"
	"github.com/pkg/errors"

	dconfig "github.com/mendersoftware/operations/config"
)

const (
	healthURL             = "/api/v1/health"
	operationNotifyURL    = "/api/v1/workflow/operation_notification"
	defaultTimeout        = 5 * time.Second
	workflowNotifyFailure = "failed to start workflow: operation_notification"
)

// HTTPClient is the subset of *http.Client used by the client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is the workflows client
//
//go:generate ../../utils/mockgen.sh
type Client interface {
	CheckHealth(ctx context.Context) error
	StartOperationNotification(ctx context.Context,
		tenantID, activityID string, enrollmentIDs []string) error
}

// OperationNotification is the input of the operation_notification
// workflow.
type OperationNotification struct {
	RequestID     string   `json:"request_id"`
	TenantID      string   `json:"tenant_id"`
	ActivityID    string   `json:"activity_id"`
	EnrollmentIDs []string `json:"enrollment_ids"`
}

// NewClient returns a new workflows client
func NewClient() Client {
	workflowsBaseURL := config.Config.GetString(dconfig.SettingWorkflowsAddr)
	return &client{
		baseURL:    strings.TrimSuffix(workflowsBaseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

type client struct {
	baseURL    string
	httpClient HTTPClient
}

func (c *client) SetHTTPClient(httpClient HTTPClient) {
	c.httpClient = httpClient
}

func (c *client) CheckHealth(ctx context.Context) error {
	var apiErr rest_utils.ApiError

	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
	}
	req, _ := http.NewRequestWithContext(
		ctx, http.MethodGet, c.baseURL+healthURL, nil,
	)

	rsp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer rsp.Body.Close()
	if rsp.StatusCode >= http.StatusOK && rsp.StatusCode < 300 {
		return nil
	}
	if err := json.NewDecoder(rsp.Body).Decode(&apiErr); err != nil {
		return errors.Errorf("health check HTTP error: %s", rsp.Status)
	}
	return &apiErr
}

func (c *client) StartOperationNotification(
	ctx context.Context,
	tenantID, activityID string,
	enrollmentIDs []string,
) error {
	l := log.FromContext(ctx)
	l.Debugf("Submit operation notification: tenantID=%s, activityID=%s, devices=%d",
		tenantID, activityID, len(enrollmentIDs))

	msg := OperationNotification{
		RequestID:     requestid.FromContext(ctx),
		TenantID:      tenantID,
		ActivityID:    activityID,
		EnrollmentIDs: enrollmentIDs,
	}
	payload, _ := json.Marshal(msg)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+operationNotifyURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	rsp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, workflowNotifyFailure)
	}
	defer rsp.Body.Close()
	if rsp.StatusCode != http.StatusCreated {
		body, err := io.ReadAll(rsp.Body)
		if err != nil {
			body = []byte("<failed to read>")
		}
		l.Errorf("operation notification failed with status %v, response text: %s",
			rsp.StatusCode, body)
		return errors.New(workflowNotifyFailure)
	}
	return nil
}
