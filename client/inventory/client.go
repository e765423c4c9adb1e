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
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mendersoftware/go-lib-micro/config"
	"github.com/mendersoftware/go-lib-micro/log"
	"github.com/mendersoftware/go-lib-micro/requestid"
	"github.com/mendersoftware/go-lib-micro/rest_utils"
	"github.com/pkg/errors"

	dconfig "github.com/mendersoftware/operations/config"
	"github.com/mendersoftware/operations/model"
)

const (
	healthURL      = "/api/internal/v1/inventory/health"
	enrollmentsURL = "/api/internal/v1/inventory/tenants/:tenantId/enrollments"
	statusURL      = "/api/internal/v1/inventory/tenants/:tenantId/enrollments/:enrollmentId/status"
	defaultTimeout = 5 * time.Second
)

// Errors
var (
	ErrEnrollmentNotFound = errors.New("enrollment not found in the inventory")
)

// Client resolves devices to enrollments through the inventory service.
//
//go:generate ../../utils/mockgen.sh
type Client interface {
	CheckHealth(ctx context.Context) error
	// ResolveEnrollment looks up the enrollment of device. The device
	// may belong to another tenant than tenantID; callers compare.
	ResolveEnrollment(ctx context.Context, tenantID string,
		device model.DeviceIdentifier) (*model.Enrollment, error)
	EnrollmentStatus(ctx context.Context, tenantID,
		enrollmentID string) (model.EnrollmentStatus, error)
}

// NewClient returns a new inventory client
func NewClient() Client {
	timeout := config.Config.GetDuration(dconfig.SettingInventoryTimeout)
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &client{
		baseURL:    strings.TrimSuffix(config.Config.GetString(dconfig.SettingInventoryAddr), "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type client struct {
	baseURL    string
	httpClient *http.Client
}

func contextWithDefaultTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); !ok {
		return context.WithTimeout(ctx, defaultTimeout)
	}
	return ctx, func() {}
}

func (c *client) newRequest(ctx context.Context, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if reqID := requestid.FromContext(ctx); reqID != "" {
		req.Header.Set(requestid.RequestIdHeader, reqID)
	}
	return req, nil
}

func decodeError(rsp *http.Response, op string) error {
	var apiErr rest_utils.ApiError
	if err := json.NewDecoder(rsp.Body).Decode(&apiErr); err != nil || apiErr.Err == "" {
		return errors.Errorf("%s request failed with unexpected status: %s", op, rsp.Status)
	}
	return errors.Wrapf(&apiErr, "%s request failed", op)
}

func (c *client) CheckHealth(ctx context.Context) error {
	ctx, cancel := contextWithDefaultTimeout(ctx)
	defer cancel()

	req, err := c.newRequest(ctx, healthURL)
	if err != nil {
		return err
	}
	rsp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer rsp.Body.Close()
	if rsp.StatusCode >= http.StatusOK && rsp.StatusCode < 300 {
		return nil
	}
	var apiErr rest_utils.ApiError
	if err := json.NewDecoder(rsp.Body).Decode(&apiErr); err != nil {
		return errors.Errorf("health check HTTP error: %s", rsp.Status)
	}
	return &apiErr
}

func (c *client) ResolveEnrollment(
	ctx context.Context,
	tenantID string,
	device model.DeviceIdentifier,
) (*model.Enrollment, error) {
	ctx, cancel := contextWithDefaultTimeout(ctx)
	defer cancel()

	repl := strings.NewReplacer(":tenantId", url.PathEscape(tenantID))
	q := url.Values{}
	q.Set("device_id", device.ID)
	q.Set("device_type", device.Type)
	req, err := c.newRequest(ctx, repl.Replace(enrollmentsURL)+"?"+q.Encode())
	if err != nil {
		return nil, err
	}

	rsp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "resolve enrollment request failed")
	}
	defer rsp.Body.Close()

	switch rsp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrEnrollmentNotFound
	default:
		return nil, decodeError(rsp, "resolve enrollment")
	}

	var enrollment model.Enrollment
	if err := json.NewDecoder(rsp.Body).Decode(&enrollment); err != nil {
		return nil, errors.Wrap(err, "error parsing enrollment response")
	}
	log.FromContext(ctx).Debugf("resolved device %s to enrollment %s",
		device, enrollment.ID)
	return &enrollment, nil
}

func (c *client) EnrollmentStatus(
	ctx context.Context,
	tenantID, enrollmentID string,
) (model.EnrollmentStatus, error) {
	ctx, cancel := contextWithDefaultTimeout(ctx)
	defer cancel()

	repl := strings.NewReplacer(
		":tenantId", url.PathEscape(tenantID),
		":enrollmentId", url.PathEscape(enrollmentID),
	)
	req, err := c.newRequest(ctx, repl.Replace(statusURL))
	if err != nil {
		return "", err
	}

	rsp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "enrollment status request failed")
	}
	defer rsp.Body.Close()

	switch rsp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return "", ErrEnrollmentNotFound
	default:
		return "", decodeError(rsp, "enrollment status")
	}

	var res struct {
		Status model.EnrollmentStatus `json:"status"`
	}
	if err := json.NewDecoder(rsp.Body).Decode(&res); err != nil {
		return "", errors.Wrap(err, "error parsing enrollment status response")
	}
	return res.Status, nil
}
