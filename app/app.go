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

package app

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/mendersoftware/go-lib-micro/identity"
	"github.com/mendersoftware/go-lib-micro/log"

	"github.com/mendersoftware/operations/authz"
	"github.com/mendersoftware/operations/client/inventory"
	"github.com/mendersoftware/operations/client/workflows"
	"github.com/mendersoftware/operations/model"
	"github.com/mendersoftware/operations/storage"
	"github.com/mendersoftware/operations/store"
)

const DefaultNotNowWindow = 5 * time.Minute

// DefaultNonRepeatableCodes are system codes enqueued at most once per
// enrollment while a previous one is pending.
var DefaultNonRepeatableCodes = []string{
	"POLICY_BUNDLE",
	"MONITOR",
	"POLICY_REVOKE",
}

// App is the operation manager.
//
//go:generate ../utils/mockgen.sh
type App interface {
	HealthCheck(ctx context.Context) error
	ProvisionTenant(ctx context.Context, tenantID string) error

	// operations
	AddOperation(ctx context.Context, op *model.Operation,
		devices []model.DeviceIdentifier) (*model.Activity, error)
	GetNextPendingOperation(ctx context.Context,
		device model.DeviceIdentifier) (*model.DeviceOperation, error)
	GetNextPendingOperationWithWindow(ctx context.Context,
		device model.DeviceIdentifier, window time.Duration) (*model.DeviceOperation, error)
	UpdateOperation(ctx context.Context,
		device model.DeviceIdentifier, update model.StatusUpdate) error
	GetPendingOperations(ctx context.Context,
		device model.DeviceIdentifier) ([]model.DeviceOperation, error)
	GetOperations(ctx context.Context,
		device model.DeviceIdentifier) ([]model.DeviceOperation, error)
	GetOperationsByDeviceAndStatus(ctx context.Context,
		device model.DeviceIdentifier, status model.Status) ([]model.DeviceOperation, error)
	GetOperationsPaginated(ctx context.Context, device model.DeviceIdentifier,
		req model.PaginationRequest) (*model.PaginationResult, error)
	GetOperation(ctx context.Context, operationID int64) (*model.Operation, error)
	GetOperationByDeviceAndOperationID(ctx context.Context,
		device model.DeviceIdentifier, operationID int64) (*model.DeviceOperation, error)

	// activities
	GetOperationByActivityID(ctx context.Context, activityID string) (*model.Activity, error)
	GetOperationByActivityIDAndDevice(ctx context.Context, activityID string,
		device model.DeviceIdentifier) (*model.Activity, error)
	GetActivitiesUpdatedAfter(ctx context.Context, since time.Time,
		limit, offset int) ([]model.Activity, error)
	GetActivityCountUpdatedAfter(ctx context.Context, since time.Time) (int64, error)
}

type Config struct {
	// NotNowWindow is how long a NOTNOW entry is held back from polling.
	NotNowWindow time.Duration
	// NonRepeatableCodes are deduplicated per enrollment.
	NonRepeatableCodes []string
	// Clock returns the current time.
	Clock func() time.Time
}

func NewConfig() *Config {
	return &Config{
		NotNowWindow:       DefaultNotNowWindow,
		NonRepeatableCodes: DefaultNonRepeatableCodes,
		Clock:              time.Now,
	}
}

func (conf *Config) SetNotNowWindow(window time.Duration) *Config {
	conf.NotNowWindow = window
	return conf
}

func (conf *Config) SetNonRepeatableCodes(codes []string) *Config {
	conf.NonRepeatableCodes = codes
	return conf
}

func (conf *Config) SetClock(clock func() time.Time) *Config {
	conf.Clock = clock
	return conf
}

// OperationManager dispatches operations to devices and tracks their
// per-device status.
type OperationManager struct {
	db       store.DataStore
	registry inventory.Client
	payloads storage.PayloadStore
	authz    authz.Provider
	notifier workflows.Client

	notNowWindow  time.Duration
	nonRepeatable map[string]struct{}
	clock         func() time.Time
}

var _ App = (*OperationManager)(nil)

func NewOperationManager(
	db store.DataStore,
	registry inventory.Client,
	payloads storage.PayloadStore,
	provider authz.Provider,
	conf *Config,
) *OperationManager {
	if conf == nil {
		conf = NewConfig()
	}
	m := &OperationManager{
		db:            db,
		registry:      registry,
		payloads:      payloads,
		authz:         provider,
		notNowWindow:  conf.NotNowWindow,
		nonRepeatable: make(map[string]struct{}, len(conf.NonRepeatableCodes)),
		clock:         conf.Clock,
	}
	if m.notNowWindow < 0 {
		m.notNowWindow = 0
	}
	if m.clock == nil {
		m.clock = time.Now
	}
	for _, code := range conf.NonRepeatableCodes {
		m.nonRepeatable[code] = struct{}{}
	}
	return m
}

// WithNotifier enables notifications to the workflows engine after
// operations are enqueued.
func (m *OperationManager) WithNotifier(notifier workflows.Client) *OperationManager {
	m.notifier = notifier
	return m
}

func (m *OperationManager) now() time.Time {
	return m.clock().UTC().Truncate(time.Millisecond)
}

func (m *OperationManager) isNonRepeatable(code string) bool {
	_, ok := m.nonRepeatable[code]
	return ok
}

// begin resolves the caller and scopes ctx to the caller's tenant.
func (m *OperationManager) begin(
	ctx context.Context,
	action authz.Action,
) (context.Context, *authz.Subject, error) {
	subject, err := m.authz.Subject(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(ErrUnauthorized, err.Error())
	}
	if err := authz.Authorize(subject, action); err != nil {
		return nil, nil, errors.Wrap(ErrUnauthorized, err.Error())
	}
	scoped := &identity.Identity{
		Subject: subject.Principal,
		Tenant:  subject.TenantID,
	}
	if id := identity.FromContext(ctx); id != nil {
		cp := *id
		cp.Tenant = subject.TenantID
		scoped = &cp
	}
	return identity.WithContext(ctx, scoped), subject, nil
}

// resolve looks up the enrollment of a single target device. Devices
// unknown to the caller's tenant are reported as not found.
func (m *OperationManager) resolve(
	ctx context.Context,
	subject *authz.Subject,
	device model.DeviceIdentifier,
) (*model.Enrollment, error) {
	if err := device.Validate(); err != nil {
		return nil, errors.Wrapf(ErrInvalidTarget, "device %s: %s", device, err)
	}
	enrollment, err := m.registry.ResolveEnrollment(ctx, subject.TenantID, device)
	if errors.Is(err, inventory.ErrEnrollmentNotFound) {
		return nil, errors.Wrapf(ErrNotFound, "device %s", device)
	} else if err != nil {
		return nil, storageError("resolve enrollment", err)
	}
	if enrollment.TenantID != "" && enrollment.TenantID != subject.TenantID {
		return nil, errors.Wrapf(ErrNotFound, "device %s", device)
	}
	if !authz.CanAccess(subject, enrollment) {
		return nil, errors.Wrapf(ErrUnauthorized, "device %s", device)
	}
	return enrollment, nil
}

func (m *OperationManager) loadPayload(ctx context.Context, op *model.Operation) error {
	if op.PayloadHandle == "" {
		return nil
	}
	payload, err := m.payloads.Load(ctx, op.PayloadHandle)
	if err != nil {
		return storageError("load payload", err)
	}
	op.Payload = payload
	return nil
}

func (m *OperationManager) getOperation(
	ctx context.Context,
	operationID int64,
	withPayload bool,
) (*model.Operation, error) {
	op, err := m.db.GetOperation(ctx, operationID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errors.Wrapf(ErrNotFound, "operation %d", operationID)
	} else if err != nil {
		return nil, storageError("get operation", err)
	}
	if withPayload {
		if err := m.loadPayload(ctx, op); err != nil {
			return nil, err
		}
	}
	return op, nil
}

// HealthCheck checks the store and every collaborator.
func (m *OperationManager) HealthCheck(ctx context.Context) error {
	if err := m.db.Ping(ctx); err != nil {
		return errors.Wrap(err, "error reaching the database")
	}
	if err := m.payloads.HealthCheck(ctx); err != nil {
		return errors.Wrap(err, "error reaching the payload store")
	}
	if err := m.registry.CheckHealth(ctx); err != nil {
		return errors.Wrap(err, "Inventory service unhealthy")
	}
	if m.notifier != nil {
		if err := m.notifier.CheckHealth(ctx); err != nil {
			return errors.Wrap(err, "Workflows service unhealthy")
		}
	}
	return nil
}

func (m *OperationManager) ProvisionTenant(ctx context.Context, tenantID string) error {
	if err := m.db.ProvisionTenant(ctx, tenantID); err != nil {
		return errors.Wrap(err, "failed to provision tenant")
	}
	log.FromContext(ctx).Infof("provisioned tenant %q", tenantID)
	return nil
}
