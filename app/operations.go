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

	"github.com/mendersoftware/go-lib-micro/log"

	"github.com/mendersoftware/operations/authz"
	"github.com/mendersoftware/operations/client/inventory"
	"github.com/mendersoftware/operations/model"
	"github.com/mendersoftware/operations/store"
)

// AddOperation creates op and enqueues it to every accessible device.
// Devices that cannot receive the operation are reported in the returned
// activity with their classification; the batch itself only fails on
// malformed input or when the operation cannot be stored.
func (m *OperationManager) AddOperation(
	ctx context.Context,
	op *model.Operation,
	devices []model.DeviceIdentifier,
) (*model.Activity, error) {
	if op == nil {
		return nil, errors.Wrap(ErrInvalidTarget, "missing operation")
	}
	if err := op.Validate(); err != nil {
		return nil, errors.Wrapf(ErrInvalidTarget, "operation: %s", err)
	}
	if len(devices) == 0 {
		return nil, errors.Wrap(ErrInvalidTarget, "no target devices")
	}
	for i, device := range devices {
		if err := device.Validate(); err != nil {
			return nil, errors.Wrapf(ErrInvalidTarget, "devices[%d]: %s", i, err)
		}
	}
	ctx, subject, err := m.begin(ctx, authz.ActionOperationsCreate)
	if err != nil {
		return nil, err
	}
	l := log.FromContext(ctx)

	now := m.now()
	op.ID = 0
	op.CreatedAt = now
	op.Enabled = true
	if op.InitiatedBy == "" {
		op.InitiatedBy = subject.Principal
	}
	op.PayloadHandle = ""
	if len(op.Payload) > 0 {
		handle, err := m.payloads.Store(ctx, op.Payload)
		if err != nil {
			return nil, storageError("store payload", err)
		}
		op.PayloadHandle = handle
	}
	if err := m.db.InsertOperation(ctx, op); err != nil {
		if op.PayloadHandle != "" {
			if errDel := m.payloads.Delete(ctx, op.PayloadHandle); errDel != nil {
				l.Warnf("failed to clean up payload %s: %s", op.PayloadHandle, errDel)
			}
		}
		return nil, storageError("insert operation", err)
	}

	activity := model.NewActivity(*op)
	enqueued := make([]string, 0, len(devices))
	for i, device := range devices {
		status, enrollmentID := m.enqueue(ctx, subject, op, i, device)
		activity.Statuses = append(activity.Statuses, model.ActivityStatus{
			Device:    device,
			Status:    status,
			UpdatedAt: now,
		})
		if status == model.StatusPending {
			enqueued = append(enqueued, enrollmentID)
		}
	}
	l.Infof("operation %s (%s/%s) enqueued to %d of %d devices",
		activity.ActivityID, op.Type, op.Code, len(enqueued), len(devices))

	if m.notifier != nil && len(enqueued) > 0 {
		err := m.notifier.StartOperationNotification(ctx,
			subject.TenantID, activity.ActivityID, enqueued)
		if err != nil {
			l.Warnf("failed to notify devices about %s: %s", activity.ActivityID, err)
		}
	}
	return activity, nil
}

// enqueue classifies one device of a batch and writes its dispatch
// entry when the device can receive the operation.
func (m *OperationManager) enqueue(
	ctx context.Context,
	subject *authz.Subject,
	op *model.Operation,
	position int,
	device model.DeviceIdentifier,
) (model.Status, string) {
	l := log.FromContext(ctx)

	enrollment, err := m.registry.ResolveEnrollment(ctx, subject.TenantID, device)
	switch {
	case errors.Is(err, inventory.ErrEnrollmentNotFound):
		return model.StatusInvalid, ""
	case err != nil:
		l.Errorf("failed to resolve device %s: %s", device, err)
		return model.StatusError, ""
	case enrollment.TenantID != "" && enrollment.TenantID != subject.TenantID,
		enrollment.IsRemoved():
		return model.StatusInvalid, ""
	case !authz.CanAccess(subject, enrollment):
		return model.StatusUnauthorized, ""
	}

	entry := &model.DispatchEntry{
		EnrollmentID:  enrollment.ID,
		Device:        device,
		OperationID:   op.ID,
		OperationCode: op.Code,
		OperationType: op.Type,
		Position:      position,
		Status:        model.StatusPending,
		CreatedAt:     op.CreatedAt,
		UpdatedAt:     op.CreatedAt,
	}
	if m.isNonRepeatable(op.Code) {
		entry.DedupeKey = op.Code
	}
	err = m.db.InsertDispatchEntry(ctx, entry)
	if errors.Is(err, store.ErrDuplicatePending) {
		entry.Status = model.StatusRepeated
		entry.DedupeKey = ""
		err = m.db.InsertDispatchEntry(ctx, entry)
	}
	if err != nil {
		l.Errorf("failed to enqueue operation %d to enrollment %s: %s",
			op.ID, enrollment.ID, err)
		return model.StatusError, enrollment.ID
	}
	return entry.Status, enrollment.ID
}

// GetNextPendingOperation returns the next operation a device should
// execute, or nil when there is none.
func (m *OperationManager) GetNextPendingOperation(
	ctx context.Context,
	device model.DeviceIdentifier,
) (*model.DeviceOperation, error) {
	return m.GetNextPendingOperationWithWindow(ctx, device, m.notNowWindow)
}

// GetNextPendingOperationWithWindow is GetNextPendingOperation with an
// explicit NOTNOW suppression window. Polling never modifies the queue.
func (m *OperationManager) GetNextPendingOperationWithWindow(
	ctx context.Context,
	device model.DeviceIdentifier,
	window time.Duration,
) (*model.DeviceOperation, error) {
	if window < 0 {
		return nil, errors.Wrap(ErrInvalidTarget, "negative NOTNOW window")
	}
	ctx, subject, err := m.begin(ctx, authz.ActionOperationsRead)
	if err != nil {
		return nil, err
	}
	enrollment, err := m.resolve(ctx, subject, device)
	if err != nil {
		return nil, err
	}
	if !enrollment.IsActive() {
		return nil, errors.Wrapf(ErrInactiveEnrollment,
			"enrollment %s is %s", enrollment.ID, enrollment.Status)
	}

	entry, err := m.db.NextDispatchEntry(ctx, enrollment.ID, m.now().Add(-window))
	if err != nil {
		return nil, storageError("next dispatch entry", err)
	} else if entry == nil {
		return nil, nil
	}
	op, err := m.getOperation(ctx, entry.OperationID, true)
	if err != nil {
		return nil, err
	}
	res := model.NewDeviceOperation(*op, *entry)
	return &res, nil
}

// UpdateOperation applies a status reported by the device. The write is
// a compare-and-set on the current status, retried once on conflict.
func (m *OperationManager) UpdateOperation(
	ctx context.Context,
	device model.DeviceIdentifier,
	update model.StatusUpdate,
) error {
	if err := update.Validate(); err != nil {
		return errors.Wrapf(ErrInvalidTarget, "status update: %s", err)
	}
	ctx, subject, err := m.begin(ctx, authz.ActionOperationsUpdate)
	if err != nil {
		return err
	}
	enrollment, err := m.resolve(ctx, subject, device)
	if err != nil {
		return err
	}
	if enrollment.IsRemoved() {
		return errors.Wrapf(ErrInactiveEnrollment, "enrollment %s is removed", enrollment.ID)
	}

	l := log.FromContext(ctx)
	for attempt := 0; ; attempt++ {
		entry, err := m.db.GetDispatchEntry(ctx, enrollment.ID, update.OperationID)
		if errors.Is(err, store.ErrNotFound) {
			return errors.Wrapf(ErrNotFound, "operation %d for device %s",
				update.OperationID, device)
		} else if err != nil {
			return storageError("get dispatch entry", err)
		}
		if entry.Status.Terminal() {
			return errors.Wrapf(ErrTerminalStatus, "operation %d is %s",
				update.OperationID, entry.Status)
		}
		if !entry.Status.CanTransitionTo(update.Status) {
			return errors.Wrapf(ErrInvalidTransition, "%s to %s",
				entry.Status, update.Status)
		}

		err = m.db.UpdateDispatchEntry(ctx, enrollment.ID, update.OperationID,
			entry.Status, model.DispatchUpdate{
				Status:    update.Status,
				Response:  update.Response,
				UpdatedAt: m.now(),
			})
		switch {
		case err == nil:
			l.Debugf("operation %d for enrollment %s: %s -> %s",
				update.OperationID, enrollment.ID, entry.Status, update.Status)
			return nil
		case errors.Is(err, store.ErrNotFound):
			return errors.Wrapf(ErrNotFound, "operation %d for device %s",
				update.OperationID, device)
		case !errors.Is(err, store.ErrConflict):
			return storageError("update dispatch entry", err)
		case attempt > 0:
			return errors.Wrapf(ErrConcurrentModification,
				"operation %d for enrollment %s", update.OperationID, enrollment.ID)
		}

		l.Infof("operation %d for enrollment %s changed concurrently, retrying",
			update.OperationID, enrollment.ID)
		status, err := m.registry.EnrollmentStatus(ctx, subject.TenantID, enrollment.ID)
		if err != nil {
			return storageError("enrollment status", err)
		} else if status == model.EnrollmentStatusRemoved {
			return errors.Wrapf(ErrInactiveEnrollment,
				"enrollment %s is removed", enrollment.ID)
		}
	}
}

// deviceOperations joins dispatch entries with their operations.
func (m *OperationManager) deviceOperations(
	ctx context.Context,
	entries []model.DispatchEntry,
) ([]model.DeviceOperation, error) {
	res := make([]model.DeviceOperation, 0, len(entries))
	if len(entries) == 0 {
		return res, nil
	}
	ids := make([]int64, 0, len(entries))
	seen := make(map[int64]struct{}, len(entries))
	for _, entry := range entries {
		if _, ok := seen[entry.OperationID]; !ok {
			seen[entry.OperationID] = struct{}{}
			ids = append(ids, entry.OperationID)
		}
	}
	ops, err := m.db.GetOperationsByIDs(ctx, ids)
	if err != nil {
		return nil, storageError("get operations", err)
	}
	byID := make(map[int64]model.Operation, len(ops))
	for _, op := range ops {
		byID[op.ID] = op
	}
	for _, entry := range entries {
		op, ok := byID[entry.OperationID]
		if !ok {
			return nil, storageError("get operations",
				errors.Errorf("operation %d referenced by enrollment %s is missing",
					entry.OperationID, entry.EnrollmentID))
		}
		res = append(res, model.NewDeviceOperation(op, entry))
	}
	return res, nil
}

// listForDevice resolves device and lists its entries matching q. A
// removed enrollment has no listing.
func (m *OperationManager) listForDevice(
	ctx context.Context,
	device model.DeviceIdentifier,
	q store.DispatchQuery,
) ([]model.DeviceOperation, error) {
	ctx, subject, err := m.begin(ctx, authz.ActionOperationsRead)
	if err != nil {
		return nil, err
	}
	enrollment, err := m.resolve(ctx, subject, device)
	if err != nil {
		return nil, err
	}
	if enrollment.IsRemoved() {
		return nil, nil
	}
	q.EnrollmentID = enrollment.ID
	entries, err := m.db.FindDispatchEntries(ctx, q)
	if err != nil {
		return nil, storageError("find dispatch entries", err)
	}
	return m.deviceOperations(ctx, entries)
}

// GetPendingOperations lists the device's PENDING, NOTNOW and
// INPROGRESS operations, oldest first.
func (m *OperationManager) GetPendingOperations(
	ctx context.Context,
	device model.DeviceIdentifier,
) ([]model.DeviceOperation, error) {
	return m.listForDevice(ctx, device, store.DispatchQuery{
		Statuses: model.PendingStatuses,
		Sort:     store.SortCreatedAsc,
	})
}

// GetOperations lists the full operation history of the device.
func (m *OperationManager) GetOperations(
	ctx context.Context,
	device model.DeviceIdentifier,
) ([]model.DeviceOperation, error) {
	return m.listForDevice(ctx, device, store.DispatchQuery{
		Sort: store.SortCreatedAsc,
	})
}

func (m *OperationManager) GetOperationsByDeviceAndStatus(
	ctx context.Context,
	device model.DeviceIdentifier,
	status model.Status,
) ([]model.DeviceOperation, error) {
	if err := status.Validate(); err != nil {
		return nil, errors.Wrapf(ErrInvalidTarget, "status: %s", err)
	}
	return m.listForDevice(ctx, device, store.DispatchQuery{
		Statuses: []model.Status{status},
		Sort:     store.SortCreatedAsc,
	})
}

// GetOperationsPaginated returns a page of the device history. The
// enrollment filters of req apply before slicing.
func (m *OperationManager) GetOperationsPaginated(
	ctx context.Context,
	device model.DeviceIdentifier,
	req model.PaginationRequest,
) (*model.PaginationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, errors.Wrapf(ErrInvalidTarget, "pagination: %s", err)
	}
	ctx, subject, err := m.begin(ctx, authz.ActionOperationsRead)
	if err != nil {
		return nil, err
	}
	enrollment, err := m.resolve(ctx, subject, device)
	if err != nil {
		return nil, err
	}
	res := &model.PaginationResult{Data: []model.DeviceOperation{}}
	if enrollment.IsRemoved() || !req.Matches(*enrollment) {
		return res, nil
	}

	q := store.DispatchQuery{
		EnrollmentID: enrollment.ID,
		Sort:         store.SortCreatedAsc,
	}
	total, err := m.db.CountDispatchEntries(ctx, q)
	if err != nil {
		return nil, storageError("count dispatch entries", err)
	}
	res.RecordsTotal = total
	res.RecordsFiltered = total

	q.Skip = int64(req.Offset)
	q.Limit = int64(req.Limit)
	if q.Limit == 0 {
		q.Limit = model.DefaultPageLimit
	}
	if q.Skip >= total {
		return res, nil
	}
	entries, err := m.db.FindDispatchEntries(ctx, q)
	if err != nil {
		return nil, storageError("find dispatch entries", err)
	}
	if res.Data, err = m.deviceOperations(ctx, entries); err != nil {
		return nil, err
	}
	return res, nil
}

// GetOperation returns any operation of the tenant. Admin only.
func (m *OperationManager) GetOperation(
	ctx context.Context,
	operationID int64,
) (*model.Operation, error) {
	ctx, _, err := m.begin(ctx, authz.ActionActivitiesRead)
	if err != nil {
		return nil, err
	}
	return m.getOperation(ctx, operationID, true)
}

func (m *OperationManager) GetOperationByDeviceAndOperationID(
	ctx context.Context,
	device model.DeviceIdentifier,
	operationID int64,
) (*model.DeviceOperation, error) {
	ctx, subject, err := m.begin(ctx, authz.ActionOperationsRead)
	if err != nil {
		return nil, err
	}
	enrollment, err := m.resolve(ctx, subject, device)
	if err != nil {
		return nil, err
	}
	entry, err := m.db.GetDispatchEntry(ctx, enrollment.ID, operationID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errors.Wrapf(ErrNotFound, "operation %d for device %s",
			operationID, device)
	} else if err != nil {
		return nil, storageError("get dispatch entry", err)
	}
	op, err := m.getOperation(ctx, operationID, true)
	if err != nil {
		return nil, err
	}
	res := model.NewDeviceOperation(*op, *entry)
	return &res, nil
}
