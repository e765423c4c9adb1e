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

	"github.com/mendersoftware/operations/authz"
	"github.com/mendersoftware/operations/model"
	"github.com/mendersoftware/operations/store"
)

func (m *OperationManager) activityOperation(
	ctx context.Context,
	activityID string,
) (*model.Operation, error) {
	operationID, err := model.ParseActivityID(activityID)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidTarget, err.Error())
	}
	return m.getOperation(ctx, operationID, false)
}

// GetOperationByActivityID returns the operation with the status of
// every device it was submitted to, in batch order.
func (m *OperationManager) GetOperationByActivityID(
	ctx context.Context,
	activityID string,
) (*model.Activity, error) {
	ctx, _, err := m.begin(ctx, authz.ActionActivitiesRead)
	if err != nil {
		return nil, err
	}
	op, err := m.activityOperation(ctx, activityID)
	if err != nil {
		return nil, err
	}
	entries, err := m.db.FindDispatchEntries(ctx, store.DispatchQuery{
		OperationIDs: []int64{op.ID},
		Sort:         store.SortPosition,
	})
	if err != nil {
		return nil, storageError("find dispatch entries", err)
	}
	activity := model.NewActivity(*op)
	for _, entry := range entries {
		activity.Statuses = append(activity.Statuses, model.NewActivityStatus(entry))
	}
	return activity, nil
}

// GetOperationByActivityIDAndDevice is GetOperationByActivityID limited
// to a single device.
func (m *OperationManager) GetOperationByActivityIDAndDevice(
	ctx context.Context,
	activityID string,
	device model.DeviceIdentifier,
) (*model.Activity, error) {
	ctx, subject, err := m.begin(ctx, authz.ActionActivitiesRead)
	if err != nil {
		return nil, err
	}
	op, err := m.activityOperation(ctx, activityID)
	if err != nil {
		return nil, err
	}
	enrollment, err := m.resolve(ctx, subject, device)
	if err != nil {
		return nil, err
	}
	activity := model.NewActivity(*op)
	entry, err := m.db.GetDispatchEntry(ctx, enrollment.ID, op.ID)
	switch {
	case err == nil:
		activity.Statuses = append(activity.Statuses, model.NewActivityStatus(*entry))
	case !errors.Is(err, store.ErrNotFound):
		return nil, storageError("get dispatch entry", err)
	}
	return activity, nil
}

// GetActivitiesUpdatedAfter lists the activities with device statuses
// updated after since, most recently updated first. Every activity holds
// only the statuses matching the window.
func (m *OperationManager) GetActivitiesUpdatedAfter(
	ctx context.Context,
	since time.Time,
	limit, offset int,
) ([]model.Activity, error) {
	if limit < 0 || offset < 0 {
		return nil, errors.Wrap(ErrInvalidTarget, "limit and offset must be non-negative")
	}
	ctx, _, err := m.begin(ctx, authz.ActionActivitiesRead)
	if err != nil {
		return nil, err
	}
	if limit == 0 {
		limit = model.DefaultPageLimit
	}
	since = since.UTC()

	ids, err := m.db.FindUpdatedOperationIDs(ctx, since, int64(offset), int64(limit))
	if err != nil {
		return nil, storageError("find updated operations", err)
	}
	activities := make([]model.Activity, 0, len(ids))
	if len(ids) == 0 {
		return activities, nil
	}
	ops, err := m.db.GetOperationsByIDs(ctx, ids)
	if err != nil {
		return nil, storageError("get operations", err)
	}
	entries, err := m.db.FindDispatchEntries(ctx, store.DispatchQuery{
		OperationIDs: ids,
		UpdatedAfter: &since,
		Sort:         store.SortPosition,
	})
	if err != nil {
		return nil, storageError("find dispatch entries", err)
	}

	byID := make(map[int64]*model.Activity, len(ops))
	for _, op := range ops {
		byID[op.ID] = model.NewActivity(op)
	}
	for _, entry := range entries {
		if activity, ok := byID[entry.OperationID]; ok {
			activity.Statuses = append(activity.Statuses, model.NewActivityStatus(entry))
		}
	}
	for _, id := range ids {
		if activity, ok := byID[id]; ok {
			activities = append(activities, *activity)
		}
	}
	return activities, nil
}

// GetActivityCountUpdatedAfter counts device statuses, not activities,
// updated after since.
func (m *OperationManager) GetActivityCountUpdatedAfter(
	ctx context.Context,
	since time.Time,
) (int64, error) {
	ctx, _, err := m.begin(ctx, authz.ActionActivitiesRead)
	if err != nil {
		return 0, err
	}
	since = since.UTC()
	n, err := m.db.CountDispatchEntries(ctx, store.DispatchQuery{
		UpdatedAfter: &since,
	})
	if err != nil {
		return 0, storageError("count dispatch entries", err)
	}
	return n, nil
}
