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

package mongo

import (
	"context"
	"fmt"

	"github.com/mendersoftware/go-lib-micro/mongo/migrate"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	mopts "go.mongodb.org/mongo-driver/mongo/options"
)

const (
	IndexNameDispatchEntry   = "enrollment_operation"
	IndexNameDispatchQueue   = "enrollment_status_created"
	IndexNameDispatchUpdated = "updated_operation"
	IndexNameDispatchCode    = "enrollment_code_status"
	IndexNameDispatchDedupe  = "enrollment_dedupe_key"
)

type migration_1_0_0 struct {
	client *mongo.Client
	db     string
}

// Up creates the dispatch queue indexes.
func (m *migration_1_0_0) Up(from migrate.Version) error {
	ctx := context.Background()
	idxDispatch := m.client.
		Database(m.db).
		Collection(CollectionDispatch).
		Indexes()

	_, err := idxDispatch.CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: StorageKeyEnrollmentID, Value: 1},
				{Key: StorageKeyOperationID, Value: 1},
			},
			Options: mopts.Index().
				SetName(IndexNameDispatchEntry).
				SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: StorageKeyEnrollmentID, Value: 1},
				{Key: StorageKeyStatus, Value: 1},
				{Key: StorageKeyCreated, Value: 1},
				{Key: StorageKeyOperationID, Value: 1},
			},
			Options: mopts.Index().
				SetName(IndexNameDispatchQueue),
		},
		{
			Keys: bson.D{
				{Key: StorageKeyUpdated, Value: -1},
				{Key: StorageKeyOperationID, Value: 1},
			},
			Options: mopts.Index().
				SetName(IndexNameDispatchUpdated),
		},
		{
			Keys: bson.D{
				{Key: StorageKeyEnrollmentID, Value: 1},
				{Key: StorageKeyOperationCode, Value: 1},
				{Key: StorageKeyStatus, Value: 1},
			},
			Options: mopts.Index().
				SetName(IndexNameDispatchCode),
		},
		{
			Keys: bson.D{
				{Key: StorageKeyEnrollmentID, Value: 1},
				{Key: StorageKeyDedupeKey, Value: 1},
			},
			Options: mopts.Index().
				SetName(IndexNameDispatchDedupe).
				SetUnique(true).
				SetPartialFilterExpression(bson.D{
					{Key: StorageKeyDedupeKey, Value: bson.D{{Key: "$exists", Value: true}}},
				}),
		},
	})
	if err != nil {
		return fmt.Errorf("mongo(1.0.0): failed to create indexes: %w", err)
	}
	return nil
}

func (m *migration_1_0_0) Version() migrate.Version {
	return migrate.MakeVersion(1, 0, 0)
}
