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
	"crypto/tls"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	mopts "go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mendersoftware/go-lib-micro/config"
	mstore "github.com/mendersoftware/go-lib-micro/store"

	dconfig "github.com/mendersoftware/operations/config"
	"github.com/mendersoftware/operations/model"
	"github.com/mendersoftware/operations/store"
)

const (
	CollectionOperations = "operations"
	CollectionDispatch   = "dispatch_entries"
	CollectionCounters   = "counters"
)

const (
	StorageKeyId            = "_id"
	StorageKeyEnrollmentID  = "enrollment_id"
	StorageKeyOperationID   = "operation_id"
	StorageKeyOperationCode = "operation_code"
	StorageKeyPosition      = "position"
	StorageKeyStatus        = "status"
	StorageKeyResponse      = "response"
	StorageKeyCreated       = "created"
	StorageKeyUpdated       = "updated"
	StorageKeySequence      = "seq"
	StorageKeyDedupeKey     = "dedupe_key"

	counterOperations = "operations"
)

// DataStoreMongo implements store.DataStore on per-tenant databases.
type DataStoreMongo struct {
	client *mongo.Client
}

var _ store.DataStore = (*DataStoreMongo)(nil)

func NewDataStoreMongoWithClient(client *mongo.Client) *DataStoreMongo {
	return &DataStoreMongo{
		client: client,
	}
}

func NewMongoClient(ctx context.Context, c config.Reader) (*mongo.Client, error) {

	clientOptions := mopts.Client()
	mongoURL := c.GetString(dconfig.SettingMongo)
	if !strings.Contains(mongoURL, "://") {
		return nil, errors.Errorf("Invalid mongoURL %q: missing schema.",
			mongoURL)
	}
	clientOptions.ApplyURI(mongoURL)

	username := c.GetString(dconfig.SettingDbUsername)
	if username != "" {
		credentials := mopts.Credential{
			Username: c.GetString(dconfig.SettingDbUsername),
		}
		password := c.GetString(dconfig.SettingDbPassword)
		if password != "" {
			credentials.Password = password
			credentials.PasswordSet = true
		}
		clientOptions.SetAuth(credentials)
	}

	if c.GetBool(dconfig.SettingDbSSL) {
		tlsConfig := &tls.Config{}
		tlsConfig.InsecureSkipVerify = c.GetBool(dconfig.SettingDbSSLSkipVerify)
		clientOptions.SetTLSConfig(tlsConfig)
	}

	// Set 10s timeout
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to connect to mongo server")
	}

	// Validate connection
	if err = client.Ping(ctx, nil); err != nil {
		return nil, errors.Wrap(err, "Error reaching mongo server")
	}

	return client, nil
}

func (db *DataStoreMongo) database(ctx context.Context) *mongo.Database {
	return db.client.Database(mstore.DbFromContext(ctx, DbName))
}

func (db *DataStoreMongo) Ping(ctx context.Context) error {
	res := db.client.Database(DbName).RunCommand(ctx, bson.M{"ping": 1})
	return res.Err()
}

func (db *DataStoreMongo) ProvisionTenant(ctx context.Context, tenantID string) error {

	dbname := DbName
	if tenantID != "" {
		dbname = mstore.DbNameForTenant(tenantID, DbName)
	}

	return MigrateSingle(ctx, dbname, DbVersion, db.client, true)
}

// Migrate applies the migrations to every tenant database.
func (db *DataStoreMongo) Migrate(ctx context.Context) error {
	return Migrate(ctx, DbVersion, db.client, true)
}

func (db *DataStoreMongo) nextSequence(ctx context.Context, name string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	inc := func() error {
		return db.database(ctx).
			Collection(CollectionCounters).
			FindOneAndUpdate(ctx,
				bson.D{{Key: StorageKeyId, Value: name}},
				bson.D{{Key: "$inc", Value: bson.D{{Key: StorageKeySequence, Value: int64(1)}}}},
				mopts.FindOneAndUpdate().
					SetUpsert(true).
					SetReturnDocument(mopts.After),
			).Decode(&counter)
	}
	err := inc()
	if mongo.IsDuplicateKeyError(err) {
		// a concurrent upsert created the counter first
		err = inc()
	}
	if err != nil {
		return 0, errors.Wrap(err, "failed to allocate sequence number")
	}
	return counter.Seq, nil
}

//operations

func (db *DataStoreMongo) InsertOperation(ctx context.Context, op *model.Operation) error {
	if op == nil {
		return errors.New("nil operation")
	}
	id, err := db.nextSequence(ctx, counterOperations)
	if err != nil {
		return err
	}
	op.ID = id
	_, err = db.database(ctx).
		Collection(CollectionOperations).
		InsertOne(ctx, op)
	if err != nil {
		return errors.Wrap(err, "failed to insert operation")
	}
	return nil
}

func (db *DataStoreMongo) GetOperation(ctx context.Context, id int64) (*model.Operation, error) {
	var op model.Operation
	err := db.database(ctx).
		Collection(CollectionOperations).
		FindOne(ctx, bson.D{{Key: StorageKeyId, Value: id}}).
		Decode(&op)
	if err == mongo.ErrNoDocuments {
		return nil, store.ErrNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to get operation")
	}
	return &op, nil
}

func (db *DataStoreMongo) GetOperationsByIDs(
	ctx context.Context,
	ids []int64,
) ([]model.Operation, error) {
	ops := []model.Operation{}
	if len(ids) == 0 {
		return ops, nil
	}
	cur, err := db.database(ctx).
		Collection(CollectionOperations).
		Find(ctx, bson.D{{Key: StorageKeyId, Value: bson.D{{Key: "$in", Value: ids}}}})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list operations")
	}
	if err := cur.All(ctx, &ops); err != nil {
		return nil, errors.Wrap(err, "failed to decode operations")
	}
	return ops, nil
}

//dispatch queue

func (db *DataStoreMongo) InsertDispatchEntry(
	ctx context.Context,
	entry *model.DispatchEntry,
) error {
	if entry == nil {
		return errors.New("nil dispatch entry")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	_, err := db.database(ctx).
		Collection(CollectionDispatch).
		InsertOne(ctx, entry)
	if mongo.IsDuplicateKeyError(err) {
		if strings.Contains(err.Error(), IndexNameDispatchDedupe) {
			return store.ErrDuplicatePending
		}
		return store.ErrConflict
	} else if err != nil {
		return errors.Wrap(err, "failed to insert dispatch entry")
	}
	return nil
}

func entryFilter(enrollmentID string, operationID int64) bson.D {
	return bson.D{
		{Key: StorageKeyEnrollmentID, Value: enrollmentID},
		{Key: StorageKeyOperationID, Value: operationID},
	}
}

func (db *DataStoreMongo) GetDispatchEntry(
	ctx context.Context,
	enrollmentID string,
	operationID int64,
) (*model.DispatchEntry, error) {
	var entry model.DispatchEntry
	err := db.database(ctx).
		Collection(CollectionDispatch).
		FindOne(ctx, entryFilter(enrollmentID, operationID)).
		Decode(&entry)
	if err == mongo.ErrNoDocuments {
		return nil, store.ErrNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to get dispatch entry")
	}
	return &entry, nil
}

func buildDispatchFilter(q store.DispatchQuery) bson.D {
	filter := bson.D{}
	if q.EnrollmentID != "" {
		filter = append(filter, bson.E{Key: StorageKeyEnrollmentID, Value: q.EnrollmentID})
	}
	if len(q.OperationIDs) > 0 {
		filter = append(filter, bson.E{
			Key:   StorageKeyOperationID,
			Value: bson.D{{Key: "$in", Value: q.OperationIDs}},
		})
	}
	if len(q.Statuses) > 0 {
		filter = append(filter, bson.E{
			Key:   StorageKeyStatus,
			Value: bson.D{{Key: "$in", Value: q.Statuses}},
		})
	}
	if q.Code != "" {
		filter = append(filter, bson.E{Key: StorageKeyOperationCode, Value: q.Code})
	}
	if q.UpdatedAfter != nil {
		filter = append(filter, bson.E{
			Key:   StorageKeyUpdated,
			Value: bson.D{{Key: "$gt", Value: *q.UpdatedAfter}},
		})
	}
	return filter
}

func dispatchSort(order store.SortOrder) bson.D {
	switch order {
	case store.SortPosition:
		return bson.D{
			{Key: StorageKeyOperationID, Value: 1},
			{Key: StorageKeyPosition, Value: 1},
		}
	default:
		return bson.D{
			{Key: StorageKeyCreated, Value: 1},
			{Key: StorageKeyOperationID, Value: 1},
		}
	}
}

func (db *DataStoreMongo) FindDispatchEntries(
	ctx context.Context,
	q store.DispatchQuery,
) ([]model.DispatchEntry, error) {
	if err := q.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid query")
	}
	opts := mopts.Find().SetSort(dispatchSort(q.Sort))
	if q.Skip > 0 {
		opts.SetSkip(q.Skip)
	}
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	cur, err := db.database(ctx).
		Collection(CollectionDispatch).
		Find(ctx, buildDispatchFilter(q), opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list dispatch entries")
	}
	entries := []model.DispatchEntry{}
	if err := cur.All(ctx, &entries); err != nil {
		return nil, errors.Wrap(err, "failed to decode dispatch entries")
	}
	return entries, nil
}

func (db *DataStoreMongo) CountDispatchEntries(
	ctx context.Context,
	q store.DispatchQuery,
) (int64, error) {
	if err := q.Validate(); err != nil {
		return 0, errors.Wrap(err, "invalid query")
	}
	count, err := db.database(ctx).
		Collection(CollectionDispatch).
		CountDocuments(ctx, buildDispatchFilter(q))
	if err != nil {
		return 0, errors.Wrap(err, "failed to count dispatch entries")
	}
	return count, nil
}

func (db *DataStoreMongo) NextDispatchEntry(
	ctx context.Context,
	enrollmentID string,
	notNowBefore time.Time,
) (*model.DispatchEntry, error) {
	filter := bson.D{
		{Key: StorageKeyEnrollmentID, Value: enrollmentID},
		{Key: "$or", Value: bson.A{
			bson.D{{Key: StorageKeyStatus, Value: model.StatusPending}},
			bson.D{
				{Key: StorageKeyStatus, Value: model.StatusNotNow},
				{Key: StorageKeyUpdated, Value: bson.D{{Key: "$lte", Value: notNowBefore}}},
			},
		}},
	}
	var entry model.DispatchEntry
	err := db.database(ctx).
		Collection(CollectionDispatch).
		FindOne(ctx, filter,
			mopts.FindOne().SetSort(dispatchSort(store.SortCreatedAsc)),
		).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to get next dispatch entry")
	}
	return &entry, nil
}

func (db *DataStoreMongo) UpdateDispatchEntry(
	ctx context.Context,
	enrollmentID string,
	operationID int64,
	expected model.Status,
	update model.DispatchUpdate,
) error {
	set := bson.D{
		{Key: StorageKeyStatus, Value: update.Status},
		{Key: StorageKeyUpdated, Value: update.UpdatedAt},
	}
	if update.Response != nil {
		set = append(set, bson.E{Key: StorageKeyResponse, Value: update.Response})
	}
	filter := append(entryFilter(enrollmentID, operationID),
		bson.E{Key: StorageKeyStatus, Value: expected})

	change := bson.D{{Key: "$set", Value: set}}
	if !update.Status.Pending() {
		change = append(change, bson.E{
			Key: "$unset", Value: bson.D{{Key: StorageKeyDedupeKey, Value: ""}},
		})
	}

	collDispatch := db.database(ctx).Collection(CollectionDispatch)
	res, err := collDispatch.UpdateOne(ctx, filter, change)
	if err != nil {
		return errors.Wrap(err, "failed to update dispatch entry")
	}
	if res.MatchedCount > 0 {
		return nil
	}

	count, err := collDispatch.CountDocuments(ctx,
		entryFilter(enrollmentID, operationID),
		mopts.Count().SetLimit(1),
	)
	if err != nil {
		return errors.Wrap(err, "failed to check dispatch entry")
	} else if count == 0 {
		return store.ErrNotFound
	}
	return store.ErrConflict
}

//activities

func (db *DataStoreMongo) FindUpdatedOperationIDs(
	ctx context.Context,
	since time.Time,
	skip, limit int64,
) ([]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: StorageKeyUpdated, Value: bson.D{{Key: "$gt", Value: since}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: StorageKeyId, Value: "$" + StorageKeyOperationID},
			{Key: StorageKeyUpdated, Value: bson.D{{Key: "$max", Value: "$" + StorageKeyUpdated}}},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: StorageKeyUpdated, Value: -1},
			{Key: StorageKeyId, Value: -1},
		}}},
	}
	if skip > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: skip}})
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}
	cur, err := db.database(ctx).
		Collection(CollectionDispatch).
		Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrap(err, "failed to aggregate dispatch entries")
	}
	var groups []struct {
		OperationID int64 `bson:"_id"`
	}
	if err := cur.All(ctx, &groups); err != nil {
		return nil, errors.Wrap(err, "failed to decode aggregation result")
	}
	ids := make([]int64, len(groups))
	for i, g := range groups {
		ids[i] = g.OperationID
	}
	return ids, nil
}
