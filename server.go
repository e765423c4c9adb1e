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

package main

import (
	"context"
	"net/http"

	"github.com/ant0ine/go-json-rest/rest"
	"github.com/pkg/errors"

	"github.com/mendersoftware/go-lib-micro/config"
	"github.com/mendersoftware/go-lib-micro/log"

	api "github.com/mendersoftware/operations/api/http"
	"github.com/mendersoftware/operations/app"
	"github.com/mendersoftware/operations/authz"
	"github.com/mendersoftware/operations/client/inventory"
	"github.com/mendersoftware/operations/client/workflows"
	dconfig "github.com/mendersoftware/operations/config"
	"github.com/mendersoftware/operations/storage"
	"github.com/mendersoftware/operations/storage/azblob"
	"github.com/mendersoftware/operations/storage/s3"
	"github.com/mendersoftware/operations/store"
	mstore "github.com/mendersoftware/operations/store/mongo"
)

func SetupS3(ctx context.Context, c config.Reader) (storage.PayloadStore, error) {
	bucket := c.GetString(dconfig.SettingAwsS3Bucket)
	options := s3.NewOptions().
		SetForcePathStyle(c.GetBool(dconfig.SettingAwsForcePathStyle)).
		SetUseAccelerate(c.GetBool(dconfig.SettingAwsUseAccelerate))

	// The following parameters falls back on AWS_* environment if not set
	if c.IsSet(dconfig.SettingAwsS3Region) {
		options.SetRegion(c.GetString(dconfig.SettingAwsS3Region))
	}
	if c.IsSet(dconfig.SettingsAwsAuth) ||
		(c.IsSet(dconfig.SettingAwsAuthKeyId) &&
			c.IsSet(dconfig.SettingAwsAuthSecret)) {
		options.SetStaticCredentials(
			c.GetString(dconfig.SettingAwsAuthKeyId),
			c.GetString(dconfig.SettingAwsAuthSecret),
			c.GetString(dconfig.SettingAwsAuthToken),
		)
	}
	if c.IsSet(dconfig.SettingAwsURI) {
		options.SetURI(c.GetString(dconfig.SettingAwsURI))
	}

	return s3.New(ctx, bucket, options)
}

func SetupAzure(ctx context.Context, c config.Reader) (storage.PayloadStore, error) {
	options := azblob.NewOptions()
	if c.IsSet(dconfig.SettingAzureConnectionString) {
		options.SetConnectionString(c.GetString(dconfig.SettingAzureConnectionString))
	} else {
		creds := azblob.SharedKeyCredentials{
			AccountName: c.GetString(dconfig.SettingAzureAccountName),
			AccountKey:  c.GetString(dconfig.SettingAzureAccountKey),
		}
		if c.IsSet(dconfig.SettingAzureURI) {
			uri := c.GetString(dconfig.SettingAzureURI)
			creds.URI = &uri
		}
		options.SetSharedKey(creds)
	}

	return azblob.New(ctx, c.GetString(dconfig.SettingAzureContainerName), options)
}

func SetupPayloadStore(ctx context.Context, c config.Reader) (storage.PayloadStore, error) {
	switch backend := c.GetString(dconfig.SettingDefaultStorage); backend {
	case dconfig.StorageTypeAWS:
		return SetupS3(ctx, c)
	case dconfig.StorageTypeAzure:
		return SetupAzure(ctx, c)
	default:
		return nil, errors.Errorf("unknown storage backend %q", backend)
	}
}

// SetupDataStore connects to the configured database. The returned
// function releases the connection.
func SetupDataStore(ctx context.Context, c config.Reader) (store.DataStore, func(), error) {
	if c.GetString(dconfig.SettingDbDriver) == dconfig.DbDriverMongo {
		dbClient, err := mstore.NewMongoClient(ctx, c)
		if err != nil {
			return nil, nil, err
		}
		closer := func() {
			_ = dbClient.Disconnect(context.Background())
		}
		return mstore.NewDataStoreMongoWithClient(dbClient), closer, nil
	}

	ds, err := setupSQLStore(ctx, c)
	if err != nil {
		return nil, nil, err
	}
	closer := func() {
		_ = ds.Close()
	}
	return ds, closer, nil
}

func NewApp(
	c config.Reader,
	ds store.DataStore,
	payloads storage.PayloadStore,
) *app.OperationManager {
	appConf := app.NewConfig().
		SetNotNowWindow(dconfig.NotNowWindow(c))
	if codes := c.GetStringSlice(dconfig.SettingNonRepeatableCodes); len(codes) > 0 {
		appConf.SetNonRepeatableCodes(codes)
	}

	operations := app.NewOperationManager(
		ds,
		inventory.NewClient(),
		payloads,
		authz.NewDefaultProvider(),
		appConf,
	)
	if c.GetString(dconfig.SettingWorkflowsAddr) != "" {
		operations = operations.WithNotifier(workflows.NewClient())
	}
	return operations
}

// MigrateDataStore brings the schema of ds up to date.
func MigrateDataStore(ctx context.Context, ds store.DataStore) error {
	m, ok := ds.(store.Migrator)
	if !ok {
		return errors.Errorf("data store %T does not support migrations", ds)
	}
	return errors.WithMessage(m.Migrate(ctx), "failed to run migrations")
}

func RunServer(ctx context.Context, c config.Reader, automigrate bool) error {
	l := log.FromContext(ctx)

	ds, closeDB, err := SetupDataStore(ctx, c)
	if err != nil {
		return errors.WithMessage(err, "main: failed to setup the data store")
	}
	defer closeDB()

	// migrate through the store the server uses: an in-memory SQLite
	// database is private to its connection
	if automigrate {
		if err := MigrateDataStore(ctx, ds); err != nil {
			return err
		}
	}

	// Storage Layer
	payloads, err := SetupPayloadStore(ctx, c)
	if err != nil {
		return errors.WithMessage(err, "main: failed to setup the payload store")
	}

	operations := NewApp(c, ds, payloads)

	router, err := api.NewRouter(ctx, operations)
	if err != nil {
		return err
	}

	api := rest.NewApi()
	SetupMiddleware(c, api)
	api.SetApp(router)

	listen := c.GetString(dconfig.SettingListen)
	l.Infof("listening on %s", listen)

	if c.IsSet(dconfig.SettingHttps) {

		cert := c.GetString(dconfig.SettingHttpsCertificate)
		key := c.GetString(dconfig.SettingHttpsKey)

		return http.ListenAndServeTLS(listen, cert, key, api.MakeHandler())
	}

	return http.ListenAndServe(listen, api.MakeHandler())
}
