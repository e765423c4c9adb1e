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

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/mendersoftware/go-lib-micro/config"
)

const (
	EnvProd = "prod"
	EnvDev  = "dev"

	SettingHttps            = "https"
	SettingHttpsCertificate = SettingHttps + ".certificate"
	SettingHttpsKey         = SettingHttps + ".key"

	SettingListen        = "listen"
	SettingListenDefault = ":8080"

	SettingMiddleware        = "middleware"
	SettingMiddlewareDefault = EnvProd

	SettingDebugLog        = "debug_log"
	SettingDebugLogDefault = false

	// Storage engine of operations and dispatch entries.
	SettingDbDriver        = "db.driver"
	SettingDbDriverDefault = DbDriverMongo

	SettingMongo        = "mongo-url"
	SettingMongoDefault = "mongodb://mongo-operations:27017"

	SettingDbSSL        = "mongo_ssl"
	SettingDbSSLDefault = false

	SettingDbSSLSkipVerify        = "mongo_ssl_skipverify"
	SettingDbSSLSkipVerifyDefault = false

	SettingDbUsername = "mongo_username"
	SettingDbPassword = "mongo_password"

	SettingSQLitePath        = "db.sqlite.path"
	SettingSQLitePathDefault = "/var/lib/operations/operations.db"

	SettingPostgresDSN = "db.postgres.dsn"

	// Payload store backend.
	SettingStorage           = "storage"
	SettingDefaultStorage    = SettingStorage + ".default"
	SettingDefaultStorageAWS = StorageTypeAWS

	SettingsAws               = "aws"
	SettingAwsS3Region        = SettingsAws + ".region"
	SettingAwsS3RegionDefault = "us-east-1"
	SettingAwsS3Bucket        = SettingsAws + ".bucket"
	SettingAwsS3BucketDefault = "mender-operation-payloads"
	SettingAwsURI             = SettingsAws + ".uri"
	SettingAwsForcePathStyle  = SettingsAws + ".force_path_style"
	SettingAwsUseAccelerate   = SettingsAws + ".use_accelerate"

	SettingsAwsAuth      = SettingsAws + ".auth"
	SettingAwsAuthKeyId  = SettingsAwsAuth + ".key"
	SettingAwsAuthSecret = SettingsAwsAuth + ".secret"
	SettingAwsAuthToken  = SettingsAwsAuth + ".token"

	SettingAzure                     = "azure"
	SettingAzureContainerName        = SettingAzure + ".container_name"
	SettingAzureConnectionString     = SettingAzure + ".connection_string"
	SettingAzureAccountName          = SettingAzure + ".account_name"
	SettingAzureAccountKey           = SettingAzure + ".account_key"
	SettingAzureURI                  = SettingAzure + ".uri"
	SettingAzureContainerNameDefault = "operation-payloads"

	SettingInventoryAddr        = "inventory_addr"
	SettingInventoryAddrDefault = "http://mender-inventory:8080/"

	SettingInventoryTimeout        = "inventory_timeout"
	SettingInventoryTimeoutDefault = "5s"

	// Notifications are disabled when empty.
	SettingWorkflowsAddr = "workflows_addr"

	// Suppression window applied to NOTNOW entries when polling.
	SettingNotNowWindow        = "notnow_window"
	SettingNotNowWindowDefault = "5m"

	SettingNonRepeatableCodes = "non_repeatable_codes"
)

const (
	DbDriverMongo    = "mongo"
	DbDriverSQLite   = "sqlite"
	DbDriverPostgres = "postgres"

	StorageTypeAWS   = "aws"
	StorageTypeAzure = "azure"
)

var (
	SettingNonRepeatableCodesDefault = []string{
		"POLICY_BUNDLE",
		"MONITOR",
		"POLICY_REVOKE",
	}

	Validators = []config.Validator{
		ValidateAwsAuth,
		ValidateHttps,
		ValidateDbDriver,
		ValidateStorage,
		ValidateNotNowWindow,
	}

	Defaults = []config.Default{
		{Key: SettingListen, Value: SettingListenDefault},
		{Key: SettingMiddleware, Value: SettingMiddlewareDefault},
		{Key: SettingDebugLog, Value: SettingDebugLogDefault},
		{Key: SettingDbDriver, Value: SettingDbDriverDefault},
		{Key: SettingMongo, Value: SettingMongoDefault},
		{Key: SettingDbSSL, Value: SettingDbSSLDefault},
		{Key: SettingDbSSLSkipVerify, Value: SettingDbSSLSkipVerifyDefault},
		{Key: SettingSQLitePath, Value: SettingSQLitePathDefault},
		{Key: SettingDefaultStorage, Value: SettingDefaultStorageAWS},
		{Key: SettingAwsS3Region, Value: SettingAwsS3RegionDefault},
		{Key: SettingAwsS3Bucket, Value: SettingAwsS3BucketDefault},
		{Key: SettingAwsForcePathStyle, Value: true},
		{Key: SettingAzureContainerName, Value: SettingAzureContainerNameDefault},
		{Key: SettingInventoryAddr, Value: SettingInventoryAddrDefault},
		{Key: SettingInventoryTimeout, Value: SettingInventoryTimeoutDefault},
		{Key: SettingNotNowWindow, Value: SettingNotNowWindowDefault},
		{Key: SettingNonRepeatableCodes, Value: SettingNonRepeatableCodesDefault},
	}
)

// ValidateAwsAuth validates configuration of SettingsAwsAuth section if provided.
func ValidateAwsAuth(c config.Reader) error {

	if c.IsSet(SettingsAwsAuth) {
		required := []string{SettingAwsAuthKeyId, SettingAwsAuthSecret}
		for _, key := range required {
			if !c.IsSet(key) {
				return MissingOptionError(key)
			}

			if c.GetString(key) == "" {
				return MissingOptionError(key)
			}
		}
	}

	return nil
}

// ValidateHttps validates configuration of SettingHttps section if provided.
func ValidateHttps(c config.Reader) error {

	if c.IsSet(SettingHttps) {
		required := []string{SettingHttpsCertificate, SettingHttpsKey}
		for _, key := range required {
			if !c.IsSet(key) {
				return MissingOptionError(key)
			}

			value := c.GetString(key)
			if value == "" {
				return MissingOptionError(key)
			}

			if _, err := os.Stat(value); err != nil {
				return err
			}
		}
	}

	return nil
}

// ValidateDbDriver checks that the selected engine is known and configured.
func ValidateDbDriver(c config.Reader) error {
	switch driver := c.GetString(SettingDbDriver); driver {
	case DbDriverMongo:
		if c.GetString(SettingMongo) == "" {
			return MissingOptionError(SettingMongo)
		}
	case DbDriverSQLite:
		if c.GetString(SettingSQLitePath) == "" {
			return MissingOptionError(SettingSQLitePath)
		}
	case DbDriverPostgres:
		if c.GetString(SettingPostgresDSN) == "" {
			return MissingOptionError(SettingPostgresDSN)
		}
	default:
		return InvalidValueError(SettingDbDriver, driver)
	}
	return nil
}

func ValidateStorage(c config.Reader) error {
	switch storage := c.GetString(SettingDefaultStorage); storage {
	case StorageTypeAWS:
	case StorageTypeAzure:
		if c.GetString(SettingAzureConnectionString) == "" &&
			(c.GetString(SettingAzureAccountName) == "" ||
				c.GetString(SettingAzureAccountKey) == "") {
			return MissingOptionError(SettingAzureConnectionString)
		}
	default:
		return InvalidValueError(SettingDefaultStorage, storage)
	}
	return nil
}

func ValidateNotNowWindow(c config.Reader) error {
	if c.GetDuration(SettingNotNowWindow) < 0 {
		return InvalidValueError(SettingNotNowWindow, c.GetString(SettingNotNowWindow))
	}
	return nil
}

// NotNowWindow returns the configured NOTNOW suppression window.
func NotNowWindow(c config.Reader) time.Duration {
	return c.GetDuration(SettingNotNowWindow)
}

// Generate error with missing reuired option message.
func MissingOptionError(option string) error {
	return fmt.Errorf("Required option: '%s'", option)
}

func InvalidValueError(option string, value interface{}) error {
	return fmt.Errorf("Invalid value '%s' = '%v'.", option, value)
}
