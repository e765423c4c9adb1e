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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type MockConfigReader struct {
	settings map[string]string
}

func NewMockConfigReader() *MockConfigReader {
	return &MockConfigReader{
		settings: make(map[string]string),
	}
}

func (m *MockConfigReader) Get(key string) interface{}                      { return nil }
func (m *MockConfigReader) GetBool(key string) bool                         { return true }
func (m *MockConfigReader) GetFloat64(key string) float64                   { return 1.1 }
func (m *MockConfigReader) GetInt(key string) int                           { return 1 }
func (m *MockConfigReader) GetStringMap(key string) map[string]interface{}  { return nil }
func (m *MockConfigReader) GetStringMapString(key string) map[string]string { return nil }
func (m *MockConfigReader) GetStringSlice(key string) []string              { return []string{} }
func (m *MockConfigReader) GetTime(key string) time.Time                    { return time.Now() }

func (m *MockConfigReader) GetDuration(key string) time.Duration {
	d, _ := time.ParseDuration(m.settings[key])
	return d
}

func (m *MockConfigReader) GetString(key string) string {
	val, _ := m.settings[key]
	return val
}

func (m *MockConfigReader) IsSet(key string) bool {
	_, found := m.settings[key]
	return found
}

func (m *MockConfigReader) SetString(key, value string) {
	m.settings[key] = value
}

func withSettings(kv ...string) *MockConfigReader {
	conf := NewMockConfigReader()
	for i := 0; i+1 < len(kv); i += 2 {
		conf.SetString(kv[i], kv[i+1])
	}
	return conf
}

func TestMissingOptionErrror(t *testing.T) {
	assert.EqualError(t, MissingOptionError("FIELD 1"), "Required option: 'FIELD 1'")
}

func TestValidateHttps(t *testing.T) {

	testList := []struct {
		out    error
		conifg *MockConfigReader
	}{
		{nil, NewMockConfigReader()},
		{MissingOptionError(SettingHttpsCertificate),
			withSettings(SettingHttps, "")},
		{MissingOptionError(SettingHttpsCertificate),
			withSettings(SettingHttps, "", SettingHttpsCertificate, "")},
		{MissingOptionError(SettingHttpsKey),
			withSettings(SettingHttps, "", SettingHttpsCertificate, "config_test.go")},
	}

	for i, test := range testList {
		t.Run(fmt.Sprintf("test case %d", i), func(t *testing.T) {
			assert.Equal(t, test.out, ValidateHttps(test.conifg))
		})
	}
}

func TestValidateAwsAuth(t *testing.T) {
	assert.NoError(t, ValidateAwsAuth(NewMockConfigReader()))
	assert.Equal(t,
		MissingOptionError(SettingAwsAuthKeyId),
		ValidateAwsAuth(withSettings(SettingsAwsAuth, "")))
	assert.Equal(t,
		MissingOptionError(SettingAwsAuthSecret),
		ValidateAwsAuth(withSettings(
			SettingsAwsAuth, "",
			SettingAwsAuthKeyId, "key",
		)))
	assert.NoError(t, ValidateAwsAuth(withSettings(
		SettingsAwsAuth, "",
		SettingAwsAuthKeyId, "key",
		SettingAwsAuthSecret, "secret",
	)))
}

func TestValidateDbDriver(t *testing.T) {
	testList := []struct {
		conf *MockConfigReader
		out  error
	}{
		{
			conf: withSettings(SettingDbDriver, DbDriverMongo, SettingMongo, "mongodb://mongo"),
		},
		{
			conf: withSettings(SettingDbDriver, DbDriverMongo),
			out:  MissingOptionError(SettingMongo),
		},
		{
			conf: withSettings(SettingDbDriver, DbDriverSQLite, SettingSQLitePath, ":memory:"),
		},
		{
			conf: withSettings(SettingDbDriver, DbDriverPostgres),
			out:  MissingOptionError(SettingPostgresDSN),
		},
		{
			conf: withSettings(SettingDbDriver, "oracle"),
			out:  InvalidValueError(SettingDbDriver, "oracle"),
		},
	}
	for i, test := range testList {
		t.Run(fmt.Sprintf("test case %d", i), func(t *testing.T) {
			assert.Equal(t, test.out, ValidateDbDriver(test.conf))
		})
	}
}

func TestValidateStorage(t *testing.T) {
	assert.NoError(t, ValidateStorage(withSettings(SettingDefaultStorage, StorageTypeAWS)))
	assert.Equal(t,
		MissingOptionError(SettingAzureConnectionString),
		ValidateStorage(withSettings(SettingDefaultStorage, StorageTypeAzure)))
	assert.NoError(t, ValidateStorage(withSettings(
		SettingDefaultStorage, StorageTypeAzure,
		SettingAzureAccountName, "account",
		SettingAzureAccountKey, "a2V5",
	)))
	assert.Equal(t,
		InvalidValueError(SettingDefaultStorage, "gcs"),
		ValidateStorage(withSettings(SettingDefaultStorage, "gcs")))
}

func TestNotNowWindow(t *testing.T) {
	conf := withSettings(SettingNotNowWindow, "7s")
	assert.NoError(t, ValidateNotNowWindow(conf))
	assert.Equal(t, 7*time.Second, NotNowWindow(conf))

	conf = withSettings(SettingNotNowWindow, "-1s")
	assert.Error(t, ValidateNotNowWindow(conf))
}
