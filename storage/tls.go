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

package storage

import (
	"crypto/tls"
	"crypto/x509"
	"net/http"
	"os"
	"time"
)

// StorageBackendCertEnv names an environment variable holding an extra
// PEM certificate trusted when talking to the object store.
const StorageBackendCertEnv = "STORAGE_BACKEND_CERT"

var getEnv = os.Getenv

func RootCAs() *x509.CertPool {
	pool, _ := x509.SystemCertPool()
	if pool == nil {
		pool = x509.NewCertPool()
	}
	if pem := getEnv(StorageBackendCertEnv); pem != "" {
		pool.AppendCertsFromPEM([]byte(pem))
	}
	return pool
}

// NewHTTPClient returns the client shared by the object store backends.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout: time.Minute,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			TLSClientConfig:     &tls.Config{RootCAs: RootCAs()},
			MaxIdleConnsPerHost: 16,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
