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

package sqldb

import "fmt"

func schema(d Dialect) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id %s,
	tenant_id TEXT NOT NULL,
	type TEXT NOT NULL,
	code TEXT NOT NULL,
	payload_handle TEXT NOT NULL DEFAULT '',
	created_at %s NOT NULL,
	enabled %s NOT NULL,
	initiated_by TEXT NOT NULL DEFAULT ''
)`, TableOperations, d.AutoIncrement(), d.BigIntType(), d.BoolType()),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id TEXT PRIMARY KEY,
	tenant_id TEXT NOT NULL,
	enrollment_id TEXT NOT NULL,
	device_id TEXT NOT NULL,
	device_type TEXT NOT NULL,
	operation_id %s NOT NULL,
	operation_code TEXT NOT NULL,
	operation_type TEXT NOT NULL,
	batch_position INTEGER NOT NULL,
	status TEXT NOT NULL,
	response %s,
	created_at %s NOT NULL,
	updated_at %s NOT NULL,
	dedupe_key TEXT,
	UNIQUE (tenant_id, enrollment_id, operation_id)
)`, TableDispatch, d.BigIntType(), d.BlobType(), d.BigIntType(), d.BigIntType()),

		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_dispatch_queue
	ON %s (tenant_id, enrollment_id, status, created_at, operation_id)`, TableDispatch),

		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_dispatch_updated
	ON %s (tenant_id, updated_at)`, TableDispatch),

		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_dispatch_code
	ON %s (tenant_id, enrollment_id, operation_code, status)`, TableDispatch),

		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %s
	ON %s (tenant_id, enrollment_id, dedupe_key)
	WHERE dedupe_key IS NOT NULL`, IndexDispatchDedupe, TableDispatch),
	}
}
