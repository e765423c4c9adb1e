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

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestConvertPlaceholders(t *testing.T) {
	assert.Equal(t,
		"SELECT * FROM t WHERE a = $1 AND b IN ($2, $3)",
		ConvertPlaceholders("SELECT * FROM t WHERE a = ? AND b IN (?, ?)"))
	assert.Equal(t, "SELECT 1", ConvertPlaceholders("SELECT 1"))
	assert.Equal(t, "?, ?, ?", Placeholders(3))
	assert.Equal(t, "", Placeholders(0))
	assert.Equal(t, "a = $1", (&PostgresDialect{}).Rebind("a = ?"))
	assert.Equal(t, "a = ?", (&SQLiteDialect{}).Rebind("a = ?"))
}

func TestLimitOffset(t *testing.T) {
	testCases := []struct {
		limit, offset int64

		sqlite   string
		postgres string
	}{
		{0, 0, "", ""},
		{10, 0, "LIMIT 10", "LIMIT 10"},
		{0, 5, "LIMIT -1 OFFSET 5", "OFFSET 5"},
		{10, 5, "LIMIT 10 OFFSET 5", "LIMIT 10 OFFSET 5"},
	}
	for i, tc := range testCases {
		t.Run(fmt.Sprintf("test case %d", i), func(t *testing.T) {
			assert.Equal(t, tc.sqlite, (&SQLiteDialect{}).LimitOffset(tc.limit, tc.offset))
			assert.Equal(t, tc.postgres, (&PostgresDialect{}).LimitOffset(tc.limit, tc.offset))
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	pg := &PostgresDialect{}
	assert.True(t, pg.IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, pg.IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, pg.IsUniqueViolation(nil))
	assert.False(t, (&SQLiteDialect{}).IsUniqueViolation(fmt.Errorf("boom")))
}
