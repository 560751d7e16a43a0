package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConnect_Error(t *testing.T) {
	cfg := Config{
		Driver:             "invalid",
		ConnectionString:   "invalid",
		MaxOpenConnections: 10,
		MaxIdleConnections: 5,
		ConnMaxLifetime:    time.Hour,
	}

	db, err := Connect(cfg)
	assert.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestRebind(t *testing.T) {
	tests := []struct {
		name     string
		driver   string
		query    string
		expected string
	}{
		{
			name:     "postgres numbers placeholders",
			driver:   DriverPostgres,
			query:    "SELECT id FROM leases WHERE id = ? AND status = ?",
			expected: "SELECT id FROM leases WHERE id = $1 AND status = $2",
		},
		{
			name:     "mysql is untouched",
			driver:   DriverMySQL,
			query:    "SELECT id FROM leases WHERE id = ?",
			expected: "SELECT id FROM leases WHERE id = ?",
		},
		{
			name:     "literals are skipped",
			driver:   DriverPostgres,
			query:    "SELECT '?' FROM t WHERE a = ?",
			expected: "SELECT '?' FROM t WHERE a = $1",
		},
		{
			name:     "no placeholders",
			driver:   DriverPostgres,
			query:    "SELECT 1",
			expected: "SELECT 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Rebind(tt.driver, tt.query))
		})
	}
}
