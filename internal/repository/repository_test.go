package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockDB opens gorm's mysql dialector over go-sqlmock.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return gdb, mock
}

var userColumns = []string{"id", "email", "password_hash", "name", "role", "doctor_id", "created_at", "updated_at"}

func addPatientRow(rows *sqlmock.Rows, id uuid.UUID, name string, doctorID *uuid.UUID) *sqlmock.Rows {
	now := time.Now()
	var doctor interface{}
	if doctorID != nil {
		doctor = doctorID.String()
	}
	return rows.AddRow(id.String(), name+"@example.com", "hash", name, "patient", doctor, now, now)
}

func duplicateKeyError() error {
	return &mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry for key 'idx_moods_user_date'"}
}
