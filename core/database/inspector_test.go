package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func TestGetTableColumns_SQLite(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	err = db.Exec("CREATE TABLE list_rows (id INTEGER PRIMARY KEY, list TEXT NOT NULL, position INTEGER, `key` TEXT)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "list_rows")
	require.NoError(t, err)
	require.Len(t, columns, 4)

	byName := make(map[string]ColumnInfo)
	for _, col := range columns {
		byName[col.Field] = col
	}
	assert.Equal(t, "integer", byName["id"].Type)
	assert.Equal(t, "PRI", byName["id"].Key)
	assert.Equal(t, "text", byName["list"].Type)
	assert.Equal(t, "NO", byName["list"].Null)
	assert.Equal(t, "YES", byName["key"].Null)

	// PRAGMA table_info returns nothing for an unknown table.
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestGetTableColumns_MySQL(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectQuery("SHOW COLUMNS FROM `list_rows`").
		WillReturnRows(sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
			AddRow("ID", "BIGINT", "NO", "PRI", nil, "auto_increment").
			AddRow("Position", "INT", "NO", "", nil, ""))

	columns, err := GetTableColumns(db, "list_rows")
	require.NoError(t, err)
	require.Len(t, columns, 2)
	assert.Equal(t, "id", columns[0].Field)
	assert.Equal(t, "bigint", columns[0].Type)
	assert.Equal(t, "position", columns[1].Field)

	mock.ExpectQuery("SHOW COLUMNS FROM `broken`").WillReturnError(assert.AnError)
	_, err = GetTableColumns(db, "broken")
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMissingColumns(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE list_rows (id INTEGER PRIMARY KEY, list TEXT)").Error)

	missing, err := MissingColumns(db, "list_rows", "list", "position", "Key")
	require.NoError(t, err)
	assert.Equal(t, []string{"position", "Key"}, missing)
}
