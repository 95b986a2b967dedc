package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func TestGetTableColumns(t *testing.T) {
	db, err := Connect(Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	err = db.Exec("CREATE TABLE series (id INTEGER PRIMARY KEY, name TEXT NOT NULL, units TEXT)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "series")
	assert.NoError(t, err)
	assert.Len(t, columns, 3)

	colMap := make(map[string]ColumnInfo)
	for _, col := range columns {
		colMap[col.Field] = col
	}

	assert.Equal(t, "integer", colMap["id"].Type)
	assert.Equal(t, "text", colMap["name"].Type)
	assert.Equal(t, "NO", colMap["name"].Null)
	assert.Equal(t, "YES", colMap["units"].Null)

	// PRAGMA table_info returns an empty result for a missing table
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestHasColumn(t *testing.T) {
	db, err := Connect(Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE series (id INTEGER PRIMARY KEY, name TEXT)").Error)

	ok, err := HasColumn(db, "series", "NAME")
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = HasColumn(db, "series", "units")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestGetTableColumns_MySQL(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
		AddRow("ID", "BIGINT", "NO", "PRI", nil, "auto_increment").
		AddRow("Units", "VARCHAR(64)", "YES", "", nil, "")
	mock.ExpectQuery("SHOW COLUMNS FROM `series`").WillReturnRows(rows)

	columns, err := GetTableColumns(db, "series")
	assert.NoError(t, err)
	require.Len(t, columns, 2)
	assert.Equal(t, "units", columns[1].Field)
	assert.Equal(t, "varchar(64)", columns[1].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}
