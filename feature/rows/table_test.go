package rows

import (
	"context"
	"testing"

	"livelist/core/database"
	"livelist/core/list"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupSQLite(t *testing.T) *gorm.DB {
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func storedKeys(t *testing.T, db *gorm.DB, name string) []string {
	var rows []Row
	require.NoError(t, db.Where("list = ?", name).Order("position").Find(&rows).Error)
	keys := []string{}
	for i, r := range rows {
		assert.Equal(t, i, r.Position, "positions are dense")
		keys = append(keys, r.Key)
	}
	return keys
}

func TestTable_InsertRemove(t *testing.T) {
	ctx := context.Background()
	db := setupSQLite(t)
	tbl := NewTable(db, "todo", nil)
	require.NoError(t, tbl.Load(ctx))

	var last list.Update[string]
	defer tbl.Subscribe(func(u list.Update[string]) { last = u }).Unsubscribe()

	require.NoError(t, tbl.Insert(ctx, 0, "b"))
	require.NoError(t, tbl.Insert(ctx, 0, "a"))
	require.NoError(t, tbl.Insert(ctx, 2, "c"))
	assert.Equal(t, []list.Change{list.Inserted(2)}, last.Changes)
	assert.Equal(t, []string{"a", "b", "c"}, tbl.Snapshot())
	assert.Equal(t, []string{"a", "b", "c"}, storedKeys(t, db, "todo"))

	require.NoError(t, tbl.Remove(ctx, 1))
	assert.Equal(t, []list.Change{list.Removed(1)}, last.Changes)
	assert.Equal(t, []string{"a", "c"}, storedKeys(t, db, "todo"))

	assert.ErrorIs(t, tbl.Insert(ctx, 5, "z"), list.ErrOutOfRange)
	assert.ErrorIs(t, tbl.Remove(ctx, 2), list.ErrOutOfRange)
}

func TestTable_LoadIsolatesLists(t *testing.T) {
	ctx := context.Background()
	db := setupSQLite(t)
	require.NoError(t, db.Create(&[]Row{
		{List: "a", Position: 1, Key: "a2"},
		{List: "b", Position: 0, Key: "b1"},
		{List: "a", Position: 0, Key: "a1"},
	}).Error)

	tbl := NewTable(db, "a", nil)
	var updates []list.Update[string]
	defer tbl.Subscribe(func(u list.Update[string]) { updates = append(updates, u) }).Unsubscribe()

	require.NoError(t, tbl.Load(ctx))
	assert.Equal(t, []string{"a1", "a2"}, tbl.Snapshot())
	assert.True(t, updates[len(updates)-1].IsReload())
	assert.Equal(t, "a", tbl.Name())

	other := NewTable(db, "b", nil)
	require.NoError(t, other.Load(ctx))
	require.NoError(t, other.Insert(ctx, 0, "b0"))
	assert.Equal(t, []string{"a1", "a2"}, storedKeys(t, db, "a"))
}

func TestTable_Check(t *testing.T) {
	db := setupSQLite(t)
	missing, err := NewTable(db, "todo", nil).Check()
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestTable_FailedInsertPublishesNothing(t *testing.T) {
	ctx := context.Background()
	db, mock := setupMockDB(t)
	tbl := NewTable(db, "todo", nil)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `list_rows`").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	var updates int
	defer tbl.Subscribe(func(list.Update[string]) { updates++ }).Unsubscribe()

	err := tbl.Insert(ctx, 0, "a")
	assert.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, tbl.Snapshot())
	assert.Equal(t, 1, updates, "only the initial snapshot")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTable_LoadError(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("SELECT \\* FROM `list_rows`").WillReturnError(assert.AnError)

	err := NewTable(db, "todo", nil).Load(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}
