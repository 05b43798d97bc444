package checks

import (
	"testing"

	"deck-sync/core/database"
	"deck-sync/feature/decks/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

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

func TestCheckServerIntegrity_NilDB(t *testing.T) {
	report, err := CheckServerIntegrity(nil, store.Models()...)
	assert.Error(t, err)
	assert.Nil(t, report)
}

func TestCheckServerIntegrity_NoTableName(t *testing.T) {
	db, _ := setupMockDB(t)
	type plain struct{ ID int }

	_, err := CheckServerIntegrity(db, plain{})
	assert.ErrorContains(t, err, "does not implement TableName")
}

func TestCheckServerIntegrity_Migrated(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(store.Models()...))

	report, err := CheckServerIntegrity(db, store.Models()...)
	require.NoError(t, err)
	assert.True(t, report.Matched, "%+v", report)
	assert.Equal(t, "sqlite", report.Driver)
	assert.Equal(t, "ok", report.Tables["notes"].Status)
	assert.Equal(t, "ok", report.Tables["sync_marks"].Status)
}

func TestCheckServerIntegrity_MissingTable(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	report, err := CheckServerIntegrity(db, store.Models()...)
	require.NoError(t, err)
	assert.False(t, report.Matched)
	assert.Len(t, report.Errors, 2)
}

func TestCheckServerIntegrity_MissingColumn(t *testing.T) {
	db, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"})
	rows.AddRow("id", "bigint", "NO", "PRI", nil, "auto_increment")
	rows.AddRow("collection", "varchar(255)", "NO", "MUL", nil, "")
	rows.AddRow("front", "text", "NO", "", nil, "")

	mock.ExpectQuery("SHOW COLUMNS FROM `notes`").WillReturnRows(rows)

	report, err := CheckServerIntegrity(db, &store.Note{})
	require.NoError(t, err)
	assert.False(t, report.Matched)

	tbl, ok := report.Tables["notes"]
	require.True(t, ok)
	assert.Equal(t, "error", tbl.Status)
	assert.Contains(t, tbl.MissingColumns, "back")
	assert.Contains(t, tbl.MissingColumns, "source")
	assert.NotContains(t, tbl.MissingColumns, "front")
}

func TestCheckServerIntegrity_TypeMismatch(t *testing.T) {
	db, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"})
	rows.AddRow("front", "varchar(10)", "NO", "", nil, "")

	mock.ExpectQuery("SHOW COLUMNS FROM `notes`").WillReturnRows(rows)

	report, err := CheckServerIntegrity(db, &store.Note{})
	require.NoError(t, err)
	assert.Contains(t, report.Tables["notes"].TypeMismatches, "front: expected text, got varchar(10)")
}

func TestCheckServerIntegrity_InspectError(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("SHOW COLUMNS FROM `notes`").WillReturnError(assert.AnError)

	report, err := CheckServerIntegrity(db, &store.Note{})
	require.NoError(t, err)
	assert.False(t, report.Matched)
	assert.Len(t, report.Errors, 1)
}

func TestParseGormTags(t *testing.T) {
	assert.Equal(t, "id", parseGormColumn("column:id;primaryKey"))
	assert.Equal(t, "front", parseGormColumn("primaryKey;column:front;type:text"))
	assert.Equal(t, "text", parseGormType("column:front;type:text"))
	assert.Equal(t, "", parseGormType("column:id"))
}
