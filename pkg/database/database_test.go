package database

import (
	"context"
	"fmt"
	"qa-board-go/internal/config"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestOpen_SQLiteMemory(t *testing.T) {
	db, err := Open(config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: "file:database_test?mode=memory&cache=shared"},
	})
	require.NoError(t, err)

	var fk int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&fk).Error)
	assert.Equal(t, 1, fk)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "board.db?_foreign_keys=on", sqliteDSN("board.db"))
	assert.Equal(t, "file:x?mode=memory&_foreign_keys=on", sqliteDSN("file:x?mode=memory"))
}

func TestOpenRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := OpenRedis(config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	defer rdb.Close()
	assert.NoError(t, rdb.Set(context.Background(), "k", "v", 0).Err())

	mr.Close()
	_, err = OpenRedis(config.RedisConfig{Addr: mr.Addr()})
	assert.Error(t, err)
}

type recordingWriter struct {
	lines []string
}

func (w *recordingWriter) Printf(template string, args ...interface{}) {
	w.lines = append(w.lines, fmt.Sprintf(template, args...))
}

func TestGormLogger_IgnoresRecordNotFound(t *testing.T) {
	rec := &recordingWriter{}
	orig := gormLogWriter
	gormLogWriter = rec
	t.Cleanup(func() { gormLogWriter = orig })

	db, err := Open(config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: "file:gorm_logger_test?mode=memory&cache=shared"},
	})
	require.NoError(t, err)

	type item struct {
		ID   uint
		Name string
	}
	require.NoError(t, db.AutoMigrate(&item{}))

	var it item
	err = db.First(&it, 42).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Empty(t, rec.lines)

	require.Error(t, db.Exec("SELECT * FROM no_such_table").Error)
	assert.NotEmpty(t, rec.lines)
}
