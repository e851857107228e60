package logger

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGorm(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), recorded
}

func sqlFunc(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestGormLoggerOptions(t *testing.T) {
	gl, _ := newObservedGorm(gormlogger.Info,
		WithSlowThreshold(500*time.Millisecond),
		WithIgnoreRecordNotFoundError(false),
	)
	assert.Equal(t, 500*time.Millisecond, gl.slowThreshold)
	assert.False(t, gl.ignoreRecordNotFoundError)
}

func TestGormLogger_LogMode(t *testing.T) {
	gl, _ := newObservedGorm(gormlogger.Info)
	changed, ok := gl.LogMode(gormlogger.Warn).(*GormLogger)
	require.True(t, ok)

	assert.Equal(t, gormlogger.Info, gl.logLevel)
	assert.Equal(t, gormlogger.Warn, changed.logLevel)
}

func TestGormLogger_Trace(t *testing.T) {
	ctx := context.WithValue(context.Background(), RequestIDKey, "req-7")

	t.Run("logs queries at info level", func(t *testing.T) {
		gl, recorded := newObservedGorm(gormlogger.Info)
		gl.Trace(ctx, time.Now(), sqlFunc("SELECT * FROM documents", 3), nil)

		logs := recorded.FilterMessage("SQL Query").All()
		require.Len(t, logs, 1)
		assert.Equal(t, "req-7", logs[0].ContextMap()["request_id"])
		assert.EqualValues(t, 3, logs[0].ContextMap()["rows"])
	})

	t.Run("logs errors", func(t *testing.T) {
		gl, recorded := newObservedGorm(gormlogger.Warn)
		gl.Trace(ctx, time.Now(), sqlFunc("INSERT INTO documents", 0), errors.New("duplicate key"))
		assert.Len(t, recorded.FilterMessage("SQL Error").All(), 1)
	})

	t.Run("ignores record not found by default", func(t *testing.T) {
		gl, recorded := newObservedGorm(gormlogger.Warn)
		gl.Trace(ctx, time.Now(), sqlFunc("SELECT 1", 0), gormlogger.ErrRecordNotFound)
		assert.Empty(t, recorded.All())
	})

	t.Run("flags slow queries", func(t *testing.T) {
		gl, recorded := newObservedGorm(gormlogger.Warn, WithSlowThreshold(time.Millisecond))
		gl.Trace(ctx, time.Now().Add(-time.Second), sqlFunc("SELECT pg_sleep(1)", 1), nil)

		require.Len(t, recorded.All(), 1)
		assert.Equal(t, zapcore.WarnLevel, recorded.All()[0].Level)
		assert.Equal(t, "Slow SQL", recorded.All()[0].Message)
		assert.Equal(t, "select", recorded.All()[0].ContextMap()["operation"])
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		gl, recorded := newObservedGorm(gormlogger.Silent)
		gl.Trace(ctx, time.Now(), sqlFunc("SELECT 1", 1), errors.New("boom"))
		assert.Empty(t, recorded.All())
	})
}

func TestGormLogger_Messages(t *testing.T) {
	gl, recorded := newObservedGorm(gormlogger.Warn)
	gl.Info(context.Background(), "migrated %d tables", 5)
	gl.Warn(context.Background(), "slow %s", "pool")
	gl.Error(context.Background(), "failed %s", "conn")

	assert.Empty(t, recorded.FilterMessage("migrated 5 tables").All())
	assert.Len(t, recorded.FilterMessage("slow pool").All(), 1)
	assert.Len(t, recorded.FilterMessage("failed conn").All(), 1)
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("warn"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("info"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
}

func TestGormLogger_HidesBoundValues(t *testing.T) {
	type partnerRow struct {
		ID   int
		Name string
	}

	run := func(t *testing.T, opts ...GormLoggerOption) string {
		t.Helper()
		gl, recorded := newObservedGorm(gormlogger.Info, opts...)
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gl})
		require.NoError(t, err)
		require.NoError(t, db.Table("partners").AutoMigrate(&partnerRow{}))

		var rows []partnerRow
		require.NoError(t, db.Table("partners").Where("name = ?", "Société Atlas").Find(&rows).Error)

		for _, entry := range recorded.FilterMessage("SQL Query").All() {
			if sql, _ := entry.ContextMap()["sql"].(string); strings.Contains(sql, "WHERE name") {
				return sql
			}
		}
		t.Fatal("select statement was not logged")
		return ""
	}

	t.Run("placeholders by default", func(t *testing.T) {
		sql := run(t)
		assert.NotContains(t, sql, "Société Atlas")
		assert.Contains(t, sql, "?")
	})

	t.Run("values when enabled", func(t *testing.T) {
		assert.Contains(t, run(t, WithSQLValues(true)), "Société Atlas")
	})
}

func TestStatementOperation(t *testing.T) {
	assert.Equal(t, "select", statementOperation(`SELECT * FROM "documents" WHERE id = $1`))
	assert.Equal(t, "insert", statementOperation("  INSERT INTO payslips (id) VALUES ($1)"))
	assert.Equal(t, "with", statementOperation("WITH t AS (SELECT 1) SELECT * FROM t"))
	assert.Equal(t, "", statementOperation(""))
}
