package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// envGuard saves the given variables, clears them, and restores them when
// the test ends.
func envGuard(t *testing.T, keys ...string) func() {
	t.Helper()
	original := make(map[string]string, len(keys))
	for _, k := range keys {
		original[k] = os.Getenv(k)
	}
	t.Cleanup(func() {
		for k, v := range original {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	})
	return func() {
		for _, k := range keys {
			os.Unsetenv(k)
		}
	}
}

var loadKeys = []string{
	"GESTION_APP_NAME",
	"GESTION_APP_ENV",
	"GESTION_APP_PORT",
	"GESTION_DATABASE_HOST",
	"GESTION_DATABASE_PORT",
	"GESTION_DATABASE_USER",
	"GESTION_DATABASE_PASSWORD",
	"GESTION_DATABASE_DBNAME",
	"GESTION_DATABASE_SSLMODE",
	"GESTION_DATABASE_MAX_OPEN_CONNS",
	"GESTION_DATABASE_MAX_IDLE_CONNS",
	"GESTION_DATABASE_SLOW_QUERY_THRESHOLD",
	"GESTION_DATABASE_LOG_SQL_VALUES",
	"GESTION_FISCAL_STAMP_AMOUNT",
	"GESTION_FISCAL_FODEC_RATE",
	"GESTION_FISCAL_DEFAULT_WITHHOLDING_RATE",
	"GESTION_HR_CNSS_EMPLOYEE_RATE",
	"GESTION_STORAGE_DRIVER",
	"GESTION_STORAGE_ENDPOINT",
	"GESTION_PRINTING_DEFAULT_PAPER_SIZE",
	"GESTION_COMPANY_NAME",
	"GESTION_COMPANY_MATRICULE_FISCAL",
	"GESTION_TELEMETRY_SAMPLING_RATIO",
	"GESTION_TELEMETRY_DB_LOG_FULL_SQL",
	"GESTION_HTTP_CORS_ALLOW_ORIGINS",
}

func TestLoad(t *testing.T) {
	clearEnv := envGuard(t, loadKeys...)

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "gestion-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "gestion", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, 200*time.Millisecond, cfg.Database.SlowQueryThreshold)
		assert.False(t, cfg.Database.LogSQLValues)

		assert.Equal(t, "1", cfg.Fiscal.StampAmount.String())
		assert.Equal(t, "1", cfg.Fiscal.FODECRate.String())
		assert.True(t, cfg.Fiscal.DefaultWithholdingRate.IsZero())
		assert.Equal(t, 30, cfg.Fiscal.InvoiceDueDays)
		assert.Equal(t, "9.18", cfg.HR.CNSSEmployeeRate.String())
		assert.Equal(t, "16.57", cfg.HR.CNSSEmployerRate.String())

		assert.Equal(t, "A4", cfg.Printing.DefaultPaperSize)
		assert.Equal(t, 30*time.Second, cfg.Printing.Timeout)
		assert.Equal(t, "local", cfg.Storage.Driver)
		assert.Equal(t, 24*time.Hour, cfg.Redis.TTL)
		assert.Equal(t, "/metrics", cfg.Metrics.Path)
		assert.Equal(t, "gestion-backend", cfg.Telemetry.ServiceName)
		assert.Empty(t, cfg.HTTP.CORSAllowOrigins)
	})

	t.Run("loads values from environment variables with GESTION prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("GESTION_APP_NAME", "test-app")
		os.Setenv("GESTION_APP_ENV", "testing")
		os.Setenv("GESTION_APP_PORT", "9000")
		os.Setenv("GESTION_DATABASE_HOST", "testdb.local")
		os.Setenv("GESTION_DATABASE_PORT", "5433")
		os.Setenv("GESTION_DATABASE_USER", "testuser")
		os.Setenv("GESTION_DATABASE_PASSWORD", "testpass")
		os.Setenv("GESTION_DATABASE_DBNAME", "testdb")
		os.Setenv("GESTION_DATABASE_SSLMODE", "require")
		os.Setenv("GESTION_DATABASE_MAX_OPEN_CONNS", "50")
		os.Setenv("GESTION_DATABASE_MAX_IDLE_CONNS", "10")
		os.Setenv("GESTION_DATABASE_SLOW_QUERY_THRESHOLD", "1s")
		os.Setenv("GESTION_DATABASE_LOG_SQL_VALUES", "true")
		os.Setenv("GESTION_FISCAL_STAMP_AMOUNT", "0.600")
		os.Setenv("GESTION_HR_CNSS_EMPLOYEE_RATE", "9.68")
		os.Setenv("GESTION_PRINTING_DEFAULT_PAPER_SIZE", "A5")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "testing", cfg.App.Env)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "testdb", cfg.Database.DBName)
		assert.Equal(t, "require", cfg.Database.SSLMode)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, time.Second, cfg.Database.SlowQueryThreshold)
		assert.True(t, cfg.Database.LogSQLValues)
		assert.Equal(t, "0.6", cfg.Fiscal.StampAmount.String())
		assert.Equal(t, "9.68", cfg.HR.CNSSEmployeeRate.String())
		assert.Equal(t, "A5", cfg.Printing.DefaultPaperSize)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("GESTION_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("GESTION_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("zero MaxOpenConns uses default", func(t *testing.T) {
		clearEnv()
		os.Setenv("GESTION_DATABASE_MAX_OPEN_CONNS", "0")

		cfg, err := Load()
		require.NoError(t, err)
		// 0 is treated as "not set", so default (25) is used
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	})

	t.Run("validates MaxIdleConns cannot be negative", func(t *testing.T) {
		clearEnv()
		os.Setenv("GESTION_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns cannot be negative")
	})

	t.Run("rejects a malformed fiscal amount", func(t *testing.T) {
		clearEnv()
		os.Setenv("GESTION_FISCAL_STAMP_AMOUNT", "one dinar")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fiscal.stamp_amount")
	})

	t.Run("rejects a withholding rate over 100", func(t *testing.T) {
		clearEnv()
		os.Setenv("GESTION_FISCAL_DEFAULT_WITHHOLDING_RATE", "150")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "default_withholding_rate")
	})

	t.Run("rejects an unknown storage driver", func(t *testing.T) {
		clearEnv()
		os.Setenv("GESTION_STORAGE_DRIVER", "ftp")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.driver")
	})

	t.Run("minio driver requires an endpoint", func(t *testing.T) {
		clearEnv()
		os.Setenv("GESTION_STORAGE_DRIVER", "minio")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.endpoint")
	})

	t.Run("rejects an unsupported paper size", func(t *testing.T) {
		clearEnv()
		os.Setenv("GESTION_PRINTING_DEFAULT_PAPER_SIZE", "Letter")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "default_paper_size")
	})

	t.Run("rejects a sampling ratio out of range", func(t *testing.T) {
		clearEnv()
		os.Setenv("GESTION_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	clearEnv := envGuard(t, loadKeys...)

	setValidProductionBase := func() {
		os.Setenv("GESTION_APP_ENV", "production")
		os.Setenv("GESTION_DATABASE_PASSWORD", "secure-password")
		os.Setenv("GESTION_DATABASE_SSLMODE", "require")
		os.Setenv("GESTION_COMPANY_NAME", "Atlas Services SARL")
		os.Setenv("GESTION_COMPANY_MATRICULE_FISCAL", "1234567A/A/M/000")
	}

	t.Run("requires database.password in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Unsetenv("GESTION_DATABASE_PASSWORD")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password must be set")
	})

	t.Run("rejects the default password in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("GESTION_DATABASE_PASSWORD", "postgres")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "non-default value")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("GESTION_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("requires the company identity in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Unsetenv("GESTION_COMPANY_MATRICULE_FISCAL")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "company.matricule_fiscal is required")
	})

	t.Run("rejects wildcard CORS origin in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("GESTION_HTTP_CORS_ALLOW_ORIGINS", "*")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cors_allow_origins")
	})

	t.Run("rejects full SQL logging in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("GESTION_TELEMETRY_DB_LOG_FULL_SQL", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db_log_full_sql")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.IsProduction())
		assert.Equal(t, "Atlas Services SARL", cfg.Company.Name)
	})
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv := envGuard(t, "GESTION_TEST_DOTENV_A", "GESTION_TEST_DOTENV_B")
	clearEnv()

	path := t.TempDir() + "/.env"
	require.NoError(t, os.WriteFile(path, []byte("GESTION_TEST_DOTENV_A=from-file\nGESTION_TEST_DOTENV_B=from-file\n"), 0o600))
	os.Setenv("GESTION_TEST_DOTENV_B", "from-env")

	loadDotEnv(path)

	assert.Equal(t, "from-file", os.Getenv("GESTION_TEST_DOTENV_A"))
	assert.Equal(t, "from-env", os.Getenv("GESTION_TEST_DOTENV_B"), "existing variables win over .env")

	// a missing file is not an error
	loadDotEnv(t.TempDir() + "/missing.env")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost")
		assert.Contains(t, dsn, "5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "pass%40word%23123")
	})
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", cfg.Addr())
}
