package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding config.toml
const EnvPrefix = "GESTION"

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Company   CompanyConfig
	Fiscal    FiscalConfig
	HR        HRConfig
	Printing  PrintingConfig
	Storage   StorageConfig
	Telemetry TelemetryConfig
	Metrics   MetricsConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
	AutoMigrate     bool

	// SlowQueryThreshold marks statements logged as slow, zero disables it
	SlowQueryThreshold time.Duration
	// LogSQLValues prints bound values in logged statements. Partner and
	// salary data stays out of the logs unless set.
	LogSQLValues bool
}

// RedisConfig holds Redis connection settings for the PDF cache
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// CompanyConfig is the issuer identity printed on every document
type CompanyConfig struct {
	Name            string
	LegalForm       string // SARL, SA, SUARL...
	MatriculeFiscal string
	RegistryNumber  string // registre du commerce
	Address         string
	City            string
	Phone           string
	Email           string
	Website         string
	Bank            string
	RIB             string
	LogoPath        string
}

// FiscalConfig holds the tax amounts that may change with finance laws
type FiscalConfig struct {
	StampAmount            decimal.Decimal
	FODECRate              decimal.Decimal
	DefaultWithholdingRate decimal.Decimal
	InvoiceDueDays         int
	QuoteValidityDays      int
}

// HRConfig holds the social security rates, in percent
type HRConfig struct {
	CNSSEmployeeRate decimal.Decimal
	CNSSEmployerRate decimal.Decimal
}

// PrintingConfig holds the PDF rendering settings
type PrintingConfig struct {
	ChromePath       string // local Chrome/Chromium binary, empty to let chromedp find it
	ChromeURL        string // remote DevTools websocket URL, takes precedence over ChromePath
	Timeout          time.Duration
	DefaultPaperSize string
	TemplateDir      string // overrides the embedded templates when set
	CacheTTL         time.Duration
}

// StorageConfig holds the PDF storage driver settings
type StorageConfig struct {
	Driver        string // local, s3, minio
	LocalDir      string
	PublicBaseURL string // base URL serving local files, optional
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	UsePathStyle  bool
	PresignExpiry time.Duration
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	LogsEnabled       bool    // Export logs through the OTLP bridge
	// Database tracing options
	DBTraceEnabled bool // Enable database query tracing (otelgorm)
	DBLogFullSQL   bool // Log full SQL statements (dev only)
}

// MetricsConfig holds the Prometheus endpoint configuration
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with GESTION_ prefix (e.g., GESTION_DATABASE_PASSWORD)
// 2. .env file in the working directory
// 3. config.toml
// 4. Built-in defaults
func Load() (*Config, error) {
	loadDotEnv(".env")

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
			AutoMigrate:     v.GetBool("database.auto_migrate"),

			SlowQueryThreshold: v.GetDuration("database.slow_query_threshold"),
			LogSQLValues:       v.GetBool("database.log_sql_values"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			TTL:      v.GetDuration("redis.ttl"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Company: CompanyConfig{
			Name:            v.GetString("company.name"),
			LegalForm:       v.GetString("company.legal_form"),
			MatriculeFiscal: v.GetString("company.matricule_fiscal"),
			RegistryNumber:  v.GetString("company.registry_number"),
			Address:         v.GetString("company.address"),
			City:            v.GetString("company.city"),
			Phone:           v.GetString("company.phone"),
			Email:           v.GetString("company.email"),
			Website:         v.GetString("company.website"),
			Bank:            v.GetString("company.bank"),
			RIB:             v.GetString("company.rib"),
			LogoPath:        v.GetString("company.logo_path"),
		},
		Printing: PrintingConfig{
			ChromePath:       v.GetString("printing.chrome_path"),
			ChromeURL:        v.GetString("printing.chrome_url"),
			Timeout:          v.GetDuration("printing.timeout"),
			DefaultPaperSize: v.GetString("printing.default_paper_size"),
			TemplateDir:      v.GetString("printing.template_dir"),
			CacheTTL:         v.GetDuration("printing.cache_ttl"),
		},
		Storage: StorageConfig{
			Driver:        v.GetString("storage.driver"),
			LocalDir:      v.GetString("storage.local_dir"),
			PublicBaseURL: v.GetString("storage.public_base_url"),
			Endpoint:      v.GetString("storage.endpoint"),
			Region:        v.GetString("storage.region"),
			Bucket:        v.GetString("storage.bucket"),
			AccessKey:     v.GetString("storage.access_key"),
			SecretKey:     v.GetString("storage.secret_key"),
			UseSSL:        v.GetBool("storage.use_ssl"),
			UsePathStyle:  v.GetBool("storage.use_path_style"),
			PresignExpiry: v.GetDuration("storage.presign_expiry"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("metrics.enabled"),
			Path:    v.GetString("metrics.path"),
		},
	}

	var err error
	if cfg.Fiscal, err = loadFiscal(v); err != nil {
		return nil, err
	}
	if cfg.HR, err = loadHR(v); err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadDotEnv exports the variables of a .env file that are not already set
func loadDotEnv(path string) {
	envMap, err := godotenv.Read(path)
	if err != nil {
		return
	}
	for k, val := range envMap {
		if _, exists := os.LookupEnv(k); !exists {
			_ = os.Setenv(k, val)
		}
	}
}

func loadFiscal(v *viper.Viper) (FiscalConfig, error) {
	stamp, err := getDecimal(v, "fiscal.stamp_amount")
	if err != nil {
		return FiscalConfig{}, err
	}
	fodec, err := getDecimal(v, "fiscal.fodec_rate")
	if err != nil {
		return FiscalConfig{}, err
	}
	withholding, err := getDecimal(v, "fiscal.default_withholding_rate")
	if err != nil {
		return FiscalConfig{}, err
	}
	return FiscalConfig{
		StampAmount:            stamp,
		FODECRate:              fodec,
		DefaultWithholdingRate: withholding,
		InvoiceDueDays:         v.GetInt("fiscal.invoice_due_days"),
		QuoteValidityDays:      v.GetInt("fiscal.quote_validity_days"),
	}, nil
}

func loadHR(v *viper.Viper) (HRConfig, error) {
	employee, err := getDecimal(v, "hr.cnss_employee_rate")
	if err != nil {
		return HRConfig{}, err
	}
	employer, err := getDecimal(v, "hr.cnss_employer_rate")
	if err != nil {
		return HRConfig{}, err
	}
	return HRConfig{CNSSEmployeeRate: employee, CNSSEmployerRate: employer}, nil
}

// getDecimal reads an amount given as a TOML number or string. Unset keys
// yield zero so that defaults apply.
func getDecimal(v *viper.Viper, key string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be a decimal number, got %q", key, raw)
	}
	return d, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "gestion-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "gestion"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Database.SlowQueryThreshold == 0 {
		cfg.Database.SlowQueryThreshold = 200 * time.Millisecond
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Redis.TTL == 0 {
		cfg.Redis.TTL = 24 * time.Hour
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		// PDF rendering can take several seconds on a cold browser
		cfg.HTTP.WriteTimeout = 60 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 2 << 20 // 2MB
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 100
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	// NOTE: CORS origins have no "*" fallback. An empty list means no
	// cross-origin requests are allowed until explicitly configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Accept", "X-Request-ID"}
	}
	if cfg.Fiscal.StampAmount.IsZero() {
		cfg.Fiscal.StampAmount = decimal.NewFromInt(1)
	}
	if cfg.Fiscal.FODECRate.IsZero() {
		cfg.Fiscal.FODECRate = decimal.NewFromInt(1)
	}
	if cfg.Fiscal.InvoiceDueDays == 0 {
		cfg.Fiscal.InvoiceDueDays = 30
	}
	if cfg.Fiscal.QuoteValidityDays == 0 {
		cfg.Fiscal.QuoteValidityDays = 30
	}
	if cfg.HR.CNSSEmployeeRate.IsZero() {
		cfg.HR.CNSSEmployeeRate = decimal.RequireFromString("9.18")
	}
	if cfg.HR.CNSSEmployerRate.IsZero() {
		cfg.HR.CNSSEmployerRate = decimal.RequireFromString("16.57")
	}
	if cfg.Printing.Timeout == 0 {
		cfg.Printing.Timeout = 30 * time.Second
	}
	if cfg.Printing.DefaultPaperSize == "" {
		cfg.Printing.DefaultPaperSize = "A4"
	}
	if cfg.Printing.CacheTTL == 0 {
		cfg.Printing.CacheTTL = cfg.Redis.TTL
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "local"
	}
	if cfg.Storage.LocalDir == "" {
		cfg.Storage.LocalDir = "./data/pdf"
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.Bucket == "" {
		cfg.Storage.Bucket = "documents"
	}
	if cfg.Storage.PresignExpiry == 0 {
		cfg.Storage.PresignExpiry = 15 * time.Minute
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317" // Default gRPC endpoint
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	switch c.Storage.Driver {
	case "local":
	case "s3", "minio":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required for the %s driver", c.Storage.Driver)
		}
		if c.Storage.Driver == "minio" && c.Storage.Endpoint == "" {
			return fmt.Errorf("storage.endpoint is required for the minio driver")
		}
	default:
		return fmt.Errorf("storage.driver must be local, s3 or minio, got %q", c.Storage.Driver)
	}

	switch strings.ToUpper(c.Printing.DefaultPaperSize) {
	case "A4", "A5":
	default:
		return fmt.Errorf("printing.default_paper_size must be A4 or A5, got %q", c.Printing.DefaultPaperSize)
	}

	if c.Fiscal.StampAmount.IsNegative() || c.Fiscal.FODECRate.IsNegative() {
		return fmt.Errorf("fiscal amounts cannot be negative")
	}
	hundred := decimal.NewFromInt(100)
	if c.Fiscal.DefaultWithholdingRate.IsNegative() || c.Fiscal.DefaultWithholdingRate.GreaterThan(hundred) {
		return fmt.Errorf("fiscal.default_withholding_rate must be between 0 and 100")
	}
	if c.HR.CNSSEmployeeRate.GreaterThan(hundred) || c.HR.CNSSEmployerRate.GreaterThan(hundred) {
		return fmt.Errorf("hr CNSS rates must not exceed 100")
	}

	if c.App.Env == "production" {
		if c.Database.Password == "" || c.Database.Password == "postgres" {
			return fmt.Errorf("database.password must be set to a non-default value in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.Company.Name == "" {
			return fmt.Errorf("company.name is required in production")
		}
		if c.Company.MatriculeFiscal == "" {
			return fmt.Errorf("company.matricule_fiscal is required in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production to prevent sensitive data exposure in traces")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// IsProduction reports whether the app runs in production mode
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the Redis host:port address
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
