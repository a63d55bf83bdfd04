package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	Database  DatabaseConfig
	App       AppConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Payroll   PayrollConfig
	Scheduler SchedulerConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32

	// MaxConnLifetime of zero keeps the pgxpool default.
	MaxConnLifetime time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Port            int
	Env             string
	Version         string
	LogLevel        string
	StorageDriver   string
	SeedDemoData    bool
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

// RedisConfig enables the distributed period lock when Addr is set
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KafkaConfig enables audit publishing when Brokers is non-empty
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

type PayrollConfig struct {
	Rules         payroll.Rules
	ReuseExisting bool
	LockTTL       time.Duration
	Holidays      []time.Time
}

type SchedulerConfig struct {
	Enabled       bool
	Interval      time.Duration
	ProcessingDay int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	p := &envParser{}
	config := &Config{}

	// Database configuration
	config.Database = DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            p.int("DB_PORT", 5432),
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", ""),
		Name:            getEnv("DB_NAME", "payroll"),
		SSLMode:         getEnv("DB_SSL_MODE", "disable"),
		MaxConns:        int32(p.int("DB_MAX_CONNS", 25)),
		MinConns:        int32(p.int("DB_MIN_CONNS", 5)),
		MaxConnLifetime: p.duration("DB_MAX_CONN_LIFETIME", 0),
	}

	// Application configuration
	config.App = AppConfig{
		Port:            p.int("APP_PORT", 8080),
		Env:             getEnv("APP_ENV", "development"),
		Version:         getEnv("APP_VERSION", "dev"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		StorageDriver:   getEnv("STORAGE_DRIVER", StorageDriverPostgres),
		SeedDemoData:    p.bool("SEED_DEMO_DATA", false),
		AllowedOrigins:  getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		ShutdownTimeout: p.duration("APP_SHUTDOWN_TIMEOUT", 15*time.Second),
	}

	config.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDRESS", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       p.int("REDIS_DB", 0),
	}

	config.Kafka = KafkaConfig{
		Brokers:    getEnvSlice("KAFKA_BROKERS", nil),
		AuditTopic: getEnv("KAFKA_AUDIT_TOPIC", "payroll.audit"),
	}

	config.Payroll = PayrollConfig{
		Rules:         loadRules(p),
		ReuseExisting: p.bool("PAYROLL_REUSE_EXISTING", false),
		LockTTL:       p.duration("PAYROLL_LOCK_TTL", 30*time.Second),
		Holidays:      p.dates("PAYROLL_HOLIDAYS"),
	}

	config.Scheduler = SchedulerConfig{
		Enabled:       p.bool("SCHEDULER_ENABLED", false),
		Interval:      p.duration("SCHEDULER_INTERVAL", time.Hour),
		ProcessingDay: p.int("PAYROLL_PROCESSING_DAY", 1),
	}

	if p.err != nil {
		return nil, p.err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadRules overlays environment overrides on payroll.DefaultRules.
func loadRules(p *envParser) payroll.Rules {
	r := payroll.DefaultRules()

	r.WorkingDays = p.int("PAYROLL_WORKING_DAYS", r.WorkingDays)
	r.HoursPerDay = p.float("PAYROLL_HOURS_PER_DAY", r.HoursPerDay)

	r.Overtime.WeekdayMultiplier = p.float("OVERTIME_WEEKDAY_MULTIPLIER", r.Overtime.WeekdayMultiplier)
	r.Overtime.WeekendMultiplier = p.float("OVERTIME_WEEKEND_MULTIPLIER", r.Overtime.WeekendMultiplier)
	r.Overtime.HolidayMultiplier = p.float("OVERTIME_HOLIDAY_MULTIPLIER", r.Overtime.HolidayMultiplier)
	r.Overtime.MaxDailyHours = p.float("OVERTIME_MAX_DAILY_HOURS", r.Overtime.MaxDailyHours)
	r.Overtime.MaxWeeklyHours = p.float("OVERTIME_MAX_WEEKLY_HOURS", r.Overtime.MaxWeeklyHours)
	r.Overtime.NightDifferentialRate = p.float("OVERTIME_NIGHT_DIFFERENTIAL", r.Overtime.NightDifferentialRate)
	r.Overtime.ConsecutiveDayBonus = p.float("OVERTIME_CONSECUTIVE_DAY_BONUS", r.Overtime.ConsecutiveDayBonus)
	r.Overtime.ConsecutiveDayThreshold = p.int("OVERTIME_CONSECUTIVE_DAY_THRESHOLD", r.Overtime.ConsecutiveDayThreshold)
	r.Overtime.ShiftMultipliers = p.bool("OVERTIME_SHIFT_MULTIPLIERS", r.Overtime.ShiftMultipliers)

	r.Shift.WeekendPremiumRate = p.float("SHIFT_WEEKEND_PREMIUM", r.Shift.WeekendPremiumRate)

	r.Attendance.LateDeductionEnabled = p.bool("LATE_DEDUCTION_ENABLED", r.Attendance.LateDeductionEnabled)
	r.Attendance.LateDeductionFraction = p.float("LATE_DEDUCTION_FRACTION", r.Attendance.LateDeductionFraction)
	r.Attendance.AbsentDeductionEnabled = p.bool("ABSENT_DEDUCTION_ENABLED", r.Attendance.AbsentDeductionEnabled)

	r.Statutory.PFEnabled = p.bool("PF_ENABLED", r.Statutory.PFEnabled)
	r.Statutory.ESIEnabled = p.bool("ESI_ENABLED", r.Statutory.ESIEnabled)
	r.Statutory.PTEnabled = p.bool("PT_ENABLED", r.Statutory.PTEnabled)
	r.Statutory.TDSEnabled = p.bool("TDS_ENABLED", r.Statutory.TDSEnabled)
	r.Statutory.PFRate = p.float("PF_RATE", r.Statutory.PFRate)
	r.Statutory.PFCeiling = p.float("PF_CEILING", r.Statutory.PFCeiling)
	r.Statutory.ESIEmployeeRate = p.float("ESI_EMPLOYEE_RATE", r.Statutory.ESIEmployeeRate)
	r.Statutory.ESIEmployerRate = p.float("ESI_EMPLOYER_RATE", r.Statutory.ESIEmployerRate)
	r.Statutory.ESICeiling = p.float("ESI_CEILING", r.Statutory.ESICeiling)
	r.Statutory.PTThreshold = p.float("PT_THRESHOLD", r.Statutory.PTThreshold)
	r.Statutory.PTDefaultRate = p.float("PT_DEFAULT_RATE", r.Statutory.PTDefaultRate)
	r.Statutory.CessRate = p.float("TDS_CESS_RATE", r.Statutory.CessRate)

	r.Salary.BasicRate = p.float("SALARY_BASIC_RATE", r.Salary.BasicRate)
	r.Salary.HRARate = p.float("SALARY_HRA_RATE", r.Salary.HRARate)
	r.Salary.DARate = p.float("SALARY_DA_RATE", r.Salary.DARate)
	r.Salary.SpecialRate = p.float("SALARY_SPECIAL_RATE", r.Salary.SpecialRate)
	r.Salary.MedicalAllowance = p.float("SALARY_MEDICAL_ALLOWANCE", r.Salary.MedicalAllowance)
	r.Salary.ConveyanceAllowance = p.float("SALARY_CONVEYANCE_ALLOWANCE", r.Salary.ConveyanceAllowance)

	return r
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.App.StorageDriver {
	case StorageDriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q", StorageDriverPostgres, StorageDriverMemory)
	}

	if len(c.Kafka.Brokers) > 0 && c.Kafka.AuditTopic == "" {
		return fmt.Errorf("KAFKA_AUDIT_TOPIC is required when KAFKA_BROKERS is set")
	}
	if c.Scheduler.ProcessingDay < 1 || c.Scheduler.ProcessingDay > 28 {
		return fmt.Errorf("PAYROLL_PROCESSING_DAY must be between 1 and 28")
	}
	if c.Scheduler.Enabled && c.Scheduler.Interval <= 0 {
		return fmt.Errorf("SCHEDULER_INTERVAL must be positive")
	}

	r := c.Payroll.Rules
	if r.WorkingDays <= 0 {
		return fmt.Errorf("PAYROLL_WORKING_DAYS must be positive")
	}
	if r.HoursPerDay <= 0 {
		return fmt.Errorf("PAYROLL_HOURS_PER_DAY must be positive")
	}
	fractions := map[string]float64{
		"LATE_DEDUCTION_FRACTION":     r.Attendance.LateDeductionFraction,
		"PF_RATE":                     r.Statutory.PFRate,
		"ESI_EMPLOYEE_RATE":           r.Statutory.ESIEmployeeRate,
		"ESI_EMPLOYER_RATE":           r.Statutory.ESIEmployerRate,
		"TDS_CESS_RATE":               r.Statutory.CessRate,
		"SALARY_BASIC_RATE":           r.Salary.BasicRate,
		"SALARY_SPECIAL_RATE":         r.Salary.SpecialRate,
		"OVERTIME_NIGHT_DIFFERENTIAL": r.Overtime.NightDifferentialRate,
		"SHIFT_WEEKEND_PREMIUM":       r.Shift.WeekendPremiumRate,
	}
	for key, v := range fractions {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be between 0 and 1", key)
		}
	}
	if r.Overtime.MaxDailyHours < 0 || r.Overtime.MaxWeeklyHours < 0 {
		return fmt.Errorf("overtime caps must not be negative")
	}

	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// PayrollRules returns the engine rules with environment overrides applied.
func (c *Config) PayrollRules() payroll.Rules {
	return c.Payroll.Rules
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (a AppConfig) SlogLevel() slog.Level {
	switch strings.ToLower(a.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string, fallback []string) []string {
	value := getEnv(env, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}

// envParser reads typed values and keeps the first parse error.
type envParser struct {
	err error
}

func (p *envParser) fail(key, value string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
}

func (p *envParser) int(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		p.fail(key, value, err)
		return fallback
	}
	return n
}

func (p *envParser) float(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		p.fail(key, value, err)
		return fallback
	}
	return f
}

func (p *envParser) bool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		p.fail(key, value, err)
		return fallback
	}
	return b
}

func (p *envParser) duration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		p.fail(key, value, err)
		return fallback
	}
	return d
}

// dates parses a comma separated list of YYYY-MM-DD dates.
func (p *envParser) dates(key string) []time.Time {
	var result []time.Time
	for _, value := range getEnvSlice(key, nil) {
		d, ok := validator.IsValidDate(value)
		if !ok {
			p.fail(key, value, errors.New("expected YYYY-MM-DD"))
			return nil
		}
		result = append(result, d)
	}
	return result
}
