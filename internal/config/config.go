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

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Server
	ServerPort        string
	CORSAllowedOrigin string

	// Logging
	LogLevel slog.Level

	// Seed
	SeedSampleData bool
	AdminEmail     string
	AdminPassword  string
	AdminName      string

	// Desk
	DefaultTeacherPassword     string
	SimulatedDelay             time.Duration
	BookingEnforceAvailability bool

	// Stats report
	StatsReportSchedule string

	// Rate Limit（req/min）
	RateLimitGeneral int
	RateLimitAuth    int
}

// Load は.envと環境変数からConfigを読み込む。
// .envが存在しない場合は環境変数のみを使う。既に設定済みの環境変数は.envで上書きしない。
func Load() (*Config, error) {
	return LoadFrom(".env")
}

// LoadFrom は指定した.envファイルと環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合やスケジュールが不正な場合はエラーを返す。
func LoadFrom(envFile string) (*Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
	}

	cfg := &Config{
		ServerPort:                 getEnvString("SERVER_PORT", "8080"),
		CORSAllowedOrigin:          getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000"),
		LogLevel:                   getEnvLevel("LOG_LEVEL", slog.LevelInfo),
		SeedSampleData:             getEnvBool("SEED_SAMPLE_DATA", true),
		AdminEmail:                 os.Getenv("ADMIN_EMAIL"),
		AdminPassword:              os.Getenv("ADMIN_PASSWORD"),
		AdminName:                  getEnvString("ADMIN_NAME", "System Admin"),
		DefaultTeacherPassword:     getEnvString("DEFAULT_TEACHER_PASSWORD", "password"),
		SimulatedDelay:             getEnvDuration("SIMULATED_DELAY", 0),
		BookingEnforceAvailability: getEnvBool("BOOKING_ENFORCE_AVAILABILITY", false),
		RateLimitGeneral:           getEnvInt("RATE_LIMIT_GENERAL", 120),
		RateLimitAuth:              getEnvInt("RATE_LIMIT_AUTH", 10),
	}

	// 空文字はジョブの無効化を表すため、未設定とは区別する
	if v, ok := os.LookupEnv("STATS_REPORT_SCHEDULE"); ok {
		cfg.StatsReportSchedule = strings.TrimSpace(v)
	} else {
		cfg.StatsReportSchedule = "@every 5m"
	}

	// Required fields
	if !cfg.SeedSampleData {
		var missing []string
		if cfg.AdminEmail == "" {
			missing = append(missing, "ADMIN_EMAIL")
		}
		if cfg.AdminPassword == "" {
			missing = append(missing, "ADMIN_PASSWORD")
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("required environment variables are not set: %v", missing)
		}
	}

	if cfg.StatsReportSchedule != "" {
		if _, err := cron.ParseStandard(cfg.StatsReportSchedule); err != nil {
			return nil, fmt.Errorf("invalid STATS_REPORT_SCHEDULE %q: %w", cfg.StatsReportSchedule, err)
		}
	}

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil || i <= 0 {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return defaultVal
	}
	return d
}

func getEnvLevel(key string, defaultVal slog.Level) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		return defaultVal
	}
	return level
}
