package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/edulink/auth-service/internal/models"
)

type Config struct {
	Port string

	DatabaseURL string

	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	DefaultRole string

	GoogleClientID string

	KafkaBrokers []string
	EventsTopic  string

	ESURL         string
	ESUser        string
	ESPassword    string
	SecurityIndex string

	LogLevel string
}

func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	return &Config{
		Port: envDefault("PORT", "8080"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		AccessSecret:  []byte(os.Getenv("JWT_SECRET")),
		RefreshSecret: []byte(os.Getenv("REFRESH_TOKEN_SECRET")),
		AccessTTL:     envDurationDefault("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTTL:    envDurationDefault("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		DefaultRole: envDefault("DEFAULT_ROLE", "student"),

		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),

		KafkaBrokers: csv(os.Getenv("KAFKA_BROKERS")),
		EventsTopic:  envDefault("KAFKA_EVENTS_TOPIC", "user_events"),

		ESURL:         os.Getenv("ES_URL"),
		ESUser:        os.Getenv("ES_USER"),
		ESPassword:    os.Getenv("ES_PASSWORD"),
		SecurityIndex: envDefault("SECURITY_LOG_INDEX", "security_logs"),

		LogLevel: envDefault("LOG_LEVEL", "info"),
	}
}

// MustNonEmptyBytes aborts startup for a missing required secret. The two
// signing secrets have no safe default.
func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
}

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func InitDB(ctx context.Context, dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

func csv(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
