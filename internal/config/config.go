package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"dropship-pricing-service/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Tesseract-Nexus/go-shared/secrets"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis
	RedisURL string

	// NATS
	NATSURL string

	// Server
	Port           string
	Environment    string
	AllowedOrigins []string

	// Auth
	JWTSecret          string
	AuthMode           string
	AllowLegacyHeaders bool
	StaffServiceURL    string

	// Pagination
	DefaultPageSize int
	MaxPageSize     int
	MaxBulkItems    int

	// Pricing
	RuleOrdering string
	OrphanPolicy string

	// Seed values of the global settings row
	DefaultCurrencyConversion decimal.Decimal
	DefaultShippingCost       decimal.Decimal
	DefaultMargin             decimal.Decimal
}

func Load() *Config {
	return &Config{
		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 5432),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: secrets.GetDBPassword(),
		DBName:     getEnv("DB_NAME", "dropship_pricing_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),
		NATSURL:  os.Getenv("NATS_URL"),

		// Server
		Port:           getEnv("PORT", "8090"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),

		// Auth
		JWTSecret:          secrets.GetJWTSecret(),
		AuthMode:           getEnv("AUTH_MODE", "istio"),
		AllowLegacyHeaders: getEnvBool("ALLOW_LEGACY_HEADERS", false),
		StaffServiceURL:    getEnv("STAFF_SERVICE_URL", "http://staff-service:8080"),

		// Pagination
		DefaultPageSize: getEnvInt("DEFAULT_PAGE_SIZE", 20),
		MaxPageSize:     getEnvInt("MAX_PAGE_SIZE", 100),
		MaxBulkItems:    getEnvInt("MAX_BULK_ITEMS", 500),

		// Pricing
		RuleOrdering: getEnv("RULE_ORDERING", "precedence"),
		OrphanPolicy: getEnv("ORPHAN_POLICY", "drop"),

		DefaultCurrencyConversion: getEnvDecimal("DEFAULT_CURRENCY_CONVERSION", decimal.NewFromInt(1)),
		DefaultShippingCost:       getEnvDecimal("DEFAULT_SHIPPING_COST", decimal.Zero),
		DefaultMargin:             getEnvDecimal("DEFAULT_MARGIN", decimal.NewFromInt(30)),
	}
}

// IsProduction reports whether the service runs with ENVIRONMENT=production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// SettingsDefaults is the row written the first time global settings are read
func (c *Config) SettingsDefaults() models.GlobalPricingSettings {
	return models.GlobalPricingSettings{
		ID:                 models.GlobalSettingsID,
		CurrencyConversion: c.DefaultCurrencyConversion,
		ShippingCost:       c.DefaultShippingCost,
		DefaultMargin:      c.DefaultMargin,
	}
}

// NewLogger builds the JSON logrus logger shared by every component
func NewLogger(cfg *Config) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if cfg.IsProduction() {
		log.SetLevel(logrus.InfoLevel)
	} else {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

func InitDB(cfg *Config, log *logrus.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)

	var logLevel logger.LogLevel
	if cfg.IsProduction() {
		logLevel = logger.Error
	} else {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		log.WithError(err).Warn("Auto-migration failed")
	} else {
		log.Info("✓ Database schema migration completed")
	}

	return db, nil
}

// Migrate creates or updates the tables of every model
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.PricingRule{},
		&models.SellerProductOverride{},
		&models.GlobalPricingSettings{},
	)
}

// InitRedis connects to REDIS_URL. It returns nil when Redis is unreachable and the
// service then runs without caching.
func InitRedis(cfg *Config, log *logrus.Logger) *redis.Client {
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.WithError(err).Warn("Failed to parse Redis URL, falling back to localhost:6379")
		redisOpts = &redis.Options{Addr: "localhost:6379"}
	}
	redisOpts.Password = secrets.GetRedisPassword()
	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.WithError(err).Warn("Failed to connect to Redis (caching will be disabled)")
		_ = client.Close()
		return nil
	}
	log.Info("✓ Redis connected successfully")
	return client
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvList splits a comma separated variable, dropping empty entries
func getEnvList(key string) []string {
	var list []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}
