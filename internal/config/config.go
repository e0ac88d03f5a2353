package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// Config holds every environment setting the API reads at startup.
type Config struct {
	Port   string
	APIURL string

	StoreDriver   string
	MongoURI      string
	MongoDatabase string
	DatabaseURL   string

	AuthSecret string
	UploadDir  string

	KafkaBrokers    []string
	KafkaOrderTopic string

	OrderMaxLineQuantity     int
	OrderCompensateOnFailure bool
	OrderLineConcurrency     int

	CORSAllowedOrigins []string
}

// Load reads an optional .env file and then the process environment.
func Load(files ...string) (*Config, error) {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{
		Port:            getenv("APP_PORT", "8080"),
		APIURL:          strings.TrimRight(getenv("API_URL", "/api/v1"), "/"),
		StoreDriver:     strings.ToLower(getenv("STORE_DRIVER", DriverMongo)),
		MongoURI:        getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getenv("MONGO_DATABASE", "eshop"),
		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		AuthSecret:      os.Getenv("AUTH_SECRET"),
		UploadDir:       getenv("UPLOAD_DIR", "public/uploads"),
		KafkaBrokers:    splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaOrderTopic: getenv("KAFKA_ORDER_TOPIC", "orders.lifecycle"),

		CORSAllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "*")),
	}

	var err error
	if cfg.OrderMaxLineQuantity, err = getInt("ORDER_MAX_LINE_QUANTITY", 10000); err != nil {
		return nil, err
	}
	if cfg.OrderLineConcurrency, err = getInt("ORDER_LINE_CONCURRENCY", 8); err != nil {
		return nil, err
	}
	cfg.OrderCompensateOnFailure = getBool("ORDER_COMPENSATE_ON_FAILURE")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.AuthSecret == "" {
		return errors.New("AUTH_SECRET is required")
	}
	if !strings.HasPrefix(c.APIURL, "/") {
		return fmt.Errorf("API_URL must be an absolute path, got %q", c.APIURL)
	}
	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required for the mongo store")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want %s or %s)", c.StoreDriver, DriverMongo, DriverPostgres)
	}
	if c.OrderMaxLineQuantity <= 0 {
		return errors.New("ORDER_MAX_LINE_QUANTITY must be > 0")
	}
	return nil
}

// KafkaEnabled reports whether order events should be published.
func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
