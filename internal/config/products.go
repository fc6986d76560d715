package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"time"
)

const (
	defaultHTTPAddr        = ":4000"
	defaultMigrationsPath  = "migrations/products"
	defaultShutdownTimeout = 10 * time.Second

	defaultDBPort    = "5432"
	defaultDBSSLMode = "disable"

	defaultDBMaxOpenConns    = 25
	defaultDBMaxIdleConns    = 5
	defaultDBConnMaxLifetime = 5 * time.Minute
	defaultDBPingTimeout     = 5 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
)

type Products struct {
	DatabaseURL       string
	// RabbitMQURL is optional; product events are dropped when empty.
	RabbitMQURL       string
	EventsQueue       string
	FrontendURL       string
	HTTPAddr          string
	ShutdownTimeout   time.Duration
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBPingTimeout     time.Duration
	ReadHeaderTimeout time.Duration
}

func LoadProducts() (Products, error) {
	databaseURL, err := loadDatabaseURL()
	if err != nil {
		return Products{}, err
	}

	cfg := Products{
		DatabaseURL:       databaseURL,
		RabbitMQURL:       getEnv("RABBITMQ_URL", ""),
		EventsQueue:       getEnv("EVENTS_QUEUE", defaultEventsQueue),
		FrontendURL:       getEnv("FRONTEND_URL", ""),
		HTTPAddr:          getEnv("HTTP_ADDR", defaultHTTPAddr),
		ShutdownTimeout:   defaultShutdownTimeout,
		DBMaxOpenConns:    defaultDBMaxOpenConns,
		DBMaxIdleConns:    defaultDBMaxIdleConns,
		DBConnMaxLifetime: defaultDBConnMaxLifetime,
		DBPingTimeout:     defaultDBPingTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
	}

	return cfg, nil
}

type Migrate struct {
	DatabaseURL    string
	MigrationsPath string
}

func LoadMigrate() (Migrate, error) {
	databaseURL, err := loadDatabaseURL()
	if err != nil {
		return Migrate{}, err
	}

	return Migrate{
		DatabaseURL:    databaseURL,
		MigrationsPath: getEnv("MIGRATIONS_PATH", defaultMigrationsPath),
	}, nil
}

// loadDatabaseURL prefers DATABASE_URL and otherwise assembles a DSN from
// the DB_* variables.
func loadDatabaseURL() (string, error) {
	if dsn := getEnv("DATABASE_URL", ""); dsn != "" {
		return dsn, nil
	}

	host := getEnv("DB_HOST", "")
	database := getEnv("DB_DATABASE", "")
	if host == "" || database == "" {
		return "", fmt.Errorf("DATABASE_URL or DB_HOST and DB_DATABASE are required")
	}

	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(host, getEnv("DB_PORT", defaultDBPort)),
		Path:     "/" + database,
		RawQuery: url.Values{"sslmode": {getEnv("DB_SSLMODE", defaultDBSSLMode)}}.Encode(),
	}
	if user := getEnv("DB_USERNAME", ""); user != "" {
		if password, ok := os.LookupEnv("DB_PASSWORD"); ok {
			u.User = url.UserPassword(user, password)
		} else {
			u.User = url.User(user)
		}
	}

	return u.String(), nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
