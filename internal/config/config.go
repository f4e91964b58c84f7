package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the bot
type Config struct {
	Host string
	Port string

	// GameAPIURL is the base URL of the game's web API.
	GameAPIURL string
	// RelayURL is the base URL of the transaction relay service.
	RelayURL string

	ReceiptPollInterval time.Duration
	RequestTimeout      time.Duration

	// UserAddresses are the accounts the bot operates on behalf of.
	UserAddresses []string
	// UsersFile is an optional YAML file seeding per-user settings.
	UsersFile string

	// AlertWebhookURL receives operator alerts; empty disables them.
	AlertWebhookURL string

	// Cron expressions driving the recurring tasks.
	CloseSchedule     string
	DispatchSchedule  string
	ReinforceSchedule string

	CassandraEnabled bool
	Cassandra        CassandraConfig

	RedisEnabled bool
	Redis        RedisConfig
}

// CassandraConfig holds Cassandra-specific configuration
type CassandraConfig struct {
	Hosts       []string
	Keyspace    string
	Username    string
	Password    string
	Consistency string
	Timeout     time.Duration
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	host := getEnv("HOST", "0.0.0.0")
	port := getEnv("PORT", "8080")

	gameAPIURL := getEnv("GAME_API_URL", "")
	if gameAPIURL == "" {
		return nil, fmt.Errorf("GAME_API_URL is required")
	}
	relayURL := getEnv("RELAY_URL", "")
	if relayURL == "" {
		return nil, fmt.Errorf("RELAY_URL is required")
	}

	pollSecondsStr := getEnv("RECEIPT_POLL_SECONDS", "3")
	pollSeconds, err := strconv.Atoi(pollSecondsStr)
	if err != nil {
		return nil, fmt.Errorf("invalid RECEIPT_POLL_SECONDS value: %w", err)
	}

	timeoutSecondsStr := getEnv("REQUEST_TIMEOUT_SECONDS", "15")
	timeoutSeconds, err := strconv.Atoi(timeoutSecondsStr)
	if err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT_SECONDS value: %w", err)
	}

	userAddresses := parseList(getEnv("USER_ADDRESSES", ""))
	if len(userAddresses) == 0 {
		return nil, fmt.Errorf("USER_ADDRESSES is required")
	}

	cassandraEnabledStr := getEnv("CASSANDRA_ENABLED", "true")
	cassandraEnabled, err := strconv.ParseBool(cassandraEnabledStr)
	if err != nil {
		return nil, fmt.Errorf("invalid CASSANDRA_ENABLED value: %w", err)
	}

	redisEnabledStr := getEnv("REDIS_ENABLED", "true")
	redisEnabled, err := strconv.ParseBool(redisEnabledStr)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_ENABLED value: %w", err)
	}

	// Load Cassandra configuration
	cassandraHosts := parseList(getEnv("CASSANDRA_HOSTS", "localhost:9042"))
	cassandraKeyspace := getEnv("CASSANDRA_KEYSPACE", "mining_bot")
	cassandraUsername := getEnv("CASSANDRA_USERNAME", "")
	cassandraPassword := getEnv("CASSANDRA_PASSWORD", "")
	cassandraConsistency := getEnv("CASSANDRA_CONSISTENCY", "QUORUM")
	cassandraTimeoutStr := getEnv("CASSANDRA_TIMEOUT_SECONDS", "5")
	cassandraTimeout, err := strconv.Atoi(cassandraTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid CASSANDRA_TIMEOUT_SECONDS value: %w", err)
	}

	// Load Redis configuration
	redisDBStr := getEnv("REDIS_DB", "0")
	redisDB, err := strconv.Atoi(redisDBStr)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB value: %w", err)
	}

	return &Config{
		Host:                host,
		Port:                port,
		GameAPIURL:          strings.TrimRight(gameAPIURL, "/"),
		RelayURL:            strings.TrimRight(relayURL, "/"),
		ReceiptPollInterval: time.Duration(pollSeconds) * time.Second,
		RequestTimeout:      time.Duration(timeoutSeconds) * time.Second,
		UserAddresses:       userAddresses,
		UsersFile:           getEnv("USERS_FILE", ""),
		AlertWebhookURL:     getEnv("ALERT_WEBHOOK_URL", ""),
		CloseSchedule:       getEnv("CLOSE_SCHEDULE", "@every 5m"),
		DispatchSchedule:    getEnv("DISPATCH_SCHEDULE", "@every 10m"),
		ReinforceSchedule:   getEnv("REINFORCE_SCHEDULE", "@every 2m"),
		CassandraEnabled:    cassandraEnabled,
		Cassandra: CassandraConfig{
			Hosts:       cassandraHosts,
			Keyspace:    cassandraKeyspace,
			Username:    cassandraUsername,
			Password:    cassandraPassword,
			Consistency: cassandraConsistency,
			Timeout:     time.Duration(cassandraTimeout) * time.Second,
		},
		RedisEnabled: redisEnabled,
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
	}, nil
}

// Address returns the full address (host:port)
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseList parses a comma-separated list, dropping empty entries
func parseList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		value := strings.TrimSpace(part)
		if value != "" {
			values = append(values, value)
		}
	}
	return values
}
