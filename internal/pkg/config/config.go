package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port      int
	Host      string
	StaticDir string
	Env       string

	Debug          bool   // selects the debug timer table over the production one (§4.3)
	ArchiveDSN     string // go-sql-driver/mysql DSN for the durable write-behind sink
	AMQPURL        string // rabbitmq/amqp091-go broker URL for the archival queue
	ArchiveWorkers int
}

func Load() *Config {
	return &Config{
		Port:           getEnvInt("PORT", 8080),
		Host:           getEnv("HOST", "0.0.0.0"),
		StaticDir:      getEnv("STATIC_DIR", "./web/dist"),
		Env:            getEnv("ENV", "development"),
		Debug:          getEnvBool("DEBUG", false),
		ArchiveDSN:     getEnv("DB_DSN", ""),
		AMQPURL:        getEnv("AMQP_URL", ""),
		ArchiveWorkers: getEnvInt("ARCHIVE_WORKERS", 2),
	}
}

func (c *Config) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}
