// Пакет config читает настройки сервисов из окружения
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит настройки BFF и консьюмера событий
type Config struct {
	HTTPAddr     string
	APIBaseURL   string
	APIToken     string
	APITimeout   time.Duration
	NotFoundPath string

	RedisAddr string
	RedisTTL  time.Duration

	NATSURL     string
	NATSSubject string

	ClickhouseDSN string
	BatchSize     int
	ConsumerPort  string
}

// Load читает .env (если файлы есть), затем переменные окружения.
// Уже заданные переменные окружения не перезаписываются значениями из .env.
// Без аргументов читается ./.env.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load env file: %w", err)
	}

	cfg := Config{
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		APIBaseURL:    getEnv("API_BASE_URL", "http://localhost:8090"),
		APIToken:      os.Getenv("API_TOKEN"),
		NotFoundPath:  getEnv("NOT_FOUND_PATH", "/404"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		NATSURL:       getEnv("NATS_URL", "nats://localhost:4222"),
		NATSSubject:   getEnv("NATS_SUBJECT", "products.events"),
		ClickhouseDSN: getEnv("CLICKHOUSE_DSN", "tcp://localhost:9000?database=default"),
		ConsumerPort:  getEnv("CONSUMER_PORT", "8081"),
	}

	var err error
	if cfg.APITimeout, err = getDuration("API_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.RedisTTL, err = getDuration("REDIS_TTL", time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.BatchSize, err = getInt("BATCH_SIZE", 10); err != nil {
		return Config{}, err
	}
	if cfg.BatchSize < 1 {
		return Config{}, fmt.Errorf("invalid BATCH_SIZE: %d", cfg.BatchSize)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
