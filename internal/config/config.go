package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type StorageBackend string

const (
	StorageFile   StorageBackend = "file"
	StorageRedis  StorageBackend = "redis"
	StorageSQLite StorageBackend = "sqlite"
)

type Config struct {
	AppEnv    string
	LogLevel  string
	LogFormat string

	CatalogURL       string
	CatalogTimeout   time.Duration
	ProductCacheSize int

	Storage    StorageBackend
	CartFile   string
	RedisAddr  string
	SQLitePath string

	MySQLDSN    string
	HTTPPort    string
	GRPCPort    string
	CORSOrigins []string
}

// Load reads the configuration from the environment, after applying a .env
// file from the working directory if one exists.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppEnv:    getEnv("APP_ENV", "dev"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		CatalogURL:       getEnv("CATALOG_API_URL", "http://localhost:3333"),
		CatalogTimeout:   getEnvDuration("CATALOG_TIMEOUT", 5*time.Second),
		ProductCacheSize: getEnvInt("PRODUCT_CACHE_SIZE", 128),

		Storage:    StorageBackend(strings.ToLower(getEnv("CART_STORAGE", string(StorageFile)))),
		CartFile:   getEnv("CART_FILE", "./data/local_storage.json"),
		RedisAddr:  getEnv("REDIS_ADDR", "localhost:6379"),
		SQLitePath: getEnv("SQLITE_PATH", "./data/cart.db"),

		MySQLDSN:    getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/rocketshoes?parseTime=true"),
		HTTPPort:    getEnv("HTTP_PORT", ":3333"),
		GRPCPort:    getEnv("GRPC_PORT", ":50051"),
		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"*"}),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
