package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAppName       = "tailorshop"
	defaultAppPort       = "8080"
	defaultAppEnv        = "local"
	defaultMongoURI      = "mongodb://localhost:27017"
	defaultMongoDB       = "sachin_tailors"
	defaultSessionDriver = "redis"
	defaultSessionTTL    = "2h"
	defaultRedisAddr     = "localhost:6379"
	defaultJWTSecret     = "change-me-in-production"
	defaultLoginLimit    = "20"
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

// Load reads config/app.json, then .env, then the process environment.
// Later sources win.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"APP_NAME":         defaultAppName,
		"APP_PORT":         defaultAppPort,
		"APP_ENV":          defaultAppEnv,
		"MONGO_URI":        defaultMongoURI,
		"MONGO_DB":         defaultMongoDB,
		"SESSION_DRIVER":   defaultSessionDriver,
		"SESSION_TTL":      defaultSessionTTL,
		"REDIS_ADDR":       defaultRedisAddr,
		"REDIS_PASSWORD":   "",
		"JWT_SECRET":       defaultJWTSecret,
		"GRPC_PORT":        "",
		"LOGIN_RATE_LIMIT": defaultLoginLimit,
	}
}

func AppName() string { _ = Load(); return get("APP_NAME", defaultAppName) }
func AppPort() string { _ = Load(); return get("APP_PORT", defaultAppPort) }
func AppEnv() string  { _ = Load(); return get("APP_ENV", defaultAppEnv) }

// IsProduction reports whether APP_ENV names a production deployment.
func IsProduction() bool {
	switch strings.ToLower(AppEnv()) {
	case "production", "prod":
		return true
	}
	return false
}

func MongoURI() string { _ = Load(); return get("MONGO_URI", defaultMongoURI) }
func MongoDB() string  { _ = Load(); return get("MONGO_DB", defaultMongoDB) }

// SessionDriver returns "redis" or "memory". Unknown values fall back to redis.
func SessionDriver() string {
	_ = Load()

	driver := strings.ToLower(get("SESSION_DRIVER", defaultSessionDriver))
	switch driver {
	case "redis", "memory":
		return driver
	default:
		return defaultSessionDriver
	}
}

func SessionTTL() time.Duration {
	_ = Load()
	d, err := time.ParseDuration(get("SESSION_TTL", defaultSessionTTL))
	if err != nil || d <= 0 {
		return 2 * time.Hour
	}
	return d
}

func RedisAddr() string     { _ = Load(); return get("REDIS_ADDR", defaultRedisAddr) }
func RedisPassword() string { _ = Load(); return get("REDIS_PASSWORD", "") }
func JWTSecret() string     { _ = Load(); return get("JWT_SECRET", defaultJWTSecret) }

// GRPCPort is empty when the gRPC health server is disabled.
func GRPCPort() string { _ = Load(); return get("GRPC_PORT", "") }

// LoginRateLimit is the number of login attempts allowed per IP per minute.
func LoginRateLimit() int {
	_ = Load()
	n, err := strconv.Atoi(get("LOGIN_RATE_LIMIT", defaultLoginLimit))
	if err != nil || n <= 0 {
		return 20
	}
	return n
}

func AdminUsername() string { _ = Load(); return get("ADMIN_USERNAME", "") }
func AdminPassword() string { _ = Load(); return get("ADMIN_PASSWORD", "") }

// LogMongoCollection names the collection that receives log records.
// Empty disables the MongoDB log sink.
func LogMongoCollection() string { _ = Load(); return get("LOG_MONGO_COLLECTION", "") }

// CORSAllowedOrigins lists origins allowed to call the JSON API.
func CORSAllowedOrigins() []string {
	_ = Load()
	var out []string
	for _, o := range strings.Split(get("CORS_ALLOWED_ORIGINS", ""), ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// TrustedProxies lists proxy addresses or CIDR ranges whose
// X-Forwarded-For header the login limiter believes.
func TrustedProxies() []string {
	_ = Load()
	var out []string
	for _, p := range strings.Split(get("TRUSTED_PROXIES", ""), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ── Invoice archive ──────────────────────────────────────────────────────────

// InvoiceArchive is "s3", "local" or "" (disabled).
func InvoiceArchive() string { _ = Load(); return strings.ToLower(get("INVOICE_ARCHIVE", "")) }

// StorageLocalRoot is the directory used by the local archive disk.
func StorageLocalRoot() string { _ = Load(); return get("STORAGE_LOCAL_ROOT", "storage") }

func StorageS3Bucket() string   { _ = Load(); return get("S3_BUCKET", "") }
func StorageS3Region() string   { _ = Load(); return get("S3_REGION", "us-east-1") }
func StorageS3Key() string      { _ = Load(); return get("S3_KEY", "") }
func StorageS3Secret() string   { _ = Load(); return get("S3_SECRET", "") }
func StorageS3Endpoint() string { _ = Load(); return get("S3_ENDPOINT", "") }

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	if err := mergeDotEnv(envPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	mergeEnviron(loaded)

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		var s string
		switch v := val.(type) {
		case string:
			s = v
		case float64:
			s = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			s = strconv.FormatBool(v)
		default:
			continue
		}

		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(s)
	}

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	env, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	for key, value := range env {
		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(value)
	}
	return nil
}

// mergeEnviron lets real environment variables override file values for any
// key the application knows about or that was set in a file.
func mergeEnviron(out map[string]string) {
	for _, key := range knownKeys(out) {
		if v, ok := os.LookupEnv(key); ok {
			out[key] = strings.TrimSpace(v)
		}
	}
}

func knownKeys(current map[string]string) []string {
	keys := []string{
		"ADMIN_USERNAME", "ADMIN_PASSWORD", "LOG_MONGO_COLLECTION", "CORS_ALLOWED_ORIGINS", "TRUSTED_PROXIES",
		"INVOICE_ARCHIVE", "STORAGE_LOCAL_ROOT", "S3_BUCKET", "S3_REGION", "S3_KEY", "S3_SECRET", "S3_ENDPOINT",
	}
	for k := range current {
		keys = append(keys, k)
	}
	return keys
}

func get(key, fallback string) string {
	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}

// Get reads any config key by name with an optional fallback.
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}
