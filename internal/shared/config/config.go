package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	DatabaseURL     string

	LocalStoreDir string
	MaxUploadMB   int64

	JWTSecret       string
	JWTAlgorithm    string
	TokenTTL        time.Duration
	AllowedUsers    []string
	EnforcePassword bool

	AnalyzerProvider string
	CrewServiceURL   string
	CrewTimeout      time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		DatabaseURL:     dbURL,

		LocalStoreDir: getEnv("LOCAL_STORE_DIR", "./data/uploads"),
		MaxUploadMB:   getEnvInt64("MAX_UPLOAD_MB", 25),

		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTAlgorithm:    normalizeAlgorithm(getEnv("JWT_ALGORITHM", "HS256")),
		TokenTTL:        time.Duration(getEnvInt64("TOKEN_TTL_MINUTES", 60)) * time.Minute,
		AllowedUsers:    loadAllowList(),
		EnforcePassword: getEnvBool("AUTH_ENFORCE_PASSWORD", true),

		AnalyzerProvider: normalizeProvider(getEnv("ANALYZER_PROVIDER", "placeholder")),
		CrewServiceURL:   getEnv("CREW_SERVICE_URL", ""),
		CrewTimeout:      time.Duration(getEnvInt64("CREW_TIMEOUT_SECONDS", 600)) * time.Second,
	}
}

// loadAllowList merges ALLOWED_USERNAMES (csv) with the optional YAML file
// named by ALLOWLIST_FILE. The file holds a top-level "allowed" sequence.
func loadAllowList() []string {
	users := splitAndTrim(os.Getenv("ALLOWED_USERNAMES"))

	path := strings.TrimSpace(os.Getenv("ALLOWLIST_FILE"))
	if path == "" {
		return users
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Printf("allowlist file %s unreadable: %v", path, err)
		return users
	}
	var doc struct {
		Allowed []string `yaml:"allowed"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		log.Printf("allowlist file %s invalid: %v", path, err)
		return users
	}
	for _, u := range doc.Allowed {
		if trimmed := strings.TrimSpace(u); trimmed != "" {
			users = append(users, trimmed)
		}
	}
	return users
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func getEnvBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return parsed
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeAlgorithm(raw string) string {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "HS384":
		return "HS384"
	case "HS512":
		return "HS512"
	default:
		return "HS256"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "crew":
		return "crew"
	case "local":
		return "local"
	default:
		return "placeholder"
	}
}
