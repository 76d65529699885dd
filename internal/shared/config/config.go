package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"resume-tailor/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Env             string
	Port            string
	CORSAllowOrigin []string
	PublicBaseURL   string
	StaticDir       string

	DatabaseURL string

	ObjectStoreType   string
	LocalStoreDir     string
	AWSRegion         string
	S3Bucket          string
	S3Prefix          string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	SSEKMSKeyID       string
	SupabaseURL       string
	SupabaseKey       string
	SupabaseBucket    string

	LLMProvider   string
	LLMModel      string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	GeminiAPIKey  string
	LLMTimeout    time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	JWTSecret          string
	SessionCookieName  string

	StripeSecretKey     string
	StripePriceID       string
	StripeWebhookSecret string

	AMQPURL      string
	AMQPExchange string

	ThumbnailsEnabled bool
	ChromePath        string

	FreeMonthlyResumes int

	LogJSON  bool
	LogDebug bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Local env files are a dev convenience; values already in the environment win.
	if files := existing(".env", "cmd/.env"); len(files) > 0 {
		_ = godotenv.Load(files...)
	}

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")
	if env == "production" && dbURL == "" {
		telemetry.Warn("config.missing", map[string]any{"key": "DATABASE_URL"})
	}

	return Config{
		Env:             env,
		Port:            getEnv("PORT", "8080"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000")),
		PublicBaseURL:   strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:3000"), "/"),
		StaticDir:       getEnv("STATIC_DIR", ""),

		DatabaseURL: dbURL,

		ObjectStoreType:   normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:     getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:         getEnv("AWS_REGION", "us-east-1"),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Prefix:          getEnv("S3_PREFIX", "resumes"),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		SSEKMSKeyID:       getEnv("SSE_KMS_KEY_ID", ""),
		SupabaseURL:       strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseKey:       getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		SupabaseBucket:    getEnv("SUPABASE_BUCKET", "resumes"),

		LLMProvider:   normalizeProvider(getEnv("LLM_PROVIDER", "openai")),
		LLMModel:      getEnv("LLM_MODEL", ""),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		LLMTimeout:    time.Duration(getEnvInt("LLM_TIMEOUT_SECONDS", 60)) * time.Second,

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		SessionCookieName:  getEnv("SESSION_COOKIE_NAME", "session_token"),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripePriceID:       getEnv("STRIPE_PRICE_ID", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "resume_events"),

		ThumbnailsEnabled: getEnvBool("THUMBNAILS_ENABLED", false),
		ChromePath:        getEnv("CHROME_PATH", ""),

		FreeMonthlyResumes: getEnvInt("FREE_MONTHLY_RESUMES", 3),

		LogJSON:  getEnvBool("LOG_JSON", true),
		LogDebug: getEnvBool("LOG_DEBUG", false),
	}
}

// IsDevLike reports whether env allows in-memory fallbacks.
func (c Config) IsDevLike() bool {
	switch c.Env {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func existing(paths ...string) []string {
	var out []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		telemetry.Warn("config.invalid_int", map[string]any{"key": key, "value": raw})
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
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
	case "test":
		return "test"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "supabase":
		return "supabase"
	default:
		return "local"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "openai":
		return "openai"
	case "gemini", "google":
		return "gemini"
	default:
		return "none"
	}
}
