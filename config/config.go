package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

func New() map[string]string {
	environ := os.Environ()
	envAsMap := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry != "" {
			key, value := split(entry)
			envAsMap[key] = value
		}
	}
	return envAsMap
}

// assumes entry is not the empty string
func split(entry string) (key, value string) {
	parts := strings.SplitN(entry, "=", 2)
	if len(parts) < 2 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

func GetString(config map[string]string, key string, defaultValue string) string {
	if config == nil {
		return defaultValue
	}

	if val, ok := config[key]; ok && val != "" {
		return val
	}
	return defaultValue
}

func GetInt(config map[string]string, key string, defaultValue int) int {
	if config == nil {
		return defaultValue
	}

	s, ok := config[key]
	if !ok {
		return defaultValue
	}

	asInt, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}

	return asInt
}

func GetBool(config map[string]string, key string, defaultValue bool) bool {
	if config == nil {
		return defaultValue
	}

	s, ok := config[key]
	if !ok {
		return defaultValue
	}

	asBool, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return defaultValue
	}

	return asBool
}

// GetList splits a comma separated value, dropping blank entries.
func GetList(config map[string]string, key string) []string {
	raw := GetString(config, key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// databaseURL returns DATABASE_URL, or a DSN built from the SUPABASE_DB_* keys
// when DB_TYPE is supa.
func databaseURL(c map[string]string) string {
	if dsn := GetString(c, "DATABASE_URL", ""); dsn != "" {
		return dsn
	}
	if strings.ToLower(GetString(c, "DB_TYPE", "")) != "supa" {
		return ""
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=require",
		GetString(c, "SUPABASE_DB_HOST", ""),
		GetString(c, "SUPABASE_DB_USER", ""),
		GetString(c, "SUPABASE_DB_PASSWORD", ""),
		GetString(c, "SUPABASE_DB_NAME", ""),
		GetString(c, "SUPABASE_DB_PORT", "5432"),
	)
}

// Settings is the typed view of the configuration used to wire the application.
type Settings struct {
	Port      string
	APIPrefix string

	DBType      string
	DatabaseURL string
	SQLitePath  string
	ReplicaDSN  string

	SecretKey      string
	JWTSecretKey   string
	AccessTokenTTL time.Duration
	ResetTokenTTL  time.Duration
	BcryptCost     int

	Mail MailSettings

	ResetLinkBaseURL string

	RedisAddr     string
	RedisPassword string

	AcceptedOrigins []string

	S3Bucket        string
	AWSRegion       string
	S3PublicBaseURL string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	LogLevel  string
	LogPretty bool
}

// MailSettings selects and configures the outbound mail driver.
type MailSettings struct {
	Driver        string // smtp, resend or log
	Server        string
	Port          int
	Username      string
	Password      string
	DefaultSender string
	UseSSL        bool
	ResendAPIKey  string
	ResendFrom    string
}

// Load builds Settings from a config map, applying defaults.
func Load(c map[string]string) Settings {
	secret := GetString(c, "SECRET_KEY", "")
	return Settings{
		Port:      GetString(c, "PORT", "8080"),
		APIPrefix: strings.TrimSuffix(GetString(c, "API_PREFIX", "/api"), "/"),

		DBType:      strings.ToLower(GetString(c, "DB_TYPE", "postgres")),
		DatabaseURL: databaseURL(c),
		SQLitePath:  GetString(c, "SQLITE_PATH", "data/blog.db"),
		ReplicaDSN:  GetString(c, "DB_REPLICA_DSN", ""),

		SecretKey:      secret,
		JWTSecretKey:   GetString(c, "JWT_SECRET_KEY", secret),
		AccessTokenTTL: time.Duration(GetInt(c, "ACCESS_TOKEN_TTL_MINUTES", 0)) * time.Minute,
		ResetTokenTTL:  time.Duration(GetInt(c, "RESET_TOKEN_TTL_MINUTES", 60)) * time.Minute,
		BcryptCost:     GetInt(c, "BCRYPT_COST", 0),

		Mail: MailSettings{
			Driver:        strings.ToLower(GetString(c, "MAIL_DRIVER", "smtp")),
			Server:        GetString(c, "MAIL_SERVER", "sandbox.smtp.mailtrap.io"),
			Port:          GetInt(c, "MAIL_PORT", 2525),
			Username:      GetString(c, "MAIL_USERNAME", ""),
			Password:      GetString(c, "MAIL_PASSWORD", ""),
			DefaultSender: GetString(c, "MAIL_DEFAULT_SENDER", "no-reply@example.com"),
			UseSSL:        GetBool(c, "MAIL_USE_SSL", false),
			ResendAPIKey:  GetString(c, "RESEND_API_KEY", ""),
			ResendFrom:    GetString(c, "RESEND_FROM_EMAIL", ""),
		},

		ResetLinkBaseURL: GetString(c, "RESET_LINK_BASE_URL", ""),

		RedisAddr:     GetString(c, "REDIS_ADDR", ""),
		RedisPassword: GetString(c, "REDIS_PASSWORD", ""),

		AcceptedOrigins: GetList(c, "ACCEPTED_ORIGINS"),

		S3Bucket:        GetString(c, "S3_BUCKET", ""),
		AWSRegion:       GetString(c, "AWS_REGION", "us-east-1"),
		S3PublicBaseURL: GetString(c, "S3_PUBLIC_BASE_URL", ""),

		ReadTimeout:  time.Duration(GetInt(c, "READ_TIMEOUT_SECONDS", 180)) * time.Second,
		WriteTimeout: time.Duration(GetInt(c, "WRITE_TIMEOUT_SECONDS", 180)) * time.Second,
		IdleTimeout:  time.Duration(GetInt(c, "IDLE_TIMEOUT_SECONDS", 180)) * time.Second,

		LogLevel:  GetString(c, "LOG_LEVEL", "info"),
		LogPretty: GetBool(c, "LOG_PRETTY", false),
	}
}
