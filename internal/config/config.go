package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	DynamoDB DynamoDBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Mail     MailConfig
	OAuth    OAuthConfig
	Auth     AuthConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DynamoDBConfig struct {
	Endpoint  string
	Region    string
	TableName string
}

type RedisConfig struct {
	Endpoint string
	Password string
	DB       int
}

type JWTConfig struct {
	SecretKey     string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

type MailConfig struct {
	SMTPHost    string
	SMTPPort    int
	Username    string
	Password    string
	From        string
	CodeLength  int
	CodeExpiry  time.Duration
	MaxAttempts int
}

// OAuthConfig holds client credentials for the federated login providers.
type OAuthConfig struct {
	BaseURL           string
	GoogleClientID    string
	GoogleSecret      string
	KakaoClientID     string
	KakaoSecret       string
	StateCookieExpiry time.Duration
}

// AuthConfig holds the browser-facing knobs of the auth flows: cookie
// security and the redirect destinations used after login and on failure.
type AuthConfig struct {
	SecureCookies   bool
	HomeURL         string
	SignInURL       string
	PostLoginURL    string
	ProfileSetupURL string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		DynamoDB: DynamoDBConfig{
			Endpoint:  getEnv("DYNAMODB_ENDPOINT", ""),
			Region:    getEnv("DYNAMODB_REGION", "ap-northeast-2"),
			TableName: getEnv("DYNAMODB_TABLE_NAME", "OmgTable"),
		},
		Redis: RedisConfig{
			Endpoint: getEnv("REDIS_ENDPOINT", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			SecretKey:     getEnv("JWT_SECRET_KEY", ""),
			AccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 30*time.Minute),
			RefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		Mail: MailConfig{
			SMTPHost:    getEnv("MAIL_SMTP_HOST", "smtp.gmail.com"),
			SMTPPort:    getEnvAsInt("MAIL_SMTP_PORT", 587),
			Username:    getEnv("MAIL_USERNAME", ""),
			Password:    getEnv("MAIL_PASSWORD", ""),
			From:        getEnv("MAIL_FROM", "no-reply@omg.travel"),
			CodeLength:  getEnvAsInt("MAIL_CODE_LENGTH", 6),
			CodeExpiry:  getEnvAsDuration("MAIL_CODE_EXPIRY", 5*time.Minute),
			MaxAttempts: getEnvAsInt("MAIL_CODE_MAX_ATTEMPTS", 5),
		},
		OAuth: OAuthConfig{
			BaseURL:           getEnv("OAUTH_BASE_URL", "http://localhost:8080"),
			GoogleClientID:    getEnv("OAUTH_GOOGLE_CLIENT_ID", ""),
			GoogleSecret:      getEnv("OAUTH_GOOGLE_CLIENT_SECRET", ""),
			KakaoClientID:     getEnv("OAUTH_KAKAO_CLIENT_ID", ""),
			KakaoSecret:       getEnv("OAUTH_KAKAO_CLIENT_SECRET", ""),
			StateCookieExpiry: getEnvAsDuration("OAUTH_STATE_EXPIRY", 10*time.Minute),
		},
		Auth: AuthConfig{
			SecureCookies:   getEnvAsBool("AUTH_SECURE_COOKIES", false),
			HomeURL:         getEnv("AUTH_HOME_URL", "/"),
			SignInURL:       getEnv("AUTH_SIGNIN_URL", "/signin"),
			PostLoginURL:    getEnv("AUTH_POST_LOGIN_URL", "/my"),
			ProfileSetupURL: getEnv("AUTH_PROFILE_SETUP_URL", "/oauthPage"),
		},
	}

	if cfg.JWT.SecretKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is required")
	}

	if len(cfg.JWT.SecretKey) < 32 {
		return nil, fmt.Errorf("JWT_SECRET_KEY must be at least 32 bytes (256 bits)")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
