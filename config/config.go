package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/SundayYogurt/visa_service/pkg/logger"
	"github.com/joho/godotenv"
)

type Config struct {
	Env           string
	ServerPort    string
	BaseURL       string
	DatabaseDSN   string
	AccessSecret  string
	TokenCacheTTL time.Duration

	KafkaBroker   string
	KafkaTopic    string
	KafkaGroupID  string
	KafkaUsername string
	KafkaPassword string

	CloudinaryUrl string

	LogLevel  string
	LogPretty bool

	SMTPHost      string
	SMTPPort      string
	SMTPUser      string
	SMTPPassword  string
	MailFrom      string
	MailFromName  string
	PortalBaseURL string
}

func LoadConfig() Config {
	if os.Getenv("ENV") != "prod" {
		if err := godotenv.Overload(); err != nil {
			logger.Warn().Err(err).Msg(".env not loaded")
		}
	}

	return Config{
		Env:           getEnv("ENV", "dev"),
		ServerPort:    getEnv("SERVER_PORT", ":3000"),
		BaseURL:       getEnv("BASE_URL", "http://localhost:5173"),
		DatabaseDSN:   os.Getenv("DATABASE_DSN"),
		AccessSecret:  os.Getenv("ACCESS_SECRET"),
		TokenCacheTTL: getDuration("TOKEN_CACHE_TTL", time.Second),

		KafkaBroker:   os.Getenv("KAFKA_BROKER"),
		KafkaTopic:    getEnv("KAFKA_TOPIC", "visa.notifications"),
		KafkaGroupID:  getEnv("KAFKA_GROUP_ID", "visa-notifier"),
		KafkaUsername: os.Getenv("KAFKA_USERNAME"),
		KafkaPassword: os.Getenv("KAFKA_PASSWORD"),

		CloudinaryUrl: os.Getenv("CLOUDINARY_URL"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getBool("LOG_PRETTY", os.Getenv("ENV") != "prod"),

		SMTPHost:      getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUser:      os.Getenv("SMTP_USER"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
		MailFrom:      os.Getenv("MAIL_FROM"),
		MailFromName:  getEnv("MAIL_FROM_NAME", "Visa Portal"),
		PortalBaseURL: getEnv("PORTAL_BASE_URL", "http://localhost:5173"),
	}
}

// Validate checks the values the API server cannot start without.
func (c Config) Validate() error {
	var missing []string
	if c.DatabaseDSN == "" {
		missing = append(missing, "DATABASE_DSN")
	}
	if c.AccessSecret == "" {
		missing = append(missing, "ACCESS_SECRET")
	}
	if len(missing) > 0 {
		return errors.New("missing required env: " + strings.Join(missing, ", "))
	}
	return nil
}

// ValidateNotifier checks the values the mail notifier needs.
func (c Config) ValidateNotifier() error {
	var missing []string
	if c.KafkaBroker == "" {
		missing = append(missing, "KAFKA_BROKER")
	}
	if c.SMTPUser == "" {
		missing = append(missing, "SMTP_USER")
	}
	if c.MailFrom == "" {
		missing = append(missing, "MAIL_FROM")
	}
	if len(missing) > 0 {
		return errors.New("missing required env: " + strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return fallback
}
