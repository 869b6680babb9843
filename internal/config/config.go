package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the quiz service.
type Config struct {
	AppName             string
	AppEnv              string
	AppPort             string
	DatabaseURL         string
	RedisURL            string
	NATSURL             string
	EventSubject        string
	CatalogPath         string
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string
	SMTPHost            string
	SMTPPort            int
	SMTPUsername        string
	SMTPPassword        string
	EmailFrom           string
	UploadTimeout       time.Duration
	NotifyTimeout       time.Duration
	SubmissionsCacheTTL time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and an optional
// .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("QUIZ")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Questionare Server")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "5000")
	v.SetDefault("catalog.path", "questions.json")
	v.SetDefault("cloudinary.folder", "quiz/results")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("upload.timeout", "30s")
	v.SetDefault("notify.timeout", "15s")
	v.SetDefault("submissions.cache_ttl", "1m")
	v.SetDefault("event.subject", "quiz.submission.completed")

	uploadTimeout, err := time.ParseDuration(v.GetString("upload.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid upload timeout: %w", err)
	}

	notifyTimeout, err := time.ParseDuration(v.GetString("notify.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid notify timeout: %w", err)
	}

	cacheTTL, err := time.ParseDuration(v.GetString("submissions.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid submissions cache ttl: %w", err)
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		NATSURL:             v.GetString("nats.url"),
		EventSubject:        v.GetString("event.subject"),
		CatalogPath:         v.GetString("catalog.path"),
		CloudinaryCloudName: v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:    v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret: v.GetString("cloudinary.api_secret"),
		CloudinaryFolder:    v.GetString("cloudinary.folder"),
		SMTPHost:            v.GetString("smtp.host"),
		SMTPPort:            v.GetInt("smtp.port"),
		SMTPUsername:        v.GetString("smtp.username"),
		SMTPPassword:        v.GetString("smtp.password"),
		EmailFrom:           v.GetString("email.from"),
		UploadTimeout:       uploadTimeout,
		NotifyTimeout:       notifyTimeout,
		SubmissionsCacheTTL: cacheTTL,
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url must be provided")
	}

	return cfg, nil
}
