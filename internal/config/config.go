package config

import (
	"log"
	"os"
	"strings"
	"time"
)

// JWTConfig defines issuer/secret pair for auth verification.
type JWTConfig struct {
	Issuer string
	Secret []byte
}

// Config holds runtime configuration shared across the application.
type Config struct {
	Addr                  string
	MongoURI              string
	MongoDatabase         string
	CovidAnswerCollection string
	Timeout               time.Duration
	Timezone              string
	ServerLog             *log.Logger
	JWTConfigs            []JWTConfig
	JWTAudience           string
	AcademicBaseURL       string
	AcademicUser          string
	AcademicPassword      string
	AcademicPeriodID      string
	AcademicTimeout       time.Duration
	QRBaseURL             string
	AllowedOrigins        []string
}

// Load reads environment variables and returns a fully populated Config.
func Load() Config {
	timeout := 10 * time.Second
	if v := os.Getenv("MONGO_CONNECT_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			timeout = parsed
		}
	}

	academicTimeout := 10 * time.Second
	if raw := strings.TrimSpace(os.Getenv("ACADEMIC_TIMEOUT")); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			academicTimeout = parsed
		}
	}

	academicBaseURL := strings.TrimSpace(os.Getenv("ACADEMIC_URL"))
	if academicBaseURL == "" {
		log.Fatal("ACADEMIC_URL must be configured")
	}
	academicUser := strings.TrimSpace(os.Getenv("ACADEMIC_USER"))
	academicPassword := strings.TrimSpace(os.Getenv("ACADEMIC_PASSWORD"))
	if academicUser == "" || academicPassword == "" {
		log.Fatal("ACADEMIC_USER and ACADEMIC_PASSWORD must be configured")
	}

	var jwtConfigs []JWTConfig
	if secret := strings.TrimSpace(os.Getenv("AUTH_JWT_SECRET")); secret != "" {
		jwtConfigs = append(jwtConfigs, JWTConfig{
			Issuer: envOrDefault("AUTH_JWT_ISSUER", "ummobile-auth"),
			Secret: []byte(secret),
		})
	}
	if secret := strings.TrimSpace(os.Getenv("AUTH_LEGACY_JWT_SECRET")); secret != "" {
		jwtConfigs = append(jwtConfigs, JWTConfig{
			Issuer: envOrDefault("AUTH_LEGACY_JWT_ISSUER", "ummobile-identity"),
			Secret: []byte(secret),
		})
	}
	if len(jwtConfigs) == 0 {
		log.Fatal("JWT secrets not configured. Set AUTH_JWT_SECRET or AUTH_LEGACY_JWT_SECRET.")
	}

	cfg := Config{
		Addr:                  envOrDefault("HTTP_ADDR", ":8080"),
		MongoURI:              envOrDefault("MONGO_URI", "mongodb://mongo:27017"),
		MongoDatabase:         envOrDefault("MONGO_DB", "ummobile"),
		CovidAnswerCollection: envOrDefault("COVID_ANSWER_COLLECTION", "covid_questionnaires"),
		Timeout:               timeout,
		Timezone:              envOrDefault("TIMEZONE", "America/Mexico_City"),
		ServerLog:             log.New(os.Stdout, "[ummobile-api] ", log.LstdFlags|log.Lshortfile),
		JWTConfigs:            jwtConfigs,
		JWTAudience:           strings.TrimSpace(os.Getenv("AUTH_JWT_AUDIENCE")),
		AcademicBaseURL:       academicBaseURL,
		AcademicUser:          academicUser,
		AcademicPassword:      academicPassword,
		AcademicPeriodID:      envOrDefault("ACADEMIC_PERIOD_ID", "2122A"),
		AcademicTimeout:       academicTimeout,
		QRBaseURL:             strings.TrimSpace(os.Getenv("QR_BASE_URL")),
		AllowedOrigins:        parseList("API_ALLOWED_ORIGINS", []string{"*"}),
	}

	cfg.ServerLog.Printf("loaded config: academicBaseURL=%q periodID=%q timezone=%q", academicBaseURL, cfg.AcademicPeriodID, cfg.Timezone)

	return cfg
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}

	if len(values) == 0 {
		return fallback
	}
	return values
}
