package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

type DB struct {
	Driver     string
	Path       string
	DbHOST     string
	DbPORT     string
	DbUSER     string
	DbPASSWORD string
	DbNAME     string
	DbSSLMODE  string
}

type MinIO struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	BucketName string
	UseSSL     bool
	Region     string
}

// Enabled reports whether image uploads should be wired.
func (m MinIO) Enabled() bool {
	return m.Endpoint != ""
}

type Admin struct {
	Username string
	Password string
	Nickname string
}

type Config struct {
	ServerPort        int
	DB                DB
	MinIO             MinIO
	Admin             Admin
	SessionSecretKey  string
	SessionDuration   time.Duration
	SessionCookieName string
	PasswordCost      int
	MaxUploadSize     int64
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil || duration <= 0 {
		return fallback
	}
	return duration
}

func LoadDB() DB {
	return DB{
		Driver:     getEnv("DB_DRIVER", DriverSQLite),
		Path:       getEnv("DB_PATH", "tastemate.db"),
		DbHOST:     getEnv("DB_HOST", "localhost"),
		DbPORT:     getEnv("DB_PORT", "5432"),
		DbUSER:     getEnv("DB_USER", "postgres"),
		DbPASSWORD: getEnv("DB_PASSWORD", "password"),
		DbNAME:     getEnv("DB_NAME", "tastemate"),
		DbSSLMODE:  getEnv("DB_SSLMODE", "disable"),
	}
}

func LoadMinIO() MinIO {
	return MinIO{
		Endpoint:   getEnv("MINIO_ENDPOINT", ""),
		AccessKey:  getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		SecretKey:  getEnv("MINIO_SECRET_KEY", "minioadmin"),
		BucketName: getEnv("MINIO_BUCKET_NAME", "post-images"),
		UseSSL:     getEnvBool("MINIO_USE_SSL", false),
		Region:     getEnv("MINIO_REGION", "us-east-1"),
	}
}

func LoadAdmin() Admin {
	return Admin{
		Username: getEnv("ADMIN_USERNAME", ""),
		Password: getEnv("ADMIN_PASSWORD", ""),
		Nickname: getEnv("ADMIN_NICKNAME", "admin"),
	}
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	return &Config{
		ServerPort:        getEnvAsInt("SERVER_PORT", 8080),
		DB:                LoadDB(),
		MinIO:             LoadMinIO(),
		Admin:             LoadAdmin(),
		SessionSecretKey:  getEnv("SESSION_SECRET_KEY", ""),
		SessionDuration:   parseDuration(getEnv("SESSION_DURATION", "2h"), 2*time.Hour),
		SessionCookieName: getEnv("SESSION_COOKIE_NAME", "session"),
		PasswordCost:      parsePasswordCost(getEnvAsInt("PASSWORD_COST", bcrypt.DefaultCost)),
		MaxUploadSize:     parseMaxUploadSize(getEnv("MAX_UPLOAD_SIZE", "5242880")),
	}
}

func parsePasswordCost(cost int) int {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return cost
}

func parseMaxUploadSize(value string) int64 {
	size, err := strconv.ParseInt(value, 10, 64)
	if err != nil || size <= 0 {
		return 5 * 1024 * 1024
	}
	return size
}
