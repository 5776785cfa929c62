package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var (
	Port    string
	LogMode string

	GeminiAPIKey      string
	GeminiModel       string
	GenerationTimeout time.Duration

	SessionIdleTimeout time.Duration

	StoreDriver    string
	MongoURI       string
	DBName         string
	RedisAddr      string
	MaxRecordBytes int

	AWSRegion     string
	AWSBucketName string

	JWTSecret string

	SendGridAPIKey string
	ShareFromEmail string
	TailorEmail    string

	CascadeRollback bool
)

// LoadConfig loads environment variables from .env file
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using default values or system environment variables")
	}

	Port = getEnv("PORT", "8080")
	LogMode = getEnv("LOG_MODE", "development")

	GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	GeminiModel = getEnv("GEMINI_MODEL", "gemini-2.5-flash-image")
	GenerationTimeout = getDuration("GENERATION_TIMEOUT", 5*time.Minute)

	SessionIdleTimeout = getDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute)

	StoreDriver = strings.ToLower(getEnv("STORE_DRIVER", "mongo"))
	MongoURI = getEnv("MONGO_URI", "mongodb://localhost:27017/")
	DBName = getEnv("DB_NAME", "fitly")
	RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	MaxRecordBytes = getInt("MAX_RECORD_BYTES", 15<<20) // stays under Mongo's 16MB document cap

	AWSRegion = getEnv("AWS_REGION", "ap-south-1")
	AWSBucketName = os.Getenv("AWS_BUCKET_NAME")

	JWTSecret = os.Getenv("JWT_SECRET")

	SendGridAPIKey = os.Getenv("SENDGRID_API_KEY")
	ShareFromEmail = getEnv("SHARE_FROM_EMAIL", "no-reply@tryonfusion.com")
	TailorEmail = os.Getenv("TAILOR_EMAIL")

	CascadeRollback = getBool("CASCADE_ROLLBACK", false)
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("Invalid %s=%q, using default %d", key, v, def)
		return def
	}
	return n
}

func getBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("Invalid %s=%q, using default %t", key, v, def)
		return def
	}
	return b
}

func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("Invalid %s=%q, using default %s", key, v, def)
		return def
	}
	return d
}
