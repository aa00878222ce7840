package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ErrMissingConfig is returned by Validate when required variables are unset.
var ErrMissingConfig = errors.New("missing required configuration")

type Config struct {
	DatabaseURL  string
	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string
	SslCertPath  string
	AIAPIKey     string
	EmbedModel   string
	EmbedDim     int
	GenModel     string
	Port         string
	JWTSecret    string
	CORSOrigins  []string
	AdminEmails  []string

	DefaultTopK   int
	IngestWorkers int

	// Pipeline overrides; zero keeps the tuning file or built-in value.
	ChunkSize        int
	ChunkOverlap     int
	EmbedBatchSize   int
	EmbedConcurrency int
	IngestTuningFile string

	PaperRecSearchURL string
}

// LoadConfig loads the environment variables and return config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		AwsAccessKey:      getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey:      getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:         getEnv("AWS_REGION", "us-east-2"),
		BucketName:        getEnv("BUCKET_NAME", ""),
		SslCertPath:       getEnv("SSL_CERT_PATH", ""),
		AIAPIKey:          getEnv("GEMINI_API_KEY", ""),
		EmbedModel:        getEnv("EMBED_MODEL", "text-embedding-004"),
		EmbedDim:          getEnvInt("EMBED_DIM", 768),
		GenModel:          getEnv("GEN_MODEL", "gemini-2.0-flash-001"),
		Port:              getEnv("PORT", "8080"),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		CORSOrigins:       getEnvList("CORS_ORIGINS", []string{"*"}),
		AdminEmails:       getEnvList("ADMIN_EMAILS", nil),
		DefaultTopK:       getEnvInt("DEFAULT_TOP_K", 5),
		IngestWorkers:     getEnvInt("INGEST_WORKERS", 2),
		ChunkSize:         getEnvInt("CHUNK_SIZE", 0),
		ChunkOverlap:      getEnvInt("CHUNK_OVERLAP", 0),
		EmbedBatchSize:    getEnvInt("EMBED_BATCH_SIZE", 0),
		EmbedConcurrency:  getEnvInt("EMBED_CONCURRENCY", 0),
		IngestTuningFile:  getEnv("INGEST_TUNING_FILE", ""),
		PaperRecSearchURL: strings.TrimRight(getEnv("PAPERREC_SEARCH_URL", ""), "/"),
	}

	return cfg
}

// Validate names every required variable that is unset.
func (c *Config) Validate() error {
	var missing []string
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.AIAPIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}
	return nil
}

// ObjectStorageEnabled reports whether uploads can be archived to S3.
func (c *Config) ObjectStorageEnabled() bool {
	return c.BucketName != "" && c.AwsAccessKey != "" && c.AwsSecretKey != ""
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

// getEnvList splits a comma separated variable, dropping blanks.
func getEnvList(key string, def []string) []string {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
