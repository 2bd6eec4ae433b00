package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in the
// application: strings for identifiers and secrets, ints for durations and
// costs.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLSec   int    // access token time-to-live in seconds
	BcryptCost     int    // bcrypt cost for password hashing
	StorageBackend string // image storage backend: "local" or "s3"
	UploadDir      string // directory for locally stored auction images
	S3Bucket       string // S3 bucket for auction images (s3 backend only)
	S3KeyPrefix    string // key prefix for uploaded objects
	S3Region       string // AWS region for the bucket
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Storage settings are
// optional and default to local disk uploads.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLSec:   intOr("ACCESS_TOKEN_TTL_SEC", 3600),
		BcryptCost:     intOr("BCRYPT_COST", 12),
		StorageBackend: strOr("STORAGE_BACKEND", "local"),
		UploadDir:      strOr("UPLOAD_DIR", "static/uploads/auction_images"),
		S3Bucket:       os.Getenv("S3_BUCKET"),
		S3KeyPrefix:    strOr("S3_KEY_PREFIX", "auction-images"),
		S3Region:       strOr("S3_REGION", "us-east-1"),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// strOr returns the value of an environment variable or a default when the
// variable is unset or empty.
func strOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// intOr is like strOr but converts the retrieved string into an integer.
// Invalid values are treated as fatal configuration errors.
func intOr(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
