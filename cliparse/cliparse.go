package cliparse

import (
	"errors"
	"flag"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// Database types
const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
	DatabasePGX      = "pgx"
)

// Blob drivers for listing images
const (
	BlobFS     = "fs"
	BlobMemory = "memory"
	BlobS3     = "s3"
)

const defaultMaxUploadBytes = 10 << 20

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	SessionSalt  string
	IPHashSalt   string
	BaseURL      string
	CookieSecure bool

	// CORSOrigins may make credentialed cross-origin requests.
	// Always includes the origin of BaseURL.
	CORSOrigins []string

	BlobDriver     string
	BlobDir        string
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3PathStyle    bool
	MaxUploadBytes int64

	GeocoderURL string
}

// ParseFlags validates flags and fills defaults from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("properview", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite, postgres or pgx)")
	fs.StringVar(&cfg.BaseURL, "base-url", "", "Public base URL used in image links")
	corsOrigins := fs.String("cors-origins", "", "Comma-separated extra origins allowed by CORS")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.SessionSalt, "session-salt", "", "Agent session salt (prefer env)")
	fs.StringVar(&cfg.IPHashSalt, "ip-salt", "", "IP hash salt (prefer env)")

	// Images and geocoding
	fs.StringVar(&cfg.BlobDriver, "blob", "", "Image store driver (fs, memory or s3)")
	fs.StringVar(&cfg.BlobDir, "blob-dir", "", "Image directory for the fs driver")
	fs.StringVar(&cfg.GeocoderURL, "geocoder", "", "Nominatim-compatible geocoder base URL")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = DatabaseSQLite
		}
	}
	switch cfg.DatabaseType {
	case DatabaseSQLite, DatabasePostgres, DatabasePGX:
	default:
		return Config{}, errors.New("DATABASE_TYPE must be sqlite, postgres or pgx")
	}

	// Secrets - MUST be provided
	if cfg.SessionSalt == "" {
		cfg.SessionSalt = os.Getenv("SESSION_SALT")
	}
	if cfg.SessionSalt == "" {
		return Config{}, errors.New("SESSION_SALT required")
	}
	if cfg.IPHashSalt == "" {
		cfg.IPHashSalt = os.Getenv("IP_HASH_SALT")
	}
	if cfg.IPHashSalt == "" {
		cfg.IPHashSalt = cfg.SessionSalt
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv("PUBLIC_BASE_URL")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:" + strconv.Itoa(cfg.Port)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.CookieSecure = envBool("COOKIE_SECURE")

	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return Config{}, errors.New("PUBLIC_BASE_URL must be an absolute URL")
	}
	cfg.CORSOrigins = []string{base.Scheme + "://" + base.Host}
	if *corsOrigins == "" {
		*corsOrigins = os.Getenv("CORS_ORIGINS")
	}
	for _, o := range strings.Split(*corsOrigins, ",") {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" {
			continue
		}
		if o == "*" {
			return Config{}, errors.New("CORS_ORIGINS must list origins, not *")
		}
		cfg.CORSOrigins = append(cfg.CORSOrigins, o)
	}

	// Image storage
	if cfg.BlobDriver == "" {
		cfg.BlobDriver = os.Getenv("BLOB_DRIVER")
		if cfg.BlobDriver == "" {
			cfg.BlobDriver = BlobFS
		}
	}
	if cfg.BlobDir == "" {
		cfg.BlobDir = os.Getenv("BLOB_DIR")
		if cfg.BlobDir == "" {
			cfg.BlobDir = "data/images"
		}
	}
	cfg.S3Bucket = os.Getenv("S3_BUCKET")
	cfg.S3Region = os.Getenv("S3_REGION")
	cfg.S3Endpoint = os.Getenv("S3_ENDPOINT")
	cfg.S3PathStyle = envBool("S3_PATH_STYLE")
	switch cfg.BlobDriver {
	case BlobFS, BlobMemory:
	case BlobS3:
		if cfg.S3Bucket == "" {
			return Config{}, errors.New("S3_BUCKET required for s3 blob driver")
		}
	default:
		return Config{}, errors.New("BLOB_DRIVER must be fs, memory or s3")
	}

	cfg.MaxUploadBytes = defaultMaxUploadBytes
	if s := os.Getenv("MAX_UPLOAD_BYTES"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n <= 0 {
			return Config{}, errors.New("invalid MAX_UPLOAD_BYTES env variable")
		}
		cfg.MaxUploadBytes = n
	}

	if cfg.GeocoderURL == "" {
		cfg.GeocoderURL = os.Getenv("GEOCODER_URL")
	}

	return cfg, nil
}

func envBool(key string) bool {
	b, _ := strconv.ParseBool(os.Getenv(key))
	return b
}
