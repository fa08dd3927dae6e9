package cliparse

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

const (
	DefaultPort          = 4000
	DefaultClientOrigin  = "http://localhost:5173"
	DefaultDatabaseType  = "sqlite"
	DefaultSQLiteDataURL = "file:quickpoll.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string

	// Comma-separated on the command line / CLIENT_ORIGIN
	AllowedOrigins []string

	SupabaseURL            string
	SupabaseAnonKey        string
	SupabaseServiceRoleKey string
	SupabaseJWTSecret      string

	LogLevel  string
	LogFormat string
}

// ParseFlags validates flags and falls back to environment variables
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var origins string

	fs := pflag.NewFlagSet("quickpoll", pflag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVarP(&cfg.Port, "port", "p", 0, "Server port")
	fs.StringVarP(&cfg.DatabaseURL, "database-url", "d", "", "Database URL")
	fs.StringVarP(&cfg.DatabaseType, "database-type", "t", "", "Database type (sqlite, postgres or mysql)")
	fs.StringVar(&origins, "client-origin", "", "Allowed CORS origins, comma separated")

	// Identity provider (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.SupabaseURL, "supabase-url", "", "Identity provider base URL")
	fs.StringVar(&cfg.SupabaseAnonKey, "anon-key", "", "Identity provider anon key (prefer env)")
	fs.StringVar(&cfg.SupabaseServiceRoleKey, "service-key", "", "Identity provider service role key (prefer env)")
	fs.StringVar(&cfg.SupabaseJWTSecret, "jwt-secret", "", "JWT secret for local token verification (prefer env)")

	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", "", "Log format (text or json)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = DefaultDatabaseType
		}
	}
	switch cfg.DatabaseType {
	case "sqlite", "postgres", "mysql":
	default:
		return Config{}, errors.New("database type must be sqlite, postgres or mysql")
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseType != "sqlite" {
			return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
		}
		cfg.DatabaseURL = DefaultSQLiteDataURL
	}

	if origins == "" {
		origins = os.Getenv("CLIENT_ORIGIN")
	}
	if origins == "" {
		origins = DefaultClientOrigin
	}
	cfg.AllowedOrigins = SplitOrigins(origins)

	// Identity provider - URL and keys MUST be provided
	if cfg.SupabaseURL == "" {
		cfg.SupabaseURL = os.Getenv("SUPABASE_URL")
	}
	if cfg.SupabaseURL == "" {
		return Config{}, errors.New("SUPABASE_URL required")
	}
	if cfg.SupabaseAnonKey == "" {
		cfg.SupabaseAnonKey = os.Getenv("SUPABASE_ANON_KEY")
	}
	if cfg.SupabaseAnonKey == "" {
		return Config{}, errors.New("SUPABASE_ANON_KEY required")
	}
	if cfg.SupabaseServiceRoleKey == "" {
		cfg.SupabaseServiceRoleKey = os.Getenv("SUPABASE_SERVICE_ROLE_KEY")
	}
	if cfg.SupabaseServiceRoleKey == "" {
		return Config{}, errors.New("SUPABASE_SERVICE_ROLE_KEY required")
	}
	if cfg.SupabaseJWTSecret == "" {
		cfg.SupabaseJWTSecret = os.Getenv("SUPABASE_JWT_SECRET")
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = os.Getenv("LOG_LEVEL")
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = os.Getenv("LOG_FORMAT")
	}

	return cfg, nil
}

// SplitOrigins splits a comma-separated origin list, dropping blanks
func SplitOrigins(raw string) []string {
	var out []string
	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			out = append(out, origin)
		}
	}
	return out
}
