/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 4000)
  - DatabaseURL: connection string (required unless sqlite)
  - DatabaseType: sqlite, postgres or mysql (default: sqlite)
  - AllowedOrigins: CORS allow list
  - SupabaseURL, SupabaseAnonKey, SupabaseServiceRoleKey: identity provider (required)
  - SupabaseJWTSecret: enables local bearer verification (optional)

# CLI Flags

	-p, --port           Server port
	-d, --database-url   Database URL
	-t, --database-type  Database type
	--client-origin      Allowed origins
	--supabase-url       Identity provider URL
	--anon-key           Anon key
	--service-key        Service role key
	--jwt-secret         JWT secret
	--log-level          Log level
	--log-format         text or json

# Environment Variables

Flags fall back to environment variables:

	PORT                      → -p
	DATABASE_URL              → -d
	DATABASE_TYPE             → -t
	CLIENT_ORIGIN             → --client-origin
	SUPABASE_URL              → --supabase-url
	SUPABASE_ANON_KEY         → --anon-key
	SUPABASE_SERVICE_ROLE_KEY → --service-key
	SUPABASE_JWT_SECRET       → --jwt-secret
	LOG_LEVEL                 → --log-level
	LOG_FORMAT                → --log-format

CLI flags take precedence over environment variables.
*/
package cliparse
