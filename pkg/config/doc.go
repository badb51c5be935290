// Package config loads ownership manager settings.
//
// # Configuration Sources
//
// Values are read, in increasing precedence, from:
//
//   - built-in defaults
//   - $OWNERSHIP_CONFIG_PATH/ownership.yml (default /etc/ownership/config)
//   - a .env file ($OWNERSHIP_DOTENV_PATH, default ./.env)
//   - the process environment
//
// Each attribute remembers which source supplied it.
//
// # Key Configuration Options
//
//   - DATABASE_URL: Postgres connection, or POSTGRES_HOST/PORT/DB/USER/PASSWORD
//   - OWNERSHIP_ENCRYPTION_KEY: base64 32-byte key for tenant credentials
//   - OWNERSHIP_REQUEST_TIMEOUT: repository call timeout in seconds
//   - OWNERSHIP_SYNC_CONCURRENCY: tenants synced in parallel by sync --all
//   - OWNERSHIP_LOG_LEVEL, OWNERSHIP_ENV: logging
package config
