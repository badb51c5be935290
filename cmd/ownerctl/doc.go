// Command ownerctl manages object ownership across Qlik Sense Enterprise
// servers.
//
// # Quick Start
//
//	# Generate the credential encryption key
//	export OWNERSHIP_ENCRYPTION_KEY=$(ownerctl data-key generate)
//
//	# Create the registry schema
//	ownerctl db migrate
//
//	# Register a server and take a first snapshot
//	ownerctl tenant register --name prod --url https://qlik.example.com:4242 \
//	    --cert /certs/client.pem --key /certs/client_key.pem --root-cert /certs/root.pem
//	ownerctl sync --server prod
//
//	# Serve the JSON API
//	ownerctl server
//
// # Environment Variables
//
//   - DATABASE_URL: PostgreSQL connection string (or POSTGRES_HOST, POSTGRES_PORT,
//     POSTGRES_DB, POSTGRES_USER and POSTGRES_PASSWORD)
//   - OWNERSHIP_ENCRYPTION_KEY: base64 256-bit key for stored certificate paths
//   - OWNERSHIP_LOG_LEVEL: debug, info, warn or error
//   - OWNERSHIP_CONFIG_PATH: directory holding ownership.yml
//   - PORT: API server port (default: 8000)
package main
