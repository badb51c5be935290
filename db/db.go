// Package db embeds the SQL migrations for the tenant registry schema.
//
// Only the servers table is versioned here. Users, audit and snapshot tables
// are created per tenant at runtime because their names derive from the
// tenant slug.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
