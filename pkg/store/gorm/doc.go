// Package gorm implements the store interfaces on Postgres through GORM.
//
// Statements are written as raw SQL because most tables are named per
// tenant at runtime. Table names only ever come from the helpers in the
// store package, which validate the slug, and are always quoted.
package gorm
