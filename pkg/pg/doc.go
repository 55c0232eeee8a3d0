// Package pg provides PostgreSQL connectivity for the schema-per-tenant
// store: pgxpool construction with retry, goose migrations for both the
// shared partition and individual tenant schemas, and helpers for
// classifying common Postgres errors.
package pg
