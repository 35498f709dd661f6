// Package db provides the embedded database schema and the default catalog.
package db

import _ "embed"

// Schema contains the DDL statements for all application tables.
//
//go:embed migrations/001_schema.sql
var Schema string

// Catalog is the default product and static page catalog in YAML.
//
//go:embed seed/catalog.yaml
var Catalog []byte
