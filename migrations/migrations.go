// Package migrations holds the schema for the Postgres document backend.
package migrations

import _ "embed"

//go:embed create_tables.up.sql
var Up string

//go:embed create_tables.down.sql
var Down string
