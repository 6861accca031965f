// Package db carries the SQL migrations compiled into the binary.
package db

import "embed"

// MigrationsDir is the directory inside Migrations holding goose files.
const MigrationsDir = "migrations"

//go:embed migrations/*.sql
var Migrations embed.FS
