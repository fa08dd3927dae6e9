// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect captures the per-engine differences the poll store cares about.
// Queries are written with ? placeholders and rebound per dialect.
type Dialect struct {
	Name       string
	DriverName string

	// Returning is true when INSERT ... RETURNING id is supported; otherwise
	// the store falls back to sql.Result.LastInsertId.
	Returning bool

	schema string
}

var (
	Postgres = Dialect{Name: "postgres", DriverName: "postgres", Returning: true, schema: postgresSchema}
	SQLite   = Dialect{Name: "sqlite", DriverName: "sqlite", schema: sqliteSchema}
	MySQL    = Dialect{Name: "mysql", DriverName: "mysql", schema: mysqlSchema}
)

// DialectFor maps a configured database type to its dialect
func DialectFor(databaseType string) (Dialect, error) {
	switch databaseType {
	case "postgres", "postgresql":
		return Postgres, nil
	case "sqlite", "sqlite3", "":
		return SQLite, nil
	case "mysql":
		return MySQL, nil
	}
	return Dialect{}, fmt.Errorf("unsupported database type %q", databaseType)
}

// Rebind rewrites ? placeholders into the dialect's bind syntax.
func (d Dialect) Rebind(query string) string {
	if d.Name != Postgres.Name {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
