// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles connections, dialects and schema creation.

# Dialects

Three engines are supported, selected by DATABASE_TYPE:

  - postgres (github.com/lib/pq): INSERT ... RETURNING id
  - sqlite (modernc.org/sqlite): default, used by the tests
  - mysql (github.com/go-sql-driver/mysql): requires parseTime=true in the DSN

Queries are written with ? placeholders; Dialect.Rebind converts them to
$1, $2, ... for Postgres.

# Connecting

Open pings the database with retry-go before returning:

	conn, err := db.Open(ctx, db.Postgres, cfg.DatabaseURL)

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn, dialect); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - polls: question, optional creator, creation time
  - options: option text and vote counter per poll

	polls 1──* options (ON DELETE CASCADE)

The Postgres schema also installs vote_on_option(poll_id, option_id), the
same single-statement increment the poll store issues directly.
*/
package db
