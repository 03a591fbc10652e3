package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateUsersTable, downCreateUsersTable)
}

func upCreateUsersTable(ctx context.Context, tx *sql.Tx) error {
	query := `
	CREATE TABLE users (
	  id UUID PRIMARY KEY,
	  email TEXT UNIQUE NOT NULL,
	  password_hash TEXT NOT NULL,
	  first_name TEXT,
	  last_name TEXT,
	  account_created TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
	  account_updated TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
	);
	`

	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}

func downCreateUsersTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE users;`)

	if err != nil {
		return err
	}

	return nil
}
