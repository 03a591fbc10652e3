package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateImagesTable, downCreateImagesTable)
}

func upCreateImagesTable(ctx context.Context, tx *sql.Tx) error {
	query := `
	CREATE TABLE images (
	  id UUID PRIMARY KEY,
	  file_name TEXT NOT NULL,
	  url TEXT NOT NULL,
	  upload_date TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
	  user_id UUID NOT NULL UNIQUE REFERENCES users(id)
	);
	`

	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}

func downCreateImagesTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE images;`)

	if err != nil {
		return err
	}

	return nil
}
