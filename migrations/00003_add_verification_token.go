package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upAddVerificationToken, downAddVerificationToken)
}

func upAddVerificationToken(ctx context.Context, tx *sql.Tx) error {
	queries := []string{
		`ALTER TABLE users ADD COLUMN verification_token TEXT;`,
		`CREATE INDEX idx_users_verification_token ON users (verification_token);`,
	}

	for _, query := range queries {
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return err
		}
	}

	return nil
}

func downAddVerificationToken(ctx context.Context, tx *sql.Tx) error {
	queries := []string{
		`DROP INDEX idx_users_verification_token;`,
		`ALTER TABLE users DROP COLUMN verification_token;`,
	}

	for _, query := range queries {
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return err
		}
	}

	return nil
}
