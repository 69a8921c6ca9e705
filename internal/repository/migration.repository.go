package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/krobus00/stocknotifier-service/internal/entity"
)

type MigrationRepository struct {
	db *sqlx.DB
}

func NewMigrationRepository(db *sqlx.DB) *MigrationRepository {
	return &MigrationRepository{db: db}
}

// GetApplied lists applied goose versions in the order they ran. Version 0 is
// goose's bootstrap row and is skipped.
func (r *MigrationRepository) GetApplied(ctx context.Context) ([]entity.SchemaMigration, error) {
	migrations := []entity.SchemaMigration{}
	err := r.db.SelectContext(ctx, &migrations,
		"SELECT id, version_id, is_applied, tstamp FROM goose_db_version WHERE version_id > 0 AND is_applied ORDER BY id")
	if err != nil {
		return nil, err
	}
	return migrations, nil
}
