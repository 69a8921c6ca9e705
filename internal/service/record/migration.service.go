package record

import (
	"context"

	"github.com/krobus00/stocknotifier-service/internal/entity"
	"github.com/krobus00/stocknotifier-service/internal/repository"
	"github.com/sirupsen/logrus"
)

type MigrationService struct {
	migrationRepo *repository.MigrationRepository
}

func NewMigrationService(migrationRepo *repository.MigrationRepository) *MigrationService {
	return &MigrationService{migrationRepo: migrationRepo}
}

func (s *MigrationService) GetApplied(ctx context.Context) ([]entity.SchemaMigration, error) {
	migrations, err := s.migrationRepo.GetApplied(ctx)
	if err != nil {
		logrus.Error(err)
		return nil, ErrFetchRecordFailed
	}
	return migrations, nil
}
