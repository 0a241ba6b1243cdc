package storage

import (
	"context"
	"fmt"
	"slices"

	"github.com/ggorockee/companyfinder/internal/database"
	"github.com/ggorockee/companyfinder/internal/logger"
	"github.com/ggorockee/companyfinder/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const insertBatchSize = 100

// PostgresCompanyStore implements CompanyStore on the companies table
type PostgresCompanyStore struct {
	db *database.DB
}

func NewPostgresCompanyStore(db *database.DB) *PostgresCompanyStore {
	return &PostgresCompanyStore{db: db}
}

func (s *PostgresCompanyStore) FindByQuery(ctx context.Context, query models.SearchQuery) ([]models.Company, error) {
	var companies []models.Company
	err := s.db.WithContext(ctx).
		Where("search_location = ? AND industry = ? AND radius_km >= ?", query.Location, query.Industry, query.RadiusKm).
		Order("radius_km ASC, result_rank ASC, row_id ASC").
		Find(&companies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query companies: %w", err)
	}
	return companies, nil
}

func (s *PostgresCompanyStore) InsertMany(ctx context.Context, records []models.Company) (int, error) {
	rows := validRows(records)
	if len(rows) == 0 {
		return 0, nil
	}

	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&rows, insertBatchSize)
	if res.Error == nil {
		return int(res.RowsAffected), nil
	}
	if !database.IsRowError(res.Error) {
		return 0, fmt.Errorf("failed to insert companies: %w", res.Error)
	}

	// A bad row rolled back the batch; retry one by one and skip offenders.
	log := logger.GetLogger("storage.postgres")
	log.Warnf("Batch insert rejected (%v), falling back to per-row insert", res.Error)

	inserted := 0
	for i := range rows {
		row := rows[i]
		row.RowID = 0
		res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
		if res.Error != nil {
			if database.IsRowError(res.Error) {
				log.Warnf("Skipping company %s: %v", row.PlaceID, res.Error)
				continue
			}
			return inserted, fmt.Errorf("failed to insert company %s: %w", row.PlaceID, res.Error)
		}
		inserted += int(res.RowsAffected)
	}
	return inserted, nil
}

func (s *PostgresCompanyStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Company{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count companies: %w", err)
	}
	return count, nil
}

func (s *PostgresCompanyStore) DeleteByPlaceIDs(ctx context.Context, placeIDs []string) (int64, error) {
	if len(placeIDs) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Where("place_id IN ?", placeIDs).Delete(&models.Company{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete companies: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *PostgresCompanyStore) Clear(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.Company{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to clear companies: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *PostgresCompanyStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *PostgresCompanyStore) Close() error {
	return s.db.Close()
}

// validRows copies records, dropping rows without a place id
func validRows(records []models.Company) []models.Company {
	return slices.DeleteFunc(slices.Clone(records), func(c models.Company) bool {
		return c.PlaceID == ""
	})
}
