package feedback

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	domain "github.com/codedrop/relay/internal/domain/feedback"
	"github.com/codedrop/relay/internal/infrastructure/database/entities"
)

// PostgresRepository persists feedback via PostgreSQL using GORM.
type PostgresRepository struct {
	db *gorm.DB
}

// NewPostgresRepository creates a repository backed by the provided DB.
func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, fb *domain.Feedback) error {
	record := entities.Feedback{
		ID:        fb.ID,
		Rating:    fb.Rating,
		Text:      fb.Text,
		Timestamp: fb.Timestamp,
		CreatedAt: fb.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

// Health pings the underlying pool.
func (r *PostgresRepository) Health(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
