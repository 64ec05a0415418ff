package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/ManuelReschke/CandidateLens/app/models"
)

// DatasetRepository defines the interface for dataset-related database operations
type DatasetRepository interface {
	Create(dataset *models.Dataset) error
	GetByUUID(uuid string) (*models.Dataset, error)
	GetByShareLink(shareLink string) (*models.Dataset, error)
	GetByFileHash(fileHash string) (*models.Dataset, error)
	MarkArchived(id uint, key string, at time.Time) error
	List(offset, limit int) ([]models.Dataset, error)
	ListUnarchived(createdBefore time.Time, limit int) ([]models.Dataset, error)
	Count() (int64, error)
	CountSince(since time.Time) (int64, error)
	SumRows() (int64, error)
	GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	Dataset DatasetRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Dataset: NewDatasetRepository(db),
	}
}
