package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ManuelReschke/CandidateLens/app/models"
)

// datasetRepository implements the DatasetRepository interface
type datasetRepository struct {
	db *gorm.DB
}

// NewDatasetRepository creates a new dataset repository instance
func NewDatasetRepository(db *gorm.DB) DatasetRepository {
	return &datasetRepository{db: db}
}

// Create creates a new dataset in the database
func (r *datasetRepository) Create(dataset *models.Dataset) error {
	return r.db.Create(dataset).Error
}

// GetByUUID retrieves a dataset by its UUID
func (r *datasetRepository) GetByUUID(uuid string) (*models.Dataset, error) {
	var dataset models.Dataset
	err := r.db.Where("uuid = ?", uuid).First(&dataset).Error
	if err != nil {
		return nil, err
	}
	return &dataset, nil
}

// GetByShareLink retrieves a dataset by its share link
func (r *datasetRepository) GetByShareLink(shareLink string) (*models.Dataset, error) {
	var dataset models.Dataset
	err := r.db.Where("share_link = ?", shareLink).First(&dataset).Error
	if err != nil {
		return nil, err
	}
	return &dataset, nil
}

// GetByFileHash retrieves the dataset previously stored for the same file content
func (r *datasetRepository) GetByFileHash(fileHash string) (*models.Dataset, error) {
	var dataset models.Dataset
	err := r.db.Where("file_hash = ?", fileHash).First(&dataset).Error
	if err != nil {
		return nil, err
	}
	return &dataset, nil
}

// MarkArchived stores the object key without touching the other columns
func (r *datasetRepository) MarkArchived(id uint, key string, at time.Time) error {
	return r.db.Model(&models.Dataset{}).Where("id = ?", id).
		Updates(map[string]interface{}{"archive_key": key, "archived_at": at}).Error
}

// List retrieves datasets with pagination, newest first
func (r *datasetRepository) List(offset, limit int) ([]models.Dataset, error) {
	var datasets []models.Dataset
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&datasets).Error
	return datasets, err
}

// ListUnarchived returns datasets still waiting for their archive copy, oldest first
func (r *datasetRepository) ListUnarchived(createdBefore time.Time, limit int) ([]models.Dataset, error) {
	var datasets []models.Dataset
	err := r.db.Where("archived_at IS NULL AND created_at < ?", createdBefore).
		Order("created_at ASC").Limit(limit).Find(&datasets).Error
	return datasets, err
}

// Count returns the total number of datasets
func (r *datasetRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Dataset{}).Count(&count).Error
	return count, err
}

// CountSince returns the number of datasets created at or after since
func (r *datasetRepository) CountSince(since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Dataset{}).Where("created_at >= ?", since).Count(&count).Error
	return count, err
}

// SumRows returns the number of candidate rows over all datasets
func (r *datasetRepository) SumRows() (int64, error) {
	var total int64
	err := r.db.Model(&models.Dataset{}).Select("COALESCE(SUM(row_count), 0)").Row().Scan(&total)
	return total, err
}

// GetDailyStats returns daily dataset upload statistics for a date range
func (r *datasetRepository) GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error) {
	var results []struct {
		Date  string `json:"date"`
		Count int64  `json:"count"`
	}

	// DATE_FORMAT keeps the grouping MySQL compatible
	err := r.db.Model(&models.Dataset{}).
		Select("DATE_FORMAT(created_at, '%Y-%m-%d') as date, COUNT(*) as count").
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE_FORMAT(created_at, '%Y-%m-%d')").
		Order("date").
		Find(&results).Error

	if err != nil {
		return nil, fmt.Errorf("failed to get daily dataset stats: %w", err)
	}

	dailyStats := make([]models.DailyStats, len(results))
	for i, result := range results {
		dailyStats[i] = models.DailyStats{
			Date:  result.Date,
			Count: int(result.Count),
		}
	}

	return dailyStats, nil
}
