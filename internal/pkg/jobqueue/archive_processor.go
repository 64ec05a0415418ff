package jobqueue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/CandidateLens/app/models"
	"github.com/ManuelReschke/CandidateLens/app/repository"
	"github.com/ManuelReschke/CandidateLens/internal/pkg/archive"
)

// Hooks for the archive job; tests replace them with fakes
var (
	loadArchiveConfig = archive.LoadConfig
	newArchiveStore   = func(ctx context.Context, cfg *archive.Config) (archive.Store, error) {
		return archive.NewClient(ctx, cfg)
	}
	datasetRepository = func() repository.DatasetRepository {
		return repository.GetGlobalFactory().GetDatasetRepository()
	}
)

// processArchiveDatasetJob processes an archive_dataset job
func (q *Queue) processArchiveDatasetJob(ctx context.Context, job *Job) error {
	payload, err := ArchiveDatasetJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("failed to parse archive job payload: %w", err)
	}

	cfg, err := loadArchiveConfig()
	if err != nil {
		return fmt.Errorf("failed to load archive config: %w", err)
	}
	if !cfg.IsEnabled() {
		// Switched off after the job was queued, nothing to retry
		log.Warnf("[Archive] Archive disabled, dropping job for dataset %s", payload.DatasetUUID)
		return nil
	}

	store, err := newArchiveStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create archive client: %w", err)
	}

	_, err = archiveDataset(ctx, payload, cfg, store, datasetRepository())
	return err
}

// archiveDataset uploads the stored CSV unless the object already exists and
// records the object key on the dataset
func archiveDataset(ctx context.Context, payload *ArchiveDatasetJobPayload, cfg *archive.Config, store archive.Store, repo repository.DatasetRepository) (string, error) {
	if payload.DatasetID == 0 || payload.FilePath == "" {
		return "", errors.New("archive job without dataset id or file path")
	}

	objectKey := cfg.ObjectKey(payload.DatasetUUID, payload.UploadedAt)

	exists, err := store.Exists(ctx, objectKey)
	if err != nil {
		return "", err
	}
	if exists {
		log.Infof("[Archive] s3 object %s already present for dataset %s", objectKey, payload.DatasetUUID)
	} else {
		result, err := store.Upload(ctx, payload.FilePath, objectKey)
		if err != nil {
			return "", err
		}
		log.Infof("[Archive] Archived dataset %s to s3://%s/%s", payload.DatasetUUID, result.BucketName, result.ObjectKey)
	}

	if err := repo.MarkArchived(payload.DatasetID, objectKey, time.Now()); err != nil {
		return "", fmt.Errorf("failed to mark dataset %s archived: %w", payload.DatasetUUID, err)
	}
	return objectKey, nil
}

// EnqueueArchiveDatasetJob creates and enqueues an archive job for a stored dataset
func (q *Queue) EnqueueArchiveDatasetJob(ctx context.Context, dataset *models.Dataset) (*Job, error) {
	payload := ArchiveDatasetJobPayload{
		DatasetID:   dataset.ID,
		DatasetUUID: dataset.UUID,
		FilePath:    dataset.FilePath,
		FileSize:    dataset.FileSize,
		UploadedAt:  dataset.CreatedAt,
	}
	if payload.UploadedAt.IsZero() {
		payload.UploadedAt = time.Now()
	}

	return q.EnqueueJob(ctx, JobTypeArchiveDataset, payload.ToMap())
}

// ArchiveDataset queues the archive copy of a freshly stored dataset.
// It is a no-op while the S3 archive is disabled.
func ArchiveDataset(dataset *models.Dataset) error {
	cfg, err := loadArchiveConfig()
	if err != nil {
		return err
	}
	if !cfg.IsEnabled() || dataset.IsArchived() {
		return nil
	}

	_, err = GetManager().GetQueue().EnqueueArchiveDatasetJob(context.Background(), dataset)
	return err
}

// RetryUnarchivedDatasets re-queues datasets whose archive copy never landed,
// e.g. because every retry of the job failed or Redis lost the queue
func (q *Queue) RetryUnarchivedDatasets(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	cfg, err := loadArchiveConfig()
	if err != nil {
		return 0, err
	}
	if !cfg.IsEnabled() {
		return 0, nil
	}

	datasets, err := datasetRepository().ListUnarchived(time.Now().Add(-olderThan), limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list unarchived datasets: %w", err)
	}

	queued := 0
	for i := range datasets {
		job, err := q.EnqueueArchiveDatasetJob(ctx, &datasets[i])
		if err != nil {
			log.Errorf("[Archive] Failed to enqueue retry for dataset %s: %v", datasets[i].UUID, err)
			continue
		}
		log.Infof("[Archive] Enqueued retry job %s for dataset %s", job.ID, datasets[i].UUID)
		queued++
	}
	return queued, nil
}
