package jobqueue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/CandidateLens/app/models"
	"github.com/ManuelReschke/CandidateLens/app/repository"
	"github.com/ManuelReschke/CandidateLens/internal/pkg/archive"
)

type fakeStore struct {
	objects   map[string]string
	uploadErr error
	uploads   int
}

func (f *fakeStore) Upload(_ context.Context, localFilePath, objectKey string) (*archive.UploadResult, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.uploads++
	f.objects[objectKey] = localFilePath
	return &archive.UploadResult{BucketName: "bucket", ObjectKey: objectKey}, nil
}

func (f *fakeStore) Download(context.Context, string, string) error { return nil }

func (f *fakeStore) Exists(_ context.Context, objectKey string) (bool, error) {
	_, ok := f.objects[objectKey]
	return ok, nil
}

// fakeDatasetRepo records archive marks; the other methods are unused here
type fakeDatasetRepo struct {
	repository.DatasetRepository
	archived   map[uint]string
	unarchived []models.Dataset
}

func (f *fakeDatasetRepo) MarkArchived(id uint, key string, _ time.Time) error {
	f.archived[id] = key
	return nil
}

func (f *fakeDatasetRepo) ListUnarchived(time.Time, int) ([]models.Dataset, error) {
	return f.unarchived, nil
}

func testPayload() *ArchiveDatasetJobPayload {
	return &ArchiveDatasetJobPayload{
		DatasetID:   5,
		DatasetUUID: "uuid-5",
		FilePath:    "uploads/datasets/2024/10/06/uuid-5.csv",
		UploadedAt:  time.Date(2024, time.October, 6, 9, 0, 0, 0, time.UTC),
	}
}

func TestArchiveDataset_UploadsAndMarks(t *testing.T) {
	store := &fakeStore{objects: map[string]string{}}
	repo := &fakeDatasetRepo{archived: map[uint]string{}}

	key, err := archiveDataset(context.Background(), testPayload(), &archive.Config{}, store, repo)
	require.NoError(t, err)

	assert.Equal(t, "datasets/2024/10/uuid-5.csv", key)
	assert.Equal(t, "uploads/datasets/2024/10/06/uuid-5.csv", store.objects[key])
	assert.Equal(t, key, repo.archived[5])
}

func TestArchiveDataset_SkipsExistingObject(t *testing.T) {
	store := &fakeStore{objects: map[string]string{"datasets/2024/10/uuid-5.csv": "earlier"}}
	repo := &fakeDatasetRepo{archived: map[uint]string{}}

	_, err := archiveDataset(context.Background(), testPayload(), &archive.Config{}, store, repo)
	require.NoError(t, err)

	assert.Equal(t, 0, store.uploads)
	assert.Equal(t, "datasets/2024/10/uuid-5.csv", repo.archived[5])
}

func TestArchiveDataset_UploadErrorLeavesDatasetUnmarked(t *testing.T) {
	store := &fakeStore{objects: map[string]string{}, uploadErr: errors.New("boom")}
	repo := &fakeDatasetRepo{archived: map[uint]string{}}

	_, err := archiveDataset(context.Background(), testPayload(), &archive.Config{}, store, repo)
	require.Error(t, err)
	assert.Empty(t, repo.archived)
}

func TestArchiveDataset_RejectsIncompletePayload(t *testing.T) {
	_, err := archiveDataset(context.Background(), &ArchiveDatasetJobPayload{}, &archive.Config{}, &fakeStore{}, &fakeDatasetRepo{})
	assert.Error(t, err)
}

func TestProcessArchiveDatasetJob_DisabledIsNoop(t *testing.T) {
	original := loadArchiveConfig
	loadArchiveConfig = func() (*archive.Config, error) { return &archive.Config{Enabled: false}, nil }
	t.Cleanup(func() { loadArchiveConfig = original })

	q := &Queue{}
	err := q.processArchiveDatasetJob(context.Background(), &Job{Payload: testPayload().ToMap()})
	assert.NoError(t, err)

	assert.NoError(t, ArchiveDataset(&models.Dataset{ID: 1}))
}

func TestProcessArchiveDatasetJob_UsesHooks(t *testing.T) {
	store := &fakeStore{objects: map[string]string{}}
	repo := &fakeDatasetRepo{archived: map[uint]string{}}

	originalCfg, originalStore, originalRepo := loadArchiveConfig, newArchiveStore, datasetRepository
	loadArchiveConfig = func() (*archive.Config, error) { return &archive.Config{Enabled: true, Prefix: "raw"}, nil }
	newArchiveStore = func(context.Context, *archive.Config) (archive.Store, error) { return store, nil }
	datasetRepository = func() repository.DatasetRepository { return repo }
	t.Cleanup(func() {
		loadArchiveConfig, newArchiveStore, datasetRepository = originalCfg, originalStore, originalRepo
	})

	q := &Queue{}
	require.NoError(t, q.processArchiveDatasetJob(context.Background(), &Job{Payload: testPayload().ToMap()}))
	assert.Equal(t, "raw/2024/10/uuid-5.csv", repo.archived[5])
}
