package controllers

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ManuelReschke/CandidateLens/app/models"
	"github.com/ManuelReschke/CandidateLens/app/repository"
	"github.com/ManuelReschke/CandidateLens/internal/pkg/candidates"
	"github.com/ManuelReschke/CandidateLens/internal/pkg/reportstore"
	"github.com/ManuelReschke/CandidateLens/internal/pkg/statistics"
	"github.com/ManuelReschke/CandidateLens/views"
)

const sampleCSV = "SG_UF;DS_GRAU_INSTRUCAO;CD_GENERO;DS_GENERO;CD_COR_RACA;DS_COR_RACA;SG_PARTIDO\n" +
	"BA;SUPERIOR COMPLETO;1;MASCULINO;01;BRANCA;PL\n" +
	"BA;SUPERIOR COMPLETO;2;FEMININO;02;PRETA;PT\n" +
	"BA;ENSINO MÉDIO COMPLETO;2;FEMININO;03;PARDA;PT\n"

// fakeDatasetRepo is an in-memory DatasetRepository
type fakeDatasetRepo struct {
	mu       sync.Mutex
	nextID   uint
	datasets []*models.Dataset
}

var _ repository.DatasetRepository = (*fakeDatasetRepo)(nil)

func (r *fakeDatasetRepo) Create(dataset *models.Dataset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range r.datasets {
		if d.FileHash == dataset.FileHash {
			return errors.New("Error 1062 (23000): Duplicate entry for key 'idx_datasets_file_hash'")
		}
	}
	if err := dataset.BeforeCreate(nil); err != nil {
		return err
	}
	r.nextID++
	dataset.ID = r.nextID
	dataset.CreatedAt = time.Now()
	stored := *dataset
	r.datasets = append(r.datasets, &stored)
	return nil
}

func (r *fakeDatasetRepo) find(match func(*models.Dataset) bool) (*models.Dataset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range r.datasets {
		if match(d) {
			found := *d
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeDatasetRepo) GetByUUID(uuid string) (*models.Dataset, error) {
	return r.find(func(d *models.Dataset) bool { return d.UUID == uuid })
}

func (r *fakeDatasetRepo) GetByShareLink(shareLink string) (*models.Dataset, error) {
	return r.find(func(d *models.Dataset) bool { return d.ShareLink == shareLink })
}

func (r *fakeDatasetRepo) GetByFileHash(fileHash string) (*models.Dataset, error) {
	return r.find(func(d *models.Dataset) bool { return d.FileHash == fileHash })
}

func (r *fakeDatasetRepo) MarkArchived(id uint, key string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range r.datasets {
		if d.ID == id {
			d.MarkArchived(key, at)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeDatasetRepo) List(offset, limit int) ([]models.Dataset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Dataset
	for i := len(r.datasets) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, *r.datasets[i])
	}
	return out, nil
}

func (r *fakeDatasetRepo) ListUnarchived(createdBefore time.Time, limit int) ([]models.Dataset, error) {
	return nil, nil
}

func (r *fakeDatasetRepo) Count() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.datasets)), nil
}

func (r *fakeDatasetRepo) CountSince(since time.Time) (int64, error) {
	return r.Count()
}

func (r *fakeDatasetRepo) SumRows() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var total int64
	for _, d := range r.datasets {
		total += int64(d.RowCount)
	}
	return total, nil
}

func (r *fakeDatasetRepo) GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := map[string]int{}
	for _, d := range r.datasets {
		if !d.CreatedAt.Before(startDate) && !d.CreatedAt.After(endDate) {
			counts[d.CreatedAt.Format("2006-01-02")]++
		}
	}
	var out []models.DailyStats
	for date, n := range counts {
		out = append(out, models.DailyStats{Date: date, Count: n})
	}
	return out, nil
}

func (r *fakeDatasetRepo) count() int {
	n, _ := r.Count()
	return int(n)
}

// memoryCache replaces the Redis backed report cache
type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memoryCache) clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = map[string][]byte{}
}

type testBackend struct {
	repo     *fakeDatasetRepo
	cache    *memoryCache
	archived []string
	views    int
	charts   int
	mu       sync.Mutex
}

// withTestBackend swaps every external dependency of the controllers for
// in-memory fakes and stores uploads in a temp dir.
func withTestBackend(t *testing.T) *testBackend {
	t.Helper()

	b := &testBackend{
		repo:  &fakeDatasetRepo{},
		cache: &memoryCache{data: map[string][]byte{}},
	}

	t.Setenv("UPLOAD_DIR", t.TempDir())
	t.Setenv("CSV_ENCODING", candidates.EncodingUTF8)
	t.Setenv("UPLOAD_MAX_FILES", "3")

	origRepo := datasetRepository
	origLock := acquireUploadLock
	origArchive := enqueueArchive
	origRefresh := refreshStatistics
	origStats := dashboardStatistics
	origView := recordDatasetView
	origChart := recordChartDownload
	origSet := reportstore.SetCacheImplementation
	origGet := reportstore.GetCacheImplementation
	origDel := reportstore.DeleteCacheImplementation
	t.Cleanup(func() {
		datasetRepository = origRepo
		acquireUploadLock = origLock
		enqueueArchive = origArchive
		refreshStatistics = origRefresh
		dashboardStatistics = origStats
		recordDatasetView = origView
		recordChartDownload = origChart
		reportstore.SetCacheImplementation = origSet
		reportstore.GetCacheImplementation = origGet
		reportstore.DeleteCacheImplementation = origDel
	})

	datasetRepository = func() repository.DatasetRepository { return b.repo }
	acquireUploadLock = func(string) (func(), bool) { return func() {}, true }
	enqueueArchive = func(d *models.Dataset) error {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.archived = append(b.archived, d.UUID)
		return nil
	}
	refreshStatistics = func() {}
	dashboardStatistics = func() statistics.StatisticsData {
		return statistics.StatisticsData{TotalDatasets: b.repo.count()}
	}
	recordDatasetView = func(uint) error {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.views++
		return nil
	}
	recordChartDownload = func(uint) error {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.charts++
		return nil
	}

	reportstore.SetCacheImplementation = func(key string, value []byte, ttl time.Duration) error {
		b.cache.mu.Lock()
		defer b.cache.mu.Unlock()
		b.cache.data[key] = value
		return nil
	}
	reportstore.GetCacheImplementation = func(key string) ([]byte, error) {
		b.cache.mu.Lock()
		defer b.cache.mu.Unlock()
		v, ok := b.cache.data[key]
		if !ok {
			return nil, reportstore.ErrNotFound
		}
		return v, nil
	}
	reportstore.DeleteCacheImplementation = func(key string) error {
		b.cache.mu.Lock()
		defer b.cache.mu.Unlock()
		delete(b.cache.data, key)
		return nil
	}

	return b
}

func (b *testBackend) archivedCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.archived)
}

func newTestApp() *fiber.App {
	app := fiber.New(fiber.Config{Views: views.NewEngine()})
	app.Get("/", HandleDashboard)
	app.Post("/upload", HandleUpload)
	app.Get("/datasets/:uuid", HandleDatasetPage)
	app.Get("/datasets/:uuid/charts/:kind", HandleChart)
	app.Get("/d/:sharelink", HandleShareLink)
	app.Get("/api/v1/datasets", HandleAPIListDatasets)
	app.Post("/api/v1/datasets", HandleAPIUploadDatasets)
	app.Get("/api/v1/datasets/:uuid", HandleAPIGetDataset)
	app.Get("/api/v1/statistics", HandleAPIStatistics)
	app.Get("/api/v1/statistics/daily", HandleAPIDailyStatistics)
	return app
}

type uploadFile struct {
	field   string
	name    string
	content string
}

func newUploadRequest(t *testing.T, path string, files ...uploadFile) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := writer.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func csvFile(name string) uploadFile {
	return uploadFile{field: "files", name: name, content: sampleCSV}
}

func stateCSV(state string) string {
	return fmt.Sprintf("SG_UF;DS_GRAU_INSTRUCAO\n%s;SUPERIOR COMPLETO\n", state)
}
