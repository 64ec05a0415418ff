package statistics

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/CandidateLens/app/models"
	"github.com/ManuelReschke/CandidateLens/app/repository"
	"github.com/ManuelReschke/CandidateLens/internal/pkg/cache"
)

const (
	CacheKeyDatasetsTotal   = "statistics:datasets:total"
	CacheKeyDatasetsDaily   = "statistics:datasets:daily:%s" // Format with date YYYY-MM-DD
	CacheKeyCandidatesTotal = "statistics:candidates:total"
	CacheExpiration         = 30 * time.Minute
)

// StatisticsData holds the counters shown on the dashboard and the API
type StatisticsData struct {
	TodayDatasets   int `json:"today_datasets"`
	TotalDatasets   int `json:"total_datasets"`
	TotalCandidates int `json:"total_candidates"`
}

// Counter is the slice of the dataset repository the statistics need
type Counter interface {
	Count() (int64, error)
	CountSince(since time.Time) (int64, error)
	SumRows() (int64, error)
}

// Swappable for tests
var (
	CounterImplementation = func() Counter {
		if !repository.IsInitialized() {
			return nil
		}
		return repository.GetGlobalFactory().GetDatasetRepository()
	}
	SetCacheImplementation = func(key string, value string) error {
		return cache.Set(key, value, CacheExpiration)
	}
	GetCacheImplementation = cache.Get
)

var (
	lastCacheUpdate     time.Time
	cacheUpdateMutex    sync.Mutex
	cacheUpdateInterval = 5 * time.Minute
)

// ShouldUpdateCache reports whether the refresh interval has passed
func ShouldUpdateCache() bool {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	return time.Since(lastCacheUpdate) > cacheUpdateInterval
}

// UpdateCacheIfNeeded refreshes the cached counters at most once per interval
func UpdateCacheIfNeeded() {
	if !ShouldUpdateCache() {
		return
	}

	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	if err := UpdateStatisticsCache(); err != nil {
		log.Errorf("[Statistics] Failed to refresh cache: %v", err)
		return
	}
	lastCacheUpdate = time.Now()
}

// ResetCacheUpdateTimer forces the next UpdateCacheIfNeeded to refresh
func ResetCacheUpdateTimer() {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	lastCacheUpdate = time.Time{}
}

func startOfDay(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

func dailyKey(now time.Time) string {
	return fmt.Sprintf(CacheKeyDatasetsDaily, now.Format("2006-01-02"))
}

// UpdateStatisticsCache recounts everything from the database and stores it in the cache
func UpdateStatisticsCache() error {
	counter := CounterImplementation()
	if counter == nil {
		return fmt.Errorf("dataset repository not initialized")
	}

	now := time.Now()
	totalDatasets, err := counter.Count()
	if err != nil {
		return fmt.Errorf("count datasets: %w", err)
	}
	todayDatasets, err := counter.CountSince(startOfDay(now))
	if err != nil {
		return fmt.Errorf("count today's datasets: %w", err)
	}
	totalCandidates, err := counter.SumRows()
	if err != nil {
		return fmt.Errorf("sum candidate rows: %w", err)
	}

	values := map[string]int64{
		CacheKeyDatasetsTotal:   totalDatasets,
		dailyKey(now):           todayDatasets,
		CacheKeyCandidatesTotal: totalCandidates,
	}
	for key, v := range values {
		if err := SetCacheImplementation(key, strconv.FormatInt(v, 10)); err != nil {
			return fmt.Errorf("cache %s: %w", key, err)
		}
	}

	log.Infof("[Statistics] Cache updated: datasets=%d today=%d candidates=%d", totalDatasets, todayDatasets, totalCandidates)
	return nil
}

// cachedOrCount reads key from the cache, falling back to count and caching its result
func cachedOrCount(key string, count func(Counter) (int64, error)) int {
	if val, err := GetCacheImplementation(key); err == nil {
		if n, convErr := strconv.ParseInt(val, 10, 64); convErr == nil {
			return int(n)
		}
	}

	counter := CounterImplementation()
	if counter == nil {
		return 0
	}
	n, err := count(counter)
	if err != nil {
		log.Errorf("[Statistics] Counting %s failed: %v", key, err)
		return 0
	}
	if err := SetCacheImplementation(key, strconv.FormatInt(n, 10)); err != nil {
		log.Warnf("[Statistics] Caching %s failed: %v", key, err)
	}
	return int(n)
}

// GetTotalDatasets returns the number of processed datasets
func GetTotalDatasets() int {
	return cachedOrCount(CacheKeyDatasetsTotal, func(c Counter) (int64, error) { return c.Count() })
}

// GetTodayDatasets returns the number of datasets uploaded today
func GetTodayDatasets() int {
	now := time.Now()
	return cachedOrCount(dailyKey(now), func(c Counter) (int64, error) { return c.CountSince(startOfDay(now)) })
}

// GetTotalCandidates returns the number of candidate rows over all datasets
func GetTotalCandidates() int {
	return cachedOrCount(CacheKeyCandidatesTotal, func(c Counter) (int64, error) { return c.SumRows() })
}

// GetStatisticsData returns all counters, refreshing the cache when due
func GetStatisticsData() StatisticsData {
	UpdateCacheIfNeeded()

	return StatisticsData{
		TodayDatasets:   GetTodayDatasets(),
		TotalDatasets:   GetTotalDatasets(),
		TotalCandidates: GetTotalCandidates(),
	}
}

// DailySource is the slice of the dataset repository the upload history needs
type DailySource interface {
	GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error)
}

// DailyUploads returns the number of uploads for each of the last days days
// ending with now, oldest first. Days without uploads have a zero count.
func DailyUploads(src DailySource, now time.Time, days int) ([]models.DailyStats, error) {
	if days <= 0 {
		return []models.DailyStats{}, nil
	}

	first := startOfDay(now).AddDate(0, 0, -(days - 1))
	rows, err := src.GetDailyStats(first, now)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Date] += r.Count
	}

	out := make([]models.DailyStats, days)
	for i := range out {
		date := first.AddDate(0, 0, i).Format("2006-01-02")
		out[i] = models.DailyStats{Date: date, Count: counts[date]}
	}
	return out, nil
}
