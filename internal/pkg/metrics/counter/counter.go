package counter

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/CandidateLens/internal/pkg/cache"
	"github.com/ManuelReschke/CandidateLens/internal/pkg/database"
)

const (
	datasetViewsKey     = "dataset:counters:views"
	chartDownloadsKey   = "dataset:counters:chart_downloads"
	datasetsTable       = "datasets"
	viewCountColumn     = "view_count"
	chartDownloadColumn = "chart_downloads"
)

// AddDatasetView increments the pending view counter for a dataset page in Redis
func AddDatasetView(datasetID uint) error {
	return increment(datasetViewsKey, datasetID)
}

// AddChartDownload increments the pending counter of PNG/SVG chart downloads for a dataset
func AddChartDownload(datasetID uint) error {
	return increment(chartDownloadsKey, datasetID)
}

func increment(key string, id uint) error {
	if id == 0 {
		return nil
	}
	field := strconv.FormatUint(uint64(id), 10)
	return cache.GetClient().HIncrBy(context.Background(), key, field, 1).Err()
}

// FlushAll moves the pending counters from Redis into the datasets table
func FlushAll() error {
	if err := flushHashToTable(datasetViewsKey, datasetsTable, viewCountColumn); err != nil {
		return err
	}
	return flushHashToTable(chartDownloadsKey, datasetsTable, chartDownloadColumn)
}

// flushHashToTable drains a Redis hash atomically and applies batched increments.
// RENAME to a temporary key drains it without losing in-flight increments.
func flushHashToTable(redisKey, table, column string) error {
	db := database.GetDB()
	if db == nil {
		return nil
	}

	ctx := context.Background()
	rdb := cache.GetClient()

	tmpKey := fmt.Sprintf("%s:tmp:%d", redisKey, time.Now().UnixNano())
	if err := rdb.Rename(ctx, redisKey, tmpKey).Err(); err != nil {
		if errors.Is(err, redis.Nil) || strings.Contains(strings.ToLower(err.Error()), "no such key") {
			return nil
		}
		return err
	}
	defer rdb.Del(ctx, tmpKey)

	data, err := rdb.HGetAll(ctx, tmpKey).Result()
	if err != nil {
		return err
	}

	sql, args := buildIncrementSQL(table, column, data)
	if sql == "" {
		return nil
	}
	return db.Exec(sql, args...).Error
}

// buildIncrementSQL composes
// UPDATE <table> SET <column> = <column> + CASE id WHEN ? THEN ? ... END WHERE id IN (...)
// from a hash of id -> increment. Invalid and zero entries are skipped.
func buildIncrementSQL(table, column string, data map[string]string) (string, []interface{}) {
	type pair struct {
		id  uint64
		inc int64
	}
	pairs := make([]pair, 0, len(data))
	for k, v := range data {
		id, perr := strconv.ParseUint(k, 10, 64)
		if perr != nil {
			continue
		}
		inc, ierr := strconv.ParseInt(v, 10, 64)
		if ierr != nil || inc == 0 {
			continue
		}
		pairs = append(pairs, pair{id: id, inc: inc})
	}
	if len(pairs) == 0 {
		return "", nil
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].id < pairs[j].id })

	var builder strings.Builder
	args := make([]interface{}, 0, len(pairs)*3)
	fmt.Fprintf(&builder, "UPDATE %s SET %s = %s + CASE id", table, column, column)
	for _, p := range pairs {
		builder.WriteString(" WHEN ? THEN ?")
		args = append(args, p.id, p.inc)
	}
	builder.WriteString(" END WHERE id IN (")
	for i, p := range pairs {
		if i > 0 {
			builder.WriteString(",")
		}
		builder.WriteString("?")
		args = append(args, p.id)
	}
	builder.WriteString(")")

	return builder.String(), args
}
