package jobqueue

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/CandidateLens/internal/pkg/env"
	metrics "github.com/ManuelReschke/CandidateLens/internal/pkg/metrics/counter"
)

const (
	defaultRetryInterval = 10 * time.Minute
	counterFlushInterval = 5 * time.Second
	retryBatchSize       = 50
)

// Manager manages the global job queue and background tasks
type Manager struct {
	queue              *Queue
	retryInterval      time.Duration
	retryTicker        *time.Ticker
	counterFlushTicker *time.Ticker
	stopCh             chan struct{}
	wg                 sync.WaitGroup
	mu                 sync.Mutex
	running            bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global job queue manager (singleton)
func GetManager() *Manager {
	managerOnce.Do(func() {
		retryInterval := time.Duration(env.GetEnvInt("ARCHIVE_RETRY_MINUTES", 0)) * time.Minute
		if retryInterval <= 0 {
			retryInterval = defaultRetryInterval
		}

		globalManager = &Manager{
			queue:         NewQueue(env.GetEnvInt("JOB_WORKERS", DefaultWorkers)),
			retryInterval: retryInterval,
			stopCh:        make(chan struct{}),
		}
	})
	return globalManager
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// Start starts the job queue and background tasks
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so manager can be restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[JobQueue Manager] Starting job queue and background tasks")

	m.queue.Start()

	m.retryTicker = time.NewTicker(m.retryInterval)
	m.wg.Add(1)
	go m.retryWorker(m.stopCh)

	// Redis -> DB flush of dataset view and chart download counters
	m.counterFlushTicker = time.NewTicker(counterFlushInterval)
	m.wg.Add(1)
	go m.counterFlushWorker(m.stopCh)

	log.Info("[JobQueue Manager] Started successfully")
}

// Stop stops the job queue and background tasks
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping job queue and background tasks...")

	if m.retryTicker != nil {
		m.retryTicker.Stop()
	}
	if m.counterFlushTicker != nil {
		m.counterFlushTicker.Stop()
	}

	close(m.stopCh)
	m.stopCh = nil
	m.running = false

	m.wg.Wait()

	m.queue.Stop()

	log.Info("[JobQueue Manager] Stopped successfully")
}

// retryWorker periodically re-queues datasets that still lack an archive copy
func (m *Manager) retryWorker(stopCh <-chan struct{}) {
	defer m.wg.Done()
	log.Infof("[JobQueue Manager] Started archive retry worker (interval: %s)", m.retryInterval)

	for {
		select {
		case <-stopCh:
			log.Info("[JobQueue Manager] Retry worker stopping")
			return
		case <-m.retryTicker.C:
			// Only datasets older than one interval, fresh uploads still have a live job
			queued, err := m.queue.RetryUnarchivedDatasets(context.Background(), m.retryInterval, retryBatchSize)
			if err != nil {
				log.Errorf("[JobQueue Manager] Error retrying unarchived datasets: %v", err)
				continue
			}
			if queued > 0 {
				log.Infof("[JobQueue Manager] Re-queued %d unarchived datasets", queued)
			}
		}
	}
}

// counterFlushWorker periodically flushes pending counters from Redis to the database
func (m *Manager) counterFlushWorker(stopCh <-chan struct{}) {
	defer m.wg.Done()

	for {
		select {
		case <-stopCh:
			log.Info("[JobQueue Manager] Counter flush worker stopping")
			return
		case <-m.counterFlushTicker.C:
			if err := metrics.FlushAll(); err != nil {
				log.Errorf("[JobQueue Manager] Counter flush error: %v", err)
			}
		}
	}
}

// IsRunning returns whether the manager is currently running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}
