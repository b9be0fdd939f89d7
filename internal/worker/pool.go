// Package worker persists journal entries in the background so requests do
// not wait on storage.
package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hongfeij/weather-spotify-alarm/internal/core/domain"
	"github.com/hongfeij/weather-spotify-alarm/internal/core/ports"
)

const writeTimeout = 5 * time.Second

// Pool manages background workers writing to a pick journal.
type Pool struct {
	journal ports.PickJournal
	jobs    chan domain.PickEntry
	wg      sync.WaitGroup
	logger  *zap.Logger

	// mu guards closed; Submit holds it shared so Stop cannot close jobs
	// mid-send.
	mu     sync.RWMutex
	closed bool
}

// NewPool creates a worker pool with the given queue size.
func NewPool(journal ports.PickJournal, queueSize int, logger *zap.Logger) *Pool {
	if queueSize < 1 {
		queueSize = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{
		journal: journal,
		jobs:    make(chan domain.PickEntry, queueSize),
		logger:  logger.Named("worker"),
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for entry := range p.jobs {
				p.process(entry)
			}
		}()
	}
}

// Stop closes the queue and waits for queued entries to be written.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

// Submit queues an entry without blocking. Entries are dropped when the
// queue is full or the pool is stopped.
func (p *Pool) Submit(entry domain.PickEntry) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.logger.Warn("pool stopped, dropping journal entry", zap.String("id", entry.ID))
		return
	}
	select {
	case p.jobs <- entry:
	default:
		p.logger.Warn("dropping journal entry", zap.String("id", entry.ID))
	}
}

func (p *Pool) process(entry domain.PickEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := p.journal.Record(ctx, entry); err != nil {
		p.logger.Warn("journal write failed", zap.String("id", entry.ID), zap.Error(err))
		return
	}
	p.logger.Debug("journal entry written",
		zap.String("id", entry.ID),
		zap.String("track", entry.Track.URI))
}
