// Package worker runs background maintenance for the application.
package worker

import (
	"context"
	"log"
	"sync"
	"time"

	"skylens/internal/services"
)

// Service manages background workers for the application. Its only worker
// today is the almanac refresher, which periodically lands the current
// day's APOD entry; the reconcile step makes repeated runs idempotent.
type Service struct {
	almanacService  *services.AlmanacService
	refreshInterval time.Duration
	ctx             context.Context
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	running         bool
	mu              sync.RWMutex
}

// NewService creates a new worker service
func NewService(almanacService *services.AlmanacService, refreshInterval time.Duration) *Service {
	ctx, cancel := context.WithCancel(context.Background())

	if refreshInterval <= 0 {
		refreshInterval = 24 * time.Hour
	}

	return &Service{
		almanacService:  almanacService,
		refreshInterval: refreshInterval,
		ctx:             ctx,
		cancel:          cancel,
	}
}

// Start starts all background workers
func (ws *Service) Start() error {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.running {
		return nil // Already running
	}

	log.Println("Starting background workers...")

	ws.wg.Add(1)
	go func() {
		defer ws.wg.Done()
		ws.runAlmanacRefresher()
	}()

	ws.running = true
	log.Println("Background workers started successfully")

	return nil
}

// Stop stops all background workers
func (ws *Service) Stop() {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if !ws.running {
		return // Not running
	}

	log.Println("Stopping background workers...")

	// Cancel context to signal all workers to stop
	ws.cancel()

	// Wait for all workers to finish
	ws.wg.Wait()

	ws.running = false
	log.Println("Background workers stopped")
}

// IsRunning returns whether the worker service is currently running
func (ws *Service) IsRunning() bool {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return ws.running
}

// runAlmanacRefresher fetches the current day's APOD entry on a fixed
// interval. Failures are logged and the next tick tries again; the worker
// performs no retries of its own.
func (ws *Service) runAlmanacRefresher() {
	log.Println("Starting almanac refresh worker...")

	ticker := time.NewTicker(ws.refreshInterval)
	defer ticker.Stop()

	// Land today's entry once on startup
	ws.refreshToday()

	for {
		select {
		case <-ws.ctx.Done():
			log.Println("Almanac refresh worker stopped")
			return

		case <-ticker.C:
			ws.refreshToday()
		}
	}
}

func (ws *Service) refreshToday() {
	record, err := ws.almanacService.FetchToday(ws.ctx)
	if err != nil {
		log.Printf("Almanac refresh failed: %v", err)
		return
	}

	log.Printf("Almanac refresh complete: date=%s id=%s", record.ApodDate, record.ID)
}
