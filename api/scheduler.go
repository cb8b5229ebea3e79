/*
scheduler.go - Automated finalization scheduler

PURPOSE:
  Drives the finalization engine on a fixed cadence. Every tick fires both
  trigger modes without force: the gates inside the engine decide which
  companies' local clocks have reached their moment, so an hourly cadence
  catches every timezone exactly once per day per mode.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - The engine persists its own run records; the scheduler only logs
  - A failed sweep is logged and retried by cadence, never crashes

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewFinalizationScheduler(engine)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: TriggerEndOfDay / TriggerShiftEnd (manual, forced runs)
  - finalize/engine.go: The engine this drives
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/warp/attendance-engine/finalize"
)

// FinalizationScheduler invokes the engine's two sweep modes on a timer.
type FinalizationScheduler struct {
	Engine        *finalize.Engine
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewFinalizationScheduler creates a new scheduler.
func NewFinalizationScheduler(engine *finalize.Engine) *FinalizationScheduler {
	return &FinalizationScheduler{
		Engine:        engine,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (fs *FinalizationScheduler) Start() {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if !fs.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	fs.ticker = time.NewTicker(fs.CheckInterval)
	fs.wg.Add(1)

	go fs.run()

	log.Printf("[Scheduler] Started with check interval: %v", fs.CheckInterval)
}

// Stop stops the scheduler.
func (fs *FinalizationScheduler) Stop() {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.ticker != nil {
		fs.ticker.Stop()
		close(fs.stop)
		fs.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

func (fs *FinalizationScheduler) run() {
	defer fs.wg.Done()

	// Run immediately on start
	fs.checkAndProcess()

	for {
		select {
		case <-fs.ticker.C:
			fs.checkAndProcess()
		case <-fs.stop:
			return
		}
	}
}

// checkAndProcess runs both sweep modes, unforced. Companies whose local
// hour doesn't match their gate are left alone; re-running the same hour
// is harmless because finalization is idempotent.
func (fs *FinalizationScheduler) checkAndProcess() {
	ctx := context.Background()

	fs.sweep(ctx, "End-of-day", fs.Engine.FinalizeEndOfDay)
	fs.sweep(ctx, "Shift-end", fs.Engine.FinalizeShiftEnd)
}

func (fs *FinalizationScheduler) sweep(ctx context.Context, label string, run func(context.Context, bool) (*finalize.RunStats, error)) {
	stats, err := run(ctx, false)
	if err != nil {
		log.Printf("[Scheduler] %s sweep failed: %v", label, err)
		return
	}
	if stats.Companies > 0 || stats.CompaniesSkipped > 0 {
		log.Printf("[Scheduler] %s run %s: %d companies, %d absences created, %d skipped, %d failures",
			label, stats.RunID, stats.Companies, stats.MarkedAbsent, stats.Skipped, stats.WorkerFailures)
	}
}

// RunNow triggers an immediate check (for testing/admin).
func (fs *FinalizationScheduler) RunNow() {
	fs.checkAndProcess()
}

// GetNextRunTime returns when the next scheduled check will occur.
func (fs *FinalizationScheduler) GetNextRunTime() time.Time {
	return time.Now().Add(fs.CheckInterval)
}
