/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the Warp Attendance Engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize SQLite store
  3. Wire summary recalculator and finalization engine
  4. Create API handler and HTTP router
  5. Start the hourly finalization scheduler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port       HTTP server port (default: 8080)
  -db         SQLite database path (default: attendance.db)
              Use ":memory:" for in-memory database
  -interval   Scheduler check interval (default: 1h)
  -scheduler  Enable the background scheduler (default: true)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/attendance.db"

  # Run with in-memory database, no background sweeps
  ./server -db=":memory:" -scheduler=false

  # Tighter scheduler cadence for demos
  ./server -interval=1m

ENVIRONMENT:
  No environment variables currently. All config via flags.

SEE ALSO:
  - api/server.go: Router configuration
  - api/scheduler.go: Background sweep cadence
  - finalize/engine.go: The finalization engine
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/juju/clock"

	"github.com/warp/attendance-engine/api"
	"github.com/warp/attendance-engine/finalize"
	"github.com/warp/attendance-engine/store/sqlite"
	"github.com/warp/attendance-engine/summary"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "attendance.db", "SQLite database path")
	interval := flag.Duration("interval", time.Hour, "Scheduler check interval")
	schedulerOn := flag.Bool("scheduler", true, "Enable the background finalization scheduler")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Wire the engine: SQLite behind the gateway, rollups recomputed
	// through the same store.
	summaries := summary.NewRecalculator(store, clock.WallClock)
	engine := finalize.NewEngine(store, summaries, clock.WallClock)

	// Initialize handler
	handler := api.NewHandler(store, engine, summaries, clock.WallClock)

	// Create router
	router := api.NewRouter(handler)

	// Background sweeps
	scheduler := api.NewFinalizationScheduler(engine)
	scheduler.CheckInterval = *interval
	scheduler.Enabled = *schedulerOn
	scheduler.Start()
	defer scheduler.Stop()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on http://localhost:%d", *port)
		log.Printf("📊 API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
