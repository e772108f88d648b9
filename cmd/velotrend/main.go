package main

import (
	"context"
	"embed"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"github.com/velotrend/velotrend/internal/app"
	"github.com/velotrend/velotrend/internal/support/logger"
)

// embeddedConfig embeds the application's YAML configuration file so a single
// binary carries its own defaults.
//
//go:embed resources/application.yaml
var embeddedConfig []byte

// migrationsFS bundles the warehouse schema migration files into the binary.
//
//go:embed all:resources/migrations
var migrationsFS embed.FS

// main manages startup, signal handling and execution of the fx container.
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Signal handling for graceful shutdown (e.g., Ctrl+C)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Warnf("Received signal '%v'. Attempting to stop the job...", sig)
		cancel()
	}()

	// Path to the .env file; defaults to ".env" next to the binary.
	envFilePath := os.Getenv("ENV_FILE_PATH")
	if envFilePath == "" {
		envFilePath = ".env"
	}

	app.RunApplication(ctx, envFilePath, embeddedConfig, migrationsFS)
	os.Exit(0)
}
