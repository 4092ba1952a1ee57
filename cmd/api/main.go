package main

import (
	"log/slog"
	"os"

	"agora/internal/app/bootstrap"

	"github.com/joho/godotenv"
)

// API process entrypoint.
// Data flow:
// 1) Load .env and typed config.
// 2) Build app wiring (ledger program + gateway ports + adapters).
// 3) Start the deadline sweep and the HTTP server.
func main() {
	_ = godotenv.Load()

	app, err := bootstrap.Build()
	if err != nil {
		slog.Error("bootstrap failed", "error", err.Error())
		os.Exit(1)
	}
	if err := app.Run(); err != nil {
		slog.Error("server stopped", "error", err.Error())
		os.Exit(1)
	}
}
