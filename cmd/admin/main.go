package main

import (
	"os"

	"resume-tailor/internal/shared/telemetry"
)

func main() {
	defer telemetry.Sync()
	if err := Execute(); err != nil {
		telemetry.Error("admin.failed", map[string]any{"error": err})
		os.Exit(1)
	}
}
