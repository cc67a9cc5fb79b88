package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"indego-backend/cmd/indego/commands"
	"indego-backend/lib/serviceutil"
	"indego-backend/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()

	err := telemetry.SetupFromEnv(ctx, "indego")
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		serviceutil.Fatal("setup telemetry", err)
	}
	if err == nil {
		defer telemetry.Shutdown(context.Background())
	} else {
		slog.Debug("no telemetry.json5 found, telemetry disabled")
	}

	commands.ExecuteContext(ctx)
}
