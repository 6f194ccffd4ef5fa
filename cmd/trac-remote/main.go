package main

import (
	"context"

	"github.com/weaverba137/trac-remote/cmd/trac-remote/commands"
	"github.com/weaverba137/trac-remote/lib/telemetry"
)

func main() {
	ctx := context.Background()
	// telemetry is optional for a CLI run, a missing telemetry.json5
	// just means spans go nowhere
	telemetry.SetupFromEnv(ctx, "trac-remote")
	telemetry.InitSlog(false)
	commands.ExecuteContext(ctx)
}
