package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/tphakala/premigrate/cmd"
	"github.com/tphakala/premigrate/internal/buildinfo"
	"github.com/tphakala/premigrate/internal/runtime"
	"github.com/tphakala/premigrate/internal/telemetry"
)

// Set at build time with -ldflags "-X main.version=... -X main.buildDate=...".
var (
	version   string
	buildDate string
)

func main() {
	rc := runtime.New(&buildinfo.Context{Version: version, BuildDate: buildDate})

	err := cmd.RootCommand(rc).ExecuteContext(context.Background())
	if cerr := rc.Close(); cerr != nil {
		fmt.Fprintf(os.Stderr, "error closing resources: %v\n", cerr)
	}
	telemetry.Flush(2 * time.Second)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
