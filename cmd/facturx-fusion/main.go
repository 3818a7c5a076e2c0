package main

import (
	"fmt"
	"os"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/rezonia/facturx-fusion/cmd/facturx-fusion/cmd"
	"github.com/rezonia/facturx-fusion/internal/logging"
)

func main() {
	// Error ignored: an invalid GOMAXPROCS env leaves the runtime default
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		logging.Debug(fmt.Sprintf(format, args...))
	}))

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
