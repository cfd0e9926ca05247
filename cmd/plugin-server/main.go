// File: cmd/plugin-server/main.go
package main

import (
	"fmt"
	"os"

	"github.com/wisdark/tsunami-security-scanner/cmd"
	"github.com/wisdark/tsunami-security-scanner/internal/observability"
)

func main() {
	if err := cmd.NewRootCommand().Execute(); err != nil {
		observability.GetLogger().Sugar().Errorf("plugin server failed: %v", err)
		observability.Sync()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
