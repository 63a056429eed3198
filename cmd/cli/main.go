package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/crucial707/hci-itam/cmd/cli/assets"
	"github.com/crucial707/hci-itam/cmd/cli/auth"
	"github.com/crucial707/hci-itam/cmd/cli/root"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := root.GetRoot()
	auth.InitAuth(rootCmd)
	assets.InitAssets(rootCmd)

	// Execute the root Cobra command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
