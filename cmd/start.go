package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/adamgarcia4/goLearning/glomers/logger"
	"github.com/adamgarcia4/goLearning/glomers/node"
)

func runStart(cmd *cobra.Command, args []string) error {
	role, err := node.ParseRole(args[0])
	if err != nil {
		return err
	}

	// stdout is the protocol channel
	logger.Init("glomers", os.Stderr)
	defer logger.Sync()

	n, err := node.New(node.DefaultConfig(role))
	if err != nil {
		return fmt.Errorf("failed to create node: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run blocks in a read; a signal must not wait for the next line.
	done := make(chan error, 1)
	go func() {
		done <- n.Run(ctx, os.Stdin, os.Stdout)
	}()

	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	case <-ctx.Done():
		logger.Infof("Shutting down (role %s)", role)
		return nil
	}
}
