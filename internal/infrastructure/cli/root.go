// Package cli implements the groom command line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagRoot    string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:           "groom",
	Short:         "AI-assisted backlog grooming with human approval",
	Long:          "groom turns natural-language requests into proposed backlog changes.\nEvery proposal pauses for human approval before anything is persisted.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagRoot, "root", ".", "project root directory")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the CLI and prints mapped errors with their hints.
func Execute() error {
	cobra.OnInitialize(configureLogging)

	err := rootCmd.Execute()
	if err == nil {
		return nil
	}

	mapped := MapError(err)
	fmt.Fprintf(os.Stderr, "Error: %s\n", mapped.Error())
	if cliErr, ok := mapped.(*CLIError); ok && cliErr.Hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", cliErr.Hint)
	}
	return mapped
}

func configureLogging() {
	level := slog.LevelWarn
	if flagVerbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func getProjectRoot() (string, error) {
	if flagRoot != "" && flagRoot != "." {
		return flagRoot, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve working directory: %w", err)
	}
	return cwd, nil
}
