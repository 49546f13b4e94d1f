package main

import (
	"errors"
	"os"

	"github.com/backloghq/groom/internal/infrastructure/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		var cliErr *cli.CLIError
		if errors.As(err, &cliErr) && cliErr.ExitCode != 0 {
			os.Exit(cliErr.ExitCode)
		}
		os.Exit(1)
	}
}
