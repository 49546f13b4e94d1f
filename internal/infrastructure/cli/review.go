package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/backloghq/groom/internal/infrastructure/wiring"
)

var approveCmd = &cobra.Command{
	Use:   "approve THREAD_ID",
	Short: "Approve a suspended proposal and apply it to the backlog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return resume(cmd, args[0], true)
	},
}

var rejectCmd = &cobra.Command{
	Use:   "reject THREAD_ID",
	Short: "Reject a suspended proposal and discard it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return resume(cmd, args[0], false)
	},
}

func resume(cmd *cobra.Command, threadID string, approved bool) error {
	root, err := getProjectRoot()
	if err != nil {
		return err
	}
	services, err := wiring.BuildAppServices(root, slog.Default())
	if err != nil {
		return err
	}
	if !services.Workspace.IsInitialized() {
		return NewCLIError("groom is not initialized in this directory", "Run 'groom init' first", nil)
	}

	res, err := services.Workflow.Resume(cmd.Context(), threadID, approved)
	if err != nil {
		return err
	}

	fmt.Printf("Status: %s\n", renderStatus(res.Status))
	fmt.Println(res.Result)
	return nil
}

func init() {
	rootCmd.AddCommand(approveCmd)
	rootCmd.AddCommand(rejectCmd)
}
