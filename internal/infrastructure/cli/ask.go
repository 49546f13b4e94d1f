package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/backloghq/groom/internal/infrastructure/wiring"
	"github.com/backloghq/groom/pkg/domain/workflow"
)

var (
	askProject string
	askThread  string
)

var askCmd = &cobra.Command{
	Use:   "ask QUERY",
	Short: "Run a backlog request through the workflow",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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

		res, err := services.Workflow.Run(cmd.Context(), askProject, args[0], askThread)
		if err != nil {
			return err
		}

		fmt.Printf("Status: %s\n", renderStatus(res.Status))
		fmt.Println(res.Result)

		if res.Status == workflow.StatusAwaitingApproval {
			fmt.Println()
			fmt.Println(renderPlan(res.Plan))
			fmt.Printf("Approve with:  groom approve %s\n", res.ThreadID)
			fmt.Printf("Reject with:   groom reject %s\n", res.ThreadID)
		}
		return nil
	},
}

func init() {
	askCmd.Flags().StringVarP(&askProject, "project", "p", "", "project id")
	askCmd.Flags().StringVar(&askThread, "thread", "", "thread id (generated when empty)")
	_ = askCmd.MarkFlagRequired("project")
	rootCmd.AddCommand(askCmd)
}
