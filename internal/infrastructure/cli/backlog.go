package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/backloghq/groom/internal/infrastructure/wiring"
)

var backlogProject string

var backlogCmd = &cobra.Command{
	Use:   "backlog",
	Short: "Show the latest backlog snapshot for a project",
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

		items, err := services.Backlog.Load(backlogProject)
		if err != nil {
			return err
		}
		version, err := services.Backlog.Version(backlogProject)
		if err != nil {
			return err
		}

		fmt.Printf("Project %s (version %d, %d items)\n\n", backlogProject, version, len(items))
		fmt.Print(renderItems(items))
		return nil
	},
}

func init() {
	backlogCmd.Flags().StringVarP(&backlogProject, "project", "p", "", "project id")
	_ = backlogCmd.MarkFlagRequired("project")
	rootCmd.AddCommand(backlogCmd)
}
