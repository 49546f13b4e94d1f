package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/backloghq/groom/pkg/storage"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a groom workspace in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := getProjectRoot()
		if err != nil {
			return err
		}
		ws := storage.NewWorkspace(root)
		if ws.IsInitialized() {
			fmt.Println("groom workspace already initialized")
			return nil
		}
		if err := ws.Initialize(); err != nil {
			return NewCLIError("failed to initialize workspace", "Check directory permissions", err)
		}
		fmt.Printf("initialized groom workspace in %s\n", ws.BaseDir())
		fmt.Println("next: groom ask \"break down my project\" -p <project>")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
