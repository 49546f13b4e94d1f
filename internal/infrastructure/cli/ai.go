package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	infraai "github.com/backloghq/groom/internal/infrastructure/ai"
	"github.com/backloghq/groom/internal/infrastructure/config"
	"github.com/backloghq/groom/pkg/storage"
)

var (
	aiProvider string
	aiModel    string
	aiTimeout  int
)

var aiCmd = &cobra.Command{
	Use:   "ai",
	Short: "Manage AI provider settings",
}

var aiConfigureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Set the AI provider and model for this workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := getProjectRoot()
		if err != nil {
			return err
		}
		ws := storage.NewWorkspace(root)
		if !ws.IsInitialized() {
			return NewCLIError("groom is not initialized in this directory", "Run 'groom init' first", nil)
		}

		// Probe the provider so a typo fails here, not mid-workflow.
		if _, err := infraai.NewProvider(aiProvider, aiModel); err != nil {
			return NewCLIError(fmt.Sprintf("unknown provider %q", aiProvider), "Supported providers: ollama, openai, anthropic, mock", err)
		}

		cfg := &config.AIConfig{
			Provider:       aiProvider,
			Model:          aiModel,
			TimeoutSeconds: aiTimeout,
		}
		if err := config.SaveAIConfig(ws, cfg); err != nil {
			return NewCLIError("failed to save AI config", "Check directory permissions", err)
		}
		fmt.Printf("configured provider %s", cfg.Provider)
		if cfg.Model != "" {
			fmt.Printf(" with model %s", cfg.Model)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	aiConfigureCmd.Flags().StringVar(&aiProvider, "provider", "ollama", "AI provider (ollama, openai, anthropic, mock)")
	aiConfigureCmd.Flags().StringVar(&aiModel, "model", "", "model name")
	aiConfigureCmd.Flags().IntVar(&aiTimeout, "timeout", 0, "per-request timeout in seconds")
	aiCmd.AddCommand(aiConfigureCmd)
	rootCmd.AddCommand(aiCmd)
}
