package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/backloghq/groom/internal/infrastructure/watch"
	"github.com/backloghq/groom/internal/infrastructure/wiring"
	"github.com/backloghq/groom/pkg/domain/events"
)

var (
	timelineThread string
	timelineFollow bool
	timelineVerify bool
)

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Show the workflow event timeline",
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

		if timelineVerify {
			if err := services.Events.Verify(); err != nil {
				return NewCLIError("timeline integrity check failed", "The events file was modified outside groom", err)
			}
			fmt.Println("timeline hash chain is intact")
			return nil
		}

		printed := 0
		printNew := func() error {
			all, err := loadTimeline(services, timelineThread)
			if err != nil {
				return err
			}
			for _, ev := range all[min(printed, len(all)):] {
				printEvent(ev)
			}
			if len(all) > printed {
				printed = len(all)
			}
			return nil
		}

		if err := printNew(); err != nil {
			return err
		}
		if !timelineFollow {
			return nil
		}

		tail, err := watch.NewFileTail(services.Events.Path(), func() {
			if err := printNew(); err != nil {
				slog.Warn("failed to read new timeline entries", "error", err)
			}
		})
		if err != nil {
			return err
		}
		return tail.Run(cmd.Context())
	},
}

func loadTimeline(services *wiring.AppServices, threadID string) ([]events.WorkflowEvent, error) {
	if threadID != "" {
		return services.Events.LoadThread(threadID)
	}
	return services.Events.Load()
}

func printEvent(ev events.WorkflowEvent) {
	fmt.Printf("%s %s %s %s %s\n",
		dimStyle.Render(ev.Timestamp.Format("15:04:05")),
		idStyle.Render(shortID(ev.ThreadID)),
		titleStyle.Render(ev.Type),
		ev.Node,
		ev.Message)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	timelineCmd.Flags().StringVar(&timelineThread, "thread", "", "filter by thread id")
	timelineCmd.Flags().BoolVarP(&timelineFollow, "follow", "f", false, "keep watching for new events")
	timelineCmd.Flags().BoolVar(&timelineVerify, "verify", false, "verify the timeline hash chain")
	rootCmd.AddCommand(timelineCmd)
}
