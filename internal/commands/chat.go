package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fureal/fureal/internal/pages"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session with Fureal.

The conversation lives in memory for the length of the session.
Use Tab to visit the Home, About and FAQ pages, /help for commands,
and 'exit', 'quit', Esc or Ctrl+C to end the session.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := NewDependencies(verboseFlag)
		if err != nil {
			return err
		}
		defer deps.Close()

		page, _ := cmd.Flags().GetString("page")
		return runChat(cmd.Context(), deps, page)
	},
}

func init() {
	chatCmd.Flags().String("page", "", "Open on a page instead of the chat (home, about, faq)")
}

func runChat(ctx context.Context, deps *Dependencies, startPage string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if startPage != "" {
		page, err := pages.Get(startPage)
		if err != nil {
			return err
		}
		startPage = page.Name
	}

	opts, err := deps.tuiOptions(startPage)
	if err != nil {
		return err
	}

	if err := deps.TUI.RunChat(ctx, deps.State, deps.Sender, opts); err != nil {
		return fmt.Errorf("chat session failed: %w", err)
	}
	deps.Logger.Info("chat session ended", zap.Int("messages", deps.State.Len()))
	return nil
}
