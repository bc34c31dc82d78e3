package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/diogo/aichat/internal/render"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session.

Enter or Ctrl+S sends the message. Alt+Enter is ignored.
Press Esc or Ctrl+C to end the session.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDependencies(overridesFrom(cmd))
		if err != nil {
			return err
		}
		defer deps.Close()

		return runChat(cmd.Context(), deps)
	},
}

func runChat(ctx context.Context, deps *Dependencies) error {
	deps.Logger.Info().Str("model", deps.ModelName()).Msg("chat started")
	defer func() { deps.Logger.Info().Msg("chat ended") }()

	opts := render.OptionsFromConfig(deps.Config.Markdown)
	return deps.TUI.RunChat(ctx, deps.Dispatcher, deps.ModelName(), opts)
}
