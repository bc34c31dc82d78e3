package commands

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/diogo/aichat/internal/config"
	"github.com/diogo/aichat/internal/render"
)

// NewConfigCmd creates the config command and its init subcommand
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Print the configuration after applying the config file, .env,
environment variables and command-line flags. The API key is masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			applyOverrides(&cfg, overridesFrom(cmd))
			return printConfig(cmd.OutOrStdout(), cfg)
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.GetConfigPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
			}
			if err := config.SaveConfig(config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	cmd.AddCommand(initCmd)

	return cmd
}

var configCmd = NewConfigCmd()

// printConfig writes one key/value line per setting
func printConfig(w io.Writer, cfg config.Config) error {
	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}
	logPath, err := config.GetLogPath(cfg)
	if err != nil {
		return err
	}

	timeout := "disabled"
	if cfg.RequestTimeout > 0 {
		timeout = strconv.Itoa(cfg.RequestTimeout) + "s"
	}

	keyStyle := lipgloss.NewStyle().Foreground(colorPrimary).Bold(true).Width(20)
	rows := [][2]string{
		{"config_file", path},
		{"api_key", config.MaskSecret(cfg.APIKey)},
		{"model", cfg.Model},
		{"base_url", cfg.BaseURL},
		{"request_timeout", timeout},
		{"log_file", logPath},
		{"log_level", cfg.LogLevel},
		{"tui_theme", cfg.TUITheme},
		{"markdown_style", cfg.Markdown.Style},
		{"copy_to_clipboard", strconv.FormatBool(cfg.CopyToClipboard)},
	}

	for _, row := range rows {
		fmt.Fprintf(w, "%s %s\n", keyStyle.Render(row[0]), row[1])
	}

	fmt.Fprintf(w, "\n%s %v\n", keyStyle.Render("themes"), render.TUIThemeNames())
	return nil
}
