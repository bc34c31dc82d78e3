// Package commands provides CLI commands for aichat.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/diogo/aichat/internal/models"
)

var (
	// Global flags
	modelFlag   string
	timeoutFlag int
	verboseFlag bool

	// Root-only flags
	fileFlag   string
	outputFlag string
	copyFlag   bool

	// Version info (set at build time)
	Version   = models.Version
	BuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "aichat [prompt]",
	Short: "Terminal chat client for Gemini models",
	Long: `aichat is a terminal chat client for the Gemini generateContent API.
Without input it opens an interactive chat; with a prompt it sends a single
message and prints the reply.

The API key is read from GEMINI_API_KEY (environment or .env file).

Examples:
  aichat                         Start interactive chat
  aichat "What is Go?"           Send a single message
  aichat -f prompt.md            Read the message from a file
  cat prompt.md | aichat         Read the message from stdin
  aichat -m pro "Explain CRDTs"  Use another model
  aichat "Hello" -o reply.md     Save the reply to a file
  aichat config                  Show the effective configuration`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Check for version flag
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Fprintf(cmd.OutOrStdout(), "aichat %s (built %s)\n", Version, BuildTime)
			return nil
		}

		prompt, ok, err := readPrompt(cmd, args)
		if err != nil {
			return err
		}

		deps, err := buildDependencies(overridesFrom(cmd))
		if err != nil {
			return err
		}
		defer deps.Close()

		// No input - open the chat view
		if !ok {
			return runChat(cmd.Context(), deps)
		}
		return runQuery(cmd, deps, prompt)
	},
}

// readPrompt resolves the one-shot prompt from the file flag, piped stdin or
// the positional argument, in that order. ok is false when none was given.
func readPrompt(cmd *cobra.Command, args []string) (prompt string, ok bool, err error) {
	if fileFlag != "" {
		data, err := os.ReadFile(fileFlag)
		if err != nil {
			return "", false, fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), true, nil
	}

	if in := cmd.InOrStdin(); isPiped(in) {
		data, err := io.ReadAll(in)
		if err != nil {
			return "", false, fmt.Errorf("failed to read stdin: %w", err)
		}
		if len(data) > 0 {
			return string(data), true, nil
		}
	}

	if len(args) > 0 {
		return args[0], true, nil
	}

	return "", false, nil
}

// isPiped reports whether r carries redirected input rather than a terminal
func isPiped(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return r != nil
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice == 0
}

// overridesFrom collects the global flags that were set on the command line
func overridesFrom(cmd *cobra.Command) Overrides {
	return Overrides{
		Model:      modelFlag,
		Timeout:    timeoutFlag,
		TimeoutSet: cmd.Flags().Changed("timeout"),
		Verbose:    verboseFlag,
	}
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var reported reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintln(os.Stderr, formatErrorMessage(err, "aichat"))
		}
		stop()
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "Model to use (flash, pro, lite or a full model id)")
	rootCmd.PersistentFlags().IntVar(&timeoutFlag, "timeout", 60, "Request timeout in seconds (0 disables)")
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "Log at debug level and print request details")
	rootCmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read prompt from file")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Save the reply to a file")
	rootCmd.Flags().BoolVar(&copyFlag, "copy", false, "Copy the reply to the clipboard")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	// Add subcommands
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(configCmd)
}
