// Package commands provides CLI commands for fureal.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	backendFlag string
	verboseFlag bool

	// Root flags
	outputFlag string
	fileFlag   string
	rawFlag    bool
	playFlag   bool

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "fureal [message]",
	Short: "Terminal client for the Fureal support assistant",
	Long: `fureal is a terminal client for Fureal, a customer support chatbot.
Each message is sent to the inference backend, which answers with text
and, optionally, synthesized speech you can play back.

Examples:
  fureal                                Start the interactive chat
  fureal "Where is my order?"           Ask a single question
  fureal -f question.md                 Read the message from a file
  echo "Hi" | fureal                    Read the message from stdin
  fureal "Hi" --play                    Play the spoken reply
  fureal "Hi" -o reply.md               Save the reply to a file
  fureal page about                     Show the About page
  fureal config set backend_url http://localhost:8000`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Fprintf(cmd.OutOrStdout(), "fureal %s (built %s)\n", Version, BuildTime)
			return nil
		}

		message, ok, err := readMessage(args, os.Stdin, stdinIsPiped())
		if err != nil {
			return err
		}

		// No input: the chat needs a terminal
		if !ok && !isStdoutTTY() {
			return cmd.Help()
		}

		deps, err := NewDependencies(verboseFlag)
		if err != nil {
			return err
		}
		defer deps.Close()

		if ok {
			opts := queryOptions{
				raw:    rawFlag || !isStdoutTTY(),
				output: outputFlag,
				play:   playFlag,
			}
			return runQuery(cmd.Context(), deps, message, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		}
		return runChat(cmd.Context(), deps, "")
	},
}

// readMessage picks the message from -f, piped stdin or the positional
// argument, in that order. ok is false when none was given.
func readMessage(args []string, stdin io.Reader, piped bool) (string, bool, error) {
	if fileFlag != "" {
		data, err := os.ReadFile(fileFlag)
		if err != nil {
			return "", false, fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), true, nil
	}

	if piped {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", false, fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), true, nil
	}

	if len(args) > 0 {
		return args[0], true, nil
	}
	return "", false, nil
}

// stdinIsPiped reports whether stdin is a pipe or file rather than a terminal
func stdinIsPiped() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Error"))
		stop()
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "",
		"Backend base URL (default from config, e.g. http://localhost:8000)")
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false,
		"Write debug logs to the log file")

	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Save reply to file")
	rootCmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read message from file")
	rootCmd.Flags().BoolVar(&rawFlag, "raw", false, "Print the reply text without decoration")
	rootCmd.Flags().BoolVar(&playFlag, "play", false, "Play the reply audio when available")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	// Add subcommands
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(pageCmd)
	rootCmd.AddCommand(configCmd)
}
