package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/fureal/fureal/internal/config"
)

// newConfigCmd creates the config command tree
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
		Long: `Show or change fureal settings stored in ~/.fureal/config.json.
The file may contain comments and trailing commas.

Set FUREAL_HOME to use another directory, FUREAL_BACKEND_URL to override
the backend and GLAMOUR_STYLE to override the markdown style.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.OutOrStdout())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.GetConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting",
		Long:  "Change one setting and save the file.\n\nKeys:\n  " + strings.Join(config.Keys(), "\n  "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfig(cmd.OutOrStdout(), args[0], args[1])
		},
	})

	return cmd
}

var configCmd = newConfigCmd()

func showConfig(out io.Writer) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}

func setConfig(out io.Writer, key, value string) error {
	cfg, err := config.LoadFile()
	if err != nil {
		return err
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := config.SaveConfig(cfg); err != nil {
		return err
	}

	msg := lipgloss.NewStyle().Foreground(colorSuccess).Render(
		fmt.Sprintf("✓ %s = %s", strings.ToLower(strings.TrimSpace(key)), strings.TrimSpace(value)),
	)
	fmt.Fprintln(out, msg)
	return nil
}
