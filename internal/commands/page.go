package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fureal/fureal/internal/config"
	"github.com/fureal/fureal/internal/pages"
	"github.com/fureal/fureal/internal/render"
)

var pageCmd = &cobra.Command{
	Use:       "page [home|about|faq]",
	Short:     "Show an informational page",
	Long:      `Print the Home, About or FAQ page. Without an argument the Home page is shown.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: pages.Names(),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := pages.Home
		if len(args) > 0 {
			name = args[0]
		}
		raw, _ := cmd.Flags().GetBool("raw")
		return printPage(cmd.OutOrStdout(), name, raw || !isStdoutTTY())
	},
}

func init() {
	pageCmd.Flags().Bool("raw", false, "Print the page markdown without rendering")
}

func printPage(out io.Writer, name string, raw bool) error {
	page, err := pages.Get(name)
	if err != nil {
		return err
	}

	if raw {
		fmt.Fprint(out, page.Body)
		return nil
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	opts := render.OptionsFromConfig(cfg).ForPage(getTerminalWidth() - 4)
	fmt.Fprintln(out, render.MarkdownOrPlain(page.Body, opts))
	return nil
}
