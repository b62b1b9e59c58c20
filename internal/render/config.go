package render

import (
	"github.com/fureal/fureal/internal/config"
)

// OptionsFromConfig builds render options from the markdown section of cfg.
// Environment overrides were already applied by config.LoadConfig.
func OptionsFromConfig(cfg config.Config) Options {
	opts := DefaultOptions()

	md := cfg.Markdown
	if md.Style != "" {
		opts.Style = md.Style
	}
	opts.EnableEmoji = md.EnableEmoji
	opts.PreserveNewLines = md.PreserveNewLines
	opts.TableWrap = md.TableWrap
	opts.InlineTableLinks = md.InlineTableLinks

	return opts
}

// LoadOptions reads the user configuration and returns render options with
// the given width. A broken config file falls back to the defaults.
func LoadOptions(width int) Options {
	cfg, err := config.LoadConfig()
	if err != nil {
		return DefaultOptions().WithWidth(width)
	}
	return OptionsFromConfig(cfg).WithWidth(width)
}
