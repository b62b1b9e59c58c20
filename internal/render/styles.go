package render

import (
	"sort"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
)

// Glamour style names
const (
	StyleAuto  = styles.AutoStyle
	StyleDark  = styles.DarkStyle
	StyleLight = styles.LightStyle
	StyleNoTTY = styles.NoTTYStyle
	StyleASCII = styles.AsciiStyle
)

// IsBuiltinStyle reports whether style names a style shipped with glamour
func IsBuiltinStyle(style string) bool {
	if style == StyleAuto {
		return true
	}
	_, ok := styles.DefaultStyles[style]
	return ok
}

// StyleNames returns the builtin style names, "auto" first
func StyleNames() []string {
	names := make([]string, 0, len(styles.DefaultStyles)+1)
	for name := range styles.DefaultStyles {
		names = append(names, name)
	}
	sort.Strings(names)
	return append([]string{StyleAuto}, names...)
}

// styleOption maps a style name or file path to a glamour option
func styleOption(style string) glamour.TermRendererOption {
	switch {
	case style == "" || style == StyleAuto:
		return glamour.WithAutoStyle()
	case IsBuiltinStyle(style):
		return glamour.WithStandardStyle(style)
	default:
		return glamour.WithStylePath(style)
	}
}
