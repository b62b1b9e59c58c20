// Package render turns assistant replies and pages into styled terminal text.
package render

const (
	// minWidth keeps glamour from wrapping every word on its own line in a
	// tiny terminal
	minWidth = 20

	// maxReplyWidth caps chat bubbles; long lines are hard to read
	maxReplyWidth = 116
)

// Options configures the markdown renderer behavior.
type Options struct {
	// Width defines the maximum output width (default: 80)
	Width int

	// Style is a glamour style name ("dark", "light", "auto", ...) or a
	// path to a JSON style file
	Style string

	EnableEmoji      bool
	PreserveNewLines bool
	TableWrap        bool
	InlineTableLinks bool
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		Width:            80,
		Style:            StyleDark,
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// WithWidth returns Options with the specified width.
func (o Options) WithWidth(width int) Options {
	o.Width = width
	return o
}

// WithStyle returns Options with the specified style.
func (o Options) WithStyle(style string) Options {
	o.Style = style
	return o
}

// ForReply returns the options for one assistant reply rendered inside a
// bubble of the given content width. The markdown settings stay as the user
// configured them.
func (o Options) ForReply(width int) Options {
	o.Width = clampWidth(width, maxReplyWidth)
	return o
}

// ForPage returns the options for a built-in page. Pages are authored
// markdown, so soft line breaks reflow and table links stay inline.
func (o Options) ForPage(width int) Options {
	o.Width = clampWidth(width, 0)
	o.PreserveNewLines = false
	o.InlineTableLinks = true
	return o
}

// clampWidth bounds width to [minWidth, max]; max <= 0 means no upper bound
func clampWidth(width, max int) int {
	if width < minWidth {
		return minWidth
	}
	if max > 0 && width > max {
		return max
	}
	return width
}
