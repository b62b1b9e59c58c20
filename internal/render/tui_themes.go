package render

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// TUITheme is the color scheme of the chat interface
type TUITheme struct {
	Name        string
	Description string

	Background lipgloss.Color
	Surface    lipgloss.Color
	Border     lipgloss.Color

	Primary   lipgloss.Color // assistant label, active tab
	Secondary lipgloss.Color // user label
	Accent    lipgloss.Color // audio marker, typing dots
	Warning   lipgloss.Color
	Error     lipgloss.Color

	Text     lipgloss.Color
	TextDim  lipgloss.Color
	TextMute lipgloss.Color
}

var (
	// FurealTheme is the default palette, teal and leaf green
	FurealTheme = TUITheme{
		Name:        "fureal",
		Description: "Fureal - calm teal with leaf green accents",

		Background: lipgloss.Color("#0f1c1f"),
		Surface:    lipgloss.Color("#17292d"),
		Border:     lipgloss.Color("#2f4f55"),

		Primary:   lipgloss.Color("#3cc8b4"),
		Secondary: lipgloss.Color("#5b9bd5"),
		Accent:    lipgloss.Color("#8fd16a"),
		Warning:   lipgloss.Color("#e8c468"),
		Error:     lipgloss.Color("#ef6f6c"),

		Text:     lipgloss.Color("#e3f1ef"),
		TextDim:  lipgloss.Color("#7f9c9a"),
		TextMute: lipgloss.Color("#3e5a5e"),
	}

	// TokyoNightTheme is a dark theme with blue accents
	TokyoNightTheme = TUITheme{
		Name:        "tokyonight",
		Description: "Tokyo Night - dark theme with blue accents",

		Background: lipgloss.Color("#1a1b26"),
		Surface:    lipgloss.Color("#24283b"),
		Border:     lipgloss.Color("#414868"),

		Primary:   lipgloss.Color("#7aa2f7"),
		Secondary: lipgloss.Color("#9ece6a"),
		Accent:    lipgloss.Color("#bb9af7"),
		Warning:   lipgloss.Color("#e0af68"),
		Error:     lipgloss.Color("#f7768e"),

		Text:     lipgloss.Color("#c0caf5"),
		TextDim:  lipgloss.Color("#565f89"),
		TextMute: lipgloss.Color("#3b4261"),
	}

	// DaylightTheme suits light terminal backgrounds
	DaylightTheme = TUITheme{
		Name:        "daylight",
		Description: "Daylight - for light terminal backgrounds",

		Background: lipgloss.Color("#fafafa"),
		Surface:    lipgloss.Color("#eef4f3"),
		Border:     lipgloss.Color("#b8cbc8"),

		Primary:   lipgloss.Color("#0f7d6e"),
		Secondary: lipgloss.Color("#2a62a8"),
		Accent:    lipgloss.Color("#4f8a2b"),
		Warning:   lipgloss.Color("#a8740b"),
		Error:     lipgloss.Color("#c23b38"),

		Text:     lipgloss.Color("#1d2b2a"),
		TextDim:  lipgloss.Color("#5d7270"),
		TextMute: lipgloss.Color("#a3b5b3"),
	}
)

var (
	themeMu         sync.RWMutex
	currentTUITheme = FurealTheme
)

// GetTUITheme returns the active theme
func GetTUITheme() TUITheme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return currentTUITheme
}

// SetTUITheme activates the theme called name. Unknown names are ignored.
func SetTUITheme(name string) bool {
	theme, ok := GetTUIThemeByName(name)
	if !ok {
		return false
	}
	themeMu.Lock()
	currentTUITheme = theme
	themeMu.Unlock()
	return true
}

// GetTUIThemeByName looks a theme up by name
func GetTUIThemeByName(name string) (TUITheme, bool) {
	for _, t := range AvailableTUIThemes() {
		if t.Name == name {
			return t, true
		}
	}
	return TUITheme{}, false
}

// AvailableTUIThemes lists every theme, default first
func AvailableTUIThemes() []TUITheme {
	return []TUITheme{FurealTheme, TokyoNightTheme, DaylightTheme}
}

// TUIThemeNames returns the theme names in display order
func TUIThemeNames() []string {
	themes := AvailableTUIThemes()
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}
