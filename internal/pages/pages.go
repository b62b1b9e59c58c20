// Package pages holds the informational pages shown next to the chat.
package pages

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed content/*.md
var content embed.FS

// Page names
const (
	Home  = "home"
	About = "about"
	FAQ   = "faq"
)

// Page is one informational screen
type Page struct {
	Name  string
	Title string // Navigation label
	Body  string // Markdown
}

var order = []struct{ name, title string }{
	{Home, "Home"},
	{About, "About"},
	{FAQ, "FAQ"},
}

// Names returns the page names in navigation order
func Names() []string {
	names := make([]string, len(order))
	for i, p := range order {
		names[i] = p.name
	}
	return names
}

// Get returns the page called name (case-insensitive)
func Get(name string) (Page, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range order {
		if p.name != name {
			continue
		}
		body, err := content.ReadFile("content/" + p.name + ".md")
		if err != nil {
			return Page{}, fmt.Errorf("failed to read page %s: %w", name, err)
		}
		return Page{Name: p.name, Title: p.title, Body: string(body)}, nil
	}
	return Page{}, fmt.Errorf("unknown page %q (available: %s)", name, strings.Join(Names(), ", "))
}

// All returns every page in navigation order
func All() []Page {
	out := make([]Page, 0, len(order))
	for _, p := range order {
		page, err := Get(p.name)
		if err != nil {
			continue
		}
		out = append(out, page)
	}
	return out
}
