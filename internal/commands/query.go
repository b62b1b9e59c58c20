package commands

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	apierrors "github.com/fureal/fureal/internal/errors"
	"github.com/fureal/fureal/internal/models"
	"github.com/fureal/fureal/internal/render"
)

// Gradient colors for animation, teal to leaf green
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#1f8a80"),
	lipgloss.Color("#2aa79a"),
	lipgloss.Color("#3cc8b4"),
	lipgloss.Color("#5fd3a0"),
	lipgloss.Color("#8fd16a"),
	lipgloss.Color("#5fd3a0"),
	lipgloss.Color("#3cc8b4"),
	lipgloss.Color("#2aa79a"),
}

var (
	colorText     = lipgloss.Color("#e3f1ef")
	colorTextDim  = lipgloss.Color("#7f9c9a")
	colorTextMute = lipgloss.Color("#3e5a5e")
	colorSuccess  = lipgloss.Color("#8fd16a")
	colorPrimary  = lipgloss.Color("#3cc8b4")
	colorAccent   = lipgloss.Color("#e8c468")
	colorError    = lipgloss.Color("#ef6f6c")
)

// Styles matching the chat TUI
var (
	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true).
				MarginBottom(0)

	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Foreground(colorText).
				Padding(0, 1).
				MarginTop(1).
				MarginBottom(1)

	audioHintStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Italic(true)
)

// copyToClipboard is replaced in tests
var copyToClipboard = clipboard.WriteAll

// spinner handles the animated loading indicator
type spinner struct {
	out     io.Writer
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool // Flag to prevent double-close
}

// newSpinner creates a new animated spinner writing to out
func newSpinner(out io.Writer, message string) *spinner {
	return &spinner{
		out:     out,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start begins the animation
func (s *spinner) start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		// Hide cursor
		fmt.Fprint(s.out, "\033[?25l")

		for {
			select {
			case <-s.stop:
				// Clear line and show cursor
				fmt.Fprint(s.out, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// render draws the current animation frame
func (s *spinner) render() {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

	spinColor := gradientColors[s.frame%len(gradientColors)]
	spinnerChar := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[s.frame%len(chars)])

	// Three typing dots, one lit per step like the chat indicator
	var dots strings.Builder
	lit := (s.frame / 3) % 3
	for i := 0; i < 3; i++ {
		if i == lit {
			dots.WriteString(lipgloss.NewStyle().Foreground(colorSuccess).Render("●"))
		} else {
			dots.WriteString(lipgloss.NewStyle().Foreground(colorTextMute).Render("●"))
		}
	}

	msg := lipgloss.NewStyle().Foreground(colorText).Render(s.message)
	fmt.Fprintf(s.out, "\r\033[K%s %s %s", spinnerChar, msg, dots.String())
}

// stopOnce safely closes the stop channel only once
func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

// stopWithSuccess stops the spinner and shows success message
func (s *spinner) stopWithSuccess(message string) {
	s.stopOnce()
	<-s.done

	checkmark := lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("✓")
	msg := lipgloss.NewStyle().Foreground(colorSuccess).Render(message)
	fmt.Fprintf(s.out, "%s %s\n", checkmark, msg)
}

// stopWithError stops the spinner and shows error
func (s *spinner) stopWithError() {
	s.stopOnce()
	<-s.done
}

// queryOptions controls how a one-shot reply is delivered
type queryOptions struct {
	raw    bool   // Only the reply text, no decoration
	output string // Write the reply here instead of stdout
	play   bool   // Play the reply audio after printing
}

// runQuery sends one message through the coordinator and prints the reply.
// A failed exchange prints the fallback reply like the chat does; details
// are in the log.
func runQuery(ctx context.Context, deps *Dependencies, message string, opts queryOptions, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("message cannot be empty")
	}

	var spin *spinner
	if !opts.raw {
		spin = newSpinner(stderr, models.AssistantName+" is typing")
		spin.start()
	}

	reply, err := deps.Sender.Send(ctx, message)
	if err != nil {
		if spin != nil {
			spin.stopWithError()
		}
		return fmt.Errorf("send failed: %w", err)
	}
	if spin != nil {
		spin.stopWithSuccess("Reply received")
	}

	if err := deliverReply(reply, opts, deps, stdout, stderr); err != nil {
		return err
	}

	if opts.play {
		return playReply(ctx, deps, reply, opts.raw, stderr)
	}
	return nil
}

// deliverReply writes the reply text to a file or stdout
func deliverReply(reply models.Message, opts queryOptions, deps *Dependencies, stdout, stderr io.Writer) error {
	text := reply.Text

	// Raw output mode: output only the raw text
	if opts.raw {
		if opts.output != "" {
			if err := os.WriteFile(opts.output, []byte(text), 0o644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			return nil
		}
		fmt.Fprint(stdout, text)
		return nil
	}

	fmt.Fprintln(stderr)

	if deps.Config.CopyToClipboard {
		if err := copyToClipboard(text); err != nil {
			warnMsg := lipgloss.NewStyle().Foreground(colorError).Render(
				fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err),
			)
			fmt.Fprintln(stderr, warnMsg)
		} else {
			clipMsg := lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard")
			fmt.Fprintln(stderr, clipMsg)
		}
	}

	if opts.output != "" {
		if err := os.WriteFile(opts.output, []byte(text), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		successMsg := lipgloss.NewStyle().Foreground(colorSuccess).Render(
			fmt.Sprintf("✓ Reply saved to %s", opts.output),
		)
		fmt.Fprintln(stderr, successMsg)
		return nil
	}

	bubbleWidth := getTerminalWidth() - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}
	contentWidth := bubbleWidth - 4

	fmt.Fprintln(stdout, assistantLabelStyle.Render("🌿 "+models.AssistantName))

	renderOpts := render.OptionsFromConfig(deps.Config).ForReply(contentWidth)
	rendered := render.MarkdownOrPlain(text, renderOpts)
	fmt.Fprintln(stdout, assistantBubbleStyle.Width(bubbleWidth).Render(rendered))

	if reply.HasAudio() && !opts.play {
		fmt.Fprintln(stderr, audioHintStyle.Render("🔊 This reply has audio. Run again with --play to hear it"))
	}
	return nil
}

// playReply plays the reply audio, if any, and reports failures
func playReply(ctx context.Context, deps *Dependencies, reply models.Message, quiet bool, stderr io.Writer) error {
	if !reply.HasAudio() {
		if !quiet {
			fmt.Fprintln(stderr, lipgloss.NewStyle().Foreground(colorTextDim).Render("This reply has no audio"))
		}
		return nil
	}
	if deps.Player == nil {
		return apierrors.ErrNoPlayer
	}

	var spin *spinner
	if !quiet {
		spin = newSpinner(stderr, "Playing reply")
		spin.start()
	}

	if err := deps.Player.Play(ctx, reply.Audio); err != nil {
		if spin != nil {
			spin.stopWithError()
		}
		return fmt.Errorf("playback failed: %w", err)
	}
	if spin != nil {
		spin.stopWithSuccess("Played")
	}
	return nil
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // default width
	}
	return width
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// formatErrorMessage formats an error with additional context from structured errors
func formatErrorMessage(err error, context string) string {
	if err == nil {
		return ""
	}

	errorStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", context, err)))

	// Extract additional context from structured errors
	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	if endpoint := apierrors.GetEndpoint(err); endpoint != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", endpoint)))
	}

	if body := apierrors.GetResponseBody(err); body != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n\n  %s", strings.ReplaceAll(body, "\n", "\n  "))))
		return sb.String()
	}

	switch {
	case apierrors.IsNetworkError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Is the backend running? Check it with 'fureal config show'"))
	case apierrors.IsTimeoutError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: The backend took too long. Raise request_timeout or try again"))
	case stderrors.Is(err, apierrors.ErrNoPlayer):
		sb.WriteString(dimStyle.Render("\n  Hint: Install mpv or ffplay, or run 'fureal config set audio_player <command>'"))
	case apierrors.IsAudioError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: The audio could not be fetched or played. Check audio_player"))
	}

	return sb.String()
}
