// Package presenter provides consistent user-facing CLI output: success,
// error, warning, and informational messages with color support, quiet
// mode, and a simple interactive prompt.
package presenter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// ColorMode controls whether output is colorized.
type ColorMode int

const (
	// ColorAuto lets the color package detect terminal capabilities.
	ColorAuto ColorMode = iota
	// ColorAlways forces colored output.
	ColorAlways
	// ColorNever disables colored output.
	ColorNever
)

// TerminalPresenter writes user-facing messages to a terminal.
type TerminalPresenter struct {
	output      io.Writer
	errorOutput io.Writer
	input       io.Reader
	quiet       bool
}

// New creates a presenter on stdout/stderr with color mode detected from
// the environment.
func New() *TerminalPresenter {
	return NewWithOptions(os.Stdout, os.Stderr, detectColorMode())
}

// NewWithOptions creates a presenter with explicit streams and color mode.
func NewWithOptions(output, errorOutput io.Writer, mode ColorMode) *TerminalPresenter {
	switch mode {
	case ColorAlways:
		color.NoColor = false
	case ColorNever:
		color.NoColor = true
	}

	return &TerminalPresenter{
		output:      output,
		errorOutput: errorOutput,
		input:       os.Stdin,
	}
}

func detectColorMode() ColorMode {
	if os.Getenv("NO_COLOR") != "" {
		return ColorNever
	}
	switch os.Getenv("SKILLDECK_COLOR") {
	case "always", "force":
		return ColorAlways
	case "never", "off":
		return ColorNever
	default:
		return ColorAuto
	}
}

// Error displays an error with optional context to stderr. Errors are
// never suppressed by quiet mode.
func (p *TerminalPresenter) Error(err error, context string) {
	if err == nil {
		return
	}

	errorColor := color.New(color.FgRed, color.Bold)
	if context != "" {
		errorColor.Fprintf(p.errorOutput, "[ERROR] %s: %v\n", context, err)
	} else {
		errorColor.Fprintf(p.errorOutput, "[ERROR] %v\n", err)
	}
}

// Success displays a success message.
func (p *TerminalPresenter) Success(message string) {
	if p.quiet {
		return
	}
	color.New(color.FgGreen, color.Bold).Fprintf(p.output, "✓ %s\n", message)
}

// Warning displays a warning message.
func (p *TerminalPresenter) Warning(message string) {
	if p.quiet {
		return
	}
	color.New(color.FgYellow, color.Bold).Fprintf(p.output, "⚠ %s\n", message)
}

// Info displays a plain informational message.
func (p *TerminalPresenter) Info(message string) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.output, "%s\n", message)
}

// Section displays an underlined section header.
func (p *TerminalPresenter) Section(title string) {
	if p.quiet {
		return
	}
	headerColor := color.New(color.Bold)
	headerColor.Fprintf(p.output, "%s\n", title)
	headerColor.Fprintf(p.output, "%s\n", strings.Repeat("-", len(title)))
}

// Prompt asks a question and returns the trimmed response line.
func (p *TerminalPresenter) Prompt(question string, options ...string) string {
	promptColor := color.New(color.FgCyan)
	if len(options) > 0 {
		promptColor.Fprintf(p.output, "%s [%s]: ", question, strings.Join(options, "/"))
	} else {
		promptColor.Fprintf(p.output, "%s: ", question)
	}

	response, err := bufio.NewReader(p.input).ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(response)
}

// SetQuiet enables or disables quiet mode. Errors still print.
func (p *TerminalPresenter) SetQuiet(quiet bool) {
	p.quiet = quiet
}

// IsQuiet reports whether quiet mode is enabled.
func (p *TerminalPresenter) IsQuiet() bool {
	return p.quiet
}

var defaultPresenter = New()

// Error displays an error using the default presenter.
func Error(err error, context string) {
	defaultPresenter.Error(err, context)
}

// Success displays a success message using the default presenter.
func Success(message string) {
	defaultPresenter.Success(message)
}

// Warning displays a warning using the default presenter.
func Warning(message string) {
	defaultPresenter.Warning(message)
}

// Info displays an informational message using the default presenter.
func Info(message string) {
	defaultPresenter.Info(message)
}

// Section displays a section header using the default presenter.
func Section(title string) {
	defaultPresenter.Section(title)
}

// Prompt asks a question using the default presenter.
func Prompt(question string, options ...string) string {
	return defaultPresenter.Prompt(question, options...)
}

// SetQuiet toggles quiet mode on the default presenter.
func SetQuiet(quiet bool) {
	defaultPresenter.SetQuiet(quiet)
}
