package printer

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
)

var (
	// Color definitions
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

var (
	out io.Writer = os.Stdout
	err io.Writer = os.Stderr
)

// SetOutput redirects human-oriented output. Commands point it at cobra's writers so
// tests can capture everything. A nil writer restores the process default.
func SetOutput(stdout, stderr io.Writer) {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	out, err = stdout, stderr
}

// Success prints a success message in green with a checkmark prefix
func Success(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "✓") {
		green.Fprintf(out, "✓ %s", msg)
	} else {
		green.Fprint(out, msg)
	}
}

// Info prints an informational message in the default color
func Info(format string, a ...any) {
	fmt.Fprintf(out, format, a...)
}

// Warning prints a warning message in yellow to stderr
func Warning(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "⚠️") {
		yellow.Fprintf(err, "⚠️  %s", msg)
	} else {
		yellow.Fprint(err, msg)
	}
}

// Step prints a step message with emphasis (used in multi-step operations)
func Step(format string, a ...any) {
	cyan.Fprintf(out, "→ %s", fmt.Sprintf(format, a...))
}

// Error creates a formatted error message with title, explanation, and suggestions
// Prints the formatted error to stderr with colors and returns a simple error for Cobra
func Error(title string, explanation string, suggestions []string) error {
	red.Fprintf(err, "%s\n\n", title)
	fmt.Fprintf(err, "%s\n", explanation)
	writeSuggestions(suggestions)

	// Return simple error for Cobra (won't be printed due to SilenceErrors)
	return fmt.Errorf("%s", title)
}

// ErrorWithContext creates a formatted error with context details, listed in key order
func ErrorWithContext(title string, explanation string, context map[string]string, suggestions []string) error {
	red.Fprintf(err, "%s\n\n", title)
	if explanation != "" {
		fmt.Fprintf(err, "%s\n", explanation)
	}

	if len(context) > 0 {
		keys := make([]string, 0, len(context))
		for key := range context {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		fmt.Fprintf(err, "\n")
		for _, key := range keys {
			fmt.Fprintf(err, "  %s: %s\n", key, context[key])
		}
	}

	writeSuggestions(suggestions)
	return fmt.Errorf("%s", title)
}

func writeSuggestions(suggestions []string) {
	if len(suggestions) == 0 {
		return
	}
	fmt.Fprintf(err, "\n")
	if len(suggestions) == 1 {
		fmt.Fprintf(err, "%s\n", suggestions[0])
		return
	}
	fmt.Fprintf(err, "Either:\n")
	for i, suggestion := range suggestions {
		fmt.Fprintf(err, "  %d. %s\n", i+1, suggestion)
	}
}

// Verdict writes the machine-readable summary line. It is never colored.
func Verdict(w io.Writer, ok bool, hands int) {
	status := "OK"
	if !ok {
		status = "FAIL"
	}
	fmt.Fprintf(w, "Verify: %s (hands=%d)\n", status, hands)
}

// Diagnostic writes one machine-readable "Error: " line. It is never colored.
func Diagnostic(w io.Writer, message string) {
	fmt.Fprintf(w, "Error: %s\n", message)
}
