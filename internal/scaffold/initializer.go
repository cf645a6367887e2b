// Package scaffold writes a starter holdcheck.yml.
package scaffold

import (
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dyluth/holdcheck/internal/config"
)

//go:embed templates/*
var templatesFS embed.FS

// Template returns the starter configuration.
func Template() ([]byte, error) {
	data, err := templatesFS.ReadFile("templates/holdcheck.yml.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to read holdcheck.yml template: %w", err)
	}
	return data, nil
}

// Initialize writes the starter configuration to config.DefaultFile inside dir and
// returns its path. An existing file is only replaced when force is set.
func Initialize(dir string, force bool) (string, error) {
	path := filepath.Join(dir, config.DefaultFile)

	if !force {
		if err := CheckExisting(dir); err != nil {
			return "", err
		}
	}

	data, err := Template()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	// the written file must load cleanly
	if _, err := config.Load(path); err != nil {
		return "", fmt.Errorf("created %s is invalid: %w", path, err)
	}
	return path, nil
}

// PrintSuccess prints the created file and next steps.
func PrintSuccess(w io.Writer, path string) {
	fmt.Fprintln(w, "\n✅ Successfully initialized holdcheck!")
	fmt.Fprintln(w, "\nCreated:")
	fmt.Fprintf(w, "  ✓ %s\n", path)
	fmt.Fprintln(w, "\nNext steps:")
	fmt.Fprintln(w, "  1. Set verify.chip_unit to the smallest chip in play")
	fmt.Fprintln(w, "  2. Run 'holdcheck verify hands.jsonl'")
}
