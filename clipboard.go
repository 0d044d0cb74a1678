package main

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// validateClipboard fails fast when no clipboard mechanism is available, so
// the user learns about it before any traversal work is done.
func validateClipboard() error {
	if clipboard.Unsupported {
		return fmt.Errorf("no clipboard utility available (on Linux install xclip or xsel), or use --stdout")
	}
	return nil
}

func writeClipboard(content string) error {
	if err := clipboard.WriteAll(content); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}
