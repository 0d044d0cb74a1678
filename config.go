package main

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Default budgets, overridable via flags or the config file.
const (
	defaultMaxSize     = 5 * 1024 * 1024 // total output ceiling
	defaultMaxFileSize = 500 * 1024      // per-file ceiling
)

// binaryCheckWindow is how much of a file's prefix the classifier inspects.
const binaryCheckWindow = 8192

// options is the validated configuration handed to the core. Size strings
// have already been parsed to byte counts by the CLI layer.
type options struct {
	includeAll  bool
	maxSize     int64
	maxFileSize int64
	excludes    []string
	workers     int
}

func defaultOptions() options {
	return options{
		maxSize:     defaultMaxSize,
		maxFileSize: defaultMaxFileSize,
	}
}

// parseSize converts a human-readable size string ("500KB", "1.5MB", "1G",
// "100") into a byte count.
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}

	split := len(s)
	for i, c := range s {
		if unicode.IsLetter(c) {
			split = i
			break
		}
	}
	numberPart := strings.TrimSpace(s[:split])
	unitPart := strings.TrimSpace(s[split:])

	number, err := strconv.ParseFloat(numberPart, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", numberPart)
	}
	if number < 0 {
		return 0, fmt.Errorf("size cannot be negative")
	}

	var multiplier float64
	switch unitPart {
	case "", "B":
		multiplier = 1
	case "KB", "K":
		multiplier = 1024
	case "MB", "M":
		multiplier = 1024 * 1024
	case "GB", "G":
		multiplier = 1024 * 1024 * 1024
	default:
		return 0, fmt.Errorf("unknown unit: %s. Use B, KB, MB, or GB", unitPart)
	}

	size := int64(number * multiplier)
	if size == 0 {
		return 0, fmt.Errorf("size must be greater than 0")
	}
	return size, nil
}
