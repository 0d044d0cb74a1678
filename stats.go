package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// statistics accumulates processing metrics across the run. The walker, the
// dispatcher and the assembly goroutine all record through it; every method
// takes the lock for a short critical section.
type statistics struct {
	mu    sync.Mutex
	start time.Time

	filesProcessed int
	directories    int

	textFiles       int
	binaryFiles     int
	unreadableFiles int

	skippedFiles map[skipReason]int
	skippedDirs  map[skipReason]int

	gitignoreFiles []string
	extensions     map[string]int
	totalBytes     int64
}

func newStatistics() *statistics {
	return &statistics{
		start:        time.Now(),
		skippedFiles: make(map[skipReason]int),
		skippedDirs:  make(map[skipReason]int),
		extensions:   make(map[string]int),
	}
}

func (s *statistics) recordTextFile(path string, size int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filesProcessed++
	s.textFiles++
	s.totalBytes += size
	s.countExtension(path)
}

func (s *statistics) recordBinaryFile(path string, size int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filesProcessed++
	s.binaryFiles++
	s.totalBytes += size
	s.countExtension(path)
}

func (s *statistics) recordUnreadableFile() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filesProcessed++
	s.unreadableFiles++
}

func (s *statistics) recordDirectory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.directories++
}

func (s *statistics) recordSkippedFile(reason skipReason) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skippedFiles[reason]++
}

func (s *statistics) recordSkippedDir(reason skipReason) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skippedDirs[reason]++
}

func (s *statistics) recordGitignore(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gitignoreFiles = append(s.gitignoreFiles, path)
}

// countExtension must be called with the lock held.
func (s *statistics) countExtension(path string) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext != "" {
		s.extensions[ext]++
	}
}

func (s *statistics) elapsed() time.Duration {
	return time.Since(s.start)
}

// skipReasonOrder fixes the rendering order of skip-reason breakdowns.
var skipReasonOrder = []skipReason{
	skipHidden, skipIgnored, skipExcluded, skipOversize, skipBudget, skipUnreadable,
}

// format renders the statistics block shown on stderr after a run.
func (s *statistics) format() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)

	var lines []string
	lines = append(lines, bold.Sprintf("Processed %d files and %d directories in %.2fs",
		s.filesProcessed, s.directories, s.elapsed().Seconds()))

	if len(s.gitignoreFiles) > 0 {
		lines = append(lines, fmt.Sprintf("Using .gitignore: %s", strings.Join(s.gitignoreFiles, ", ")))
	}

	if s.filesProcessed > 0 {
		lines = append(lines, fmt.Sprintf("Files: %d text, %d binary, %d unreadable",
			s.textFiles, s.binaryFiles, s.unreadableFiles))
	}

	if line := formatSkips("files", s.skippedFiles); line != "" {
		lines = append(lines, line)
	}
	if line := formatSkips("directories", s.skippedDirs); line != "" {
		lines = append(lines, line)
	}

	if len(s.extensions) > 0 {
		type extCount struct {
			ext   string
			count int
		}
		counts := make([]extCount, 0, len(s.extensions))
		for ext, n := range s.extensions {
			counts = append(counts, extCount{ext, n})
		}
		sort.Slice(counts, func(i, j int) bool {
			if counts[i].count != counts[j].count {
				return counts[i].count > counts[j].count
			}
			return counts[i].ext < counts[j].ext
		})
		if len(counts) > 10 {
			counts = counts[:10]
		}
		tops := make([]string, len(counts))
		for i, c := range counts {
			tops[i] = fmt.Sprintf(".%s (%d)", c.ext, c.count)
		}
		lines = append(lines, fmt.Sprintf("Top extensions: %s", strings.Join(tops, ", ")))
	}

	if secs := s.elapsed().Seconds(); secs > 0 {
		lines = append(lines, cyan.Sprintf("Speed: %.0f files/sec, %.2f MB/sec",
			float64(s.filesProcessed)/secs,
			float64(s.totalBytes)/1024/1024/secs))
	}

	return strings.Join(lines, "\n")
}

func formatSkips(what string, skips map[skipReason]int) string {
	total := 0
	var reasons []string
	for _, r := range skipReasonOrder {
		if n := skips[r]; n > 0 {
			total += n
			reasons = append(reasons, fmt.Sprintf("%d %s", n, r))
		}
	}
	if total == 0 {
		return ""
	}
	return fmt.Sprintf("Skipped %d %s (%s)", total, what, strings.Join(reasons, ", "))
}
