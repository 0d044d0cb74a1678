package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// result is the outcome of a run: the assembled output, whether the total
// ceiling truncated it, and the accumulated statistics.
type result struct {
	content   string
	truncated bool
	stats     *statistics
}

type readJob struct {
	seq  int
	cand candidate
}

type readResult struct {
	seq int
	rec fileRecord
}

// collect walks the roots and assembles the ordered output. File reads run
// on a bounded worker pool; emission order always equals traversal order,
// enforced by a reorder buffer keyed by dispatch sequence number. An error
// is returned only when every root failed.
func collect(roots []string, opts options, log *zap.SugaredLogger) (result, error) {
	stats := newStatistics()
	res := newIgnoreResolver(opts.excludes, opts.includeAll)
	w := newWalker(res, stats, log)

	workers := opts.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	log.Debugw("starting collection", "roots", roots, "workers", workers)

	cands := make(chan candidate, 64)
	rootErrs := make(chan []error, 1)
	go func() { rootErrs <- w.walkAll(roots, cands) }()

	jobs := make(chan readJob, workers)
	results := make(chan readResult, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results <- readResult{seq: j.seq, rec: readFile(j.cand, opts.includeAll)}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	agg := newAssembler(opts.maxSize, stats, log)
	done := make(chan struct{})
	go func() {
		defer close(done)
		agg.assemble(results)
	}()

	// Dispatch in traversal order. This loop owns sequence numbering; the
	// per-file ceiling is checked here so oversized files are never read.
	seq := 0
	for c := range cands {
		if c.size > opts.maxFileSize {
			stats.recordSkippedFile(skipOversize)
			log.Debugw("skipping oversized file", "path", c.path, "size", c.size)
			continue
		}
		if agg.truncated.Load() {
			// The budget is already exhausted, so this file's outcome is
			// decided; skip the read entirely.
			stats.recordSkippedFile(skipBudget)
			continue
		}
		jobs <- readJob{seq: seq, cand: c}
		seq++
	}
	close(jobs)
	<-done

	if errs := <-rootErrs; len(errs) > 0 && len(errs) == len(roots) {
		return result{}, fmt.Errorf("all paths failed: %w", errs[0])
	}

	return result{
		content:   agg.content(),
		truncated: agg.truncated.Load(),
		stats:     stats,
	}, nil
}

// readFile reads and classifies one candidate on a worker goroutine. It
// never touches shared state; statistics for the outcome are recorded by the
// assembler, in traversal order, so counts do not depend on scheduling.
func readFile(c candidate, includeAll bool) fileRecord {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return fileRecord{path: c.path, disp: skippedFile, reason: skipUnreadable}
	}

	prefix := data
	if len(prefix) > binaryCheckWindow {
		prefix = prefix[:binaryCheckWindow]
	}
	if classify(prefix) == classBinary {
		if includeAll {
			// Embedded verbatim: raw bytes, no escaping.
			return fileRecord{path: c.path, disp: includedBinary, content: data}
		}
		return fileRecord{path: c.path, disp: markedBinary}
	}
	return fileRecord{path: c.path, disp: includedText, content: data}
}

// assembler re-sequences completed reads and applies the total-output budget.
// The check-and-add happens under one short critical section per file, so two
// files can never jointly overshoot the ceiling.
type assembler struct {
	maxSize   int64
	stats     *statistics
	log       *zap.SugaredLogger
	truncated atomic.Bool

	mu    sync.Mutex
	out   strings.Builder
	total int64
}

func newAssembler(maxSize int64, stats *statistics, log *zap.SugaredLogger) *assembler {
	return &assembler{maxSize: maxSize, stats: stats, log: log}
}

// assemble drains worker results, buffering completed-but-not-yet-emittable
// records until their predecessors in traversal order are ready.
func (a *assembler) assemble(results <-chan readResult) {
	pending := make(map[int]fileRecord)
	next := 0
	for r := range results {
		pending[r.seq] = r.rec
		for {
			rec, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			a.emit(rec)
			next++
		}
	}
}

func (a *assembler) emit(rec fileRecord) {
	if rec.disp == skippedFile {
		// Workers only report unreadable files as skipped.
		a.stats.recordUnreadableFile()
		a.log.Debugw("unreadable file", "path", rec.path)
		return
	}
	if a.truncated.Load() {
		a.stats.recordSkippedFile(skipBudget)
		return
	}

	entry := formatEntry(rec)
	size := int64(len(entry))

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.total+size > a.maxSize {
		a.truncated.Store(true)
		a.stats.recordSkippedFile(skipBudget)
		a.log.Debugw("total size limit reached", "path", rec.path,
			"collected", a.total, "limit", a.maxSize)
		return
	}
	a.total += size
	a.out.WriteString(entry)

	switch rec.disp {
	case includedText:
		a.stats.recordTextFile(rec.path, size)
	case includedBinary, markedBinary:
		a.stats.recordBinaryFile(rec.path, size)
	}
}

func (a *assembler) content() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.out.String()
}

// formatEntry renders one file as a header line, the content or the binary
// marker, and a blank separator line. The budget is charged for the full
// rendered length, so the assembled output can never exceed the ceiling.
func formatEntry(rec fileRecord) string {
	var b strings.Builder
	b.WriteString("--- ")
	b.WriteString(rec.path)
	b.WriteString(" ---\n")
	if rec.disp == markedBinary {
		b.WriteString(binaryMarker)
		b.WriteString("\n")
	} else {
		b.Write(rec.content)
		if len(rec.content) > 0 && rec.content[len(rec.content)-1] != '\n' {
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	return b.String()
}
