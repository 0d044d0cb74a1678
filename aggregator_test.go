package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func runCollect(t *testing.T, roots []string, opts options) result {
	t.Helper()
	res, err := collect(roots, opts, zap.NewNop().Sugar())
	require.NoError(t, err)
	return res
}

func textEntry(path, content string) string {
	return formatEntry(fileRecord{path: path, disp: includedText, content: []byte(content)})
}

func TestCollectSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.txt")
	writeFile(t, path, "test content\n")

	res := runCollect(t, []string{dir}, defaultOptions())
	assert.Equal(t, textEntry(path, "test content\n"), res.content)
	assert.False(t, res.truncated)
	assert.Equal(t, 1, res.stats.textFiles)
}

func TestCollectEmptyDirectory(t *testing.T) {
	res := runCollect(t, []string{t.TempDir()}, defaultOptions())
	assert.Empty(t, res.content)
	assert.False(t, res.truncated)
}

func TestCollectHeaderAndSeparator(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "no trailing newline")
	writeFile(t, filepath.Join(dir, "b.txt"), "ends with one\n")

	res := runCollect(t, []string{dir}, defaultOptions())
	want := textEntry(filepath.Join(dir, "a.txt"), "no trailing newline") +
		textEntry(filepath.Join(dir, "b.txt"), "ends with one\n")
	assert.Equal(t, want, res.content)
	assert.True(t, strings.Contains(res.content, "--- "+filepath.Join(dir, "a.txt")+" ---\n"))
}

func TestCollectBinaryMarkerByDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "binary.dat")
	require.NoError(t, os.WriteFile(path, make([]byte, 100), 0o644))

	res := runCollect(t, []string{dir}, defaultOptions())
	assert.Equal(t, "--- "+path+" ---\n"+binaryMarker+"\n\n", res.content)
	assert.Equal(t, 1, res.stats.binaryFiles)
	assert.Equal(t, 0, res.stats.textFiles)
}

func TestCollectBinaryVerbatimWithAll(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "binary.dat")
	raw := append([]byte{0x00, 0x01, 0xff, 0xfe}, []byte("payload")...)
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	opts := defaultOptions()
	opts.includeAll = true
	res := runCollect(t, []string{dir}, opts)

	// Round-trip fidelity: the raw bytes are embedded unmodified.
	assert.True(t, strings.Contains(res.content, string(raw)))
	assert.False(t, strings.Contains(res.content, binaryMarker))
	assert.Equal(t, 1, res.stats.binaryFiles)
}

func TestCollectSkipsOversizedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "small.txt"), "small content")
	large := strings.Repeat("x", 600_000)
	writeFile(t, filepath.Join(dir, "large.txt"), large)

	res := runCollect(t, []string{dir}, defaultOptions())
	assert.True(t, strings.Contains(res.content, "small content"))
	assert.False(t, strings.Contains(res.content, large))
	assert.Equal(t, 1, res.stats.skippedFiles[skipOversize])

	opts := defaultOptions()
	opts.maxFileSize = 1024 * 1024
	res = runCollect(t, []string{dir}, opts)
	assert.True(t, strings.Contains(res.content, large))
	assert.Zero(t, res.stats.skippedFiles[skipOversize])
}

func TestCollectTotalBudget(t *testing.T) {
	dir := t.TempDir()
	p1 := filepath.Join(dir, "f1.txt")
	p2 := filepath.Join(dir, "f2.txt")
	p3 := filepath.Join(dir, "f3.txt")
	body := strings.Repeat("a", 60)
	for _, p := range []string{p1, p2, p3} {
		writeFile(t, p, body)
	}

	entry1 := textEntry(p1, body)

	// Ceiling admits exactly the first entry: at-ceiling is permitted,
	// one byte over is not.
	opts := defaultOptions()
	opts.workers = 1
	opts.maxSize = int64(len(entry1))
	res := runCollect(t, []string{dir}, opts)

	assert.Equal(t, entry1, res.content)
	assert.True(t, res.truncated)
	assert.LessOrEqual(t, int64(len(res.content)), opts.maxSize)
	assert.Equal(t, 1, res.stats.textFiles)
	assert.Equal(t, 2, res.stats.skippedFiles[skipBudget], "f2 and f3 are both budget-skipped")

	// One byte more of budget still fits only the first entry.
	opts.maxSize = int64(len(entry1)) + 1
	res = runCollect(t, []string{dir}, opts)
	assert.Equal(t, entry1, res.content)
	assert.True(t, res.truncated)
}

func TestCollectBudgetNeverExceeded(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 20; i++ {
		writeFile(t, filepath.Join(dir, fmt.Sprintf("file_%02d.txt", i)), strings.Repeat("x", 3000))
	}

	opts := defaultOptions()
	opts.maxSize = 10_000
	res := runCollect(t, []string{dir}, opts)

	assert.True(t, res.truncated)
	assert.LessOrEqual(t, int64(len(res.content)), opts.maxSize)
}

func TestCollectOrderInvariantUnderWorkerCount(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 8; i++ {
		writeFile(t, filepath.Join(dir, fmt.Sprintf("f%d.txt", i)), strings.Repeat("x", 100*(i+1)))
		writeFile(t, filepath.Join(dir, "sub", fmt.Sprintf("g%d.txt", i)), strings.Repeat("y", 50*(i+1)))
	}

	baseline := ""
	for _, workers := range []int{1, 2, 8} {
		opts := defaultOptions()
		opts.workers = workers
		res := runCollect(t, []string{dir}, opts)
		if baseline == "" {
			baseline = res.content
			continue
		}
		assert.Equal(t, baseline, res.content, "workers=%d", workers)
	}
}

func TestCollectTruncationInvariantUnderWorkerCount(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 12; i++ {
		writeFile(t, filepath.Join(dir, fmt.Sprintf("f%02d.txt", i)), strings.Repeat("z", 2000))
	}

	var baseline *result
	for _, workers := range []int{1, 4, 8} {
		opts := defaultOptions()
		opts.workers = workers
		opts.maxSize = 9000
		res := runCollect(t, []string{dir}, opts)
		if baseline == nil {
			baseline = &res
			continue
		}
		assert.Equal(t, baseline.content, res.content, "workers=%d", workers)
		assert.Equal(t, baseline.stats.textFiles, res.stats.textFiles)
		assert.Equal(t, baseline.stats.skippedFiles, res.stats.skippedFiles)
	}
}

func TestCollectIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "alpha")
	writeFile(t, filepath.Join(dir, "sub", "b.txt"), "beta")
	writeFile(t, filepath.Join(dir, ".hidden"), "hidden")

	opts := defaultOptions()
	first := runCollect(t, []string{dir}, opts)
	second := runCollect(t, []string{dir}, opts)

	assert.Equal(t, first.content, second.content)
	assert.Equal(t, first.stats.textFiles, second.stats.textFiles)
	assert.Equal(t, first.stats.skippedFiles, second.stats.skippedFiles)
	assert.Equal(t, first.stats.directories, second.stats.directories)
}

func TestCollectDefaultFilteringScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "0123456789")
	writeFile(t, filepath.Join(dir, ".hidden", "b.txt"), "hidden text")
	big := bytes.Repeat([]byte{0x00, 0xff}, 300*1024) // 600KB, binary
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "big.bin"), big, 0o644))

	// Default run: a.txt in, hidden pruned, big.bin oversized.
	res := runCollect(t, []string{dir}, defaultOptions())
	assert.True(t, strings.Contains(res.content, "0123456789"))
	assert.False(t, strings.Contains(res.content, "hidden text"))
	assert.Equal(t, 1, res.stats.skippedFiles[skipOversize])
	assert.Equal(t, 1, res.stats.skippedDirs[skipHidden])

	// --all: hidden file included, big.bin still over the per-file ceiling.
	opts := defaultOptions()
	opts.includeAll = true
	res = runCollect(t, []string{dir}, opts)
	assert.True(t, strings.Contains(res.content, "hidden text"))
	assert.Equal(t, 1, res.stats.skippedFiles[skipOversize])

	// --all with a raised per-file ceiling embeds the binary verbatim.
	opts.maxFileSize = 1024 * 1024
	res = runCollect(t, []string{dir}, opts)
	assert.True(t, strings.Contains(res.content, string(big)))
	assert.Zero(t, res.stats.skippedFiles[skipOversize])
}

func TestCollectExcludePattern(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "x.log"), "log content")
	writeFile(t, filepath.Join(dir, "x.txt"), "text content")

	for _, all := range []bool{false, true} {
		opts := defaultOptions()
		opts.includeAll = all
		opts.excludes = []string{"*.log"}
		res := runCollect(t, []string{dir}, opts)
		assert.False(t, strings.Contains(res.content, "log content"), "all=%v", all)
		assert.True(t, strings.Contains(res.content, "text content"), "all=%v", all)
	}
}

func TestCollectMultipleRoots(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	pa := filepath.Join(rootA, "a.txt")
	pb := filepath.Join(rootB, "b.txt")
	writeFile(t, pa, "from a")
	writeFile(t, pb, "from b")

	res := runCollect(t, []string{rootB, rootA}, defaultOptions())
	want := textEntry(pb, "from b") + textEntry(pa, "from a")
	assert.Equal(t, want, res.content)
}

func TestCollectAllRootsFailing(t *testing.T) {
	dir := t.TempDir()
	_, err := collect([]string{
		filepath.Join(dir, "missing1"),
		filepath.Join(dir, "missing2"),
	}, defaultOptions(), zap.NewNop().Sugar())
	assert.Error(t, err)
}

func TestCollectPartialRootFailureSucceeds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ok.txt")
	writeFile(t, path, "ok")

	res, err := collect([]string{filepath.Join(dir, "missing"), dir}, defaultOptions(), zap.NewNop().Sugar())
	require.NoError(t, err, "partial success is success")
	assert.Equal(t, textEntry(path, "ok"), res.content)
}

func TestCollectUnreadableFile(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced here")
	}
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "ok.txt"), "fine")
	locked := filepath.Join(dir, "locked.txt")
	writeFile(t, locked, "no access")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o644) })

	res := runCollect(t, []string{dir}, defaultOptions())
	assert.True(t, strings.Contains(res.content, "fine"))
	assert.False(t, strings.Contains(res.content, "no access"))
	assert.Equal(t, 1, res.stats.unreadableFiles)
}
