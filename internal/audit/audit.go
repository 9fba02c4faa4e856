package audit

import (
	"context"
	"os"
	"path/filepath"
	"regexp"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultMarker matches the literal token "error" as a standalone word,
// case-insensitively. "errorless" does not count; "Error" does.
var DefaultMarker = regexp.MustCompile(`(?i)\berror\b`)

// Result is one audited file: its marker count, or a per-file error.
type Result struct {
	Name  string // base name, as reported
	Path  string
	Count int
	Err   error
}

// Auditor counts marker occurrences across every log file under a root.
type Auditor struct {
	marker *regexp.Regexp
}

// New creates an Auditor for the given marker pattern. A nil marker uses
// DefaultMarker.
func New(marker *regexp.Regexp) *Auditor {
	if marker == nil {
		marker = DefaultMarker
	}
	return &Auditor{marker: marker}
}

// Scan recursively enumerates every *.log file under root and emits one
// Result per file on the returned channel. Each call performs a fresh
// traversal; the channel is closed when the traversal finishes or the
// context is cancelled. Unreadable files are emitted with Err set rather
// than aborting the scan.
func (a *Auditor) Scan(ctx context.Context, root string) <-chan Result {
	out := make(chan Result)

	go func() {
		defer close(out)

		paths, err := doublestar.FilepathGlob(
			filepath.Join(root, "**", "*.log"),
			doublestar.WithFilesOnly(),
		)
		if err != nil {
			select {
			case out <- Result{Path: root, Err: err}:
			case <-ctx.Done():
			}
			return
		}

		for _, path := range paths {
			res := a.auditFile(path)
			select {
			case out <- res:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// auditFile reads one file and counts marker matches in its full content.
func (a *Auditor) auditFile(path string) Result {
	res := Result{Name: filepath.Base(path), Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = err
		return res
	}

	res.Count = len(a.marker.FindAllIndex(data, -1))
	return res
}
