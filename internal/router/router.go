package router

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"syscall"

	"github.com/arengifoc/logsort/internal/classify"
)

// Outcome reports what Route did with a file.
type Outcome int

const (
	// Moved means the file now lives under its service directory.
	Moved Outcome = iota
	// Skipped means the destination was already occupied; the source file
	// was left untouched and the destination was not overwritten.
	Skipped
)

func (o Outcome) String() string {
	if o == Skipped {
		return "skipped"
	}
	return "moved"
}

// Router relocates log files into per-service directories under a fixed
// destination root. Service names come from the injected classification
// pattern.
type Router struct {
	pattern  *classify.Pattern
	destRoot string
}

// New creates a Router placing files under destRoot.
func New(pattern *classify.Pattern, destRoot string) *Router {
	return &Router{pattern: pattern, destRoot: destRoot}
}

// Route classifies path by its base name and moves it to
// destRoot/<service>/<baseName>. The returned service name is set whenever
// classification succeeded, even if the move itself failed.
//
// The collision check and the move are a single atomic step: the destination
// is claimed with a hard link, so two racers on one destination get exactly
// one Moved and one Skipped.
func (r *Router) Route(path string) (service string, outcome Outcome, err error) {
	base := filepath.Base(path)

	service, err = r.pattern.Service(base)
	if err != nil {
		return "", Skipped, err
	}

	serviceDir := filepath.Join(r.destRoot, service)
	if err := os.MkdirAll(serviceDir, 0o755); err != nil {
		return service, Skipped, fmt.Errorf("create service directory: %w", err)
	}

	dest := filepath.Join(serviceDir, base)
	outcome, err = moveExclusive(path, dest)
	if err != nil {
		return service, Skipped, err
	}
	if outcome == Skipped {
		log.Printf("warning: %s already exists, skipping", dest)
	}
	return service, outcome, nil
}

// moveExclusive moves src to dest without ever overwriting dest. Linking
// preserves the source mtime and fails with EEXIST when dest is occupied;
// cross-device moves fall back to a copy staged next to the destination.
func moveExclusive(src, dest string) (Outcome, error) {
	err := os.Link(src, dest)
	switch {
	case err == nil:
		if rmErr := os.Remove(src); rmErr != nil {
			return Moved, fmt.Errorf("remove source after move: %w", rmErr)
		}
		return Moved, nil
	case errors.Is(err, fs.ErrExist):
		return Skipped, nil
	case errors.Is(err, syscall.EXDEV):
		return copyExclusive(src, dest)
	default:
		return Skipped, err
	}
}

// copyExclusive copies src to a temp file in dest's directory, preserves the
// source mtime, then claims dest with a link. Partial writes never appear at
// dest because the temp file is only linked into place once complete.
func copyExclusive(src, dest string) (Outcome, error) {
	info, err := os.Stat(src)
	if err != nil {
		return Skipped, err
	}

	in, err := os.Open(src)
	if err != nil {
		return Skipped, err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".logsort-*")
	if err != nil {
		return Skipped, err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return Skipped, err
	}
	if err := tmp.Close(); err != nil {
		return Skipped, err
	}
	if err := os.Chtimes(tmpName, info.ModTime(), info.ModTime()); err != nil {
		return Skipped, err
	}

	if err := os.Link(tmpName, dest); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return Skipped, nil
		}
		return Skipped, err
	}
	if err := os.Remove(src); err != nil {
		return Moved, fmt.Errorf("remove source after move: %w", err)
	}
	return Moved, nil
}
