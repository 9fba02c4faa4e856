package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/arengifoc/logsort/internal/model"
)

// Config controls one archive run.
type Config struct {
	// Dir is the tree to scan for old log files.
	Dir string
	// OutDir receives the zip file and the temporary staging directory.
	OutDir string
	// MaxAge is the cutoff: files modified more recently are left alone.
	MaxAge time.Duration
	// Now allows tests to pin the clock; nil means time.Now.
	Now func() time.Time
}

// Result summarizes an archive run.
type Result struct {
	ZipPath  string
	Archived int
	Skipped  int
	Failures []model.Failure
}

// ErrZipExists is returned when today's backup zip is already present.
var ErrZipExists = errors.New("backup zip already exists")

// Run stages every *.log file under cfg.Dir older than cfg.MaxAge into a
// temporary directory, compresses the staging area into
// backup_<YYYYMMDD>.zip under cfg.OutDir, then removes the staging
// directory. Per-file copy failures are accumulated, not fatal.
func Run(cfg Config) (*Result, error) {
	now := time.Now
	if cfg.Now != nil {
		now = cfg.Now
	}

	zipPath := filepath.Join(cfg.OutDir, "backup_"+now().Format("20060102")+".zip")
	if _, err := os.Stat(zipPath); err == nil {
		log.Printf("%s already exists, skipping", zipPath)
		return &Result{ZipPath: zipPath}, ErrZipExists
	}

	staging, err := os.MkdirTemp(cfg.OutDir, "backup_logs_")
	if err != nil {
		return nil, fmt.Errorf("create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	res := &Result{ZipPath: zipPath}
	cutoff := now().Add(-cfg.MaxAge)

	paths, err := doublestar.FilepathGlob(
		filepath.Join(cfg.Dir, "**", "*.log"),
		doublestar.WithFilesOnly(),
	)
	if err != nil {
		return nil, fmt.Errorf("scan %q: %w", cfg.Dir, err)
	}

	for _, path := range paths {
		if err := stage(path, staging, cutoff, res); err != nil {
			res.Failures = append(res.Failures, model.Failure{Path: path, Err: err})
		}
	}

	if res.Archived == 0 {
		return res, nil
	}

	if err := compress(staging, zipPath); err != nil {
		return res, fmt.Errorf("compress staging: %w", err)
	}
	return res, nil
}

// stage copies one file into the staging directory if it is old enough.
// Name collisions in staging are skipped with a warning, same as routing.
func stage(path, staging string, cutoff time.Time, res *Result) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.ModTime().Before(cutoff) {
		res.Skipped++
		return nil
	}

	dest := filepath.Join(staging, filepath.Base(path))
	if _, err := os.Stat(dest); err == nil {
		log.Printf("%s already staged, skipping", filepath.Base(path))
		res.Skipped++
		return nil
	}

	if err := copyFile(path, dest, info); err != nil {
		return err
	}
	res.Archived++
	return nil
}

func copyFile(src, dest string, info fs.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dest, info.ModTime(), info.ModTime())
}

// compress zips every staged file into zipPath.
func compress(staging, zipPath string) error {
	f, err := os.Create(zipPath)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	entries, err := os.ReadDir(staging)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := addToZip(zw, filepath.Join(staging, e.Name()), e.Name()); err != nil {
			return err
		}
	}
	return zw.Close()
}

func addToZip(zw *zip.Writer, path, name string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, in)
	return err
}
