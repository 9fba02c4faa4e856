package report

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Line is one report entry: a file name and its marker count.
type Line struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Format renders one entry in the report's fixed textual form. The trailing
// "errores" label is kept for compatibility with the reports this tool
// replaced.
func Format(l Line) string {
	return fmt.Sprintf("%s: %d errores\n", l.Name, l.Count)
}

// Write truncate-creates dest and writes one line per entry, in the order
// given. Any I/O failure is returned to the caller; prior routing work is
// never undone.
func Write(entries []Line, dest string) error {
	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}

	w := bufio.NewWriter(f)
	for _, l := range entries {
		if _, err := w.WriteString(Format(l)); err != nil {
			f.Close()
			return fmt.Errorf("write report: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	return f.Close()
}

// Read parses a report written by Write. Lines that do not parse are
// skipped. Used by the dashboard to serve the latest report.
func Read(path string) ([]Line, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var lines []Line
	for _, raw := range strings.Split(string(data), "\n") {
		name, rest, ok := strings.Cut(raw, ": ")
		if !ok {
			continue
		}
		countStr, ok := strings.CutSuffix(rest, " errores")
		if !ok {
			continue
		}
		count, err := strconv.Atoi(countStr)
		if err != nil {
			continue
		}
		lines = append(lines, Line{Name: name, Count: count})
	}
	return lines, nil
}
