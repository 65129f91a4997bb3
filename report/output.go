package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"psxscreener/valuation"
)

// Outputs names the files a build writes
type Outputs struct {
	Dir      string
	CSVFile  string
	HTMLFile string
	Title    string
}

// DefaultOutputs writes stocks.csv and stocks.html under dir
func DefaultOutputs(dir string) Outputs {
	return Outputs{Dir: dir, CSVFile: "stocks.csv", HTMLFile: "stocks.html", Title: DefaultTitle}
}

func (o Outputs) CSVPath() string { return filepath.Join(o.Dir, o.CSVFile) }
func (o Outputs) HTMLPath() string { return filepath.Join(o.Dir, o.HTMLFile) }

// SaveOutputs writes the CSV and HTML tables into dir with default names
func SaveOutputs(dir string, rows []valuation.Row) ([]string, error) {
	return DefaultOutputs(dir).Save(rows)
}

// Save writes both tables. Each file is replaced atomically so the dashboard
// never reads a half-written CSV. Returns the written paths.
func (o Outputs) Save(rows []valuation.Row) ([]string, error) {
	if err := os.MkdirAll(o.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	csvPath := o.CSVPath()
	if err := writeAtomic(csvPath, func(w io.Writer) error { return WriteCSV(w, rows) }); err != nil {
		return nil, err
	}

	htmlPath := o.HTMLPath()
	if err := writeAtomic(htmlPath, func(w io.Writer) error { return WriteHTML(w, rows, o.Title) }); err != nil {
		return []string{csvPath}, err
	}

	return []string{csvPath, htmlPath}, nil
}

func writeAtomic(dest string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	bw := bufio.NewWriter(tmp)
	if err := write(bw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close %s: %w", dest, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to chmod %s: %w", dest, err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", dest, err)
	}
	return nil
}

// LoadCSV reads a table previously written by Save
func LoadCSV(path string) ([]valuation.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}
