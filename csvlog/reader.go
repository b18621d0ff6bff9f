package csvlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// LogFile is a dated log found on disk.
type LogFile struct {
	Path string
	Name string
	Date time.Time
}

// ReadFile parses every row of a log file. The header row is skipped.
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csvlog: open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("csvlog: %s: %w", path, err)
	}
	return rows, nil
}

// Read parses rows from r, skipping a leading header row.
func Read(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var rows []Row
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if line == 1 && strings.Join(rec, ",") == Header {
			continue
		}

		row, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// List returns the dated log files in dir, oldest first. Files whose name is
// not YYYY-MM-DD.csv are ignored. A missing directory yields no files.
func List(dir string) ([]LogFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("csvlog: read dir %s: %w", dir, err)
	}

	var files []LogFile
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".csv") {
			continue
		}
		date, err := time.ParseInLocation(FileDateLayout, strings.TrimSuffix(name, ".csv"), time.Local)
		if err != nil {
			continue
		}
		files = append(files, LogFile{
			Path: filepath.Join(dir, name),
			Name: name,
			Date: date,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if !files[i].Date.Equal(files[j].Date) {
			return files[i].Date.Before(files[j].Date)
		}
		return files[i].Name < files[j].Name
	})
	return files, nil
}
