package report

import (
	"errors"
	"sort"

	"github.com/GameboyEsc95/VMAS/csvlog"
)

// DefaultRecentLogs is how many of the newest logs a report covers.
const DefaultRecentLogs = 2

// ErrNoLogs is returned by the built-in generator when it is given no files.
var ErrNoLogs = errors.New("report: no log files")

// SelectRecent returns the paths of the n most recent dated logs in dir,
// newest first. Files are ordered by the date in their name, and files with
// the same date by name, both descending. Fewer than n files are returned
// when fewer exist; none is not an error.
func SelectRecent(dir string, n int) ([]string, error) {
	if n <= 0 {
		n = DefaultRecentLogs
	}

	files, err := csvlog.List(dir)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].Date.Equal(files[j].Date) {
			return files[i].Date.After(files[j].Date)
		}
		return files[i].Name > files[j].Name
	})

	if len(files) > n {
		files = files[:n]
	}

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	return paths, nil
}
