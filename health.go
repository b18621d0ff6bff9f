package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/GameboyEsc95/VMAS/cache"
	"github.com/GameboyEsc95/VMAS/internal/format"
)

// HealthStatus is the sampler's self-report, stored as health.json in the
// state directory.
type HealthStatus struct {
	Status     string    `json:"status"`
	PID        int       `json:"pid"`
	StartedAt  time.Time `json:"started_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	LastSample time.Time `json:"last_sample"`
	Iterations uint64    `json:"iterations"`
	LastReport time.Time `json:"last_report"`
}

// healthKey is the state store key for the health report.
const healthKey = "health"

func writeHealth(store *cache.Store, status HealthStatus) error {
	if err := cache.SetTyped(store, healthKey, &status); err != nil {
		return fmt.Errorf("write health: %w", err)
	}
	return nil
}

func readHealth(store *cache.Store) (*HealthStatus, error) {
	status, err := cache.GetTyped[HealthStatus](store, healthKey)
	if err != nil {
		return nil, fmt.Errorf("read health: %w", err)
	}
	if status == nil {
		return nil, fmt.Errorf("read health: no health file found")
	}
	return status, nil
}

// checkHealth reads the health report and prints whether the sampler is
// healthy. It is healthy if the report exists and was updated within
// staleAfter. Returns exit code 0 for healthy, 1 for stale or missing.
func checkHealth(store *cache.Store, staleAfter time.Duration, jsonOutput bool, stdout, stderr io.Writer) int {
	status, err := readHealth(store)
	if err != nil {
		if jsonOutput {
			fmt.Fprintln(stdout, `{"status":"missing","error":"no health file found"}`)
		} else {
			fmt.Fprintln(stderr, "sampler not running (no health file)")
		}
		return 1
	}

	age := time.Since(status.UpdatedAt)
	isStale := age > staleAfter

	if jsonOutput {
		output := map[string]interface{}{
			"status":      status.Status,
			"pid":         status.PID,
			"updated_at":  status.UpdatedAt.Format(time.RFC3339),
			"last_sample": formatOptional(status.LastSample),
			"last_report": formatOptional(status.LastReport),
			"iterations":  status.Iterations,
			"age":         age.Round(time.Second).String(),
			"stale":       isStale,
		}
		data, _ := json.MarshalIndent(output, "", "  ")
		fmt.Fprintln(stdout, string(data))
	} else if isStale {
		fmt.Fprintf(stderr, "sampler stale (last update %s, threshold %s)\n",
			format.FormatTimeSince(status.UpdatedAt), staleAfter)
	} else {
		fmt.Fprintf(stdout, "sampler healthy (PID %d, last update %s)\n", status.PID, format.FormatTimeSince(status.UpdatedAt))
		fmt.Fprintf(stdout, "  iterations: %d\n", status.Iterations)
		if !status.LastSample.IsZero() {
			fmt.Fprintf(stdout, "  last sample: %s\n", status.LastSample.Format(time.DateTime))
		}
		if !status.LastReport.IsZero() {
			fmt.Fprintf(stdout, "  last report: %s\n", status.LastReport.Format(time.DateTime))
		}
	}

	if isStale {
		return 1
	}
	return 0
}

func formatOptional(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
