// Package metrics holds the prometheus collectors updated during an import
// run. A run has no long-lived endpoint to scrape, so the collectors are
// written once at exit in the text exposition format, for pickup by a
// node_exporter textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Collectors for the import service.
var (
	FilesImportedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "copypics_files_imported_total",
		Help: "Cumulative number of files copied into the destination.",
	})
	FilesDuplicateTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "copypics_files_duplicate_total",
		Help: "Cumulative number of files skipped because their content was already imported.",
	})
	FilesSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "copypics_files_skipped_total",
		Help: "Cumulative number of files skipped because of a destination name collision.",
	})
	FilesFailedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "copypics_files_failed_total",
		Help: "Cumulative number of files that failed to import.",
	})
	DirectoriesFailedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "copypics_directories_failed_total",
		Help: "Cumulative number of source directories that could not be listed.",
	})
	BytesCopiedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "copypics_bytes_copied_total",
		Help: "Cumulative number of bytes copied into the destination.",
	})
	LedgerFingerprints = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "copypics_ledger_fingerprints",
		Help: "Number of fingerprints in the ledger when it was last persisted.",
	})
	LastRunTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "copypics_last_run_timestamp_seconds",
		Help: "Unix time at which the last run finished.",
	})
)

// Collectors returns every collector defined by this package.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		FilesImportedTotal,
		FilesDuplicateTotal,
		FilesSkippedTotal,
		FilesFailedTotal,
		DirectoriesFailedTotal,
		BytesCopiedTotal,
		LedgerFingerprints,
		LastRunTimestamp,
	}
}

// WriteTextfile writes the current value of every collector to path,
// replacing the file atomically.
func WriteTextfile(path string) error {
	reg := prometheus.NewRegistry()
	for _, c := range Collectors() {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("registering collector: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
