// Package config provides centralized timeout constants for the application.
//
// Catalog pages are rendered from memory, so request timeouts are short.
// Dataset loads may hit object storage and get more room.
package config

import "time"

// HTTP server timeouts
const (
	// HTTPRead bounds reading a request. Requests carry no body.
	HTTPRead = 10 * time.Second

	// HTTPWrite bounds writing a response. SSE responses for the live table are
	// a single patch and complete well within it.
	HTTPWrite = 30 * time.Second

	// HTTPIdle is the keep-alive idle timeout.
	HTTPIdle = 120 * time.Second
)

// Dataset timeouts
const (
	// DatasetLoad bounds a single dataset load from any source, including
	// download and decompression of an R2 object.
	DatasetLoad = 2 * time.Minute

	// DatasetVersionCheck bounds the cheap change-detection probe run on
	// every reload tick.
	DatasetVersionCheck = 10 * time.Second
)

// Database timeouts
const (
	// DatabaseBusyTimeout is the SQLite busy_timeout pragma value.
	DatabaseBusyTimeout = 30 * time.Second

	// DatabaseConnMaxLifetime is the maximum lifetime of database connections.
	DatabaseConnMaxLifetime = time.Hour
)

// Graceful shutdown
const (
	// GracefulShutdown is the default timeout for graceful server shutdown.
	GracefulShutdown = 30 * time.Second

	// SentryFlush bounds flushing buffered error events on shutdown.
	SentryFlush = 2 * time.Second
)
