// Package progress provides ProgressReporter adapters for the extraction pipeline:
//
//   - Terminal: a pterm progress bar for interactive terminals
//   - JSONLines: one JSON event per line, for scripts and other tools
//   - Log: state changes and chunk results through the logger
//   - Noop: discards everything
package progress
