// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, blank description, out of range).
	UserError = 1

	// ConfigError indicates an unreadable or invalid config file.
	ConfigError = 2

	// StorageError indicates the task store could not be opened, read or written.
	StorageError = 3
)
