package cli

// Default values for CLI flags and output.
const (
	// TabWidth is the width of tabs in formatted output.
	TabWidth = 2
	// MetricsNamespace prefixes every exported metric.
	MetricsNamespace = "reqfile"
)

// Process exit codes by failure kind.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitHeader      = 2
	ExitNetwork     = 3
	ExitPersistence = 4
)
